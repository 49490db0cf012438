// Package engine implements the main descent/ascent engine: the
// ignition/running/shutdown lifecycle, throttle-to-thrust mapping,
// gimbal-vectored thrust, propellant mass flow from specific impulse,
// and health decay under sustained high throttle (§4.7).
package engine

import (
	"fmt"
	"math"

	"lunarsim/internal/config"
	"lunarsim/internal/eventlog"
	"lunarsim/internal/simerr"
	"lunarsim/internal/vecmath"
)

// Status is the main engine's lifecycle state.
type Status string

const (
	StatusOff              Status = "off"
	StatusIgniting         Status = "igniting"
	StatusRunning          Status = "running"
	StatusShutdownCooldown Status = "shutdown_cooldown"
)

// minIgnitionHealth is the health floor below which Ignite refuses to
// light, per §4.7.
const minIgnitionHealth = 0.2

// Engine is the main engine's mutable runtime state.
type Engine struct {
	cfg config.MainEngineConfig

	Status       Status
	Throttle     float64 // commanded, clamped to [min_throttle, 1] once running, or 0
	GimbalPitch  float64 // rad, clamped to +-max_gimbal_rad
	GimbalYaw    float64 // rad, clamped to +-max_gimbal_rad
	ChamberTempK float64
	Health       float64

	igniteElapsed   float64
	cooldownElapsed float64
}

// New builds an Engine from validated config.
func New(cfg config.MainEngineConfig) *Engine {
	return &Engine{cfg: cfg, Status: StatusOff, ChamberTempK: 290, Health: cfg.InitialHealth}
}

// Ignite requests startup. Legal only from off, and only if propellant
// is available, health is above the minimum ignition threshold, and
// any prior shutdown cooldown has fully elapsed, per §4.7.
func (e *Engine) Ignite(propellantAvailableKg float64) error {
	if e.Status != StatusOff {
		return fmt.Errorf("ignite_engine from %s: %w", e.Status, simerr.ErrIllegalStateTransition)
	}
	if propellantAvailableKg <= 0 {
		return fmt.Errorf("ignite_engine: no propellant available: %w", simerr.ErrIllegalStateTransition)
	}
	if e.Health <= minIgnitionHealth {
		return fmt.Errorf("ignite_engine: health %.3f at or below minimum %.1f: %w", e.Health, minIgnitionHealth, simerr.ErrIllegalStateTransition)
	}
	if e.cooldownElapsed != 0 {
		return fmt.Errorf("ignite_engine: cooldown not yet complete: %w", simerr.ErrIllegalStateTransition)
	}
	e.Status = StatusIgniting
	e.igniteElapsed = 0
	return nil
}

// Shutdown requests a commanded shutdown. Illegal unless running or
// igniting.
func (e *Engine) Shutdown() error {
	if e.Status != StatusRunning && e.Status != StatusIgniting {
		return fmt.Errorf("shutdown_engine from %s: %w", e.Status, simerr.ErrIllegalStateTransition)
	}
	e.Status = StatusShutdownCooldown
	e.cooldownElapsed = 0
	e.Throttle = 0
	return nil
}

// SetThrottle records the commanded throttle for this tick. A positive
// command is clamped to [min_throttle, 1.0] in every engine state, so a
// value below min_throttle becomes min_throttle; zero or a negative
// command sets the throttle to 0.
func (e *Engine) SetThrottle(commanded float64) {
	if commanded <= 0 {
		e.Throttle = 0
		return
	}
	if commanded < e.cfg.MinThrottle {
		commanded = e.cfg.MinThrottle
	}
	if commanded > 1 {
		commanded = 1
	}
	e.Throttle = commanded
}

// SetGimbal records the commanded gimbal angles for this tick, clamped
// to +-max_gimbal_rad per axis.
func (e *Engine) SetGimbal(pitch, yaw float64) {
	e.GimbalPitch = clamp(pitch, -e.cfg.MaxGimbalRad, e.cfg.MaxGimbalRad)
	e.GimbalYaw = clamp(yaw, -e.cfg.MaxGimbalRad, e.cfg.MaxGimbalRad)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Tick advances the ignition/cooldown timers, and while running
// computes chamber temperature, thrust magnitude, and health decay.
// It does not draw propellant or apply forces; the orchestrator calls
// ThrustVectorN and MassFlowRateKgS after Tick to do that against the
// fuel subsystem and rigid body. propellantAvailable reflects whether
// the main tanks still held propellant at the start of this tick, the
// signal §4.7 and §8 need for the igniting-abort and running-exhaustion
// boundary behaviors.
func (e *Engine) Tick(timeS, dt float64, propellantAvailable bool, log *eventlog.Log) {
	switch e.Status {
	case StatusIgniting:
		if !propellantAvailable {
			e.Status = StatusOff
			e.igniteElapsed = 0
			log.Append(timeS, eventlog.KindIgnitionAbort, map[string]float64{"chamber_temp_k": e.ChamberTempK})
			return
		}
		e.igniteElapsed += dt
		e.ChamberTempK += (2000 - e.ChamberTempK) * math.Min(dt/e.cfg.IgnitionDurationS, 1)
		if e.igniteElapsed >= e.cfg.IgnitionDurationS {
			e.Status = StatusRunning
			log.Append(timeS, eventlog.KindIgnition, nil)
		}
	case StatusRunning:
		if !propellantAvailable {
			e.Status = StatusShutdownCooldown
			e.cooldownElapsed = 0
			e.Throttle = 0
			return
		}
		target := 1500 + 2000*e.Throttle
		tau := 1.0
		e.ChamberTempK += (target - e.ChamberTempK) * math.Min(dt/tau, 1)

		if e.Throttle > 0.9 {
			e.Health = math.Max(0, e.Health-e.cfg.HealthDecayPerSecond*dt)
		}

		if e.ChamberTempK >= e.cfg.ChamberOvertempK {
			e.Status = StatusShutdownCooldown
			e.cooldownElapsed = 0
			e.Throttle = 0
			log.Append(timeS, eventlog.KindOvertemp, map[string]float64{"chamber_temp_k": e.ChamberTempK})
		}
	case StatusShutdownCooldown:
		e.cooldownElapsed += dt
		e.ChamberTempK += (290 - e.ChamberTempK) * math.Min(dt/2.0, 1)
		if e.cooldownElapsed >= e.cfg.CooldownDurationS {
			e.Status = StatusOff
			e.cooldownElapsed = 0
			log.Append(timeS, eventlog.KindShutdown, nil)
		}
	case StatusOff:
		e.ChamberTempK += (290 - e.ChamberTempK) * math.Min(dt/5.0, 1)
	}
}

// ThrustMagnitudeN returns the current commanded thrust magnitude:
// throttle * max_thrust_n * health, zero unless running.
func (e *Engine) ThrustMagnitudeN() float64 {
	if e.Status != StatusRunning {
		return 0
	}
	return e.Throttle * e.cfg.MaxThrustN * e.Health
}

// ThrustVectorBodyN returns the engine's thrust vector in the body
// frame, rotated off the nominal +Z thrust axis by the commanded
// gimbal pitch/yaw.
func (e *Engine) ThrustVectorBodyN() vecmath.Vector3 {
	mag := e.ThrustMagnitudeN()
	if mag <= 0 {
		return vecmath.Zero3
	}
	sp, cp := math.Sin(e.GimbalPitch), math.Cos(e.GimbalPitch)
	sy, cy := math.Sin(e.GimbalYaw), math.Cos(e.GimbalYaw)
	dir := vecmath.Vector3{X: sy * cp, Y: sp, Z: cy * cp}
	return dir.Scale(mag)
}

// ApplicationPoint returns the engine's fixed body-frame mount point,
// the lever arm for the torque the orchestrator derives from
// ThrustVectorBodyN about the current center of mass.
func (e *Engine) ApplicationPoint() vecmath.Vector3 {
	p := e.cfg.MountOffset
	return vecmath.Vector3{X: p[0], Y: p[1], Z: p[2]}
}

// MassFlowRateKgS returns the propellant consumption rate implied by
// the Tsiolkovsky relation: thrust / (Isp * g0).
func (e *Engine) MassFlowRateKgS() float64 {
	thrust := e.ThrustMagnitudeN()
	if thrust <= 0 {
		return 0
	}
	return thrust / (e.cfg.IspS * config.StandardGravity)
}

// HeatOutputW returns the engine's contribution to the thermal
// network: the configured inefficiency fraction of thrust power
// (thrust * exhaust velocity). It is zero unless the engine is running,
// since thrust is zero in every other state.
func (e *Engine) HeatOutputW() float64 {
	if e.Status == StatusOff {
		return 0
	}
	thrust := e.ThrustMagnitudeN()
	power := thrust * e.cfg.ExhaustVelocity
	return power * e.cfg.InefficientHeatFraction
}
