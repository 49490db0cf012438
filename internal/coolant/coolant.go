// Package coolant implements closed-loop coolant circulation: heat
// absorption from assigned thermal components, Stefan-Boltzmann
// radiator rejection, pump spin-down, and the cross-connect valve
// between loop 1 and loop 2 (§4.6).
package coolant

import (
	"fmt"
	"math"

	"lunarsim/internal/config"
	"lunarsim/internal/eventlog"
	"lunarsim/internal/simerr"
)

// pumpSpinDownFloor is the flow-rate fraction below which an unpowered
// pump is considered stopped.
const pumpSpinDownFloor = 1e-3

// Loop is one coolant loop's mutable runtime state.
type Loop struct {
	cfg          config.CoolantLoopConfig
	CoolantMass  float64
	TemperatureK float64
	PumpActive   bool
	FlowRateLMin float64
	Disabled     bool
	frozeEventFired bool
	boiledEventFired bool
}

func newLoop(cfg config.CoolantLoopConfig) *Loop {
	return &Loop{
		cfg:          cfg,
		CoolantMass:  cfg.InitialMass,
		TemperatureK: cfg.InitialTempK,
		PumpActive:   true,
		FlowRateLMin: cfg.NominalFlowLMin,
	}
}

// ID returns the loop's identifier.
func (l *Loop) ID() string { return l.cfg.ID }

// radiatedPowerW returns the Stefan-Boltzmann radiated power for the
// loop's current temperature: P = eps * sigma * A * (T^4 - Tspace^4).
func (l *Loop) radiatedPowerW(stefanBoltzmann, spaceTempK float64) float64 {
	return l.cfg.RadiatorEmissivity * stefanBoltzmann * l.cfg.RadiatorArea *
		(math.Pow(l.TemperatureK, 4) - math.Pow(spaceTempK, 4))
}

// System is the complete coolant subsystem.
type System struct {
	cfg   config.CoolantConfig
	loops []*Loop
	byID  map[string]*Loop

	pumpPowerAvailable map[string]bool // set by the orchestrator from electrical consumer state
}

// NewSystem builds a coolant System from validated config.
func NewSystem(cfg config.CoolantConfig) *System {
	s := &System{cfg: cfg, byID: make(map[string]*Loop, len(cfg.Loops)), pumpPowerAvailable: make(map[string]bool)}
	for _, lc := range cfg.Loops {
		l := newLoop(lc)
		s.loops = append(s.loops, l)
		s.byID[lc.ID] = l
	}
	return s
}

// Loops returns every loop in insertion order.
func (s *System) Loops() []*Loop { return s.loops }

// LoopByID returns the loop with the given id, or nil.
func (s *System) LoopByID(id string) *Loop { return s.byID[id] }

// SetPump enables/disables the named loop's pump. Returns
// simerr.ErrUnknownIdentifier if id is unknown.
func (s *System) SetPump(id string, on bool) error {
	l, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("set_coolant_pump %q: %w", id, simerr.ErrUnknownIdentifier)
	}
	l.PumpActive = on
	return nil
}

// SetPumpPower records whether electrical power is available to the
// named loop's pump this tick. The orchestrator sets every loop from
// one system-wide electrical check, not from a per-pump consumer.
func (s *System) SetPumpPower(loopID string, available bool) {
	s.pumpPowerAvailable[loopID] = available
}

// Reset clears a freeze/boil disablement on the named loop (external
// reset, per §4.6).
func (s *System) Reset(id string) error {
	l, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("reset_coolant_loop %q: %w", id, simerr.ErrUnknownIdentifier)
	}
	l.Disabled = false
	l.frozeEventFired = false
	l.boiledEventFired = false
	return nil
}

// AbsorbedWatts returns how much heat (W) the loop pulled from its
// assigned thermal components this tick, given the per-component
// delta-T supplied by the thermal subsystem's current temperatures.
// flow (L/min) is converted to an absorption rate proportional to
// flow * deltaT, per §4.6; the proportionality constant folds into
// cfg.CoolantSpecificHeat and the loop's own configured flow.
func (l *Loop) AbsorbedWatts(componentTemps map[string]float64) float64 {
	if l.Disabled || l.FlowRateLMin <= 0 {
		return 0
	}
	var total float64
	for _, id := range l.cfg.AssignedComponents {
		compTemp, ok := componentTemps[id]
		if !ok {
			continue
		}
		deltaT := compTemp - l.TemperatureK
		if deltaT <= 0 {
			continue
		}
		// Flow-proportional coupling: (L/min -> kg/s at ~1 kg/L) * cp * deltaT, scaled by 1e-3.
		massFlowKgS := (l.FlowRateLMin / 60.0)
		total += massFlowKgS * l.cfg.CoolantSpecificHeat * deltaT * 1e-3
	}
	return total
}

// Tick updates pump flow (spin-down when unpowered), absorbs heat from
// assigned components, radiates via Stefan-Boltzmann, applies the
// cross-connect valve if configured, and emits freeze/boil events.
func (s *System) Tick(timeS, dt float64, componentTemps map[string]float64, stefanBoltzmann, spaceTempK float64, log *eventlog.Log) {
	for _, l := range s.loops {
		if l.Disabled {
			l.FlowRateLMin = 0
			continue
		}

		powered := s.pumpPowerAvailable[l.ID()] && l.PumpActive
		if powered {
			l.FlowRateLMin = l.cfg.NominalFlowLMin
		} else if l.cfg.SpinDownTimeS > 0 {
			decay := dt / l.cfg.SpinDownTimeS
			l.FlowRateLMin = math.Max(0, l.FlowRateLMin*(1-decay))
			if l.FlowRateLMin < pumpSpinDownFloor*l.cfg.NominalFlowLMin {
				l.FlowRateLMin = 0
			}
		} else {
			l.FlowRateLMin = 0
		}

		absorbed := l.AbsorbedWatts(componentTemps)
		radiated := l.radiatedPowerW(stefanBoltzmann, spaceTempK)
		deltaT := (absorbed - radiated) * dt / (l.CoolantMass * l.cfg.CoolantSpecificHeat)
		l.TemperatureK += deltaT
	}

	s.applyCrossConnect(dt)

	for _, l := range s.loops {
		if l.Disabled {
			continue
		}
		if l.TemperatureK <= s.cfg.FreezeTempK && !l.frozeEventFired {
			l.frozeEventFired = true
			l.Disabled = true
			log.Append(timeS, eventlog.KindFreeze, map[string]float64{"temperature_k": l.TemperatureK})
		}
		if l.TemperatureK >= s.cfg.BoilTempK && !l.boiledEventFired {
			l.boiledEventFired = true
			l.Disabled = true
			log.Append(timeS, eventlog.KindBoil, map[string]float64{"temperature_k": l.TemperatureK})
		}
	}
}

func (s *System) applyCrossConnect(dt float64) {
	idA, idB := s.cfg.CrossConnectLoops[0], s.cfg.CrossConnectLoops[1]
	if idA == "" || idB == "" {
		return
	}
	a, b := s.byID[idA], s.byID[idB]
	if a == nil || b == nil || a.Disabled || b.Disabled {
		return
	}
	avg := (a.TemperatureK*a.CoolantMass + b.TemperatureK*b.CoolantMass) / (a.CoolantMass + b.CoolantMass)
	a.TemperatureK, b.TemperatureK = avg, avg
}

// AssignedComponentIDs returns the thermal component ids this loop
// absorbs heat from.
func (l *Loop) AssignedComponentIDs() []string { return l.cfg.AssignedComponents }

// AbsorbedWattsForComponent returns the loop's per-component heat draw
// (W) for the single named component, for the orchestrator to report
// back to the thermal subsystem as that component's coolant sink.
func (l *Loop) AbsorbedWattsForComponent(componentID string, componentTempK float64) float64 {
	if l.Disabled || l.FlowRateLMin <= 0 {
		return 0
	}
	deltaT := componentTempK - l.TemperatureK
	if deltaT <= 0 {
		return 0
	}
	massFlowKgS := l.FlowRateLMin / 60.0
	return massFlowKgS * l.cfg.CoolantSpecificHeat * deltaT * 1e-3
}

// PumpPowerDrawW returns the configured pump power draw (W) while the
// pump is active and the loop is not disabled, and 0 otherwise. The
// orchestrator does not bill it to any electrical consumer.
func (l *Loop) PumpPowerDrawW() float64 {
	if !l.PumpActive || l.Disabled {
		return 0
	}
	return l.cfg.PumpPowerW
}
