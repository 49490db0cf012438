package orchestrator

import (
	"fmt"

	"lunarsim/internal/config"
	"lunarsim/internal/electrical"
	"lunarsim/internal/engine"
	"lunarsim/internal/flightcontrol"
	"lunarsim/internal/physics"
	"lunarsim/internal/simerr"
	"lunarsim/internal/vecmath"
)

// electricalStatusFrom and engineStatusFrom restore a persisted status
// string to its package's typed status, defaulting to the safe
// (offline/off) state for an unrecognized value rather than rejecting
// the whole restore.
func electricalStatusFrom(s string) electrical.ReactorStatus {
	switch electrical.ReactorStatus(s) {
	case electrical.ReactorOffline, electrical.ReactorStarting, electrical.ReactorOnline, electrical.ReactorScrammed:
		return electrical.ReactorStatus(s)
	default:
		return electrical.ReactorOffline
	}
}

func engineStatusFrom(s string) engine.Status {
	switch engine.Status(s) {
	case engine.StatusOff, engine.StatusIgniting, engine.StatusRunning, engine.StatusShutdownCooldown:
		return engine.Status(s)
	default:
		return engine.StatusOff
	}
}

// PersistedTank is one fuel tank's restorable state.
type PersistedTank struct {
	ID           string
	FuelMassKg   float64
	TemperatureK float64
	Ruptured     bool
}

// PersistedBottle is one compressed-gas bottle's restorable state.
type PersistedBottle struct {
	ID           string
	Moles        float64
	TemperatureK float64
}

// PersistedReactor is the reactor's restorable state.
type PersistedReactor struct {
	Status       string
	OutputKW     float64
	TemperatureK float64
	Health       float64
}

// PersistedConsumer is one electrical consumer's restorable state.
type PersistedConsumer struct {
	ID             string
	BreakerTripped bool
}

// PersistedElectrical is the electrical subsystem's restorable state.
type PersistedElectrical struct {
	Reactor        PersistedReactor
	BatteryChargeKWh float64
	Consumers      []PersistedConsumer
}

// PersistedThermalComponent is one thermal node's restorable state.
type PersistedThermalComponent struct {
	ID           string
	TemperatureK float64
}

// PersistedCoolantLoop is one coolant loop's restorable state.
type PersistedCoolantLoop struct {
	ID           string
	CoolantMassKg float64
	TemperatureK float64
	PumpActive   bool
	Disabled     bool
}

// PersistedEngine is the main engine's restorable state.
type PersistedEngine struct {
	Status       string
	Throttle     float64
	GimbalPitchRad float64
	GimbalYawRad float64
	ChamberTempK float64
	Health       float64
}

// PersistedThruster is one RCS thruster's restorable activation.
type PersistedThruster struct {
	Name       string
	Activation float64
}

// PersistedBody is the rigid body's restorable state.
type PersistedBody struct {
	PositionM      [3]float64
	VelocityMS     [3]float64
	AttitudeBI     [4]float64 // w, x, y, z
	AngularVelBody [3]float64
	Landed         bool
}

// PersistedState is the serialized simulation state, tagged with the
// schema version it was written under (§4.16). It holds the fields
// below only: internal timers (reactor startup and cool-down hold,
// engine ignition and cooldown, breaker over-current), coolant flow
// rate, consumer shed and bus enabled state, PID integrals, event
// latches and the event log are not saved, and Restore re-engages the
// saved SAS and autopilot modes from scratch. A host
// persists this between sessions; Restore rejects a mismatched
// version outright rather than attempting migration.
type PersistedState struct {
	SchemaVersion int
	TimeS         float64

	Body       PersistedBody
	Tanks      []PersistedTank
	Bottles    []PersistedBottle
	Electrical PersistedElectrical
	Thermal    []PersistedThermalComponent
	Coolant    []PersistedCoolantLoop
	Engine     PersistedEngine
	Thrusters  []PersistedThruster

	CommandedThrottle     float64
	TargetAltitudeM       float64
	TargetVerticalSpeedMS float64
	SASMode               string
	AutopilotMode         string
}

// Save captures the subsystem state listed in PersistedState, tagged
// with the running core's schema version.
func (o *Orchestrator) Save() (PersistedState, error) {
	st := o.Body.State

	tanks := make([]PersistedTank, 0, len(o.Fuel.Tanks()))
	for _, t := range o.Fuel.Tanks() {
		tanks = append(tanks, PersistedTank{ID: t.ID(), FuelMassKg: t.FuelMass, TemperatureK: t.Temperature, Ruptured: t.Ruptured})
	}

	bottles := make([]PersistedBottle, 0, len(o.Gas.Bottles()))
	for _, b := range o.Gas.Bottles() {
		bottles = append(bottles, PersistedBottle{ID: b.ID(), Moles: b.Moles, TemperatureK: b.TempK})
	}

	var consumers []PersistedConsumer
	for _, bus := range o.Electrical.Buses() {
		for _, c := range bus.Consumers() {
			consumers = append(consumers, PersistedConsumer{ID: c.ID(), BreakerTripped: c.BreakerTripped})
		}
	}
	electricalState := PersistedElectrical{
		Reactor: PersistedReactor{
			Status:       string(o.Electrical.Reactor.Status),
			OutputKW:     o.Electrical.Reactor.OutputKW,
			TemperatureK: o.Electrical.Reactor.TemperatureK,
			Health:       o.Electrical.Reactor.Health,
		},
		BatteryChargeKWh: o.Electrical.Battery.Charge,
		Consumers:        consumers,
	}

	thermalState := make([]PersistedThermalComponent, 0, len(o.Thermal.Components()))
	for _, c := range o.Thermal.Components() {
		thermalState = append(thermalState, PersistedThermalComponent{ID: c.ID(), TemperatureK: c.TemperatureK})
	}

	coolantState := make([]PersistedCoolantLoop, 0, len(o.Coolant.Loops()))
	for _, l := range o.Coolant.Loops() {
		coolantState = append(coolantState, PersistedCoolantLoop{
			ID: l.ID(), CoolantMassKg: l.CoolantMass, TemperatureK: l.TemperatureK,
			PumpActive: l.PumpActive, Disabled: l.Disabled,
		})
	}

	thrusters := make([]PersistedThruster, 0, len(o.RCS.Thrusters()))
	for _, t := range o.RCS.Thrusters() {
		thrusters = append(thrusters, PersistedThruster{Name: t.Name(), Activation: t.Activation})
	}

	return PersistedState{
		SchemaVersion: config.PersistenceSchemaVersion,
		TimeS:         o.TimeS,
		Body: PersistedBody{
			PositionM:      [3]float64{st.PositionM.X, st.PositionM.Y, st.PositionM.Z},
			VelocityMS:     [3]float64{st.VelocityMS.X, st.VelocityMS.Y, st.VelocityMS.Z},
			AttitudeBI:     [4]float64{st.AttitudeBI.W, st.AttitudeBI.X, st.AttitudeBI.Y, st.AttitudeBI.Z},
			AngularVelBody: [3]float64{st.AngularVelBody.X, st.AngularVelBody.Y, st.AngularVelBody.Z},
			Landed:         st.Landed,
		},
		Tanks:      tanks,
		Bottles:    bottles,
		Electrical: electricalState,
		Thermal:    thermalState,
		Coolant:    coolantState,
		Engine: PersistedEngine{
			Status:         string(o.Engine.Status),
			Throttle:       o.Engine.Throttle,
			GimbalPitchRad: o.Engine.GimbalPitch,
			GimbalYawRad:   o.Engine.GimbalYaw,
			ChamberTempK:   o.Engine.ChamberTempK,
			Health:         o.Engine.Health,
		},
		Thrusters:             thrusters,
		CommandedThrottle:     o.commandedThrottle,
		TargetAltitudeM:       o.targetAltitudeM,
		TargetVerticalSpeedMS: o.targetVerticalSpeedMS,
		SASMode:               string(o.SAS.Mode),
		AutopilotMode:         string(o.Autopilot.Mode),
	}, nil
}

// Restore replaces every subsystem's runtime state with the persisted
// values. The schema version must match exactly; no migration path
// exists (§4.16 — "reject, don't guess").
func (o *Orchestrator) Restore(s PersistedState) error {
	if s.SchemaVersion != config.PersistenceSchemaVersion {
		return fmt.Errorf("persisted schema version %d, running core expects %d: %w",
			s.SchemaVersion, config.PersistenceSchemaVersion, simerr.ErrSchemaVersionMismatch)
	}

	o.TimeS = s.TimeS

	o.Body.State = physics.State{
		PositionM:      vecmath.Vector3{X: s.Body.PositionM[0], Y: s.Body.PositionM[1], Z: s.Body.PositionM[2]},
		VelocityMS:     vecmath.Vector3{X: s.Body.VelocityMS[0], Y: s.Body.VelocityMS[1], Z: s.Body.VelocityMS[2]},
		AttitudeBI:     vecmath.Quaternion{W: s.Body.AttitudeBI[0], X: s.Body.AttitudeBI[1], Y: s.Body.AttitudeBI[2], Z: s.Body.AttitudeBI[3]},
		AngularVelBody: vecmath.Vector3{X: s.Body.AngularVelBody[0], Y: s.Body.AngularVelBody[1], Z: s.Body.AngularVelBody[2]},
		Landed:         s.Body.Landed,
	}

	for _, pt := range s.Tanks {
		if t := o.Fuel.TankByID(pt.ID); t != nil {
			t.FuelMass = pt.FuelMassKg
			t.Temperature = pt.TemperatureK
			t.Ruptured = pt.Ruptured
		}
	}

	for _, pb := range s.Bottles {
		if b := o.Gas.BottleByID(pb.ID); b != nil {
			b.Moles = pb.Moles
			b.TempK = pb.TemperatureK
		}
	}

	o.Electrical.Reactor.Status = electricalStatusFrom(s.Electrical.Reactor.Status)
	o.Electrical.Reactor.OutputKW = s.Electrical.Reactor.OutputKW
	o.Electrical.Reactor.TemperatureK = s.Electrical.Reactor.TemperatureK
	o.Electrical.Reactor.Health = s.Electrical.Reactor.Health
	o.Electrical.Battery.Charge = s.Electrical.BatteryChargeKWh
	for _, pc := range s.Electrical.Consumers {
		if c := o.Electrical.ConsumerByID(pc.ID); c != nil {
			c.SetBreaker(!pc.BreakerTripped)
		}
	}

	for _, ptc := range s.Thermal {
		if c := o.Thermal.ComponentByID(ptc.ID); c != nil {
			c.TemperatureK = ptc.TemperatureK
		}
	}

	for _, pl := range s.Coolant {
		if l := o.Coolant.LoopByID(pl.ID); l != nil {
			l.CoolantMass = pl.CoolantMassKg
			l.TemperatureK = pl.TemperatureK
			l.PumpActive = pl.PumpActive
			l.Disabled = pl.Disabled
		}
	}

	o.Engine.Status = engineStatusFrom(s.Engine.Status)
	o.Engine.Throttle = s.Engine.Throttle
	o.Engine.GimbalPitch = s.Engine.GimbalPitchRad
	o.Engine.GimbalYaw = s.Engine.GimbalYawRad
	o.Engine.ChamberTempK = s.Engine.ChamberTempK
	o.Engine.Health = s.Engine.Health

	for _, pt := range s.Thrusters {
		if t := o.RCS.ThrusterByName(pt.Name); t != nil {
			t.Activation = pt.Activation
		}
	}

	o.commandedThrottle = s.CommandedThrottle
	o.targetAltitudeM = s.TargetAltitudeM
	o.targetVerticalSpeedMS = s.TargetVerticalSpeedMS
	o.SAS.Engage(flightcontrol.SASMode(s.SASMode), o.Body.State.AttitudeBI)
	o.Autopilot.Engage(flightcontrol.AutopilotMode(s.AutopilotMode), o.targetAltitudeM, o.targetVerticalSpeedMS)

	o.lastGood = nil
	return nil
}
