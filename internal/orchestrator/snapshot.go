package orchestrator

import (
	"lunarsim/internal/eventlog"
	"lunarsim/internal/vecmath"
)

// Vec3 is the wire form of a body/inertial-frame vector (§6).
type Vec3 struct {
	X, Y, Z float64
}

func vec3Of(v vecmath.Vector3) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// Quat is the wire form of an attitude quaternion, w first (§6).
type Quat struct {
	W, X, Y, Z float64
}

func quatOf(q vecmath.Quaternion) Quat { return Quat{W: q.W, X: q.X, Y: q.Y, Z: q.Z} }

// PhysicsSnapshot is the rigid body's published state.
type PhysicsSnapshot struct {
	PositionM      Vec3
	VelocityMS     Vec3
	AttitudeBI     Quat
	AngularVelBody Vec3
	AltitudeM      float64
	SpeedMS        float64
	VerticalSpeedMS float64
	Landed         bool
}

// TankSnapshot is one fuel tank's published state.
type TankSnapshot struct {
	ID             string
	FuelMassKg     float64
	UllagePressurePa float64
	TemperatureK   float64
	Ruptured       bool
}

// FuelSnapshot is the fuel subsystem's published state.
type FuelSnapshot struct {
	Tanks               []TankSnapshot
	TotalPropellantMassKg float64
}

// BottleSnapshot is one compressed-gas bottle's published state.
type BottleSnapshot struct {
	ID                      string
	PressurePa              float64
	RegulatedOutputPressurePa float64
	TemperatureK            float64
}

// GasSnapshot is the compressed-gas subsystem's published state.
type GasSnapshot struct {
	Bottles []BottleSnapshot
}

// ConsumerSnapshot is one electrical consumer's published state.
type ConsumerSnapshot struct {
	ID             string
	CurrentW       float64
	Powered        bool
	BreakerTripped bool
}

// BusSnapshot is one electrical bus's published state.
type BusSnapshot struct {
	ID        string
	Enabled   bool
	LoadKW    float64
	Consumers []ConsumerSnapshot
}

// ElectricalSnapshot is the electrical subsystem's published state.
type ElectricalSnapshot struct {
	ReactorStatus      string
	ReactorOutputKW    float64
	ReactorTemperatureK float64
	ReactorHealth      float64
	BatteryChargeKWh   float64
	BatteryHealth      float64
	Buses              []BusSnapshot
}

// ThermalComponentSnapshot is one thermal node's published state.
type ThermalComponentSnapshot struct {
	ID           string
	TemperatureK float64
}

// ThermalSnapshot is the thermal subsystem's published state.
type ThermalSnapshot struct {
	Components []ThermalComponentSnapshot
}

// CoolantLoopSnapshot is one coolant loop's published state.
type CoolantLoopSnapshot struct {
	ID           string
	TemperatureK float64
	FlowRateLMin float64
	Disabled     bool
}

// CoolantSnapshot is the coolant subsystem's published state.
type CoolantSnapshot struct {
	Loops []CoolantLoopSnapshot
}

// MainEngineSnapshot is the main engine's published state.
type MainEngineSnapshot struct {
	Status       string
	Throttle     float64
	GimbalPitchRad float64
	GimbalYawRad float64
	ChamberTempK float64
	Health       float64
	ThrustN      float64
}

// ThrusterSnapshot is one RCS thruster's published state.
type ThrusterSnapshot struct {
	Name       string
	Activation float64
}

// RCSSnapshot is the RCS subsystem's published state.
type RCSSnapshot struct {
	Thrusters []ThrusterSnapshot
}

// FlightControlSnapshot is the SAS/autopilot subsystem's published
// state.
type FlightControlSnapshot struct {
	SASMode       string
	AutopilotMode string
}

// NavigationSnapshot bundles the predictor outputs evaluated for this
// snapshot's state.
type NavigationSnapshot struct {
	WillImpact      bool
	ImpactTimeS     float64
	ImpactPosition  Vec3
	ImpactSpeedMS   float64
	LatitudeRad     float64
	LongitudeRad    float64
	BurnAltitudeM   float64
	TimeUntilBurnS  float64
	ShouldBurn      bool
}

// EventSnapshot is one event-log entry in wire form.
type EventSnapshot struct {
	ID      string
	TimeS   float64
	Kind    string
	Payload map[string]float64
}

// Snapshot is the complete published simulation state for one tick,
// per §6's hierarchical schema.
type Snapshot struct {
	TimeS         float64
	Physics       PhysicsSnapshot
	Fuel          FuelSnapshot
	Electrical    ElectricalSnapshot
	Thermal       ThermalSnapshot
	Coolant       CoolantSnapshot
	MainEngine    MainEngineSnapshot
	RCS           RCSSnapshot
	FlightControl FlightControlSnapshot
	Gas           GasSnapshot
	Navigation    NavigationSnapshot
	Events        []EventSnapshot
}

// buildSnapshot assembles the published view of every subsystem's
// state at the end of a tick.
func (o *Orchestrator) buildSnapshot(g float64) Snapshot {
	return Snapshot{
		TimeS:         o.TimeS,
		Physics:       o.buildPhysicsSnapshot(),
		Fuel:          o.buildFuelSnapshot(),
		Gas:           o.buildGasSnapshot(),
		Electrical:    o.buildElectricalSnapshot(),
		Thermal:       o.buildThermalSnapshot(),
		Coolant:       o.buildCoolantSnapshot(),
		MainEngine:    o.buildMainEngineSnapshot(),
		RCS:           o.buildRCSSnapshot(),
		FlightControl: FlightControlSnapshot{SASMode: string(o.SAS.Mode), AutopilotMode: string(o.Autopilot.Mode)},
		Navigation:    o.buildNavigationSnapshot(g),
		Events:        o.buildEventSnapshot(),
	}
}

func (o *Orchestrator) buildPhysicsSnapshot() PhysicsSnapshot {
	st := o.Body.State
	return PhysicsSnapshot{
		PositionM:       vec3Of(st.PositionM),
		VelocityMS:      vec3Of(st.VelocityMS),
		AttitudeBI:      quatOf(st.AttitudeBI),
		AngularVelBody:  vec3Of(st.AngularVelBody),
		AltitudeM:       o.Body.Altitude(),
		SpeedMS:         o.Body.Speed(),
		VerticalSpeedMS: o.Body.VerticalSpeed(),
		Landed:          st.Landed,
	}
}

func (o *Orchestrator) buildFuelSnapshot() FuelSnapshot {
	tanks := make([]TankSnapshot, 0, len(o.Fuel.Tanks()))
	for _, t := range o.Fuel.Tanks() {
		tanks = append(tanks, TankSnapshot{
			ID:               t.ID(),
			FuelMassKg:       t.FuelMass,
			UllagePressurePa: t.UllagePressure,
			TemperatureK:     t.Temperature,
			Ruptured:         t.Ruptured,
		})
	}
	return FuelSnapshot{Tanks: tanks, TotalPropellantMassKg: o.Fuel.TotalPropellantMass()}
}

func (o *Orchestrator) buildGasSnapshot() GasSnapshot {
	bottles := make([]BottleSnapshot, 0, len(o.Gas.Bottles()))
	for _, b := range o.Gas.Bottles() {
		bottles = append(bottles, BottleSnapshot{
			ID:                        b.ID(),
			PressurePa:                b.Pressure(),
			RegulatedOutputPressurePa: b.RegulatedOutputPressure(),
			TemperatureK:              b.TempK,
		})
	}
	return GasSnapshot{Bottles: bottles}
}

func (o *Orchestrator) buildElectricalSnapshot() ElectricalSnapshot {
	buses := make([]BusSnapshot, 0, len(o.Electrical.Buses()))
	for _, b := range o.Electrical.Buses() {
		consumers := make([]ConsumerSnapshot, 0, len(b.Consumers()))
		for _, c := range b.Consumers() {
			consumers = append(consumers, ConsumerSnapshot{
				ID:             c.ID(),
				CurrentW:       c.CurrentW,
				Powered:        c.Powered,
				BreakerTripped: c.BreakerTripped,
			})
		}
		buses = append(buses, BusSnapshot{ID: b.ID(), Enabled: b.Enabled, LoadKW: b.LoadKW, Consumers: consumers})
	}
	return ElectricalSnapshot{
		ReactorStatus:       string(o.Electrical.Reactor.Status),
		ReactorOutputKW:     o.Electrical.Reactor.OutputKW,
		ReactorTemperatureK: o.Electrical.Reactor.TemperatureK,
		ReactorHealth:       o.Electrical.Reactor.Health,
		BatteryChargeKWh:    o.Electrical.Battery.Charge,
		BatteryHealth:       o.Electrical.Battery.Health,
		Buses:               buses,
	}
}

func (o *Orchestrator) buildThermalSnapshot() ThermalSnapshot {
	components := make([]ThermalComponentSnapshot, 0, len(o.Thermal.Components()))
	for _, c := range o.Thermal.Components() {
		components = append(components, ThermalComponentSnapshot{ID: c.ID(), TemperatureK: c.TemperatureK})
	}
	return ThermalSnapshot{Components: components}
}

func (o *Orchestrator) buildCoolantSnapshot() CoolantSnapshot {
	loops := make([]CoolantLoopSnapshot, 0, len(o.Coolant.Loops()))
	for _, l := range o.Coolant.Loops() {
		loops = append(loops, CoolantLoopSnapshot{
			ID:           l.ID(),
			TemperatureK: l.TemperatureK,
			FlowRateLMin: l.FlowRateLMin,
			Disabled:     l.Disabled,
		})
	}
	return CoolantSnapshot{Loops: loops}
}

func (o *Orchestrator) buildMainEngineSnapshot() MainEngineSnapshot {
	return MainEngineSnapshot{
		Status:         string(o.Engine.Status),
		Throttle:       o.Engine.Throttle,
		GimbalPitchRad: o.Engine.GimbalPitch,
		GimbalYawRad:   o.Engine.GimbalYaw,
		ChamberTempK:   o.Engine.ChamberTempK,
		Health:         o.Engine.Health,
		ThrustN:        o.Engine.ThrustMagnitudeN(),
	}
}

func (o *Orchestrator) buildRCSSnapshot() RCSSnapshot {
	thrusters := make([]ThrusterSnapshot, 0, len(o.RCS.Thrusters()))
	for _, t := range o.RCS.Thrusters() {
		thrusters = append(thrusters, ThrusterSnapshot{Name: t.Name(), Activation: t.Activation})
	}
	return RCSSnapshot{Thrusters: thrusters}
}

func (o *Orchestrator) buildNavigationSnapshot(g float64) NavigationSnapshot {
	pred := o.Prediction()
	burn := o.SuicideBurnInfo()
	return NavigationSnapshot{
		WillImpact:     pred.WillImpact,
		ImpactTimeS:    pred.ImpactTimeS,
		ImpactPosition: vec3Of(pred.ImpactPosition),
		ImpactSpeedMS:  pred.ImpactSpeedMS,
		LatitudeRad:    pred.LatitudeRad,
		LongitudeRad:   pred.LongitudeRad,
		BurnAltitudeM:  burn.BurnAltitudeM,
		TimeUntilBurnS: burn.TimeUntilBurnS,
		ShouldBurn:     burn.ShouldBurn,
	}
}

func (o *Orchestrator) buildEventSnapshot() []EventSnapshot {
	entries := o.Events.Snapshot()
	out := make([]EventSnapshot, 0, len(entries))
	for _, e := range entries {
		out = append(out, eventSnapshotOf(e))
	}
	return out
}

func eventSnapshotOf(e eventlog.Event) EventSnapshot {
	return EventSnapshot{ID: e.ID, TimeS: e.TimeS, Kind: string(e.Kind), Payload: e.Payload}
}
