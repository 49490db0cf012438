// Package orchestrator wires every subsystem into the single
// deterministic update loop named in §4.12: one instance per
// subsystem, a strict eleven-step per-tick order, and the command/
// snapshot/persistence surface hosts interact with (§4.15-4.17).
package orchestrator

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"lunarsim/internal/config"
	"lunarsim/internal/coolant"
	"lunarsim/internal/electrical"
	"lunarsim/internal/engine"
	"lunarsim/internal/eventlog"
	"lunarsim/internal/flightcontrol"
	"lunarsim/internal/fuel"
	"lunarsim/internal/gas"
	"lunarsim/internal/navigation"
	"lunarsim/internal/physics"
	"lunarsim/internal/rcs"
	"lunarsim/internal/thermal"
	"lunarsim/internal/vecmath"
)

// rcsAxisGroups names the convention the orchestrator uses to
// translate SAS axis corrections into RCS groups: a host that wants
// SAS active must define groups under these names. Groups it omits
// are simply never activated; this is an internal wiring convenience,
// not part of the host-facing command API, so a missing group is not
// surfaced as a command error.
var rcsAxisGroups = map[string][2]string{
	"roll":  {"roll_pos", "roll_neg"},
	"pitch": {"pitch_pos", "pitch_neg"},
	"yaw":   {"yaw_pos", "yaw_neg"},
}

// Orchestrator owns exactly one instance of every subsystem and is the
// sole entry point for state advancement (Tick) and command ingress.
type Orchestrator struct {
	cfg config.SimulationConfig
	log *logrus.Logger

	Fuel       *fuel.System
	Gas        *gas.System
	Electrical *electrical.System
	Thermal    *thermal.System
	Coolant    *coolant.System
	Engine     *engine.Engine
	RCS        *rcs.System
	Body       *physics.Body
	SAS        *flightcontrol.SAS
	Autopilot  *flightcontrol.Autopilot
	Predictor  *navigation.Predictor
	Events     *eventlog.Log

	TimeS float64

	buffer                CommandBuffer
	commandedThrottle      float64
	targetAltitudeM        float64
	targetVerticalSpeedMS  float64

	lastGood *Snapshot
}

// New constructs an Orchestrator from a validated SimulationConfig and
// the body's initial rigid-body state.
func New(cfg config.SimulationConfig, initialBody physics.State) *Orchestrator {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)

	return &Orchestrator{
		cfg:        cfg,
		log:        logger,
		Fuel:       fuel.NewSystem(cfg.FuelSystem),
		Gas:        gas.NewSystem(cfg.GasSystem),
		Electrical: electrical.NewSystem(cfg.Electrical),
		Thermal:    thermal.NewSystem(cfg.Thermal),
		Coolant:    coolant.NewSystem(cfg.Coolant),
		Engine:     engine.New(cfg.MainEngine),
		RCS:        rcs.NewSystem(cfg.RCS),
		Body:       physics.New(cfg.RigidBody, initialBody, cfg.PlanetRadius),
		SAS:        flightcontrol.NewSAS(cfg.FlightControl),
		Autopilot:  flightcontrol.NewAutopilot(cfg.FlightControl),
		Predictor:  navigation.NewPredictor(cfg.Navigation),
		Events:     eventlog.New(cfg.MaxEvents),
	}
}

// Tick advances the simulation by exactly dt (normally cfg.DT),
// following the strict eleven-step order of §4.12. A panic from a
// guard assertion deeper in the stack (NaN/Inf propagation) is
// recovered here, logged through the ambient logger, and the
// last-known-good snapshot is retained rather than publishing a
// corrupted one, per §7's release-build pathology policy.
func (o *Orchestrator) Tick(dt float64) (snap Snapshot, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.log.WithField("panic", r).Error("recovered panic during tick; pinning last-known-good snapshot")
			if o.lastGood != nil {
				snap = *o.lastGood
			}
			ok = false
		}
	}()

	// Step 1: atomic swap of the pending edge-trigger command buffer.
	// Idempotent setpoints (throttle, gimbal, modes, targets) already
	// applied synchronously through the command methods; this drain
	// exists for audit/dedup bookkeeping only (see commands.go).
	o.buffer.drain()

	g := physics.SurfaceGravity(o.cfg.PlanetMass, o.cfg.PlanetRadius, o.cfg.GravitationalConstant)

	// Step 2: flight control consumes the previous tick's snapshot
	// state (current attitude/rates/position/velocity) and produces
	// throttle, gimbal is already commanded directly, and SAS axis
	// corrections.
	totalMassForControl := o.cfg.RigidBody.DryMass + o.Fuel.TotalPropellantMass()
	autopilotThrottle := o.Autopilot.Update(
		o.Body.Altitude(), o.Body.VerticalSpeed(),
		o.cfg.MainEngine.MaxThrustN, totalMassForControl, g, dt,
	)
	if autopilotThrottle >= 0 {
		o.Engine.SetThrottle(autopilotThrottle)
	} else {
		o.Engine.SetThrottle(o.commandedThrottle)
	}

	axisOut := o.SAS.Update(o.Body.State.AttitudeBI, o.Body.State.AngularVelBody, o.Body.State.VelocityMS, o.Body.State.PositionM, dt)
	o.applyAxisOutputs(axisOut)

	// Step 3: electrical.
	o.Electrical.Tick(o.TimeS, dt, o.Events)
	if o.Electrical.EssentialDemandExceedsCapacity() {
		o.log.Warn("essential electrical demand exceeds generation plus battery reserve")
	}

	// Step 4: main engine. Propellant availability is checked against
	// the main tanks as they stood at the start of this tick, before
	// this tick's own draw, so an igniting-or-running engine that finds
	// the tanks already dry aborts/shuts down per §4.7 and §8.
	mainPropellantAvailable := o.Fuel.MainPropellantMass() > 0
	o.Engine.Tick(o.TimeS, dt, mainPropellantAvailable, o.Events)
	engineMassFlow := o.Engine.MassFlowRateKgS()
	requestedMain := engineMassFlow * dt
	deliveredMain := o.Fuel.DrawFromMainTanks(requestedMain)
	mainThrustScale := 1.0
	if requestedMain > 0 {
		mainThrustScale = deliveredMain / requestedMain
	}

	engineForce := o.Engine.ThrustVectorBodyN().Scale(mainThrustScale)
	centerOfMass, _ := o.Fuel.CenterOfMass()
	engineLeverArm := o.Engine.ApplicationPoint().Sub(centerOfMass)
	engineTorque := engineLeverArm.Cross(engineForce)

	// Step 5: RCS.
	rcsMassFlow := o.RCS.TotalMassFlowRateKgS()
	deliveredRCS := o.Fuel.DrawFromRCSTanks(rcsMassFlow * dt)
	starved := deliveredRCS < rcsMassFlow*dt-1e-9
	o.RCS.Tick(o.TimeS, starved, o.Events)

	rcsForce := o.RCS.NetForceBodyN()
	rcsTorque := o.RCS.NetTorqueBodyNm(centerOfMass)

	// Step 6: fuel tick (temperature relaxation, pressure, events).
	o.Fuel.Tick(o.TimeS, dt, o.Events)

	// Step 7: compressed gas.
	o.Gas.Tick(dt)

	// Step 8: thermal -- accept heat inputs from engine, reactor, and
	// emit overtemp events.
	o.wireThermalInputs()
	o.Thermal.Tick(o.TimeS, dt, o.Events)

	// Step 9: coolant -- absorb from thermal, radiate, update loops.
	o.wireCoolantPumpPower()
	componentTemps := make(map[string]float64, len(o.Thermal.Components()))
	for _, c := range o.Thermal.Components() {
		componentTemps[c.ID()] = c.TemperatureK
	}
	o.Coolant.Tick(o.TimeS, dt, componentTemps, config.StefanBoltzmann, config.SpaceTemperatureK, o.Events)
	o.reportCoolantAbsorptionToThermal()

	// Step 10: physics integration with the combined body-frame force
	// and torque, and the fuel-derived mass/CoM.
	totalMass := o.cfg.RigidBody.DryMass + o.Fuel.TotalPropellantMass()
	o.Body.SetMassProperties(totalMass, centerOfMass)
	totalForce := engineForce.Add(rcsForce)
	totalTorque := engineTorque.Add(rcsTorque)
	o.Body.Tick(o.TimeS, dt, totalForce, totalTorque, o.cfg.PlanetMass, o.cfg.GravitationalConstant, o.Events)
	guardFinite("position", o.Body.State.PositionM)
	guardFinite("velocity", o.Body.State.VelocityMS)

	// Step 11: event log already appended throughout; publish snapshot.
	o.TimeS += dt
	published := o.buildSnapshot(g)
	o.lastGood = &published
	return published, true
}

func (o *Orchestrator) applyAxisOutputs(axis flightcontrol.AxisOutputs) {
	apply := func(axisName string, value float64) {
		names, defined := rcsAxisGroups[axisName]
		if !defined {
			return
		}
		posGroup, negGroup := names[0], names[1]
		if value > 0 {
			o.RCS.ActivateGroup(posGroup, value)
			o.RCS.ActivateGroup(negGroup, 0)
		} else if value < 0 {
			o.RCS.ActivateGroup(posGroup, 0)
			o.RCS.ActivateGroup(negGroup, -value)
		} else {
			o.RCS.ActivateGroup(posGroup, 0)
			o.RCS.ActivateGroup(negGroup, 0)
		}
	}
	apply("roll", axis.Roll)
	apply("pitch", axis.Pitch)
	apply("yaw", axis.Yaw)
}

func (o *Orchestrator) wireThermalInputs() {
	if c := o.Thermal.ComponentByID("engine"); c != nil {
		c.SetHeatInput(o.Engine.HeatOutputW())
	}
	if c := o.Thermal.ComponentByID("reactor"); c != nil {
		c.SetHeatInput(o.Electrical.Reactor.HeatOutputW())
	}
}

// wireCoolantPumpPower treats pump power as available whenever
// essential electrical demand has not exceeded capacity; a documented
// simplification of a full per-consumer pump breaker wiring, noted in
// DESIGN.md.
func (o *Orchestrator) wireCoolantPumpPower() {
	available := !o.Electrical.EssentialDemandExceedsCapacity()
	for _, l := range o.Coolant.Loops() {
		o.Coolant.SetPumpPower(l.ID(), available)
	}
}

func (o *Orchestrator) reportCoolantAbsorptionToThermal() {
	for _, l := range o.Coolant.Loops() {
		for _, componentID := range l.AssignedComponentIDs() {
			o.Thermal.SetCoolantAbsorption(componentID, l.AbsorbedWattsForComponent(componentID, o.componentTemp(componentID)))
		}
	}
}

func (o *Orchestrator) componentTemp(id string) float64 {
	if c := o.Thermal.ComponentByID(id); c != nil {
		return c.TemperatureK
	}
	return 0
}

// Prediction returns the navigation predictor's forward-integrated
// outcome for the body's current state.
func (o *Orchestrator) Prediction() navigation.Prediction {
	return o.Predictor.Predict(o.Body.State.PositionM, o.Body.State.VelocityMS, o.cfg.PlanetMass, o.cfg.PlanetRadius, o.cfg.GravitationalConstant)
}

// SuicideBurnInfo returns the current suicide-burn derived figures.
func (o *Orchestrator) SuicideBurnInfo() navigation.SuicideBurnInfo {
	g := physics.SurfaceGravity(o.cfg.PlanetMass, o.cfg.PlanetRadius, o.cfg.GravitationalConstant)
	totalMass := o.cfg.RigidBody.DryMass + o.Fuel.TotalPropellantMass()
	return o.Predictor.SuicideBurn(o.Body.Altitude(), o.Body.VerticalSpeed(), o.cfg.MainEngine.MaxThrustN, totalMass, g, o.cfg.FlightControl.SuicideBurnMarginFraction)
}

// guardFinite panics if v is NaN/Inf, the mechanism §7 calls for at
// numerical-pathology boundaries; Tick recovers it at the tick edge.
func guardFinite(label string, v vecmath.Vector3) {
	if !v.IsFinite() {
		panic(fmt.Sprintf("%s is not finite: %+v", label, v))
	}
}
