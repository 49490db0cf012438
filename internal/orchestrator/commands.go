package orchestrator

import (
	"errors"

	"lunarsim/internal/flightcontrol"
	"lunarsim/internal/simerr"
)

// CommandResult is the outcome of a single command, per the §6 ingress
// contract: Ok or one of three rejection kinds. Implementation-level
// faults are reported through the method's error return instead; a
// CommandResult rejection is an expected, routine outcome, not a
// failure of the call itself.
type CommandResult int

const (
	ResultOk CommandResult = iota
	ResultUnknownIdentifier
	ResultInvalidRange
	ResultIllegalStateTransition
)

// String renders the result the way a host log line would.
func (r CommandResult) String() string {
	switch r {
	case ResultOk:
		return "ok"
	case ResultUnknownIdentifier:
		return "unknown_identifier"
	case ResultInvalidRange:
		return "invalid_range"
	case ResultIllegalStateTransition:
		return "illegal_state_transition"
	default:
		return "unknown_result"
	}
}

// classify maps a subsystem error (wrapping one of simerr's sentinels)
// to the command-layer result it corresponds to, per the taxonomy in
// §7: ResourceExhausted/PhysicalLimit never surface here, only through
// the event log, so any error reaching this point is one of the three
// command-rejection kinds, or nil for Ok.
func classify(err error) CommandResult {
	switch {
	case err == nil:
		return ResultOk
	case errors.Is(err, simerr.ErrUnknownIdentifier), errors.Is(err, simerr.ErrTankNotFound):
		return ResultUnknownIdentifier
	case errors.Is(err, simerr.ErrInvalidRange):
		return ResultInvalidRange
	case errors.Is(err, simerr.ErrIllegalStateTransition):
		return ResultIllegalStateTransition
	default:
		return ResultIllegalStateTransition
	}
}

// commandKind is the closed set of edge-triggered verbs the per-tick
// dedup buffer tracks. Idempotent setpoint commands (throttle, gimbal,
// target altitude/vertical-speed, SAS/autopilot mode) are not buffered
// here: the state they write is itself idempotent, so collapsing
// duplicates has no observable effect and tracking them would only add
// bookkeeping (§4.15, §5 "duplicate edge triggers within one tick
// collapse to one").
type commandKind int

const (
	cmdIgniteEngine commandKind = iota
	cmdShutdownEngine
	cmdActivateRCSGroup
	cmdDeactivateRCSGroup
	cmdStartReactor
	cmdScramReactor
)

// CommandBuffer records the edge-triggered commands accepted since the
// last tick, for audit/dedup purposes; the orchestrator drains it with
// an atomic swap at tick step 1 (§4.15).
type CommandBuffer struct {
	edges []edgeCommand
}

type edgeCommand struct {
	kind commandKind
	id   string // group/consumer name, empty for kind with no identifier
}

func (b *CommandBuffer) record(kind commandKind, id string) {
	b.edges = append(b.edges, edgeCommand{kind: kind, id: id})
}

// drain performs the atomic swap: returns every recorded edge command,
// deduplicated by (kind, id), and clears the buffer for the next
// inter-tick window.
func (b *CommandBuffer) drain() []edgeCommand {
	seen := make(map[edgeCommand]bool, len(b.edges))
	var out []edgeCommand
	for _, e := range b.edges {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	b.edges = nil
	return out
}

// SetMainEngineThrottle sets the commanded throttle, clamped to the
// min-throttle band at runtime per the boundary behavior in §8 (no
// error for an out-of-band value; it is clamped, not rejected).
func (o *Orchestrator) SetMainEngineThrottle(f float64) (CommandResult, error) {
	o.commandedThrottle = f
	return ResultOk, nil
}

// IgniteMainEngine requests engine ignition. Applied immediately
// against the engine's own state machine and recorded for this tick's
// edge-trigger dedup window.
func (o *Orchestrator) IgniteMainEngine() (CommandResult, error) {
	o.buffer.record(cmdIgniteEngine, "")
	err := o.Engine.Ignite(o.Fuel.MainPropellantMass())
	return classify(err), nil
}

// ShutdownMainEngine requests a commanded shutdown.
func (o *Orchestrator) ShutdownMainEngine() (CommandResult, error) {
	o.buffer.record(cmdShutdownEngine, "")
	err := o.Engine.Shutdown()
	return classify(err), nil
}

// SetGimbal commands gimbal pitch/yaw, clamped to +-max_gimbal_rad; no
// error is ever returned since out-of-range values are clamped per §8.
func (o *Orchestrator) SetGimbal(pitchRad, yawRad float64) (CommandResult, error) {
	o.Engine.SetGimbal(pitchRad, yawRad)
	return ResultOk, nil
}

// ActivateRCSGroup commands every member of the named group to full
// activation.
func (o *Orchestrator) ActivateRCSGroup(name string) (CommandResult, error) {
	o.buffer.record(cmdActivateRCSGroup, name)
	err := o.RCS.ActivateGroup(name, 1.0)
	return classify(err), nil
}

// DeactivateRCSGroup commands every member of the named group to zero
// activation.
func (o *Orchestrator) DeactivateRCSGroup(name string) (CommandResult, error) {
	o.buffer.record(cmdDeactivateRCSGroup, name)
	err := o.RCS.ActivateGroup(name, 0)
	return classify(err), nil
}

// SetSASMode engages the named SAS mode, capturing the current
// attitude as the hold target and resetting every attitude/rate PID's
// integral (§4.10).
func (o *Orchestrator) SetSASMode(mode flightcontrol.SASMode) (CommandResult, error) {
	o.SAS.Engage(mode, o.Body.State.AttitudeBI)
	return ResultOk, nil
}

// SetAutopilotMode engages the named autopilot mode, resetting PID
// integrals per the "mode switches are atomic" rule (§4.10).
func (o *Orchestrator) SetAutopilotMode(mode flightcontrol.AutopilotMode) (CommandResult, error) {
	o.Autopilot.Engage(mode, o.targetAltitudeM, o.targetVerticalSpeedMS)
	return ResultOk, nil
}

// SetTargetAltitude sets the altitude_hold setpoint.
func (o *Orchestrator) SetTargetAltitude(m float64) (CommandResult, error) {
	o.targetAltitudeM = m
	o.Autopilot.Engage(o.Autopilot.Mode, o.targetAltitudeM, o.targetVerticalSpeedMS)
	return ResultOk, nil
}

// SetTargetVerticalSpeed sets the vertical_speed_hold setpoint.
func (o *Orchestrator) SetTargetVerticalSpeed(ms float64) (CommandResult, error) {
	o.targetVerticalSpeedMS = ms
	o.Autopilot.Engage(o.Autopilot.Mode, o.targetAltitudeM, o.targetVerticalSpeedMS)
	return ResultOk, nil
}

// StartReactor requests reactor startup.
func (o *Orchestrator) StartReactor() (CommandResult, error) {
	o.buffer.record(cmdStartReactor, "")
	err := o.Electrical.Reactor.Start()
	return classify(err), nil
}

// ScramReactor requests an emergency reactor shutdown.
func (o *Orchestrator) ScramReactor() (CommandResult, error) {
	o.buffer.record(cmdScramReactor, "")
	err := o.Electrical.Reactor.Scram()
	return classify(err), nil
}

// SetCoolantPump enables/disables the named loop's pump.
func (o *Orchestrator) SetCoolantPump(loopID string, on bool) (CommandResult, error) {
	err := o.Coolant.SetPump(loopID, on)
	return classify(err), nil
}

// SetCircuitBreaker sets the named consumer's breaker state.
func (o *Orchestrator) SetCircuitBreaker(consumerID string, enabled bool) (CommandResult, error) {
	err := o.Electrical.SetBreaker(consumerID, enabled)
	return classify(err), nil
}
