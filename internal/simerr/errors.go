// Package simerr defines the core's abstract error taxonomy (§7 of the
// spec) as sentinel values any subsystem can wrap with fmt.Errorf and
// "%w", and callers can test with errors.Is.
package simerr

import "errors"

var (
	// ErrConfigurationInvalid marks a parameter out of its accepted
	// range at construction time. Fatal — the caller must not
	// instantiate the offending component.
	ErrConfigurationInvalid = errors.New("configuration invalid")

	// ErrUnknownIdentifier marks a command referencing an unknown
	// tank/bus/consumer/thruster-group/loop id. The command is
	// rejected; state is left unchanged.
	ErrUnknownIdentifier = errors.New("unknown identifier")

	// ErrInvalidRange marks a numeric input outside its accepted
	// interval. Some commands clamp and proceed (documented at the
	// call site); others reject via this error.
	ErrInvalidRange = errors.New("invalid range")

	// ErrIllegalStateTransition marks a command that is well-formed
	// but not legal from the current state (e.g. ignite while
	// running). Rejected; no state change, no event.
	ErrIllegalStateTransition = errors.New("illegal state transition")

	// ErrResourceExhausted marks internal resource exhaustion (empty
	// tank, empty battery). Never returned from a command method —
	// surfaced only through the event log, subsystems degrade to
	// zero output.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrPhysicalLimit marks an internal physical limit breach
	// (overtemp, overpressure, rupture). Never returned from a
	// command method — surfaced through the event log, may cascade.
	ErrPhysicalLimit = errors.New("physical limit exceeded")

	// ErrTankNotFound is the fuel subsystem's concrete UnknownIdentifier.
	ErrTankNotFound = errors.New("tank not found")

	// ErrTankRuptured marks a tank whose ullage pressure reached its
	// rupture threshold; a PhysicalLimit specialization.
	ErrTankRuptured = errors.New("tank ruptured")

	// ErrBrownoutUnrecoverable marks essential demand exceeding
	// generation plus battery reserve even after shedding every
	// non-essential consumer.
	ErrBrownoutUnrecoverable = errors.New("brownout unrecoverable")

	// ErrSchemaVersionMismatch marks a persisted-state restore whose
	// schema_version does not match the running core's version.
	ErrSchemaVersionMismatch = errors.New("persisted schema version mismatch")
)

// ConfigError accumulates every validation failure found while
// constructing a SimulationConfig, rather than stopping at the first
// one — a host assembling a scenario wants the complete list.
type ConfigError struct {
	Violations []string
}

func (e *ConfigError) Error() string {
	if len(e.Violations) == 1 {
		return "configuration invalid: " + e.Violations[0]
	}
	msg := "configuration invalid (multiple violations):"
	for _, v := range e.Violations {
		msg += "\n  - " + v
	}
	return msg
}

func (e *ConfigError) Unwrap() error { return ErrConfigurationInvalid }

// NewConfigError returns nil if violations is empty, otherwise a
// *ConfigError wrapping every violation message given.
func NewConfigError(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ConfigError{Violations: violations}
}
