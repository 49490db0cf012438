// Package eventlog implements the ring buffer of timestamped state
// transitions the orchestrator appends to and hosts pull from (§4.13,
// §9 "callback/event callbacks in source -> event log + pull-model").
// The core never invokes a host callback; it only ever appends.
package eventlog

import (
	"github.com/google/uuid"
)

// Kind is the closed set of event kinds the core defines: the spec §3
// kinds, the subsystem-specific kinds the subsystems emit
// (ignition_abort, overpressure_warning, tank_ruptured, rcs_tank_empty,
// freeze, boil), and config_rejected and persistence_error from
// SPEC_FULL §4.13. Nothing in this module appends sas_engage,
// autopilot_engage, config_rejected or persistence_error.
type Kind string

const (
	KindIgnition        Kind = "ignition"
	KindShutdown        Kind = "shutdown"
	KindIgnitionAbort   Kind = "ignition_abort"
	KindScram           Kind = "scram"
	KindTankEmpty       Kind = "tank_empty"
	KindBrownout        Kind = "brownout"
	KindReactorOnline   Kind = "reactor_online"
	KindOvertemp        Kind = "overtemp"
	KindOverpressure    Kind = "overpressure_warning"
	KindTankRuptured    Kind = "tank_ruptured"
	KindGroundImpact    Kind = "ground_impact"
	KindLowAltitude     Kind = "low_altitude"
	KindSASEngage       Kind = "sas_engage"
	KindAutopilotEngage Kind = "autopilot_engage"
	KindRCSTankEmpty    Kind = "rcs_tank_empty"
	KindFreeze          Kind = "freeze"
	KindBoil            Kind = "boil"
	KindConfigRejected  Kind = "config_rejected"
	KindPersistenceError Kind = "persistence_error"
)

// Event is one ring-buffer entry. Payload is a flat numeric map so the
// snapshot codec can emit it without embedding host-runtime types
// (§6). ID is an ambient correlation handle, not part of the spec's
// literal event tuple; hosts may ignore it.
type Event struct {
	ID      string
	TimeS   float64
	Kind    Kind
	Payload map[string]float64
}

// Log is a fixed-capacity ring buffer. Zero value is not usable; use
// New.
type Log struct {
	capacity int
	entries  []Event
	next     int
	full     bool
}

// New returns a Log with the given capacity (SimulationConfig.MaxEvents).
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = 1
	}
	return &Log{capacity: capacity, entries: make([]Event, capacity)}
}

// Append adds an event, overwriting the oldest entry once the buffer
// is full. O(1).
func (l *Log) Append(timeS float64, kind Kind, payload map[string]float64) {
	l.entries[l.next] = Event{
		ID:      uuid.NewString(),
		TimeS:   timeS,
		Kind:    kind,
		Payload: payload,
	}
	l.next = (l.next + 1) % l.capacity
	if l.next == 0 {
		l.full = true
	}
}

// Snapshot returns a defensive copy of the buffer's contents in
// chronological order (oldest first). The returned slice is safe for
// the caller to retain; mutating it never affects the Log.
func (l *Log) Snapshot() []Event {
	var ordered []Event
	if l.full {
		ordered = append(ordered, l.entries[l.next:]...)
	}
	ordered = append(ordered, l.entries[:l.next]...)

	out := make([]Event, len(ordered))
	for i, e := range ordered {
		payloadCopy := make(map[string]float64, len(e.Payload))
		for k, v := range e.Payload {
			payloadCopy[k] = v
		}
		e.Payload = payloadCopy
		out[i] = e
	}
	return out
}

// Len returns the number of events currently held (<= capacity).
func (l *Log) Len() int {
	if l.full {
		return l.capacity
	}
	return l.next
}
