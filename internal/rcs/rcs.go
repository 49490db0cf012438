// Package rcs implements the twelve-thruster reaction control cluster:
// named group activation, per-thruster force/torque contribution about
// the current center of mass, and propellant draw from the RCS feed
// tanks (§4.8).
package rcs

import (
	"fmt"

	"lunarsim/internal/config"
	"lunarsim/internal/eventlog"
	"lunarsim/internal/simerr"
	"lunarsim/internal/vecmath"
)

// Thruster is one RCS thruster's runtime state.
type Thruster struct {
	cfg      config.ThrusterConfig
	Activation float64 // commanded, [-1, 1], set by SetActivation or group activation
}

// Name returns the thruster's identifier.
func (t *Thruster) Name() string { return t.cfg.Name }

func newThruster(cfg config.ThrusterConfig) *Thruster {
	return &Thruster{cfg: cfg}
}

// ForceBodyN returns the thruster's current force contribution in the
// body frame: activation (clamped to [-1,1], then floored at 0 since
// thrusters cannot pull, only push along their fixed direction) times
// max_thrust_n along the configured unit direction.
func (t *Thruster) ForceBodyN() vecmath.Vector3 {
	a := t.Activation
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	dir := vecmath.Vector3{X: t.cfg.ThrustDirection[0], Y: t.cfg.ThrustDirection[1], Z: t.cfg.ThrustDirection[2]}
	return dir.Normalize().Scale(a * t.cfg.MaxThrustN)
}

// Position returns the thruster's fixed body-frame mount position.
func (t *Thruster) Position() vecmath.Vector3 {
	p := t.cfg.Position
	return vecmath.Vector3{X: p[0], Y: p[1], Z: p[2]}
}

// MassFlowRateKgS returns this thruster's propellant consumption via
// the Tsiolkovsky relation, thrust / (Isp * g0).
func (t *Thruster) MassFlowRateKgS() float64 {
	f := t.ForceBodyN().Magnitude()
	if f <= 0 {
		return 0
	}
	return f / (t.cfg.IspS * config.StandardGravity)
}

// System is the complete twelve-thruster cluster plus named groups.
type System struct {
	cfg       config.RCSConfig
	thrusters []*Thruster
	byName    map[string]*Thruster
	groups    map[string][]string
	rcsTankEmptyWarned bool
}

// NewSystem builds an RCS System from validated config.
func NewSystem(cfg config.RCSConfig) *System {
	s := &System{
		cfg:    cfg,
		byName: make(map[string]*Thruster, len(cfg.Thrusters)),
		groups: make(map[string][]string, len(cfg.Groups)),
	}
	for _, tc := range cfg.Thrusters {
		t := newThruster(tc)
		s.thrusters = append(s.thrusters, t)
		s.byName[tc.Name] = t
	}
	for _, g := range cfg.Groups {
		s.groups[g.Name] = g.Members
	}
	return s
}

// Thrusters returns every thruster in insertion order.
func (s *System) Thrusters() []*Thruster { return s.thrusters }

// ThrusterByName returns the thruster with the given name, or nil.
func (s *System) ThrusterByName(name string) *Thruster { return s.byName[name] }

// SetActivation commands a single thruster's activation level directly.
// Returns simerr.ErrUnknownIdentifier if name is unknown.
func (s *System) SetActivation(name string, level float64) error {
	t, ok := s.byName[name]
	if !ok {
		return fmt.Errorf("set_rcs_activation %q: %w", name, simerr.ErrUnknownIdentifier)
	}
	t.Activation = level
	return nil
}

// ActivateGroup commands every member of the named group to the given
// level, leaving thrusters outside the group untouched. Returns
// simerr.ErrUnknownIdentifier if the group is unknown.
func (s *System) ActivateGroup(group string, level float64) error {
	members, ok := s.groups[group]
	if !ok {
		return fmt.Errorf("activate_rcs_group %q: %w", group, simerr.ErrUnknownIdentifier)
	}
	for _, name := range members {
		s.byName[name].Activation = level
	}
	return nil
}

// ClearAllActivation zeroes every thruster's commanded activation. No
// command path in this module calls it; ActivateGroup only touches the
// named group's members.
func (s *System) ClearAllActivation() {
	for _, t := range s.thrusters {
		t.Activation = 0
	}
}

// NetForceBodyN sums every thruster's current force contribution.
func (s *System) NetForceBodyN() vecmath.Vector3 {
	var total vecmath.Vector3
	for _, t := range s.thrusters {
		total = total.Add(t.ForceBodyN())
	}
	return total
}

// NetTorqueBodyNm sums torque = r x F about the given center of mass
// for every thruster.
func (s *System) NetTorqueBodyNm(centerOfMass vecmath.Vector3) vecmath.Vector3 {
	var total vecmath.Vector3
	for _, t := range s.thrusters {
		f := t.ForceBodyN()
		if f.MagnitudeSquared() == 0 {
			continue
		}
		r := t.Position().Sub(centerOfMass)
		total = total.Add(r.Cross(f))
	}
	return total
}

// TotalMassFlowRateKgS sums every thruster's propellant draw this tick.
func (s *System) TotalMassFlowRateKgS() float64 {
	var total float64
	for _, t := range s.thrusters {
		total += t.MassFlowRateKgS()
	}
	return total
}

// Tick emits an rcs_tank_empty event (latched until propellant
// becomes available again) when the orchestrator passes starved=true
// for this tick's draws.
func (s *System) Tick(timeS float64, starved bool, log *eventlog.Log) {
	if starved && !s.rcsTankEmptyWarned {
		s.rcsTankEmptyWarned = true
		log.Append(timeS, eventlog.KindRCSTankEmpty, nil)
	} else if !starved {
		s.rcsTankEmptyWarned = false
	}
}
