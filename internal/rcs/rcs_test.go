package rcs

import (
	"testing"

	"lunarsim/internal/config"
	"lunarsim/internal/eventlog"
	"lunarsim/internal/vecmath"
)

func sampleRCSConfig() config.RCSConfig {
	return config.RCSConfig{
		Thrusters: []config.ThrusterConfig{
			{Name: "fwd+x", Position: [3]float64{0, 1, 0}, ThrustDirection: [3]float64{1, 0, 0}, MaxThrustN: 100, IspS: 150},
			{Name: "fwd-x", Position: [3]float64{0, 1, 0}, ThrustDirection: [3]float64{-1, 0, 0}, MaxThrustN: 100, IspS: 150},
			{Name: "aft+x", Position: [3]float64{0, -1, 0}, ThrustDirection: [3]float64{1, 0, 0}, MaxThrustN: 100, IspS: 150},
			{Name: "aft-x", Position: [3]float64{0, -1, 0}, ThrustDirection: [3]float64{-1, 0, 0}, MaxThrustN: 100, IspS: 150},
		},
		Groups: []config.RCSGroupConfig{
			{Name: "yaw_left", Members: []string{"fwd+x", "aft-x"}},
		},
	}
}

func TestActivateGroupSetsOnlyMembers(t *testing.T) {
	s := NewSystem(sampleRCSConfig())
	if err := s.ActivateGroup("yaw_left", 1.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ThrusterByName("fwd+x").Activation != 1.0 {
		t.Error("expected fwd+x activated")
	}
	if s.ThrusterByName("aft-x").Activation != 1.0 {
		t.Error("expected aft-x activated")
	}
	if s.ThrusterByName("fwd-x").Activation != 0 {
		t.Error("expected fwd-x to remain unactivated")
	}
}

func TestActivateUnknownGroupReturnsError(t *testing.T) {
	s := NewSystem(sampleRCSConfig())
	if err := s.ActivateGroup("missing", 1.0); err == nil {
		t.Error("expected error for unknown group")
	}
}

func TestNetTorqueFromOpposedThrustersAboutOrigin(t *testing.T) {
	s := NewSystem(sampleRCSConfig())
	s.ActivateGroup("yaw_left", 1.0)
	torque := s.NetTorqueBodyNm(vecmath.Zero3)
	if torque.MagnitudeSquared() == 0 {
		t.Error("expected nonzero net torque from couple-aligned thrusters")
	}
}

func TestNegativeActivationProducesNoForce(t *testing.T) {
	s := NewSystem(sampleRCSConfig())
	s.SetActivation("fwd+x", -1.0)
	f := s.ThrusterByName("fwd+x").ForceBodyN()
	if f.MagnitudeSquared() != 0 {
		t.Errorf("expected zero force for negative activation, got %v", f)
	}
}

func TestClearAllActivationZeroesEveryThruster(t *testing.T) {
	s := NewSystem(sampleRCSConfig())
	s.ActivateGroup("yaw_left", 1.0)
	s.ClearAllActivation()
	for _, th := range s.Thrusters() {
		if th.Activation != 0 {
			t.Errorf("expected %s cleared, got %v", th.Name(), th.Activation)
		}
	}
}

func TestTickEmitsRCSTankEmptyOnceWhileStarved(t *testing.T) {
	s := NewSystem(sampleRCSConfig())
	log := eventlog.New(8)
	s.Tick(0, true, log)
	s.Tick(0.1, true, log)
	count := 0
	for _, e := range log.Snapshot() {
		if e.Kind == eventlog.KindRCSTankEmpty {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one rcs_tank_empty event while latched, got %d", count)
	}
}
