package electrical

import (
	"testing"

	"lunarsim/internal/config"
	"lunarsim/internal/eventlog"
)

func sampleConfig() config.ElectricalConfig {
	return config.ElectricalConfig{
		Reactor: config.ReactorConfig{MaxOutputKW: 4, StartupDurationS: 30, ScramTempK: 900, CooldownTempK: 400, CooldownHoldS: 60},
		Battery: config.BatteryConfig{CapacityKWh: 5, InitialCharge: 5, Health: 1, MaxChargeRateKW: 1},
		Buses: []config.BusConfig{
			{ID: "A", CapacityKW: 6, Consumers: []config.ConsumerConfig{
				{ID: "c-p3", Priority: 3, BaseW: 500, MaxW: 1500, BreakerTripDurationS: 0.2},
				{ID: "c-p5", Priority: 5, BaseW: 500, MaxW: 1500, BreakerTripDurationS: 0.2},
				{ID: "c-p7", Priority: 7, BaseW: 500, MaxW: 1500, BreakerTripDurationS: 0.2},
				{ID: "c-p9", Priority: 9, BaseW: 500, MaxW: 1500, Essential: true, BreakerTripDurationS: 0.2},
			}},
			{ID: "Emergency", CapacityKW: 1, Consumers: []config.ConsumerConfig{
				{ID: "e1", Priority: 1, BaseW: 50, MaxW: 100, Essential: true, BreakerTripDurationS: 0.2},
			}},
		},
		BrownoutThresholdFraction: 0.95,
		EmergencyBatteryFraction:  0.10,
	}
}

func TestReactorStartupRampsToOnline(t *testing.T) {
	cfg := sampleConfig()
	cfg.Reactor.MaxOutputKW = 8 // the linear 30s ramp reaches half of max, 4kW, at t=15s
	s := NewSystem(cfg)
	log := eventlog.New(16)
	if err := s.Reactor.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 150; i++ { // 15s at dt=0.1
		s.Reactor.tick(float64(i)*0.1, 0.1, log)
	}
	if s.Reactor.Status != ReactorStarting {
		t.Fatalf("expected still starting at t=15s, got %s", s.Reactor.Status)
	}
	if s.Reactor.OutputKW < 3.5 || s.Reactor.OutputKW > 4.5 {
		t.Errorf("expected output near 4kW at t=15s, got %v", s.Reactor.OutputKW)
	}

	for i := 150; i < 310; i++ { // reach t=31s
		s.Reactor.tick(float64(i)*0.1, 0.1, log)
	}
	if s.Reactor.Status != ReactorOnline {
		t.Fatalf("expected online at t=31s, got %s", s.Reactor.Status)
	}

	onlineEvents := 0
	for _, e := range log.Snapshot() {
		if e.Kind == eventlog.KindReactorOnline {
			onlineEvents++
		}
	}
	if onlineEvents != 1 {
		t.Errorf("expected reactor_online exactly once, got %d", onlineEvents)
	}
}

func TestReactorScramsAboveTempThreshold(t *testing.T) {
	s := NewSystem(sampleConfig())
	log := eventlog.New(16)
	s.Reactor.Start()
	for i := 0; i < 310; i++ {
		s.Reactor.tick(float64(i)*0.1, 0.1, log)
	}
	s.Reactor.TemperatureK = 950
	s.Reactor.tick(31.0, 0.1, log)
	if s.Reactor.Status != ReactorScrammed {
		t.Errorf("expected scrammed status, got %s", s.Reactor.Status)
	}
}

func TestScramIllegalWhenOffline(t *testing.T) {
	s := NewSystem(sampleConfig())
	if err := s.Reactor.Scram(); err == nil {
		t.Error("expected illegal state transition error scramming an offline reactor")
	}
}

func TestBrownoutShedsLowestPriorityFirst(t *testing.T) {
	s := NewSystem(sampleConfig())
	log := eventlog.New(16)
	s.Reactor.Start()
	for i := 0; i < 310; i++ {
		s.Reactor.tick(float64(i)*0.1, 0.1, log)
	}
	s.Tick(31.0, 0.1, log)

	busA := s.BusByID("A")
	if busA.LoadKW > sampleConfig().BrownoutThresholdFraction*busA.cfg.CapacityKW+1e-6 {
		t.Errorf("expected bus load <= 0.95*capacity after brownout, got %v", busA.LoadKW)
	}
	c3 := s.ConsumerByID("c-p3")
	if c3.Powered {
		t.Errorf("expected lowest-priority non-essential consumer c-p3 to be shed")
	}

	brownoutEvents := 0
	for _, e := range log.Snapshot() {
		if e.Kind == eventlog.KindBrownout {
			brownoutEvents++
		}
	}
	if brownoutEvents == 0 {
		t.Error("expected at least one brownout event")
	}
}

func TestBreakerTripsAfterSustainedOvercurrent(t *testing.T) {
	s := NewSystem(sampleConfig())
	c := s.ConsumerByID("c-p3")
	c.CurrentW = c.cfg.MaxW + 500
	for i := 0; i < 5; i++ {
		c.tickBreaker(0.1)
	}
	if !c.BreakerTripped {
		t.Error("expected breaker to trip after sustained overcurrent")
	}
}

func TestSetBreakerResetClearsTrip(t *testing.T) {
	s := NewSystem(sampleConfig())
	c := s.ConsumerByID("c-p3")
	c.SetBreaker(false)
	if !c.BreakerTripped {
		t.Fatal("expected breaker tripped after disable")
	}
	if err := s.SetBreaker("c-p3", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.BreakerTripped {
		t.Error("expected breaker cleared after manual reset")
	}
}

func TestSetBreakerUnknownConsumerReturnsError(t *testing.T) {
	s := NewSystem(sampleConfig())
	if err := s.SetBreaker("missing", true); err == nil {
		t.Error("expected error for unknown consumer id")
	}
}
