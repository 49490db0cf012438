package thermal

import (
	"testing"

	"lunarsim/internal/config"
	"lunarsim/internal/eventlog"
)

func twoComponentConfig() config.ThermalConfig {
	return config.ThermalConfig{
		Components: []config.ThermalComponentConfig{
			{ID: "engine", InitialTempK: 300, Mass: 50, SpecificHeat: 500, WarningThreshold: 500},
			{ID: "avionics", InitialTempK: 300, Mass: 10, SpecificHeat: 900, WarningThreshold: 350},
		},
		Conductances:       []config.ConductancePair{{A: "engine", B: "avionics", Conductance: 2.0}},
		HysteresisFraction: 0.05,
	}
}

func TestHeatInputRaisesTemperature(t *testing.T) {
	s := NewSystem(twoComponentConfig())
	log := eventlog.New(8)
	s.ComponentByID("engine").SetHeatInput(1000)
	s.ComponentByID("avionics").SetHeatInput(0)

	before := s.ComponentByID("engine").TemperatureK
	s.Tick(0, 0.1, log)
	after := s.ComponentByID("engine").TemperatureK
	if after <= before {
		t.Errorf("expected temperature to rise under heat input, before=%v after=%v", before, after)
	}
}

func TestConductionEqualizesTemperatures(t *testing.T) {
	cfg := twoComponentConfig()
	// G=200 W/K gives a coupling time constant of about 33s, so 200s of
	// ticks closes the 100K gap to well under 5K (at G=2 it is about 3300s).
	cfg.Conductances[0].Conductance = 200
	s := NewSystem(cfg)
	log := eventlog.New(8)
	s.ComponentByID("engine").TemperatureK = 400
	s.ComponentByID("avionics").TemperatureK = 300
	for i := 0; i < 2000; i++ {
		s.Tick(float64(i)*0.1, 0.1, log)
	}
	engineT := s.ComponentByID("engine").TemperatureK
	avionicsT := s.ComponentByID("avionics").TemperatureK
	if diff := engineT - avionicsT; diff > 5 || diff < -5 {
		t.Errorf("expected conduction to equalize temperatures over time, engine=%v avionics=%v", engineT, avionicsT)
	}
}

func TestOvertempEventHasHysteresis(t *testing.T) {
	s := NewSystem(twoComponentConfig())
	log := eventlog.New(16)
	c := s.ComponentByID("avionics")
	c.TemperatureK = 349.99 // 2000W over 0.1s into 9000 J/K adds about 0.02K
	c.SetHeatInput(2000)
	s.Tick(0, 0.1, log)
	if !c.overtempActive {
		t.Fatal("expected overtemp active after crossing threshold")
	}

	c.TemperatureK = 340 // above 350*0.95=332.5, should remain active
	s.Tick(0.1, 0.1, log)
	if !c.overtempActive {
		t.Error("expected overtemp to remain latched within hysteresis band")
	}

	c.TemperatureK = 300
	c.SetHeatInput(0)
	s.Tick(0.2, 0.1, log)
	if c.overtempActive {
		t.Error("expected overtemp to clear once below hysteresis band")
	}
}

func TestCoolantAbsorptionActsAsHeatSink(t *testing.T) {
	s := NewSystem(twoComponentConfig())
	log := eventlog.New(8)
	s.ComponentByID("engine").SetHeatInput(100)
	s.SetCoolantAbsorption("engine", 100)
	before := s.ComponentByID("engine").TemperatureK
	s.Tick(0, 0.1, log)
	after := s.ComponentByID("engine").TemperatureK
	if after > before+1e-6 {
		t.Errorf("expected coolant absorption to offset heat input, before=%v after=%v", before, after)
	}
}
