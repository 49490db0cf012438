// Command simdemo runs a short suicide-burn descent scenario against
// the lunar descent simulation core and prints the published snapshot
// every second of simulated time, the way a host integration would
// drive the orchestrator.
package main

import (
	"fmt"
	"os"

	"lunarsim/internal/config"
	"lunarsim/internal/flightcontrol"
	"lunarsim/internal/orchestrator"
	"lunarsim/internal/physics"
	"lunarsim/internal/vecmath"
)

func demoConfig() config.SimulationConfig {
	thrusterNames := []string{
		"pitch_pos", "pitch_neg", "pitch_pos_2", "pitch_neg_2",
		"yaw_pos", "yaw_neg", "yaw_pos_2", "yaw_neg_2",
		"roll_pos", "roll_neg", "roll_pos_2", "roll_neg_2",
	}
	thrusters := make([]config.ThrusterConfig, len(thrusterNames))
	for i, n := range thrusterNames {
		thrusters[i] = config.ThrusterConfig{
			Name: n, MaxThrustN: 440, IspS: 225,
			Position:        [3]float64{1, 1, 1},
			ThrustDirection: [3]float64{0, 0, 1},
		}
	}
	groups := []config.RCSGroupConfig{
		{Name: "pitch_pos", Members: []string{"pitch_pos", "pitch_pos_2"}},
		{Name: "pitch_neg", Members: []string{"pitch_neg", "pitch_neg_2"}},
		{Name: "yaw_pos", Members: []string{"yaw_pos", "yaw_pos_2"}},
		{Name: "yaw_neg", Members: []string{"yaw_neg", "yaw_neg_2"}},
		{Name: "roll_pos", Members: []string{"roll_pos", "roll_pos_2"}},
		{Name: "roll_neg", Members: []string{"roll_neg", "roll_neg_2"}},
	}

	return config.SimulationConfig{
		DT:                    0.1,
		MaxEvents:             4096,
		PlanetMass:            config.DefaultPlanetMass,
		PlanetRadius:          config.DefaultPlanetRadius,
		GravitationalConstant: config.GravitationalConstant,
		RigidBody:             config.RigidBodyConfig{DryMass: 5050, Ixx: 1000, Iyy: 1000, Izz: 800},
		FuelSystem: config.FuelSystemConfig{
			Tanks: []config.TankConfig{
				{ID: "main1", Capacity: 2200, InitialFuel: 2000, Volume: 2.2, PropellantDensity: 820,
					ThermalTau: 30, RuptureThreshold: 5e6, StructuralLimit: 4e6, InitialTemp: 280},
				{ID: "rcs1", Capacity: 120, InitialFuel: 110, Volume: 0.25, PropellantDensity: 820,
					ThermalTau: 30, RuptureThreshold: 5e6, StructuralLimit: 4e6, InitialTemp: 280, IsRCSFeed: true},
			},
			CompartmentTempK: 280,
		},
		GasSystem: config.GasSystemConfig{
			Bottles: []config.BottleConfig{
				{ID: "pressurant1", Volume: 0.05, InitialMoles: 40, InitialTemp: 280,
					RegulatorSetpoint: 2e5, GasConstant: 8.314, HeatCapacityRatio: 1.4},
			},
		},
		Electrical: config.ElectricalConfig{
			Reactor: config.ReactorConfig{MaxOutputKW: 12, StartupDurationS: 30, ScramTempK: 900, CooldownTempK: 400, CooldownHoldS: 60},
			Battery: config.BatteryConfig{CapacityKWh: 6, InitialCharge: 6, Health: 1, MaxChargeRateKW: 1},
			Buses: []config.BusConfig{
				{ID: "A", CapacityKW: 8, Consumers: []config.ConsumerConfig{
					{ID: "avionics", Priority: 1, BaseW: 150, MaxW: 300, Essential: true, BreakerTripDurationS: 0.2},
					{ID: "comms", Priority: 5, BaseW: 50, MaxW: 200, BreakerTripDurationS: 0.2},
				}},
			},
			BrownoutThresholdFraction: 0.95,
			EmergencyBatteryFraction:  0.10,
		},
		Thermal: config.ThermalConfig{
			Components: []config.ThermalComponentConfig{
				{ID: "engine", InitialTempK: 290, Mass: 60, SpecificHeat: 500, WarningThreshold: 600},
				{ID: "reactor", InitialTempK: 290, Mass: 90, SpecificHeat: 450, WarningThreshold: 700},
			},
			Conductances:       []config.ConductancePair{{A: "engine", B: "reactor", Conductance: 5}},
			HysteresisFraction: 0.05,
		},
		Coolant: config.CoolantConfig{
			Loops: []config.CoolantLoopConfig{
				{ID: "loop1", InitialMass: 40, InitialTempK: 280, RadiatorArea: 3, RadiatorEmissivity: 0.8,
					PumpPowerW: 50, NominalFlowLMin: 12, SpinDownTimeS: 5, CoolantSpecificHeat: 3500,
					AssignedComponents: []string{"reactor"}},
			},
			FreezeTempK: 253,
			BoilTempK:   393,
		},
		MainEngine: config.MainEngineConfig{
			MaxThrustN: 45000, IspS: 311, MinThrottle: 0.4, MaxGimbalRad: 0.2,
			IgnitionDurationS: 2.0, CooldownDurationS: 5.0, ChamberOvertempK: 3600,
			InefficientHeatFraction: 0.05, ExhaustVelocity: 3050, InitialHealth: 1,
		},
		RCS: config.RCSConfig{Thrusters: thrusters, Groups: groups},
		FlightControl: config.FlightControlConfig{
			Altitude:                    config.DefaultPIDTuning("altitude"),
			VerticalSpeed:               config.DefaultPIDTuning("vertical_speed"),
			AttitudePerAxis:             config.DefaultPIDTuning("attitude"),
			RateDamping:                 config.DefaultPIDTuning("rate_damping"),
			AttitudeDeadbandRad:         0.5 * 3.14159265 / 180,
			RateDeadbandRadPerSec:       0.01,
			SuicideBurnMarginFraction:   1.15,
			HoverVerticalSpeedThreshold: 0.5,
		},
		Navigation: config.NavigationConfig{StepS: 0.1, MaxSteps: 5000, MaxTimeS: 500},
	}
}

func main() {
	cfg, err := config.NewSimulationConfig(demoConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid simulation configuration: %v\n", err)
		os.Exit(1)
	}

	initial := physics.State{
		PositionM:  vecmath.Vector3{Z: config.DefaultPlanetRadius + 3000},
		VelocityMS: vecmath.Vector3{Z: -40},
	}
	orch := orchestrator.New(*cfg, initial)

	if res, err := orch.StartReactor(); err != nil || res != orchestrator.ResultOk {
		fmt.Fprintf(os.Stderr, "start_reactor rejected: %v %v\n", res, err)
	}

	printedThisSecond := -1
	for tick := 0; tick < 6000; tick++ {
		burn := orch.SuicideBurnInfo()
		if burn.ShouldBurn && orch.Engine.Throttle == 0 {
			if _, err := orch.SetAutopilotMode(flightcontrol.AutopilotSuicideBurn); err != nil {
				fmt.Fprintf(os.Stderr, "set_autopilot_mode failed: %v\n", err)
			}
			if _, err := orch.IgniteMainEngine(); err != nil {
				fmt.Fprintf(os.Stderr, "ignite_main_engine failed: %v\n", err)
			}
		}

		snap, ok := orch.Tick(cfg.DT)
		if !ok {
			fmt.Fprintln(os.Stderr, "tick recovered from a panic; last-known-good snapshot retained")
			continue
		}

		second := int(snap.TimeS)
		if second != printedThisSecond {
			printedThisSecond = second
			fmt.Printf("t=%5.1fs alt=%8.2fm vspeed=%7.2fm/s throttle=%4.2f engine=%-17s reactor=%-9s events=%d\n",
				snap.TimeS, snap.Physics.AltitudeM, snap.Physics.VerticalSpeedMS,
				snap.MainEngine.Throttle, snap.MainEngine.Status, snap.Electrical.ReactorStatus, len(snap.Events))
		}

		if snap.Physics.Landed {
			fmt.Printf("touchdown at t=%.1fs, vertical speed %.2fm/s\n", snap.TimeS, snap.Physics.VerticalSpeedMS)
			break
		}
	}
}
