package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalValidConfig() SimulationConfig {
	thrusters := make([]ThrusterConfig, 12)
	names := []string{
		"pitch_up_1", "pitch_up_2", "pitch_down_1", "pitch_down_2",
		"yaw_left_1", "yaw_left_2", "yaw_right_1", "yaw_right_2",
		"roll_cw_1", "roll_cw_2", "roll_ccw_1", "roll_ccw_2",
	}
	for i, n := range names {
		thrusters[i] = ThrusterConfig{
			Name: n, MaxThrustN: 440, IspS: 225,
			Position:        [3]float64{1, 1, 1},
			ThrustDirection: [3]float64{0, 0, 1},
		}
	}

	return SimulationConfig{
		DT:                    0.1,
		MaxEvents:             256,
		PlanetMass:            DefaultPlanetMass,
		PlanetRadius:          DefaultPlanetRadius,
		GravitationalConstant: GravitationalConstant,
		RigidBody:             RigidBodyConfig{DryMass: 5050, Ixx: 1000, Iyy: 1000, Izz: 800},
		FuelSystem: FuelSystemConfig{
			Tanks: []TankConfig{
				{ID: "main1", Capacity: 1500, InitialFuel: 1400, Volume: 1.5, PropellantDensity: 820, ThermalTau: 30, RuptureThreshold: 5e6, StructuralLimit: 4e6, InitialTemp: 280},
			},
			CompartmentTempK: 280,
		},
		Electrical: ElectricalConfig{
			Reactor: ReactorConfig{MaxOutputKW: 10, StartupDurationS: 30, ScramTempK: 900, CooldownTempK: 400, CooldownHoldS: 60},
			Battery: BatteryConfig{CapacityKWh: 5, InitialCharge: 5, Health: 1, MaxChargeRateKW: 1},
			Buses: []BusConfig{
				{ID: "A", CapacityKW: 6, Consumers: []ConsumerConfig{
					{ID: "c1", Priority: 3, BaseW: 100, MaxW: 500, BreakerTripDurationS: 0.2},
				}},
			},
			BrownoutThresholdFraction: 0.95,
			EmergencyBatteryFraction:  0.10,
		},
		MainEngine: MainEngineConfig{
			MaxThrustN: 50000, IspS: 311, MinThrottle: 0.4, MaxGimbalRad: 0.1,
			IgnitionDurationS: 2.0, CooldownDurationS: 5.0, ChamberOvertempK: 3600,
			InefficientHeatFraction: 0.05, ExhaustVelocity: 3050, InitialHealth: 1,
		},
		RCS: RCSConfig{Thrusters: thrusters},
		FlightControl: FlightControlConfig{
			Altitude:        DefaultPIDTuning("altitude"),
			VerticalSpeed:   DefaultPIDTuning("vertical_speed"),
			AttitudePerAxis: DefaultPIDTuning("attitude"),
			RateDamping:     DefaultPIDTuning("rate_damping"),
		},
		Navigation: NavigationConfig{StepS: 0.1, MaxSteps: 10000, MaxTimeS: 1000},
	}
}

func TestNewSimulationConfigAcceptsMinimalValidConfig(t *testing.T) {
	cfg, err := NewSimulationConfig(minimalValidConfig())
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, 0.1, cfg.DT)
}

func TestNewSimulationConfigRejectsNonPositiveDT(t *testing.T) {
	raw := minimalValidConfig()
	raw.DT = 0
	_, err := NewSimulationConfig(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dt must be > 0")
}

func TestNewSimulationConfigAccumulatesMultipleViolations(t *testing.T) {
	raw := minimalValidConfig()
	raw.DT = -1
	raw.PlanetMass = 0
	raw.RigidBody.DryMass = -5
	_, err := NewSimulationConfig(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dt must be > 0")
	assert.Contains(t, err.Error(), "planet_mass must be > 0")
	assert.Contains(t, err.Error(), "dry_mass must be > 0")
}

func TestNewSimulationConfigRejectsWrongThrusterCount(t *testing.T) {
	raw := minimalValidConfig()
	raw.RCS.Thrusters = raw.RCS.Thrusters[:11]
	_, err := NewSimulationConfig(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly 12 thrusters")
}

func TestNewSimulationConfigRejectsDuplicateTankID(t *testing.T) {
	raw := minimalValidConfig()
	raw.FuelSystem.Tanks = append(raw.FuelSystem.Tanks, raw.FuelSystem.Tanks[0])
	_, err := NewSimulationConfig(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate tank id")
}
