// Package config defines the immutable parameter bundles every
// subsystem is constructed from. A SimulationConfig is built once (via
// NewSimulationConfig), validated completely, and then never mutated —
// subsystems receive it by value or as a read-only pointer and never
// write through it. This is the core's only answer to "configuration":
// parsing config files is a host concern (§1), not the core's.
package config

import (
	"fmt"

	"lunarsim/internal/simerr"
)

// Fixed physical constants (§6). These are not part of the validated
// config tree because they are not tunable per the spec.
const (
	GravitationalConstant = 6.67430e-11
	StandardGravity        = 9.80665
	StefanBoltzmann         = 5.670374419e-8
	SpaceTemperatureK       = 2.7

	DefaultPlanetMass   = 7.342e22
	DefaultPlanetRadius = 1737400.0
)

// PersistenceSchemaVersion is the version tag persisted state is
// stamped with; Restore rejects any mismatch (§6).
const PersistenceSchemaVersion = 1

// TankConfig is the immutable construction parameters for one tank.
type TankConfig struct {
	ID              string
	Capacity        float64 // kg
	InitialFuel     float64 // kg
	Position        [3]float64
	Volume          float64 // m^3, total tank volume (fuel + ullage)
	PropellantDensity float64 // kg/m^3, used to derive ullage volume
	PressurantMoles float64 // moles of pressurant gas, held constant
	InitialTemp     float64 // K
	RuptureThreshold float64 // Pa
	StructuralLimit float64 // Pa, reported pressure once ullage collapses
	ThermalTau      float64 // s, time constant relaxing toward compartment temp
	IsRCSFeed       bool    // whether this tank feeds the RCS cluster
}

// FuelSystemConfig bundles every tank plus the ambient compartment
// temperature tanks relax toward.
type FuelSystemConfig struct {
	Tanks              []TankConfig
	CompartmentTempK   float64
}

// BottleConfig is one compressed-gas bottle.
type BottleConfig struct {
	ID               string
	Volume           float64 // m^3
	InitialMoles     float64
	InitialTemp      float64 // K
	RegulatorSetpoint float64 // Pa
	GasConstant      float64 // J/(mol*K), defaults to the universal gas constant
	HeatCapacityRatio float64 // gamma, adiabatic index
}

// GasSystemConfig bundles every compressed-gas bottle.
type GasSystemConfig struct {
	Bottles []BottleConfig
}

// ReactorConfig tunes the reactor lifecycle.
type ReactorConfig struct {
	MaxOutputKW      float64
	StartupDurationS float64 // 30s per spec
	ScramTempK       float64 // 900K per spec
	CooldownTempK    float64 // 400K per spec
	CooldownHoldS    float64 // 60s per spec
}

// BatteryConfig tunes battery capacity/health.
type BatteryConfig struct {
	CapacityKWh    float64
	InitialCharge  float64
	Health         float64
	MaxChargeRateKW float64 // <= 1kW per spec
}

// ConsumerConfig is one electrical consumer on a bus.
type ConsumerConfig struct {
	ID         string
	Priority   int // lower sheds first
	BaseW      float64
	MaxW       float64
	Essential  bool
	BreakerTripDurationS float64 // 0.2s per spec
}

// BusConfig is one electrical bus (A, B, or Emergency).
type BusConfig struct {
	ID         string
	CapacityKW float64
	Consumers  []ConsumerConfig
}

// ElectricalConfig bundles the reactor, battery, and buses.
type ElectricalConfig struct {
	Reactor ReactorConfig
	Battery BatteryConfig
	Buses   []BusConfig
	BrownoutThresholdFraction float64 // 0.95 per spec
	EmergencyBatteryFraction  float64 // 0.10 per spec
}

// ThermalComponentConfig is one tracked thermal mass.
type ThermalComponentConfig struct {
	ID              string
	InitialTempK    float64
	Mass            float64 // kg
	SpecificHeat    float64 // J/(kg*K)
	WarningThreshold float64 // K
}

// ConductancePair is one symmetric off-diagonal entry of the
// conductance table G[i][j] (W/K).
type ConductancePair struct {
	A, B       string
	Conductance float64
}

// ThermalConfig bundles every tracked component and the coupling table.
type ThermalConfig struct {
	Components   []ThermalComponentConfig
	Conductances []ConductancePair
	HysteresisFraction float64 // 0.05 per spec
}

// CoolantLoopConfig is one coolant loop.
type CoolantLoopConfig struct {
	ID              string
	InitialMass     float64 // kg
	InitialTempK    float64
	RadiatorArea    float64 // m^2
	RadiatorEmissivity float64
	PumpPowerW      float64
	NominalFlowLMin float64
	SpinDownTimeS   float64
	CoolantSpecificHeat float64 // J/(kg*K)
	AssignedComponents []string // thermal component ids this loop absorbs from
}

// CoolantConfig bundles every loop plus the cross-connect.
type CoolantConfig struct {
	Loops             []CoolantLoopConfig
	CrossConnectLoops [2]string // empty strings if no cross-connect configured
	FreezeTempK       float64 // 253K per spec
	BoilTempK         float64 // 393K per spec
}

// MainEngineConfig tunes the main engine.
type MainEngineConfig struct {
	MaxThrustN       float64
	IspS             float64
	MinThrottle      float64 // 0.4 per spec
	MaxGimbalRad     float64
	IgnitionDurationS float64 // 2.0s per spec
	CooldownDurationS float64 // 5.0s per spec
	ChamberOvertempK float64 // 3600K per spec
	InefficientHeatFraction float64 // default 0.05
	ExhaustVelocity  float64 // v_exhaust, m/s
	HealthDecayPerSecond float64 // decay rate while throttle > 0.9
	MountOffset      [3]float64 // body-frame position relative to dry CoM
	InitialHealth    float64
}

// ThrusterConfig is one of the twelve RCS thrusters.
type ThrusterConfig struct {
	Name             string
	Position         [3]float64 // body frame, relative to dry CoM
	ThrustDirection  [3]float64 // unit vector, body frame
	MaxThrustN       float64
	IspS             float64
}

// RCSGroupConfig maps a named command group to the thrusters it
// activates. Every member receives the same activation level when the
// group is commanded; no per-member sign is carried.
type RCSGroupConfig struct {
	Name      string
	Members   []string // thruster names activated by this group
}

// RCSConfig bundles the twelve thrusters and named groups.
type RCSConfig struct {
	Thrusters []ThrusterConfig
	Groups    []RCSGroupConfig
}

// PIDConfig is one PID controller's tuning.
type PIDConfig struct {
	Kp, Ki, Kd   float64
	IntegralLimit float64
	OutputMax     float64
}

// FlightControlConfig bundles every PID plus deadbands.
type FlightControlConfig struct {
	Altitude       PIDConfig
	VerticalSpeed  PIDConfig
	AttitudePerAxis PIDConfig
	RateDamping    PIDConfig
	AttitudeDeadbandRad    float64 // 0.5 deg per spec
	RateDeadbandRadPerSec  float64 // 0.01 rad/s per spec
	SuicideBurnMarginFraction float64 // 1.15 per spec
	HoverVerticalSpeedThreshold float64 // 0.5 m/s per spec
}

// RigidBodyConfig is the body's mass/inertia properties.
type RigidBodyConfig struct {
	DryMass  float64
	Ixx, Iyy, Izz float64
}

// NavigationConfig tunes the trajectory predictor.
type NavigationConfig struct {
	StepS      float64 // dt_pred, default 0.1s
	MaxSteps   int
	MaxTimeS   float64 // T_max, default 1000s
}

// SimulationConfig is the complete, validated, immutable parameter
// bundle for one simulation instance (§3, §4.14).
type SimulationConfig struct {
	DT             float64 // fixed timestep, typically 0.1s
	MaxEvents      int     // event ring buffer capacity
	PlanetMass     float64
	PlanetRadius   float64
	GravitationalConstant float64

	RigidBody     RigidBodyConfig
	FuelSystem    FuelSystemConfig
	GasSystem     GasSystemConfig
	Electrical    ElectricalConfig
	Thermal       ThermalConfig
	Coolant       CoolantConfig
	MainEngine    MainEngineConfig
	RCS           RCSConfig
	FlightControl FlightControlConfig
	Navigation    NavigationConfig
}

// NewSimulationConfig validates cfg completely and returns either the
// same value (config trees are plain values, never mutated after this
// call) or a *simerr.ConfigError listing every violation found.
func NewSimulationConfig(cfg SimulationConfig) (*SimulationConfig, error) {
	var violations []string
	check := func(cond bool, msg string, args ...interface{}) {
		if !cond {
			violations = append(violations, fmt.Sprintf(msg, args...))
		}
	}

	check(cfg.DT > 0, "dt must be > 0, got %v", cfg.DT)
	check(cfg.MaxEvents > 0, "max_events must be > 0, got %v", cfg.MaxEvents)
	check(cfg.PlanetMass > 0, "planet_mass must be > 0, got %v", cfg.PlanetMass)
	check(cfg.PlanetRadius > 0, "planet_radius must be > 0, got %v", cfg.PlanetRadius)
	check(cfg.GravitationalConstant > 0, "gravitational_constant must be > 0, got %v", cfg.GravitationalConstant)

	check(cfg.RigidBody.DryMass > 0, "rigid_body.dry_mass must be > 0, got %v", cfg.RigidBody.DryMass)
	check(cfg.RigidBody.Ixx > 0 && cfg.RigidBody.Iyy > 0 && cfg.RigidBody.Izz > 0,
		"rigid_body inertia components must all be > 0")

	if len(cfg.FuelSystem.Tanks) == 0 {
		violations = append(violations, "fuel_system must declare at least one tank")
	}
	seenTankIDs := map[string]bool{}
	for _, tank := range cfg.FuelSystem.Tanks {
		check(tank.ID != "", "tank id must not be empty")
		check(!seenTankIDs[tank.ID], "duplicate tank id %q", tank.ID)
		seenTankIDs[tank.ID] = true
		check(tank.Capacity > 0, "tank %q capacity must be > 0", tank.ID)
		check(tank.InitialFuel >= 0 && tank.InitialFuel <= tank.Capacity,
			"tank %q initial_fuel must be within [0, capacity]", tank.ID)
		check(tank.Volume > 0, "tank %q volume must be > 0", tank.ID)
		check(tank.PropellantDensity > 0, "tank %q propellant_density must be > 0", tank.ID)
		check(tank.ThermalTau > 0, "tank %q thermal_tau must be > 0", tank.ID)
		check(tank.RuptureThreshold > 0, "tank %q rupture_threshold must be > 0", tank.ID)
	}

	for _, bottle := range cfg.GasSystem.Bottles {
		check(bottle.ID != "", "bottle id must not be empty")
		check(bottle.Volume > 0, "bottle %q volume must be > 0", bottle.ID)
		check(bottle.InitialMoles >= 0, "bottle %q initial_moles must be >= 0", bottle.ID)
		check(bottle.HeatCapacityRatio > 1, "bottle %q heat_capacity_ratio must be > 1", bottle.ID)
		check(bottle.GasConstant > 0, "bottle %q gas_constant must be > 0", bottle.ID)
	}

	check(cfg.Electrical.Reactor.MaxOutputKW > 0, "reactor.max_output_kw must be > 0")
	check(cfg.Electrical.Reactor.StartupDurationS > 0, "reactor.startup_duration_s must be > 0")
	check(cfg.Electrical.Battery.CapacityKWh > 0, "battery.capacity_kwh must be > 0")
	check(cfg.Electrical.Battery.Health >= 0 && cfg.Electrical.Battery.Health <= 1,
		"battery.health must be within [0, 1]")
	check(cfg.Electrical.Battery.InitialCharge >= 0 &&
		cfg.Electrical.Battery.InitialCharge <= cfg.Electrical.Battery.CapacityKWh*cfg.Electrical.Battery.Health,
		"battery.initial_charge must be within [0, capacity*health]")
	check(cfg.Electrical.BrownoutThresholdFraction > 0 && cfg.Electrical.BrownoutThresholdFraction <= 1,
		"electrical.brownout_threshold_fraction must be within (0, 1]")
	if len(cfg.Electrical.Buses) == 0 {
		violations = append(violations, "electrical must declare at least one bus")
	}
	for _, bus := range cfg.Electrical.Buses {
		check(bus.ID != "", "bus id must not be empty")
		check(bus.CapacityKW > 0, "bus %q capacity_kw must be > 0", bus.ID)
		for _, c := range bus.Consumers {
			check(c.ID != "", "consumer id must not be empty on bus %q", bus.ID)
			check(c.MaxW >= c.BaseW, "consumer %q max_w must be >= base_w", c.ID)
			check(c.BreakerTripDurationS > 0, "consumer %q breaker_trip_duration_s must be > 0", c.ID)
		}
	}

	for _, tc := range cfg.Thermal.Components {
		check(tc.ID != "", "thermal component id must not be empty")
		check(tc.Mass > 0, "thermal component %q mass must be > 0", tc.ID)
		check(tc.SpecificHeat > 0, "thermal component %q specific_heat must be > 0", tc.ID)
	}
	for _, pair := range cfg.Thermal.Conductances {
		check(pair.A != pair.B, "conductance pair must connect two distinct components, got %q twice", pair.A)
		check(pair.Conductance >= 0, "conductance %q-%q must be >= 0", pair.A, pair.B)
	}

	for _, loop := range cfg.Coolant.Loops {
		check(loop.ID != "", "coolant loop id must not be empty")
		check(loop.InitialMass > 0, "coolant loop %q initial_mass must be > 0", loop.ID)
		check(loop.RadiatorArea >= 0, "coolant loop %q radiator_area must be >= 0", loop.ID)
		check(loop.RadiatorEmissivity >= 0 && loop.RadiatorEmissivity <= 1,
			"coolant loop %q radiator_emissivity must be within [0, 1]", loop.ID)
		check(loop.CoolantSpecificHeat > 0, "coolant loop %q specific_heat must be > 0", loop.ID)
	}

	check(cfg.MainEngine.MaxThrustN > 0, "main_engine.max_thrust_n must be > 0")
	check(cfg.MainEngine.IspS > 0, "main_engine.isp_s must be > 0")
	check(cfg.MainEngine.MinThrottle > 0 && cfg.MainEngine.MinThrottle < 1,
		"main_engine.min_throttle must be within (0, 1)")
	check(cfg.MainEngine.MaxGimbalRad > 0 && cfg.MainEngine.MaxGimbalRad < 1.5708,
		"main_engine.max_gimbal_rad must be within (0, pi/2)")
	check(cfg.MainEngine.IgnitionDurationS > 0, "main_engine.ignition_duration_s must be > 0")
	check(cfg.MainEngine.CooldownDurationS > 0, "main_engine.cooldown_duration_s must be > 0")
	check(cfg.MainEngine.InitialHealth >= 0 && cfg.MainEngine.InitialHealth <= 1,
		"main_engine.initial_health must be within [0, 1]")

	check(len(cfg.RCS.Thrusters) == 12, "rcs must declare exactly 12 thrusters, got %d", len(cfg.RCS.Thrusters))
	seenThruster := map[string]bool{}
	for _, th := range cfg.RCS.Thrusters {
		check(th.Name != "", "thruster name must not be empty")
		check(!seenThruster[th.Name], "duplicate thruster name %q", th.Name)
		seenThruster[th.Name] = true
		check(th.MaxThrustN > 0, "thruster %q max_thrust_n must be > 0", th.Name)
		check(th.IspS > 0, "thruster %q isp_s must be > 0", th.Name)
	}
	for _, g := range cfg.RCS.Groups {
		check(g.Name != "", "rcs group name must not be empty")
		check(len(g.Members) > 0, "rcs group %q must have at least one member", g.Name)
		for _, m := range g.Members {
			check(seenThruster[m], "rcs group %q references unknown thruster %q", g.Name, m)
		}
	}

	checkPID := func(label string, p PIDConfig) {
		check(p.Kp >= 0 && p.Ki >= 0 && p.Kd >= 0, "%s gains must all be >= 0", label)
		check(p.IntegralLimit >= 0, "%s.integral_limit must be >= 0", label)
		check(p.OutputMax > 0, "%s.output_max must be > 0", label)
	}
	checkPID("flight_control.altitude", cfg.FlightControl.Altitude)
	checkPID("flight_control.vertical_speed", cfg.FlightControl.VerticalSpeed)
	checkPID("flight_control.attitude_per_axis", cfg.FlightControl.AttitudePerAxis)
	checkPID("flight_control.rate_damping", cfg.FlightControl.RateDamping)

	check(cfg.Navigation.StepS > 0, "navigation.step_s must be > 0")
	check(cfg.Navigation.MaxSteps > 0, "navigation.max_steps must be > 0")
	check(cfg.Navigation.MaxTimeS > 0, "navigation.max_time_s must be > 0")

	if err := simerr.NewConfigError(violations); err != nil {
		return nil, err
	}
	out := cfg
	return &out, nil
}

// DefaultPIDTuning returns the §4.10 default gains for the named
// controller ("altitude", "vertical_speed", "attitude", "rate_damping").
func DefaultPIDTuning(name string) PIDConfig {
	switch name {
	case "altitude":
		return PIDConfig{Kp: 0.05, Ki: 0.001, Kd: 0.2, IntegralLimit: 10, OutputMax: 1.0}
	case "vertical_speed":
		return PIDConfig{Kp: 0.8, Ki: 0.1, Kd: 0.15, IntegralLimit: 5, OutputMax: 1.0}
	case "attitude":
		return PIDConfig{Kp: 1.5, Ki: 0.05, Kd: 0.5, IntegralLimit: 2, OutputMax: 1.0}
	case "rate_damping":
		return PIDConfig{Kp: 2.0, Ki: 0.0, Kd: 0.3, IntegralLimit: 0, OutputMax: 1.0}
	default:
		return PIDConfig{}
	}
}
