// Package fuel implements the multi-tank propellant subsystem: draw
// accounting, ideal-gas ullage pressure, thermal relaxation, and the
// center-of-mass contribution the orchestrator folds into physics and
// RCS torque (§4.2).
package fuel

import (
	"fmt"
	"math"

	"lunarsim/internal/config"
	"lunarsim/internal/eventlog"
	"lunarsim/internal/simerr"
	"lunarsim/internal/vecmath"
)

// universalGasConstant is R in J/(mol*K).
const universalGasConstant = 8.31446261815324

// minUllageVolume is the volume below which ullage pressure reports
// the tank's structural limit and emits an overpressure warning
// (§4.2).
const minUllageVolume = 1e-6

// Tank is one propellant tank's mutable runtime state.
type Tank struct {
	cfg config.TankConfig

	FuelMass        float64
	UllagePressure  float64
	Temperature     float64
	Ruptured        bool
	overpressureWarned bool
	emptyEventFired    bool
}

// ID returns the tank's identifier.
func (t *Tank) ID() string { return t.cfg.ID }

// Capacity returns the tank's capacity in kg.
func (t *Tank) Capacity() float64 { return t.cfg.Capacity }

// Position returns the tank's body-frame position.
func (t *Tank) Position() vecmath.Vector3 {
	p := t.cfg.Position
	return vecmath.Vector3{X: p[0], Y: p[1], Z: p[2]}
}

// IsRCSFeed reports whether this tank feeds the RCS cluster rather
// than the main engine.
func (t *Tank) IsRCSFeed() bool { return t.cfg.IsRCSFeed }

func newTank(cfg config.TankConfig) *Tank {
	return &Tank{
		cfg:            cfg,
		FuelMass:       cfg.InitialFuel,
		Temperature:    cfg.InitialTemp,
		UllagePressure: ullagePressure(cfg, cfg.InitialFuel, cfg.InitialTemp),
		emptyEventFired: cfg.InitialFuel <= 0,
	}
}

func ullageVolume(cfg config.TankConfig, fuelMass float64) float64 {
	fuelVolume := fuelMass / cfg.PropellantDensity
	return cfg.Volume - fuelVolume
}

func ullagePressure(cfg config.TankConfig, fuelMass, temp float64) float64 {
	vUllage := ullageVolume(cfg, fuelMass)
	if vUllage < minUllageVolume {
		return cfg.StructuralLimit
	}
	return cfg.PressurantMoles * universalGasConstant * temp / vUllage
}

// System is the ordered set of tanks with stable insertion order and
// unique identifiers (§3 FuelSystem).
type System struct {
	cfg      config.FuelSystemConfig
	tanks    []*Tank
	byID     map[string]*Tank
	rcsEmptyWarned bool
}

// NewSystem builds a fuel System from validated config. Insertion
// order is preserved as-is.
func NewSystem(cfg config.FuelSystemConfig) *System {
	s := &System{cfg: cfg, byID: make(map[string]*Tank, len(cfg.Tanks))}
	for _, tc := range cfg.Tanks {
		t := newTank(tc)
		s.tanks = append(s.tanks, t)
		s.byID[tc.ID] = t
	}
	return s
}

// Tanks returns the ordered tank list (read-only use expected; callers
// must not mutate fields through it outside this package).
func (s *System) Tanks() []*Tank { return s.tanks }

// TankByID returns the tank with the given id, or nil if unknown.
func (s *System) TankByID(id string) *Tank { return s.byID[id] }

// Draw withdraws up to kgRequested kg from the named tank, returning
// the amount actually delivered (min(requested, fuel_mass)). Returns
// simerr.ErrTankNotFound if id is unknown.
func (s *System) Draw(id string, kgRequested float64) (float64, error) {
	t, ok := s.byID[id]
	if !ok {
		return 0, fmt.Errorf("draw %q: %w", id, simerr.ErrTankNotFound)
	}
	if kgRequested < 0 {
		kgRequested = 0
	}
	delivered := math.Min(kgRequested, t.FuelMass)
	t.FuelMass -= delivered
	return delivered, nil
}

// DrawFromMainTanks withdraws kgRequested distributed across every
// non-RCS tank in insertion order, main-tank-first per the routing
// rule in §4.2 ("main vs RCS tanks"). It returns the total delivered.
func (s *System) DrawFromMainTanks(kgRequested float64) float64 {
	remaining := kgRequested
	var delivered float64
	for _, t := range s.tanks {
		if t.IsRCSFeed() || remaining <= 0 {
			continue
		}
		got := math.Min(remaining, t.FuelMass)
		t.FuelMass -= got
		delivered += got
		remaining -= got
	}
	return delivered
}

// DrawFromRCSTanks withdraws kgRequested distributed across every
// RCS-feed tank in insertion order. Returns total delivered.
func (s *System) DrawFromRCSTanks(kgRequested float64) float64 {
	remaining := kgRequested
	var delivered float64
	for _, t := range s.tanks {
		if !t.IsRCSFeed() || remaining <= 0 {
			continue
		}
		got := math.Min(remaining, t.FuelMass)
		t.FuelMass -= got
		delivered += got
		remaining -= got
	}
	return delivered
}

// Pressure returns the tank's current ullage pressure, recomputed from
// the ideal gas law P = nRT/V_ullage. If the ullage volume has
// collapsed below minUllageVolume it returns the tank's structural
// limit. The overpressure_warning and tank_ruptured events are emitted
// by Tick, not here.
func (s *System) Pressure(id string) (float64, error) {
	t, ok := s.byID[id]
	if !ok {
		return 0, fmt.Errorf("pressure %q: %w", id, simerr.ErrTankNotFound)
	}
	return ullagePressure(t.cfg, t.FuelMass, t.Temperature), nil
}

// CenterOfMass returns the propellant-mass-weighted center of mass
// across all tanks, and the total propellant mass, for the
// orchestrator to fold into the rigid body and RCS torque solve.
func (s *System) CenterOfMass() (com vecmath.Vector3, totalMass float64) {
	for _, t := range s.tanks {
		totalMass += t.FuelMass
	}
	if totalMass <= 0 {
		return vecmath.Zero3, 0
	}
	var weighted vecmath.Vector3
	for _, t := range s.tanks {
		weighted = weighted.Add(t.Position().Scale(t.FuelMass))
	}
	return weighted.Scale(1 / totalMass), totalMass
}

// MainPropellantMass sums fuel_mass across every non-RCS tank, the
// availability figure the main engine's ignition and exhaustion checks
// use since it draws only from these tanks via DrawFromMainTanks.
func (s *System) MainPropellantMass() float64 {
	var total float64
	for _, t := range s.tanks {
		if !t.IsRCSFeed() {
			total += t.FuelMass
		}
	}
	return total
}

// TotalPropellantMass sums fuel_mass across all tanks. Per the spec's
// documented open question, this fuel-subsystem total is authoritative
// over any figure the physics/rigid-body side might otherwise carry.
func (s *System) TotalPropellantMass() float64 {
	var total float64
	for _, t := range s.tanks {
		total += t.FuelMass
	}
	return total
}

// Tick relaxes each tank's temperature toward the compartment ambient,
// recomputes ullage pressure, and emits tank_empty/overpressure_warning/
// tank_ruptured events as needed.
func (s *System) Tick(timeS, dt float64, log *eventlog.Log) {
	for _, t := range s.tanks {
		tEnv := s.cfg.CompartmentTempK
		decay := 1 - math.Exp(-dt/t.cfg.ThermalTau)
		t.Temperature += (tEnv - t.Temperature) * decay

		vUllage := ullageVolume(t.cfg, t.FuelMass)
		if vUllage < minUllageVolume {
			t.UllagePressure = t.cfg.StructuralLimit
			if !t.overpressureWarned {
				t.overpressureWarned = true
				log.Append(timeS, eventlog.KindOverpressure, map[string]float64{"tank": tankIndexPayload(s, t)})
			}
		} else {
			t.UllagePressure = ullagePressure(t.cfg, t.FuelMass, t.Temperature)
			t.overpressureWarned = false
		}

		if t.UllagePressure >= t.cfg.RuptureThreshold && !t.Ruptured {
			t.Ruptured = true
			log.Append(timeS, eventlog.KindTankRuptured, map[string]float64{"tank": tankIndexPayload(s, t)})
		}

		if t.FuelMass <= 0 && !t.emptyEventFired {
			t.emptyEventFired = true
			log.Append(timeS, eventlog.KindTankEmpty, map[string]float64{"tank": tankIndexPayload(s, t)})
		} else if t.FuelMass > 0 {
			t.emptyEventFired = false
		}
	}
}

// tankIndexPayload encodes the tank's ordinal position since event
// payloads are flat float64 maps; hosts that need the string id can
// correlate via Tanks() order, which is stable.
func tankIndexPayload(s *System, target *Tank) float64 {
	for i, t := range s.tanks {
		if t == target {
			return float64(i)
		}
	}
	return -1
}
