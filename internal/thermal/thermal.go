// Package thermal implements per-component temperature integration
// with a static pairwise conduction table and overtemp/hysteresis
// event emission (§4.5).
package thermal

import (
	"lunarsim/internal/config"
	"lunarsim/internal/eventlog"
)

// Component is one tracked thermal mass's mutable runtime state.
type Component struct {
	cfg         config.ThermalComponentConfig
	TemperatureK float64
	HeatInW      float64 // set by the orchestrator each tick before Tick runs
	overtempActive bool
}

// ID returns the component's identifier.
func (c *Component) ID() string { return c.cfg.ID }

// SetHeatInput records this tick's heat generation (W) from the
// component's owning subsystem (engine, reactor, pump, electronics
// baseline), per §4.5.
func (c *Component) SetHeatInput(watts float64) { c.HeatInW = watts }

// System is the complete thermal network: every tracked component
// plus the symmetric conductance table between them.
type System struct {
	cfg        config.ThermalConfig
	components []*Component
	byID       map[string]*Component
	conductance map[[2]string]float64
	coolantAbsorptionW map[string]float64 // set by the orchestrator from coolant loop assignments
}

// NewSystem builds a thermal System from validated config.
func NewSystem(cfg config.ThermalConfig) *System {
	s := &System{
		cfg:         cfg,
		byID:        make(map[string]*Component, len(cfg.Components)),
		conductance: make(map[[2]string]float64),
		coolantAbsorptionW: make(map[string]float64),
	}
	for _, cc := range cfg.Components {
		comp := &Component{cfg: cc, TemperatureK: cc.InitialTempK}
		s.components = append(s.components, comp)
		s.byID[cc.ID] = comp
	}
	for _, pair := range cfg.Conductances {
		s.conductance[[2]string{pair.A, pair.B}] = pair.Conductance
		s.conductance[[2]string{pair.B, pair.A}] = pair.Conductance
	}
	return s
}

// Components returns every tracked component in insertion order.
func (s *System) Components() []*Component { return s.components }

// ComponentByID returns the component with the given id, or nil.
func (s *System) ComponentByID(id string) *Component { return s.byID[id] }

// SetCoolantAbsorption records this tick's heat absorption (W) the
// coolant subsystem is pulling from the named component, sourced from
// the coolant loop's per-tick draw.
func (s *System) SetCoolantAbsorption(componentID string, watts float64) {
	s.coolantAbsorptionW[componentID] = watts
}

func (s *System) conductanceBetween(a, b string) float64 {
	return s.conductance[[2]string{a, b}]
}

// Tick advances every component's temperature by ΔT = (Qin - Qout) *
// dt / (mass * specific_heat), where Qout is the sum of conductive
// coupling to every other component plus coolant absorption, and
// emits overtemp events with 5% hysteresis (§4.5).
func (s *System) Tick(timeS, dt float64, log *eventlog.Log) {
	deltas := make([]float64, len(s.components))
	for i, c := range s.components {
		var qOut float64
		for _, other := range s.components {
			if other == c {
				continue
			}
			g := s.conductanceBetween(c.ID(), other.ID())
			if g == 0 {
				continue
			}
			qOut += g * (c.TemperatureK - other.TemperatureK)
		}
		qOut += s.coolantAbsorptionW[c.ID()]

		deltas[i] = (c.HeatInW - qOut) * dt / (c.cfg.Mass * c.cfg.SpecificHeat)
	}

	for i, c := range s.components {
		c.TemperatureK += deltas[i]

		if c.cfg.WarningThreshold <= 0 {
			continue
		}
		if !c.overtempActive && c.TemperatureK >= c.cfg.WarningThreshold {
			c.overtempActive = true
			log.Append(timeS, eventlog.KindOvertemp, map[string]float64{
				"temperature_k": c.TemperatureK,
			})
		} else if c.overtempActive && c.TemperatureK < c.cfg.WarningThreshold*(1-s.cfg.HysteresisFraction) {
			c.overtempActive = false
		}
	}
}
