// Package electrical implements reactor generation, battery buffering,
// bus distribution with priority load shedding, and per-consumer
// breakers (§4.4).
package electrical

import (
	"fmt"
	"math"
	"sort"

	"lunarsim/internal/config"
	"lunarsim/internal/eventlog"
	"lunarsim/internal/simerr"
)

// ReactorStatus is the reactor lifecycle state.
type ReactorStatus string

const (
	ReactorOffline   ReactorStatus = "offline"
	ReactorStarting  ReactorStatus = "starting"
	ReactorOnline    ReactorStatus = "online"
	ReactorScrammed  ReactorStatus = "scrammed"
)

// Reactor is the power generator's mutable state.
type Reactor struct {
	cfg config.ReactorConfig

	Status      ReactorStatus
	OutputKW    float64
	TemperatureK float64
	Health      float64

	startElapsed   float64
	coolHoldElapsed float64
	onlineEventFired bool
}

func newReactor(cfg config.ReactorConfig) *Reactor {
	return &Reactor{cfg: cfg, Status: ReactorOffline, TemperatureK: 290, Health: 1}
}

// Start requests a startup. Illegal unless currently offline.
func (r *Reactor) Start() error {
	if r.Status != ReactorOffline {
		return fmt.Errorf("start_reactor from %s: %w", r.Status, simerr.ErrIllegalStateTransition)
	}
	r.Status = ReactorStarting
	r.startElapsed = 0
	r.onlineEventFired = false
	return nil
}

// Scram requests an emergency shutdown. Illegal unless starting or
// online.
func (r *Reactor) Scram() error {
	if r.Status != ReactorStarting && r.Status != ReactorOnline {
		return fmt.Errorf("scram_reactor from %s: %w", r.Status, simerr.ErrIllegalStateTransition)
	}
	r.Status = ReactorScrammed
	r.OutputKW = 0
	return nil
}

// Reset externally clears a scram back to offline. This is the "no
// path from scrammed except external reset" escape hatch named in §3.
func (r *Reactor) Reset() error {
	if r.Status != ReactorScrammed {
		return fmt.Errorf("reset_reactor from %s: %w", r.Status, simerr.ErrIllegalStateTransition)
	}
	r.Status = ReactorOffline
	r.startElapsed = 0
	r.coolHoldElapsed = 0
	return nil
}

func (r *Reactor) tick(timeS, dt float64, log *eventlog.Log) {
	switch r.Status {
	case ReactorStarting:
		r.startElapsed += dt
		frac := math.Min(r.startElapsed/r.cfg.StartupDurationS, 1.0)
		r.OutputKW = frac * r.cfg.MaxOutputKW * r.Health
		if r.startElapsed >= r.cfg.StartupDurationS {
			r.Status = ReactorOnline
			r.OutputKW = r.cfg.MaxOutputKW * r.Health
			if !r.onlineEventFired {
				log.Append(timeS, eventlog.KindReactorOnline, nil)
				r.onlineEventFired = true
			}
		}
	case ReactorOnline:
		r.OutputKW = r.cfg.MaxOutputKW * r.Health
		if r.TemperatureK > r.cfg.ScramTempK {
			r.Status = ReactorScrammed
			r.OutputKW = 0
			log.Append(timeS, eventlog.KindScram, map[string]float64{"temperature_k": r.TemperatureK})
		}
	case ReactorScrammed, ReactorOffline:
		r.OutputKW = 0
	}

	if r.Status == ReactorScrammed || r.Status == ReactorOffline {
		if r.TemperatureK < r.cfg.CooldownTempK {
			r.coolHoldElapsed += dt
		} else {
			r.coolHoldElapsed = 0
		}
	}
}

// HeatOutputW returns the reactor's waste heat contribution reported
// to the thermal subsystem: a fixed 10% of electrical output, so zero
// whenever the reactor produces no output.
func (r *Reactor) HeatOutputW() float64 {
	return r.OutputKW * 1000 * 0.1
}

// Battery is the buffering power store.
type Battery struct {
	cfg    config.BatteryConfig
	Charge float64
	Health float64
}

func newBattery(cfg config.BatteryConfig) *Battery {
	return &Battery{cfg: cfg, Charge: cfg.InitialCharge, Health: cfg.Health}
}

func (b *Battery) maxCharge() float64 { return b.cfg.CapacityKWh * b.Health }

// Consumer is one electrical load on a bus.
type Consumer struct {
	cfg      config.ConsumerConfig
	CurrentW float64
	Powered  bool
	BreakerTripped bool
	overCurrentElapsed float64
}

func newConsumer(cfg config.ConsumerConfig) *Consumer {
	return &Consumer{cfg: cfg, CurrentW: cfg.BaseW, Powered: true}
}

// ID returns the consumer's identifier.
func (c *Consumer) ID() string { return c.cfg.ID }

// RequestCurrent sets the consumer's desired draw for this tick,
// clamped to [base_w, max_w] and zeroed if the breaker has tripped or the
// consumer has been shed.
func (c *Consumer) RequestCurrent(desiredW float64) {
	if c.BreakerTripped || !c.Powered {
		c.CurrentW = 0
		return
	}
	if desiredW < c.cfg.BaseW {
		desiredW = c.cfg.BaseW
	}
	if desiredW > c.cfg.MaxW {
		desiredW = c.cfg.MaxW
	}
	c.CurrentW = desiredW
}

// SetBreaker enables/disables the consumer via external command,
// matching the manual-reset requirement in §4.4.
func (c *Consumer) SetBreaker(enabled bool) {
	if enabled {
		c.BreakerTripped = false
		c.overCurrentElapsed = 0
	} else {
		c.BreakerTripped = true
		c.CurrentW = 0
	}
}

func (c *Consumer) tickBreaker(dt float64) {
	if c.CurrentW > c.cfg.MaxW {
		c.overCurrentElapsed += dt
		if c.overCurrentElapsed > c.cfg.BreakerTripDurationS {
			c.BreakerTripped = true
			c.CurrentW = 0
		}
	} else {
		c.overCurrentElapsed = 0
	}
}

// Bus is one electrical bus (A, B, or Emergency) and its consumers.
type Bus struct {
	cfg       config.BusConfig
	Enabled   bool
	LoadKW    float64
	consumers []*Consumer
	byID      map[string]*Consumer
}

func newBus(cfg config.BusConfig) *Bus {
	b := &Bus{cfg: cfg, Enabled: true, byID: make(map[string]*Consumer, len(cfg.Consumers))}
	for _, cc := range cfg.Consumers {
		c := newConsumer(cc)
		b.consumers = append(b.consumers, c)
		b.byID[cc.ID] = c
	}
	return b
}

// ID returns the bus's identifier.
func (b *Bus) ID() string { return b.cfg.ID }

// Consumers returns the bus's consumer list in insertion order.
func (b *Bus) Consumers() []*Consumer { return b.consumers }

func (b *Bus) recomputeLoad() {
	var totalW float64
	for _, c := range b.consumers {
		totalW += c.CurrentW
	}
	b.LoadKW = totalW / 1000
}

// System is the complete electrical subsystem.
type System struct {
	cfg     config.ElectricalConfig
	Reactor *Reactor
	Battery *Battery
	buses   []*Bus
	byID    map[string]*Bus
}

// NewSystem builds an electrical System from validated config.
func NewSystem(cfg config.ElectricalConfig) *System {
	s := &System{
		cfg:     cfg,
		Reactor: newReactor(cfg.Reactor),
		Battery: newBattery(cfg.Battery),
		byID:    make(map[string]*Bus, len(cfg.Buses)),
	}
	for _, bc := range cfg.Buses {
		b := newBus(bc)
		s.buses = append(s.buses, b)
		s.byID[bc.ID] = b
	}
	return s
}

// Buses returns the bus list in insertion order.
func (s *System) Buses() []*Bus { return s.buses }

// BusByID returns the bus with the given id, or nil if unknown.
func (s *System) BusByID(id string) *Bus { return s.byID[id] }

// ConsumerByID searches every bus for a consumer with the given id.
func (s *System) ConsumerByID(id string) *Consumer {
	for _, b := range s.buses {
		if c, ok := b.byID[id]; ok {
			return c
		}
	}
	return nil
}

// SetBreaker sets the named consumer's breaker state. Returns
// simerr.ErrUnknownIdentifier if id is unknown.
func (s *System) SetBreaker(id string, enabled bool) error {
	c := s.ConsumerByID(id)
	if c == nil {
		return fmt.Errorf("set_circuit_breaker %q: %w", id, simerr.ErrUnknownIdentifier)
	}
	c.SetBreaker(enabled)
	return nil
}

// Tick advances the reactor, evaluates every consumer's requested
// load, resolves brownouts bus-by-bus, updates the battery, and
// activates the emergency bus when required (§4.4).
func (s *System) Tick(timeS, dt float64, log *eventlog.Log) {
	s.Reactor.tick(timeS, dt, log)

	for _, b := range s.buses {
		for _, c := range b.consumers {
			if c.Powered && !c.BreakerTripped {
				c.RequestCurrent(c.cfg.MaxW)
			}
			c.tickBreaker(dt)
		}
		b.recomputeLoad()
		s.resolveBrownout(timeS, b, log)
	}

	var totalDemandKW float64
	for _, b := range s.buses {
		totalDemandKW += b.LoadKW
	}

	deficitKW := totalDemandKW - s.Reactor.OutputKW
	if deficitKW > 0 {
		drawKWh := deficitKW * (dt / 3600)
		s.Battery.Charge = math.Max(0, s.Battery.Charge-drawKWh)
	} else {
		surplusKW := math.Min(-deficitKW, s.Battery.cfg.MaxChargeRateKW)
		chargeKWh := surplusKW * (dt / 3600)
		s.Battery.Charge = math.Min(s.Battery.maxCharge(), s.Battery.Charge+chargeKWh)
	}

	s.updateEmergencyBus()
}

func (s *System) resolveBrownout(timeS float64, b *Bus, log *eventlog.Log) {
	threshold := s.cfg.BrownoutThresholdFraction * b.cfg.CapacityKW
	if b.LoadKW <= threshold || b.LoadKW <= 0 {
		return
	}

	candidates := make([]*Consumer, len(b.consumers))
	copy(candidates, b.consumers)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].cfg.Priority < candidates[j].cfg.Priority
	})

	var shed []string
	for _, c := range candidates {
		if b.LoadKW <= threshold {
			break
		}
		if c.cfg.Essential || !c.Powered {
			continue
		}
		c.Powered = false
		c.CurrentW = 0
		shed = append(shed, c.cfg.ID)
		b.recomputeLoad()
	}

	if len(shed) > 0 {
		payload := map[string]float64{"shed_count": float64(len(shed))}
		log.Append(timeS, eventlog.KindBrownout, payload)
	}
}

func (s *System) updateEmergencyBus() {
	emergency := s.byID["Emergency"]
	if emergency == nil {
		return
	}
	mainOffline := true
	for _, b := range s.buses {
		if b.ID() == "Emergency" {
			continue
		}
		if b.Enabled && b.LoadKW > 0 {
			mainOffline = false
		}
	}
	lowBattery := s.Battery.Charge <= s.cfg.EmergencyBatteryFraction*s.Battery.maxCharge()
	emergency.Enabled = lowBattery && mainOffline
	for _, c := range emergency.consumers {
		c.Powered = emergency.Enabled && c.cfg.Essential
	}
}

// EssentialDemandExceedsCapacity reports the BrownoutUnrecoverable
// condition from §4.4: essential demand across every bus exceeds
// generation plus battery reserve even with every non-essential
// consumer shed.
func (s *System) EssentialDemandExceedsCapacity() bool {
	var essentialKW float64
	for _, b := range s.buses {
		for _, c := range b.consumers {
			if c.cfg.Essential {
				essentialKW += c.cfg.MaxW / 1000
			}
		}
	}
	available := s.Reactor.OutputKW + s.Battery.cfg.MaxChargeRateKW
	return essentialKW > available
}
