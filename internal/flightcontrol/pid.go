package flightcontrol

import "lunarsim/internal/config"

// PID is a standard PID controller with output clamping and
// conditional integration anti-windup: the integral term (clamped to
// +-integral_limit) only accumulates on ticks where the raw output is
// not saturated (§4.10).
type PID struct {
	cfg config.PIDConfig

	integral   float64
	prevError  float64
	hasPrev    bool
}

// NewPID builds a PID controller from tuning config.
func NewPID(cfg config.PIDConfig) *PID {
	return &PID{cfg: cfg}
}

// Reset clears accumulated integral and derivative history, used when
// a controller is freshly engaged so stale error history from a prior
// engagement doesn't leak in.
func (p *PID) Reset() {
	p.integral = 0
	p.prevError = 0
	p.hasPrev = false
}

// Update advances the controller by dt given the current error
// (setpoint - measurement) and returns the clamped control output in
// [-output_max, output_max].
func (p *PID) Update(errVal, dt float64) float64 {
	var derivative float64
	if p.hasPrev && dt > 0 {
		derivative = (errVal - p.prevError) / dt
	}
	p.prevError = errVal
	p.hasPrev = true

	rawOutput := p.cfg.Kp*errVal + p.cfg.Ki*p.integral + p.cfg.Kd*derivative
	saturated := rawOutput > p.cfg.OutputMax || rawOutput < -p.cfg.OutputMax
	if !saturated {
		p.integral = clamp(p.integral+errVal*dt, -p.cfg.IntegralLimit, p.cfg.IntegralLimit)
	}

	return clamp(p.cfg.Kp*errVal+p.cfg.Ki*p.integral+p.cfg.Kd*derivative, -p.cfg.OutputMax, p.cfg.OutputMax)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
