package flightcontrol

import (
	"math"
	"testing"

	"lunarsim/internal/config"
	"lunarsim/internal/vecmath"
)

func sampleFlightControlConfig() config.FlightControlConfig {
	return config.FlightControlConfig{
		Altitude:       config.DefaultPIDTuning("altitude"),
		VerticalSpeed:  config.DefaultPIDTuning("vertical_speed"),
		AttitudePerAxis: config.DefaultPIDTuning("attitude"),
		RateDamping:    config.DefaultPIDTuning("rate_damping"),
		AttitudeDeadbandRad:   0.5 * degToRad,
		RateDeadbandRadPerSec: 0.01,
		SuicideBurnMarginFraction: 1.15,
		HoverVerticalSpeedThreshold: 0.5,
	}
}

func TestPIDConditionalIntegrationHaltsOnSaturation(t *testing.T) {
	p := NewPID(config.PIDConfig{Kp: 100, Ki: 10, Kd: 0, IntegralLimit: 1000, OutputMax: 1.0})
	p.Update(10, 0.1)
	integralAfterSaturated := p.integral
	p.Update(10, 0.1)
	if p.integral != integralAfterSaturated {
		t.Errorf("expected integral frozen while output saturated, before=%v after=%v", integralAfterSaturated, p.integral)
	}
}

func TestPIDOutputStaysWithinBounds(t *testing.T) {
	p := NewPID(config.PIDConfig{Kp: 5, Ki: 1, Kd: 0.1, IntegralLimit: 10, OutputMax: 1.0})
	for i := 0; i < 50; i++ {
		out := p.Update(100, 0.1)
		if out > 1.0 || out < -1.0 {
			t.Fatalf("expected output within +-1.0, got %v", out)
		}
	}
}

func TestSASAttitudeHoldDampsNonZeroRotation(t *testing.T) {
	s := NewSAS(sampleFlightControlConfig())
	attitude := vecmath.FromAxisAngle(vecmath.Vector3{X: 1}, 0.2)
	s.Engage(SASAttitudeHold, attitude)

	out := s.Update(vecmath.FromAxisAngle(vecmath.Vector3{X: 1}, 0.5), vecmath.Zero3, vecmath.Zero3, vecmath.Vector3{Z: 1}, 0.1)
	if out.Roll == 0 {
		t.Error("expected nonzero roll correction when attitude has drifted from the held target")
	}
}

func TestSASOffProducesZeroOutput(t *testing.T) {
	s := NewSAS(sampleFlightControlConfig())
	out := s.Update(vecmath.IdentityQuaternion, vecmath.Zero3, vecmath.Zero3, vecmath.Vector3{Z: 1}, 0.1)
	if out != (AxisOutputs{}) {
		t.Errorf("expected zero output while off, got %+v", out)
	}
}

func TestAutopilotOffReturnsPassthroughSentinel(t *testing.T) {
	a := NewAutopilot(sampleFlightControlConfig())
	if got := a.Update(100, -5, 45000, 2000, 1.62, 0.1); got != -1 {
		t.Errorf("expected -1 passthrough sentinel while off, got %v", got)
	}
}

func TestAutopilotHoverDrivesVerticalSpeedToZero(t *testing.T) {
	a := NewAutopilot(sampleFlightControlConfig())
	a.Engage(AutopilotHover, 0, 0)
	out := a.Update(500, -10, 45000, 2000, 1.62, 0.1)
	if out <= 0 {
		t.Errorf("expected positive throttle to arrest descent, got %v", out)
	}
}

func TestBurnAltitudeMatchesAnalyticFormula(t *testing.T) {
	v, fMax, mass, g, margin := 60.0, 45000.0, 2000.0, 1.62, 1.15
	got := BurnAltitudeM(v, fMax, mass, g, margin)
	decel := fMax/mass - g
	want := (v * v) / (2 * decel) * margin
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSuicideBurnIgnitesAtBurnAltitudeAndHandsOffToHover(t *testing.T) {
	a := NewAutopilot(sampleFlightControlConfig())
	a.Engage(AutopilotSuicideBurn, 0, 0)

	burnAlt := BurnAltitudeM(60, 45000, 2000, 1.62, 1.15)
	above := a.Update(burnAlt+100, -60, 45000, 2000, 1.62, 0.1)
	if above != 0 {
		t.Errorf("expected zero throttle above burn altitude, got %v", above)
	}

	atOrBelow := a.Update(burnAlt-1, -60, 45000, 2000, 1.62, 0.1)
	if atOrBelow != 1.0 {
		t.Errorf("expected full throttle once within burn altitude, got %v", atOrBelow)
	}

	slowed := a.Update(burnAlt-1, -0.2, 45000, 2000, 1.62, 0.1)
	if slowed == 1.0 {
		t.Error("expected hand-off to hover-style control once vertical speed settles below threshold")
	}
}

func TestTimeUntilBurnInfiniteWhenNotDescending(t *testing.T) {
	if got := TimeUntilBurnS(1000, 5, 100); !math.IsInf(got, 1) {
		t.Errorf("expected +Inf when ascending, got %v", got)
	}
}
