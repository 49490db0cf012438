// Package navigation implements the trajectory forward-integration
// predictor, suicide-burn timing data, delta-v remaining, and
// thrust-to-weight ratio (§4.11).
package navigation

import (
	"math"

	"lunarsim/internal/config"
	"lunarsim/internal/flightcontrol"
	"lunarsim/internal/vecmath"
)

// Prediction is the forward-integrated outcome of coasting the
// current state under gravity alone.
type Prediction struct {
	WillImpact    bool
	ImpactTimeS   float64
	ImpactPosition vecmath.Vector3
	ImpactSpeedMS float64
	LatitudeRad   float64
	LongitudeRad  float64
}

// SuicideBurnInfo bundles the suicide-burn-relevant derived figures.
type SuicideBurnInfo struct {
	BurnAltitudeM  float64
	TimeUntilBurnS float64
	ShouldBurn     bool
}

// Predictor owns the tunable forward-integration parameters.
type Predictor struct {
	cfg config.NavigationConfig
}

// NewPredictor builds a Predictor from validated config.
func NewPredictor(cfg config.NavigationConfig) *Predictor {
	return &Predictor{cfg: cfg}
}

// Predict forward-integrates a copy of the rigid-body translational
// state under gravity alone (no thrust) for up to MaxSteps steps of
// size StepS, stopping early at impact (|r| - R_planet <= 0) or at
// MaxTimeS. position/velocity are the planet-centered vectors physics.
// Body carries, per §4.9: gravity here is the same inverse-square
// a_g = -G*M*r_hat/|r|^2, not a uniform field, so the coast prediction
// stays consistent with the live integrator.
func (p *Predictor) Predict(position, velocity vecmath.Vector3, planetMass, planetRadius, gravitationalConstant float64) Prediction {
	pos, vel := position, velocity
	var elapsed float64

	for step := 0; step < p.cfg.MaxSteps && elapsed < p.cfg.MaxTimeS; step++ {
		rMag := pos.Magnitude()
		rHat := pos.Normalize()
		gravityAccel := gravitationalConstant * planetMass / (rMag * rMag)
		accel := rHat.Scale(-gravityAccel)

		vel = vel.Add(accel.Scale(p.cfg.StepS))
		pos = pos.Add(vel.Scale(p.cfg.StepS))
		elapsed += p.cfg.StepS

		if pos.Magnitude()-planetRadius <= 0 {
			return Prediction{
				WillImpact:     true,
				ImpactTimeS:    elapsed,
				ImpactPosition: pos,
				ImpactSpeedMS:  vel.Magnitude(),
				LatitudeRad:    latitudeOf(pos),
				LongitudeRad:   longitudeOf(pos),
			}
		}
	}

	return Prediction{WillImpact: false}
}

// latitudeOf/longitudeOf perform the spherical-coordinate conversion
// named in §4.11 directly against the planet-centered position vector
// (Z the polar axis): no landing-site offset is added since pos is
// already measured from the planet's center.
func latitudeOf(pos vecmath.Vector3) float64 {
	r := pos.Magnitude()
	if r == 0 {
		return 0
	}
	return math.Asin(clamp(pos.Z/r, -1, 1))
}

func longitudeOf(pos vecmath.Vector3) float64 {
	return math.Atan2(pos.Y, pos.X)
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

// SuicideBurn computes burn_altitude, time_until_burn, and should_burn
// for the current state.
func (p *Predictor) SuicideBurn(altitudeM, verticalSpeedMS, maxThrustN, totalMass, gLocal, marginFraction float64) SuicideBurnInfo {
	burnAlt := flightcontrol.BurnAltitudeM(verticalSpeedMS, maxThrustN, totalMass, gLocal, marginFraction)
	tub := flightcontrol.TimeUntilBurnS(altitudeM, verticalSpeedMS, burnAlt)
	return SuicideBurnInfo{
		BurnAltitudeM:  burnAlt,
		TimeUntilBurnS: tub,
		ShouldBurn:     altitudeM <= burnAlt,
	}
}

// DeltaVRemainingMS returns the Tsiolkovsky delta-v remaining:
// v_exhaust * ln(m_total / m_dry).
func DeltaVRemainingMS(exhaustVelocityMS, totalMass, dryMass float64) float64 {
	if dryMass <= 0 || totalMass <= dryMass {
		return 0
	}
	return exhaustVelocityMS * math.Log(totalMass/dryMass)
}

// TWR returns the thrust-to-weight ratio: F_max / (m_total * g_local).
func TWR(maxThrustN, totalMass, gLocal float64) float64 {
	weight := totalMass * gLocal
	if weight <= 0 {
		return math.Inf(1)
	}
	return maxThrustN / weight
}
