// Package flightcontrol implements the PID-based stability
// augmentation system and autopilot modes layered on top of the rigid
// body and main engine: attitude hold/prograde/retrograde/radial SAS
// targeting, and altitude/vertical-speed/hover/suicide-burn autopilot
// throttle control (§4.10).
package flightcontrol

import (
	"math"

	"lunarsim/internal/config"
	"lunarsim/internal/vecmath"
)

// SASMode is the selected attitude-hold targeting mode.
type SASMode string

const (
	SASOff         SASMode = "off"
	SASStability   SASMode = "stability"
	SASAttitudeHold SASMode = "attitude_hold"
	SASProgradeM   SASMode = "prograde"
	SASRetrograde  SASMode = "retrograde"
	SASRadialIn    SASMode = "radial_in"
	SASRadialOut   SASMode = "radial_out"
	SASNormal      SASMode = "normal"
	SASAntiNormal  SASMode = "anti_normal"
)

// AutopilotMode is the selected throttle-control mode.
type AutopilotMode string

const (
	AutopilotOff                AutopilotMode = "off"
	AutopilotAltitudeHold       AutopilotMode = "altitude_hold"
	AutopilotVerticalSpeedHold  AutopilotMode = "vertical_speed_hold"
	AutopilotHover              AutopilotMode = "hover"
	AutopilotSuicideBurn        AutopilotMode = "suicide_burn"
)

const degToRad = math.Pi / 180

// AxisOutputs is one tick's commanded per-axis attitude correction, in
// [-1, 1], for the orchestrator to translate into RCS group
// activations (roll/pitch/yaw couples).
type AxisOutputs struct {
	Roll, Pitch, Yaw float64
}

// SAS owns the attitude-hold controllers: one attitude PID and one
// rate-damping PID per axis, plus the held attitude when not tracking
// a velocity/radial direction.
type SAS struct {
	cfg config.FlightControlConfig

	Mode SASMode

	attitudePID [3]*PID // roll, pitch, yaw
	ratePID     [3]*PID

	heldAttitude vecmath.Quaternion
}

// NewSAS builds a SAS controller from tuning config.
func NewSAS(cfg config.FlightControlConfig) *SAS {
	s := &SAS{cfg: cfg, Mode: SASOff, heldAttitude: vecmath.IdentityQuaternion}
	for i := range s.attitudePID {
		s.attitudePID[i] = NewPID(cfg.AttitudePerAxis)
		s.ratePID[i] = NewPID(cfg.RateDamping)
	}
	return s
}

// Engage switches to the named mode, capturing the current attitude
// as the hold target for attitude_hold/stability, and resets every
// PID's integral per the "mode switches are atomic" rule (§4.10).
func (s *SAS) Engage(mode SASMode, currentAttitude vecmath.Quaternion) {
	s.Mode = mode
	s.heldAttitude = currentAttitude
	for i := range s.attitudePID {
		s.attitudePID[i].Reset()
		s.ratePID[i].Reset()
	}
}

// targetAttitude computes the mode's target quaternion. prograde/
// retrograde/radial/normal modes need the current velocity and
// position direction in the body frame; attitude_hold/stability reuse
// the attitude captured at Engage time.
func (s *SAS) targetAttitude(velocityInertial, positionInertial vecmath.Vector3, currentAttitude vecmath.Quaternion) vecmath.Quaternion {
	directionToAttitude := func(forward vecmath.Vector3) vecmath.Quaternion {
		f := forward.Normalize()
		if f == vecmath.Zero3 {
			return currentAttitude
		}
		nominal := vecmath.Vector3{Z: 1}
		axis := nominal.Cross(f)
		dot := clamp(nominal.Dot(f), -1, 1)
		angle := math.Acos(dot)
		if axis.MagnitudeSquared() < 1e-12 {
			if dot > 0 {
				return vecmath.IdentityQuaternion
			}
			return vecmath.FromAxisAngle(vecmath.Vector3{X: 1}, math.Pi)
		}
		return vecmath.FromAxisAngle(axis, angle)
	}

	switch s.Mode {
	case SASProgradeM:
		return directionToAttitude(velocityInertial)
	case SASRetrograde:
		return directionToAttitude(velocityInertial.Scale(-1))
	case SASRadialIn:
		return directionToAttitude(positionInertial.Scale(-1))
	case SASRadialOut:
		return directionToAttitude(positionInertial)
	case SASNormal:
		n := positionInertial.Cross(velocityInertial)
		return directionToAttitude(n)
	case SASAntiNormal:
		n := positionInertial.Cross(velocityInertial)
		return directionToAttitude(n.Scale(-1))
	default: // attitude_hold, stability
		return s.heldAttitude
	}
}

// Update computes this tick's axis correction outputs. Returns the
// zero AxisOutputs when off.
func (s *SAS) Update(currentAttitude vecmath.Quaternion, angularVelBody, velocityInertial, positionInertial vecmath.Vector3, dt float64) AxisOutputs {
	if s.Mode == SASOff {
		return AxisOutputs{}
	}

	target := s.targetAttitude(velocityInertial, positionInertial, currentAttitude)
	qError := target.Multiply(currentAttitude.Conjugate())
	rotVec := vecmath.RotationVectorFromError(qError)

	axes := [3]float64{rotVec.X, rotVec.Y, rotVec.Z}
	rates := [3]float64{angularVelBody.X, angularVelBody.Y, angularVelBody.Z}

	var out [3]float64
	for i := 0; i < 3; i++ {
		errVal := axes[i]
		if math.Abs(errVal) < s.cfg.AttitudeDeadbandRad {
			errVal = 0
		}
		attitudeCmd := s.attitudePID[i].Update(errVal, dt)

		rateErr := -rates[i]
		if math.Abs(rateErr) < s.cfg.RateDeadbandRadPerSec {
			rateErr = 0
		}
		rateCmd := s.ratePID[i].Update(rateErr, dt)

		out[i] = clamp(attitudeCmd+rateCmd, -1, 1)
	}
	return AxisOutputs{Roll: out[0], Pitch: out[1], Yaw: out[2]}
}

// Autopilot owns the throttle-control PIDs and suicide-burn logic.
type Autopilot struct {
	cfg config.FlightControlConfig

	Mode            AutopilotMode
	altitudePID     *PID
	verticalSpeedPID *PID

	targetAltitudeM     float64
	targetVerticalSpeedMS float64
	suicideBurnActive   bool
}

// NewAutopilot builds an Autopilot from tuning config.
func NewAutopilot(cfg config.FlightControlConfig) *Autopilot {
	return &Autopilot{
		cfg: cfg, Mode: AutopilotOff,
		altitudePID:      NewPID(cfg.Altitude),
		verticalSpeedPID: NewPID(cfg.VerticalSpeed),
	}
}

// Engage switches to the named mode and resets PID integrals per the
// "mode switches are atomic, integral resets on switch" rule (§4.10).
func (a *Autopilot) Engage(mode AutopilotMode, targetAltitudeM, targetVerticalSpeedMS float64) {
	a.Mode = mode
	a.targetAltitudeM = targetAltitudeM
	a.targetVerticalSpeedMS = targetVerticalSpeedMS
	a.altitudePID.Reset()
	a.verticalSpeedPID.Reset()
	a.suicideBurnActive = false
}

// BurnAltitudeM computes the suicide-burn ignition altitude:
// v_vertical^2 / (2*(F_max/m - g_local)) * margin_fraction (§4.10).
func BurnAltitudeM(verticalSpeedMS, maxThrustN, totalMass, gLocal, marginFraction float64) float64 {
	decel := maxThrustN/totalMass - gLocal
	if decel <= 0 {
		return math.Inf(1)
	}
	return (verticalSpeedMS * verticalSpeedMS) / (2 * decel) * marginFraction
}

// Update computes this tick's commanded throttle in [0, 1], or -1 to
// mean "autopilot writes no throttle" (off mode, manual passthrough).
func (a *Autopilot) Update(altitudeM, verticalSpeedMS, maxThrustN, totalMass, gLocal, dt float64) float64 {
	switch a.Mode {
	case AutopilotOff:
		return -1

	case AutopilotAltitudeHold:
		errVal := a.targetAltitudeM - altitudeM
		out := a.altitudePID.Update(errVal, dt)
		return clamp01(out)

	case AutopilotVerticalSpeedHold:
		errVal := a.targetVerticalSpeedMS - verticalSpeedMS
		out := a.verticalSpeedPID.Update(errVal, dt)
		return clamp01(out)

	case AutopilotHover:
		errVal := 0 - verticalSpeedMS
		out := a.verticalSpeedPID.Update(errVal, dt)
		return clamp01(out)

	case AutopilotSuicideBurn:
		burnAlt := BurnAltitudeM(verticalSpeedMS, maxThrustN, totalMass, gLocal, a.cfg.SuicideBurnMarginFraction)
		if !a.suicideBurnActive && altitudeM <= burnAlt {
			a.suicideBurnActive = true
		}
		if a.suicideBurnActive {
			if math.Abs(verticalSpeedMS) < a.cfg.HoverVerticalSpeedThreshold {
				errVal := 0 - verticalSpeedMS
				out := a.verticalSpeedPID.Update(errVal, dt)
				return clamp01(out)
			}
			return 1.0
		}
		return 0

	default:
		return -1
	}
}

// TimeUntilBurnS returns (altitude - burn_altitude) / |v_vertical|
// when descending, or +Inf when not descending, per §4.11.
func TimeUntilBurnS(altitudeM, verticalSpeedMS, burnAltitudeM float64) float64 {
	if verticalSpeedMS >= 0 {
		return math.Inf(1)
	}
	return (altitudeM - burnAltitudeM) / math.Abs(verticalSpeedMS)
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }
