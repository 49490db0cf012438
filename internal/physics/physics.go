// Package physics implements the 6-DOF rigid body: translational and
// rotational state, semi-implicit Euler integration, planet-centered
// inverse-square gravity, and ground-contact detection (§4.9).
package physics

import (
	"math"

	"lunarsim/internal/config"
	"lunarsim/internal/eventlog"
	"lunarsim/internal/vecmath"
)

// lowAltitudeThresholdM is the altitude below which a low_altitude
// warning event is emitted, per §4.9's "approach caution" note.
const lowAltitudeThresholdM = 150.0

// State is the complete rigid-body state. PositionM and VelocityMS are
// measured in an inertial frame centered on the planet, not the
// landing site: PositionM is the vector from the planet's center to
// the vehicle, so its magnitude is the orbital radius, not altitude.
// AttitudeBI rotates body-frame vectors into that inertial frame.
type State struct {
	PositionM      vecmath.Vector3
	VelocityMS     vecmath.Vector3
	AttitudeBI     vecmath.Quaternion
	AngularVelBody vecmath.Vector3 // rad/s, body frame

	Landed  bool
	groundImpactFired bool
	lowAltitudeFired  bool
}

// Body owns the rigid-body state plus the mass/inertia properties the
// orchestrator updates each tick from the fuel subsystem.
type Body struct {
	cfg          config.RigidBodyConfig
	planetRadius float64

	State State

	// Updated by the orchestrator each tick before Tick runs.
	TotalMass    float64
	Inertia      vecmath.Matrix3
	centerOfMassOffset vecmath.Vector3 // body-frame, relative to dry-mass reference point
}

// New builds a Body at the given initial state. planetRadius is the
// configured body radius the state's PositionM is measured against for
// altitude, ground contact, and the derived observables below.
func New(cfg config.RigidBodyConfig, initial State, planetRadius float64) *Body {
	b := &Body{cfg: cfg, planetRadius: planetRadius, State: initial}
	b.TotalMass = cfg.DryMass
	b.Inertia = vecmath.DiagonalInertia(cfg.Ixx, cfg.Iyy, cfg.Izz)
	if b.State.AttitudeBI == (vecmath.Quaternion{}) {
		b.State.AttitudeBI = vecmath.IdentityQuaternion
	}
	return b
}

// SetMassProperties records this tick's total mass (dry + propellant)
// and propellant-shifted center of mass, sourced from the fuel
// subsystem, for the torque and inertia terms Tick uses.
func (b *Body) SetMassProperties(totalMass float64, centerOfMassOffset vecmath.Vector3) {
	b.TotalMass = totalMass
	b.centerOfMassOffset = centerOfMassOffset
}

// CenterOfMass returns the current body-frame center of mass.
func (b *Body) CenterOfMass() vecmath.Vector3 { return b.centerOfMassOffset }

// Tick integrates one fixed timestep using semi-implicit (symplectic)
// Euler: accelerations are computed from the state at the start of the
// step, velocities are updated first, then positions/attitude are
// updated using the NEW velocities. This is the exact ordering named
// in §4.9 and must not be swapped for explicit Euler or RK4.
//
// Gravity is the planet-centered inverse-square term a_g = -G*M*r_hat
// / |r|^2, not a uniform field: it weakens with distance from the
// planet's center exactly as §4.9 requires, so a low lunar orbit and a
// surface hover see different g.
func (b *Body) Tick(timeS, dt float64, forceBodyN, torqueBodyNm vecmath.Vector3, planetMass, gravitationalConstant float64, log *eventlog.Log) {
	if b.State.Landed {
		return
	}

	r := b.State.PositionM
	rMag := r.Magnitude()
	rHat := r.Normalize()
	gravityAccel := gravitationalConstant * planetMass / (rMag * rMag)
	gravity := rHat.Scale(-gravityAccel)

	forceInertial := b.State.AttitudeBI.RotateVector(forceBodyN)
	linearAccel := forceInertial.Scale(1 / b.TotalMass).Add(gravity)

	angularAccel := b.Inertia.AngularAcceleration(b.State.AngularVelBody, torqueBodyNm)

	// Step 1: update velocities from start-of-step accelerations.
	b.State.VelocityMS = b.State.VelocityMS.Add(linearAccel.Scale(dt))
	b.State.AngularVelBody = b.State.AngularVelBody.Add(angularAccel.Scale(dt))

	// Step 2: update position/attitude using the just-updated (new)
	// velocities -- the defining property of semi-implicit Euler.
	b.State.PositionM = b.State.PositionM.Add(b.State.VelocityMS.Scale(dt))

	qDot := b.State.AttitudeBI.IntegrateAngularVelocity(b.State.AngularVelBody)
	b.State.AttitudeBI = b.State.AttitudeBI.Add(qDot.Scale(dt)).Normalize()

	b.checkGroundContact(timeS, log)
	b.checkLowAltitude(timeS, log)
}

// checkGroundContact fires when the radial distance from the planet's
// center drops to the surface, per §4.9: |r| - R_planet <= 0.
func (b *Body) checkGroundContact(timeS float64, log *eventlog.Log) {
	if b.Altitude() > 0 {
		return
	}
	rHat := b.State.PositionM.Normalize()
	b.State.PositionM = rHat.Scale(b.planetRadius)

	vRadial := b.State.VelocityMS.Dot(rHat)
	if vRadial < 0 {
		b.State.VelocityMS = b.State.VelocityMS.Sub(rHat.Scale(vRadial))
	}
	b.State.Landed = true
	if !b.State.groundImpactFired {
		b.State.groundImpactFired = true
		log.Append(timeS, eventlog.KindGroundImpact, map[string]float64{
			"vertical_speed_ms": vRadial,
		})
	}
}

func (b *Body) checkLowAltitude(timeS float64, log *eventlog.Log) {
	altitude := b.Altitude()
	if altitude <= lowAltitudeThresholdM && !b.State.lowAltitudeFired {
		b.State.lowAltitudeFired = true
		log.Append(timeS, eventlog.KindLowAltitude, map[string]float64{"altitude_m": altitude})
	} else if altitude > lowAltitudeThresholdM {
		b.State.lowAltitudeFired = false
	}
}

// Altitude returns the derived observable: radial distance above the
// planet's surface, |r| - R_planet.
func (b *Body) Altitude() float64 { return b.State.PositionM.Magnitude() - b.planetRadius }

// Speed returns the derived observable: inertial speed magnitude.
func (b *Body) Speed() float64 { return b.State.VelocityMS.Magnitude() }

// VerticalSpeed returns the derived observable: the radial component
// of inertial velocity, v . r_hat (negative while descending).
func (b *Body) VerticalSpeed() float64 {
	rHat := b.State.PositionM.Normalize()
	return b.State.VelocityMS.Dot(rHat)
}

// EulerAnglesRad returns the derived roll/pitch/yaw observables.
func (b *Body) EulerAnglesRad() (roll, pitch, yaw float64) {
	return b.State.AttitudeBI.ToEuler()
}

// SurfaceGravity returns g = G*M/R^2 at the configured planet's
// surface radius, used by flight control/navigation for throttle and
// burn-timing figures that are defined at a nominal local g rather
// than the instantaneous radial one Tick itself uses.
func SurfaceGravity(planetMass, planetRadius, gravitationalConstant float64) float64 {
	return gravitationalConstant * planetMass / (planetRadius * planetRadius)
}

// TWR returns the thrust-to-weight ratio for the given thrust
// magnitude at the body's current total mass and surface gravity.
func (b *Body) TWR(thrustN, g float64) float64 {
	weight := b.TotalMass * g
	if weight <= 0 {
		return math.Inf(1)
	}
	return thrustN / weight
}
