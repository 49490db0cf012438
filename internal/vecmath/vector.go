// Package vecmath provides the pure math primitives shared by every
// subsystem: 3-vectors, unit quaternions, and the 3x3 inertia matrix
// used by the rigid-body solver. Nothing here holds state. Vector and
// quaternion operations allocate nothing beyond the value they return;
// Matrix3.AngularAcceleration allocates gonum matrices for its solve.
package vecmath

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// zeroEpsilon is the magnitude below which a vector is treated as the
// zero vector for normalization purposes.
const zeroEpsilon = 1e-12

// Vector3 is an immutable-by-value 3D vector (m, m/s, N, ... depending
// on context). Callers never get a pointer into it; every operation
// returns a new value.
type Vector3 struct {
	X, Y, Z float64
}

// Zero3 is the additive identity.
var Zero3 = Vector3{}

// Add returns v + other.
func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v - other.
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Scale returns v * scalar.
func (v Vector3) Scale(scalar float64) Vector3 {
	return Vector3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// Dot returns the scalar dot product.
func (v Vector3) Dot(other Vector3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the vector cross product v x other.
func (v Vector3) Cross(other Vector3) Vector3 {
	return Vector3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Magnitude returns the Euclidean norm.
func (v Vector3) Magnitude() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// MagnitudeSquared avoids the sqrt when only comparison is needed.
func (v Vector3) MagnitudeSquared() float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Normalize returns a unit vector in the same direction, or the zero
// vector if the magnitude is below zeroEpsilon.
func (v Vector3) Normalize() Vector3 {
	mag := v.Magnitude()
	if floats.EqualWithinAbs(mag, 0, zeroEpsilon) || mag < zeroEpsilon {
		return Zero3
	}
	return Vector3{v.X / mag, v.Y / mag, v.Z / mag}
}

// IsFinite reports whether every component is a finite float (guards
// against NaN/Inf propagation per the core's numerical-pathology
// policy).
func (v Vector3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}
