package vecmath

import "gonum.org/v1/gonum/mat"

// Matrix3 is a 3x3 inertia tensor. The spec fixes the core to a
// diagonal tensor (Ixx, Iyy, Izz); off-diagonal coupling is reserved
// for a future revision. The type carries the full 3x3 shape (backed
// by gonum's mat.Dense for the angular-acceleration solve) so that a
// future non-diagonal tensor is a data change, not a solver rewrite.
type Matrix3 struct {
	Ixx, Iyy, Izz float64
	Ixy, Ixz, Iyz float64
}

// DiagonalInertia builds a diagonal inertia tensor from the three
// principal moments, which is the only configuration this core
// supports per the spec's accepted limitation.
func DiagonalInertia(ixx, iyy, izz float64) Matrix3 {
	return Matrix3{Ixx: ixx, Iyy: iyy, Izz: izz}
}

func (m Matrix3) dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		m.Ixx, m.Ixy, m.Ixz,
		m.Ixy, m.Iyy, m.Iyz,
		m.Ixz, m.Iyz, m.Izz,
	})
}

// AngularAcceleration solves I * omegaDot = torque - omega x (I * omega)
// for omegaDot, via Euler's rotation equation. Using a general 3x3
// solve (rather than the trivial per-axis division a pure-diagonal
// tensor would allow) means a future off-diagonal tensor only has to
// change how Matrix3 is constructed.
func (m Matrix3) AngularAcceleration(omega, torque Vector3) Vector3 {
	I := m.dense()
	omegaVec := mat.NewVecDense(3, []float64{omega.X, omega.Y, omega.Z})

	var Iomega mat.VecDense
	Iomega.MulVec(I, omegaVec)

	gyroscopic := omega.Cross(Vector3{Iomega.AtVec(0), Iomega.AtVec(1), Iomega.AtVec(2)})
	rhs := torque.Sub(gyroscopic)
	rhsVec := mat.NewVecDense(3, []float64{rhs.X, rhs.Y, rhs.Z})

	var omegaDot mat.VecDense
	if err := omegaDot.SolveVec(I, rhsVec); err != nil {
		// A singular inertia tensor is a configuration error that
		// should have been rejected at construction; guard here
		// rather than propagate NaN into the integrator.
		return Zero3
	}
	return Vector3{omegaDot.AtVec(0), omegaDot.AtVec(1), omegaDot.AtVec(2)}
}
