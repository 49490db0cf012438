package vecmath

import "testing"

func TestAngularAccelerationNoTorqueNoSpinIsZero(t *testing.T) {
	I := DiagonalInertia(100, 120, 80)
	omegaDot := I.AngularAcceleration(Zero3, Zero3)
	if omegaDot != Zero3 {
		t.Errorf("expected zero angular acceleration, got %+v", omegaDot)
	}
}

func TestAngularAccelerationSingleAxisTorque(t *testing.T) {
	I := DiagonalInertia(100, 120, 80)
	torque := Vector3{X: 50}
	omegaDot := I.AngularAcceleration(Zero3, torque)
	assertApproxEqual(t, omegaDot.X, 0.5, 1e-9) // 50 / 100
	assertApproxEqual(t, omegaDot.Y, 0, 1e-9)
	assertApproxEqual(t, omegaDot.Z, 0, 1e-9)
}

func TestAngularAccelerationGyroscopicCoupling(t *testing.T) {
	I := DiagonalInertia(100, 120, 80)
	omega := Vector3{X: 1, Y: 0.5, Z: 0}
	omegaDot := I.AngularAcceleration(omega, Zero3)
	// With zero torque, omegaDot should exactly cancel the gyroscopic
	// term only on-axis; off-axis coupling should be nonzero here.
	if omegaDot == Zero3 {
		t.Errorf("expected nonzero gyroscopic coupling for tumbling body")
	}
}
