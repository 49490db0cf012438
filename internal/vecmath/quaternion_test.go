package vecmath

import (
	"math"
	"testing"
)

func TestQuaternionIdentityAndNormalize(t *testing.T) {
	v := Vector3{1, 2, 3}
	rotated := IdentityQuaternion.RotateVector(v)
	assertApproxEqual(t, rotated.X, v.X, 1e-9)
	assertApproxEqual(t, rotated.Y, v.Y, 1e-9)
	assertApproxEqual(t, rotated.Z, v.Z, 1e-9)
}

func TestQuaternionNormalizeResetsDegenerateNorm(t *testing.T) {
	degenerate := Quaternion{W: 1e-4, X: 1e-5, Y: 0, Z: 0}
	normalized := degenerate.Normalize()
	if normalized != IdentityQuaternion {
		t.Errorf("expected degenerate quaternion to reset to identity, got %+v", normalized)
	}
}

func TestQuaternionRotate90DegreesAboutZ(t *testing.T) {
	q := FromAxisAngle(Vector3{0, 0, 1}, math.Pi/2)
	rotated := q.RotateVector(Vector3{1, 0, 0})
	assertApproxEqual(t, rotated.X, 0, 1e-9)
	assertApproxEqual(t, rotated.Y, 1, 1e-9)
	assertApproxEqual(t, rotated.Z, 0, 1e-9)
}

func TestQuaternionEulerRoundTrip(t *testing.T) {
	roll, pitch, yaw := 0.2, -0.3, 1.1
	q := FromEuler(roll, pitch, yaw).Normalize()
	gotRoll, gotPitch, gotYaw := q.ToEuler()
	assertApproxEqual(t, gotRoll, roll, 1e-6)
	assertApproxEqual(t, gotPitch, pitch, 1e-6)
	assertApproxEqual(t, gotYaw, yaw, 1e-6)
}

func TestQuaternionConjugateIsInverseForUnitQuaternion(t *testing.T) {
	q := FromAxisAngle(Vector3{1, 1, 0}, 0.7).Normalize()
	product := q.Multiply(q.Conjugate())
	assertApproxEqual(t, product.W, 1, 1e-9)
	assertApproxEqual(t, product.X, 0, 1e-9)
	assertApproxEqual(t, product.Y, 0, 1e-9)
	assertApproxEqual(t, product.Z, 0, 1e-9)
}

func TestIntegrateAngularVelocityAndRenormalize(t *testing.T) {
	q := IdentityQuaternion
	omega := Vector3{0, 0, 1.0} // 1 rad/s about Z
	dt := 0.01
	for i := 0; i < 100; i++ {
		qDot := q.IntegrateAngularVelocity(omega)
		q = q.Add(qDot.Scale(dt)).Normalize()
	}
	n := q.Norm()
	if n < 1-1e-6 || n > 1+1e-6 {
		t.Errorf("expected renormalized quaternion, norm=%v", n)
	}
	_, _, yaw := q.ToEuler()
	assertApproxEqual(t, yaw, 1.0, 0.01)
}
