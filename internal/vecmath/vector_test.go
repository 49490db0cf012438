package vecmath

import (
	"math"
	"testing"
)

func assertApproxEqual(t *testing.T, actual, expected, tolerance float64) {
	t.Helper()
	if math.Abs(actual-expected) > tolerance {
		t.Errorf("expected %v, got %v (tolerance %v)", expected, actual, tolerance)
	}
}

func TestVector3Operations(t *testing.T) {
	t.Run("magnitude and normalize", func(t *testing.T) {
		v := Vector3{X: 3.0, Y: 4.0, Z: 0.0}
		assertApproxEqual(t, v.Magnitude(), 5.0, 1e-9)

		n := v.Normalize()
		assertApproxEqual(t, n.Magnitude(), 1.0, 1e-9)
		assertApproxEqual(t, n.X, 0.6, 1e-9)
		assertApproxEqual(t, n.Y, 0.8, 1e-9)
	})

	t.Run("normalize of zero vector returns zero", func(t *testing.T) {
		z := Vector3{}.Normalize()
		if z != Zero3 {
			t.Errorf("expected zero vector, got %+v", z)
		}
	})

	t.Run("add and scale", func(t *testing.T) {
		v1 := Vector3{1, 2, 3}
		v2 := Vector3{4, 5, 6}
		sum := v1.Add(v2)
		if sum != (Vector3{5, 7, 9}) {
			t.Errorf("unexpected sum %+v", sum)
		}
		scaled := v1.Scale(2)
		if scaled != (Vector3{2, 4, 6}) {
			t.Errorf("unexpected scale %+v", scaled)
		}
	})

	t.Run("dot and cross", func(t *testing.T) {
		x := Vector3{1, 0, 0}
		y := Vector3{0, 1, 0}
		if dot := x.Dot(y); dot != 0 {
			t.Errorf("expected perpendicular dot 0, got %v", dot)
		}
		cross := x.Cross(y)
		if cross != (Vector3{0, 0, 1}) {
			t.Errorf("expected x cross y == z, got %+v", cross)
		}
	})

	t.Run("IsFinite catches NaN and Inf", func(t *testing.T) {
		if (Vector3{math.NaN(), 0, 0}).IsFinite() {
			t.Error("expected NaN component to be non-finite")
		}
		if (Vector3{math.Inf(1), 0, 0}).IsFinite() {
			t.Error("expected Inf component to be non-finite")
		}
		if !(Vector3{1, 2, 3}).IsFinite() {
			t.Error("expected ordinary vector to be finite")
		}
	})
}
