package mathutil

import (
	"math"
	"testing"
)

func approxMat(a, b Mat3, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestInverse_RoundTrip(t *testing.T) {
	m := Mat3{
		0.4360747, 0.3850649, 0.1430804,
		0.2225045, 0.7168786, 0.0606169,
		0.0139322, 0.0971045, 0.7141733,
	}
	got := Mat3Mul(m, m.Inverse())
	if !approxMat(got, Mat3Identity(), 1e-12) {
		t.Fatalf("M × M⁻¹ = %v, want identity", got)
	}
}

func TestInverse_Singular(t *testing.T) {
	m := Mat3{1, 2, 3, 2, 4, 6, 0, 0, 1}
	if got := m.Inverse(); got != Mat3Identity() {
		t.Fatalf("singular inverse = %v, want identity", got)
	}
}

func TestVecMul_MatchesTransposedMulVec3(t *testing.T) {
	m := Mat3{1, 2, 3, 4, 5, 6, 7, 8, 10}
	v := Vec3{0.25, -1, 3}
	a := m.VecMul(v)
	b := m.Transpose().MulVec3(v)
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-12 {
			t.Fatalf("VecMul = %v, Transpose().MulVec3 = %v", a, b)
		}
	}
}

func TestMat3Columns(t *testing.T) {
	m := Mat3Columns(Vec3{1, 2, 3}, Vec3{4, 5, 6}, Vec3{7, 8, 9})
	if got := m.MulVec3(Vec3{0, 1, 0}); got != (Vec3{4, 5, 6}) {
		t.Fatalf("second column = %v", got)
	}
}

func TestVec3Helpers(t *testing.T) {
	v := Vec3{-1, 0.5, 2}
	if v.Max() != 2 {
		t.Errorf("Max = %v", v.Max())
	}
	if got := v.ClampMin(0); got != (Vec3{0, 0.5, 2}) {
		t.Errorf("ClampMin = %v", got)
	}
	if got := v.Scale(2); got != (Vec3{-2, 1, 4}) {
		t.Errorf("Scale = %v", got)
	}
}
