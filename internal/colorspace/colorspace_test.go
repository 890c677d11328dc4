package colorspace

import (
	"errors"
	"math"
	"testing"

	"ansel-scopes/internal/mathutil"
)

func near(a, b mathutil.Vec3, eps float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

func TestWhiteMapsToD50(t *testing.T) {
	for _, name := range BuiltinNames() {
		p, err := Builtin(name)
		if err != nil {
			t.Fatal(err)
		}
		got := p.RGBToXYZ(mathutil.Vec3{1, 1, 1})
		if !near(got, D50, 1e-3) {
			t.Errorf("%s: white = %v, want %v", name, got, D50)
		}
	}
}

func TestNeutralHasNoChroma(t *testing.T) {
	p := LinearSRGB()
	for _, v := range []float64{0.01, 0.18, 0.5, 1, 4} {
		luv := p.RGBToLuv(mathutil.Vec3{v, v, v})
		if math.Abs(luv[1]) > 1e-3 || math.Abs(luv[2]) > 1e-3 {
			t.Errorf("grey %.2f: u*v* = (%g, %g)", v, luv[1], luv[2])
		}
	}
}

func TestLuminanceOfWhite(t *testing.T) {
	luv := LinearSRGB().RGBToLuv(mathutil.Vec3{1, 1, 1})
	if math.Abs(luv[0]-100) > 1e-3 {
		t.Fatalf("L* of white = %v", luv[0])
	}
}

func TestMatrixRoundTrip(t *testing.T) {
	p := LinearRec2020()
	rgb := mathutil.Vec3{0.2, 0.7, 0.05}
	got := p.XYZToRGB(p.RGBToXYZ(rgb))
	if !near(got, rgb, 1e-9) {
		t.Fatalf("round trip = %v, want %v", got, rgb)
	}
}

func TestLuvRoundTrips(t *testing.T) {
	xyY := mathutil.Vec3{0.35, 0.4, 0.3}
	if got := LuvToxyY(XyYToLuv(xyY)); !near(got, xyY, 1e-9) {
		t.Errorf("xyY → Luv → xyY = %v", got)
	}

	luv := mathutil.Vec3{50, -30, 42}
	if got := LchToLuv(LuvToLch(luv)); !near(got, luv, 1e-9) {
		t.Errorf("Luv → Lch → Luv = %v", got)
	}

	xyz := mathutil.Vec3{0.3, 0.25, 0.1}
	if got := XyYToXYZ(XYZToxyY(xyz)); !near(got, xyz, 1e-12) {
		t.Errorf("XYZ → xyY → XYZ = %v", got)
	}
}

func TestLuvToLch_Hue(t *testing.T) {
	lch := LuvToLch(mathutil.Vec3{50, 0, 10})
	if math.Abs(lch[1]-10) > 1e-12 || math.Abs(lch[2]-math.Pi/2) > 1e-12 {
		t.Fatalf("Lch = %v", lch)
	}
}

func TestNonLinearProfileAppliesCurve(t *testing.T) {
	lin, enc := LinearSRGB(), SRGB()
	for _, v := range []float64{0.1, 0.5, 0.9} {
		want := lin.RGBToXYZ(mathutil.Vec3{SRGBToLinear(v), SRGBToLinear(v), SRGBToLinear(v)})
		got := enc.RGBToXYZ(mathutil.Vec3{v, v, v})
		if !near(got, want, 1e-4) {
			t.Errorf("v=%.1f: got %v, want %v", v, got, want)
		}
	}
}

func TestNonLinearExtrapolatesAboveOne(t *testing.T) {
	p := SRGB()
	at1 := p.linearize(0, 1)
	above := p.linearize(0, 1.2)
	if above <= at1 {
		t.Fatalf("linearize(1.2) = %v, want > %v", above, at1)
	}
	if math.Abs(at1-1) > 1e-3 {
		t.Fatalf("linearize(1) = %v", at1)
	}
}

func TestSRGBCurveInverse(t *testing.T) {
	for _, v := range []float64{0, 0.002, 0.04, 0.5, 1} {
		if got := LinearToSRGB(SRGBToLinear(v)); math.Abs(got-v) > 1e-9 {
			t.Errorf("inverse(%v) = %v", v, got)
		}
	}
}

func TestBuiltinUnknown(t *testing.T) {
	if _, err := Builtin("prophoto"); !errors.Is(err, ErrUnknownProfile) {
		t.Fatalf("err = %v, want ErrUnknownProfile", err)
	}
}
