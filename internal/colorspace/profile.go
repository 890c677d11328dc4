package colorspace

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"ansel-scopes/internal/mathutil"
)

// Profile describes an RGB space by its transposed matrices to and from
// XYZ D50, plus an optional per-channel tone response applied before the
// forward matrix.
//
// A Profile is immutable once built and safe to share between goroutines.
type Profile struct {
	Name string

	// MatrixIn maps RGB to XYZ as a row vector product: XYZ = RGB · MatrixIn.
	MatrixIn mathutil.Mat3
	// MatrixOut maps XYZ back to RGB: RGB = XYZ · MatrixOut.
	MatrixOut mathutil.Mat3

	// LUT linearises each channel on [0, 1]. Values above 1 are extrapolated
	// with Unbounded. Only used when NonLinear is set.
	LUT       [3][]float32
	Unbounded [3][3]float32
	NonLinear bool
}

// ErrUnknownProfile is returned by Builtin for names it does not know.
var ErrUnknownProfile = errors.New("colorspace: unknown profile")

// Chromaticities of the supported RGB spaces, white included.
type primaries struct {
	r, g, b, w [2]float64
}

var (
	whiteD65 = [2]float64{0.3127, 0.3290}

	rec709   = primaries{r: [2]float64{0.64, 0.33}, g: [2]float64{0.30, 0.60}, b: [2]float64{0.15, 0.06}, w: whiteD65}
	rec2020  = primaries{r: [2]float64{0.708, 0.292}, g: [2]float64{0.170, 0.797}, b: [2]float64{0.131, 0.046}, w: whiteD65}
	adobeRGB = primaries{r: [2]float64{0.64, 0.33}, g: [2]float64{0.21, 0.71}, b: [2]float64{0.15, 0.06}, w: whiteD65}
)

// bradford is the cone response matrix used for chromatic adaptation.
var bradford = mathutil.Mat3{
	0.8951, 0.2664, -0.1614,
	-0.7502, 1.7135, 0.0367,
	0.0389, -0.0685, 1.0296,
}

// rgbToXYZ returns the column-vector matrix from linear RGB to XYZ D50.
func (p primaries) rgbToXYZ() mathutil.Mat3 {
	toXYZ := func(xy [2]float64) mathutil.Vec3 {
		return mathutil.Vec3{xy[0] / xy[1], 1, (1 - xy[0] - xy[1]) / xy[1]}
	}
	m := mathutil.Mat3Columns(toXYZ(p.r), toXYZ(p.g), toXYZ(p.b))
	white := toXYZ(p.w)
	s := m.Inverse().MulVec3(white)
	m = mathutil.Mat3Mul(m, mathutil.Mat3Diag(s[0], s[1], s[2]))

	// Bradford adaptation from the space white to D50.
	src := bradford.MulVec3(white)
	dst := bradford.MulVec3(D50)
	adapt := mathutil.Mat3Mul(bradford.Inverse(),
		mathutil.Mat3Mul(mathutil.Mat3Diag(dst[0]/src[0], dst[1]/src[1], dst[2]/src[2]), bradford))
	return mathutil.Mat3Mul(adapt, m)
}

// NewMatrixProfile builds a linear profile from a column-vector RGB→XYZ D50
// matrix, storing both directions transposed.
func NewMatrixProfile(name string, rgbToXYZ mathutil.Mat3) *Profile {
	return &Profile{
		Name:      name,
		MatrixIn:  rgbToXYZ.Transpose(),
		MatrixOut: rgbToXYZ.Inverse().Transpose(),
	}
}

// WithCurve returns a copy of p whose forward path first linearises each
// channel through eotf, sampled into a LUT of lutSize entries.
func (p *Profile) WithCurve(name string, lutSize int, eotf func(float64) float64) *Profile {
	out := *p
	out.Name = name
	out.NonLinear = true
	lut := make([]float32, lutSize)
	for i := range lut {
		lut[i] = float32(eotf(float64(i) / float64(lutSize-1)))
	}
	coeffs := fitUnbounded(eotf)
	for c := 0; c < 3; c++ {
		out.LUT[c] = lut
		out.Unbounded[c] = coeffs
	}
	return &out
}

// LinearSRGB is Rec.709 primaries with a linear tone response.
func LinearSRGB() *Profile { return NewMatrixProfile("linear-srgb", rec709.rgbToXYZ()) }

// LinearRec2020 is the Rec.2020 working space with a linear tone response.
func LinearRec2020() *Profile { return NewMatrixProfile("linear-rec2020", rec2020.rgbToXYZ()) }

// SRGB is display-referred sRGB: Rec.709 primaries with the sRGB transfer curve.
func SRGB() *Profile {
	return LinearSRGB().WithCurve("srgb", 4096, SRGBToLinear)
}

// AdobeRGB is Adobe RGB (1998) with its 563/256 gamma.
func AdobeRGB() *Profile {
	return NewMatrixProfile("adobergb", adobeRGB.rgbToXYZ()).WithCurve("adobergb", 4096, func(v float64) float64 {
		return math.Pow(v, 563.0/256.0)
	})
}

var builtins = map[string]func() *Profile{
	"linear-srgb":    LinearSRGB,
	"linear-rec2020": LinearRec2020,
	"srgb":           SRGB,
	"adobergb":       AdobeRGB,
}

// Builtin returns the named builtin profile.
func Builtin(name string) (*Profile, error) {
	f, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return f(), nil
}

// BuiltinNames lists the names accepted by Builtin, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SRGBToLinear is the sRGB electro-optical transfer function.
func SRGBToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// LinearToSRGB is the inverse of SRGBToLinear.
func LinearToSRGB(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}
