package colorspace

import (
	"math"

	"ansel-scopes/internal/mathutil"
)

// RGBToXYZ converts a profile RGB triplet to XYZ D50. The tone response LUT
// is applied first when the profile is flagged non-linear.
func (p *Profile) RGBToXYZ(rgb mathutil.Vec3) mathutil.Vec3 {
	if p.NonLinear {
		for c := 0; c < 3; c++ {
			rgb[c] = p.linearize(c, rgb[c])
		}
	}
	return p.MatrixIn.VecMul(rgb)
}

// XYZToRGB converts XYZ D50 to linear profile RGB. The tone response is not
// re-applied.
func (p *Profile) XYZToRGB(xyz mathutil.Vec3) mathutil.Vec3 {
	return p.MatrixOut.VecMul(xyz)
}

// RGBToLuv is the forward chain used by the vectorscope: RGB → XYZ → xyY → Luv.
func (p *Profile) RGBToLuv(rgb mathutil.Vec3) mathutil.Vec3 {
	return XyYToLuv(XYZToxyY(p.RGBToXYZ(rgb)))
}

func (p *Profile) linearize(c int, v float64) float64 {
	lut := p.LUT[c]
	if len(lut) == 0 {
		return v
	}
	if v < 1 {
		return lerpLUT(lut, v)
	}
	if k := p.Unbounded[c]; k[0] > 0 {
		return float64(k[1]) * math.Pow(v*float64(k[0]), float64(k[2]))
	}
	return float64(lut[len(lut)-1])
}

// lerpLUT samples lut at v ∈ [0, 1] with linear interpolation.
func lerpLUT(lut []float32, v float64) float64 {
	n := len(lut)
	ft := v * float64(n-1)
	if ft <= 0 {
		return float64(lut[0])
	}
	t := int(ft)
	if t >= n-1 {
		return float64(lut[n-1])
	}
	f := ft - float64(t)
	return float64(lut[t])*(1-f) + float64(lut[t+1])*f
}

// fitUnbounded fits y = k1·(k0·x)^k2 through the top of the curve so values
// above 1 keep following its slope instead of clipping.
func fitUnbounded(curve func(float64) float64) [3]float32 {
	const x1, x2 = 0.7, 1.0
	y1, y2 := curve(x1), curve(x2)
	if y1 <= 0 || y2 <= 0 {
		return [3]float32{}
	}
	g := math.Log(y1/y2) / math.Log(x1/x2)
	return [3]float32{1, float32(y2), float32(g)}
}
