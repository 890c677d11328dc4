package scope

import "math"

// SkinTones is the region of the u*v* plane where human skin usually falls,
// as a chroma range and a hue range in radians.
type SkinTones struct {
	MinChroma float64
	MaxChroma float64
	MinHue    float64
	MaxHue    float64
}

// DefaultSkinTones covers light to dark skin under daylight.
var DefaultSkinTones = SkinTones{MinChroma: 9.0, MaxChroma: 49.34, MinHue: 0.26, MaxHue: 0.99}

// Vertices returns the (u*, v*) corners of the region, going around from
// the low-chroma end of the high hue edge.
func (s SkinTones) Vertices() [4][2]float64 {
	polar := func(c, h float64) [2]float64 {
		return [2]float64{c * math.Cos(h), c * math.Sin(h)}
	}
	return [4][2]float64{
		polar(s.MinChroma, s.MaxHue),
		polar(s.MaxChroma, s.MaxHue),
		polar(s.MaxChroma, s.MinHue),
		polar(s.MinChroma, s.MinHue),
	}
}

// Contains reports whether (u, v) lies inside the region.
func (s SkinTones) Contains(u, v float64) bool {
	c := math.Hypot(u, v)
	h := math.Atan2(v, u)
	return c >= s.MinChroma && c <= s.MaxChroma && h >= s.MinHue && h <= s.MaxHue
}
