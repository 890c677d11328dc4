package mathutil

import "math"

// Vec3 is a 3-component vector (value type, stack-allocated).
type Vec3 [3]float64

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Max returns the largest component.
func (v Vec3) Max() float64 {
	return math.Max(v[0], math.Max(v[1], v[2]))
}

// ClampMin raises every component below lo to lo.
func (v Vec3) ClampMin(lo float64) Vec3 {
	for i := range v {
		if v[i] < lo {
			v[i] = lo
		}
	}
	return v
}
