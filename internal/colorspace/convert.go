// Package colorspace holds the colour profile consumed by the scopes and the
// CIE conversions between profile RGB, XYZ (D50), xyY, L*u*v* and L*C*h.
//
// L* is on the 0–100 scale and u*, v* on the matching CIE scale (roughly
// ±220 for real colours); hue angles are radians.
package colorspace

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"ansel-scopes/internal/mathutil"
)

// D50 is the reference white of every XYZ value in this package.
var D50 = mathutil.Vec3(colorful.D50)

// XYZToxyY converts XYZ to chromaticity coordinates plus luminance.
// Black maps to the white point chromaticity.
func XYZToxyY(xyz mathutil.Vec3) mathutil.Vec3 {
	x, y, Y := colorful.XyzToXyyWhiteRef(xyz[0], xyz[1], xyz[2], colorful.D50)
	return mathutil.Vec3{x, y, Y}
}

// XyYToXYZ is the inverse of XYZToxyY.
func XyYToXYZ(xyY mathutil.Vec3) mathutil.Vec3 {
	X, Y, Z := colorful.XyyToXyz(xyY[0], xyY[1], xyY[2])
	return mathutil.Vec3{X, Y, Z}
}

// XyYToLuv converts xyY to CIE L*u*v* under D50.
func XyYToLuv(xyY mathutil.Vec3) mathutil.Vec3 {
	X, Y, Z := colorful.XyyToXyz(xyY[0], xyY[1], xyY[2])
	l, u, v := colorful.XyzToLuvWhiteRef(X, Y, Z, colorful.D50)
	return mathutil.Vec3{l * 100, u * 100, v * 100}
}

// LuvToxyY is the inverse of XyYToLuv.
func LuvToxyY(luv mathutil.Vec3) mathutil.Vec3 {
	X, Y, Z := colorful.LuvToXyzWhiteRef(luv[0]/100, luv[1]/100, luv[2]/100, colorful.D50)
	return XYZToxyY(mathutil.Vec3{X, Y, Z})
}

// XYZToLuv chains XYZToxyY and XyYToLuv.
func XYZToLuv(xyz mathutil.Vec3) mathutil.Vec3 {
	return XyYToLuv(XYZToxyY(xyz))
}

// LuvToLch returns lightness, chroma and hue angle in radians (-π, π].
func LuvToLch(luv mathutil.Vec3) mathutil.Vec3 {
	return mathutil.Vec3{luv[0], math.Hypot(luv[1], luv[2]), math.Atan2(luv[2], luv[1])}
}

// LchToLuv is the inverse of LuvToLch.
func LchToLuv(lch mathutil.Vec3) mathutil.Vec3 {
	L, u, v := colorful.LuvLChToLuv(lch[0], lch[1], lch[2]*180/math.Pi)
	return mathutil.Vec3{L, u, v}
}
