package scope

import (
	"fmt"
	"image"
	"math"

	"ansel-scopes/internal/colorspace"
	"ansel-scopes/internal/mathutil"
)

// waveformGamma boosts sparse traces for legibility.
const waveformGamma = 1 / 1.5

// PaintWaveform turns a waveform grid into an opaque raster of the same
// size: each channel byte is (count/max)^(1/1.5)·255.
func PaintWaveform(g *Grid, workers int) (*image.RGBA, error) {
	if g == nil || g.Channels != 4 {
		return nil, fmt.Errorf("%w: waveform needs 4 channels", ErrGridShape)
	}
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	peak := float64(g.Max())

	forBands(g.Height, workers, func(_, lo, hi int) {
		for y := lo; y < hi; y++ {
			for x := 0; x < g.Width; x++ {
				k := (y*g.Width + x) * 4
				i := img.PixOffset(x, y)
				for c := 0; c < 3; c++ {
					img.Pix[i+c] = waveformLevel(g.Counts[k+c], peak)
				}
				img.Pix[i+3] = 255
			}
		}
	})
	return img, nil
}

func waveformLevel(count uint32, peak float64) uint8 {
	if peak <= 0 || count == 0 {
		return 0
	}
	return clamp8(math.Round(math.Pow(float64(count)/peak, waveformGamma) * 255))
}

// MaskChannel returns a copy of a waveform raster keeping only channel c
// (0 red, 1 green, 2 blue). Alpha is kept.
func MaskChannel(src *image.RGBA, c int) *image.RGBA {
	dst := image.NewRGBA(src.Rect)
	for i := 0; i+3 < len(src.Pix); i += 4 {
		dst.Pix[i+c] = src.Pix[i+c]
		dst.Pix[i+3] = src.Pix[i+3]
	}
	return dst
}

// PaintVectorscope turns a vectorscope grid into a Bins×Bins raster. Cell
// opacity is sqrt(count/max); its colour is the chromaticity the cell stands
// for at L* = 25, brought to the display peak and premultiplied.
func PaintVectorscope(g *Grid, profile *colorspace.Profile, zoom float64, workers int) (*image.RGBA, error) {
	if g == nil || g.Width != Bins || g.Height != Bins || g.Channels != 1 {
		return nil, fmt.Errorf("%w: vectorscope needs %dx%dx1", ErrGridShape, Bins, Bins)
	}
	if profile == nil {
		return nil, ErrNoProfile
	}
	zoom = ClampZoom(zoom)
	img := image.NewRGBA(image.Rect(0, 0, Bins, Bins))
	peak := float64(g.Max())

	forBands(Bins, workers, func(_, lo, hi int) {
		for y := lo; y < hi; y++ {
			v := CoordToLuv(float64(Bins-1-y), zoom)
			for x := 0; x < Bins; x++ {
				count := g.Counts[y*Bins+x]
				a := 0.0
				if peak > 0 {
					a = math.Sqrt(float64(count) / peak)
				}
				rgb := tint(profile, CoordToLuv(float64(x), zoom), v)

				i := img.PixOffset(x, y)
				for c := 0; c < 3; c++ {
					img.Pix[i+c] = clamp8(math.Round(math.Pow(rgb[c]*a, 1/2.2) * 255))
				}
				img.Pix[i+3] = clamp8(math.Round(a * 255))
			}
		}
	})
	return img, nil
}

// tint returns the display colour of chromaticity (u, v) at L* = 25,
// normalised so its largest channel is 1.
func tint(profile *colorspace.Profile, u, v float64) mathutil.Vec3 {
	xyY := colorspace.LuvToxyY(mathutil.Vec3{25, u, v})
	xyY[0] = math.Max(xyY[0], 0)
	xyY[1] = math.Max(xyY[1], 0)
	xyz := colorspace.XyYToXYZ(xyY).ClampMin(0)
	return peakNormalize(profile.XYZToRGB(xyz).ClampMin(0))
}

// peakNormalize divides rgb by its largest channel. Black and non-finite
// values give black.
func peakNormalize(rgb mathutil.Vec3) mathutil.Vec3 {
	m := rgb.Max()
	if !(m > 0) || math.IsInf(m, 0) {
		return mathutil.Vec3{}
	}
	return rgb.Scale(1 / m)
}

func clamp8(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
