package scope

import (
	"image"

	"golang.org/x/image/draw"
)

// AddInto adds src onto dst with saturation, the way light adds up:
// dst = min(dst + src·opacity·mask, 255) for every byte, alpha included.
// Both images are premultiplied. mask may be nil; otherwise its alpha
// channel weights src per pixel.
func AddInto(dst, src *image.RGBA, opacity float64, mask *image.RGBA) {
	r := dst.Rect.Intersect(src.Rect)
	if mask != nil {
		r = r.Intersect(mask.Rect)
	}
	if r.Empty() {
		return
	}
	scaled := opacity < 1 || mask != nil
	for y := r.Min.Y; y < r.Max.Y; y++ {
		di := dst.PixOffset(r.Min.X, y)
		si := src.PixOffset(r.Min.X, y)
		mi := 0
		if mask != nil {
			mi = mask.PixOffset(r.Min.X, y)
		}
		for x := r.Min.X; x < r.Max.X; x++ {
			w := opacity
			if mask != nil {
				w *= float64(mask.Pix[mi+3]) / 255
				mi += 4
			}
			for c := 0; c < 4; c++ {
				s := uint16(src.Pix[si+c])
				if scaled {
					s = uint16(float64(s)*w + 0.5)
				}
				sum := uint16(dst.Pix[di+c]) + s
				if sum > 255 {
					sum = 255
				}
				dst.Pix[di+c] = uint8(sum)
			}
			di += 4
			si += 4
		}
	}
}

// scaleOpaque resamples src into the rectangle r with Catmull-Rom filtering.
// The raster is treated as opaque while resampling so colour bytes above
// their alpha, as in the vectorscope, are not clipped by the filter.
func scaleOpaque(src *image.RGBA, r image.Rectangle) *image.RGBA {
	opaque := image.NewRGBA(src.Rect)
	copy(opaque.Pix, src.Pix)
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 255
	}
	dst := image.NewRGBA(r)
	draw.CatmullRom.Scale(dst, r, opaque, opaque.Bounds(), draw.Src, nil)
	return dst
}
