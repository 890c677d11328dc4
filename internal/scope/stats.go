package scope

import (
	"math"

	"ansel-scopes/internal/colorspace"
	"ansel-scopes/internal/mathutil"
	"ansel-scopes/internal/pipeline"
)

// Stats summarises a frame the way the scopes read it.
type Stats struct {
	Pixels  int
	Mean    [3]float64
	Clipped [3]int // values >= 1
	Crushed [3]int // values <= 0

	// Peak is the fullest histogram bin of each channel.
	Peak      [3]int
	PeakCount [3]uint32

	// Skin counts pixels inside the skin tone region and MeanChroma is the
	// average u*v* chroma. Both are zero without a profile.
	Skin       int
	MeanChroma float64
}

// Summarize computes Stats for bb. profile may be nil.
func Summarize(bb *pipeline.Backbuf, profile *colorspace.Profile, skin SkinTones, workers int) (Stats, error) {
	var s Stats
	if !bb.Ready() {
		return s, ErrNotReady
	}
	grid, err := NewGridFor(Histogram, bb.Width, bb.Height)
	if err != nil {
		return s, err
	}
	if err := BinHistogram(bb, grid, workers); err != nil {
		return s, err
	}
	for c := 0; c < 3; c++ {
		for k := 0; k < Bins; k++ {
			if n := grid.At(k, 0, c); n > s.PeakCount[c] {
				s.Peak[c], s.PeakCount[c] = k, n
			}
		}
	}

	s.Pixels = bb.Width * bb.Height
	var sum [3]float64
	var chroma float64
	px := bb.Pixels[:4*s.Pixels]
	for k := 0; k < len(px); k += 4 {
		for c := 0; c < 3; c++ {
			v := px[k+c]
			sum[c] += float64(v)
			if v >= 1 {
				s.Clipped[c]++
			} else if v <= 0 {
				s.Crushed[c]++
			}
		}
		if profile == nil {
			continue
		}
		luv := profile.RGBToLuv(mathutil.Vec3{float64(px[k]), float64(px[k+1]), float64(px[k+2])})
		if math.IsNaN(luv[1]) || math.IsNaN(luv[2]) {
			continue
		}
		chroma += math.Hypot(luv[1], luv[2])
		if skin.Contains(luv[1], luv[2]) {
			s.Skin++
		}
	}
	for c := range sum {
		s.Mean[c] = sum[c] / float64(s.Pixels)
	}
	if profile != nil {
		s.MeanChroma = chroma / float64(s.Pixels)
	}
	return s, nil
}
