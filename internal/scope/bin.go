package scope

import (
	"fmt"
	"math"

	"ansel-scopes/internal/colorspace"
	"ansel-scopes/internal/mathutil"
	"ansel-scopes/internal/pipeline"
)

// Bin counts the pixels of bb into grid, whose shape must match
// GridShape(view, bb.Width, bb.Height). zoom and profile are only used by
// the vectorscope. The grid is zeroed first. The result does not depend on
// the number of workers.
func Bin(bb *pipeline.Backbuf, view ViewMode, zoom float64, profile *colorspace.Profile, workers int, grid *Grid) error {
	if !bb.Ready() {
		return ErrNotReady
	}
	w, h, c, err := GridShape(view, bb.Width, bb.Height)
	if err != nil {
		return err
	}
	if grid == nil || grid.Width != w || grid.Height != h || grid.Channels != c {
		return fmt.Errorf("%w: %s wants %dx%dx%d", ErrGridShape, view, w, h, c)
	}

	var kernel func(g *Grid, lo, hi int)
	switch view {
	case Histogram:
		kernel = func(g *Grid, lo, hi int) { histogramRows(bb, g, lo, hi) }
	case WaveformHorizontal, ParadeHorizontal:
		kernel = func(g *Grid, lo, hi int) { waveformRows(bb, g, lo, hi, false) }
	case WaveformVertical, ParadeVertical:
		kernel = func(g *Grid, lo, hi int) { waveformRows(bb, g, lo, hi, true) }
	case Vectorscope:
		if profile == nil {
			return ErrNoProfile
		}
		z := ClampZoom(zoom)
		kernel = func(g *Grid, lo, hi int) { vectorscopeRows(bb, g, profile, z, lo, hi) }
	}
	return binParallel(grid, bb.Height, workers, kernel)
}

// BinHistogram fills a Bins×1×4 grid with per-channel tonal counts.
func BinHistogram(bb *pipeline.Backbuf, grid *Grid, workers int) error {
	return Bin(bb, Histogram, 0, nil, workers, grid)
}

// BinWaveform fills a waveform grid, column-wise (W×Tones×4) or, when
// vertical, row-wise (Tones×H×4).
func BinWaveform(bb *pipeline.Backbuf, grid *Grid, vertical bool, workers int) error {
	if vertical {
		return Bin(bb, WaveformVertical, 0, nil, workers, grid)
	}
	return Bin(bb, WaveformHorizontal, 0, nil, workers, grid)
}

// BinVectorscope fills a Bins×Bins×1 grid with the u*v* chromaticity of
// every pixel at the given zoom.
func BinVectorscope(bb *pipeline.Backbuf, grid *Grid, profile *colorspace.Profile, zoom float64, workers int) error {
	return Bin(bb, Vectorscope, zoom, profile, workers, grid)
}

// binParallel counts rows [0, rows) band by band. Every band but the first
// counts into its own partial grid; partials are summed in band order.
func binParallel(grid *Grid, rows, workers int, kernel func(g *Grid, lo, hi int)) error {
	grid.Reset()
	bands := bandCount(rows, workers)
	partials := make([]*Grid, bands)
	partials[0] = grid
	for b := 1; b < bands; b++ {
		p, err := NewGrid(grid.Width, grid.Height, grid.Channels)
		if err != nil {
			return err
		}
		partials[b] = p
	}

	forBands(rows, bands, func(b, lo, hi int) {
		kernel(partials[b], lo, hi)
	})

	for _, p := range partials[1:] {
		grid.add(p)
	}
	return nil
}

func histogramRows(bb *pipeline.Backbuf, g *Grid, lo, hi int) {
	px := bb.Pixels
	for y := lo; y < hi; y++ {
		row := y * bb.Width * 4
		for x := 0; x < bb.Width; x++ {
			k := row + x*4
			for c := 0; c < 3; c++ {
				g.Counts[quantize(px[k+c], Bins)*4+c]++
			}
		}
	}
}

func waveformRows(bb *pipeline.Backbuf, g *Grid, lo, hi int, vertical bool) {
	px := bb.Pixels
	w := bb.Width
	for y := lo; y < hi; y++ {
		row := y * w * 4
		for x := 0; x < w; x++ {
			k := row + x*4
			for c := 0; c < 3; c++ {
				t := quantize(px[k+c], Tones)
				if vertical {
					g.Counts[(y*Tones+t)*4+c]++
				} else {
					g.Counts[((Tones-1-t)*w+x)*4+c]++
				}
			}
		}
	}
}

func vectorscopeRows(bb *pipeline.Backbuf, g *Grid, profile *colorspace.Profile, zoom float64, lo, hi int) {
	px := bb.Pixels
	for y := lo; y < hi; y++ {
		row := y * bb.Width * 4
		for x := 0; x < bb.Width; x++ {
			k := row + x*4
			luv := profile.RGBToLuv(mathutil.Vec3{float64(px[k]), float64(px[k+1]), float64(px[k+2])})
			col := clampIndex(math.Round(LuvToCoord(luv[1], zoom)), Bins)
			r := clampIndex(math.Round(LuvToCoord(luv[2], zoom)), Bins)
			// v* = 0 at the bottom of the grid.
			g.Counts[(Bins-1-r)*Bins+col]++
		}
	}
}

// LuvToCoord maps a u* or v* value to vectorscope grid coordinates at zoom.
func LuvToCoord(value, zoom float64) float64 {
	return (value + zoom) * (Bins - 1) / (2 * zoom)
}

// CoordToLuv is the inverse of LuvToCoord.
func CoordToLuv(coord, zoom float64) float64 {
	return coord*(2*zoom)/(Bins-1) - zoom
}

// quantize maps v ∈ [0, 1] to round(v·(steps-1)). Out of range values and
// NaN are clamped.
func quantize(v float32, steps int) int {
	return clampIndex(math.Round(float64(v)*float64(steps-1)), steps)
}

func clampIndex(f float64, n int) int {
	if !(f > 0) {
		return 0
	}
	if f > float64(n-1) {
		return n - 1
	}
	return int(f)
}
