package scope

import (
	"errors"
	"math"
	"math/rand"
	"slices"
	"testing"

	"ansel-scopes/internal/colorspace"
	"ansel-scopes/internal/pipeline"
)

// frame builds a w×h Backbuf cycling through px.
func frame(w, h int, px ...[3]float32) *pipeline.Backbuf {
	pixels := make([]float32, 4*w*h)
	for i := 0; i < w*h; i++ {
		p := px[i%len(px)]
		copy(pixels[i*4:], p[:])
	}
	return &pipeline.Backbuf{
		Width:  w,
		Height: h,
		Pixels: pixels,
		Hash:   pipeline.ContentHash(pixels),
		Stage:  pipeline.StageDisplay,
	}
}

// noise builds a w×h Backbuf of reproducible random values, some of them
// outside [0, 1].
func noise(w, h int, seed int64) *pipeline.Backbuf {
	r := rand.New(rand.NewSource(seed))
	pixels := make([]float32, 4*w*h)
	for i := range pixels {
		pixels[i] = r.Float32()*1.2 - 0.1
	}
	return &pipeline.Backbuf{Width: w, Height: h, Pixels: pixels, Hash: pipeline.ContentHash(pixels)}
}

func binned(t *testing.T, bb *pipeline.Backbuf, view ViewMode, zoom float64, workers int) *Grid {
	t.Helper()
	g, err := NewGridFor(view, bb.Width, bb.Height)
	if err != nil {
		t.Fatalf("NewGridFor(%s): %v", view, err)
	}
	if err := Bin(bb, view, zoom, colorspace.SRGB(), workers, g); err != nil {
		t.Fatalf("Bin(%s): %v", view, err)
	}
	return g
}

func TestHistogramSingleWhitePixel(t *testing.T) {
	g := binned(t, frame(1, 1, [3]float32{1, 1, 1}), Histogram, 0, 1)
	for bin := 0; bin < Bins; bin++ {
		for c := 0; c < 3; c++ {
			want := uint32(0)
			if bin == 255 {
				want = 1
			}
			if got := g.At(bin, 0, c); got != want {
				t.Fatalf("bins[%d, %d] = %d, want %d", bin, c, got, want)
			}
		}
	}
	for c := 0; c < 3; c++ {
		if m := g.ChannelMax(c); m != 1 {
			t.Errorf("ChannelMax(%d) = %d, want 1", c, m)
		}
	}
}

func TestWaveformTwoPixels(t *testing.T) {
	bb := frame(2, 1, [3]float32{0, 0, 0}, [3]float32{1, 1, 1})
	g := binned(t, bb, WaveformHorizontal, 0, 1)
	if g.Width != 2 || g.Height != Tones {
		t.Fatalf("grid is %dx%d, want 2x%d", g.Width, g.Height, Tones)
	}
	for y := 0; y < Tones; y++ {
		for x := 0; x < 2; x++ {
			want := uint32(0)
			if (x == 0 && y == Tones-1) || (x == 1 && y == 0) {
				want = 1
			}
			for c := 0; c < 3; c++ {
				if got := g.At(x, y, c); got != want {
					t.Fatalf("grid[%d,%d,%d] = %d, want %d", x, y, c, got, want)
				}
			}
		}
	}
	if m := g.Max(); m != 1 {
		t.Errorf("Max() = %d, want 1", m)
	}
}

func TestVectorscopeNeutral(t *testing.T) {
	bb := frame(4, 4, [3]float32{0.5, 0.5, 0.5})
	for _, zoom := range []float64{ZoomDefault, 256, ZoomMax} {
		g := binned(t, bb, Vectorscope, zoom, 1)
		var cells []int
		for i, v := range g.Counts {
			if v != 0 {
				cells = append(cells, i)
			}
		}
		if len(cells) != 1 {
			t.Fatalf("zoom %v: %d non-zero cells, want 1", zoom, len(cells))
		}
		if g.Counts[cells[0]] != 16 {
			t.Errorf("zoom %v: cell holds %d, want 16", zoom, g.Counts[cells[0]])
		}
		row, col := cells[0]/Bins, cells[0]%Bins
		if row < 127 || row > 128 || col < 127 || col > 128 {
			t.Errorf("zoom %v: mass at row %d col %d, want the centre", zoom, row, col)
		}
	}
}

func TestHistogramConservation(t *testing.T) {
	bb := noise(37, 23, 1)
	g := binned(t, bb, Histogram, 0, 4)
	for c := 0; c < 3; c++ {
		if s := g.Sum(c); s != uint64(bb.Width*bb.Height) {
			t.Errorf("channel %d sums to %d, want %d", c, s, bb.Width*bb.Height)
		}
	}
	if s := g.Sum(3); s != 0 {
		t.Errorf("unused channel sums to %d", s)
	}
}

func TestWaveformConservation(t *testing.T) {
	bb := noise(31, 17, 2)

	h := binned(t, bb, WaveformHorizontal, 0, 3)
	for x := 0; x < bb.Width; x++ {
		for c := 0; c < 3; c++ {
			var s uint32
			for k := 0; k < Tones; k++ {
				s += h.At(x, k, c)
			}
			if s != uint32(bb.Height) {
				t.Fatalf("column %d channel %d sums to %d, want %d", x, c, s, bb.Height)
			}
		}
	}

	v := binned(t, bb, ParadeVertical, 0, 3)
	for y := 0; y < bb.Height; y++ {
		for c := 0; c < 3; c++ {
			var s uint32
			for k := 0; k < Tones; k++ {
				s += v.At(k, y, c)
			}
			if s != uint32(bb.Width) {
				t.Fatalf("row %d channel %d sums to %d, want %d", y, c, s, bb.Width)
			}
		}
	}
}

func TestVectorscopeConservation(t *testing.T) {
	bb := noise(29, 19, 3)
	for _, zoom := range []float64{ZoomMin, ZoomDefault, ZoomMax} {
		g := binned(t, bb, Vectorscope, zoom, 4)
		if s := g.Sum(0); s != uint64(bb.Width*bb.Height) {
			t.Errorf("zoom %v: sum %d, want %d", zoom, s, bb.Width*bb.Height)
		}
	}
}

func TestBinIndependentOfWorkers(t *testing.T) {
	bb := noise(53, 41, 4)
	for view := Histogram; view < ViewCount; view++ {
		ref := binned(t, bb, view, 96, 1)
		for _, workers := range []int{2, 3, 7, 64, 0} {
			g := binned(t, bb, view, 96, workers)
			if !slices.Equal(ref.Counts, g.Counts) {
				t.Errorf("%s: %d workers differ from one", view, workers)
			}
		}
	}
}

func TestZoomPullsTowardsCentre(t *testing.T) {
	const centre = (Bins - 1) / 2.0
	for _, u := range []float64{-150, -40, -3, 0, 2.5, 60, 200} {
		prev := math.Inf(1)
		for z := ZoomMin; z <= ZoomMax; z += 16 {
			d := math.Abs(LuvToCoord(u, z) - centre)
			if d > prev+1e-9 {
				t.Fatalf("u*=%v moved away from centre at zoom %v", u, z)
			}
			prev = d
		}
	}
}

func TestLuvCoordRoundTrip(t *testing.T) {
	for _, z := range []float64{ZoomMin, ZoomDefault, ZoomMax} {
		for _, v := range []float64{-z, -1, 0, 17.5, z} {
			if got := CoordToLuv(LuvToCoord(v, z), z); math.Abs(got-v) > 1e-9 {
				t.Errorf("zoom %v: %v round trips to %v", z, v, got)
			}
		}
	}
	if c := LuvToCoord(-ZoomDefault, ZoomDefault); c != 0 {
		t.Errorf("left edge maps to %v", c)
	}
	if c := LuvToCoord(ZoomDefault, ZoomDefault); c != Bins-1 {
		t.Errorf("right edge maps to %v", c)
	}
}

func TestQuantize(t *testing.T) {
	nan := float32(math.NaN())
	tests := []struct {
		v     float32
		steps int
		want  int
	}{
		{0, Bins, 0},
		{1, Bins, 255},
		{-0.5, Bins, 0},
		{3, Bins, 255},
		{0.5, Tones, 64},
		{1.0 / 127, Tones, 1},
		{nan, Tones, 0},
	}
	for _, tt := range tests {
		if got := quantize(tt.v, tt.steps); got != tt.want {
			t.Errorf("quantize(%v, %d) = %d, want %d", tt.v, tt.steps, got, tt.want)
		}
	}
}

func TestBinErrors(t *testing.T) {
	bb := frame(2, 2, [3]float32{0.2, 0.4, 0.6})
	g, _ := NewGridFor(Histogram, 2, 2)

	if err := Bin(&pipeline.Backbuf{Hash: pipeline.HashNone}, Histogram, 0, nil, 1, g); !errors.Is(err, ErrNotReady) {
		t.Errorf("empty backbuf: %v, want ErrNotReady", err)
	}
	short := *bb
	short.Pixels = short.Pixels[:7]
	if err := Bin(&short, Histogram, 0, nil, 1, g); !errors.Is(err, ErrNotReady) {
		t.Errorf("short pixels: %v, want ErrNotReady", err)
	}
	if err := Bin(bb, WaveformVertical, 0, nil, 1, g); !errors.Is(err, ErrGridShape) {
		t.Errorf("wrong grid: %v, want ErrGridShape", err)
	}
	vg, _ := NewGridFor(Vectorscope, 2, 2)
	if err := Bin(bb, Vectorscope, ZoomDefault, nil, 1, vg); !errors.Is(err, ErrNoProfile) {
		t.Errorf("no profile: %v, want ErrNoProfile", err)
	}
	if err := Bin(bb, ViewCount, 0, nil, 1, g); !errors.Is(err, ErrUnknownView) {
		t.Errorf("bad view: %v, want ErrUnknownView", err)
	}
}

func TestNewGridAllocationLimit(t *testing.T) {
	old := MaxGridCells
	MaxGridCells = 2000
	defer func() { MaxGridCells = old }()

	if _, err := NewGridFor(Histogram, 4000, 4000); err != nil {
		t.Errorf("histogram grid does not depend on frame size: %v", err)
	}
	if _, err := NewGridFor(WaveformHorizontal, 4000, 10); !errors.Is(err, ErrAllocation) {
		t.Errorf("oversized waveform: %v, want ErrAllocation", err)
	}
	if _, err := NewGrid(0, 1, 1); !errors.Is(err, ErrAllocation) {
		t.Errorf("empty grid: %v, want ErrAllocation", err)
	}
}

func TestForBandsCoversRows(t *testing.T) {
	for _, n := range []int{1, 2, 7, 100} {
		for _, workers := range []int{1, 3, 8, 200} {
			seen := make([]int, n)
			bands := forBands(n, workers, func(_, lo, hi int) {
				for i := lo; i < hi; i++ {
					seen[i]++
				}
			})
			if bands < 1 || bands > n {
				t.Errorf("n=%d workers=%d: %d bands", n, workers, bands)
			}
			for i, s := range seen {
				if s != 1 {
					t.Fatalf("n=%d workers=%d: row %d visited %d times", n, workers, i, s)
				}
			}
		}
	}
}
