package scope

import "fmt"

// MaxGridCells bounds the size of a single count grid. Requests above it
// fail with ErrAllocation and the frame is skipped.
var MaxGridCells = 1 << 28

// Grid holds pixel counts as a flat slice for cache locality.
// Cell (x, y) channel c lives at Counts[(y*Width+x)*Channels+c].
type Grid struct {
	Width    int
	Height   int
	Channels int
	Counts   []uint32
}

// NewGrid allocates a zeroed grid.
func NewGrid(w, h, channels int) (*Grid, error) {
	n := w * h * channels
	if w <= 0 || h <= 0 || channels <= 0 || n > MaxGridCells || n/channels/h != w {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrAllocation, w, h, channels)
	}
	return &Grid{Width: w, Height: h, Channels: channels, Counts: make([]uint32, n)}, nil
}

// GridShape returns the grid dimensions a view needs for a frame of
// frameW×frameH pixels.
func GridShape(view ViewMode, frameW, frameH int) (w, h, channels int, err error) {
	switch view {
	case Histogram:
		return Bins, 1, 4, nil
	case WaveformHorizontal, ParadeHorizontal:
		return frameW, Tones, 4, nil
	case WaveformVertical, ParadeVertical:
		return Tones, frameH, 4, nil
	case Vectorscope:
		return Bins, Bins, 1, nil
	}
	return 0, 0, 0, fmt.Errorf("%w: %d", ErrUnknownView, int(view))
}

// NewGridFor allocates the grid view needs for a frame of frameW×frameH pixels.
func NewGridFor(view ViewMode, frameW, frameH int) (*Grid, error) {
	w, h, c, err := GridShape(view, frameW, frameH)
	if err != nil {
		return nil, err
	}
	return NewGrid(w, h, c)
}

// Reset zeroes every count.
func (g *Grid) Reset() {
	clear(g.Counts)
}

// At returns the count of cell (x, y) in channel c.
func (g *Grid) At(x, y, c int) uint32 {
	return g.Counts[(y*g.Width+x)*g.Channels+c]
}

// Max returns the largest count over all cells and channels.
func (g *Grid) Max() uint32 {
	var m uint32
	for _, v := range g.Counts {
		if v > m {
			m = v
		}
	}
	return m
}

// ChannelMax returns the largest count of channel c.
func (g *Grid) ChannelMax(c int) uint32 {
	var m uint32
	for i := c; i < len(g.Counts); i += g.Channels {
		if g.Counts[i] > m {
			m = g.Counts[i]
		}
	}
	return m
}

// Sum returns the total of channel c.
func (g *Grid) Sum(c int) uint64 {
	var s uint64
	for i := c; i < len(g.Counts); i += g.Channels {
		s += uint64(g.Counts[i])
	}
	return s
}

func (g *Grid) add(o *Grid) {
	for i, v := range o.Counts {
		g.Counts[i] += v
	}
}
