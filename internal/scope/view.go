// Package scope computes and draws the image scopes shown next to the
// darkroom preview: a 1D histogram, horizontal and vertical waveforms, RGB
// parades and a CIE L*u*v* vectorscope.
//
// Work is split in three steps that the controller chains for every
// preview: binning a Backbuf into a count Grid, painting the grid into a
// small raster, and rendering the raster with its decorations onto a
// surface of the widget size.
package scope

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ViewMode selects the scope to draw.
type ViewMode int

const (
	Histogram ViewMode = iota
	WaveformHorizontal
	WaveformVertical
	ParadeHorizontal
	ParadeVertical
	Vectorscope
	ViewCount
)

const (
	// Bins is the number of tonal bins of the histogram, and the side of the
	// vectorscope grid.
	Bins = 256
	// Tones is the number of tonal steps of waveforms and parades.
	Tones = 128

	ZoomMin     = 32.0
	ZoomMax     = 512.0
	ZoomDefault = 128.0
)

var viewNames = [ViewCount]string{
	"histogram",
	"waveform-horizontal",
	"waveform-vertical",
	"parade-horizontal",
	"parade-vertical",
	"vectorscope",
}

var (
	ErrUnknownView = errors.New("scope: unknown view mode")
	ErrNotReady    = errors.New("scope: frame not ready")
	ErrAllocation  = errors.New("scope: allocation too large")
	ErrNoProfile   = errors.New("scope: no color profile")
	ErrGridShape   = errors.New("scope: grid shape mismatch")
)

func (v ViewMode) String() string {
	if !v.Valid() {
		return fmt.Sprintf("ViewMode(%d)", int(v))
	}
	return viewNames[v]
}

// Valid reports whether v names one of the six scopes.
func (v ViewMode) Valid() bool {
	return v >= 0 && v < ViewCount
}

// Vertical reports whether a waveform or parade runs along image rows.
func (v ViewMode) Vertical() bool {
	return v == WaveformVertical || v == ParadeVertical
}

// Parade reports whether channels are drawn side by side.
func (v ViewMode) Parade() bool {
	return v == ParadeHorizontal || v == ParadeVertical
}

// ParseView accepts a view name ("parade-vertical") or its index ("4").
func ParseView(s string) (ViewMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range viewNames {
		if n == s || fmt.Sprint(i) == s {
			return ViewMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownView, s)
}

// ClampZoom bounds a vectorscope zoom to [ZoomMin, ZoomMax]. NaN falls back
// to ZoomDefault.
func ClampZoom(z float64) float64 {
	if math.IsNaN(z) {
		return ZoomDefault
	}
	return math.Min(math.Max(z, ZoomMin), ZoomMax)
}
