// Package pipeline models the producer side of the scopes: read-only
// snapshots of the preview pipeline output at a given stage, their
// publication, and the "preview finished" signal.
package pipeline

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// HashNone marks a Backbuf that carries no usable data.
const HashNone uint64 = math.MaxUint64

// Stage names the pipeline step a Backbuf was captured after.
type Stage int

const (
	StageRaw Stage = iota
	StageOutputProfile
	StageDisplay
	StageCount
)

var stageTags = [StageCount]string{"raw", "output-profile", "display"}

// Operation names of the modules each stage is captured after. These are
// the values persisted in the preferences.
var stageOps = [StageCount]string{"demosaic", "colorout", "gamma"}

func (s Stage) String() string {
	if s < 0 || s >= StageCount {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageTags[s]
}

// Op returns the pipeline module name the stage is captured after.
func (s Stage) Op() string {
	if s < 0 || s >= StageCount {
		return ""
	}
	return stageOps[s]
}

// StageFromOp maps a module name back to its stage. Unknown names map to
// StageDisplay, matching what an unconfigured editor shows.
func StageFromOp(op string) (Stage, bool) {
	for i, o := range stageOps {
		if o == op {
			return Stage(i), true
		}
	}
	return StageDisplay, false
}

// ParseStage accepts either a stage tag ("output-profile") or an op name ("colorout").
func ParseStage(s string) (Stage, error) {
	for i := range stageTags {
		if stageTags[i] == s || stageOps[i] == s {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("pipeline: unknown stage %q", s)
}

// Backbuf is an immutable snapshot of the preview pipeline output. Pixels
// holds Width×Height pixels of four float32 each (R, G, B, unused), row-major
// and tightly packed.
type Backbuf struct {
	Width  int
	Height int
	Pixels []float32
	Hash   uint64
	Stage  Stage
}

// Ready reports whether b holds data the scopes can read.
func (b *Backbuf) Ready() bool {
	return b != nil && b.Hash != HashNone && b.Pixels != nil &&
		b.Width > 0 && b.Height > 0 && len(b.Pixels) >= 4*b.Width*b.Height
}

// Pixel returns the RGB values of pixel (x, y).
func (b *Backbuf) Pixel(x, y int) (r, g, bl float32) {
	i := (y*b.Width + x) * 4
	return b.Pixels[i], b.Pixels[i+1], b.Pixels[i+2]
}

// ContentHash computes the xxHash64 of the pixel values. The result is never
// HashNone.
func ContentHash(pixels []float32) uint64 {
	h := xxhash.New()
	var buf [4096]byte
	n := 0
	for _, v := range pixels {
		binary.LittleEndian.PutUint32(buf[n:], math.Float32bits(v))
		n += 4
		if n == len(buf) {
			h.Write(buf[:])
			n = 0
		}
	}
	h.Write(buf[:n])
	sum := h.Sum64()
	if sum == HashNone {
		sum--
	}
	return sum
}
