package pipeline

import (
	"fmt"
	"sync/atomic"
)

// Status is the validity of the preview pipeline's last run.
type Status int32

const (
	StatusDirty Status = iota
	StatusValid
	StatusInvalid
)

// Publisher holds the current Backbuf of every stage. The pipeline thread
// publishes new snapshots while the UI thread reads them; each publication
// replaces the whole snapshot with a single atomic pointer swap, so a reader
// holding an older *Backbuf keeps a consistent view of it.
type Publisher struct {
	bufs   [StageCount]atomic.Pointer[Backbuf]
	status atomic.Int32
}

// NewPublisher returns a Publisher with no data on any stage.
func NewPublisher() *Publisher {
	p := &Publisher{}
	for s := range p.bufs {
		p.bufs[s].Store(&Backbuf{Hash: HashNone, Stage: Stage(s)})
	}
	return p
}

// Backbuf returns the latest snapshot for stage. It is never nil for a valid
// stage.
func (p *Publisher) Backbuf(stage Stage) *Backbuf {
	if stage < 0 || stage >= StageCount {
		return &Backbuf{Hash: HashNone, Stage: stage}
	}
	return p.bufs[stage].Load()
}

// Status returns the pipeline status last set with SetStatus.
func (p *Publisher) Status() Status {
	return Status(p.status.Load())
}

// SetStatus records the pipeline status.
func (p *Publisher) SetStatus(s Status) {
	p.status.Store(int32(s))
}

// Publish copies pixels (4 floats per pixel) into a new snapshot for stage.
// It returns false without copying when hash equals the current snapshot's.
func (p *Publisher) Publish(stage Stage, width, height int, pixels []float32, hash uint64) (bool, error) {
	if err := checkStage(stage); err != nil {
		return false, err
	}
	if p.bufs[stage].Load().Hash == hash {
		return false, nil
	}
	n := width * height * 4
	if width <= 0 || height <= 0 || len(pixels) < n {
		return false, fmt.Errorf("pipeline: publish %s: %d floats for %dx%d", stage, len(pixels), width, height)
	}
	buf := make([]float32, n)
	copy(buf, pixels[:n])
	p.bufs[stage].Store(&Backbuf{Width: width, Height: height, Pixels: buf, Hash: hash, Stage: stage})
	return true, nil
}

// PublishBGRA8 publishes an 8-bit BGRA buffer, as produced by the display
// encoding step, converting it to float RGB in [0, 1] with the fourth
// channel zeroed.
func (p *Publisher) PublishBGRA8(stage Stage, width, height int, bgra []byte, hash uint64) (bool, error) {
	if err := checkStage(stage); err != nil {
		return false, err
	}
	if p.bufs[stage].Load().Hash == hash {
		return false, nil
	}
	n := width * height
	if width <= 0 || height <= 0 || len(bgra) < n*4 {
		return false, fmt.Errorf("pipeline: publish %s: %d bytes for %dx%d", stage, len(bgra), width, height)
	}
	buf := make([]float32, n*4)
	for k := 0; k < n*4; k += 4 {
		buf[k+0] = float32(bgra[k+2]) / 255
		buf[k+1] = float32(bgra[k+1]) / 255
		buf[k+2] = float32(bgra[k+0]) / 255
	}
	p.bufs[stage].Store(&Backbuf{Width: width, Height: height, Pixels: buf, Hash: hash, Stage: stage})
	return true, nil
}

// Invalidate marks stage as holding no usable data, as the pipeline does
// when copying its output failed.
func (p *Publisher) Invalidate(stage Stage) {
	if checkStage(stage) != nil {
		return
	}
	p.bufs[stage].Store(&Backbuf{Hash: HashNone, Stage: stage})
}

func checkStage(s Stage) error {
	if s < 0 || s >= StageCount {
		return fmt.Errorf("pipeline: invalid stage %d", int(s))
	}
	return nil
}
