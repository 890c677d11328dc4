// Package analyzer keeps the scope surface in step with the preview
// pipeline: it reacts to pipeline, widget and user events, decides when a
// recompute is needed and caches the rendered surface for repaints.
package analyzer

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"time"

	"ansel-scopes/internal/colorspace"
	"ansel-scopes/internal/pipeline"
	"ansel-scopes/internal/scope"
)

// Preference keys.
const (
	KeyStage = "plugin/darkroom/histogram/op"
	KeyView  = "plugin/darkroom/histogram/display"
	KeyZoom  = "plugin/darkroom/histogram/zoom"
)

// ZoomStep is the zoom change per scroll unit.
const ZoomStep = 4.0

var (
	ErrViewDisabled     = errors.New("analyzer: vectorscope is not available on the raw stage")
	ErrStageUnavailable = errors.New("analyzer: raw stage is not available for this image")
)

// Pipeline is the producer side as the analyzer sees it.
type Pipeline interface {
	Status() pipeline.Status
	Backbuf(stage pipeline.Stage) *pipeline.Backbuf
	Profile() *colorspace.Profile
	IsRaw() bool
}

// Repainter schedules a repaint of the scope widget.
type Repainter interface {
	QueueDraw()
}

// Prefs persists the analyzer parameters.
type Prefs interface {
	String(key, def string) string
	Int(key string, def int) int
	Float(key string, def float64) float64
	SetString(key, v string)
	SetInt(key string, v int)
	SetFloat(key string, v float64)
}

// Params is the analyzer state that shapes a surface.
type Params struct {
	Stage  pipeline.Stage
	View   scope.ViewMode
	Zoom   float64
	Width  int
	Height int
}

// Options tune the computes.
type Options struct {
	Workers int
	Theme   *scope.Theme
}

// Controller drives the scopes of one widget. It is meant to run on the UI
// thread and is not safe for concurrent use; only the pixel work fans out.
type Controller struct {
	pipe    Pipeline
	repaint Repainter
	prefs   Prefs
	opts    Options

	params  Params
	backbuf *pipeline.Backbuf
	cache   *Cache

	signals *pipeline.Signals
	sub     *pipeline.Subscription

	computes int
}

// New builds a controller and loads its parameters from prefs.
func New(pipe Pipeline, repaint Repainter, prefs Prefs, opts Options) *Controller {
	c := &Controller{
		pipe:    pipe,
		repaint: repaint,
		prefs:   prefs,
		opts:    opts,
		cache:   NewCache(),
	}
	c.loadParams()
	return c
}

func (c *Controller) loadParams() {
	stage, _ := pipeline.StageFromOp(c.prefs.String(KeyStage, pipeline.StageDisplay.Op()))
	if stage == pipeline.StageRaw && !c.pipe.IsRaw() {
		stage = pipeline.StageDisplay
	}
	view := scope.ViewMode(c.prefs.Int(KeyView, int(scope.Histogram)))
	if !view.Valid() || (view == scope.Vectorscope && stage == pipeline.StageRaw) {
		view = scope.Histogram
	}
	c.params.Stage = stage
	c.params.View = view
	c.params.Zoom = scope.ClampZoom(c.prefs.Float(KeyZoom, scope.ZoomDefault))
	c.backbuf = c.pipe.Backbuf(stage)
}

// Enter subscribes to the preview-finished signal and draws what is
// already available.
func (c *Controller) Enter(signals *pipeline.Signals) {
	c.Leave()
	c.signals = signals
	c.sub = signals.Connect(c.PreviewFinished)
	c.cache.Invalidate()
	c.PreviewFinished()
}

// Leave drops the subscription taken by Enter.
func (c *Controller) Leave() {
	if c.signals != nil {
		c.signals.Disconnect(c.sub)
	}
	c.signals, c.sub = nil, nil
	c.cache.Invalidate()
}

// PreviewFinished re-reads the frame of the current stage and recomputes
// if it changed.
func (c *Controller) PreviewFinished() {
	c.backbuf = c.pipe.Backbuf(c.params.Stage)
	if c.recompute() {
		c.repaint.QueueDraw()
	}
}

// Resize records a new widget allocation. The toolkit repaints on its own
// after a resize so no draw is queued.
func (c *Controller) Resize(width, height int) {
	c.params.Width, c.params.Height = width, height
	c.cache.Invalidate()
	c.recompute()
}

// SetView switches the scope shown.
func (c *Controller) SetView(v scope.ViewMode) error {
	if !v.Valid() {
		return fmt.Errorf("%w: %d", scope.ErrUnknownView, int(v))
	}
	if v == scope.Vectorscope && c.params.Stage == pipeline.StageRaw {
		return ErrViewDisabled
	}
	c.params.View = v
	c.prefs.SetInt(KeyView, int(v))
	if c.recompute() {
		c.repaint.QueueDraw()
	}
	return nil
}

// SetStage switches the pipeline stage read. Selecting raw while the
// vectorscope is shown falls back to the histogram.
func (c *Controller) SetStage(s pipeline.Stage) error {
	if s < 0 || s >= pipeline.StageCount {
		return fmt.Errorf("analyzer: unknown stage %d", int(s))
	}
	if s == pipeline.StageRaw && !c.pipe.IsRaw() {
		return ErrStageUnavailable
	}
	c.params.Stage = s
	c.prefs.SetString(KeyStage, s.Op())
	if s == pipeline.StageRaw && c.params.View == scope.Vectorscope {
		c.params.View = scope.Histogram
		c.prefs.SetInt(KeyView, int(scope.Histogram))
	}
	c.backbuf = c.pipe.Backbuf(s)
	if c.recompute() {
		c.repaint.QueueDraw()
	}
	return nil
}

// SetZoom sets the vectorscope zoom, clamped to [scope.ZoomMin, scope.ZoomMax].
func (c *Controller) SetZoom(z float64) {
	z = scope.ClampZoom(z)
	if z == c.params.Zoom {
		return
	}
	c.params.Zoom = z
	c.prefs.SetFloat(KeyZoom, z)
	if c.recompute() {
		c.repaint.QueueDraw()
	}
}

// Scroll applies scroll units to the vectorscope zoom. It reports whether
// the event was consumed, which only happens on the vectorscope.
func (c *Controller) Scroll(units float64) bool {
	if c.params.View != scope.Vectorscope {
		return false
	}
	c.SetZoom(c.params.Zoom + ZoomStep*units)
	return true
}

// Reset reloads the persisted parameters and drops the cached surface.
func (c *Controller) Reset() {
	c.cache.Invalidate()
	c.loadParams()
}

// Draw blits the cached surface onto dst. It never recomputes and reports
// false when there is nothing to show.
func (c *Controller) Draw(dst draw.Image) bool {
	surf := c.cache.Surface()
	if surf == nil {
		return false
	}
	draw.Draw(dst, surf.Bounds(), surf, image.Point{}, draw.Src)
	return true
}

// Surface returns the cached surface, or nil.
func (c *Controller) Surface() *image.RGBA {
	return c.cache.Surface()
}

// Params returns the current parameters.
func (c *Controller) Params() Params {
	return c.params
}

// Descriptor returns the descriptor a surface would need to be reused now.
func (c *Controller) Descriptor() Descriptor {
	hash := pipeline.HashNone
	if c.backbuf != nil {
		hash = c.backbuf.Hash
	}
	return Descriptor{
		Hash:   hash,
		Width:  c.params.Width,
		Height: c.params.Height,
		View:   c.params.View,
		Zoom:   c.params.Zoom,
	}
}

// Cache returns the surface cache.
func (c *Controller) Cache() *Cache {
	return c.cache
}

// Computes returns how many surfaces have been rendered.
func (c *Controller) Computes() int {
	return c.computes
}

// Colorimetric reports whether the current stage carries colorimetric
// meaning. On raw, waveforms and parades only show sensor data.
func (c *Controller) Colorimetric() bool {
	return c.params.Stage != pipeline.StageRaw
}

// ViewEnabled reports whether v can be selected on the current stage.
func (c *Controller) ViewEnabled(v scope.ViewMode) bool {
	return v.Valid() && !(v == scope.Vectorscope && c.params.Stage == pipeline.StageRaw)
}

// StageEnabled reports whether s can be selected for the current image.
func (c *Controller) StageEnabled(s pipeline.Stage) bool {
	return s >= 0 && s < pipeline.StageCount && (s != pipeline.StageRaw || c.pipe.IsRaw())
}

func (c *Controller) ready() bool {
	return c.pipe.Status() == pipeline.StatusValid && c.backbuf.Ready()
}

// recompute renders a new surface when the frame is ready and the cache is
// stale. It reports whether a new surface was stored.
func (c *Controller) recompute() bool {
	log := Logger()
	if !c.ready() {
		log.Debug("[histogram] frame not ready", "stage", c.params.Stage)
		return false
	}
	if c.params.Width <= 0 || c.params.Height <= 0 {
		return false
	}
	d := c.Descriptor()
	if c.cache.Lookup(d) {
		log.Debug("[histogram] cache hit", "hash", d.Hash)
		return false
	}

	// Read the handle once; a frame published meanwhile triggers its own compute.
	bb := c.backbuf
	start := time.Now()
	surf, err := scope.Render(bb, d.Width, d.Height, scope.Options{
		View:    d.View,
		Zoom:    d.Zoom,
		Profile: c.pipe.Profile(),
		Workers: c.opts.Workers,
		Theme:   c.opts.Theme,
	})
	if err != nil {
		if errors.Is(err, scope.ErrNotReady) || errors.Is(err, scope.ErrNoProfile) {
			log.Debug("[histogram] skipped", "view", d.View, "err", err)
		} else {
			log.Warn("[histogram] compute failed", "view", d.View, "err", err)
		}
		return false
	}
	if err := c.cache.Store(d, surf); err != nil {
		log.Warn("[histogram] compute failed", "view", d.View, "err", err)
		return false
	}
	c.computes++
	log.Debug("[histogram] redraw", "view", d.View, "width", d.Width, "height", d.Height,
		"elapsed", time.Since(start))
	return true
}
