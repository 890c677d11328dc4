package scope

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"ansel-scopes/internal/colorspace"
	"ansel-scopes/internal/mathutil"
	"ansel-scopes/internal/pipeline"
)

// Theme holds the colours the scopes borrow from the surrounding UI.
// Waveform and vectorscope backgrounds are fixed greys and are not themed.
type Theme struct {
	Background      gg.RGBA
	GraphBackground gg.RGBA
	GraphGrid       gg.RGBA
	GraphColors     [3]gg.RGBA
}

// DefaultTheme matches the darkroom's dark grey style.
func DefaultTheme() Theme {
	return Theme{
		Background:      gg.RGB(0.13, 0.13, 0.13),
		GraphBackground: gg.RGB(0.3, 0.3, 0.3),
		GraphGrid:       gg.RGB(0.21, 0.21, 0.21),
		GraphColors: [3]gg.RGBA{
			gg.RGB(0.9, 0.15, 0.15),
			gg.RGB(0.15, 0.9, 0.15),
			gg.RGB(0.15, 0.15, 0.9),
		},
	}
}

var (
	scopeBackground = gg.RGB(0.3, 0.3, 0.3)
	scopeGrid       = gg.RGB(0.21, 0.21, 0.21)
	scopeDark       = gg.RGB(0.2, 0.2, 0.2)
	scopeRing       = gg.RGB(0.33, 0.33, 0.33)
)

// primaries are the RGB primaries and secondaries marked on the vectorscope.
var primaries = [6]mathutil.Vec3{
	{1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 1, 1}, {0, 0, 1}, {1, 0, 1},
}

// Options parameterise a render. Zoom and Profile only matter to the
// vectorscope; a nil Theme means DefaultTheme.
type Options struct {
	View    ViewMode
	Zoom    float64
	Profile *colorspace.Profile
	Workers int
	Theme   *Theme
	Skin    *SkinTones
}

// Render bins bb, paints it and draws the scope onto a fresh surface of
// width×height pixels. The surface is premultiplied and fully opaque.
func Render(bb *pipeline.Backbuf, width, height int, opts Options) (*image.RGBA, error) {
	if !opts.View.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownView, int(opts.View))
	}
	if !bb.Ready() {
		return nil, ErrNotReady
	}
	if width <= 0 || height <= 0 || width*height > MaxGridCells {
		return nil, fmt.Errorf("%w: surface %dx%d", ErrAllocation, width, height)
	}
	if opts.View == Vectorscope && opts.Profile == nil {
		return nil, ErrNoProfile
	}
	theme := DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}
	skin := DefaultSkinTones
	if opts.Skin != nil {
		skin = *opts.Skin
	}

	grid, err := NewGridFor(opts.View, bb.Width, bb.Height)
	if err != nil {
		return nil, err
	}
	if err := Bin(bb, opts.View, opts.Zoom, opts.Profile, opts.Workers, grid); err != nil {
		return nil, err
	}

	dc := gg.NewContext(width, height)
	defer dc.Close()
	dc.ClearWithColor(theme.Background)
	p := &pen{dc: dc}

	switch opts.View {
	case Histogram:
		return renderHistogram(p, grid, theme)
	case Vectorscope:
		return renderVectorscope(p, grid, opts.Profile, ClampZoom(opts.Zoom), skin, opts.Workers)
	default:
		return renderWaveform(p, grid, opts.View, opts.Workers)
	}
}

// pen wraps a drawing context and keeps the first drawing error.
type pen struct {
	dc  *gg.Context
	err error
}

func (p *pen) color(c gg.RGBA) {
	p.dc.SetRGBA(c.R, c.G, c.B, c.A)
}

func (p *pen) fill() {
	if err := p.dc.Fill(); err != nil && p.err == nil {
		p.err = err
	}
}

func (p *pen) stroke() {
	if err := p.dc.Stroke(); err != nil && p.err == nil {
		p.err = err
	}
}

func (p *pen) size() (float64, float64) {
	return float64(p.dc.Width()), float64(p.dc.Height())
}

// surface returns a copy of what has been drawn so far.
func (p *pen) surface() (*image.RGBA, error) {
	if p.err != nil {
		return nil, fmt.Errorf("scope: draw: %w", p.err)
	}
	return snapshot(p.dc), nil
}

func snapshot(dc *gg.Context) *image.RGBA {
	img := dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

// drawGrid strokes the inner lines of an n×n grid over the whole context.
func (p *pen) drawGrid(c gg.RGBA, n int) {
	w, h := p.size()
	p.color(c)
	p.dc.SetLineWidth(1)
	for k := 1; k < n; k++ {
		x := math.Round(w*float64(k)/float64(n)) + 0.5
		y := math.Round(h*float64(k)/float64(n)) + 0.5
		p.dc.DrawLine(x, 0, x, h)
		p.dc.DrawLine(0, y, w, y)
	}
	p.stroke()
}

func (p *pen) background(c gg.RGBA) {
	w, h := p.size()
	p.color(c)
	p.dc.DrawRectangle(0, 0, w, h)
	p.fill()
}

func renderHistogram(p *pen, g *Grid, theme Theme) (*image.RGBA, error) {
	peak := max(g.ChannelMax(0), g.ChannelMax(1), g.ChannelMax(2))
	if peak == 0 {
		return p.surface()
	}
	p.background(theme.GraphBackground)
	p.drawGrid(theme.GraphGrid, 4)
	surf, err := p.surface()
	if err != nil {
		return nil, err
	}

	w, h := p.size()
	norm := math.Log1p(float64(peak))
	group := image.NewRGBA(surf.Rect)
	for c := 0; c < 3; c++ {
		dc := gg.NewContext(surf.Rect.Dx(), surf.Rect.Dy())
		curve := &pen{dc: dc}
		curve.color(theme.GraphColors[c])
		dc.MoveTo(0, h)
		for k := 0; k < Bins; k++ {
			y := h - h*math.Log1p(float64(g.At(k, 0, c)))/norm
			dc.LineTo(float64(k)*w/(Bins-1), y)
		}
		dc.LineTo(w, h)
		dc.ClosePath()
		curve.fill()
		layer, err := curve.surface()
		dc.Close()
		if err != nil {
			return nil, err
		}
		AddInto(group, layer, 1, nil)
	}
	AddInto(surf, group, 0.5, nil)
	return surf, nil
}

func renderWaveform(p *pen, g *Grid, view ViewMode, workers int) (*image.RGBA, error) {
	raster, err := PaintWaveform(g, workers)
	if err != nil {
		return nil, err
	}
	if g.Max() == 0 {
		return p.surface()
	}
	p.background(scopeBackground)
	p.drawGrid(scopeGrid, 4)
	surf, err := p.surface()
	if err != nil {
		return nil, err
	}

	w, h := surf.Rect.Dx(), surf.Rect.Dy()
	if !view.Parade() {
		AddInto(surf, scaleOpaque(raster, surf.Rect), 1, nil)
		return surf, nil
	}
	for c := 0; c < 3; c++ {
		r := image.Rect(c*w/3, 0, (c+1)*w/3, h)
		if view.Vertical() {
			r = image.Rect(0, c*h/3, w, (c+1)*h/3)
		}
		if r.Empty() {
			continue
		}
		AddInto(surf, scaleOpaque(MaskChannel(raster, c), r), 1, nil)
	}
	return surf, nil
}

// vectorscopeFrame maps the 256-unit vectorscope square onto the centered
// square of the widget.
type vectorscopeFrame struct {
	ox, oy, scale float64
	side          int
}

func newVectorscopeFrame(w, h int) vectorscopeFrame {
	side := min(w, h)
	return vectorscopeFrame{
		ox:    float64((w - side) / 2),
		oy:    float64((h - side) / 2),
		scale: float64(side) / Bins,
		side:  side,
	}
}

func (f vectorscopeFrame) pt(x, y float64) (float64, float64) {
	return f.ox + x*f.scale, f.oy + y*f.scale
}

func (f vectorscopeFrame) rect() image.Rectangle {
	x, y := int(f.ox), int(f.oy)
	return image.Rect(x, y, x+f.side, y+f.side)
}

// luvPoint places a u*v* chromaticity on the scope, v* growing upwards.
func (f vectorscopeFrame) luvPoint(u, v, zoom float64) (float64, float64) {
	return f.pt(LuvToCoord(u, zoom), Bins-1-LuvToCoord(v, zoom))
}

func (f vectorscopeFrame) circle(dc *gg.Context, x, y, r float64) {
	cx, cy := f.pt(x, y)
	dc.DrawCircle(cx, cy, r*f.scale)
}

func renderVectorscope(p *pen, g *Grid, profile *colorspace.Profile, zoom float64, skin SkinTones, workers int) (*image.RGBA, error) {
	raster, err := PaintVectorscope(g, profile, zoom, workers)
	if err != nil {
		return nil, err
	}
	if g.Max() == 0 {
		return p.surface()
	}

	w, h := p.dc.Width(), p.dc.Height()
	f := newVectorscopeFrame(w, h)
	const center = (Bins - 1) / 2.0
	const radius = center - 1
	dc := p.dc
	dc.SetLineWidth(math.Max(f.scale, 1))

	p.color(scopeBackground)
	f.circle(dc, center, center, radius)
	p.fill()

	p.color(scopeDark)
	f.circle(dc, center, center, 2)
	p.fill()

	for k := 1; k < 4; k++ {
		f.circle(dc, center, center, float64(k)*Bins/8)
		p.stroke()
	}

	dc.Push()
	f.circle(dc, center, center, radius)
	dc.Clip()
	for _, rgb := range primaries {
		luv := profile.RGBToLuv(rgb)
		hue := colorspace.LuvToLch(luv)[2]
		cx, cy := f.pt(center, center)
		ex, ey := f.pt(center+radius*math.Cos(hue), Bins-1-(center+radius*math.Sin(hue)))
		dc.DrawLine(cx, cy, ex, ey)
		p.color(gg.RGBA2(rgb[0], rgb[1], rgb[2], 0.5))
		p.stroke()

		x, y := f.luvPoint(luv[1], luv[2], zoom)
		dc.DrawCircle(x, y, 4*f.scale)
		p.color(scopeBackground)
		if err := dc.FillPreserve(); err != nil && p.err == nil {
			p.err = err
		}
		p.color(gg.RGB(rgb[0], rgb[1], rgb[2]))
		p.stroke()
	}
	dc.Pop()

	dc.SetLineWidth(2 * math.Max(f.scale, 1))
	p.color(scopeRing)
	f.circle(dc, center, center, radius-1)
	p.stroke()

	for i := 0; i < 180; i++ {
		hue := float64(i) / 180 * 2 * math.Pi
		rgb := hueRingColor(profile, hue)
		p.color(gg.RGBA2(rgb[0], rgb[1], rgb[2], 0.7))
		f.circle(dc, center+(radius-1)*math.Cos(hue), Bins-1-(center+(radius-1)*math.Sin(hue)), 1)
		p.fill()
	}

	surf, err := p.surface()
	if err != nil {
		return nil, err
	}

	disc := gg.NewContext(w, h)
	defer disc.Close()
	f.circle(disc, center, center, radius)
	disc.SetRGB(1, 1, 1)
	if err := disc.Fill(); err != nil {
		return nil, fmt.Errorf("scope: draw: %w", err)
	}
	AddInto(surf, scaleOpaque(raster, f.rect()), 1, snapshot(disc))

	overlay := gg.NewContext(w, h)
	defer overlay.Close()
	op := &pen{dc: overlay}
	overlay.SetLineWidth(math.Max(f.scale, 1))
	f.circle(overlay, center, center, radius)
	overlay.Clip()
	for i, uv := range skin.Vertices() {
		x, y := f.luvPoint(uv[0], uv[1], zoom)
		if i == 0 {
			overlay.MoveTo(x, y)
		} else {
			overlay.LineTo(x, y)
		}
	}
	overlay.ClosePath()
	op.color(scopeDark)
	op.stroke()
	outline, err := op.surface()
	if err != nil {
		return nil, err
	}
	draw.Draw(surf, surf.Rect, outline, image.Point{}, draw.Over)
	return surf, nil
}

// hueRingColor returns the display colour of hue h (radians) at L* = 50,
// C* = 110, normalised to its largest channel.
func hueRingColor(profile *colorspace.Profile, h float64) mathutil.Vec3 {
	luv := colorspace.LchToLuv(mathutil.Vec3{50, 110, h})
	xyz := colorspace.XyYToXYZ(colorspace.LuvToxyY(luv))
	return peakNormalize(profile.XYZToRGB(xyz).ClampMin(0))
}
