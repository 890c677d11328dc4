// Package frame loads image files as preview frames and publishes them the
// way the preview pipeline would, one Backbuf per stage.
package frame

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"ansel-scopes/internal/colorspace"
	"ansel-scopes/internal/pipeline"
)

// Frame is a decoded image scaled to preview size.
type Frame struct {
	Path  string
	Image *image.NRGBA
}

// Load decodes the image at path with the decoder of its extension and fits
// it into a previewSize square. previewSize <= 0 keeps the full size.
func Load(path string, previewSize int) (*Frame, error) {
	img, err := decode(path)
	if err != nil {
		return nil, fmt.Errorf("frame: decode %s: %w", path, err)
	}
	b := img.Bounds()
	var out *image.NRGBA
	if previewSize > 0 && (b.Dx() > previewSize || b.Dy() > previewSize) {
		out = imaging.Fit(img, previewSize, previewSize, imaging.Lanczos)
	} else {
		out = imaging.Clone(img)
	}
	return &Frame{Path: path, Image: out}, nil
}

// decode picks the decoder by extension. image.Decode cannot be used: the
// tga package registers an empty magic string that matches every file.
func decode(path string) (image.Image, error) {
	dec, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, ErrUnsupported
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dec(f)
}

// FromImage wraps an in-memory image.
func FromImage(name string, img image.Image) *Frame {
	return &Frame{Path: name, Image: imaging.Clone(img)}
}

// Name returns the file name without directory or extension.
func (f *Frame) Name() string {
	base := filepath.Base(f.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Size returns the frame dimensions.
func (f *Frame) Size() (int, int) {
	b := f.Image.Bounds()
	return b.Dx(), b.Dy()
}

// BGRA8 returns the pixels as 8-bit B, G, R, A, the layout of the display
// stage output.
func (f *Frame) BGRA8() []byte {
	w, h := f.Size()
	out := make([]byte, 4*w*h)
	src := f.Image
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+4*w]
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			out[i+0] = row[x*4+2]
			out[i+1] = row[x*4+1]
			out[i+2] = row[x*4+0]
			out[i+3] = row[x*4+3]
		}
	}
	return out
}

// Linear returns the pixels as linear-light floats, 4 per pixel, with the
// sRGB curve removed. The fourth float is zero.
func (f *Frame) Linear() []float32 {
	var lut [256]float32
	for i := range lut {
		lut[i] = float32(colorspace.SRGBToLinear(float64(i) / 255))
	}
	w, h := f.Size()
	out := make([]float32, 4*w*h)
	src := f.Image
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			out[i+0] = lut[row[x*4+0]]
			out[i+1] = lut[row[x*4+1]]
			out[i+2] = lut[row[x*4+2]]
		}
	}
	return out
}

// Encoded returns the pixels as floats in [0, 1], 4 per pixel, keeping the
// file's tone curve. The fourth float is zero.
func (f *Frame) Encoded() []float32 {
	w, h := f.Size()
	out := make([]float32, 4*w*h)
	src := f.Image
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			for c := 0; c < 3; c++ {
				out[i+c] = float32(row[x*4+c]) / 255
			}
		}
	}
	return out
}

// Backbuf builds the snapshot a pipeline would publish for stage. The
// output-profile and display stages carry the encoded values, as both come
// after the output tone curve; the raw stage is linear.
func (f *Frame) Backbuf(stage pipeline.Stage) *pipeline.Backbuf {
	w, h := f.Size()
	px := f.Encoded()
	if stage == pipeline.StageRaw {
		px = f.Linear()
	}
	return &pipeline.Backbuf{Width: w, Height: h, Pixels: px, Hash: pipeline.ContentHash(px), Stage: stage}
}
