package frame

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ftrvxmtrx/tga"

	"ansel-scopes/internal/colorspace"
	"ansel-scopes/internal/mathutil"
	"ansel-scopes/internal/pipeline"
)

func writePNG(t *testing.T, path string, w, h int, c color.NRGBA) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFitsPreview(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wide.png")
	writePNG(t, path, 400, 100, color.NRGBA{200, 100, 50, 255})

	f, err := Load(path, 200)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := f.Size(); w != 200 || h != 50 {
		t.Errorf("fitted to %dx%d, want 200x50", w, h)
	}
	if f.Name() != "wide" {
		t.Errorf("name %q", f.Name())
	}

	full, err := Load(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if w, h := full.Size(); w != 400 || h != 100 {
		t.Errorf("full size %dx%d", w, h)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.png"), 0); err == nil {
		t.Error("missing file loaded")
	}
}

func TestLoadDecodesByExtension(t *testing.T) {
	dir := t.TempDir()
	c := color.NRGBA{200, 100, 50, 255}
	writePNG(t, filepath.Join(dir, "a.png"), 6, 4, c)

	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []uint8{c.R, c.G, c.B, c.A})
	}
	tf, err := os.Create(filepath.Join(dir, "b.tga"))
	if err != nil {
		t.Fatal(err)
	}
	if err := tga.Encode(tf, img); err != nil {
		t.Fatal(err)
	}
	tf.Close()

	for _, name := range []string{"a.png", "b.tga"} {
		f, err := Load(filepath.Join(dir, name), 0)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if w, h := f.Size(); w != 6 || h != 4 {
			t.Errorf("%s: %dx%d", name, w, h)
		}
		if got := f.Image.NRGBAAt(3, 2); got != c {
			t.Errorf("%s: pixel %v, want %v", name, got, c)
		}
	}

	os.WriteFile(filepath.Join(dir, "c.xcf"), []byte("gimp"), 0o644)
	if _, err := Load(filepath.Join(dir, "c.xcf"), 0); !errors.Is(err, ErrUnsupported) {
		t.Errorf("xcf: %v", err)
	}
}

func TestStageBuffers(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	copy(img.Pix, []uint8{255, 128, 0, 255, 10, 20, 30, 40})
	f := FromImage("mem", img)

	bgra := f.BGRA8()
	if want := []byte{0, 128, 255, 255, 30, 20, 10, 40}; !slices.Equal(bgra, want) {
		t.Errorf("BGRA8 = %v, want %v", bgra, want)
	}

	display := f.Backbuf(pipeline.StageDisplay)
	if !display.Ready() || display.Stage != pipeline.StageDisplay {
		t.Fatalf("display backbuf not ready: %+v", display)
	}
	r, g, b := display.Pixel(0, 0)
	if r != 1 || math.Abs(float64(g)-128.0/255) > 1e-6 || b != 0 {
		t.Errorf("display pixel = %v %v %v", r, g, b)
	}
	if display.Pixels[3] != 0 || display.Pixels[7] != 0 {
		t.Error("fourth float not zero")
	}

	out := f.Backbuf(pipeline.StageOutputProfile)
	if !slices.Equal(out.Pixels, display.Pixels) {
		t.Error("output-profile stage differs from the encoded display values")
	}

	raw := f.Backbuf(pipeline.StageRaw)
	_, g, _ = raw.Pixel(0, 0)
	if want := colorspace.SRGBToLinear(128.0 / 255); math.Abs(float64(g)-want) > 1e-6 {
		t.Errorf("linear green %v, want %v", g, want)
	}
	if raw.Hash == display.Hash {
		t.Error("linear and encoded stages share a hash")
	}
}

func TestStagesAgreeOnChroma(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{200, 120, 60, 255})
	profile := colorspace.SRGB()
	src := NewSource(profile)
	if err := src.Show(FromImage("mem", img)); err != nil {
		t.Fatal(err)
	}

	luv := func(stage pipeline.Stage) mathutil.Vec3 {
		r, g, b := src.Backbuf(stage).Pixel(0, 0)
		return profile.RGBToLuv(mathutil.Vec3{float64(r), float64(g), float64(b)})
	}
	out, disp := luv(pipeline.StageOutputProfile), luv(pipeline.StageDisplay)
	for c := range out {
		if math.Abs(out[c]-disp[c]) > 1e-4 {
			t.Fatalf("output-profile Luv %v, display Luv %v", out, disp)
		}
	}
}

func TestSourceShow(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = uint8(i * 10)
	}
	f := FromImage("mem", img)

	src := NewSource(colorspace.SRGB())
	var finished int
	src.Signals.Connect(func() { finished++ })
	if err := src.Show(f); err != nil {
		t.Fatal(err)
	}
	if src.Status() != pipeline.StatusValid || finished != 1 {
		t.Fatalf("status %v, %d signals", src.Status(), finished)
	}
	if src.IsRaw() || src.Backbuf(pipeline.StageRaw).Ready() {
		t.Error("still image published a raw stage")
	}

	display := src.Backbuf(pipeline.StageDisplay)
	want := f.Backbuf(pipeline.StageDisplay)
	if !slices.Equal(display.Pixels, want.Pixels) {
		t.Error("published display stage differs from the frame")
	}
	out := src.Backbuf(pipeline.StageOutputProfile)
	if !slices.Equal(out.Pixels, f.Encoded()) {
		t.Error("published output stage differs from the frame")
	}

	hash := display.Hash
	if err := src.Show(f); err != nil {
		t.Fatal(err)
	}
	if src.Backbuf(pipeline.StageDisplay) != display || hash != display.Hash {
		t.Error("same frame replaced the display snapshot")
	}
}

func TestBuildIndex(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"), 2, 2, color.NRGBA{A: 255})
	writePNG(t, filepath.Join(dir, "sub", "a.PNG"), 2, 2, color.NRGBA{A: 255})
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	idx, err := BuildIndex(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"b.png", "sub/a.PNG"}; !slices.Equal(idx.Entries(), want) {
		t.Errorf("entries %v, want %v", idx.Entries(), want)
	}
	if idx.Len() != 2 {
		t.Errorf("Len %d", idx.Len())
	}
	if p := idx.Path("sub/a.PNG"); p != filepath.Join(dir, "sub", "a.PNG") {
		t.Errorf("Path %q", p)
	}
	if Supported("x.raw") || !Supported("X.JPEG") {
		t.Error("Supported mismatch")
	}
}
