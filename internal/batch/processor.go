package batch

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"ansel-scopes/internal/colorspace"
	"ansel-scopes/internal/frame"
	"ansel-scopes/internal/pipeline"
	"ansel-scopes/internal/scope"
)

// ErrUnknownFormat is returned for output formats other than webp and png.
var ErrUnknownFormat = errors.New("batch: unknown output format")

// Config holds all shared resources for a batch run.
type Config struct {
	Index       *frame.Index
	OutputDir   string
	Views       []scope.ViewMode
	Stage       pipeline.Stage
	Zoom        float64
	Profile     *colorspace.Profile
	Theme       *scope.Theme
	Width       int
	Height      int
	PreviewSize int
	Format      string
	Workers     int

	// Progress receives a line every couple of seconds. Nil prints to stdout.
	Progress io.Writer
}

// Result holds the outcome of rendering one view of one file.
type Result struct {
	File    string
	View    scope.ViewMode
	Image   string // output path relative to OutputDir
	Hash    uint64 // content hash of the binned frame
	Success bool
	Error   string
}

// Run renders every view of every file using a worker pool. Results are
// ordered by file, then by view.
func Run(cfg Config, files []string) []Result {
	nv := len(cfg.Views)
	total := len(files)
	results := make([]Result, total*nv)
	var processed atomic.Int64

	out := cfg.Progress
	if out == nil {
		out = os.Stdout
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Fprintf(out, "  [%d/%d] %.1f files/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	fileChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range fileChan {
				processFile(cfg, files[idx], results[idx*nv:(idx+1)*nv])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range files {
		fileChan <- i
	}
	close(fileChan)

	wg.Wait()
	close(done)

	return results
}

// EffectiveStage maps a stage a still image cannot provide to the one the
// darkroom would fall back to.
func EffectiveStage(s pipeline.Stage) pipeline.Stage {
	if s == pipeline.StageRaw {
		return pipeline.StageDisplay
	}
	return s
}

func processFile(cfg Config, rel string, results []Result) {
	for i, v := range cfg.Views {
		results[i] = Result{File: rel, View: v}
	}
	fail := func(err error) {
		for i := range results {
			results[i].Error = err.Error()
		}
	}

	f, err := frame.Load(cfg.Index.Path(rel), cfg.PreviewSize)
	if err != nil {
		fail(err)
		return
	}
	bb := f.Backbuf(EffectiveStage(cfg.Stage))

	base := strings.TrimSuffix(rel, path.Ext(rel))
	for i, v := range cfg.Views {
		r := &results[i]
		r.Hash = bb.Hash
		img, err := scope.Render(bb, cfg.Width, cfg.Height, scope.Options{
			View:    v,
			Zoom:    cfg.Zoom,
			Profile: cfg.Profile,
			Workers: 1,
			Theme:   cfg.Theme,
		})
		if err != nil {
			r.Error = err.Error()
			continue
		}
		r.Image = path.Join(base, v.String()+"."+cfg.Format)
		if err := WriteImage(filepath.Join(cfg.OutputDir, filepath.FromSlash(r.Image)), img, cfg.Format); err != nil {
			r.Error = err.Error()
			continue
		}
		r.Success = true
	}
}

// WriteImage encodes img to path in format ("webp" or "png"), creating
// parent directories.
func WriteImage(path string, img image.Image, format string) error {
	if format != "webp" && format != "png" {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes img to w in format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "webp":
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("WebP encode: %w", err)
		}
		return nil
	case "png":
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("PNG encode: %w", err)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}
