package main

import (
	"fmt"
	"image"
	"image/draw"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ansel-scopes/internal/analyzer"
	"ansel-scopes/internal/batch"
	"ansel-scopes/internal/config"
	"ansel-scopes/internal/frame"
	"ansel-scopes/internal/pipeline"
	"ansel-scopes/internal/scope"
)

var (
	viewSet    string
	viewStage  string
	viewScroll float64
	viewReset  bool
	viewOut    string
)

var viewCmd = &cobra.Command{
	Use:   "view <image>",
	Short: "Show an image in a scope widget session with persisted settings",
	Long: `Runs one darkroom session: the widget is sized, the image goes through
the preview source, and the requested view, stage, scroll and reset
changes are applied the way the widget controls would. The resulting
settings are saved to the preferences file and the surface can be written
with --out.`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	viewCmd.Flags().StringVar(&viewSet, "set-view", "", "switch to this view")
	viewCmd.Flags().StringVar(&viewStage, "set-stage", "", "switch to this stage")
	viewCmd.Flags().Float64Var(&viewScroll, "scroll", 0, "scroll units over the vectorscope (positive widens the u*v* range)")
	viewCmd.Flags().BoolVar(&viewReset, "reset", false, "reset view, stage and zoom to defaults")
	viewCmd.Flags().StringVarP(&viewOut, "out", "o", "", "write the surface to this file (.webp or .png)")
	viewCmd.Flags().StringVar(&flagProfile, "profile", "", "colour profile of the preview")
	viewCmd.Flags().IntVar(&flagWidth, "width", 0, "widget width in pixels")
	viewCmd.Flags().IntVar(&flagHeight, "height", 0, "widget height in pixels (default: width)")
	viewCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	rootCmd.AddCommand(viewCmd)
}

// widget stands in for the drawing area: repaints are counted.
type widget struct {
	draws int
}

func (w *widget) QueueDraw() {
	w.draws++
	logVerbose("repaint queued (%d)", w.draws)
}

func runView(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.Flags{})
	if err != nil {
		return err
	}
	set, err := parseSettings(cfg)
	if err != nil {
		return err
	}
	prefs, err := config.OpenStore(cfg.PrefsFile)
	if err != nil {
		return err
	}
	f, err := frame.Load(args[0], cfg.PreviewSize)
	if err != nil {
		return err
	}

	src := frame.NewSource(set.profile)
	wid := &widget{}
	ctrl := analyzer.New(src, wid, prefs, analyzer.Options{Workers: cfg.Workers})
	ctrl.Resize(cfg.Width, cfg.Height)
	ctrl.Enter(&src.Signals)
	defer ctrl.Leave()

	if err := src.Show(f); err != nil {
		return err
	}

	if viewReset {
		prefs.SetString(analyzer.KeyStage, pipeline.StageDisplay.Op())
		prefs.SetInt(analyzer.KeyView, int(scope.Histogram))
		prefs.SetFloat(analyzer.KeyZoom, scope.ZoomDefault)
		ctrl.Reset()
		ctrl.PreviewFinished()
	}
	if viewStage != "" {
		s, err := pipeline.ParseStage(viewStage)
		if err != nil {
			return err
		}
		if err := ctrl.SetStage(s); err != nil {
			return err
		}
	}
	if viewSet != "" {
		v, err := scope.ParseView(viewSet)
		if err != nil {
			return err
		}
		if err := ctrl.SetView(v); err != nil {
			return err
		}
	}
	if viewScroll != 0 && !ctrl.Scroll(viewScroll) {
		fmt.Println("Scroll ignored: zoom only applies to the vectorscope.")
	}

	p := ctrl.Params()
	fmt.Printf("View:     %s\n", p.View)
	fmt.Printf("Stage:    %s\n", p.Stage)
	if p.View == scope.Vectorscope {
		fmt.Printf("Zoom:     %g\n", p.Zoom)
	}
	fmt.Printf("Widget:   %dx%d\n", p.Width, p.Height)
	fmt.Printf("Computes: %d, repaints: %d\n", ctrl.Computes(), wid.draws)
	for _, line := range sessionNotes(ctrl) {
		fmt.Println(line)
	}

	if viewOut != "" {
		dst := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
		draw.Draw(dst, dst.Bounds(), image.Black, image.Point{}, draw.Src)
		if !ctrl.Draw(dst) {
			return fmt.Errorf("no surface to draw")
		}
		format := formatOf(viewOut)
		if err := batch.WriteImage(viewOut, dst, format); err != nil {
			return err
		}
		fmt.Printf("Surface:  %s\n", viewOut)
	}

	if prefs.Dirty() {
		if err := prefs.Save(); err != nil {
			return err
		}
		logVerbose("preferences saved to %s", prefs.Path())
	}
	return nil
}

func formatOf(path string) string {
	switch filepath.Ext(path) {
	case ".png":
		return "png"
	default:
		return "webp"
	}
}

// sessionState is the part of the controller the session summary reads.
type sessionState interface {
	Colorimetric() bool
	ViewEnabled(v scope.ViewMode) bool
	StageEnabled(s pipeline.Stage) bool
}

// sessionNotes lists the selectable views and stages, and warns when the
// stage carries no colorimetric meaning.
func sessionNotes(c sessionState) []string {
	var views, stages []string
	for v := scope.ViewMode(0); v < scope.ViewCount; v++ {
		if c.ViewEnabled(v) {
			views = append(views, v.String())
		}
	}
	for s := pipeline.Stage(0); s < pipeline.StageCount; s++ {
		if c.StageEnabled(s) {
			stages = append(stages, s.String())
		}
	}
	notes := []string{
		"Views:    " + strings.Join(views, ", "),
		"Stages:   " + strings.Join(stages, ", "),
	}
	if !c.Colorimetric() {
		notes = append(notes, "Note:     raw sensor data; waveform and parade are informational, not colorimetric.")
	}
	return notes
}
