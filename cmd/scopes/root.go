package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"ansel-scopes/internal/analyzer"
	"ansel-scopes/internal/colorspace"
	"ansel-scopes/internal/config"
	"ansel-scopes/internal/pipeline"
	"ansel-scopes/internal/scope"
)

var (
	version    = "0.1.0"
	verbose    bool
	configFile string
)

// Flags shared by the commands that draw scopes.
var (
	flagViews   []string
	flagStage   string
	flagZoom    float64
	flagProfile string
	flagWidth   int
	flagHeight  int
	flagWorkers int
)

var rootCmd = &cobra.Command{
	Use:   "scopes",
	Short: "Histogram, waveform, parade and vectorscope analysis of images",
	Long: `scopes draws the darkroom scopes of image files: a log-scaled RGB
histogram, horizontal and vertical waveforms and parades, and a CIE Luv
vectorscope with a skin tone overlay.

Settings come from --config (JSON) and are overridden by flags.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		analyzer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a JSON config file")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"scopes %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// addScopeFlags registers the flags of commands that draw scopes.
func addScopeFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&flagViews, "view", nil, "scopes to draw: "+viewList())
	cmd.Flags().StringVar(&flagStage, "stage", "", "pipeline stage: raw, output-profile or display")
	cmd.Flags().Float64Var(&flagZoom, "zoom", 0, "vectorscope zoom, u*v* half range")
	cmd.Flags().StringVar(&flagProfile, "profile", "", "colour profile of the stage")
	cmd.Flags().IntVar(&flagWidth, "width", 0, "scope width in pixels")
	cmd.Flags().IntVar(&flagHeight, "height", 0, "scope height in pixels (default: width)")
	cmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
}

// loadConfig reads --config when given and applies flag overrides.
func loadConfig(extra config.Flags) (config.Config, error) {
	var cfg config.Config
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return config.Config{}, err
		}
	}
	extra.Views = flagViews
	extra.Stage = flagStage
	extra.Zoom = flagZoom
	extra.Profile = flagProfile
	extra.Width = flagWidth
	extra.Height = flagHeight
	extra.Workers = flagWorkers
	cfg.Resolve(extra)
	return cfg, nil
}

// scopeSettings is the parsed form of the scope fields of a Config.
type scopeSettings struct {
	views   []scope.ViewMode
	stage   pipeline.Stage
	profile *colorspace.Profile
}

func parseSettings(cfg config.Config) (scopeSettings, error) {
	var s scopeSettings
	for _, name := range cfg.Views {
		v, err := scope.ParseView(name)
		if err != nil {
			return s, err
		}
		s.views = append(s.views, v)
	}
	stage, err := pipeline.ParseStage(cfg.Stage)
	if err != nil {
		return s, err
	}
	s.stage = stage
	s.profile, err = colorspace.Builtin(cfg.Profile)
	if err != nil {
		return s, fmt.Errorf("%w (have %v)", err, colorspace.BuiltinNames())
	}
	return s, nil
}

func viewList() string {
	var s string
	for v := scope.ViewMode(0); v < scope.ViewCount; v++ {
		if v > 0 {
			s += ", "
		}
		s += v.String()
	}
	return s
}

// logVerbose prints a message only when --verbose is set.
func logVerbose(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[scopes] "+format+"\n", args...)
	}
}
