package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"ansel-scopes/internal/batch"
	"ansel-scopes/internal/config"
	"ansel-scopes/internal/frame"
	"ansel-scopes/internal/scope"
)

var (
	renderOutDir string
	renderFormat string
	renderSize   int
)

var renderCmd = &cobra.Command{
	Use:   "render <image>",
	Short: "Draw the scopes of one image",
	Long: `Decodes the image, fits it to the preview size and writes one file per
view to the output directory as <name>-<view>.<format>.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	addScopeFlags(renderCmd)
	renderCmd.Flags().StringVarP(&renderOutDir, "out", "o", "", "output directory")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "output format: webp or png")
	renderCmd.Flags().IntVar(&renderSize, "preview-size", 0, "fit the image into this square before analysis")
	rootCmd.AddCommand(renderCmd)
}

func runRender(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.Flags{OutputDir: renderOutDir, Format: renderFormat})
	if err != nil {
		return err
	}
	if renderSize > 0 {
		cfg.PreviewSize = renderSize
	}
	set, err := parseSettings(cfg)
	if err != nil {
		return err
	}

	f, err := frame.Load(args[0], cfg.PreviewSize)
	if err != nil {
		return err
	}
	w, h := f.Size()
	stage := batch.EffectiveStage(set.stage)
	logVerbose("frame %s: %dx%d, stage %s, profile %s", f.Path, w, h, stage, set.profile.Name)
	bb := f.Backbuf(stage)

	for _, v := range set.views {
		img, err := scope.Render(bb, cfg.Width, cfg.Height, scope.Options{
			View:    v,
			Zoom:    cfg.Zoom,
			Profile: set.profile,
			Workers: cfg.Workers,
		})
		if err != nil {
			return fmt.Errorf("render %s: %w", v, err)
		}
		out := filepath.Join(cfg.OutputDir, fmt.Sprintf("%s-%s.%s", f.Name(), v, cfg.Format))
		if err := batch.WriteImage(out, img, cfg.Format); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Println(out)
	}
	return nil
}
