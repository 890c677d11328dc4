package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ansel-scopes/internal/batch"
	"ansel-scopes/internal/config"
	"ansel-scopes/internal/frame"
)

var (
	batchOutDir string
	batchFormat string
	batchTest   int
)

var batchCmd = &cobra.Command{
	Use:   "batch <input_dir>",
	Short: "Draw the scopes of every image under a directory",
	Long: `Scans the input directory recursively for images (jpg, png, gif, tga,
tiff, bmp, webp), draws the selected views of each one and writes
<out>/<relative path>/<view>.<format> plus a manifest.json.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	addScopeFlags(batchCmd)
	batchCmd.Flags().StringVarP(&batchOutDir, "out", "o", "", "output directory")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "output format: webp or png")
	batchCmd.Flags().IntVar(&batchTest, "test", 0, "process only the first N images")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.Flags{OutputDir: batchOutDir, Format: batchFormat})
	if err != nil {
		return err
	}
	set, err := parseSettings(cfg)
	if err != nil {
		return err
	}

	idx, err := frame.BuildIndex(args[0])
	if err != nil {
		return fmt.Errorf("scan %s: %w", args[0], err)
	}
	files := idx.Entries()
	if batchTest > 0 && batchTest < len(files) {
		files = files[:batchTest]
	}
	if len(files) == 0 {
		fmt.Println("No images to analyse.")
		return nil
	}

	fmt.Printf("Scopes %v → %s\n", cfg.Views, cfg.Format)
	fmt.Printf("Images: %d, Workers: %d\n", len(files), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")
	logVerbose("stage %s, profile %s, zoom %g, %dx%d", set.stage, set.profile.Name, cfg.Zoom, cfg.Width, cfg.Height)

	start := time.Now()
	results := batch.Run(batch.Config{
		Index:       idx,
		OutputDir:   cfg.OutputDir,
		Views:       set.views,
		Stage:       set.stage,
		Zoom:        cfg.Zoom,
		Profile:     set.profile,
		Width:       cfg.Width,
		Height:      cfg.Height,
		PreviewSize: cfg.PreviewSize,
		Format:      cfg.Format,
		Workers:     cfg.Workers,
	}, files)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", time.Since(start).Seconds())

	var failed []batch.Result
	for _, r := range results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	fmt.Printf("Rendered: %d/%d\n", len(results)-len(failed), len(results))

	if len(failed) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(failed))
		for _, r := range failed[:min(20, len(failed))] {
			fmt.Printf("  %s [%s]: %s\n", r.File, r.View, r.Error)
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d scopes failed", len(failed), len(results))
	}
	return nil
}
