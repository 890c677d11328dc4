package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"ansel-scopes/internal/batch"
	"ansel-scopes/internal/config"
	"ansel-scopes/internal/frame"
	"ansel-scopes/internal/scope"
)

var statsCmd = &cobra.Command{
	Use:   "stats <image>",
	Short: "Print tonal and chroma statistics of one image",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	addScopeFlags(statsCmd)
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.Flags{})
	if err != nil {
		return err
	}
	set, err := parseSettings(cfg)
	if err != nil {
		return err
	}
	f, err := frame.Load(args[0], cfg.PreviewSize)
	if err != nil {
		return err
	}
	stage := batch.EffectiveStage(set.stage)
	s, err := scope.Summarize(f.Backbuf(stage), set.profile, scope.DefaultSkinTones, cfg.Workers)
	if err != nil {
		return err
	}

	w, h := f.Size()
	p := message.NewPrinter(language.English)
	p.Println()
	p.Printf("  Image:    %s\n", f.Path)
	p.Printf("  Analysed: %d×%d (%d pixels)\n", w, h, s.Pixels)
	p.Printf("  Stage:    %s, profile %s\n", stage, set.profile.Name)
	p.Println()
	for c, name := range []string{"red", "green", "blue"} {
		p.Printf("  %-6s mean %.3f  peak bin %3d (%d px)  clipped %.2f%%  crushed %.2f%%\n",
			name, s.Mean[c], s.Peak[c], s.PeakCount[c],
			percent(s.Clipped[c], s.Pixels), percent(s.Crushed[c], s.Pixels))
	}
	p.Println()
	p.Printf("  Mean chroma: %.1f\n", s.MeanChroma)
	p.Printf("  Skin tones:  %d px (%.2f%%)\n", s.Skin, percent(s.Skin, s.Pixels))
	p.Println()
	return nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
