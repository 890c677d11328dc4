package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config holds the render settings of the command line tools.
type Config struct {
	// Paths
	OutputDir string `json:"output_dir"`
	PrefsFile string `json:"prefs_file"`

	// Scope settings
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Views   []string `json:"views"`
	Stage   string   `json:"stage"`
	Zoom    float64  `json:"zoom"`
	Profile string   `json:"profile"`

	// Frame and output settings
	PreviewSize int    `json:"preview_size"`
	Format      string `json:"format"`
	Workers     int    `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if len(flags.Views) > 0 {
		c.Views = flags.Views
	}
	if flags.Stage != "" {
		c.Stage = flags.Stage
	}
	if flags.Zoom > 0 {
		c.Zoom = flags.Zoom
	}
	if flags.Profile != "" {
		c.Profile = flags.Profile
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.OutputDir == "" {
		c.OutputDir = "scopes"
	}
	if c.PrefsFile == "" {
		c.PrefsFile = defaultPrefsFile()
	}

	// Defaults for render settings
	if c.Width <= 0 {
		c.Width = 512
	}
	if c.Height <= 0 {
		c.Height = c.Width
	}
	if len(c.Views) == 0 {
		c.Views = []string{"histogram"}
	}
	if c.Stage == "" {
		c.Stage = "display"
	}
	if c.Zoom <= 0 {
		c.Zoom = 128
	}
	if c.Profile == "" {
		c.Profile = "srgb"
	}
	if c.PreviewSize <= 0 {
		c.PreviewSize = 1024
	}
	if c.Format == "" {
		c.Format = "webp"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir string
	Width     int
	Height    int
	Views     []string
	Stage     string
	Zoom      float64
	Profile   string
	Format    string
	Workers   int
}

func defaultPrefsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return "scopes-prefs.json"
	}
	return filepath.Join(dir, "ansel-scopes", "prefs.json")
}
