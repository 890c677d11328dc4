package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestEntry represents one rendered scope in the output manifest.
type ManifestEntry struct {
	File  string `json:"file"`
	View  string `json:"view"`
	Image string `json:"image"`
	Hash  string `json:"hash"`
}

// Manifest collects the successful results.
func Manifest(results []Result) []ManifestEntry {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			File:  r.File,
			View:  r.View.String(),
			Image: r.Image,
			Hash:  fmt.Sprintf("%016x", r.Hash),
		})
	}
	return entries
}

// WriteManifest writes manifest.json to the output directory.
func WriteManifest(path string, results []Result) error {
	data, err := json.MarshalIndent(Manifest(results), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
