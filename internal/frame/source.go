package frame

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"ansel-scopes/internal/colorspace"
	"ansel-scopes/internal/pipeline"
)

// Source plays the preview pipeline for still images: Show publishes a frame
// on every stage it has, marks the pipeline valid and emits the
// preview-finished signal.
type Source struct {
	*pipeline.Publisher
	Signals pipeline.Signals

	profile *colorspace.Profile
	raw     bool
}

// NewSource returns a source whose colour profile is profile.
func NewSource(profile *colorspace.Profile) *Source {
	return &Source{Publisher: pipeline.NewPublisher(), profile: profile}
}

// Profile returns the output colour profile.
func (s *Source) Profile() *colorspace.Profile {
	return s.profile
}

// IsRaw reports whether the current image is a raw file. Decoded image
// files never are, so the raw stage stays empty.
func (s *Source) IsRaw() bool {
	return s.raw
}

// Show publishes f and notifies subscribers. Stages whose content did not
// change keep their snapshot.
func (s *Source) Show(f *Frame) error {
	s.SetStatus(pipeline.StatusDirty)
	w, h := f.Size()

	s.raw = false
	s.Invalidate(pipeline.StageRaw)

	encoded := f.Encoded()
	if _, err := s.Publish(pipeline.StageOutputProfile, w, h, encoded, pipeline.ContentHash(encoded)); err != nil {
		s.SetStatus(pipeline.StatusInvalid)
		return fmt.Errorf("frame: show %s: %w", f.Path, err)
	}

	bgra := f.BGRA8()
	hash := xxhash.Sum64(bgra)
	if hash == pipeline.HashNone {
		hash--
	}
	if _, err := s.PublishBGRA8(pipeline.StageDisplay, w, h, bgra, hash); err != nil {
		s.SetStatus(pipeline.StatusInvalid)
		return fmt.Errorf("frame: show %s: %w", f.Path, err)
	}

	s.SetStatus(pipeline.StatusValid)
	s.Signals.Emit()
	return nil
}
