package scope

import (
	"errors"
	"math"
	"testing"

	"ansel-scopes/internal/colorspace"
	"ansel-scopes/internal/pipeline"
)

func TestSummarize(t *testing.T) {
	bb := frame(4, 2, [3]float32{1, 0, 0.5}, [3]float32{1, 0.5, 0})
	s, err := Summarize(bb, nil, DefaultSkinTones, 2)
	if err != nil {
		t.Fatal(err)
	}
	if s.Pixels != 8 {
		t.Errorf("pixels %d", s.Pixels)
	}
	if s.Mean[0] != 1 || s.Mean[1] != 0.25 || s.Mean[2] != 0.25 {
		t.Errorf("means %v", s.Mean)
	}
	if s.Clipped != [3]int{8, 0, 0} || s.Crushed != [3]int{0, 4, 4} {
		t.Errorf("clipped %v crushed %v", s.Clipped, s.Crushed)
	}
	if s.Peak[0] != 255 || s.PeakCount[0] != 8 || s.PeakCount[1] != 4 {
		t.Errorf("peaks %v %v", s.Peak, s.PeakCount)
	}
	if s.Skin != 0 || s.MeanChroma != 0 {
		t.Errorf("chroma stats without a profile: %+v", s)
	}
}

func TestSummarizeSkin(t *testing.T) {
	grey := frame(3, 3, [3]float32{0.5, 0.5, 0.5})
	all := SkinTones{MinChroma: 0, MaxChroma: 1000, MinHue: -math.Pi, MaxHue: math.Pi}
	s, err := Summarize(grey, colorspace.SRGB(), all, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Skin != 9 {
		t.Errorf("whole plane region holds %d of 9 pixels", s.Skin)
	}
	if s.MeanChroma > 0.5 {
		t.Errorf("grey chroma %v", s.MeanChroma)
	}

	none := SkinTones{MinChroma: 1000, MaxChroma: 2000, MinHue: -math.Pi, MaxHue: math.Pi}
	s, err = Summarize(noise(16, 16, 3), colorspace.SRGB(), none, 4)
	if err != nil {
		t.Fatal(err)
	}
	if s.Skin != 0 {
		t.Errorf("empty region holds %d pixels", s.Skin)
	}
}

func TestSummarizeNotReady(t *testing.T) {
	bb := &pipeline.Backbuf{Hash: pipeline.HashNone}
	if _, err := Summarize(bb, nil, DefaultSkinTones, 1); !errors.Is(err, ErrNotReady) {
		t.Errorf("err %v", err)
	}
}
