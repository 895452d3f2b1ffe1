package treeview

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"time"
)

// Options tunes a view. Zero values are replaced by DefaultOptions.
type Options struct {
	MinScale          float64
	MaxScale          float64
	WheelStep         float64
	ButtonStep        float64
	ResetScaleWide    float64
	ResetScaleNarrow  float64
	NarrowWidth       float64
	CompactGeneration int
	PixelRatio        float64
	Background        string
	FrameInterval     time.Duration
}

func DefaultOptions() Options {
	return Options{
		MinScale:          0.1,
		MaxScale:          3.0,
		WheelStep:         0.05,
		ButtonStep:        0.1,
		ResetScaleWide:    0.8,
		ResetScaleNarrow:  0.5,
		NarrowWidth:       768,
		CompactGeneration: 4,
		PixelRatio:        2,
		Background:        "#fdf6e3",
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinScale <= 0 {
		o.MinScale = d.MinScale
	}
	if o.MaxScale <= 0 {
		o.MaxScale = d.MaxScale
	}
	if o.WheelStep <= 0 {
		o.WheelStep = d.WheelStep
	}
	if o.ButtonStep <= 0 {
		o.ButtonStep = d.ButtonStep
	}
	if o.ResetScaleWide <= 0 {
		o.ResetScaleWide = d.ResetScaleWide
	}
	if o.ResetScaleNarrow <= 0 {
		o.ResetScaleNarrow = d.ResetScaleNarrow
	}
	if o.NarrowWidth <= 0 {
		o.NarrowWidth = d.NarrowWidth
	}
	if o.CompactGeneration <= 0 {
		o.CompactGeneration = d.CompactGeneration
	}
	if o.PixelRatio <= 0 {
		o.PixelRatio = d.PixelRatio
	}
	if o.Background == "" {
		o.Background = d.Background
	}
	return o
}

// ParseHexColor parses #rgb or #rrggbb.
func ParseHexColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
