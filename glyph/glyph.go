// Package glyph maps audio samples onto ordered glyph ramps.
package glyph

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

type Mode string

const (
	ModeWave Mode = "wave"
	ModeAbs  Mode = "abs"
)

// Theme is an ordered sequence of glyphs from low to high intensity.
type Theme []rune

var themes = map[string]Theme{
	"blocks":  Theme(" ▂▃▄▅▆▇█"),
	"braille": Theme("⠀⢀⣀⣠⣤⣴⣾⣿"),
	"lines":   Theme(" _-¯‾"),
}

const DefaultTheme = "blocks"

func Lookup(name string) (Theme, error) {
	t, ok := themes[name]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q (use %s)", name, strings.Join(Names(), ", "))
	}
	return t, nil
}

// Names returns the theme names in sorted order.
func Names() []string {
	names := make([]string, 0, len(themes))
	for n := range themes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeWave, ModeAbs:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (use wave or abs)", s)
}

// Level converts a raw sample into a normalized 0..1 intensity.
func Level(mode Mode, sample, gain float64) float64 {
	v := sample * gain
	var level float64
	if mode == ModeAbs {
		level = math.Abs(v)
	} else {
		level = (v + 1) / 2
	}
	if level > 1 {
		level = 1
	}
	if level < 0 || math.IsNaN(level) {
		level = 0
	}
	return level
}

// Index returns the glyph index for sample within a theme of n glyphs.
func Index(n int, mode Mode, sample, gain float64) int {
	if n <= 1 {
		return 0
	}
	return int(Level(mode, sample, gain) * float64(n-1))
}

func Map(t Theme, mode Mode, sample, gain float64) rune {
	if len(t) == 0 {
		return ' '
	}
	return t[Index(len(t), mode, sample, gain)]
}

// Render downsamples samples with a fixed stride and maps every selected
// sample to a glyph. The result holds at most width glyphs.
func Render(t Theme, mode Mode, gain float64, samples []float32, width int) string {
	if width <= 0 || len(samples) == 0 {
		return ""
	}
	stride := max(1, len(samples)/width)

	var sb strings.Builder
	sb.Grow(width * 3)
	n := 0
	for i := 0; i < len(samples) && n < width; i += stride {
		sb.WriteRune(Map(t, mode, float64(samples[i]), gain))
		n++
	}
	return sb.String()
}
