package render

import (
	"errors"
	"fmt"

	"soundviz/glyph"
	"soundviz/sink"
)

// Config is fixed for the lifetime of a visualizer process.
type Config struct {
	Theme   string
	Width   int
	Gain    float64
	Mode    glyph.Mode
	Output  string
	Verbose bool
}

func DefaultConfig() Config {
	return Config{
		Theme:  glyph.DefaultTheme,
		Width:  16,
		Gain:   6.0,
		Mode:   glyph.ModeWave,
		Output: sink.Stdout,
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 {
		errs = append(errs, fmt.Errorf("width must be positive, got %d", c.Width))
	}
	if _, err := glyph.Lookup(c.Theme); err != nil {
		errs = append(errs, err)
	}
	if _, err := glyph.ParseMode(string(c.Mode)); err != nil {
		errs = append(errs, err)
	}
	known := false
	for _, n := range sink.Names() {
		if n == c.Output {
			known = true
		}
	}
	if !known {
		errs = append(errs, fmt.Errorf("unknown output %q", c.Output))
	}
	return errors.Join(errs...)
}
