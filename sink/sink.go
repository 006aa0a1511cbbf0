// Package sink delivers rendered frames to where the user sees them.
package sink

import (
	"fmt"
	"io"
	"sync"
)

const (
	Stdout = "stdout"
	Waybar = "waybar"
	TUI    = "tui"
)

// Sink receives one frame per render cycle.
type Sink interface {
	Emit(text string) error
	// Clear removes the last frame on shutdown or while scanning.
	Clear() error
}

// DeviceAware sinks are told when the capture device changes.
type DeviceAware interface {
	SetDevice(name string)
}

func Names() []string { return []string{Stdout, Waybar, TUI} }

// Open builds the line-oriented sinks. The TUI sink needs a program
// lifecycle and is built with NewTUI.
func Open(name string, w io.Writer) (Sink, error) {
	switch name {
	case Stdout:
		return NewLine(w), nil
	case Waybar:
		return NewBar(w), nil
	default:
		return nil, fmt.Errorf("unknown output %q (want %s or %s)", name, Stdout, Waybar)
	}
}

// Line redraws a single terminal line in place.
type Line struct {
	mu sync.Mutex
	w  io.Writer
}

func NewLine(w io.Writer) *Line { return &Line{w: w} }

func (l *Line) Emit(text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := io.WriteString(l.w, "\r"+text)
	return err
}

func (l *Line) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := io.WriteString(l.w, "\033[2K\r")
	return err
}

// Bar prints one line per frame for status bars that read a child's stdout.
type Bar struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBar(w io.Writer) *Bar { return &Bar{w: w} }

func (b *Bar) Emit(text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.w, text+"\n")
	return err
}

func (b *Bar) Clear() error {
	return b.Emit(" ")
}
