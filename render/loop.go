// Package render runs the visualizer: one audio block in, one glyph line out,
// with transient messages and device swaps spliced in between blocks.
package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"soundviz/anim"
	"soundviz/audio"
	"soundviz/glyph"
	"soundviz/log"
	"soundviz/mailbox"
	"soundviz/sink"
)

// Source is the audio stream the loop owns.
type Source interface {
	Read(ctx context.Context) (audio.Block, error)
	Flush()
	Close()
	DeviceName() string
}

type Opener func(dev *audio.DeviceInfo) (Source, error)

type Selector interface {
	Select(ctx context.Context) (*audio.DeviceInfo, error)
}

// Outcome is what a single cycle did.
type Outcome int

const (
	Rendered Outcome = iota // one audio block became one frame
	Animated                // a reveal frame was shown; throttle before the next cycle
	Flushed                 // an animation ended; stale audio was discarded
	Swapped                 // a device scan ran
)

func (o Outcome) String() string {
	switch o {
	case Rendered:
		return "rendered"
	case Animated:
		return "animated"
	case Flushed:
		return "flushed"
	case Swapped:
		return "swapped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

var ErrNoSource = errors.New("no audio source")

// ScanMessage is shown while a device scan is pending.
const ScanMessage = "󱉶 Device"

type Loop struct {
	Config   Config
	Control  *anim.Controller
	Mailbox  mailbox.Mailbox
	Sink     sink.Sink
	Selector Selector
	Open     Opener

	// Device and Source are the active capture; Run takes ownership of
	// Source and closes it on return.
	Device *audio.DeviceInfo
	Source Source

	// AutoScan, when positive, requests a device scan after the active
	// device has been silent for that long.
	AutoScan time.Duration

	// Now and Sleep default to the wall clock.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	theme   glyph.Theme
	frames  int
	silence *silenceMonitor
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Frames reports how many frames have been emitted.
func (l *Loop) Frames() int { return l.frames }

// Run renders until ctx is cancelled, which is a clean exit. Any other
// failure, including a panic inside a cycle, ends the loop with an error.
// The source is closed on every path.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.Config.Validate(); err != nil {
		return err
	}
	theme, err := glyph.Lookup(l.Config.Theme)
	if err != nil {
		return err
	}
	l.theme = theme
	if l.Now == nil {
		l.Now = time.Now
	}
	if l.Sleep == nil {
		l.Sleep = sleepCtx
	}
	if l.AutoScan > 0 {
		blockDur := time.Second * audio.BlockFrames / audio.SampleRate
		l.silence = newSilenceMonitor(l.AutoScan, blockDur)
	}

	defer func() {
		if l.Source != nil {
			l.Source.Close()
			l.Source = nil
		}
		_ = l.Sink.Clear()
		log.SessionEnd(l.frames)
	}()

	if l.Source == nil {
		return ErrNoSource
	}
	l.announceDevice()

	for {
		if ctx.Err() != nil {
			return nil
		}
		outcome, err := l.cycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		switch outcome {
		case Animated:
			if err := l.Sleep(ctx, anim.Throttle); err != nil {
				return nil
			}
		case Rendered, Flushed, Swapped:
		}
	}
}

func (l *Loop) cycle(ctx context.Context) (outcome Outcome, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("render cycle panic: %v", p)
		}
	}()

	d := l.Control.Tick(l.Now())
	switch d.Kind {
	case anim.Reveal:
		return Animated, l.emit(d.Text)
	case anim.Finished:
		l.Source.Flush()
		return Flushed, nil
	}

	if l.Control.TakeRetry() {
		return Swapped, l.swap(ctx)
	}

	block, err := l.Source.Read(ctx)
	if err != nil {
		return Rendered, fmt.Errorf("reading %s: %w", l.Source.DeviceName(), err)
	}
	l.watchSilence(block)
	text := glyph.Render(l.theme, l.Config.Mode, l.Config.Gain, block.Channel(0), l.Config.Width)
	return Rendered, l.emit(text)
}

func (l *Loop) watchSilence(block audio.Block) {
	if l.silence == nil {
		return
	}
	switch l.silence.Tick(block.Peak() > silenceThreshold) {
	case SilenceWarn:
		log.Info("silent for " + l.AutoScan.String() + " on " + l.Source.DeviceName() + ", scanning")
		l.Control.Start(ScanMessage, anim.ActionScanDevice)
	case SilenceClear:
		log.Info("sound resumed on " + l.Source.DeviceName())
	}
}

func (l *Loop) emit(text string) error {
	if l.Config.Verbose {
		text += " " + l.Control.State().Snapshot().String()
	}
	l.frames++
	return l.Sink.Emit(text)
}

// swap replaces the source with whatever the selector picks now. The old
// source is released first; if nothing new can be opened the old device is
// reopened and rendering carries on.
func (l *Loop) swap(ctx context.Context) error {
	defer l.Mailbox.Set(mailbox.Action, "")
	if l.silence != nil {
		l.silence.Reset()
	}

	old := l.Device
	from := l.Source.DeviceName()
	l.Source.Close()
	l.Source = nil

	dev, err := l.Selector.Select(ctx)
	if err == nil {
		var src Source
		src, err = l.Open(dev)
		if err == nil {
			l.Device, l.Source = dev, src
			log.DeviceSwitch(from, src.DeviceName())
			l.announceDevice()
			return nil
		}
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	log.Warnf("device scan failed, keeping %s: %v", from, err)

	src, err := l.Open(old)
	if err != nil {
		return fmt.Errorf("reopening %s: %w", from, err)
	}
	l.Source = src
	return nil
}

func (l *Loop) announceDevice() {
	if d, ok := l.Sink.(sink.DeviceAware); ok {
		d.SetDevice(l.Source.DeviceName())
	}
}
