package audio

import (
	"context"
	"fmt"
	"sync"
)

// maxBufferedBlocks bounds how much audio accumulates while nobody reads,
// e.g. during a message animation. Older samples are dropped first.
const maxBufferedBlocks = 64

// Block is one fixed-size run of interleaved frames.
type Block struct {
	Channels int
	Samples  []float32
}

func (b Block) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Samples) / b.Channels
}

// Channel extracts one channel of the block.
func (b Block) Channel(ch int) []float32 {
	if b.Channels <= 0 || ch < 0 || ch >= b.Channels {
		return nil
	}
	out := make([]float32, 0, b.Frames())
	for i := ch; i < len(b.Samples); i += b.Channels {
		out = append(out, b.Samples[i])
	}
	return out
}

// Peak returns the largest absolute sample value.
func (b Block) Peak() float64 {
	var peak float64
	for _, s := range b.Samples {
		v := float64(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// BlockSource turns a callback-driven capture into blocking, block-sized
// reads. It owns the capture and closes it on Close.
type BlockSource struct {
	capture  CaptureDevice
	frames   int
	channels int

	mu    sync.Mutex
	buf   []float32
	ready chan struct{}

	done      chan struct{}
	closeOnce sync.Once
}

func NewBlockSource(capture CaptureDevice, frames int) (*BlockSource, error) {
	s := &BlockSource{
		capture:  capture,
		frames:   max(1, frames),
		channels: max(1, capture.Channels()),
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	capture.SetCallback(s.push)
	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		capture.Close()
		return nil, fmt.Errorf("start capture: %w", err)
	}
	return s, nil
}

// OpenBlockSource opens a capture on device and wraps it.
func OpenBlockSource(ctx Context, device *DeviceInfo, config CaptureConfig, frames int) (*BlockSource, error) {
	capture, err := ctx.NewCapture(device, config)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	return NewBlockSource(capture, frames)
}

func (s *BlockSource) push(samples []float32) {
	s.mu.Lock()
	s.buf = append(s.buf, samples...)
	limit := maxBufferedBlocks * s.frames * s.channels
	if over := len(s.buf) - limit; over > 0 {
		over += (s.channels - over%s.channels) % s.channels
		s.buf = append(s.buf[:0], s.buf[over:]...)
	}
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}

// Read blocks until one full block is available, ctx is done or the
// source is closed.
func (s *BlockSource) Read(ctx context.Context) (Block, error) {
	need := s.frames * s.channels
	for {
		s.mu.Lock()
		if len(s.buf) >= need {
			out := make([]float32, need)
			copy(out, s.buf)
			s.buf = append(s.buf[:0], s.buf[need:]...)
			s.mu.Unlock()
			return Block{Channels: s.channels, Samples: out}, nil
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return Block{}, ctx.Err()
		case <-s.done:
			return Block{}, ErrClosed
		case <-s.ready:
		}
	}
}

// Flush discards everything captured but not yet read.
func (s *BlockSource) Flush() {
	s.mu.Lock()
	s.buf = s.buf[:0]
	s.mu.Unlock()
}

func (s *BlockSource) Buffered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buf) / s.channels
}

func (s *BlockSource) DeviceName() string { return s.capture.DeviceName() }

func (s *BlockSource) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.capture.Stop()
		s.capture.ClearCallback()
		s.capture.Close()
		s.Flush()
	})
}
