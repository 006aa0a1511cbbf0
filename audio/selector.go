package audio

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	probeRounds    = 3
	probeThreshold = 0.005
	probeTimeout   = time.Second
)

var probeFrames = []string{".", "o", "O", "(O)", "( )", " "}

// Selector picks the capture device to visualize: a fixed index, or the
// first monitor source that is currently carrying sound.
type Selector struct {
	Context Context
	Config  CaptureConfig
	// Index selects devices[Index]; negative means auto-detect.
	Index int
	// Progress, when set, is called with a short spinner frame for every
	// probed device and with "" once probing is over.
	Progress func(frame string)
}

func (s *Selector) progress(frame string) {
	if s.Progress != nil {
		s.Progress(frame)
	}
}

func (s *Selector) Select(ctx context.Context) (*DeviceInfo, error) {
	devices, err := s.Context.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	if len(devices) == 0 {
		return nil, ErrNoDevices
	}

	if s.Index >= 0 {
		if s.Index >= len(devices) {
			return nil, fmt.Errorf("%w: %d (have %d)", ErrDeviceIndex, s.Index, len(devices))
		}
		return &devices[s.Index], nil
	}

	var monitors []DeviceInfo
	for _, d := range devices {
		if d.Monitor {
			monitors = append(monitors, d)
		}
	}
	if len(monitors) == 0 {
		return &devices[0], nil
	}

	defer s.progress("")
	for i := 0; i < probeRounds*len(monitors); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dev := monitors[i%len(monitors)]
		s.progress(probeFrames[i%len(probeFrames)])
		if s.active(ctx, &dev) {
			return &dev, nil
		}
	}
	return &monitors[0], nil
}

func (s *Selector) active(ctx context.Context, dev *DeviceInfo) bool {
	src, err := OpenBlockSource(s.Context, dev, s.Config, ProbeFrames)
	if err != nil {
		return false
	}
	defer src.Close()

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	block, err := src.Read(ctx)
	if err != nil {
		return false
	}
	return block.Peak() > probeThreshold
}

// List formats the device table printed by -l.
func List(devices []DeviceInfo) string {
	var sb strings.Builder
	for i, d := range devices {
		fmt.Fprintf(&sb, "%2d : %s\n", i, d.Name)
	}
	return sb.String()
}
