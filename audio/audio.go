package audio

import (
	"errors"
	"strings"
)

const (
	SampleRate  = 44100
	Channels    = 2
	BlockFrames = 128
	ProbeFrames = 1024
)

var (
	ErrNoDevices   = errors.New("no capture devices found")
	ErrDeviceIndex = errors.New("device index out of range")
	ErrClosed      = errors.New("audio source closed")
)

// IsMonitor reports whether a device name looks like a loopback of an
// output ("Monitor of ...", "alsa_output.x.monitor").
func IsMonitor(name string) bool {
	return strings.Contains(strings.ToLower(name), "monitor")
}

// DataCallback receives interleaved float32 samples in [-1, 1].
type DataCallback func(samples []float32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{SampleRate: SampleRate, Channels: Channels}
}

type DeviceInfo struct {
	ID      string // opaque platform-specific identifier
	Name    string
	Monitor bool
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	Channels() int
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}
