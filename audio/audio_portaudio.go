//go:build portaudio

package audio

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
)

const portaudioFramesPerBuffer = 256

type portaudioContext struct{}

func NewContext() (Context, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	return &portaudioContext{}, nil
}

func (p *portaudioContext) Devices() ([]DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio devices: %w", err)
	}
	var result []DeviceInfo
	for i, d := range devices {
		if d.MaxInputChannels < 1 {
			continue
		}
		result = append(result, DeviceInfo{
			ID:      strconv.Itoa(i),
			Name:    d.Name,
			Monitor: IsMonitor(d.Name),
		})
	}
	return result, nil
}

func (p *portaudioContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	var info *portaudio.DeviceInfo
	if device == nil {
		d, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("portaudio default input: %w", err)
		}
		info = d
	} else {
		devices, err := portaudio.Devices()
		if err != nil {
			return nil, fmt.Errorf("portaudio devices: %w", err)
		}
		idx, err := strconv.Atoi(device.ID)
		if err != nil || idx < 0 || idx >= len(devices) {
			return nil, fmt.Errorf("portaudio device %q: %w", device.ID, ErrDeviceIndex)
		}
		info = devices[idx]
	}

	channels := min(int(config.Channels), info.MaxInputChannels)
	return &portaudioCapture{
		info:     info,
		device:   device,
		config:   config,
		channels: max(1, channels),
	}, nil
}

func (p *portaudioContext) Close() {
	portaudio.Terminate()
}

type portaudioCapture struct {
	info     *portaudio.DeviceInfo
	device   *DeviceInfo
	config   CaptureConfig
	channels int
	callback atomic.Pointer[DataCallback]

	mu     sync.Mutex
	stream *portaudio.Stream
}

func (c *portaudioCapture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	params := portaudio.HighLatencyParameters(c.info, nil)
	params.Input.Channels = c.channels
	params.SampleRate = float64(c.config.SampleRate)
	params.FramesPerBuffer = portaudioFramesPerBuffer

	stream, err := portaudio.OpenStream(params, func(in []float32) {
		cb := c.callback.Load()
		if cb == nil {
			return
		}
		samples := make([]float32, len(in))
		copy(samples, in)
		(*cb)(samples)
	})
	if err != nil {
		return fmt.Errorf("portaudio open: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("portaudio start: %w", err)
	}
	c.stream = stream
	return nil
}

func (c *portaudioCapture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		c.stream.Stop()
	}
}

func (c *portaudioCapture) Close() {
	c.Stop()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		c.stream.Close()
		c.stream = nil
	}
}

func (c *portaudioCapture) Channels() int { return c.channels }

func (c *portaudioCapture) SetCallback(cb DataCallback) {
	c.callback.Store(&cb)
}

func (c *portaudioCapture) ClearCallback() {
	c.callback.Store(nil)
}

func (c *portaudioCapture) DeviceName() string {
	if c.device != nil {
		return c.device.Name
	}
	return c.info.Name
}
