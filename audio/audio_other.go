//go:build !linux && !portaudio

package audio

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) Devices() ([]DeviceInfo, error) {
	devices, err := m.ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("malgo devices: %w", err)
	}
	var result []DeviceInfo
	for _, d := range devices {
		result = append(result, DeviceInfo{
			ID:      hex.EncodeToString(d.ID[:]),
			Name:    d.Name(),
			Monitor: IsMonitor(d.Name()),
		})
	}

	// WASAPI can record any playback device in loopback mode.
	if runtime.GOOS == "windows" {
		playback, err := m.ctx.Devices(malgo.Playback)
		if err == nil {
			for _, d := range playback {
				result = append(result, DeviceInfo{
					ID:      hex.EncodeToString(d.ID[:]),
					Name:    "Monitor of " + d.Name(),
					Monitor: true,
				})
			}
		}
	}
	return result, nil
}

func (m *malgoContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	kind := malgo.Capture
	if device != nil && device.Monitor && runtime.GOOS == "windows" {
		kind = malgo.Loopback
	}
	deviceConfig := malgo.DefaultDeviceConfig(kind)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	var devID malgo.DeviceID
	if device != nil {
		idBytes, err := hex.DecodeString(device.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid device ID: %w", err)
		}
		copy(devID[:], idBytes)
		deviceConfig.Capture.DeviceID = devID.Pointer()
	}

	c := &malgoCapture{device: device, channels: int(config.Channels)}
	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, frameCount uint32) {
			cb := c.callback.Load()
			if cb == nil {
				return
			}
			samples := make([]float32, len(data)/4)
			for i := range samples {
				samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
			}
			(*cb)(samples)
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, err
	}
	c.dev = dev
	return c, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoCapture struct {
	dev      *malgo.Device
	device   *DeviceInfo
	channels int
	callback atomic.Pointer[DataCallback]
}

func (c *malgoCapture) Start() error {
	return c.dev.Start()
}

func (c *malgoCapture) Stop() {
	c.dev.Stop()
}

func (c *malgoCapture) Close() {
	c.dev.Uninit()
}

func (c *malgoCapture) Channels() int { return c.channels }

func (c *malgoCapture) SetCallback(cb DataCallback) {
	c.callback.Store(&cb)
}

func (c *malgoCapture) ClearCallback() {
	c.callback.Store(nil)
}

func (c *malgoCapture) DeviceName() string {
	if c.device != nil {
		return c.device.Name
	}
	return "system default"
}
