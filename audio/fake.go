package audio

import (
	"fmt"
	"sync"
	"time"
)

const fakeChunkFrames = 64

// Signal generates the sample for frame i of a fake device.
type Signal func(i int) float32

func Silence(int) float32 { return 0 }

// Constant returns a Signal that always yields v.
func Constant(v float32) Signal {
	return func(int) float32 { return v }
}

// FakeDevice is a scripted capture device.
type FakeDevice struct {
	Info    DeviceInfo
	Signal  Signal
	FailErr error // returned from Start when set
}

// FakeContext feeds generated audio in small chunks at a steady pace.
type FakeContext struct {
	mu       sync.Mutex
	devices  []FakeDevice
	interval time.Duration
	opened   []string
	devErr   error
}

func NewFakeContext(devices ...FakeDevice) *FakeContext {
	return &FakeContext{devices: devices, interval: time.Millisecond}
}

// SetDevices replaces the device list, e.g. to simulate hotplug.
func (f *FakeContext) SetDevices(devices ...FakeDevice) {
	f.mu.Lock()
	f.devices = devices
	f.mu.Unlock()
}

// FailDevices makes Devices return err.
func (f *FakeContext) FailDevices(err error) {
	f.mu.Lock()
	f.devErr = err
	f.mu.Unlock()
}

// Opened lists the names of captures created so far.
func (f *FakeContext) Opened() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opened...)
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.devErr != nil {
		return nil, f.devErr
	}
	out := make([]DeviceInfo, len(f.devices))
	for i, d := range f.devices {
		out[i] = d.Info
	}
	return out, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.devices) == 0 {
		return nil, ErrNoDevices
	}
	dev := f.devices[0]
	if device != nil {
		found := false
		for _, d := range f.devices {
			if d.Info.ID == device.ID {
				dev, found = d, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("fake device %q: %w", device.ID, ErrDeviceIndex)
		}
	}
	f.opened = append(f.opened, dev.Info.Name)
	signal := dev.Signal
	if signal == nil {
		signal = Silence
	}
	return &FakeCapture{
		name:     dev.Info.Name,
		signal:   signal,
		channels: max(1, int(config.Channels)),
		interval: f.interval,
		startErr: dev.FailErr,
	}, nil
}

type FakeCapture struct {
	name     string
	signal   Signal
	channels int
	interval time.Duration
	startErr error

	mu       sync.Mutex
	cb       DataCallback
	stopCh   chan struct{}
	feedDone chan struct{}
	closed   bool
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return f.name }

func (f *FakeCapture) Channels() int { return f.channels }

func (f *FakeCapture) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})

	go func() {
		defer close(f.feedDone)
		frame := 0
		for {
			select {
			case <-f.stopCh:
				return
			case <-time.After(f.interval):
			}
			chunk := make([]float32, fakeChunkFrames*f.channels)
			for i := 0; i < fakeChunkFrames; i++ {
				v := f.signal(frame)
				for c := 0; c < f.channels; c++ {
					chunk[i*f.channels+c] = v
				}
				frame++
			}
			f.mu.Lock()
			cb := f.cb
			f.mu.Unlock()
			if cb != nil {
				cb(chunk)
			}
		}
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	if f.stopCh == nil {
		return
	}
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	<-f.feedDone
}

func (f *FakeCapture) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

func (f *FakeCapture) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
