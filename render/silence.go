package render

import "time"

const (
	silenceThreshold = 0.005
	soundMinRatio    = 0.10
	soundClearRatio  = 0.25 // higher threshold to clear (hysteresis)
)

type SilenceEvent int

const (
	SilenceNone  SilenceEvent = iota
	SilenceWarn               // the device has gone quiet
	SilenceClear              // sound resumed after a warning
)

// silenceMonitor watches a sliding window of per-block "has sound" flags.
type silenceMonitor struct {
	windowSz   int
	ticks      int
	window     []bool
	soundCount int
	warned     bool
}

func newSilenceMonitor(window, tick time.Duration) *silenceMonitor {
	n := max(1, int(window/tick))
	return &silenceMonitor{windowSz: n, window: make([]bool, n)}
}

func (m *silenceMonitor) Reset() {
	clear(m.window)
	m.ticks, m.soundCount, m.warned = 0, 0, false
}

func (m *silenceMonitor) ratio() float64 {
	n := min(m.ticks, m.windowSz)
	if n == 0 {
		return 1.0
	}
	return float64(m.soundCount) / float64(n)
}

func (m *silenceMonitor) Tick(hasSound bool) SilenceEvent {
	idx := m.ticks % m.windowSz
	if m.ticks >= m.windowSz && m.window[idx] {
		m.soundCount--
	}
	m.window[idx] = hasSound
	if hasSound {
		m.soundCount++
	}
	m.ticks++

	r := m.ratio()
	if m.ticks >= m.windowSz && r < soundMinRatio && !m.warned {
		m.warned = true
		return SilenceWarn
	}
	if m.warned && r >= soundClearRatio {
		m.warned = false
		return SilenceClear
	}
	return SilenceNone
}
