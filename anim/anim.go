// Package anim holds the transient-message state shared between the
// notification receiver and the render loop, and the reveal animation
// computed from it.
package anim

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

const (
	Duration   = 2 * time.Second
	RevealRate = 15 // characters per second
	BlinkRate  = 4  // bracket toggles per second
	Throttle   = 50 * time.Millisecond
)

type Action int

const (
	ActionNone Action = iota
	ActionBareAnimate
	ActionScanDevice
)

func (a Action) String() string {
	switch a {
	case ActionBareAnimate:
		return "bare_animate"
	case ActionScanDevice:
		return "scan_device"
	default:
		return ""
	}
}

// ParseAction maps a mailbox tag to an Action. Unknown or empty tags
// fall back to ActionBareAnimate.
func ParseAction(tag string) Action {
	if strings.TrimSpace(tag) == ActionScanDevice.String() {
		return ActionScanDevice
	}
	return ActionBareAnimate
}

type Snapshot struct {
	Message   string
	Start     time.Time
	Animating bool
	Action    Action
}

func (s Snapshot) String() string {
	return fmt.Sprintf("{message:%q animating:%t action:%q}", s.Message, s.Animating, s.Action)
}

// State is the single cross-cycle mutable state of a visualizer process.
// The lock is only held for field reads and writes.
type State struct {
	mu   sync.Mutex
	snap Snapshot
}

func NewState() *State {
	return &State{}
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *State) Animating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Animating
}

type DecisionKind int

const (
	Idle DecisionKind = iota
	Reveal
	Finished
)

func (k DecisionKind) String() string {
	switch k {
	case Reveal:
		return "reveal"
	case Finished:
		return "finished"
	default:
		return "idle"
	}
}

type Decision struct {
	Kind   DecisionKind
	Text   string
	Reveal int
}

// Controller drives the reveal animation over a shared State.
type Controller struct {
	state *State
	width int
	clock func() time.Time
}

func NewController(state *State, width int) *Controller {
	return &Controller{state: state, width: width, clock: time.Now}
}

// WithClock replaces the time source used by Start.
func (c *Controller) WithClock(clock func() time.Time) *Controller {
	c.clock = clock
	return c
}

func (c *Controller) State() *State { return c.state }

// Start begins a new animation. A running animation is replaced.
func (c *Controller) Start(message string, action Action) {
	now := c.clock()
	c.state.mu.Lock()
	c.state.snap = Snapshot{
		Message:   message,
		Start:     now,
		Animating: true,
		Action:    action,
	}
	c.state.mu.Unlock()
}

func (c *Controller) Tick(now time.Time) Decision {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()

	s := &c.state.snap
	if !s.Animating {
		return Decision{Kind: Idle}
	}
	elapsed := now.Sub(s.Start)
	if elapsed >= Duration {
		s.Animating = false
		s.Message = ""
		return Decision{Kind: Finished}
	}
	return Decision{
		Kind:   Reveal,
		Text:   Frame(s.Message, elapsed, c.width),
		Reveal: RevealCount(s.Message, elapsed),
	}
}

// TakeRetry reports and consumes a pending device scan. It never fires
// while an animation is running.
func (c *Controller) TakeRetry() bool {
	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	if c.state.snap.Animating || c.state.snap.Action != ActionScanDevice {
		return false
	}
	c.state.snap.Action = ActionNone
	return true
}

// ClearAction drops a pending action without acting on it.
func (c *Controller) ClearAction() {
	c.state.mu.Lock()
	c.state.snap.Action = ActionNone
	c.state.mu.Unlock()
}

func RevealCount(message string, elapsed time.Duration) int {
	n := int(elapsed.Seconds()*RevealRate) + 1
	total := len([]rune(message))
	if n > total {
		n = total
	}
	if n < 0 {
		n = 0
	}
	return n
}

func bracketed(elapsed time.Duration) bool {
	return int(elapsed.Seconds()*BlinkRate)%2 == 0
}

// Frame renders the animation text visible after elapsed.
func Frame(message string, elapsed time.Duration, width int) string {
	visible := string([]rune(message)[:RevealCount(message, elapsed)])
	text := Center(visible, width)
	if bracketed(elapsed) {
		text = Center("["+strings.TrimSpace(text)+"]", width)
	}
	return text
}

// Center pads s with spaces on both sides to width display cells. An odd
// pad puts the extra space on the left when width is odd too, and on the
// right otherwise. Text that is already wider is returned unchanged.
func Center(s string, width int) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	left := pad/2 + pad&width&1
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
