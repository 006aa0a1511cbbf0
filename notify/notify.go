// Package notify wakes running visualizers after a controller has written a
// message to the mailbox, and turns that wake-up into an animation.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"soundviz/anim"
	"soundviz/log"
	"soundviz/mailbox"
)

// Channel carries a contentless "look at the mailbox" event between
// processes.
type Channel interface {
	// Broadcast wakes every listening process except the caller.
	Broadcast() error
	// Listen arranges for fn to run on every wake-up until ctx is done.
	// The subscription is in place when Listen returns; the returned channel
	// is closed once the listener has stopped.
	Listen(ctx context.Context, fn func()) (<-chan struct{}, error)
}

// Multi fans a broadcast out to several channels and listens on all of them.
// A broadcast reaches a listener once per channel, so wake-ups arriving
// within coalesceWindow of each other are delivered once.
type Multi []Channel

var coalesceWindow = 100 * time.Millisecond

func (m Multi) Broadcast() error {
	var errs []error
	for _, c := range m {
		if err := c.Broadcast(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Listen(ctx context.Context, fn func()) (<-chan struct{}, error) {
	fn = coalesce(fn, coalesceWindow)
	ctx, cancel := context.WithCancel(ctx)
	var dones []<-chan struct{}
	for _, c := range m {
		d, err := c.Listen(ctx, fn)
		if err != nil {
			cancel()
			for _, d := range dones {
				<-d
			}
			return nil, err
		}
		dones = append(dones, d)
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		for _, d := range dones {
			<-d
		}
	}()
	return done, nil
}

func coalesce(fn func(), window time.Duration) func() {
	var (
		mu   sync.Mutex
		last time.Time
	)
	return func() {
		mu.Lock()
		now := time.Now()
		if !last.IsZero() && now.Sub(last) < window {
			mu.Unlock()
			return
		}
		last = now
		mu.Unlock()
		fn()
	}
}

// Open returns the channel for name: "signal", "watch" or "auto".
// Auto prefers signals and adds the file watch where signals are
// unavailable.
func Open(name, root string) (Channel, error) {
	switch name {
	case "signal":
		if !signalsSupported {
			return nil, fmt.Errorf("notify: signals are not supported on this platform")
		}
		return NewSignal(root), nil
	case "watch":
		return NewWatch(root), nil
	case "", "auto":
		if signalsSupported {
			return NewSignal(root), nil
		}
		return NewWatch(root), nil
	case "both":
		if signalsSupported {
			return Multi{NewSignal(root), NewWatch(root)}, nil
		}
		return NewWatch(root), nil
	default:
		return nil, fmt.Errorf("notify: unknown channel %q", name)
	}
}

// Receiver applies a mailbox message to the animation state.
type Receiver struct {
	mb   mailbox.Mailbox
	ctrl *anim.Controller
}

func NewReceiver(mb mailbox.Mailbox, ctrl *anim.Controller) *Receiver {
	return &Receiver{mb: mb, ctrl: ctrl}
}

// Handle is safe to call from any goroutine and never panics.
func (r *Receiver) Handle() {
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("notification handler panic: %v", p)
		}
	}()

	text := r.mb.Get(mailbox.Message)
	if text == "" {
		return
	}
	action := anim.ParseAction(r.mb.Get(mailbox.Action))
	r.ctrl.Start(text, action)
	log.Notification(text, action.String())
}

// Send writes a message for every visualizer and wakes them. It returns the
// broadcast error, if any; the mailbox write itself is best effort.
func Send(mb mailbox.Mailbox, ch Channel, text string, action anim.Action) error {
	mb.Set(mailbox.Message, text)
	mb.Set(mailbox.Action, action.String())
	return ch.Broadcast()
}
