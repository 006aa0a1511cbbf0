//go:build !windows

package notify

import (
	"context"
	"os"
	"os/signal"
	"strconv"

	"golang.org/x/sys/unix"

	"soundviz/log"
	"soundviz/registry"
)

const signalsSupported = true

// Signal delivers SIGUSR1 to every process in the registry.
type Signal struct {
	reg *registry.Registry
}

func NewSignal(root string) *Signal {
	return &Signal{reg: registry.New(root)}
}

func (s *Signal) Registry() *registry.Registry { return s.reg }

func (s *Signal) Broadcast() error {
	n := s.reg.Broadcast(unix.SIGUSR1)
	log.Info("sigusr1 sent to " + strconv.Itoa(n) + " visualizers")
	return nil
}

func (s *Signal) Listen(ctx context.Context, fn func()) (<-chan struct{}, error) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, unix.SIGUSR1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer signal.Stop(sigCh)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sigCh:
				fn()
			}
		}
	}()
	return done, nil
}
