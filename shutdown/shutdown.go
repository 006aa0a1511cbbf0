package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
)

var exit = os.Exit

// Context returns a context that is cancelled on the first interrupt. A
// second interrupt while cleanup runs exits the process with status 130.
// Calling stop releases the signal handler.
func Context(parent context.Context) (ctx context.Context, stop func()) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 2)
	Notify(sigChan)

	stopped := make(chan struct{})
	var once sync.Once
	stop = func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(stopped)
			cancel()
		})
	}

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		case <-stopped:
			return
		}
		select {
		case <-sigChan:
			exit(130)
		case <-stopped:
		}
	}()
	return ctx, stop
}
