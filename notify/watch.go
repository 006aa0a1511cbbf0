package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"soundviz/log"
)

const (
	bellDir  = "sound_viz_bell"
	bellFile = "sound_viz.bell"
)

// Watch rings a bell file that listeners watch with fsnotify. It works
// wherever the IPC root is a local filesystem, including Windows.
type Watch struct {
	dir string

	mu   sync.Mutex
	last string // last payload we wrote, so our own ring is ignored
}

func NewWatch(root string) *Watch {
	return &Watch{dir: filepath.Join(root, bellDir)}
}

func (w *Watch) Path() string { return filepath.Join(w.dir, bellFile) }

func (w *Watch) Broadcast() error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("bell dir: %w", err)
	}
	payload := strconv.Itoa(os.Getpid()) + " " + strconv.FormatInt(time.Now().UnixNano(), 10)
	w.mu.Lock()
	w.last = payload
	w.mu.Unlock()
	if err := os.WriteFile(w.Path(), []byte(payload), 0644); err != nil {
		return fmt.Errorf("ring bell: %w", err)
	}
	return nil
}

func (w *Watch) read() string {
	data, err := os.ReadFile(w.Path())
	if err != nil {
		return ""
	}
	return string(data)
}

func (w *Watch) own(payload string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last != "" && payload == w.last
}

func (w *Watch) Listen(ctx context.Context, fn func()) (<-chan struct{}, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, fmt.Errorf("bell dir: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", w.dir, err)
	}

	// A single rewrite can surface as several events; each payload
	// rings once.
	seen := w.read()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(ev.Name) != bellFile || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				payload := w.read()
				if payload == "" || payload == seen || w.own(payload) {
					continue
				}
				seen = payload
				fn()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf("bell watcher: %v", err)
			}
		}
	}()
	return done, nil
}
