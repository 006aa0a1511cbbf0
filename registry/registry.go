// Package registry keeps one small file per running visualizer so that
// controller invocations know which processes to notify.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
)

const dirName = "sound_viz_pids"

type Registry struct {
	dir string
	pid int
}

func New(root string) *Registry {
	return &Registry{dir: filepath.Join(root, dirName), pid: os.Getpid()}
}

func (r *Registry) Dir() string { return r.dir }

// Entry is this process's registration. Remove is safe to call more than once.
type Entry struct {
	path string
	once sync.Once
}

func (r *Registry) Register() (*Entry, error) {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return nil, fmt.Errorf("registry dir: %w", err)
	}
	path := filepath.Join(r.dir, strconv.Itoa(r.pid))
	if err := os.WriteFile(path, []byte(strconv.Itoa(r.pid)), 0644); err != nil {
		return nil, fmt.Errorf("registry entry: %w", err)
	}
	return &Entry{path: path}, nil
}

func (e *Entry) Remove() {
	if e == nil {
		return
	}
	e.once.Do(func() {
		_ = os.Remove(e.path)
	})
}

func (e *Entry) Path() string { return e.path }

func (r *Registry) files() []string {
	matches, err := filepath.Glob(filepath.Join(r.dir, "*"))
	if err != nil {
		return nil
	}
	return matches
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// Broadcast delivers sig to every registered process except this one and
// returns how many were signalled. Entries that cannot be read or signalled
// are treated as stale and removed.
func (r *Registry) Broadcast(sig syscall.Signal) int {
	sent := 0
	for _, f := range r.files() {
		pid, err := readPID(f)
		if err == nil && pid == r.pid {
			continue
		}
		if err == nil {
			err = sendSignal(pid, sig)
			if errors.Is(err, errors.ErrUnsupported) {
				continue
			}
		}
		if err != nil {
			_ = os.Remove(f)
			continue
		}
		sent++
	}
	return sent
}

// List returns the pids of registered processes that are still alive.
func (r *Registry) List() []int {
	var pids []int
	for _, f := range r.files() {
		pid, err := readPID(f)
		if err != nil || !alive(pid) {
			continue
		}
		pids = append(pids, pid)
	}
	return pids
}
