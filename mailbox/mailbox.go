// Package mailbox stores short text payloads in well-known files so that
// independent processes can hand messages to each other. Every operation is
// best effort: a missing or unreadable slot reads as "".
package mailbox

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Slot string

const (
	Message      Slot = "message"
	Action       Slot = "action"
	ActivePlayer Slot = "active_player"
)

var slotFiles = map[Slot]string{
	Message:      "sound_viz.msg",
	Action:       "sound_viz.action",
	ActivePlayer: "sound_viz.active_player",
}

type Mailbox interface {
	Get(slot Slot) string
	Set(slot Slot, text string)
}

// Dir resolves the IPC root: SOUNDVIZ_DIR if set, the OS temp dir otherwise.
func Dir() string {
	if d := os.Getenv("SOUNDVIZ_DIR"); d != "" {
		return d
	}
	return os.TempDir()
}

type Files struct {
	dir string
}

func NewFiles(dir string) *Files {
	return &Files{dir: dir}
}

func (f *Files) Path(slot Slot) string {
	name, ok := slotFiles[slot]
	if !ok {
		name = "sound_viz." + string(slot)
	}
	return filepath.Join(f.dir, name)
}

func (f *Files) Get(slot Slot) string {
	data, err := os.ReadFile(f.Path(slot))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (f *Files) Set(slot Slot, text string) {
	_ = os.WriteFile(f.Path(slot), []byte(text), 0644)
}

// Memory is an in-process Mailbox.
type Memory struct {
	mu    sync.Mutex
	slots map[Slot]string
}

func NewMemory() *Memory {
	return &Memory{slots: make(map[Slot]string)}
}

func (m *Memory) Get(slot Slot) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return strings.TrimSpace(m.slots[slot])
}

func (m *Memory) Set(slot Slot, text string) {
	m.mu.Lock()
	m.slots[slot] = text
	m.mu.Unlock()
}
