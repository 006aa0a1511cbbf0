package mailbox

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilesRoundTrip(t *testing.T) {
	mb := NewFiles(t.TempDir())
	mb.Set(Message, "  Device\n")
	if got := mb.Get(Message); got != "Device" {
		t.Errorf("got %q, want %q", got, "Device")
	}
	mb.Set(Action, "scan_device")
	if got := mb.Get(Action); got != "scan_device" {
		t.Errorf("got %q, want scan_device", got)
	}
}

func TestFilesMissingSlot(t *testing.T) {
	mb := NewFiles(t.TempDir())
	if got := mb.Get(ActivePlayer); got != "" {
		t.Errorf("missing slot should read empty, got %q", got)
	}
}

func TestFilesUnwritableDir(t *testing.T) {
	mb := NewFiles(filepath.Join(t.TempDir(), "does", "not", "exist"))
	mb.Set(Message, "lost") // must not panic
	if got := mb.Get(Message); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestFilesLayout(t *testing.T) {
	dir := t.TempDir()
	mb := NewFiles(dir)
	mb.Set(Message, "hi")
	if _, err := os.Stat(filepath.Join(dir, "sound_viz.msg")); err != nil {
		t.Fatalf("message slot file not created: %v", err)
	}
}

func TestDirEnv(t *testing.T) {
	t.Setenv("SOUNDVIZ_DIR", "/tmp/soundviz-test")
	if got := Dir(); got != "/tmp/soundviz-test" {
		t.Errorf("got %q", got)
	}
	t.Setenv("SOUNDVIZ_DIR", "")
	if got := Dir(); got != os.TempDir() {
		t.Errorf("got %q, want %q", got, os.TempDir())
	}
}

func TestMemory(t *testing.T) {
	mb := NewMemory()
	if mb.Get(Message) != "" {
		t.Fatal("expected empty slot")
	}
	mb.Set(Message, "PLAYING ")
	if got := mb.Get(Message); got != "PLAYING" {
		t.Errorf("got %q", got)
	}
}
