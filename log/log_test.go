package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetVerbose(false); SetDir("") })
	return tmp
}

func readDiag(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "diagnostics_log.txt"))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/mylog")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/mylog" {
		t.Errorf("got %q, want /tmp/mylog", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "logs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("SOUNDVIZ_LOG_PATH", "/tmp/soundviz-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/soundviz-env-log" {
		t.Errorf("got %q, want /tmp/soundviz-env-log", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("SOUNDVIZ_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "soundviz") {
		t.Errorf("expected default directory under soundviz, got %q", got)
	}
}

func TestInitCreatesFile(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(tmp, "diagnostics_log.txt")); err != nil {
		t.Errorf("diagnostics_log.txt not created: %v", err)
	}
}

func TestEventsWritten(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	Notification("󱉶 Device", "scan_device")
	DeviceSwitch("hdmi", "speakers")
	SessionEnd(42)

	out := readDiag(t, tmp)
	for _, want := range []string{"notification", "scan_device", "device_switch", "speakers", "session_end", "frames=42"} {
		if !strings.Contains(out, want) {
			t.Errorf("diagnostics missing %q, got: %q", want, out)
		}
	}
}

func TestLevelsWritten(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	Error("capture failed")
	Warn("broadcast skipped")

	out := readDiag(t, tmp)
	for _, want := range []string{"ERR", "capture failed", "WRN", "broadcast skipped"} {
		if !strings.Contains(out, want) {
			t.Errorf("diagnostics missing %q, got: %q", want, out)
		}
	}
}

func TestNoopBeforeInit(t *testing.T) {
	setupLogDir(t)
	Info("dropped")
	Errorf("dropped %d", 1)
	SessionStart("dev", "blocks", "wave", "stdout")
}

func TestVerboseWithoutFile(t *testing.T) {
	setupLogDir(t)
	SetVerbose(true)
	if !Verbose() {
		t.Fatal("expected verbose")
	}
	Warn("visible on stderr")
}

func TestCloseIdempotent(t *testing.T) {
	setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Close()
	Close() // should not panic
}
