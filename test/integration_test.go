//go:build integration && !windows

package test_test

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

var testBinary string

func TestMain(m *testing.M) {
	testBinary = os.Getenv("SOUNDVIZ_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "SOUNDVIZ_TEST_BIN not set; build the binary and point the variable at it")
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// env isolates the IPC root and hides playerctl.
func env(root string) []string {
	return append(os.Environ(), "SOUNDVIZ_DIR="+root, "PATH="+filepath.Join(root, "nobin"))
}

func runViz(t *testing.T, root string, args ...string) string {
	t.Helper()
	cmdArgs := append([]string{"-logpath", t.TempDir()}, args...)

	cmd := exec.Command(testBinary, cmdArgs...)
	cmd.Env = env(root)

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("soundviz exited with error: %v\noutput: %s", err, out)
	}
	return string(out)
}

func readSlot(t *testing.T, root, file string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, file))
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	return strings.TrimSpace(string(data))
}

func TestScanDevice(t *testing.T) {
	root := t.TempDir()
	runViz(t, root, "-sd")

	if got := readSlot(t, root, "sound_viz.msg"); got != "󱉶 Device" {
		t.Errorf("message = %q", got)
	}
	if got := readSlot(t, root, "sound_viz.action"); got != "scan_device" {
		t.Errorf("action = %q", got)
	}
}

func TestPlayerControlWithoutPlayerctl(t *testing.T) {
	root := t.TempDir()
	runViz(t, root, "-p", "next")

	if got := readSlot(t, root, "sound_viz.msg"); got != "ERR" {
		t.Errorf("message = %q, want ERR", got)
	}
}

func TestSwitchPlayerWraps(t *testing.T) {
	root := t.TempDir()
	runViz(t, root, "-lp", "vlc")
	runViz(t, root, "-sp")

	if got := readSlot(t, root, "sound_viz.active_player"); got != "spotify" {
		t.Errorf("active player = %q, want spotify", got)
	}
	if got := readSlot(t, root, "sound_viz.action"); got != "bare_animate" {
		t.Errorf("action = %q", got)
	}
}

func TestIconModeRegistersAndCleansUp(t *testing.T) {
	root := t.TempDir()
	cmd := exec.Command(testBinary, "-logpath", t.TempDir(), "-ip", "-o", "waybar")
	cmd.Env = env(root)
	var stdout strings.Builder
	cmd.Stdout = &stdout
	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}

	entry := filepath.Join(root, "sound_viz_pids", fmt.Sprint(cmd.Process.Pid))
	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(entry); err == nil {
			break
		}
		if time.Now().After(deadline) {
			cmd.Process.Kill()
			t.Fatal("registry entry never appeared")
		}
		time.Sleep(20 * time.Millisecond)
	}

	// A broadcast must not kill the listener.
	runViz(t, root, "-sd")

	if err := cmd.Process.Signal(syscall.SIGINT); err != nil {
		t.Fatal(err)
	}
	if err := cmd.Wait(); err != nil {
		t.Fatalf("icon mode exited with error: %v", err)
	}
	if _, err := os.Stat(entry); !os.IsNotExist(err) {
		t.Errorf("registry entry not removed: %v", err)
	}
	if !strings.Contains(stdout.String(), "\uf1bc") {
		t.Errorf("expected the spotify icon, got %q", stdout.String())
	}
}
