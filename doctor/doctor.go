package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"soundviz/audio"
	"soundviz/registry"
)

// Env holds what the checks touch, so they can run against fakes.
type Env struct {
	NewContext func() (audio.Context, error)
	LookPath   func(file string) (string, error)
	Root       string // IPC root
	Out        io.Writer
}

func DefaultEnv(root string) Env {
	return Env{
		NewContext: audio.NewContext,
		LookPath:   exec.LookPath,
		Root:       root,
		Out:        os.Stdout,
	}
}

// Run executes the diagnostic checks and returns an exit code (0=all pass, 1=any fail).
// Missing playerctl only warns: the visualizer itself does not need it.
func Run(ctx context.Context, env Env) int {
	w := env.Out
	fmt.Fprintln(w, "soundviz doctor - system diagnostics")
	fmt.Fprintln(w, "====================================")

	allPass := true
	if !checkAudio(ctx, env) {
		allPass = false
	}
	checkPlayerctl(env)
	if !checkIPC(env) {
		allPass = false
	}

	fmt.Fprintln(w)
	if allPass {
		fmt.Fprintln(w, "All checks passed!")
		return 0
	}
	fmt.Fprintln(w, "Some checks failed. See details above.")
	return 1
}

func checkAudio(ctx context.Context, env Env) bool {
	w := env.Out
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[1/3] Audio capture")

	actx, err := env.NewContext()
	if err != nil {
		fmt.Fprintf(w, "  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer actx.Close()

	devices, err := actx.Devices()
	if err != nil {
		fmt.Fprintf(w, "  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Fprintln(w, "  FAIL: no capture devices found")
		return false
	}

	var probe *audio.DeviceInfo
	monitors := 0
	for i := range devices {
		tag := ""
		if devices[i].Monitor {
			tag = " (monitor)"
			monitors++
			if probe == nil {
				probe = &devices[i]
			}
		}
		fmt.Fprintf(w, "  %2d : %s%s\n", i, devices[i].Name, tag)
	}
	if monitors == 0 {
		fmt.Fprintln(w, "  Warning: no monitor sources; playback will not be visualized without -d")
		probe = &devices[0]
	}

	src, err := audio.OpenBlockSource(actx, probe, audio.DefaultCaptureConfig(), audio.ProbeFrames)
	if err != nil {
		fmt.Fprintf(w, "  FAIL: cannot open %s: %v\n", probe.Name, err)
		return false
	}
	defer src.Close()

	rctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	block, err := src.Read(rctx)
	if err != nil {
		fmt.Fprintf(w, "  FAIL: no audio from %s: %v\n", probe.Name, err)
		return false
	}
	fmt.Fprintf(w, "  PASS: %d devices, %d monitors, %s peak %.3f\n", len(devices), monitors, probe.Name, block.Peak())
	return true
}

func checkPlayerctl(env Env) {
	w := env.Out
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[2/3] Media player control")

	path, err := env.LookPath("playerctl")
	if err != nil {
		fmt.Fprintln(w, "  Warning: playerctl not found on PATH; -p and -sp will show ERR")
		return
	}
	fmt.Fprintf(w, "  PASS: %s\n", path)
}

func checkIPC(env Env) bool {
	w := env.Out
	fmt.Fprintln(w)
	fmt.Fprintln(w, "[3/3] Notification directory")

	probe := filepath.Join(env.Root, fmt.Sprintf(".soundviz-doctor-%d", os.Getpid()))
	err := os.WriteFile(probe, []byte("ok"), 0644)
	if err == nil {
		err = os.Remove(probe)
	}
	if err != nil {
		fmt.Fprintf(w, "  FAIL: %s is not writable: %v\n", env.Root, err)
		return false
	}

	pids := registry.New(env.Root).List()
	if len(pids) == 0 {
		fmt.Fprintf(w, "  PASS: %s writable, no running visualizers\n", env.Root)
		return true
	}
	fmt.Fprintf(w, "  PASS: %s writable, running visualizers: %v\n", env.Root, pids)
	return true
}
