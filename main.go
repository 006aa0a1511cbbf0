package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"soundviz/anim"
	"soundviz/audio"
	"soundviz/doctor"
	"soundviz/glyph"
	"soundviz/log"
	"soundviz/mailbox"
	"soundviz/notify"
	"soundviz/player"
	"soundviz/registry"
	"soundviz/render"
	"soundviz/shutdown"
	"soundviz/sink"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	defaults := render.DefaultConfig()

	listFlag := flag.Bool("l", false, "List capture devices and exit")
	deviceFlag := flag.Int("d", -1, "Capture device index (see -l); default auto-detects a monitor with sound")
	pickFlag := flag.Bool("pick", false, "Choose the capture device interactively")
	themeFlag := flag.String("t", defaults.Theme, "Theme: "+fmt.Sprint(glyph.Names()))
	widthFlag := flag.Int("w", defaults.Width, "Width of the visualization in characters")
	gainFlag := flag.Float64("g", defaults.Gain, "Input gain factor")
	modeFlag := flag.String("m", string(defaults.Mode), "Mode: wave or abs")
	verboseFlag := flag.Bool("v", false, "Verbose: append state to each frame and print errors")
	outputFlag := flag.String("o", defaults.Output, "Output: stdout, waybar or tui")
	playerFlag := flag.String("p", "", "Control the active player: play-pause, next or previous")
	scanFlag := flag.Bool("sd", false, "Ask running visualizers to rescan for an active device")
	switchFlag := flag.Bool("sp", false, "Switch to the next media player")
	setPlayerFlag := flag.String("lp", "", "Set the active media player by name")
	iconFlag := flag.Bool("ip", false, "Print the active player's icon every 0.5s")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	autoScanFlag := flag.Duration("autoscan", 0, "Rescan for an active device after this much silence (e.g. 30s); 0 disables")
	notifyFlag := flag.String("notify", "auto", "Notification channel: auto, signal, watch or both")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("soundviz %s\n", version)
		return 0
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		return 1
	}
	log.SetDir(logPath)
	log.SetVerbose(*verboseFlag)
	if err := log.Init(); err != nil && *verboseFlag {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}
	defer log.Close()

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	root := mailbox.Dir()
	mb := mailbox.NewFiles(root)
	ch, err := notify.Open(*notifyFlag, root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	players := player.New(mb)
	ctl := &controller{mb: mb, ch: ch, players: players}
	bg := context.Background()

	switch {
	case *playerFlag != "":
		ctl.control(bg, *playerFlag)
		return 0
	case *scanFlag:
		ctl.scanDevice()
		return 0
	case *switchFlag:
		ctl.switchPlayer(bg)
		return 0
	case *setPlayerFlag != "":
		players.SetActive(*setPlayerFlag)
		return 0
	case *doctorFlag:
		return doctor.Run(bg, doctor.DefaultEnv(root))
	case *listFlag:
		return listDevices()
	}

	cfg := render.Config{
		Theme:   *themeFlag,
		Width:   *widthFlag,
		Gain:    *gainFlag,
		Mode:    glyph.Mode(*modeFlag),
		Output:  *outputFlag,
		Verbose: *verboseFlag,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	ctx, stop := shutdown.Context(bg)
	defer stop()

	out, closeOut, err := openSink(cfg.Output, stop)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	defer closeOut()

	if *iconFlag {
		return runIcon(ctx, stop, mb, ch, out)
	}
	autoScan := *autoScanFlag
	if *deviceFlag >= 0 || *pickFlag {
		autoScan = 0
	}
	return runVisualizer(ctx, stop, cfg, mb, ch, out, *deviceFlag, *pickFlag, autoScan)
}

func listDevices() int {
	actx, err := audio.NewContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing audio: %v\n", err)
		return 1
	}
	defer actx.Close()
	devices, err := actx.Devices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing devices: %v\n", err)
		return 1
	}
	fmt.Print(audio.List(devices))
	return 0
}

func openSink(name string, cancel func()) (sink.Sink, func(), error) {
	if name == sink.TUI {
		t := sink.NewTUI(cancel)
		t.Start()
		return t, func() {
			if err := t.Close(); err != nil {
				log.Warnf("tui: %v", err)
			}
		}, nil
	}
	s, err := sink.Open(name, os.Stdout)
	return s, func() {}, err
}

// listen subscribes before registering: a signal that arrives before the
// handler is installed would kill the process.
func listen(ctx context.Context, stop func(), ch notify.Channel, root string, fn func()) (func(), error) {
	done, err := ch.Listen(ctx, fn)
	if err != nil {
		return nil, err
	}
	entry, err := registry.New(root).Register()
	if err != nil {
		log.Warnf("registry: %v", err)
	}
	return func() {
		entry.Remove()
		stop()
		<-done
	}, nil
}

func runIcon(ctx context.Context, stop func(), mb mailbox.Mailbox, ch notify.Channel, out sink.Sink) int {
	wake := make(chan struct{}, 1)
	cleanup, err := listen(ctx, stop, ch, mailbox.Dir(), func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	if err := player.WatchIcon(ctx, mb, out.Emit, player.IconInterval, wake); err != nil {
		log.Errorf("icon: %v", err)
		return 1
	}
	return 0
}

func runVisualizer(ctx context.Context, stop func(), cfg render.Config, mb mailbox.Mailbox, ch notify.Channel, out sink.Sink, index int, pick bool, autoScan time.Duration) int {
	state := anim.NewState()
	ctrl := anim.NewController(state, cfg.Width)
	receiver := notify.NewReceiver(mb, ctrl)

	cleanup, err := listen(ctx, stop, ch, mailbox.Dir(), receiver.Handle)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer cleanup()

	fail := func(format string, args ...any) int {
		log.Errorf(format, args...)
		if cfg.Verbose {
			fmt.Fprintf(os.Stderr, "\nError: "+format+"\n", args...)
		}
		return 1
	}

	actx, err := audio.NewContext()
	if err != nil {
		return fail("initializing audio: %v", err)
	}
	defer actx.Close()

	if pick {
		index, err = audio.PickInteractive(actx)
		if err != nil {
			return fail("device picker: %v", err)
		}
	}

	selector := &audio.Selector{
		Context: actx,
		Config:  audio.DefaultCaptureConfig(),
		Index:   index,
		Progress: func(frame string) {
			if frame == "" {
				_ = out.Clear()
				return
			}
			_ = out.Emit(anim.Center(frame, cfg.Width))
		},
	}
	open := func(dev *audio.DeviceInfo) (render.Source, error) {
		src, err := audio.OpenBlockSource(actx, dev, audio.DefaultCaptureConfig(), audio.BlockFrames)
		if err != nil {
			return nil, err
		}
		return src, nil
	}

	dev, err := selector.Select(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		return fail("selecting device: %v", err)
	}
	src, err := open(dev)
	if err != nil {
		return fail("opening %s: %v", dev.Name, err)
	}

	log.SessionStart(dev.Name, cfg.Theme, string(cfg.Mode), cfg.Output)
	loop := &render.Loop{
		Config:   cfg,
		Control:  ctrl,
		Mailbox:  mb,
		Sink:     out,
		Selector: selector,
		Open:     open,
		Device:   dev,
		Source:   src,
		AutoScan: autoScan,
	}
	if err := loop.Run(ctx); err != nil {
		return fail("%v", err)
	}
	return 0
}
