package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var (
	diagLog  zerolog.Logger
	diagFile *os.File
	logMu    sync.Mutex
	logReady bool
	verbose  bool
	pid      int
	dir      string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: SOUNDVIZ_LOG_PATH environment variable
	envPath := os.Getenv("SOUNDVIZ_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

// SetVerbose mirrors warnings and errors to stderr.
func SetVerbose(on bool) {
	logMu.Lock()
	defer logMu.Unlock()
	verbose = on
	rebuild()
}

func Verbose() bool {
	logMu.Lock()
	defer logMu.Unlock()
	return verbose
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	f, err := os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	diagFile = f
	rebuild()
	return nil
}

// rebuild must be called with logMu held.
func rebuild() {
	pid = os.Getpid()

	var writers []io.Writer
	if diagFile != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        diagFile,
			TimeFormat: "2006-01-02 15:04:05",
			NoColor:    true,
		})
	}
	if verbose {
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "15:04:05",
			}},
			Level: zerolog.WarnLevel,
		})
	}
	if len(writers) == 0 {
		logReady = false
		return
	}
	diagLog = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Int("pid", pid).Logger()
	logReady = true
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	rebuild()
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func SessionStart(device, theme, mode, output string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("device", device).
		Str("theme", theme).
		Str("mode", mode).
		Str("output", output).
		Msg("session_start")
}

func SessionEnd(frames int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("frames", frames).
		Msg("session_end")
}

func Notification(message, action string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("message", message).
		Str("action", action).
		Msg("notification")
}

func DeviceSwitch(from, to string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("from", from).
		Str("to", to).
		Msg("device_switch")
}

// Controller records a one-shot controller invocation.
func Controller(mode, result string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("mode", mode).
		Str("result", result).
		Msg("controller")
}
