package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// RunLogger logs one CLI or server run to stderr and, when a directory is
// configured, to a timestamped file under <dir>/<name>/.
type RunLogger struct {
	file   *os.File
	Logger *log.Logger
	Path   string
}

// NewRunLogger creates a logger at the given level ("debug", "info", "warn", "error").
// An empty dir disables the log file.
func NewRunLogger(out io.Writer, dir, name, level string) (*RunLogger, error) {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	rl := &RunLogger{}
	w := out
	if dir != "" {
		sanitized := unsafeNameChars.ReplaceAllString(strings.ToLower(name), "_")
		if sanitized == "" {
			sanitized = "run"
		}

		runDir := filepath.Join(dir, sanitized)
		if err := os.MkdirAll(runDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		timestamp := time.Now().Format("2006-01-02_15-04-05")
		rl.Path = filepath.Join(runDir, fmt.Sprintf("%s_%s.log", sanitized, timestamp))

		file, err := os.Create(rl.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		rl.file = file
		w = io.MultiWriter(out, file)
	}

	rl.Logger = log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return rl, nil
}

func (rl *RunLogger) LogInfo(format string, v ...interface{}) {
	rl.Logger.Info(fmt.Sprintf(format, v...))
}

func (rl *RunLogger) LogError(format string, v ...interface{}) {
	rl.Logger.Error(fmt.Sprintf(format, v...))
}

func (rl *RunLogger) LogDebug(format string, v ...interface{}) {
	rl.Logger.Debug(fmt.Sprintf(format, v...))
}

func (rl *RunLogger) Close() error {
	if rl.file == nil {
		return nil
	}
	return rl.file.Close()
}
