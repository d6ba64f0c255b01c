// Package logging builds the zerolog logger shared by every askai command.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Wirdan-Gohar/AI-Assistant/internal/config"
	"github.com/Wirdan-Gohar/AI-Assistant/internal/storage"
)

// DefaultFile is where logs go when the terminal is owned by the TUI.
func DefaultFile() (string, error) {
	dir, err := storage.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "askai.log"), nil
}

// ParseLevel maps a config level name to a zerolog level. Unknown names
// fall back to info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New returns a logger writing to stderr, or to cfg.File when set. The
// returned closer releases the log file and is safe to call when none is open.
func New(cfg config.LogConfig, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	if stderr == nil {
		stderr = os.Stderr
	}

	var (
		w      io.Writer
		closer io.Closer = nopCloser{}
	)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return zerolog.Nop(), closer, errors.Wrap(err, "create log directory")
		}
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		closer = lj
		w = lj
		if cfg.Format != "json" {
			w = zerolog.ConsoleWriter{Out: lj, NoColor: true, TimeFormat: time.RFC3339}
		}
	} else {
		w = stderr
		if cfg.Format != "json" {
			w = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}
		}
	}

	logger := zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
