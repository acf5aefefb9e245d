// Package logger provides structured slog loggers for the notifier.
//
// The server logs to a size-rotated file:
//
//	<logDir>/notifier.log
//
// One-shot CLI commands log to stderr instead.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the name of the rotating log file inside the log directory.
const LogFileName = "notifier.log"

// Rotation limits for the file logger.
const (
	maxSizeMB  = 50
	maxBackups = 5
	maxAgeDays = 28
)

// Options controls handler selection and verbosity.
type Options struct {
	Level slog.Level
	// Format is "json" (default) or "text".
	Format string
}

// NewFileLogger creates a slog.Logger that writes to <logDir>/notifier.log,
// rotating the file by size. The returned io.Closer releases the file.
// The directory is created if it does not exist.
func NewFileLogger(logDir string, opts Options) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, LogFileName),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	return New(w, opts), w, nil
}

// NewConsoleLogger creates a text logger on stderr for CLI commands.
func NewConsoleLogger(level slog.Level) *slog.Logger {
	return New(os.Stderr, Options{Level: level, Format: "text"})
}

// New builds a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	ho := &slog.HandlerOptions{Level: opts.Level}
	if opts.Format == "text" {
		return slog.New(slog.NewTextHandler(w, ho))
	}
	return slog.New(slog.NewJSONHandler(w, ho))
}
