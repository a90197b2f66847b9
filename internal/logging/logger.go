// Package logging wraps log/slog with the JSON file logger shared by the TUI,
// the CLI and the reference server.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Logger is safe for concurrent use.
type Logger struct {
	logger *slog.Logger
	file   *os.File
	mu     sync.Mutex
}

// New writes JSON lines to path, or to stderr when path is empty.
// The TUI owns the terminal, so interactive runs should always pass a path.
func New(path string, level string) (*Logger, error) {
	var w io.Writer = os.Stderr
	var file *os.File

	if strings.TrimSpace(path) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		w = f
	}
	return newWithWriter(w, level, file), nil
}

// NewWriter logs to an arbitrary writer (tests, `serve` on stderr).
func NewWriter(w io.Writer, level string) *Logger {
	return newWithWriter(w, level, nil)
}

// Nop discards everything.
func Nop() *Logger {
	return newWithWriter(io.Discard, LevelError, nil)
}

func newWithWriter(w io.Writer, level string, file *os.File) *Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})
	return &Logger{logger: slog.New(h), file: file}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a child logger sharing the same output.
func (l *Logger) With(args ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{logger: l.logger.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) {
	if l != nil {
		l.logger.Debug(msg, args...)
	}
}

func (l *Logger) Info(msg string, args ...any) {
	if l != nil {
		l.logger.Info(msg, args...)
	}
}

func (l *Logger) Warn(msg string, args ...any) {
	if l != nil {
		l.logger.Warn(msg, args...)
	}
}

func (l *Logger) Error(msg string, args ...any) {
	if l != nil {
		l.logger.Error(msg, args...)
	}
}

// Slog exposes the underlying logger for libraries that take *slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return l.logger
}

// Close closes the log file if New opened one.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
