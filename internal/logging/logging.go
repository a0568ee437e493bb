// Package logging opens the log file and builds the process logger. The
// terminal belongs to the UI, so nothing is ever logged to stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Logger is a slog logger whose level can change at runtime, backed by a
// file that must be closed on exit.
type Logger struct {
	*slog.Logger
	level *slog.LevelVar
	file  *os.File
}

// Open appends to the log file at path, creating parent directories.
func Open(path string, level slog.Level) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("logging: creating directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("logging: opening %s: %w", path, err)
	}
	l := New(f, level)
	l.file = f
	return l, nil
}

// New builds a text logger writing to w.
func New(w io.Writer, level slog.Level) *Logger {
	lv := &slog.LevelVar{}
	lv.Set(level)
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lv})
	return &Logger{Logger: slog.New(h), level: lv}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	lv := &slog.LevelVar{}
	return &Logger{Logger: slog.New(slog.DiscardHandler), level: lv}
}

// SetLevel changes the minimum level logged.
func (l *Logger) SetLevel(level slog.Level) { l.level.Set(level) }

// Level returns the minimum level logged.
func (l *Logger) Level() slog.Level { return l.level.Level() }

// Component returns a child logger tagged with the component name.
func (l *Logger) Component(name string) *slog.Logger {
	return l.With(slog.String("component", name))
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
