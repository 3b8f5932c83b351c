package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}

// slogLogger adapts a *slog.Logger to the Logger interface
type slogLogger struct {
	logger *slog.Logger
	level  slog.Level
}

// NewSlogLogger wraps l so that every Printf becomes one record at the given level.
// A nil l produces a logger that discards everything.
func NewSlogLogger(l *slog.Logger, level slog.Level) Logger {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	return &slogLogger{logger: l, level: level}
}

func (s *slogLogger) Printf(format string, args ...interface{}) {
	if !s.logger.Enabled(context.Background(), s.level) {
		return
	}
	s.logger.Log(context.Background(), s.level, strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
}

// NewDefaultLogger creates a logger writing text records to stderr at info level
func NewDefaultLogger() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)), slog.LevelInfo)
}

// NewNopLogger returns a logger that discards all output
func NewNopLogger() Logger {
	return NewSlogLogger(nil, slog.LevelInfo)
}

// nopHandler is a slog.Handler that silently discards all log records
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }
