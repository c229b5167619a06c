// Package log provides cobweb's logging surface, a thin wrapper over the
// standard library's log/slog. There is no abstraction layer on top of
// slog; callers use it directly.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
)

var defaultLogger = slog.Default()

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// SetDefault installs l as the default logger used by every LazyLogger.
func SetDefault(l *slog.Logger) {
	defaultLogger = l
	slog.SetDefault(l)
}

// Default returns the current default logger.
func Default() *slog.Logger {
	return slog.Default()
}

// New builds a text-handler logger writing to w.
func New(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewJSON builds a JSON-handler logger writing to w.
func NewJSON(w io.Writer, opts *slog.HandlerOptions) *slog.Logger {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// SetOutput redirects the default logger's output to w and resets its level
// to Info.
func SetOutput(w io.Writer) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	defaultLogger = slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(defaultLogger)
}

// SetOutputWithLevel redirects the default logger's output and level at once.
func SetOutputWithLevel(w io.Writer, level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	defaultLogger = slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(defaultLogger)
}

// SetLevel rebuilds the default logger at the given level, writing to stderr.
func SetLevel(level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	defaultLogger = slog.New(slog.NewTextHandler(os.Stderr, opts))
	slog.SetDefault(defaultLogger)
}

// LazyLogger binds a component name and re-reads slog.Default() on every
// call, so swapping the default logger's output at runtime is picked up by
// loggers that were constructed earlier.
type LazyLogger struct {
	component string
}

func (l *LazyLogger) Debug(msg string, args ...any) {
	slog.Default().With("component", l.component).Debug(msg, args...)
}

func (l *LazyLogger) Info(msg string, args ...any) {
	slog.Default().With("component", l.component).Info(msg, args...)
}

func (l *LazyLogger) Warn(msg string, args ...any) {
	slog.Default().With("component", l.component).Warn(msg, args...)
}

func (l *LazyLogger) Error(msg string, args ...any) {
	slog.Default().With("component", l.component).Error(msg, args...)
}

func (l *LazyLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	slog.Default().With("component", l.component).DebugContext(ctx, msg, args...)
}

func (l *LazyLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	slog.Default().With("component", l.component).InfoContext(ctx, msg, args...)
}

func (l *LazyLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	slog.Default().With("component", l.component).WarnContext(ctx, msg, args...)
}

func (l *LazyLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	slog.Default().With("component", l.component).ErrorContext(ctx, msg, args...)
}

// With returns a plain slog.Logger carrying this component's attributes
// plus args.
func (l *LazyLogger) With(args ...any) *slog.Logger {
	return slog.Default().With("component", l.component).With(args...)
}

// WithComponent returns a LazyLogger for component.
func WithComponent(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

// Logger returns a LazyLogger for component. It is the standard way every
// package in this module obtains its logger:
//
//	var log = log.Logger("swarm")
func Logger(component string) *LazyLogger {
	return &LazyLogger{component: component}
}

func Debug(msg string, args ...any) { slog.Default().Debug(msg, args...) }
func Info(msg string, args ...any)  { slog.Default().Info(msg, args...) }
func Warn(msg string, args ...any)  { slog.Default().Warn(msg, args...) }
func Error(msg string, args ...any) { slog.Default().Error(msg, args...) }

func DebugContext(ctx context.Context, msg string, args ...any) {
	slog.Default().DebugContext(ctx, msg, args...)
}
func InfoContext(ctx context.Context, msg string, args ...any) {
	slog.Default().InfoContext(ctx, msg, args...)
}
func WarnContext(ctx context.Context, msg string, args ...any) {
	slog.Default().WarnContext(ctx, msg, args...)
}
func ErrorContext(ctx context.Context, msg string, args ...any) {
	slog.Default().ErrorContext(ctx, msg, args...)
}
