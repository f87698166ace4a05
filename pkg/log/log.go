// Package log wraps log/slog with a Trace level, functional options and a
// zero value that discards everything.
package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"time"
)

// Logger is a structured logger. The zero Logger discards all messages.
type Logger struct {
	*slog.Logger
	config
}

// Make creates a Logger writing to w. A nil w discards output.
func Make(w io.Writer, opts ...Option) Logger {
	cfg := makeConfig(w, opts...)
	return Logger{Logger: slog.New(cfg.handler()), config: cfg}
}

// Discard returns a Logger that drops every message.
func Discard() Logger {
	return Make(io.Discard)
}

// Wrap returns a copy of l with opts applied on top of its configuration.
func (l Logger) Wrap(opts ...Option) Logger {
	cfg := apply(l.config, opts...)
	if cfg.output == nil {
		cfg.output = io.Discard
	}
	return Logger{Logger: slog.New(cfg.handler()), config: cfg}
}

// With returns a Logger that adds attrs to every message.
func (l Logger) With(attrs ...slog.Attr) Logger {
	if l.Logger == nil {
		return l
	}
	return Logger{Logger: slog.New(l.Handler().WithAttrs(attrs)), config: l.config}
}

// Level returns the minimum level.
func (l Logger) Level() Level {
	if l.Logger == nil {
		return DefaultLevel
	}
	return l.level
}

// Enabled reports whether messages at level would be written.
func (l Logger) Enabled(ctx context.Context, level Level) bool {
	return l.Logger != nil && l.Logger.Enabled(ctx, slog.Level(level))
}

// TraceContext logs at Trace level.
func (l Logger) TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelTrace, msg, attrs...)
}

// DebugContext logs at Debug level.
func (l Logger) DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelDebug, msg, attrs...)
}

// InfoContext logs at Info level.
func (l Logger) InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelInfo, msg, attrs...)
}

// WarnContext logs at Warn level.
func (l Logger) WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelWarn, msg, attrs...)
}

// ErrorContext logs at Error level.
func (l Logger) ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.logContext(ctx, LevelError, msg, attrs...)
}

func (l Logger) logContext(ctx context.Context, level Level, msg string, attrs ...slog.Attr) {
	if l.Logger == nil || !l.Logger.Enabled(ctx, slog.Level(level)) {
		return
	}
	var pcs [1]uintptr
	// runtime.Callers, logContext, the *Context method.
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), slog.Level(level), msg, pcs[0])
	r.AddAttrs(attrs...)
	_ = l.Handler().Handle(ctx, r)
}
