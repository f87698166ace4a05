package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// Level represents the severity of a log message.
type Level slog.Level

const (
	LevelTrace Level = -8
	LevelDebug Level = Level(slog.LevelDebug)
	LevelInfo  Level = Level(slog.LevelInfo)
	LevelWarn  Level = Level(slog.LevelWarn)
	LevelError Level = Level(slog.LevelError)
)

// DefaultLevel is the default log level.
const DefaultLevel = LevelInfo

// String returns the lower-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "trace"
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return strings.ToLower(slog.Level(l).String())
}

// ParseLevel parses a level name. "trace" is recognized in addition to the
// names accepted by [slog.Level.UnmarshalText]. Unknown names yield
// [DefaultLevel].
func ParseLevel(s string) Level {
	if strings.EqualFold(strings.TrimSpace(s), "trace") {
		return LevelTrace
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return DefaultLevel
	}
	return Level(l)
}

// Format represents the output format for log messages.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// DefaultFormat is the default log message format.
const DefaultFormat = FormatText

// String returns the name of the format.
func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// ParseFormat parses "json" or "text". Anything else yields [DefaultFormat].
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return DefaultFormat
	}
}

type config struct {
	output     io.Writer
	level      Level
	format     Format
	timeLayout string
	caller     bool
}

// Option applies a configuration option to config.
type Option func(config) config

func apply(cfg config, opts ...Option) config {
	for _, opt := range opts {
		cfg = opt(cfg)
	}
	return cfg
}

func makeConfig(w io.Writer, opts ...Option) config {
	if w == nil {
		w = io.Discard
	}
	return apply(config{
		output:     w,
		level:      DefaultLevel,
		format:     DefaultFormat,
		timeLayout: time.RFC3339,
	}, opts...)
}

func (c config) handler() slog.Handler {
	if c.output == io.Discard {
		return slog.DiscardHandler
	}
	opts := &slog.HandlerOptions{
		AddSource: c.caller,
		Level:     slog.Level(c.level),
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.TimeKey:
				if c.timeLayout == "" {
					return slog.Attr{}
				}
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(c.timeLayout))
				}
			case slog.LevelKey:
				// Show TRACE instead of DEBUG-4.
				if level, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(strings.ToUpper(Level(level).String()))
				}
			}
			return a
		},
	}
	if c.format == FormatJSON {
		return slog.NewJSONHandler(c.output, opts)
	}
	return slog.NewTextHandler(c.output, opts)
}

// WithLevel sets the minimum log level.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level
		return c
	}
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format
		return c
	}
}

// WithTimeLayout sets the timestamp layout. An empty layout drops
// timestamps, which keeps test output stable.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.timeLayout = layout
		return c
	}
}

// WithCaller controls whether source locations are included.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable
		return c
	}
}
