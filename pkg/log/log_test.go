package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/sandrolain/gojexp/pkg/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want log.Level
	}{
		{"trace", log.LevelTrace},
		{"TRACE", log.LevelTrace},
		{"debug", log.LevelDebug},
		{"warn", log.LevelWarn},
		{"error", log.LevelError},
		{"bogus", log.DefaultLevel},
	}
	for _, tt := range tests {
		if got := log.ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if log.ParseFormat(" JSON ") != log.FormatJSON {
		t.Error("expected json")
	}
	if log.ParseFormat("yaml") != log.DefaultFormat {
		t.Error("expected default format")
	}
}

func TestTraceLevelJSON(t *testing.T) {
	var buf bytes.Buffer
	l := log.Make(&buf,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatJSON),
		log.WithTimeLayout(""),
	)
	l.TraceContext(context.Background(), "compile", slog.Int("statements", 2))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if rec["level"] != "TRACE" || rec["msg"] != "compile" || rec["statements"] != float64(2) {
		t.Errorf("unexpected record %v", rec)
	}
	if _, ok := rec["time"]; ok {
		t.Error("time should be dropped")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := log.Make(&buf, log.WithLevel(log.LevelWarn))
	ctx := context.Background()
	l.InfoContext(ctx, "hidden")
	l.WarnContext(ctx, "shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if l.Enabled(ctx, log.LevelInfo) {
		t.Error("info should be disabled")
	}
}

func TestZeroLoggerDiscards(t *testing.T) {
	var l log.Logger
	l.ErrorContext(context.Background(), "nothing happens")
	if l.Level() != log.DefaultLevel {
		t.Errorf("Level() = %v", l.Level())
	}
	if log.Discard().Enabled(context.Background(), log.LevelError) {
		t.Error("discard logger should not be enabled")
	}
}

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := log.Make(&buf, log.WithTimeLayout("")).With(slog.String("component", "parser"))
	l.InfoContext(context.Background(), "ready")
	if !strings.Contains(buf.String(), "component=parser") {
		t.Errorf("missing attr in %q", buf.String())
	}
}
