package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(level)
	l.SetOutput(&buf)
	l.sink.now = func() time.Time { return time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC) }
	return l, &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	l, buf := newTestLogger(LevelWarn)

	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "08:30:00.000 [WARN] shown 2") {
		t.Errorf("output = %q", out)
	}
}

func TestLogger_Named(t *testing.T) {
	l, buf := newTestLogger(LevelDebug)
	eng := l.Named("engine")

	eng.Debug("recompute")
	if !strings.Contains(buf.String(), "[DEBUG] engine: recompute") {
		t.Errorf("output = %q", buf.String())
	}

	// Named loggers share the parent's level
	l.SetLevel(LevelError)
	if eng.Enabled(LevelWarn) {
		t.Error("named logger should follow parent level")
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing")
	if l.Enabled(LevelError) {
		t.Error("Discard logger should not enable any level")
	}
	if l.Named("x").Enabled(LevelError) {
		t.Error("named Discard logger should not enable any level")
	}
}

func TestLevelString(t *testing.T) {
	if Level(42).String() != "UNKNOWN" {
		t.Errorf("Level(42).String() = %q", Level(42).String())
	}
}
