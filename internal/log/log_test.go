package log

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetOutput_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, Options{Level: "warn"})
	defer Init(Options{Level: "info"})

	Info("hidden")
	Warn("shown", "joint", "left_elbow")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "joint=left_elbow") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestSetOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, Options{Level: "debug", Format: "json"})
	defer Init(Options{Level: "info"})

	With("request_id", "abc").Debug("analyzed")

	out := buf.String()
	if !strings.Contains(out, `"msg":"analyzed"`) || !strings.Contains(out, `"request_id":"abc"`) {
		t.Errorf("unexpected JSON log line: %q", out)
	}
}

func TestInit_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pose.log")
	Init(Options{Level: "info", File: path})
	defer Init(Options{Level: "info"})

	Error("written to file")
	if L() == nil {
		t.Fatal("logger not installed")
	}
}
