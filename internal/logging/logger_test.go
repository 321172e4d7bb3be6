package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewWithSinkLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantDebug bool
		wantInfo  bool
	}{
		{"debug shows everything", "debug", true, true},
		{"info hides debug", "info", false, true},
		{"warn hides info", "warn", false, false},
		{"unknown level falls back to info", "chatty", false, true},
		{"empty level falls back to info", "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithSink(zapcore.AddSync(&buf), tt.level)

			log.Debugw("debug line")
			log.Infow("info line")
			_ = log.Sync()

			out := buf.String()
			if got := strings.Contains(out, "debug line"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if got := strings.Contains(out, "info line"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v\n%s", got, tt.wantInfo, out)
			}
		})
	}
}

func TestNewWithSinkFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithSink(zapcore.AddSync(&buf), "info")

	log.Warnw("fetch failed", "url", "https://example.com", "status", 503)
	_ = log.Sync()

	out := buf.String()
	for _, want := range []string{"WARN", "fetch failed", "https://example.com", "503"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestNewTruncatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heisenberg.log")
	if err := os.WriteFile(path, []byte("stale contents\n"), 0o644); err != nil {
		t.Fatalf("seed log file: %v", err)
	}

	log, err := New(path, "info")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Infow("fresh start")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(data), "stale contents") {
		t.Error("log file was not truncated")
	}
	if !strings.Contains(string(data), "fresh start") {
		t.Errorf("log file missing new record: %s", data)
	}
}

func TestNewBadPath(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "dir", "x.log"), "info")
	if err == nil {
		t.Error("expected error for unwritable path")
	}
}
