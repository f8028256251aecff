package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"mixed case Trace", "Trace", LevelTrace},
		{"unknown defaults to info", "verbose", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		logAtDebug bool
		logAtInfo  bool
	}{
		{"warn filters info", "warn", false, false},
		{"info filters debug", "info", false, true},
		{"debug passes debug", "debug", true, true},
		{"trace passes debug", "trace", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, &buf)

			logger.Debug("debug message")
			if got := strings.Contains(buf.String(), "debug message"); got != tt.logAtDebug {
				t.Errorf("debug visible = %v, want %v", got, tt.logAtDebug)
			}

			buf.Reset()
			logger.Info("info message")
			if got := strings.Contains(buf.String(), "info message"); got != tt.logAtInfo {
				t.Errorf("info visible = %v, want %v", got, tt.logAtInfo)
			}
		})
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", &buf)
	logger.Log(context.Background(), LevelTrace, "row drawn")
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected TRACE label, got %q", buf.String())
	}
}

func TestNewTraceLog_InfoLevel(t *testing.T) {
	dir := t.TempDir()
	tl := NewTraceLog(dir, "info")
	if tl != nil {
		t.Error("expected nil TraceLog at info level")
	}

	tl.Record("design", "d-1", nil)
	tl.Close()

	if _, err := os.Stat(filepath.Join(dir, TraceFile)); err == nil {
		t.Error("trace file should not exist at info level")
	}
}

func TestTraceLog_Record(t *testing.T) {
	dir := t.TempDir()
	tl := NewTraceLog(filepath.Join(dir, "nested"), "debug")
	if tl == nil {
		t.Fatal("expected TraceLog at debug level")
	}
	defer tl.Close()

	tl.Record("design", "d-abc", map[string]any{"rows": 30})
	tl.Record("simulate", "r-def", nil)

	data, err := os.ReadFile(filepath.Join(dir, "nested", TraceFile))
	if err != nil {
		t.Fatalf("reading trace: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}

	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("parsing event: %v", err)
	}
	if first.Kind != "design" || first.RunID != "d-abc" {
		t.Errorf("event = %+v", first)
	}
	if first.Fields["rows"] != float64(30) {
		t.Errorf("rows = %v, want 30", first.Fields["rows"])
	}
	if first.Time.IsZero() {
		t.Error("expected time to be set")
	}
}

func TestTraceLog_AfterClose(t *testing.T) {
	tl := NewTraceLog(t.TempDir(), "trace")
	tl.Close()
	tl.Close()
	tl.Record("design", "", nil)
}

func TestTraceLog_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	tl := NewTraceLog(dir, "debug")
	defer tl.Close()
	tl.Record("design", "", nil)

	info, err := os.Stat(filepath.Join(dir, TraceFile))
	if err != nil {
		t.Fatalf("stat trace: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 0600", perm)
	}
}
