// Package logging provides leveled logging and run tracing for conjoint.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A TraceLog of structured JSONL run events (.conjoint/trace.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug. At this level every
// generated row and every respondent choice is logged.
const LevelTrace = slog.LevelDebug - 4

// TraceFile is the name of the JSONL trace inside the data directory.
const TraceFile = "trace.jsonl"

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "warn", "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "warn":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything. Used by tests and by
// library callers that pass no logger.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Event is one line of the run trace.
type Event struct {
	Time   time.Time      `json:"time"`
	Kind   string         `json:"kind"`   // "design", "simulate", "export"
	RunID  string         `json:"run_id"` // store run ID, empty for unsaved runs
	Fields map[string]any `json:"fields,omitempty"`
}

// TraceLog appends run events to a JSONL file. It is safe for concurrent use.
// A nil TraceLog is valid; all methods are no-ops on a nil receiver.
type TraceLog struct {
	mu   sync.Mutex
	file *os.File
	now  func() time.Time
}

// NewTraceLog opens dir/trace.jsonl for append. At "warn" or "info" level it
// returns nil and creates nothing. It also returns nil when the file cannot
// be opened.
func NewTraceLog(dir string, level string) *TraceLog {
	if ParseLevel(level) >= slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	f, err := os.OpenFile(filepath.Join(dir, TraceFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &TraceLog{file: f, now: time.Now}
}

// Record writes one event. The caller's fields map is copied, not retained.
func (tl *TraceLog) Record(kind, runID string, fields map[string]any) {
	if tl == nil {
		return
	}

	ev := Event{Kind: kind, RunID: runID}
	if len(fields) > 0 {
		ev.Fields = make(map[string]any, len(fields))
		for k, v := range fields {
			ev.Fields[k] = v
		}
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	if tl.file == nil {
		return
	}
	ev.Time = tl.now().UTC()

	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = tl.file.Write(data)
}

// Close closes the underlying file. Safe to call on nil receiver and more
// than once.
func (tl *TraceLog) Close() {
	if tl == nil {
		return
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()

	if tl.file != nil {
		tl.file.Close()
		tl.file = nil
	}
}
