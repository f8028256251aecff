package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nvandessel/conjoint/internal/store"
)

// auditFileName is the tool audit log inside the data directory.
const auditFileName = "audit.jsonl"

// AuditEntry represents a single audit log entry for an MCP tool invocation.
// It captures metadata about the call, never study content.
type AuditEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Tool       string            `json:"tool"`
	DurationMs int64             `json:"duration_ms"`
	Status     string            `json:"status"` // "success" or "error"
	Error      string            `json:"error,omitempty"`
	RunID      string            `json:"run_id,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// AuditLogger appends audit entries to .conjoint/audit.jsonl. It is safe for
// concurrent use. A nil AuditLogger is valid; all methods are no-ops.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewAuditLogger opens the audit log under projectRoot. If the file cannot be
// opened a warning goes to stderr and nil is returned.
func NewAuditLogger(projectRoot string) *AuditLogger {
	dir := store.DataDir(projectRoot)
	if err := os.MkdirAll(dir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot create audit log directory %s: %v\n", dir, err)
		return nil
	}

	path := filepath.Join(dir, auditFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open audit log %s: %v\n", path, err)
		return nil
	}

	return &AuditLogger{file: f}
}

// Log appends entry as one JSON line.
func (a *AuditLogger) Log(entry AuditEntry) {
	if a == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = a.file.Write(data)
}

// Close closes the log file. Safe to call on nil receiver and more than once.
func (a *AuditLogger) Close() error {
	if a == nil {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// auditParams keeps the parameters that are safe to log. Paths are recorded
// only as "(set)".
func auditParams(params map[string]any) map[string]string {
	safeValue := map[string]bool{
		"method":      true,
		"seed":        true,
		"driver":      true,
		"respondents": true,
		"design_id":   true,
		"kind":        true,
	}
	presenceOnly := map[string]bool{
		"study_file": true,
		"study":      true,
	}

	out := make(map[string]string)
	for k, v := range params {
		if v == nil {
			continue
		}
		switch {
		case safeValue[k]:
			out[k] = fmt.Sprintf("%v", v)
		case presenceOnly[k]:
			out[k] = "(set)"
		}
	}
	return out
}

// auditTool records one tool invocation.
func (s *Server) auditTool(tool string, start time.Time, runID string, err error, params map[string]any) {
	entry := AuditEntry{
		Timestamp:  start.UTC(),
		Tool:       tool,
		DurationMs: time.Since(start).Milliseconds(),
		Status:     "success",
		RunID:      runID,
		Params:     auditParams(params),
	}
	if err != nil {
		entry.Status = "error"
		entry.Error = err.Error()
	}
	s.audit.Log(entry)
}
