// Package export writes design and response tables to files for analysis
// tools: CSV for spreadsheets, JSONL for scripts, Arrow IPC for dataframes.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nvandessel/conjoint/internal/models"
)

// Format is an export file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
	FormatArrow Format = "arrow"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatCSV, FormatJSONL, FormatArrow}

// Index column names shared by all formats.
const (
	ColVersion    = "version"
	ColTask       = "task"
	ColConcept    = "concept"
	ColRespondent = "respid"
)

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSONL, FormatArrow:
		return f, nil
	default:
		return "", models.NewConfigurationError("format", "unsupported export format %q (want csv, jsonl or arrow)", s)
	}
}

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// DesignColumns returns the header of a design export.
func DesignColumns(t *models.DesignTable) []string {
	return append([]string{ColVersion, ColTask, ColConcept}, t.Attributes()...)
}

// ResponseColumns returns the header of a response export.
func ResponseColumns(t *models.ResponseTable) []string {
	return append([]string{ColRespondent, ColVersion}, t.Columns()...)
}

// WriteDesign writes a design table in the given format.
func WriteDesign(w io.Writer, f Format, t *models.DesignTable) error {
	switch f {
	case FormatCSV:
		return WriteDesignCSV(w, t)
	case FormatJSONL:
		return WriteDesignJSONL(w, t)
	case FormatArrow:
		return WriteDesignArrow(w, t)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// WriteResponses writes a response table in the given format.
func WriteResponses(w io.Writer, f Format, t *models.ResponseTable) error {
	switch f {
	case FormatCSV:
		return WriteResponsesCSV(w, t)
	case FormatJSONL:
		return WriteResponsesJSONL(w, t)
	case FormatArrow:
		return WriteResponsesArrow(w, t)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

// WriteFile creates path (and its parent directory) and fills it using write.
func WriteFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
