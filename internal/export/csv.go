package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/nvandessel/conjoint/internal/models"
)

// WriteDesignCSV writes version,task,concept followed by one column per
// attribute in study order.
func WriteDesignCSV(w io.Writer, t *models.DesignTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DesignColumns(t)); err != nil {
		return fmt.Errorf("failed to write design header: %w", err)
	}
	for _, row := range t.Rows() {
		rec := make([]string, 0, 3+len(row.Levels))
		rec = append(rec, strconv.Itoa(row.Version), strconv.Itoa(row.Task), strconv.Itoa(row.Concept))
		for _, l := range row.Levels {
			rec = append(rec, strconv.Itoa(l))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write design row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteResponsesCSV writes respid,version,task_1..task_n with one line per
// respondent.
func WriteResponsesCSV(w io.Writer, t *models.ResponseTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ResponseColumns(t)); err != nil {
		return fmt.Errorf("failed to write response header: %w", err)
	}
	for _, row := range t.Rows() {
		rec := make([]string, 0, 2+len(row.Choices))
		rec = append(rec, row.RespondentID, strconv.Itoa(row.Version))
		for _, c := range row.Choices {
			rec = append(rec, strconv.Itoa(c))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write response row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
