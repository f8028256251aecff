package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/nvandessel/conjoint/internal/models"
)

// WriteDesignJSONL writes one JSON object per design row. Keys follow the
// CSV column order so attribute order survives.
func WriteDesignJSONL(w io.Writer, t *models.DesignTable) error {
	bw := bufio.NewWriter(w)
	cols := DesignColumns(t)
	for _, row := range t.Rows() {
		vals := make([]int, 0, len(cols))
		vals = append(vals, row.Version, row.Task, row.Concept)
		vals = append(vals, row.Levels...)
		if err := writeObject(bw, cols, nil, vals); err != nil {
			return fmt.Errorf("failed to write design row: %w", err)
		}
	}
	return bw.Flush()
}

// WriteResponsesJSONL writes one JSON object per respondent.
func WriteResponsesJSONL(w io.Writer, t *models.ResponseTable) error {
	bw := bufio.NewWriter(w)
	cols := ResponseColumns(t)
	for _, row := range t.Rows() {
		vals := make([]int, 0, len(cols)-1)
		vals = append(vals, row.Version)
		vals = append(vals, row.Choices...)
		first := row.RespondentID
		if err := writeObject(bw, cols, &first, vals); err != nil {
			return fmt.Errorf("failed to write response row: %w", err)
		}
	}
	return bw.Flush()
}

// writeObject writes {"cols[0]": first, ...} where an optional leading string
// value is followed by integer values.
func writeObject(w *bufio.Writer, cols []string, first *string, vals []int) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	writeKey := func(k string) error {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		i++
		return nil
	}
	if first != nil {
		if err := writeKey(cols[0]); err != nil {
			return err
		}
		v, err := json.Marshal(*first)
		if err != nil {
			return err
		}
		buf.Write(v)
		cols = cols[1:]
	}
	for j, v := range vals {
		if err := writeKey(cols[j]); err != nil {
			return err
		}
		buf.WriteString(strconv.Itoa(v))
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}
