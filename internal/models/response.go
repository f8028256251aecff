package models

import "fmt"

// RespondentID formats the 1-based respondent index used as the row key of
// response tables.
func RespondentID(n int) string {
	return fmt.Sprintf("respid_%d", n)
}

// TaskColumn formats the column name for a 1-based task index.
func TaskColumn(task int) string {
	return fmt.Sprintf("task_%d", task)
}

// ResponseRow holds one simulated respondent's choices, one per task.
type ResponseRow struct {
	RespondentID string `json:"respondent_id"`
	Version      int    `json:"version"`
	Choices      []int  `json:"choices"`
}

// ResponseTable is the output of a choice simulation, one row per respondent
// in respondent order. It is never mutated after construction.
type ResponseTable struct {
	driver string
	nTasks int
	rows   []ResponseRow
}

// NewResponseTable builds a response table. The rows are copied.
func NewResponseTable(driver string, nTasks int, rows []ResponseRow) *ResponseTable {
	t := &ResponseTable{
		driver: driver,
		nTasks: nTasks,
		rows:   make([]ResponseRow, len(rows)),
	}
	for i, r := range rows {
		r.Choices = append([]int(nil), r.Choices...)
		t.rows[i] = r
	}
	return t
}

// Driver returns the attribute that drove every choice in the table.
func (t *ResponseTable) Driver() string {
	if t == nil {
		return ""
	}
	return t.driver
}

// NumTasks returns the number of choice columns.
func (t *ResponseTable) NumTasks() int {
	if t == nil {
		return 0
	}
	return t.nTasks
}

// Len returns the number of respondents.
func (t *ResponseTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns a copy of respondent row i.
func (t *ResponseTable) Row(i int) ResponseRow {
	r := t.rows[i]
	r.Choices = append([]int(nil), r.Choices...)
	return r
}

// Rows returns a copy of every respondent row in order.
func (t *ResponseTable) Rows() []ResponseRow {
	out := make([]ResponseRow, t.Len())
	for i := range out {
		out[i] = t.Row(i)
	}
	return out
}

// Columns returns the task column names task_1..task_n.
func (t *ResponseTable) Columns() []string {
	cols := make([]string, t.NumTasks())
	for i := range cols {
		cols[i] = TaskColumn(i + 1)
	}
	return cols
}
