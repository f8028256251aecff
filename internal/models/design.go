package models

// DesignRow is one concept shown to respondents of a version in a task.
// Levels holds one 1-based level index per attribute in attribute order;
// 0 marks "not applicable" and only appears on "none" rows.
type DesignRow struct {
	Version int   `json:"version"`
	Task    int   `json:"task"`
	Concept int   `json:"concept"`
	Levels  []int `json:"levels"`
}

// IsNone reports whether the row is the "none of these" concept.
func (r DesignRow) IsNone() bool {
	for _, l := range r.Levels {
		if l != 0 {
			return false
		}
	}
	return len(r.Levels) > 0
}

// DesignTable is the ordered output of design generation. Rows are grouped by
// version, then task, then concept, in generation order. A DesignTable is
// never mutated after construction; accessors return copies.
type DesignTable struct {
	attributes []string
	rows       []DesignRow
}

// NewDesignTable builds a table from attribute column names and rows.
// The inputs are copied.
func NewDesignTable(attributes []string, rows []DesignRow) *DesignTable {
	t := &DesignTable{
		attributes: append([]string(nil), attributes...),
		rows:       make([]DesignRow, len(rows)),
	}
	for i, r := range rows {
		r.Levels = append([]int(nil), r.Levels...)
		t.rows[i] = r
	}
	return t
}

// Attributes returns the attribute column names in order.
func (t *DesignTable) Attributes() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.attributes...)
}

// Len returns the number of rows. A nil table has no rows.
func (t *DesignTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns a copy of row i.
func (t *DesignTable) Row(i int) DesignRow {
	r := t.rows[i]
	r.Levels = append([]int(nil), r.Levels...)
	return r
}

// Rows returns a copy of every row in order.
func (t *DesignTable) Rows() []DesignRow {
	out := make([]DesignRow, t.Len())
	for i := range out {
		out[i] = t.Row(i)
	}
	return out
}

// AttributeIndex returns the column index of the named attribute, or -1.
func (t *DesignTable) AttributeIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, a := range t.attributes {
		if a == name {
			return i
		}
	}
	return -1
}

// Select returns copies of the rows for the given version and task,
// preserving table order.
func (t *DesignTable) Select(version, task int) []DesignRow {
	var out []DesignRow
	for i := 0; i < t.Len(); i++ {
		if t.rows[i].Version == version && t.rows[i].Task == task {
			out = append(out, t.Row(i))
		}
	}
	return out
}

// Equal reports whether two tables have the same columns and rows.
func (t *DesignTable) Equal(other *DesignTable) bool {
	if t.Len() != other.Len() {
		return false
	}
	if t == nil || other == nil {
		return t == other
	}
	if len(t.attributes) != len(other.attributes) {
		return false
	}
	for i := range t.attributes {
		if t.attributes[i] != other.attributes[i] {
			return false
		}
	}
	for i := range t.rows {
		a, b := t.rows[i], other.rows[i]
		if a.Version != b.Version || a.Task != b.Task || a.Concept != b.Concept {
			return false
		}
		if len(a.Levels) != len(b.Levels) {
			return false
		}
		for j := range a.Levels {
			if a.Levels[j] != b.Levels[j] {
				return false
			}
		}
	}
	return true
}
