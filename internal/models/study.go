package models

import (
	"strconv"
)

// Attribute is one conjoint attribute and its ordered level labels.
type Attribute struct {
	Name   string   `json:"name" yaml:"name"`
	Levels []string `json:"levels" yaml:"levels"`
}

// NumLevels returns the number of levels for the attribute.
func (a Attribute) NumLevels() int {
	return len(a.Levels)
}

// CountLevels builds n level labels "1".."n" for attributes declared by count.
func CountLevels(n int) []string {
	if n <= 0 {
		return nil
	}
	levels := make([]string, n)
	for i := range levels {
		levels[i] = strconv.Itoa(i + 1)
	}
	return levels
}

// StudyConfig describes a CBC study. Attribute order is declaration order and
// drives both the column order of the design and the order of random draws.
type StudyConfig struct {
	// Name is an optional study name used by collaborators for folder naming.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	Attributes AttrLevels `json:"attrlevels" yaml:"attrlevels"`
	NTasks     int        `json:"n_tasks" yaml:"n_tasks"`
	NConcepts  int        `json:"n_concepts" yaml:"n_concepts"`
	NVersions  int        `json:"n_versions" yaml:"n_versions"`
	NoneOption bool       `json:"none_option" yaml:"none_option"`
}

// AttributeNames returns attribute names in declaration order.
func (c StudyConfig) AttributeNames() []string {
	names := make([]string, len(c.Attributes))
	for i, a := range c.Attributes {
		names[i] = a.Name
	}
	return names
}

// AttributeIndex returns the position of the named attribute, or -1.
func (c StudyConfig) AttributeIndex(name string) int {
	for i, a := range c.Attributes {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// ConceptsPerTask is the number of design rows per (version, task),
// including the "none" concept when enabled.
func (c StudyConfig) ConceptsPerTask() int {
	if c.NoneOption {
		return c.NConcepts + 1
	}
	return c.NConcepts
}

// NoneConcept is the concept index reserved for the "none of these" row.
func (c StudyConfig) NoneConcept() int {
	return c.NConcepts + 1
}

// ExpectedRows is the number of rows a design for this study contains.
// Callers handling untrusted sizes check RowsAtMost first.
func (c StudyConfig) ExpectedRows() int {
	return c.NVersions * c.NTasks * c.ConceptsPerTask()
}

// RowsAtMost reports whether a design for this study has at most limit rows,
// without overflowing. A non-positive dimension means no rows.
func (c StudyConfig) RowsAtMost(limit int) bool {
	if limit < 0 {
		return false
	}
	per := c.NConcepts
	if c.NVersions <= 0 || c.NTasks <= 0 || per <= 0 {
		return true
	}
	if c.NoneOption {
		if per >= limit {
			return false
		}
		per++
	}
	total := 1
	for _, d := range []int{c.NVersions, c.NTasks, per} {
		if total > limit/d {
			return false
		}
		total *= d
	}
	return true
}
