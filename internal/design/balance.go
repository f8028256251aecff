package design

import "github.com/nvandessel/conjoint/internal/models"

// LevelBalance counts how often each level of one attribute appears on real
// (non-"none") rows of a design.
type LevelBalance struct {
	Attribute string         `json:"attribute"`
	Counts    map[string]int `json:"counts"` // level label -> occurrences
	Min       int            `json:"min"`
	Max       int            `json:"max"`
}

// Spread is the difference between the most and least frequent level.
// A perfectly balanced attribute has a spread of 0.
func (b LevelBalance) Spread() int {
	return b.Max - b.Min
}

// Balance reports level frequencies per attribute in attribute order. Levels
// that never occur are reported with a count of 0.
func Balance(cfg models.StudyConfig, table *models.DesignTable) []LevelBalance {
	out := make([]LevelBalance, len(cfg.Attributes))
	for i, attr := range cfg.Attributes {
		counts := make([]int, attr.NumLevels())
		col := table.AttributeIndex(attr.Name)
		if col >= 0 {
			for j := 0; j < table.Len(); j++ {
				row := table.Row(j)
				if row.Concept > cfg.NConcepts {
					continue
				}
				if l := row.Levels[col]; l >= 1 && l <= len(counts) {
					counts[l-1]++
				}
			}
		}

		b := LevelBalance{Attribute: attr.Name, Counts: make(map[string]int, len(counts))}
		for k, c := range counts {
			b.Counts[attr.Levels[k]] = c
			if k == 0 || c < b.Min {
				b.Min = c
			}
			if c > b.Max {
				b.Max = c
			}
		}
		out[i] = b
	}
	return out
}
