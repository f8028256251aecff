// Package design generates choice-based conjoint designs: one row per
// (version, task, concept) with a level index per attribute.
package design

import (
	"math/rand/v2"

	"github.com/nvandessel/conjoint/internal/models"
	"github.com/nvandessel/conjoint/internal/rng"
	"github.com/nvandessel/conjoint/internal/study"
)

// Method selects how attribute levels are assigned to concepts.
type Method string

const (
	// MethodRandom draws each level uniformly from the seeded stream.
	MethodRandom Method = "random"

	// MethodOrthogonal cycles levels by (concept + task + version) mod levels.
	// It is deterministic and seed-independent. It does not produce a balanced
	// orthogonal array; it only guarantees that levels cycle.
	MethodOrthogonal Method = "orthogonal"
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodRandom, MethodOrthogonal:
		return Method(s), nil
	default:
		return "", models.NewConfigurationError("method", "unrecognized design method %q (valid: random, orthogonal)", s)
	}
}

// Generate builds the design for cfg using a generator seeded with seed.
// The same config, method and seed always produce an identical table.
func Generate(cfg models.StudyConfig, method Method, seed int64) (*models.DesignTable, error) {
	return GenerateWith(cfg, method, rng.New(seed))
}

// maxPrealloc bounds the row capacity reserved up front.
const maxPrealloc = 1 << 20

// GenerateWith builds the design drawing from r. Draws are consumed in row
// order (version, task, concept) and attribute order within each row.
func GenerateWith(cfg models.StudyConfig, method Method, r *rand.Rand) (*models.DesignTable, error) {
	if _, err := ParseMethod(string(method)); err != nil {
		return nil, err
	}
	if err := study.Validate(cfg); err != nil {
		return nil, err
	}

	nAttrs := len(cfg.Attributes)
	var rows []models.DesignRow
	if cfg.RowsAtMost(maxPrealloc) {
		rows = make([]models.DesignRow, 0, cfg.ExpectedRows())
	}
	for version := 1; version <= cfg.NVersions; version++ {
		for task := 1; task <= cfg.NTasks; task++ {
			for concept := 1; concept <= cfg.NConcepts; concept++ {
				levels := make([]int, nAttrs)
				for i, attr := range cfg.Attributes {
					n := attr.NumLevels()
					if method == MethodRandom {
						levels[i] = rng.Between(r, n)
					} else {
						levels[i] = (concept+task+version)%n + 1
					}
				}
				rows = append(rows, models.DesignRow{
					Version: version,
					Task:    task,
					Concept: concept,
					Levels:  levels,
				})
			}
			if cfg.NoneOption {
				rows = append(rows, models.DesignRow{
					Version: version,
					Task:    task,
					Concept: cfg.NoneConcept(),
					Levels:  make([]int, nAttrs),
				})
			}
		}
	}

	return models.NewDesignTable(cfg.AttributeNames(), rows), nil
}
