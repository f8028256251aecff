package simulation

import (
	"math/rand/v2"

	"github.com/nvandessel/conjoint/internal/models"
	"github.com/nvandessel/conjoint/internal/rng"
)

// DefaultRespondents is used when Options.Respondents is unset by callers
// that apply defaults (CLI, HTTP, MCP).
const DefaultRespondents = 10

// Options controls a simulation run.
type Options struct {
	// Driver is the attribute whose level decides every choice. When empty,
	// one attribute is drawn uniformly from the seeded stream.
	Driver string

	// Respondents is the number of simulated respondents.
	Respondents int
}

// Simulate derives choices for opts.Respondents respondents from design,
// using a generator seeded with seed.
func Simulate(design *models.DesignTable, cfg models.StudyConfig, opts Options, seed int64) (*models.ResponseTable, error) {
	return SimulateWith(design, cfg, opts, rng.New(seed))
}

// SimulateWith derives choices drawing from r.
func SimulateWith(design *models.DesignTable, cfg models.StudyConfig, opts Options, r *rand.Rand) (*models.ResponseTable, error) {
	if design.Len() == 0 {
		return nil, &models.PreconditionError{Reason: "design must exist"}
	}
	if opts.Respondents < 0 {
		return nil, models.NewConfigurationError("respondents", "must not be negative, got %d", opts.Respondents)
	}
	if len(cfg.Attributes) == 0 {
		return nil, models.NewConfigurationError("attrlevels", "at least one attribute is required")
	}
	if cfg.NVersions < 1 {
		return nil, models.NewConfigurationError("n_versions", "must be at least 1, got %d", cfg.NVersions)
	}
	if cfg.NTasks < 1 {
		return nil, models.NewConfigurationError("n_tasks", "must be at least 1, got %d", cfg.NTasks)
	}

	driver := opts.Driver
	if driver == "" {
		driver = cfg.Attributes[r.IntN(len(cfg.Attributes))].Name
	} else if cfg.AttributeIndex(driver) < 0 {
		return nil, models.NewConfigurationError("driver", "unknown attribute %q", driver)
	}
	col := design.AttributeIndex(driver)
	if col < 0 {
		return nil, models.NewConfigurationError("driver", "attribute %q is not a column of the design", driver)
	}

	versions := make([]int, opts.Respondents)
	for i := range versions {
		versions[i] = rng.Between(r, cfg.NVersions)
	}

	rows := make([]models.ResponseRow, opts.Respondents)
	for i, version := range versions {
		choices := make([]int, cfg.NTasks)
		for task := 1; task <= cfg.NTasks; task++ {
			choice, ok := choose(design.Select(version, task), col)
			if !ok {
				return nil, &models.DesignMismatchError{Version: version, Task: task}
			}
			choices[task-1] = choice
		}
		rows[i] = models.ResponseRow{
			RespondentID: models.RespondentID(i + 1),
			Version:      version,
			Choices:      choices,
		}
	}

	return models.NewResponseTable(driver, cfg.NTasks, rows), nil
}

// choose returns the concept of the first row with the highest level in col.
// "None" rows take part: their level is 0, so they only win when no real
// concept has a positive level.
func choose(rows []models.DesignRow, col int) (int, bool) {
	if len(rows) == 0 {
		return 0, false
	}
	best := rows[0]
	for _, row := range rows[1:] {
		if row.Levels[col] > best.Levels[col] {
			best = row
		}
	}
	return best.Concept, true
}
