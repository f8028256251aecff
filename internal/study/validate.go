package study

import (
	"github.com/nvandessel/conjoint/internal/models"
)

// Validate checks that cfg describes a study a design can be generated for.
// Every failure is a *models.ConfigurationError naming the offending field.
func Validate(cfg models.StudyConfig) error {
	if len(cfg.Attributes) == 0 {
		return models.NewConfigurationError("attrlevels", "at least one attribute is required")
	}

	seen := make(map[string]bool, len(cfg.Attributes))
	for _, attr := range cfg.Attributes {
		if attr.Name == "" {
			return models.NewConfigurationError("attrlevels", "attribute name must not be empty")
		}
		if seen[attr.Name] {
			return models.NewConfigurationError("attrlevels."+attr.Name, "duplicate attribute")
		}
		seen[attr.Name] = true

		if attr.NumLevels() == 0 {
			return models.NewConfigurationError("attrlevels."+attr.Name, "at least one level is required")
		}
		labels := make(map[string]bool, attr.NumLevels())
		for _, l := range attr.Levels {
			if labels[l] {
				return models.NewConfigurationError("attrlevels."+attr.Name, "duplicate level %q", l)
			}
			labels[l] = true
		}
	}

	if cfg.NTasks < 1 {
		return models.NewConfigurationError("n_tasks", "must be at least 1, got %d", cfg.NTasks)
	}
	if cfg.NConcepts < 1 {
		return models.NewConfigurationError("n_concepts", "must be at least 1, got %d", cfg.NConcepts)
	}
	if cfg.NVersions < 1 {
		return models.NewConfigurationError("n_versions", "must be at least 1, got %d", cfg.NVersions)
	}
	return nil
}
