package study

import (
	"github.com/nvandessel/conjoint/internal/models"
	"gopkg.in/yaml.v3"
)

// Example returns the sample study written by `conjoint init`.
func Example() models.StudyConfig {
	return models.StudyConfig{
		Name: "example",
		Attributes: models.AttrLevels{
			{Name: "brand", Levels: []string{"Acme", "Globex", "Initech"}},
			{Name: "price", Levels: []string{"$10", "$15", "$20", "$25"}},
			{Name: "size", Levels: []string{"small", "medium", "large"}},
		},
		NTasks:     8,
		NConcepts:  3,
		NVersions:  10,
		NoneOption: true,
	}
}

// EncodeYAML renders a study in the file layout accepted by Parse.
func EncodeYAML(cfg models.StudyConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}
