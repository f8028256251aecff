// Package study loads and validates CBC study configurations. Study files may
// be JSON, YAML or TOML; in every format the order attributes are written in
// is the attribute order of the study.
package study

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nvandessel/conjoint/internal/models"
	"github.com/nvandessel/conjoint/internal/sanitize"
	"gopkg.in/yaml.v3"
)

// Format identifies a study file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", models.NewConfigurationError("", "unsupported study file extension %q (valid: .json, .yaml, .yml, .toml)", filepath.Ext(path))
	}
}

// LoadFile reads, parses and validates a study file.
func LoadFile(path string) (models.StudyConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return models.StudyConfig{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.StudyConfig{}, fmt.Errorf("reading study file: %w", err)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return models.StudyConfig{}, err
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return cfg, nil
}

// Parse decodes and validates a study in the given format.
func Parse(data []byte, format Format) (models.StudyConfig, error) {
	var cfg models.StudyConfig
	var err error

	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &cfg)
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	case FormatTOML:
		cfg, err = parseTOML(data)
	default:
		return models.StudyConfig{}, models.NewConfigurationError("", "unsupported study format %q", format)
	}
	if err != nil {
		return models.StudyConfig{}, asConfigurationError(err)
	}

	cfg = Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return models.StudyConfig{}, err
	}
	return cfg, nil
}

// Normalize returns a copy of cfg with attribute names and level labels
// stripped of control characters and surrounding whitespace.
func Normalize(cfg models.StudyConfig) models.StudyConfig {
	attrs := make(models.AttrLevels, len(cfg.Attributes))
	for i, a := range cfg.Attributes {
		levels := make([]string, len(a.Levels))
		for j, l := range a.Levels {
			levels[j] = sanitize.Label(l)
		}
		attrs[i] = models.Attribute{Name: sanitize.Label(a.Name), Levels: levels}
	}
	cfg.Attributes = attrs
	cfg.Name = sanitize.Label(cfg.Name)
	return cfg
}

// tomlStudy mirrors the study file layout for TOML decoding. The attribute
// mapping is decoded unordered; its order is recovered from the metadata keys.
type tomlStudy struct {
	Name       string         `toml:"name"`
	Attrlevels map[string]any `toml:"attrlevels"`
	NTasks     int            `toml:"n_tasks"`
	NConcepts  int            `toml:"n_concepts"`
	NVersions  int            `toml:"n_versions"`
	NoneOption bool           `toml:"none_option"`
}

func parseTOML(data []byte) (models.StudyConfig, error) {
	var raw tomlStudy
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return models.StudyConfig{}, err
	}

	cfg := models.StudyConfig{
		Name:       raw.Name,
		NTasks:     raw.NTasks,
		NConcepts:  raw.NConcepts,
		NVersions:  raw.NVersions,
		NoneOption: raw.NoneOption,
	}
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "attrlevels" {
			continue
		}
		name := key[1]
		levels, err := models.LevelsFromValue(name, raw.Attrlevels[name])
		if err != nil {
			return models.StudyConfig{}, err
		}
		cfg.Attributes = append(cfg.Attributes, models.Attribute{Name: name, Levels: levels})
	}
	return cfg, nil
}

// asConfigurationError reports every parse failure as a configuration error,
// keeping the field of errors that already carry one.
func asConfigurationError(err error) error {
	var cfgErr *models.ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr
	}
	return models.NewConfigurationError("", "parsing study: %v", err)
}
