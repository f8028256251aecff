// Package config provides unified configuration loading for conjoint.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nvandessel/conjoint/internal/design"
	"gopkg.in/yaml.v3"
)

// ConjointConfig contains all conjoint tool settings. Study definitions are
// not part of it; they live in their own study files.
type ConjointConfig struct {
	// Design holds defaults for design generation.
	Design DesignConfig `json:"design" yaml:"design"`

	// Simulation holds defaults for choice simulation.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Server configures the HTTP API started by `conjoint serve`.
	Server ServerConfig `json:"server" yaml:"server"`

	// Logging contains settings for operational logging and run tracing.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// DesignConfig holds defaults for `conjoint design`.
type DesignConfig struct {
	// Method is "random" (default) or "orthogonal".
	Method string `json:"method" yaml:"method"`

	// Seed initializes the random stream when no --seed is given.
	Seed int64 `json:"seed" yaml:"seed"`
}

// SimulationConfig holds defaults for `conjoint simulate`.
type SimulationConfig struct {
	// Respondents is the number of simulated respondents.
	Respondents int `json:"respondents" yaml:"respondents"`

	// Seed initializes the random stream when no --seed is given.
	Seed int64 `json:"seed" yaml:"seed"`

	// Driver is the default driver attribute. Empty draws one at random.
	Driver string `json:"driver,omitempty" yaml:"driver,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Listen is the address to bind, e.g. "127.0.0.1:8740".
	Listen string `json:"listen" yaml:"listen"`

	// ReadTimeout bounds how long a request body may take to arrive.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// MaxRespondents caps the respondents a single API request may simulate.
	MaxRespondents int `json:"max_respondents" yaml:"max_respondents"`

	// MaxDesignRows caps the rows of a design requested over HTTP or MCP.
	MaxDesignRows int `json:"max_design_rows" yaml:"max_design_rows"`

	// RequestsPerMinute limits each client address. Zero disables limiting.
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute"`

	// Burst is the number of requests a client may make before the rate applies.
	Burst int `json:"burst" yaml:"burst"`
}

// LoggingConfig configures conjoint's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "warn", "info" (default), "debug" or "trace".
	// "debug" and "trace" also enable the run trace at .conjoint/trace.jsonl.
	Level string `json:"level" yaml:"level"`
}

// Default returns a ConjointConfig with sensible defaults.
func Default() *ConjointConfig {
	return &ConjointConfig{
		Design: DesignConfig{
			Method: string(design.MethodRandom),
			Seed:   999,
		},
		Simulation: SimulationConfig{
			Respondents: 10,
			Seed:        999,
		},
		Server: ServerConfig{
			Listen:            "127.0.0.1:8740",
			ReadTimeout:       10 * time.Second,
			MaxRespondents:    100000,
			MaxDesignRows:     1000000,
			RequestsPerMinute: 600,
			Burst:             50,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// GlobalPath returns ~/.conjoint/config.yaml.
func GlobalPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(homeDir, ".conjoint", "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.conjoint/config.yaml -> environment variables
func Load() (*ConjointConfig, error) {
	config := Default()

	if configPath, err := GlobalPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file. Fields absent
// from the file keep their defaults.
func LoadFromFile(path string) (*ConjointConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *ConjointConfig) Validate() error {
	if _, err := design.ParseMethod(c.Design.Method); err != nil {
		return err
	}

	if c.Simulation.Respondents < 0 {
		return fmt.Errorf("respondents must be non-negative, got %d", c.Simulation.Respondents)
	}

	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("read_timeout must be non-negative, got %v", c.Server.ReadTimeout)
	}

	if c.Server.MaxRespondents < 1 {
		return fmt.Errorf("max_respondents must be positive, got %d", c.Server.MaxRespondents)
	}

	if c.Server.MaxDesignRows < 1 {
		return fmt.Errorf("max_design_rows must be positive, got %d", c.Server.MaxDesignRows)
	}

	if c.Server.RequestsPerMinute < 0 || c.Server.Burst < 0 {
		return fmt.Errorf("requests_per_minute and burst must be non-negative")
	}
	if c.Server.RequestsPerMinute > 0 && c.Server.Burst < 1 {
		return fmt.Errorf("burst must be at least 1 when rate limiting is enabled")
	}

	validLevels := map[string]bool{"warn": true, "info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: warn, info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *ConjointConfig) {
	if v := os.Getenv("CONJOINT_METHOD"); v != "" {
		config.Design.Method = v
	}

	if v := os.Getenv("CONJOINT_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Design.Seed = n
			config.Simulation.Seed = n
		}
	}

	if v := os.Getenv("CONJOINT_RESPONDENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.Respondents = n
		}
	}

	if v := os.Getenv("CONJOINT_DRIVER"); v != "" {
		config.Simulation.Driver = v
	}

	if v := os.Getenv("CONJOINT_LISTEN"); v != "" {
		config.Server.Listen = v
	}

	if v := os.Getenv("CONJOINT_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
