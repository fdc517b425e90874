// Package config loads the run configuration from a YAML file, a .env file
// and FUSSWEG_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
)

// Config holds the run configuration
type Config struct {
	// Prefix is written to the prefix column and joins annotations with
	// the EXIF feed.
	Prefix string `yaml:"prefix"`

	// LogMode is "dev" or "prod".
	LogMode string `yaml:"log_mode"`

	// Workers bounds the number of documents read in parallel.
	Workers int `yaml:"workers"`

	// ConditionPolicy is "first", "last" or "strict".
	ConditionPolicy string `yaml:"condition_policy"`

	COCO COCOConfig `yaml:"coco"`
}

// COCOConfig holds configuration for the COCO export
type COCOConfig struct {
	// AllImages keeps images without annotations.
	AllImages bool `yaml:"all_images"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Prefix:          "",
		LogMode:         "dev",
		Workers:         runtime.NumCPU(),
		ConditionPolicy: "first",
	}
}

// Load reads path (if not empty) over the defaults, then applies .env and
// the environment.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	// a missing .env is fine
	_ = godotenv.Load(envFiles...)
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv("FUSSWEG_PREFIX")); v != "" {
		c.Prefix = v
	}
	if v := strings.TrimSpace(os.Getenv("FUSSWEG_LOG_MODE")); v != "" {
		c.LogMode = v
	}
	if v := strings.TrimSpace(os.Getenv("FUSSWEG_CONDITION_POLICY")); v != "" {
		c.ConditionPolicy = v
	}
	if v := strings.TrimSpace(os.Getenv("FUSSWEG_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: FUSSWEG_WORKERS: %w", ErrInvalidConfig, err)
		}
		c.Workers = n
	}
	return nil
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	switch c.ConditionPolicy {
	case "first", "last", "strict":
	default:
		return fmt.Errorf("%w: unknown condition_policy %q", ErrInvalidConfig, c.ConditionPolicy)
	}
	switch strings.ToLower(c.LogMode) {
	case "dev", "development", "prod", "production":
	default:
		return fmt.Errorf("%w: unknown log_mode %q", ErrInvalidConfig, c.LogMode)
	}
	if strings.Contains(c.Prefix, "\t") {
		return fmt.Errorf("%w: prefix must not contain tabs", ErrInvalidConfig)
	}
	return nil
}
