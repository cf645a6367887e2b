package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultChipUnit is the smallest legal increment for bets, raises and all-ins
	DefaultChipUnit int64 = 25

	// DefaultMaxDecompressedBytes caps the text size of one input after decompression
	DefaultMaxDecompressedBytes int64 = 256 << 20

	// DefaultNamespace keys stored reports when none is configured
	DefaultNamespace = "default"

	// DefaultFile is looked up in the working directory when --config is not given
	DefaultFile = "holdcheck.yml"
)

// VerifyConfig controls the rule set
type VerifyConfig struct {
	ChipUnit     *int64 `yaml:"chip_unit,omitempty"`     // Default: 25
	StrictRoster bool   `yaml:"strict_roster,omitempty"` // Report players joining mid-stream
}

// InputConfig controls how inputs are read
type InputConfig struct {
	MaxDecompressedBytes *int64 `yaml:"max_decompressed_bytes,omitempty"` // Default: 256 MiB
}

// RedisConfig points at the report store
type RedisConfig struct {
	URL       string `yaml:"url,omitempty"`       // Empty disables report publishing
	Namespace string `yaml:"namespace,omitempty"` // Default: "default"
}

// HoldcheckConfig represents the top-level holdcheck.yml configuration
type HoldcheckConfig struct {
	Version string        `yaml:"version"`
	Verify  *VerifyConfig `yaml:"verify,omitempty"`
	Input   *InputConfig  `yaml:"input,omitempty"`
	Redis   *RedisConfig  `yaml:"redis,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *HoldcheckConfig {
	cfg := &HoldcheckConfig{Version: "1.0"}
	_ = cfg.Validate()
	return cfg
}

// Validate checks the configuration and fills in defaults for unset sections.
func (c *HoldcheckConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	if c.Verify == nil {
		c.Verify = &VerifyConfig{}
	}
	if c.Verify.ChipUnit == nil {
		unit := DefaultChipUnit
		c.Verify.ChipUnit = &unit
	}
	if *c.Verify.ChipUnit <= 0 {
		return fmt.Errorf("verify.chip_unit must be > 0, got %d", *c.Verify.ChipUnit)
	}

	if c.Input == nil {
		c.Input = &InputConfig{}
	}
	if c.Input.MaxDecompressedBytes == nil {
		limit := DefaultMaxDecompressedBytes
		c.Input.MaxDecompressedBytes = &limit
	}
	if *c.Input.MaxDecompressedBytes <= 0 {
		return fmt.Errorf("input.max_decompressed_bytes must be > 0, got %d", *c.Input.MaxDecompressedBytes)
	}

	if c.Redis == nil {
		c.Redis = &RedisConfig{}
	}
	if c.Redis.Namespace == "" {
		c.Redis.Namespace = DefaultNamespace
	}
	if strings.ContainsAny(c.Redis.Namespace, ": \t") {
		return fmt.Errorf("redis.namespace must not contain ':' or whitespace: %q", c.Redis.Namespace)
	}

	return nil
}

// ChipUnit returns the validated chip unit.
func (c *HoldcheckConfig) ChipUnit() int64 {
	if c.Verify == nil || c.Verify.ChipUnit == nil {
		return DefaultChipUnit
	}
	return *c.Verify.ChipUnit
}

// MaxDecompressedBytes returns the validated input size cap.
func (c *HoldcheckConfig) MaxDecompressedBytes() int64 {
	if c.Input == nil || c.Input.MaxDecompressedBytes == nil {
		return DefaultMaxDecompressedBytes
	}
	return *c.Input.MaxDecompressedBytes
}

// envOverrides lists the environment variables that override file values.
// Fields keep their current value when the variable is unset.
type envOverrides struct {
	ChipUnit             int64  `env:"HOLDCHECK_CHIP_UNIT"`
	StrictRoster         bool   `env:"HOLDCHECK_STRICT_ROSTER"`
	MaxDecompressedBytes int64  `env:"HOLDCHECK_MAX_DECOMPRESSED_BYTES"`
	RedisURL             string `env:"HOLDCHECK_REDIS_URL"`
	Namespace            string `env:"HOLDCHECK_NAMESPACE"`
}

// ApplyEnv overrides the configuration from HOLDCHECK_* environment variables and
// validates the result. The configuration must already be valid.
func (c *HoldcheckConfig) ApplyEnv() error {
	ov := envOverrides{
		ChipUnit:             c.ChipUnit(),
		StrictRoster:         c.Verify.StrictRoster,
		MaxDecompressedBytes: c.MaxDecompressedBytes(),
		RedisURL:             c.Redis.URL,
		Namespace:            c.Redis.Namespace,
	}
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	c.Verify.ChipUnit = &ov.ChipUnit
	c.Verify.StrictRoster = ov.StrictRoster
	c.Input.MaxDecompressedBytes = &ov.MaxDecompressedBytes
	c.Redis.URL = ov.RedisURL
	c.Redis.Namespace = ov.Namespace

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from a .env file without overriding variables that are
// already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads and validates holdcheck.yml from the specified path
func Load(path string) (*HoldcheckConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config HoldcheckConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Resolve builds the effective configuration: the file at path (or DefaultFile when
// path is empty and that file exists, or built-in defaults), then .env, then HOLDCHECK_*
// environment variables.
func Resolve(path string) (*HoldcheckConfig, error) {
	cfg := Default()

	switch {
	case path != "":
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	default:
		if _, err := os.Stat(DefaultFile); err == nil {
			loaded, err := Load(DefaultFile)
			if err != nil {
				return nil, err
			}
			cfg = loaded
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
