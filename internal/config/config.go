// Package config loads extraction settings from YAML with sensible
// defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full configuration surface of an extraction run.
type Config struct {
	BaseURL  string `yaml:"base_url"`  // upstream base URL (real mode)
	Simulate bool   `yaml:"simulate"`  // use the deterministic simulator
	Status   string `yaml:"status"`    // alert status to scan
	Limit    int    `yaml:"limit"`     // target number of alerts
	PageSize int    `yaml:"page_size"` // IDs per listing page
	OutDir   string `yaml:"out_dir"`   // output directory for CSVs
	Seed     int64  `yaml:"seed"`      // simulator seed

	RequestTimeout  time.Duration `yaml:"request_timeout"`   // per-attempt timeout
	MaxRetries      int           `yaml:"max_retries"`       // extra attempts after the first
	BackoffFactor   time.Duration `yaml:"backoff_factor"`    // retry delay base
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`

	MetricsAddr string `yaml:"metrics_addr"` // empty disables the metrics server
}

// Default returns the standard extraction configuration.
func Default() Config {
	return Config{
		BaseURL:         "https://api.mercadolibre.com",
		Simulate:        true,
		Status:          "open",
		Limit:           150,
		PageSize:        50,
		OutDir:          "data",
		Seed:            42,
		RequestTimeout:  10 * time.Second,
		MaxRetries:      3,
		BackoffFactor:   500 * time.Millisecond,
		RateLimitPerSec: 5.0,
	}
}

// Load reads configuration from a YAML file, filling unset fields with
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// setDefaults fills fields an explicit config may have zeroed.
func (c *Config) setDefaults() {
	d := Default()
	if c.Status == "" {
		c.Status = d.Status
	}
	if c.OutDir == "" {
		c.OutDir = d.OutDir
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = d.BackoffFactor
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative, got %d", c.MaxRetries)
	}
	if !c.Simulate && c.BaseURL == "" {
		return fmt.Errorf("base_url is required when simulate is off")
	}
	return nil
}
