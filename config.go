package ptv

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk client configuration. Credentials may be supplied
// or overridden through the PTV_DEV_ID and PTV_API_KEY environment
// variables so secrets can stay out of config files.
type Config struct {
	BaseURL       string `yaml:"baseURL" validate:"required,url"`
	DeveloperID   string `yaml:"developerID" validate:"required"`
	Key           string `yaml:"key" validate:"required"`
	MinIntervalMS int    `yaml:"minIntervalMS" validate:"gte=0"`
	MaxBackoffMS  int    `yaml:"maxBackoffMS" validate:"gte=0"`
	TimeoutMS     int    `yaml:"timeoutMS" validate:"gte=0"`
}

// LoadConfig reads and validates a YAML configuration file, applying
// environment overrides and defaulting unset pacing values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if v := os.Getenv("PTV_DEV_ID"); v != "" {
		cfg.DeveloperID = v
	}
	if v := os.Getenv("PTV_API_KEY"); v != "" {
		cfg.Key = v
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	if cfg.MinIntervalMS == 0 {
		cfg.MinIntervalMS = int(DefaultMinInterval / time.Millisecond)
	}
	if cfg.MaxBackoffMS == 0 {
		cfg.MaxBackoffMS = int(DefaultMaxBackoff / time.Millisecond)
	}
	if cfg.TimeoutMS == 0 {
		cfg.TimeoutMS = int(DefaultTimeout / time.Millisecond)
	}

	return &cfg, nil
}

// Options renders the configuration as client options.
func (cfg *Config) Options() []Option {
	return []Option{
		WithMinInterval(time.Duration(cfg.MinIntervalMS) * time.Millisecond),
		WithMaxBackoff(time.Duration(cfg.MaxBackoffMS) * time.Millisecond),
		WithTimeout(time.Duration(cfg.TimeoutMS) * time.Millisecond),
	}
}

// Client constructs a Client from the configuration, with extra options
// appended after the configuration-derived ones.
func (cfg *Config) Client(extra ...Option) *Client {
	opts := append(cfg.Options(), extra...)
	return New(cfg.BaseURL, SigningCredentials{DeveloperID: cfg.DeveloperID, Key: cfg.Key}, opts...)
}
