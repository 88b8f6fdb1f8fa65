// Package config provides YAML configuration parsing for the snapgate
// CLI.
//
// This package enables driving builds from a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	token: ${SNAPGATE_TOKEN}
//	base_url: https://api.snapgate.io/v1
//	concurrency: 4
//	poll_interval: 2s
//	staleness_timeout: 5m
//
//	snapshot_defaults:
//	  widths: [375, 1280]
//	  min_height: 1024
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// minPollInterval is the minimum allowed polling interval.
// This prevents accidental hammering of the API with overly aggressive
// polling.
const minPollInterval = 100 * time.Millisecond

const (
	defaultBaseURL          = "https://api.snapgate.io/v1"
	defaultConcurrency      = 2
	defaultPollInterval     = 1 * time.Second
	defaultStalenessTimeout = 10 * time.Minute
	defaultHTTPTimeout      = 30 * time.Second
)

// Config is the root configuration structure for the snapgate CLI.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Token is the API token. Supports environment variable
	// substitution: ${VAR} or ${VAR:-default}.
	Token string `yaml:"token"`

	// BaseURL is the API base URL. Defaults to the hosted service.
	// Supports environment variable substitution.
	BaseURL string `yaml:"base_url"`

	// Concurrency is the maximum number of concurrent resource uploads.
	// Defaults to 2.
	Concurrency int `yaml:"concurrency"`

	// PollInterval is the delay between build-state fetches while
	// waiting for completion. Accepts duration strings like "1s",
	// "500ms". Defaults to 1s.
	PollInterval Duration `yaml:"poll_interval"`

	// StalenessTimeout is how long a build may go without an observed
	// change before the wait fails. Defaults to 10m.
	StalenessTimeout Duration `yaml:"staleness_timeout"`

	// HTTPTimeout is the per-request HTTP timeout. Defaults to 30s.
	HTTPTimeout Duration `yaml:"http_timeout"`

	// SnapshotDefaults apply to snapshots created by the CLI.
	SnapshotDefaults SnapshotDefaults `yaml:"snapshot_defaults"`
}

// SnapshotDefaults are rendering defaults applied to CLI-created
// snapshots.
type SnapshotDefaults struct {
	// Widths are the viewport widths, in pixels, to render at.
	Widths []int `yaml:"widths"`

	// MinHeight is the minimum render height in pixels.
	MinHeight int `yaml:"min_height"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with
// environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in Token and BaseURL. Defaults are
// applied for every unset field.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = Duration(defaultPollInterval)
	}
	if cfg.StalenessTimeout == 0 {
		cfg.StalenessTimeout = Duration(defaultStalenessTimeout)
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = Duration(defaultHTTPTimeout)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Token == "" {
		return fmt.Errorf("token is required")
	}
	expanded, err := expandEnvVars(c.Token)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}
	c.Token = expanded

	expanded, err = expandEnvVars(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	c.BaseURL = expanded

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base_url scheme must be http or https, got %q", parsedURL.Scheme)
	}

	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}

	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}
	if c.StalenessTimeout.Duration() <= 0 {
		return fmt.Errorf("staleness_timeout must be positive, got %s", c.StalenessTimeout.Duration())
	}
	if c.StalenessTimeout.Duration() < c.PollInterval.Duration() {
		return fmt.Errorf("staleness_timeout (%s) must not be shorter than poll_interval (%s)",
			c.StalenessTimeout.Duration(), c.PollInterval.Duration())
	}
	if c.HTTPTimeout.Duration() <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", c.HTTPTimeout.Duration())
	}

	for i, w := range c.SnapshotDefaults.Widths {
		if w < 1 {
			return fmt.Errorf("snapshot_defaults.widths[%d]: width must be positive, got %d", i, w)
		}
	}
	if c.SnapshotDefaults.MinHeight < 0 {
		return fmt.Errorf("snapshot_defaults.min_height cannot be negative, got %d", c.SnapshotDefaults.MinHeight)
	}

	return nil
}
