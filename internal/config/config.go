// Package config loads KnowledgeHub client settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prefix is the environment prefix for every setting, e.g. KNOWHUB_API_URL.
const Prefix = "KNOWHUB"

// Config holds the configuration of a KnowledgeHub client process.
// Environment variables are automatically parsed from the KNOWHUB_ prefix.
type Config struct {
	// Backend
	APIURL      string        `envconfig:"API_URL" default:"http://localhost:8080/api"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// Retries for idempotent article reads
	RetryAttempts int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryBase     time.Duration `envconfig:"RETRY_BASE" default:"200ms"`

	// Interaction timing
	SearchDebounce  time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"400ms"`
	CopiedIndicator time.Duration `envconfig:"COPIED_INDICATOR" default:"2s"`

	// Session persistence; empty keeps the session in memory only
	SessionPath string `envconfig:"SESSION_PATH" default:""`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

// Validate checks ranges and normalises the API URL.
func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API_URL: %q", c.APIURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be >= 1")
	}
	if c.RetryBase <= 0 {
		return fmt.Errorf("RETRY_BASE must be > 0")
	}
	if c.SearchDebounce < 0 || c.CopiedIndicator < 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE and COPIED_INDICATOR must not be negative")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the zerolog level for LogLevel; Debug forces debug.
func (c *Config) Level() (zerolog.Level, error) {
	if c.Debug {
		return zerolog.DebugLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// New creates a Config by parsing environment variables prefixed with KNOWHUB_.
// Example: KNOWHUB_API_URL, KNOWHUB_SEARCH_DEBOUNCE
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("api_url", cfg.APIURL).
		Dur("http_timeout", cfg.HTTPTimeout).
		Int("retry_attempts", cfg.RetryAttempts).
		Dur("retry_base", cfg.RetryBase).
		Dur("search_debounce", cfg.SearchDebounce).
		Dur("copied_indicator", cfg.CopiedIndicator).
		Bool("session_persisted", cfg.SessionPath != "").
		Str("log_level", cfg.LogLevel).
		Bool("debug", cfg.Debug).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		APIURL:          "http://localhost:8080/api",
		HTTPTimeout:     5 * time.Second,
		RetryAttempts:   1,
		RetryBase:       time.Millisecond,
		SearchDebounce:  400 * time.Millisecond,
		CopiedIndicator: 2 * time.Second,
		LogLevel:        "debug",
	}
}
