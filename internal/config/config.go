// Package config reads notehub settings from the environment. Values are read
// once at startup; CLI flags may override them before use.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAPIURL   = "https://notehub-public.goit.study/api"
	DefaultPerPage  = 12
	DefaultTimeout  = 30 * time.Second
	DefaultLogLevel = "info"
	DefaultTheme    = "classic"
)

// Config holds all application configuration.
type Config struct {
	APIURL  string
	Token   string // without the "Bearer " prefix
	PerPage int
	Timeout time.Duration

	// Client-side request pacing; RateLimit <= 0 disables it.
	RateLimit float64
	RateBurst int

	LogFile  string
	LogLevel string
	Theme    string
}

// ValidationError lists every invalid setting.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Load reads the NOTEHUB_* environment variables and validates them.
func Load() (*Config, error) {
	var problems []string

	cfg := &Config{
		APIURL:   getEnvOrDefault("NOTEHUB_API_URL", DefaultAPIURL),
		Token:    StripBearer(strings.TrimSpace(os.Getenv("NOTEHUB_TOKEN"))),
		LogFile:  strings.TrimSpace(os.Getenv("NOTEHUB_LOG_FILE")),
		LogLevel: getEnvOrDefault("NOTEHUB_LOG_LEVEL", DefaultLogLevel),
		Theme:    getEnvOrDefault("NOTEHUB_THEME", DefaultTheme),
	}

	var err error
	if cfg.PerPage, err = parseIntOrDefault("NOTEHUB_PER_PAGE", DefaultPerPage); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.Timeout, err = parseDurationOrDefault("NOTEHUB_TIMEOUT", DefaultTimeout); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.RateLimit, err = parseFloat64OrDefault("NOTEHUB_RATE_LIMIT", 0); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.RateBurst, err = parseIntOrDefault("NOTEHUB_RATE_BURST", 1); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Errors: problems}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. Call it again after applying flag overrides.
func (c *Config) Validate() error {
	var problems []string

	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("NOTEHUB_API_URL must be an absolute http(s) URL, got %q", c.APIURL))
	}
	if c.PerPage < 1 {
		problems = append(problems, fmt.Sprintf("NOTEHUB_PER_PAGE must be at least 1, got %d", c.PerPage))
	}
	if c.Timeout <= 0 {
		problems = append(problems, fmt.Sprintf("NOTEHUB_TIMEOUT must be positive, got %s", c.Timeout))
	}
	if c.RateLimit < 0 {
		problems = append(problems, fmt.Sprintf("NOTEHUB_RATE_LIMIT must not be negative, got %g", c.RateLimit))
	}
	if c.RateBurst < 1 {
		problems = append(problems, fmt.Sprintf("NOTEHUB_RATE_BURST must be at least 1, got %d", c.RateBurst))
	}
	switch strings.ToLower(c.Theme) {
	case "classic", "neon", "mono":
	default:
		problems = append(problems, fmt.Sprintf("NOTEHUB_THEME must be classic, neon or mono, got %q", c.Theme))
	}

	if len(problems) > 0 {
		return &ValidationError{Errors: problems}
	}
	return nil
}

// StripBearer removes a leading, case-insensitive "Bearer " from a token.
func StripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}

func getEnvOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseIntOrDefault(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func parseFloat64OrDefault(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return f, nil
}

func parseDurationOrDefault(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("%s must be a duration like 30s, got %q", key, v)
	}
	return d, nil
}
