// Package config loads the catalogue client configuration.
//
// Values are resolved in this order, later sources winning:
//
//  1. Defaults
//  2. YAML file (--config)
//  3. Environment, including variables from a .env file
//  4. Command line flags (applied by the caller)
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/thoth-catalogue/pkg/debounce"
	"github.com/Sternrassler/thoth-catalogue/pkg/graphql"
	"github.com/Sternrassler/thoth-catalogue/pkg/listing"
	"github.com/Sternrassler/thoth-catalogue/pkg/logging"
)

const (
	// DefaultGraphQLURL is the public Thoth GraphQL endpoint.
	DefaultGraphQLURL = "https://api.thoth.pub/graphql"

	// DefaultExportURL is the public Thoth export API.
	DefaultExportURL = "https://export.thoth.pub"

	// DefaultUserAgent identifies the client to the API.
	DefaultUserAgent = "thoth-catalogue/1.0"

	// MaxPageSize bounds the listing window.
	MaxPageSize = 500
)

// Environment variable names.
const (
	EnvGraphQLURL     = "THOTH_GRAPHQL_API"
	EnvExportURL      = "THOTH_EXPORT_API"
	EnvPageSize       = "THOTH_PAGE_SIZE"
	EnvDebounce       = "THOTH_DEBOUNCE"
	EnvRequestTimeout = "THOTH_REQUEST_TIMEOUT"
	EnvUserAgent      = "THOTH_USER_AGENT"
	EnvRateLimit      = "THOTH_RATE_LIMIT"
	EnvPublishers     = "THOTH_PUBLISHERS"
	EnvRedisURL       = "REDIS_URL"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogPretty      = "LOG_PRETTY"
	EnvLogFile        = "LOG_FILE"
	EnvMetricsAddr    = "METRICS_ADDR"
)

// Config is the resolved client configuration.
type Config struct {
	GraphQLURL     string        `yaml:"graphql_api"`
	ExportURL      string        `yaml:"export_api"`
	PageSize       int           `yaml:"page_size"`
	Debounce       time.Duration `yaml:"debounce"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UserAgent      string        `yaml:"user_agent"`

	// RateLimit is the client-side pace in requests per second (0 = unlimited).
	RateLimit float64 `yaml:"rate_limit"`

	// Publishers restricts listings to these publisher IDs.
	Publishers []string `yaml:"publishers"`

	// RedisURL enables the shared rate-limit store, e.g. "redis://localhost:6379/0".
	RedisURL string `yaml:"redis_url"`

	LogLevel    string `yaml:"log_level"`
	LogPretty   bool   `yaml:"log_pretty"`
	LogFile     string `yaml:"log_file"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		GraphQLURL:     DefaultGraphQLURL,
		ExportURL:      DefaultExportURL,
		PageSize:       listing.DefaultPageSize,
		Debounce:       debounce.DefaultDelay,
		RequestTimeout: 30 * time.Second,
		UserAgent:      DefaultUserAgent,
		RateLimit:      10,
		LogLevel:       string(logging.LevelInfo),
	}
}

// Load resolves defaults, the YAML file at path (skipped when empty) and the
// environment. The result is not validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// LoadDotEnv exports the variables of a .env file into the process
// environment. Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvGraphQLURL, &c.GraphQLURL)
	str(EnvExportURL, &c.ExportURL)
	str(EnvUserAgent, &c.UserAgent)
	str(EnvRedisURL, &c.RedisURL)
	str(EnvLogLevel, &c.LogLevel)
	str(EnvLogFile, &c.LogFile)
	str(EnvMetricsAddr, &c.MetricsAddr)

	if v, ok := lookup(EnvPageSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPageSize, err)
		}
		c.PageSize = n
	}
	if v, ok := lookup(EnvDebounce); ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebounce, err)
		}
		c.Debounce = d
	}
	if v, ok := lookup(EnvRequestTimeout); ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		c.RequestTimeout = d
	}
	if v, ok := lookup(EnvRateLimit); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateLimit, err)
		}
		c.RateLimit = f
	}
	if v, ok := lookup(EnvLogPretty); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLogPretty, err)
		}
		c.LogPretty = b
	}
	if v, ok := lookup(EnvPublishers); ok && v != "" {
		c.Publishers = SplitList(v)
	}

	return nil
}

// parseDuration accepts Go durations ("750ms") and bare milliseconds ("750").
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

// SplitList splits a comma separated list and drops empty entries.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error

	if err := validateURL("graphql api", c.GraphQLURL); err != nil {
		errs = append(errs, err)
	}
	if err := validateURL("export api", c.ExportURL); err != nil {
		errs = append(errs, err)
	}
	if c.PageSize <= 0 || c.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("page size must be between 1 and %d, got %d", MaxPageSize, c.PageSize))
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %s", c.Debounce))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit must not be negative, got %g", c.RateLimit))
	}
	if !logging.ValidLevel(logging.LogLevel(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	if c.RedisURL != "" {
		u, err := url.Parse(c.RedisURL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errs = append(errs, fmt.Errorf("invalid redis url %q", c.RedisURL))
		}
	}

	return errors.Join(errs...)
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s url is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s url %q", name, raw)
	}
	return nil
}

// Listing returns the list controller settings.
func (c Config) Listing() listing.Config {
	return listing.Config{
		PageSize:   c.PageSize,
		Debounce:   c.Debounce,
		Publishers: c.Publishers,
	}
}

// GraphQL returns the client settings for interactive use.
func (c Config) GraphQL() graphql.Config {
	cfg := graphql.DefaultConfig(c.GraphQLURL, c.UserAgent)
	cfg.Timeout = c.RequestTimeout
	cfg.RateLimit = c.RateLimit
	return cfg
}

// Logging returns the logger settings.
func (c Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.LogLevel)
	cfg.Pretty = c.LogPretty
	return cfg
}
