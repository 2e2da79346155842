// Package config loads epicgantt settings from the environment, an optional
// .env file and an optional epicgantt.yaml in the working directory.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. EPICGANTT_PAGE_SIZE.
const EnvPrefix = "EPICGANTT"

// DefaultBaseURL is the Pivotal Tracker v5 REST endpoint.
const DefaultBaseURL = "https://www.pivotaltracker.com/services/v5"

// ErrInvalidConfig indicates a setting outside its allowed range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds runtime settings. The API token is obtained separately via auth.
type Config struct {
	BaseURL           string        `mapstructure:"base_url"`
	PageSize          int           `mapstructure:"page_size"`
	MaxConcurrency    int           `mapstructure:"max_concurrency"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	DateFormat        string        `mapstructure:"date_format"`
	GanttSkipMarker   string        `mapstructure:"gantt_skip_marker"`
	TextSkipMarker    string        `mapstructure:"text_skip_marker"`
	WrapWidth         int           `mapstructure:"wrap_width"`
	Summary           bool          `mapstructure:"summary"`
	LogLevel          string        `mapstructure:"log_level"`
	LogJSON           bool          `mapstructure:"log_json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BaseURL:           DefaultBaseURL,
		PageSize:          100,
		MaxConcurrency:    8,
		RequestsPerSecond: 10,
		DateFormat:        "2006-01-02",
		GanttSkipMarker:   "*SKIP_GANTT*",
		TextSkipMarker:    "*SKIP_TEXT*",
		WrapWidth:         100,
		Summary:           true,
		LogLevel:          "info",
	}
}

// Load reads ./.env (if present) into the process environment, then layers
// epicgantt.yaml and EPICGANTT_* variables over the defaults.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFrom(".")
}

// LoadFrom is Load without the .env step, searching dir for epicgantt.yaml.
func LoadFrom(dir string) (Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("page_size", def.PageSize)
	v.SetDefault("max_concurrency", def.MaxConcurrency)
	v.SetDefault("requests_per_second", def.RequestsPerSecond)
	v.SetDefault("request_timeout", def.RequestTimeout)
	v.SetDefault("date_format", def.DateFormat)
	v.SetDefault("gantt_skip_marker", def.GanttSkipMarker)
	v.SetDefault("text_skip_marker", def.TextSkipMarker)
	v.SetDefault("wrap_width", def.WrapWidth)
	v.SetDefault("summary", def.Summary)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_json", def.LogJSON)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("epicgantt")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges that would otherwise fail deep inside a run.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base_url is empty", ErrInvalidConfig)
	case c.PageSize <= 0:
		return fmt.Errorf("%w: page_size must be positive, got %d", ErrInvalidConfig, c.PageSize)
	case c.MaxConcurrency <= 0:
		return fmt.Errorf("%w: max_concurrency must be positive, got %d", ErrInvalidConfig, c.MaxConcurrency)
	case c.RequestsPerSecond < 0:
		return fmt.Errorf("%w: requests_per_second must not be negative", ErrInvalidConfig)
	case c.DateFormat == "":
		return fmt.Errorf("%w: date_format is empty", ErrInvalidConfig)
	case c.WrapWidth < 0:
		return fmt.Errorf("%w: wrap_width must not be negative", ErrInvalidConfig)
	}
	return nil
}
