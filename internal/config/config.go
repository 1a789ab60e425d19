// Package config defines the draft board configuration and its loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - Errors returned by this package match ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines on stderr.
	LogFormat string `koanf:"log_format"`

	// ADPBaseURL is the feed root; format and query are appended per run.
	ADPBaseURL string `koanf:"adp_base_url"`

	// ADPMode is json for the API feed or html for a scraped ADP table.
	ADPMode string `koanf:"adp_mode"`

	// Year is the season requested from the feed. Zero means the current year.
	Year int `koanf:"year"`

	// HTTPTimeoutMS bounds one feed request.
	HTTPTimeoutMS int `koanf:"http_timeout_ms"`

	// UserAgent is sent with feed requests.
	UserAgent string `koanf:"user_agent"`

	// SportsDataBaseURL is the SportsData.io API root for depth charts.
	SportsDataBaseURL string `koanf:"sportsdata_base_url"`

	// SportsDataKey enables depth charts. Empty falls back to SPORTSDATA_KEY,
	// and with neither set depth charts are skipped.
	SportsDataKey string `koanf:"sportsdata_key"`

	// RankingsDir holds {format}/{qb,rb,wr,te}.csv expert files.
	RankingsDir string `koanf:"rankings_dir"`

	// CacheDir stores raw feed bodies between runs.
	CacheDir string `koanf:"cache_dir"`

	// UseCache enables the feed cache.
	UseCache bool `koanf:"use_cache"`

	// CacheMaxAgeHours expires cached feeds. Zero keeps them until cleared.
	CacheMaxAgeHours int `koanf:"cache_max_age_hours"`

	// ProximityBand is the ADP distance inside which expert rank decides order.
	ProximityBand float64 `koanf:"proximity_band"`

	// AliasFile is an optional YAML file of extra name aliases.
	AliasFile string `koanf:"alias_file"`

	// Targets are players to highlight on the board.
	Targets []string `koanf:"targets"`

	// MetricsFile, when set, receives the run metrics in textfile format.
	MetricsFile string `koanf:"metrics_file"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		ADPBaseURL:        "https://fantasyfootballcalculator.com/api/v1/adp",
		ADPMode:           "json",
		HTTPTimeoutMS:     20_000,
		UserAgent:         "draftboard/1.0",
		SportsDataBaseURL: "https://api.sportsdata.io",
		RankingsDir:       "ffrd",
		CacheDir:          ".draftboard-cache",
		UseCache:          true,
		CacheMaxAgeHours:  24,
	}
}

// HTTPTimeout returns HTTPTimeoutMS as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutMS) * time.Millisecond
}

// CacheMaxAge returns CacheMaxAgeHours as a duration.
func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.CacheMaxAgeHours) * time.Hour
}
