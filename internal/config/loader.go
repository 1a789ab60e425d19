package config

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvConfigFile = "DRAFTBOARD_CONFIG"
	EnvPrefix     = "DRAFTBOARD_"

	// EnvSportsDataKey is read when sportsdata_key is not configured.
	EnvSportsDataKey = "SPORTSDATA_KEY"
)

// listKeys are the env keys holding comma-separated lists.
var listKeys = []string{"targets"}

// SplitList splits a comma-separated list, trimming blanks and dropping
// empty items.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if DRAFTBOARD_CONFIG is set
//  3. env (prefix DRAFTBOARD_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// DRAFTBOARD_RANKINGS_DIR -> rankings_dir. Underscores are kept to match
	// the flat koanf tags. List keys are comma-separated.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if slices.Contains(listKeys, key) {
			return key, SplitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if cfg.SportsDataKey == "" {
		cfg.SportsDataKey = os.Getenv(EnvSportsDataKey)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch {
	case !slices.Contains([]string{"", "debug", "info", "warn", "warning", "error"}, strings.ToLower(c.LogLevel)):
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q must be text or json", ErrInvalidConfig, c.LogFormat)
	case c.ADPBaseURL == "":
		return fmt.Errorf("%w: adp_base_url must not be empty", ErrInvalidConfig)
	case c.ADPMode != "json" && c.ADPMode != "html":
		return fmt.Errorf("%w: adp_mode %q must be json or html", ErrInvalidConfig, c.ADPMode)
	case c.Year < 0:
		return fmt.Errorf("%w: year %d", ErrInvalidConfig, c.Year)
	case c.HTTPTimeoutMS <= 0:
		return fmt.Errorf("%w: http_timeout_ms must be positive", ErrInvalidConfig)
	case c.RankingsDir == "":
		return fmt.Errorf("%w: rankings_dir must not be empty", ErrInvalidConfig)
	case c.UseCache && c.CacheDir == "":
		return fmt.Errorf("%w: cache_dir must be set when use_cache is on", ErrInvalidConfig)
	case c.CacheMaxAgeHours < 0:
		return fmt.Errorf("%w: cache_max_age_hours must not be negative", ErrInvalidConfig)
	case c.ProximityBand < 0:
		return fmt.Errorf("%w: proximity_band must not be negative", ErrInvalidConfig)
	}
	return nil
}
