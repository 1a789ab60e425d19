package config

import (
	"errors"
)

// Sentinel error kinds for configuration. Load wraps every failure in one of
// these so callers can tell a bad file apart from a bad value.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
