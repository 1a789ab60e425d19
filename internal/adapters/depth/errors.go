package depth

import "errors"

// Sentinel kinds for depth chart errors.
var (
	ErrNoAPIKey = errors.New("no SportsData.io API key configured")
	ErrFetch    = errors.New("depth chart fetch failed")
	ErrParse    = errors.New("depth chart could not be parsed")
)
