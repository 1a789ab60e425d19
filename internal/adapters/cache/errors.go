package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrRead  = errors.New("cache read failed")
	ErrWrite = errors.New("cache write failed")
	ErrClear = errors.New("cache clear failed")
)
