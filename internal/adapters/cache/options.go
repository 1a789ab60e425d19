package cache

import "time"

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithMaxAge treats entries older than d as missing. Zero keeps entries forever.
func WithMaxAge(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.maxAge = d
		}
	}
}

// WithPretty toggles indenting JSON bodies on write.
func WithPretty(pretty bool) Option {
	return func(s *Store) {
		s.pretty = pretty
	}
}

// WithClock overrides the time source used for max age checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}
