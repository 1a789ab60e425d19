package adp

import "errors"

// Sentinel kinds for ADP feed errors.
var (
	ErrFetch      = errors.New("ADP fetch failed")
	ErrFeedStatus = errors.New("ADP feed returned a failure status")
	ErrParse      = errors.New("ADP feed could not be parsed")
	ErrEmptyFeed  = errors.New("ADP feed has no players")

	ErrBodyTooLarge = errors.New("ADP feed body too large")
)
