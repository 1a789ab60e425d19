package expert

import "errors"

// Sentinel kinds for expert ranking errors.
var (
	ErrBadHeader = errors.New("expert rankings: bad header")
	ErrBadRow    = errors.New("expert rankings: bad row")
	ErrRead      = errors.New("expert rankings: read failed")
)
