package render

import "errors"

// Sentinel kinds for render errors.
var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrNilBoard      = errors.New("nil board")
	ErrEncode        = errors.New("board encoding failed")
)
