package board

import "errors"

// Sentinel kinds for board errors.
var (
	ErrOrderViolation = errors.New("board order is not strict")
)
