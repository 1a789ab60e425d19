package identity

import "errors"

// Sentinel kinds for identity errors.
var (
	ErrAliasFile = errors.New("alias file")
)
