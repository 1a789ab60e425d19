package reconcile

import "errors"

// Sentinel kinds for reconciliation errors. Identity and configuration
// conflicts are reported with the typed errors in package model.
var (
	ErrEmptyPrimarySource = errors.New("ADP source is empty")
	ErrInvalidRecord      = errors.New("invalid ranking record")
)
