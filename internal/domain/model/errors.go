package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds for this package. Typed errors below match them with
// errors.Is so callers can branch without errors.As.
var (
	ErrSourceMismatch           = errors.New("source mismatch")
	ErrAmbiguousIdentity        = errors.New("ambiguous identity")
	ErrUnsupportedPlayerCount   = errors.New("unsupported player count")
	ErrUnsupportedScoringFormat = errors.New("unsupported scoring format")
	ErrMissingOptionalSource    = errors.New("optional source missing")
)

// SourceMismatchError reports a record generated under a scoring format or
// player count other than the run's.
type SourceMismatchError struct {
	Record   RawRecord
	Field    string
	Got      string
	Expected string
}

func (e *SourceMismatchError) Error() string {
	return fmt.Sprintf("%s record %q: %s is %s, run expects %s",
		e.Record.Source, e.Record.RawName, e.Field, e.Got, e.Expected)
}

func (e *SourceMismatchError) Unwrap() error { return ErrSourceMismatch }

// AmbiguousIdentityError reports records that cannot be resolved to a single
// player without guessing.
type AmbiguousIdentityError struct {
	Name       string
	Reason     string
	Candidates []RawRecord
}

func (e *AmbiguousIdentityError) Error() string {
	parts := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		parts = append(parts, c.Describe())
	}
	return fmt.Sprintf("ambiguous player %q: %s [%s]", e.Name, e.Reason, strings.Join(parts, "; "))
}

func (e *AmbiguousIdentityError) Unwrap() error { return ErrAmbiguousIdentity }

// UnsupportedPlayerCountError reports a league size the ADP feed does not publish.
type UnsupportedPlayerCountError struct {
	Value int
	Raw   string
}

func (e *UnsupportedPlayerCountError) Error() string {
	if e.Raw != "" {
		return fmt.Sprintf("unsupported player count %q: must be one of %v", e.Raw, PlayerCounts)
	}
	return fmt.Sprintf("unsupported player count %d: must be one of %v", e.Value, PlayerCounts)
}

func (e *UnsupportedPlayerCountError) Unwrap() error { return ErrUnsupportedPlayerCount }

// UnsupportedScoringFormatError reports an unknown scoring format shorthand.
type UnsupportedScoringFormatError struct {
	Value string
}

func (e *UnsupportedScoringFormatError) Error() string {
	return fmt.Sprintf("unsupported scoring format %q: must be one of %v", e.Value, ScoringFormats)
}

func (e *UnsupportedScoringFormatError) Unwrap() error { return ErrUnsupportedScoringFormat }

// MissingOptionalSourceError lists expert ranking files that were not found.
// It is informational: the board falls back to ADP-only ordering.
type MissingOptionalSourceError struct {
	Paths []string
}

func (e *MissingOptionalSourceError) Error() string {
	return "expert rankings not found: " + strings.Join(e.Paths, ", ")
}

func (e *MissingOptionalSourceError) Unwrap() error { return ErrMissingOptionalSource }
