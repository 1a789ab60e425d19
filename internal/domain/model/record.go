// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Source identifies which feed produced a record.
type Source int

const (
	SourceADP Source = iota + 1
	SourceExpert
)

func (s Source) String() string {
	switch s {
	case SourceADP:
		return "adp"
	case SourceExpert:
		return "expert"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Position is a roster slot abbreviation. PositionUnknown is used when a
// source omits it.
type Position string

const (
	PositionUnknown Position = ""
	PositionQB      Position = "QB"
	PositionRB      Position = "RB"
	PositionWR      Position = "WR"
	PositionTE      Position = "TE"
	PositionK       Position = "K"
	PositionDEF     Position = "DEF"
)

// ParsePosition maps source spellings (PK, D/ST, DST) to a Position. Values it
// does not recognize are upper-cased and kept as-is.
func ParsePosition(s string) Position {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch v {
	case "":
		return PositionUnknown
	case "PK", "K":
		return PositionK
	case "DEF", "DST", "D/ST", "D", "DEFENSE":
		return PositionDEF
	default:
		return Position(v)
	}
}

// Known reports whether the source supplied a position.
func (p Position) Known() bool { return p != PositionUnknown }

// RawRecord is one row from a single source, already decoded by an adapter.
type RawRecord struct {
	Source        Source
	RawName       string
	Position      Position
	Team          string
	RankValue     float64
	ScoringFormat ScoringFormat
	PlayerCount   int

	// Bye is the bye week reported by the ADP feed, 0 when absent.
	Bye int
	// Analysts carries individual analyst ranks from expert files.
	Analysts map[string]float64
	// Origin is a file:line or URL used in error messages.
	Origin string
}

// Describe renders the record for error messages.
func (r RawRecord) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q", r.Source, r.RawName)
	if r.Position.Known() {
		fmt.Fprintf(&b, " %s", r.Position)
	}
	if r.Team != "" {
		fmt.Fprintf(&b, " %s", r.Team)
	}
	fmt.Fprintf(&b, " rank=%g", r.RankValue)
	if r.Origin != "" {
		fmt.Fprintf(&b, " (%s)", r.Origin)
	}
	return b.String()
}
