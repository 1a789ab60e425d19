package model

import (
	"strconv"
	"strings"
)

// ScoringFormat is the league scoring rule set a ranking was produced under.
type ScoringFormat string

// Supported scoring formats. FormatNone marks scoring-agnostic sources (ADP).
const (
	FormatNone     ScoringFormat = ""
	FormatPPR      ScoringFormat = "ppr"
	FormatHalfPPR  ScoringFormat = "half-ppr"
	FormatStandard ScoringFormat = "standard"
)

// ScoringFormats lists the formats accepted on the command line.
var ScoringFormats = []ScoringFormat{FormatPPR, FormatHalfPPR, FormatStandard}

// PlayerCounts lists the league sizes the ADP feed publishes.
var PlayerCounts = []int{8, 10, 12, 14}

// String returns the shorthand used in URLs and folder names.
func (f ScoringFormat) String() string {
	if f == FormatNone {
		return "none"
	}
	return string(f)
}

// ParseScoringFormat accepts ppr, half-ppr or standard (case-insensitive).
func ParseScoringFormat(s string) (ScoringFormat, error) {
	v := ScoringFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, f := range ScoringFormats {
		if v == f {
			return f, nil
		}
	}
	return FormatNone, &UnsupportedScoringFormatError{Value: s}
}

// ValidatePlayerCount fails with UnsupportedPlayerCountError unless n is one
// of PlayerCounts.
func ValidatePlayerCount(n int) error {
	for _, c := range PlayerCounts {
		if n == c {
			return nil
		}
	}
	return &UnsupportedPlayerCountError{Value: n}
}

// ParsePlayerCount parses and validates a player count given as text.
func ParsePlayerCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &UnsupportedPlayerCountError{Value: 0, Raw: s}
	}
	if err := ValidatePlayerCount(n); err != nil {
		return 0, err
	}
	return n, nil
}

// Settings is the explicit run configuration every adapter, the reconciler
// and the assembler are built from.
type Settings struct {
	ScoringFormat ScoringFormat
	PlayerCount   int
}

// NewSettings validates both values before any source is touched.
func NewSettings(format string, playerCount int) (Settings, error) {
	f, err := ParseScoringFormat(format)
	if err != nil {
		return Settings{}, err
	}
	if err := ValidatePlayerCount(playerCount); err != nil {
		return Settings{}, err
	}
	return Settings{ScoringFormat: f, PlayerCount: playerCount}, nil
}
