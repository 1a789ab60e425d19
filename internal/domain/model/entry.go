package model

import (
	"cmp"
	"encoding/json"
	"strconv"
)

// Rank is a rank that a source either supplied or did not.
type Rank struct {
	value   float64
	present bool
}

// PresentRank wraps a rank supplied by a source.
func PresentRank(v float64) Rank { return Rank{value: v, present: true} }

// AbsentRank is the rank of a player the source does not list.
func AbsentRank() Rank { return Rank{} }

// Value returns the rank and whether it is present.
func (r Rank) Value() (float64, bool) { return r.value, r.present }

// Present reports whether the source listed the player.
func (r Rank) Present() bool { return r.present }

func (r Rank) String() string {
	if !r.present {
		return "-"
	}
	return strconv.FormatFloat(r.value, 'f', -1, 64)
}

// MarshalJSON encodes an absent rank as null.
func (r Rank) MarshalJSON() ([]byte, error) {
	if !r.present {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

// compareRank orders present ranks before absent ones, then ascending.
func compareRank(a, b Rank) int {
	switch {
	case a.present && !b.present:
		return -1
	case !a.present && b.present:
		return 1
	case !a.present && !b.present:
		return 0
	}
	return cmp.Compare(a.value, b.value)
}

// Backing says which sources an entry was built from.
type Backing int

const (
	BackingADPAndExpert Backing = iota + 1
	BackingADPOnly
	BackingExpertOnly
)

func (b Backing) String() string {
	switch b {
	case BackingADPAndExpert:
		return "adp+expert"
	case BackingADPOnly:
		return "adp"
	case BackingExpertOnly:
		return "expert"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the backing by name.
func (b Backing) MarshalJSON() ([]byte, error) { return json.Marshal(b.String()) }

// Entry is one reconciled player. Entries are values; the reconciler never
// changes one after its composite score is set.
type Entry struct {
	Key       string             `json:"key"`
	Name      string             `json:"name"`
	Position  Position           `json:"position"`
	Team      string             `json:"team,omitempty"`
	Bye       int                `json:"bye,omitempty"`
	ADP       Rank               `json:"adp"`
	Expert    Rank               `json:"expert_rank"`
	Analysts  map[string]float64 `json:"analysts,omitempty"`
	Composite float64            `json:"composite"`
	Backing   Backing            `json:"backing"`
	Depth     *Depth             `json:"depth,omitempty"`
}

// Depth is a player's slot on the team depth chart. Order counts from 1 for
// the starter at the player's own position.
type Depth struct {
	Order        int `json:"order"`
	DisplayOrder int `json:"display_order"`
}

// Label renders the slot as RB1. A nil depth renders as "-".
func (d *Depth) Label(pos Position) string {
	if d == nil || d.Order <= 0 {
		return "-"
	}
	return string(pos) + strconv.Itoa(d.Order)
}

// CompareEntries is the board order: composite score, then expert rank
// (present before absent, lower first), raw ADP, name, position, team and
// finally the key, which is unique per entry.
func CompareEntries(a, b Entry) int {
	if c := cmp.Compare(a.Composite, b.Composite); c != 0 {
		return c
	}
	if c := compareRank(a.Expert, b.Expert); c != 0 {
		return c
	}
	if c := compareRank(a.ADP, b.ADP); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Position, b.Position); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Team, b.Team); c != 0 {
		return c
	}
	return cmp.Compare(a.Key, b.Key)
}
