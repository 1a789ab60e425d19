package model

// Slot is one position on the board.
type Slot struct {
	Overall int   `json:"overall"`
	Round   int   `json:"round"`
	Pick    int   `json:"pick"`
	Target  bool  `json:"target,omitempty"`
	Entry   Entry `json:"player"`
}

// Board is the fully materialised draft board in pick order.
type Board struct {
	PlayerCount int    `json:"player_count"`
	Slots       []Slot `json:"slots"`
}

// Len returns the number of players on the board.
func (b *Board) Len() int { return len(b.Slots) }

// RoundCount returns the number of (possibly short) rounds.
func (b *Board) RoundCount() int {
	if b.PlayerCount <= 0 || len(b.Slots) == 0 {
		return 0
	}
	return (len(b.Slots) + b.PlayerCount - 1) / b.PlayerCount
}

// Rounds splits the slots into consecutive rounds. The returned slices share
// the board's backing array.
func (b *Board) Rounds() [][]Slot {
	if b.PlayerCount <= 0 {
		return nil
	}
	out := make([][]Slot, 0, b.RoundCount())
	for start := 0; start < len(b.Slots); start += b.PlayerCount {
		end := min(start+b.PlayerCount, len(b.Slots))
		out = append(out, b.Slots[start:end])
	}
	return out
}

// ByPosition returns the skill-position columns (QB, RB, WR, TE) in board
// order. Kickers and defenses are left out.
func (b *Board) ByPosition() map[Position][]Slot {
	out := map[Position][]Slot{
		PositionQB: {},
		PositionRB: {},
		PositionWR: {},
		PositionTE: {},
	}
	for _, s := range b.Slots {
		if col, ok := out[s.Entry.Position]; ok {
			out[s.Entry.Position] = append(col, s)
		}
	}
	return out
}
