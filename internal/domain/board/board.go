// Package board orders reconciled entries into the draft board and splits
// it into rounds.
package board

import (
	"fmt"
	"slices"

	"github.com/okian/draftboard/internal/domain/model"
)

// Assemble sorts entries into board order and numbers rounds of playerCount
// picks. The player count is checked before anything else.
func Assemble(entries []model.Entry, playerCount int, opts ...Option) (*model.Board, error) {
	if err := model.ValidatePlayerCount(playerCount); err != nil {
		return nil, err
	}

	a := &assembler{}
	for _, opt := range opts {
		opt(a)
	}

	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, model.CompareEntries)
	for i := 1; i < len(sorted); i++ {
		if model.CompareEntries(sorted[i-1], sorted[i]) >= 0 {
			return nil, fmt.Errorf("%w: %q and %q at picks %d and %d",
				ErrOrderViolation, sorted[i-1].Key, sorted[i].Key, i, i+1)
		}
	}

	b := &model.Board{
		PlayerCount: playerCount,
		Slots:       make([]model.Slot, len(sorted)),
	}
	for i, e := range sorted {
		b.Slots[i] = model.Slot{
			Overall: i + 1,
			Round:   i/playerCount + 1,
			Pick:    i%playerCount + 1,
			Target:  a.targets[e.Key] || a.targetNames[nameOf(e.Key)],
			Entry:   e,
		}
	}
	return b, nil
}
