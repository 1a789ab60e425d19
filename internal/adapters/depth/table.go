package depth

import (
	"github.com/okian/draftboard/internal/domain/identity"
	"github.com/okian/draftboard/internal/domain/model"
)

type slot struct {
	team  string
	depth model.Depth
}

// Table indexes depth chart slots by normalized name and position.
type Table struct {
	slots map[string][]slot
}

// NewTable keys players through n so aliases and suffixes resolve the same
// way they do for rankings. Players without a depth order are skipped.
func NewTable(players []Player, n *identity.Normalizer) *Table {
	if n == nil {
		n = identity.New()
	}
	t := &Table{slots: make(map[string][]slot)}
	for _, p := range players {
		if p.DepthOrder == nil || *p.DepthOrder <= 0 {
			continue
		}
		key := n.Normalize(p.Name, model.ParsePosition(p.Position), p.Team)
		if key.Name == "" || !key.Position.Known() {
			continue
		}
		d := model.Depth{Order: *p.DepthOrder}
		if p.DepthDisplayOrder != nil {
			d.DisplayOrder = *p.DepthDisplayOrder
		}
		t.slots[key.String()] = append(t.slots[key.String()], slot{team: identity.NormalizeTeam(p.Team), depth: d})
	}
	return t
}

// Len is the number of distinct name and position keys.
func (t *Table) Len() int { return len(t.slots) }

// Lookup finds the slot for key. With a team, only that team's player
// matches. Without one, the name must be unique at the position.
func (t *Table) Lookup(key identity.Key, team string) (model.Depth, bool) {
	slots := t.slots[identity.Key{Name: key.Name, Position: key.Position}.String()]
	if team = identity.NormalizeTeam(team); team != "" {
		for _, s := range slots {
			if s.team == team {
				return s.depth, true
			}
		}
		return model.Depth{}, false
	}
	if len(slots) != 1 {
		return model.Depth{}, false
	}
	return slots[0].depth, true
}
