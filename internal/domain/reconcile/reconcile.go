// Package reconcile merges ADP and expert ranking records into one entry per
// player and assigns each entry the composite score the board is ordered by.
//
// Composite score policy:
//   - ADP present: ADP values are sorted and grouped into proximity clusters.
//     A cluster opens at an anchor value and absorbs following values no more
//     than the proximity band above it. Every member scores the anchor, so
//     inside a cluster the expert rank decides. A band of 0 only groups exact
//     ties.
//   - Expert only: the highest ADP value plus the expert rank, which places
//     the player after every ADP-tracked player, ordered by expert rank.
//
// Equal composite scores are ordered by model.CompareEntries.
package reconcile

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/draftboard/internal/domain/identity"
	"github.com/okian/draftboard/internal/domain/model"
)

// Reconciler is a pure transformation over already-loaded records.
type Reconciler struct {
	settings   model.Settings
	normalizer *identity.Normalizer
	band       float64
	depth      DepthChart
}

// DepthChart looks up a player's depth chart slot by name and position. team
// picks between same-name players and may be empty.
type DepthChart interface {
	Lookup(key identity.Key, team string) (model.Depth, bool)
}

// New creates a Reconciler for one run's settings.
func New(settings model.Settings, opts ...Option) *Reconciler {
	r := &Reconciler{
		settings: settings,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.normalizer == nil {
		r.normalizer = identity.New()
	}
	return r
}

// adpRow is an ADP record plus its resolved identity and any expert record
// matched to it.
type adpRow struct {
	rec    model.RawRecord
	key    identity.Key
	expert int // index into the expert slice, -1 when unmatched
}

// Reconcile merges both record sets. adp must be non-empty; expert may be
// empty, which yields an ADP-only board. The returned entries are in board
// order.
func (r *Reconciler) Reconcile(adp, expert []model.RawRecord) ([]model.Entry, error) {
	if len(adp) == 0 {
		return nil, ErrEmptyPrimarySource
	}
	for _, rec := range adp {
		if err := r.validate(rec, model.SourceADP); err != nil {
			return nil, err
		}
	}
	for _, rec := range expert {
		if err := r.validate(rec, model.SourceExpert); err != nil {
			return nil, err
		}
	}

	rows, err := r.indexADP(adp)
	if err != nil {
		return nil, err
	}
	expertKeys, err := r.keyExperts(expert)
	if err != nil {
		return nil, err
	}
	unmatched, err := r.match(rows, expert, expertKeys)
	if err != nil {
		return nil, err
	}

	entries := make([]model.Entry, 0, len(rows)+len(unmatched))
	maxADP := math.Inf(-1)
	for _, row := range rows {
		maxADP = max(maxADP, row.rec.RankValue)
		entries = append(entries, r.adpEntry(row, expert))
	}
	assignClusters(entries, r.band)

	for _, i := range unmatched {
		e := expertOnlyEntry(expert[i], expertKeys[i], maxADP)
		e.Depth = r.depthOf(expertKeys[i], e.Team)
		entries = append(entries, e)
	}

	seen := make(map[string]model.Entry, len(entries))
	for _, e := range entries {
		if prev, ok := seen[e.Key]; ok {
			return nil, &model.AmbiguousIdentityError{
				Name:   e.Name,
				Reason: fmt.Sprintf("two players resolve to key %s (%s and %s)", e.Key, prev.Name, e.Name),
			}
		}
		seen[e.Key] = e
	}

	slices.SortFunc(entries, model.CompareEntries)
	return entries, nil
}

func (r *Reconciler) validate(rec model.RawRecord, want model.Source) error {
	if rec.Source != want {
		return &model.SourceMismatchError{Record: rec, Field: "source", Got: rec.Source.String(), Expected: want.String()}
	}
	if strings.TrimSpace(rec.RawName) == "" {
		return fmt.Errorf("%w: empty player name: %s", ErrInvalidRecord, rec.Describe())
	}
	if math.IsNaN(rec.RankValue) || math.IsInf(rec.RankValue, 0) || rec.RankValue <= 0 {
		return fmt.Errorf("%w: rank must be a positive number: %s", ErrInvalidRecord, rec.Describe())
	}

	switch want {
	case model.SourceADP:
		if rec.PlayerCount != r.settings.PlayerCount {
			return &model.SourceMismatchError{Record: rec, Field: "player count",
				Got: strconv.Itoa(rec.PlayerCount), Expected: strconv.Itoa(r.settings.PlayerCount)}
		}
		if rec.ScoringFormat != model.FormatNone && rec.ScoringFormat != r.settings.ScoringFormat {
			return &model.SourceMismatchError{Record: rec, Field: "scoring format",
				Got: rec.ScoringFormat.String(), Expected: r.settings.ScoringFormat.String()}
		}
	case model.SourceExpert:
		if rec.ScoringFormat != r.settings.ScoringFormat {
			return &model.SourceMismatchError{Record: rec, Field: "scoring format",
				Got: rec.ScoringFormat.String(), Expected: r.settings.ScoringFormat.String()}
		}
		if rec.PlayerCount != 0 && rec.PlayerCount != r.settings.PlayerCount {
			return &model.SourceMismatchError{Record: rec, Field: "player count",
				Got: strconv.Itoa(rec.PlayerCount), Expected: strconv.Itoa(r.settings.PlayerCount)}
		}
	}
	return nil
}

// conflicts reports whether two same-name records could be the same player:
// equal positions, or one side without a position.
func conflicts(a, b model.RawRecord) bool {
	return a.Position == b.Position || !a.Position.Known() || !b.Position.Known()
}

// splitByTeam keys every record of a same-name group. Records that conflict
// with another member are qualified by team; if teams cannot tell them apart
// the group is ambiguous.
func splitByTeam(recs []model.RawRecord, keys []identity.Key, group []int, reason string) error {
	for _, i := range group {
		for _, j := range group {
			if i == j || !conflicts(recs[i], recs[j]) {
				continue
			}
			ti, tj := identity.NormalizeTeam(recs[i].Team), identity.NormalizeTeam(recs[j].Team)
			if ti == "" || tj == "" || ti == tj {
				return &model.AmbiguousIdentityError{
					Name:       recs[i].RawName,
					Reason:     reason,
					Candidates: []model.RawRecord{recs[i], recs[j]},
				}
			}
			keys[i] = keys[i].WithTeam(recs[i].Team)
		}
	}
	return nil
}

func (r *Reconciler) keyAll(recs []model.RawRecord, reason string) ([]identity.Key, error) {
	keys := make([]identity.Key, len(recs))
	byName := make(map[string][]int)
	var names []string
	for i, rec := range recs {
		keys[i] = r.normalizer.Normalize(rec.RawName, rec.Position, rec.Team)
		if _, ok := byName[keys[i].Name]; !ok {
			names = append(names, keys[i].Name)
		}
		byName[keys[i].Name] = append(byName[keys[i].Name], i)
	}
	for _, name := range names {
		if group := byName[name]; len(group) > 1 {
			if err := splitByTeam(recs, keys, group, reason); err != nil {
				return nil, err
			}
		}
	}
	return keys, nil
}

func (r *Reconciler) indexADP(adp []model.RawRecord) ([]adpRow, error) {
	keys, err := r.keyAll(adp, "listed more than once in the ADP feed")
	if err != nil {
		return nil, err
	}
	rows := make([]adpRow, len(adp))
	for i, rec := range adp {
		rows[i] = adpRow{rec: rec, key: keys[i], expert: -1}
	}
	return rows, nil
}

func (r *Reconciler) keyExperts(expert []model.RawRecord) ([]identity.Key, error) {
	return r.keyAll(expert, "listed more than once in the expert rankings")
}

// candidates returns the ADP rows an expert record may refer to: same name
// and same position, or, failing that, same name with no ADP position.
func candidates(rows []adpRow, byName map[string][]int, rec model.RawRecord, key identity.Key) []int {
	var exact, loose []int
	for _, i := range byName[key.Name] {
		switch {
		case rows[i].rec.Position == rec.Position:
			exact = append(exact, i)
		case !rows[i].rec.Position.Known() || !rec.Position.Known():
			loose = append(loose, i)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return loose
}

// byTeam narrows indices to those whose team equals team. It returns the
// input unchanged when team is empty.
func byTeam(idx []int, team string, teamOf func(int) string) []int {
	team = identity.NormalizeTeam(team)
	if team == "" {
		return idx
	}
	var out []int
	for _, i := range idx {
		if identity.NormalizeTeam(teamOf(i)) == team {
			out = append(out, i)
		}
	}
	return out
}

// match links expert records to ADP rows and returns the indices of expert
// records that no ADP row claims.
func (r *Reconciler) match(rows []adpRow, expert []model.RawRecord, keys []identity.Key) ([]int, error) {
	byName := make(map[string][]int)
	for i, row := range rows {
		byName[row.key.Name] = append(byName[row.key.Name], i)
	}
	adpTeam := func(i int) string { return rows[i].rec.Team }
	expertTeam := func(i int) string { return expert[i].Team }

	claims := make(map[int][]int)
	var unmatched []int
	for i, rec := range expert {
		cands := candidates(rows, byName, rec, keys[i])
		if len(cands) > 1 {
			cands = byTeam(cands, rec.Team, adpTeam)
		}
		switch len(cands) {
		case 0:
			unmatched = append(unmatched, i)
		case 1:
			claims[cands[0]] = append(claims[cands[0]], i)
		default:
			amb := &model.AmbiguousIdentityError{
				Name:       rec.RawName,
				Reason:     "matches several ADP players and no team breaks the tie",
				Candidates: []model.RawRecord{rec},
			}
			for _, c := range cands {
				amb.Candidates = append(amb.Candidates, rows[c].rec)
			}
			return nil, amb
		}
	}

	for row := range rows {
		claimants, ok := claims[row]
		if !ok {
			continue
		}
		winner := claimants[0]
		if len(claimants) > 1 {
			narrowed := byTeam(claimants, rows[row].rec.Team, expertTeam)
			if rows[row].rec.Team == "" || len(narrowed) != 1 {
				amb := &model.AmbiguousIdentityError{
					Name:       rows[row].rec.RawName,
					Reason:     "claimed by several expert players and no team picks one",
					Candidates: []model.RawRecord{rows[row].rec},
				}
				for _, c := range claimants {
					amb.Candidates = append(amb.Candidates, expert[c])
				}
				return nil, amb
			}
			winner = narrowed[0]
			for _, c := range claimants {
				if c != winner {
					keys[c] = keys[c].WithTeam(expert[c].Team)
					unmatched = append(unmatched, c)
				}
			}
			rows[row].key = rows[row].key.WithTeam(rows[row].rec.Team)
		}
		rows[row].expert = winner
		if !rows[row].key.Position.Known() {
			rows[row].key = rows[row].key.WithPosition(expert[winner].Position)
		}
	}
	slices.Sort(unmatched)
	return unmatched, nil
}

func (r *Reconciler) adpEntry(row adpRow, expert []model.RawRecord) model.Entry {
	e := model.Entry{
		Key:      row.key.String(),
		Name:     strings.TrimSpace(row.rec.RawName),
		Position: row.key.Position,
		Team:     identity.NormalizeTeam(row.rec.Team),
		Bye:      row.rec.Bye,
		ADP:      model.PresentRank(row.rec.RankValue),
		Expert:   model.AbsentRank(),
		Backing:  model.BackingADPOnly,
	}
	if row.expert >= 0 {
		ex := expert[row.expert]
		e.Expert = model.PresentRank(ex.RankValue)
		e.Analysts = copyAnalysts(ex.Analysts)
		e.Backing = model.BackingADPAndExpert
		if e.Team == "" {
			e.Team = identity.NormalizeTeam(ex.Team)
		}
	}
	e.Depth = r.depthOf(row.key, e.Team)
	return e
}

func (r *Reconciler) depthOf(key identity.Key, team string) *model.Depth {
	if r.depth == nil {
		return nil
	}
	d, ok := r.depth.Lookup(identity.Key{Name: key.Name, Position: key.Position}, team)
	if !ok {
		return nil
	}
	return &d
}

func expertOnlyEntry(rec model.RawRecord, key identity.Key, maxADP float64) model.Entry {
	return model.Entry{
		Key:       key.String(),
		Name:      strings.TrimSpace(rec.RawName),
		Position:  rec.Position,
		Team:      identity.NormalizeTeam(rec.Team),
		ADP:       model.AbsentRank(),
		Expert:    model.PresentRank(rec.RankValue),
		Analysts:  copyAnalysts(rec.Analysts),
		Composite: maxADP + rec.RankValue,
		Backing:   model.BackingExpertOnly,
	}
}

// assignClusters sets Composite on ADP-backed entries to their cluster anchor.
func assignClusters(entries []model.Entry, band float64) {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	adpOf := func(i int) float64 {
		v, _ := entries[i].ADP.Value()
		return v
	}
	slices.SortStableFunc(order, func(a, b int) int {
		va, vb := adpOf(a), adpOf(b)
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		}
		return strings.Compare(entries[a].Key, entries[b].Key)
	})

	anchor := math.Inf(-1)
	for _, i := range order {
		v := adpOf(i)
		if v-anchor > band {
			anchor = v
		}
		entries[i].Composite = anchor
	}
}

func copyAnalysts(in map[string]float64) map[string]float64 {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Summary counts entries by how they were backed.
type Summary struct {
	Total      int
	Matched    int
	ADPOnly    int
	ExpertOnly int
	WithDepth  int
}

// Summarize counts reconciled entries by backing.
func Summarize(entries []model.Entry) Summary {
	s := Summary{Total: len(entries)}
	for _, e := range entries {
		switch e.Backing {
		case model.BackingADPAndExpert:
			s.Matched++
		case model.BackingADPOnly:
			s.ADPOnly++
		case model.BackingExpertOnly:
			s.ExpertOnly++
		}
		if e.Depth != nil {
			s.WithDepth++
		}
	}
	return s
}
