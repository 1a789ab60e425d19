// Package identity maps raw player labels from different sources to a
// canonical key.
//
// Normalization is an ordered list of named rules (see Rules) so that every
// transformation applied to a name can be listed and tested on its own. There
// is no fuzzy matching: two labels either normalize to the same key or they
// do not.
package identity

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/okian/draftboard/internal/domain/model"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key is the canonical identity of a player.
type Key struct {
	Name     string
	Position model.Position
	// Team is only set to split same-name, same-position players.
	Team string
}

// String renders the key as name|POS[|TEAM]; an unknown position renders as "?".
func (k Key) String() string {
	pos := string(k.Position)
	if !k.Position.Known() {
		pos = "?"
	}
	s := k.Name + "|" + pos
	if k.Team != "" {
		s += "|" + k.Team
	}
	return s
}

// NameOnly drops position and team.
func (k Key) NameOnly() Key { return Key{Name: k.Name} }

// WithPosition returns the key with the position replaced.
func (k Key) WithPosition(p model.Position) Key {
	k.Position = p
	return k
}

// WithTeam returns the key qualified by team.
func (k Key) WithTeam(team string) Key {
	k.Team = NormalizeTeam(team)
	return k
}

// Rule is one named step of name normalization.
type Rule struct {
	Name  string
	Apply func(string) string
}

var (
	parenNoise   = regexp.MustCompile(`\s*[\(\[][^\)\]]*[\)\]]`)
	trailerNoise = regexp.MustCompile(`\s+(?:,|-|–|—|\|)\s+.*$|,.*$`)
	whitespace   = regexp.MustCompile(`\s+`)

	foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	generational = map[string]bool{"jr": true, "sr": true, "ii": true, "iii": true, "iv": true, "v": true}
)

// Rules is the ordered rule list. The alias table is consulted on its output.
var Rules = []Rule{
	{Name: "strip-source-noise", Apply: stripSourceNoise},
	{Name: "fold-diacritics", Apply: foldDiacritics},
	{Name: "lower-case", Apply: strings.ToLower},
	{Name: "drop-apostrophes-and-periods", Apply: dropJoiners},
	{Name: "punctuation-to-space", Apply: punctuationToSpace},
	{Name: "drop-generational-suffix", Apply: dropSuffix},
	{Name: "collapse-whitespace", Apply: collapseWhitespace},
}

// stripSourceNoise removes "(BUF - QB)", ", BUF" and " - BUF" decorations.
func stripSourceNoise(s string) string {
	s = parenNoise.ReplaceAllString(s, "")
	return trailerNoise.ReplaceAllString(s, "")
}

func foldDiacritics(s string) string {
	out, _, err := transform.String(foldMarks, s)
	if err != nil {
		return s
	}
	return out
}

func dropJoiners(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\'', '’', '‘', '`', '.':
			return -1
		}
		return r
	}, s)
}

func punctuationToSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return ' '
		}
		return r
	}, s)
}

func dropSuffix(s string) string {
	tokens := strings.Fields(s)
	for len(tokens) > 1 && generational[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func applyRules(s string) string {
	for _, r := range Rules {
		s = r.Apply(s)
	}
	return s
}

// Normalizer applies Rules followed by an alias table. Both sides of the
// table are stored in rule-normalized form, so a variant still matches when
// it carries a suffix or source noise.
type Normalizer struct {
	aliases map[string]string
}

// New builds a Normalizer seeded with DefaultAliases.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{aliases: make(map[string]string, len(DefaultAliases))}
	for variant, canonical := range DefaultAliases {
		n.addAlias(variant, canonical)
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Normalizer) addAlias(variant, canonical string) {
	v, c := aliasKey(variant), aliasKey(canonical)
	if v == "" || c == "" || v == c {
		return
	}
	n.aliases[v] = c
}

// NormalizeName returns the canonical name text for a raw label.
func (n *Normalizer) NormalizeName(raw string) string {
	s := applyRules(raw)
	if canonical, ok := n.aliases[s]; ok {
		return canonical
	}
	return s
}

// Normalize derives the key for a raw label. Team is accepted for the
// signature's sake but only attached by the reconciler, via Key.WithTeam, when
// two players would otherwise collide.
func (n *Normalizer) Normalize(raw string, position model.Position, _ string) Key {
	return Key{Name: n.NormalizeName(raw), Position: position}
}

var defaultNormalizer = New()

// Normalize uses a Normalizer with the built-in alias table.
func Normalize(raw string, position model.Position, team string) Key {
	return defaultNormalizer.Normalize(raw, position, team)
}

var teamAliases = map[string]string{
	"JAC": "JAX",
	"WSH": "WAS",
	"OAK": "LV",
	"SD":  "LAC",
	"STL": "LAR",
	"FA":  "",
}

// NormalizeTeam upper-cases a team abbreviation and maps relocated or
// alternate codes to the current one.
func NormalizeTeam(team string) string {
	t := strings.ToUpper(strings.TrimSpace(team))
	if v, ok := teamAliases[t]; ok {
		return v
	}
	return t
}
