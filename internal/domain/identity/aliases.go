package identity

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultAliases maps spellings used by one platform to the spelling used by
// another when the difference is more than punctuation or a suffix.
var DefaultAliases = map[string]string{
	"Gabe Davis":      "Gabriel Davis",
	"Josh Palmer":     "Joshua Palmer",
	"Jeff Wilson":     "Jeffery Wilson",
	"Isaih Pacheco":   "Isiah Pacheco",
	"Robby Anderson":  "Robbie Anderson",
	"Hollywood Brown": "Marquise Brown",
	"Chig Okonkwo":    "Chigoziem Okonkwo",
	"Scotty Miller":   "Scott Miller",
}

// aliasKey is the form both sides of the alias table are compared in.
func aliasKey(s string) string {
	return applyRules(s)
}

// LoadAliasFile reads a YAML file of canonical names to their variants:
//
//	Gabriel Davis:
//	  - Gabe Davis
//
// and returns it flattened to normalized variant -> canonical.
func LoadAliasFile(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAliasFile, err)
	}
	var groups map[string][]string
	if err := yaml.Unmarshal(b, &groups); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAliasFile, path, err)
	}
	out := make(map[string]string)
	for canonical, variants := range groups {
		for _, v := range variants {
			if prev, ok := out[aliasKey(v)]; ok && aliasKey(prev) != aliasKey(canonical) {
				return nil, fmt.Errorf("%w: %s: %q listed under both %q and %q", ErrAliasFile, path, v, prev, canonical)
			}
			out[aliasKey(v)] = canonical
		}
	}
	return out, nil
}
