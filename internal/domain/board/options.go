package board

import "strings"

type assembler struct {
	targets     map[string]bool
	targetNames map[string]bool
}

// Option applies a configuration option to Assemble.
type Option func(*assembler)

// WithTargets flags the slots of players the drafter wants. Keys may be full
// entry keys (name|POS) or bare normalized names, which match any position.
func WithTargets(keys []string) Option {
	return func(a *assembler) {
		if a.targets == nil {
			a.targets = make(map[string]bool)
			a.targetNames = make(map[string]bool)
		}
		for _, k := range keys {
			if strings.Contains(k, "|") {
				a.targets[k] = true
			} else if k != "" {
				a.targetNames[k] = true
			}
		}
	}
}

func nameOf(key string) string {
	name, _, _ := strings.Cut(key, "|")
	return name
}
