package identity

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithAliases adds variant -> canonical name mappings on top of the defaults.
// A later mapping for the same variant wins.
func WithAliases(aliases map[string]string) Option {
	return func(n *Normalizer) {
		for variant, canonical := range aliases {
			n.addAlias(variant, canonical)
		}
	}
}
