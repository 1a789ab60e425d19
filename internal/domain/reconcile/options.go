package reconcile

import "github.com/okian/draftboard/internal/domain/identity"

// Option applies a configuration option to the Reconciler.
type Option func(*Reconciler)

// WithNormalizer sets the identity normalizer, e.g. one carrying extra aliases.
func WithNormalizer(n *identity.Normalizer) Option {
	return func(r *Reconciler) {
		if n != nil {
			r.normalizer = n
		}
	}
}

// WithProximityBand sets how far above a cluster's anchor ADP a value may be
// and still share the anchor's composite score. Negative values are ignored.
func WithProximityBand(band float64) Option {
	return func(r *Reconciler) {
		if band >= 0 {
			r.band = band
		}
	}
}

// WithDepthChart attaches depth chart slots to entries the chart knows.
func WithDepthChart(d DepthChart) Option {
	return func(r *Reconciler) {
		r.depth = d
	}
}
