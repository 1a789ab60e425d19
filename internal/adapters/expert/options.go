package expert

import (
	"github.com/okian/draftboard/internal/domain/model"
	"github.com/okian/draftboard/pkg/logger"
)

// Option applies a configuration option to the Loader.
type Option func(*Loader)

// WithPositions limits the files read to the given positions.
func WithPositions(positions ...model.Position) Option {
	return func(l *Loader) {
		if len(positions) > 0 {
			l.positions = positions
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}
