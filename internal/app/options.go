package service

import (
	"github.com/okian/draftboard/internal/domain/identity"
	"github.com/okian/draftboard/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithADPSource sets the primary source.
func WithADPSource(src ADPSource) Option {
	return func(s *Service) {
		s.adp = src
	}
}

// WithExpertSource sets the optional expert rankings source.
func WithExpertSource(src ExpertSource) Option {
	return func(s *Service) {
		s.experts = src
	}
}

// WithDepthSource sets the optional depth chart source.
func WithDepthSource(src DepthSource) Option {
	return func(s *Service) {
		s.depth = src
	}
}

// WithNormalizer replaces the default identity normalizer, e.g. to add
// aliases from a file.
func WithNormalizer(n *identity.Normalizer) Option {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithProximityBand sets the ADP band inside which expert rank decides order.
func WithProximityBand(band float64) Option {
	return func(s *Service) {
		if band >= 0 {
			s.band = band
		}
	}
}

// WithTargets sets the players to highlight, by name or full key.
func WithTargets(names []string) Option {
	return func(s *Service) {
		s.targets = names
	}
}

// WithRunIDGenerator overrides how run ids are made.
func WithRunIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newRunID = gen
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
