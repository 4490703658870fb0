package allowlist

import (
	"github.com/rs/zerolog"

	"github.com/cmwaters/gatekeeper/pkg/metrics"
)

// Option is a set of configurable parameters for the Voter. If left
// empty, defaults will be used.
type Option func(v *Voter)

// WithLogger sets the logger used by the Voter.
func WithLogger(logger zerolog.Logger) Option {
	return func(v *Voter) {
		v.logger = logger
	}
}

// WithEmitter sets the emitter that receives voting events.
func WithEmitter(emitter Emitter) Option {
	return func(v *Voter) {
		v.emitter = emitter
	}
}

// WithMetrics sets the metrics recorded by the Voter.
func WithMetrics(m *metrics.VotingMetrics) Option {
	return func(v *Voter) {
		v.metrics = m
	}
}
