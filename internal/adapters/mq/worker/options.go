// Package worker provides the bounded fan-out pool used for per-team and
// per-game feed work inside a batch.
package worker

import "github.com/cameronntaylor/nba-watchability/pkg/logger"

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithName sets the pool name used in logs and metrics labels.
func WithName(name string) Option {
	return func(p *Pool) {
		if name != "" {
			p.name = name
			p.logger = logger.Get().Named(name)
		}
	}
}

// WithLogger overrides the pool logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}
