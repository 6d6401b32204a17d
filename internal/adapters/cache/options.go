// Package cache provides a TTL'd on-disk JSON cache for upstream feed
// responses, with stale-on-error fallback.
package cache

import (
	"time"

	"github.com/cameronntaylor/nba-watchability/pkg/logger"
)

// Option applies a configuration option to the DiskCache.
type Option func(*DiskCache)

// WithTTL sets the default TTL used when a caller passes a non-positive one.
func WithTTL(ttl time.Duration) Option {
	return func(c *DiskCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *DiskCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger overrides the cache logger.
func WithLogger(l logger.Logger) Option {
	return func(c *DiskCache) {
		if l != nil {
			c.logger = l
		}
	}
}
