package app

import (
	"time"

	"github.com/cameronntaylor/nba-watchability/pkg/logger"
)

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source. Useful in tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger overrides the pipeline logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTeamPool overrides the per-team fan-out pool.
func WithTeamPool(p Pool) Option {
	return func(s *Service) {
		if p != nil {
			s.teamPool = p
		}
	}
}

// WithSummaryPool overrides the per-game summary fan-out pool.
func WithSummaryPool(p Pool) Option {
	return func(s *Service) {
		if p != nil {
			s.summaryPool = p
		}
	}
}

// WithIncludePost keeps finished games in the batch instead of dropping them.
func WithIncludePost(include bool) Option {
	return func(s *Service) { s.includePost = include }
}

// WithGameDayLocation overrides the timezone used for local game dates and
// injury comment weekdays.
func WithGameDayLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.gameDayTZ = loc
		}
	}
}
