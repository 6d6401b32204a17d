package feeds

import (
	"net/http"
	"time"

	"github.com/cameronntaylor/nba-watchability/pkg/logger"
)

// ESPNOption applies a configuration option to the ESPN client.
type ESPNOption func(*ESPN)

// WithESPNHTTPClient overrides the HTTP client.
func WithESPNHTTPClient(c *http.Client) ESPNOption {
	return func(e *ESPN) {
		if c != nil {
			e.client = c
		}
	}
}

// WithESPNBases overrides the three ESPN API hosts, for tests. Empty values
// keep the defaults.
func WithESPNBases(site, web, core string) ESPNOption {
	return func(e *ESPN) {
		if site != "" {
			e.siteBase = site
		}
		if web != "" {
			e.webBase = web
		}
		if core != "" {
			e.coreBase = core
		}
	}
}

// WithESPNTTLs overrides the per-feed cache lifetimes. Non-positive fields
// keep their defaults.
func WithESPNTTLs(ttls TTLs) ESPNOption {
	return func(e *ESPN) {
		if ttls.Scoreboard > 0 {
			e.ttls.Scoreboard = ttls.Scoreboard
		}
		if ttls.Standings > 0 {
			e.ttls.Standings = ttls.Standings
		}
		if ttls.Injuries > 0 {
			e.ttls.Injuries = ttls.Injuries
		}
		if ttls.Teams > 0 {
			e.ttls.Teams = ttls.Teams
		}
		if ttls.Roster > 0 {
			e.ttls.Roster = ttls.Roster
		}
		if ttls.Stats > 0 {
			e.ttls.Stats = ttls.Stats
		}
		if ttls.Summary > 0 {
			e.ttls.Summary = ttls.Summary
		}
	}
}

// WithESPNLogger overrides the client logger.
func WithESPNLogger(l logger.Logger) ESPNOption {
	return func(e *ESPN) {
		if l != nil {
			e.logger = l
		}
	}
}

// OddsOption applies a configuration option to the odds client.
type OddsOption func(*OddsAPI)

// WithOddsHTTPClient overrides the HTTP client.
func WithOddsHTTPClient(c *http.Client) OddsOption {
	return func(o *OddsAPI) {
		if c != nil {
			o.client = c
		}
	}
}

// WithOddsBase overrides the API host, for tests.
func WithOddsBase(base string) OddsOption {
	return func(o *OddsAPI) {
		if base != "" {
			o.base = base
		}
	}
}

// WithOddsTTL overrides the odds cache lifetime.
func WithOddsTTL(ttl time.Duration) OddsOption {
	return func(o *OddsAPI) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithOddsRegions sets the bookmaker regions parameter.
func WithOddsRegions(regions string) OddsOption {
	return func(o *OddsAPI) {
		if regions != "" {
			o.regions = regions
		}
	}
}

// WithOddsClock overrides the time source, for tests.
func WithOddsClock(clock func() time.Time) OddsOption {
	return func(o *OddsAPI) {
		if clock != nil {
			o.clock = clock
		}
	}
}
