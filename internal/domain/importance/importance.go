// Package importance derives a stakes score per team from standings
// games-behind deltas, without a discrete bracket model.
package importance

import (
	"math"

	"github.com/cameronntaylor/nba-watchability/internal/domain/model"
)

// Playoff boundary seeds: direct playoff cutoff and play-in cutoff.
const (
	playoffCutoffSeed = 6
	playInCutoffSeed  = 10

	radiusScale = 10.0
)

// Default importance bounds.
const (
	defaultFloor   = 0.1
	defaultCeiling = 1.0
)

// Detail is the per-team importance breakdown.
type Detail struct {
	Importance    float64
	SeedRadius    *float64
	PlayoffRadius *float64
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithBounds sets the importance floor and ceiling.
func WithBounds(floor, ceiling float64) Option {
	return func(s *Scorer) {
		if ceiling > floor {
			s.floor = floor
			s.ceiling = ceiling
		}
	}
}

// Scorer computes per-team importance from standings.
type Scorer struct {
	floor   float64
	ceiling float64
}

// NewScorer creates an importance scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{floor: defaultFloor, ceiling: defaultCeiling}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Floor returns the configured importance floor, the default for teams
// missing standings data.
func (s *Scorer) Floor() float64 { return s.floor }

type seedEntry struct {
	team string
	gb   float64
}

// Compute builds the per-team importance map from standings keyed by
// canonical team name. Teams with no usable seed or games-behind value
// default to the floor.
func (s *Scorer) Compute(standings map[string]model.StandingsRow) map[string]Detail {
	byConf := map[string]map[int]seedEntry{"east": {}, "west": {}}

	for team, row := range standings {
		seedMap, ok := byConf[row.Conference]
		if !ok || row.PlayoffSeed == nil || row.GamesBehind == nil {
			continue
		}
		seedMap[*row.PlayoffSeed] = seedEntry{team: team, gb: *row.GamesBehind}
	}

	out := make(map[string]Detail, len(standings))
	for _, seedMap := range byConf {
		if len(seedMap) == 0 {
			continue
		}

		cutoff, hasCutoff := seedMap[playoffCutoffSeed]
		playIn, hasPlayIn := seedMap[playInCutoffSeed]

		for seed, entry := range seedMap {
			seedRadius := minAbsDelta(entry.gb,
				neighborGB(seedMap, seed-1),
				neighborGB(seedMap, seed+1),
			)
			playoffRadius := minAbsDelta(entry.gb,
				optGB(cutoff.gb, hasCutoff),
				optGB(playIn.gb, hasPlayIn),
			)

			if seedRadius == nil || playoffRadius == nil {
				out[entry.team] = Detail{Importance: s.floor}
				continue
			}

			total := math.Max(0, *seedRadius+*playoffRadius)
			imp := clamp((radiusScale-total)/radiusScale, s.floor, s.ceiling)
			out[entry.team] = Detail{
				Importance:    imp,
				SeedRadius:    seedRadius,
				PlayoffRadius: playoffRadius,
			}
		}
	}

	// Anything missing defaults to the floor.
	for team := range standings {
		if _, ok := out[team]; !ok {
			out[team] = Detail{Importance: s.floor}
		}
	}
	return out
}

func neighborGB(seedMap map[int]seedEntry, seed int) *float64 {
	if entry, ok := seedMap[seed]; ok {
		gb := entry.gb
		return &gb
	}
	return nil
}

func optGB(gb float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &gb
}

func minAbsDelta(gb float64, candidates ...*float64) *float64 {
	var best *float64
	for _, c := range candidates {
		if c == nil {
			continue
		}
		d := math.Abs(*c - gb)
		if best == nil || d < *best {
			best = &d
		}
	}
	return best
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
