// Package health converts player impact and injury status into a team
// health multiplier and a single-player star win% bump.
package health

import (
	"fmt"
	"math"
	"sort"

	"github.com/cameronntaylor/nba-watchability/internal/domain/impact"
	"github.com/cameronntaylor/nba-watchability/internal/domain/injury"
)

// Default scorer constants.
const (
	defaultOverallWeight     = 1.0
	defaultKeyShareThreshold = 0.10
	defaultStarDenom         = 40.0
	defaultStarExponent      = 3.0
	defaultStarBump          = 0.05
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights sets the injury status weights.
func WithWeights(w injury.Weights) Option {
	return func(s *Scorer) {
		s.weights = w
	}
}

// WithOverallWeight scales the summed injury penalty.
func WithOverallWeight(w float64) Option {
	return func(s *Scorer) {
		if w >= 0 {
			s.overallWeight = w
		}
	}
}

// WithKeyShareThreshold sets the impact share above which a penalized player
// counts as a key injury.
func WithKeyShareThreshold(t float64) Option {
	return func(s *Scorer) {
		if t >= 0 {
			s.keyShareThreshold = t
		}
	}
}

// WithStarCurve sets the star normalization denominator, amplification
// exponent, and win% bump scale. The curve is a tunable, not a law.
func WithStarCurve(denom, exponent, bump float64) Option {
	return func(s *Scorer) {
		if denom > 0 {
			s.starDenom = denom
		}
		if exponent > 0 {
			s.starExponent = exponent
		}
		if bump >= 0 {
			s.starBump = bump
		}
	}
}

// Scorer derives team health and star factors.
type Scorer struct {
	weights           injury.Weights
	overallWeight     float64
	keyShareThreshold float64
	starDenom         float64
	starExponent      float64
	starBump          float64
}

// NewScorer creates a health scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		weights:           injury.DefaultWeights(),
		overallWeight:     defaultOverallWeight,
		keyShareThreshold: defaultKeyShareThreshold,
		starDenom:         defaultStarDenom,
		starExponent:      defaultStarExponent,
		starBump:          defaultStarBump,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TeamHealth computes the [0,1] health multiplier and the key-injury
// explanation strings for a team. statuses is the merged injury map for this
// team and game; an empty map short-circuits to full health without touching
// the roster. Key injuries are penalized players at or above the impact-share
// threshold, plus the team's top-impact player whenever they are Out-tier,
// so a headline superstar's absence is always surfaced.
func (s *Scorer) TeamHealth(players []impact.PlayerImpact, statuses map[string]injury.Status) (float64, []string) {
	if len(statuses) == 0 {
		return 1.0, nil
	}

	type flagged struct {
		raw   float64
		share float64
		label string
	}

	var penalty float64
	var hits []flagged
	for i, p := range players {
		status, ok := statuses[p.AthleteID]
		if !ok {
			continue
		}
		w := s.weights.For(status)
		if w <= 0 {
			continue
		}
		penalty += w * p.ImpactShare

		key := p.ImpactShare >= s.keyShareThreshold
		if i == 0 && status == injury.Out {
			// The top-impact player being out is always a headline.
			key = true
		}
		if key {
			hits = append(hits, flagged{
				raw:   p.RawImpact,
				share: p.ImpactShare,
				label: fmt.Sprintf("%s: %s", p.Name, status),
			})
		}
	}

	h := 1.0 - s.overallWeight*penalty
	h = math.Max(0.0, math.Min(1.0, h))

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].raw > hits[j].raw })
	labels := make([]string, 0, len(hits))
	for _, f := range hits {
		labels = append(labels, f.label)
	}
	if len(labels) == 0 {
		labels = nil
	}
	return h, labels
}

// StarRaw converts a star sum into the amplified raw star score:
// (sum/denom)^exponent. The exponent keeps the bump negligible for ordinary
// scorers and meaningful only for truly elite ones.
func (s *Scorer) StarRaw(starSum float64) float64 {
	if starSum <= 0 {
		return 0
	}
	return math.Pow(starSum/s.starDenom, s.starExponent)
}

// StarFactor is the additive win% bump contributed by a team's top player,
// scaled by their availability: an unavailable star contributes nothing.
func (s *Scorer) StarFactor(starSum float64, status injury.Status) float64 {
	availability := math.Max(0.0, 1.0-s.weights.For(status))
	return s.starBump * s.StarRaw(starSum) * availability
}

// AdjustedWinPct folds health and star factor into a team's raw win%:
// clamp01(raw*health + star).
func AdjustedWinPct(raw, health, starFactor float64) float64 {
	v := raw*health + starFactor
	return math.Max(0.0, math.Min(1.0, v))
}
