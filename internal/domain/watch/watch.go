// Package watch turns team strength and betting-market closeness into a
// single 0-100 watchability index with a human label.
package watch

import (
	"math"
	"sort"
)

// Default tunables for the index.
const (
	DefaultWinMin         = 0.2
	DefaultWinMax         = 0.7
	DefaultSpreadCap      = 15.0
	DefaultSpreadMin      = 0.5
	DefaultCurvature      = 0.9
	DefaultSigma          = 0.4
	DefaultQualityWeight  = 0.7
	DefaultQualityFloor   = 0.1
	DefaultClosenessFloor = 0.1
)

// LabelRule maps a minimum index value to a display label. Rules are
// evaluated highest threshold first.
type LabelRule struct {
	Min  float64
	Name string
}

// DefaultLabels is the stock label ladder.
func DefaultLabels() []LabelRule {
	return []LabelRule{
		{Min: 90, Name: "Amazing game"},
		{Min: 75, Name: "Great game"},
		{Min: 50, Name: "Good game"},
		{Min: 25, Name: "Ok game"},
		{Min: 0, Name: "Crap game"},
	}
}

// Scorer computes quality, closeness and the blended watchability index.
type Scorer struct {
	winMin, winMax       float64
	spreadCap, spreadMin float64
	curvature            float64
	sigma                float64
	qualityWeight        float64
	qualityFloor         float64
	closenessFloor       float64
	labels               []LabelRule
}

// Option customizes a Scorer.
type Option func(*Scorer)

// WithWinWindow sets the win-pct normalization window [min, max].
func WithWinWindow(min, max float64) Option {
	return func(s *Scorer) { s.winMin, s.winMax = min, max }
}

// WithSpreadWindow sets the spread cap and the inner dead zone.
func WithSpreadWindow(min, cap float64) Option {
	return func(s *Scorer) { s.spreadMin, s.spreadCap = min, cap }
}

// WithCurvature sets the closeness curve exponent.
func WithCurvature(c float64) Option {
	return func(s *Scorer) { s.curvature = c }
}

// WithSigma sets the CES elasticity of substitution.
func WithSigma(sigma float64) Option {
	return func(s *Scorer) { s.sigma = sigma }
}

// WithQualityWeight sets the CES weight on team quality.
func WithQualityWeight(w float64) Option {
	return func(s *Scorer) { s.qualityWeight = w }
}

// WithFloors sets the quality and closeness floors.
func WithFloors(quality, closeness float64) Option {
	return func(s *Scorer) { s.qualityFloor, s.closenessFloor = quality, closeness }
}

// WithLabels replaces the label ladder. Rules are sorted by threshold
// descending; an empty slice keeps the default ladder.
func WithLabels(rules []LabelRule) Option {
	return func(s *Scorer) {
		if len(rules) == 0 {
			return
		}
		sorted := make([]LabelRule, len(rules))
		copy(sorted, rules)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min > sorted[j].Min })
		s.labels = sorted
	}
}

// NewScorer builds a Scorer with the stock tunables.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		winMin:         DefaultWinMin,
		winMax:         DefaultWinMax,
		spreadCap:      DefaultSpreadCap,
		spreadMin:      DefaultSpreadMin,
		curvature:      DefaultCurvature,
		sigma:          DefaultSigma,
		qualityWeight:  DefaultQualityWeight,
		qualityFloor:   DefaultQualityFloor,
		closenessFloor: DefaultClosenessFloor,
		labels:         DefaultLabels(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TeamQuality normalizes the average of two adjusted win percentages into
// [qualityFloor, 1].
func (s *Scorer) TeamQuality(homeWinPct, awayWinPct float64) float64 {
	avg := (homeWinPct + awayWinPct) / 2
	q := (avg - s.winMin) / (s.winMax - s.winMin)
	return clamp(q, s.qualityFloor, 1)
}

// Closeness maps a home spread into [closenessFloor, 1]: tighter lines score
// higher, anything at or beyond the cap bottoms out. A nil spread scores the
// floor.
func (s *Scorer) Closeness(homeSpread *float64) float64 {
	if homeSpread == nil {
		return s.closenessFloor
	}
	abs := math.Min(math.Abs(*homeSpread), s.spreadCap)
	base := (s.spreadCap - abs) / (s.spreadCap - s.spreadMin)
	c := math.Pow(base, s.curvature)
	return clamp(c, s.closenessFloor, 1)
}

// Uavg blends quality and closeness with a CES aggregator. sigma=1 is
// Cobb-Douglas in the limit, sigma=0 is the pure minimum.
func (s *Scorer) Uavg(quality, closeness float64) float64 {
	if s.sigma == 0 {
		return math.Min(quality, closeness)
	}
	rho := (s.sigma - 1) / s.sigma
	if rho == 0 {
		return math.Sqrt(quality * closeness)
	}
	w := s.qualityWeight
	inner := w*math.Pow(quality, rho) + (1-w)*math.Pow(closeness, rho)
	return math.Pow(inner, 1/rho)
}

// Index is the 0-100 watchability score.
func (s *Scorer) Index(quality, closeness float64) float64 {
	return 100 * s.Uavg(quality, closeness)
}

// Label resolves an index value against the ladder.
func (s *Scorer) Label(index float64) string {
	for _, r := range s.labels {
		if index >= r.Min {
			return r.Name
		}
	}
	return s.labels[len(s.labels)-1].Name
}

// Score is the full computation for one game.
type Score struct {
	Quality   float64
	Closeness float64
	Index     float64
	Label     string
}

// Compute scores a game from its adjusted win percentages and effective home
// spread.
func (s *Scorer) Compute(homeWinPct, awayWinPct float64, homeSpread *float64) Score {
	q := s.TeamQuality(homeWinPct, awayWinPct)
	c := s.Closeness(homeSpread)
	idx := s.Index(q, c)
	return Score{Quality: q, Closeness: c, Index: idx, Label: s.Label(idx)}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
