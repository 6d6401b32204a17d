// Package impact computes per-roster player impact scores from per-game stats.
package impact

import (
	"sort"

	"github.com/cameronntaylor/nba-watchability/internal/domain/model"
)

// Default impact model constants.
const (
	defaultRebWeight     = 1.0
	defaultAstWeight     = 1.0
	defaultStarRebWeight = 0.5
	defaultStarAstWeight = 0.75
)

// PlayerImpact is one player's share of a team's production.
type PlayerImpact struct {
	AthleteID string
	Name      string

	PointsPerGame   float64
	AssistsPerGame  float64
	ReboundsPerGame float64
	StealsPerGame   float64
	BlocksPerGame   float64

	RawImpact         float64 // pts + reb_w*reb + ast_w*ast
	ImpactShare       float64 // raw / sum(raw over team)
	RelativeRawImpact float64 // raw / max(raw over team)
}

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithSubWeights sets the rebound and assist sub-weights for raw impact.
func WithSubWeights(reb, ast float64) Option {
	return func(m *Model) {
		if reb >= 0 {
			m.rebWeight = reb
		}
		if ast >= 0 {
			m.astWeight = ast
		}
	}
}

// WithStarSubWeights sets the rebound and assist sub-weights for the star sum.
func WithStarSubWeights(reb, ast float64) Option {
	return func(m *Model) {
		if reb >= 0 {
			m.starRebWeight = reb
		}
		if ast >= 0 {
			m.starAstWeight = ast
		}
	}
}

// Model derives impact scores from stat lines.
type Model struct {
	rebWeight     float64
	astWeight     float64
	starRebWeight float64
	starAstWeight float64
}

// NewModel creates an impact model with configuration options.
func NewModel(opts ...Option) *Model {
	m := &Model{
		rebWeight:     defaultRebWeight,
		astWeight:     defaultAstWeight,
		starRebWeight: defaultStarRebWeight,
		starAstWeight: defaultStarAstWeight,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TeamImpacts converts a team's stat lines into impact scores, sorted by raw
// impact descending. Players with no reported stats at all are excluded, which
// changes the share denominator. A team whose total or max raw impact is not
// strictly positive yields an empty list so every health and star effect
// degrades to neutral for that team.
func (m *Model) TeamImpacts(lines []model.PlayerStatLine) []PlayerImpact {
	players := make([]PlayerImpact, 0, len(lines))
	for _, l := range lines {
		if l.Points == nil && l.Assists == nil && l.Rebounds == nil && l.Steals == nil && l.Blocks == nil {
			continue
		}
		pts := deref(l.Points)
		ast := deref(l.Assists)
		reb := deref(l.Rebounds)
		players = append(players, PlayerImpact{
			AthleteID:       l.AthleteID,
			Name:            l.Name,
			PointsPerGame:   pts,
			AssistsPerGame:  ast,
			ReboundsPerGame: reb,
			StealsPerGame:   deref(l.Steals),
			BlocksPerGame:   deref(l.Blocks),
			RawImpact:       pts + m.rebWeight*reb + m.astWeight*ast,
		})
	}
	if len(players) == 0 {
		return nil
	}

	var sum, max float64
	for _, p := range players {
		sum += p.RawImpact
		if p.RawImpact > max {
			max = p.RawImpact
		}
	}
	if sum <= 0 || max <= 0 {
		return nil
	}

	for i := range players {
		players[i].ImpactShare = players[i].RawImpact / sum
		players[i].RelativeRawImpact = players[i].RawImpact / max
	}

	sort.SliceStable(players, func(i, j int) bool {
		return players[i].RawImpact > players[j].RawImpact
	})
	return players
}

// StarSum is the star-selection metric: pts + reb_w*reb + ast_w*ast + stl + blk.
func (m *Model) StarSum(p PlayerImpact) float64 {
	return p.PointsPerGame +
		m.starRebWeight*p.ReboundsPerGame +
		m.starAstWeight*p.AssistsPerGame +
		p.StealsPerGame +
		p.BlocksPerGame
}

// TopStar returns the single highest star-sum player. Ties keep the
// first-encountered player. ok is false for an empty roster.
func (m *Model) TopStar(players []PlayerImpact) (best PlayerImpact, sum float64, ok bool) {
	for _, p := range players {
		s := m.StarSum(p)
		if !ok || s > sum {
			best, sum, ok = p, s, true
		}
	}
	return best, sum, ok
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
