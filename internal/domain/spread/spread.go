// Package spread reconciles pre-game closing lines with live spreads.
//
// The last home spread observed while a game is still "pre" is frozen into a
// persisted store. Once the game is live, trust shifts smoothly from that
// frozen close toward the current live line as the game clock runs down.
package spread

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cameronntaylor/nba-watchability/internal/domain/model"
)

// Regulation game constants.
const (
	regulationQuarters = 4
	minutesPerQuarter  = 12.0
	regulationMinutes  = regulationQuarters * minutesPerQuarter
	halftimeQuarter    = 2
)

// Store persists frozen closing spreads across process restarts.
type Store interface {
	// Get returns the frozen home spread for a game id.
	Get(gameID string) (float64, bool)
	// Put records the frozen home spread for a game id.
	Put(gameID string, homeSpread float64)
}

// clockRe matches live clock text like "5:32 Q3", "32.5 Q4", "1:12 OT",
// "0:45 2OT".
var clockRe = regexp.MustCompile(`^\s*(?:(\d+):)?(\d+(?:\.\d+)?)\s+(?:Q(\d)|(\d*)OT)\s*$`)

// ParseClock parses raw clock text into the current period and the seconds
// left in that period. ok is false for text that carries no usable clock.
func ParseClock(raw string) (quarter int, secondsLeft float64, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, 0, false
	}
	if strings.Contains(strings.ToLower(s), "half") {
		return halftimeQuarter, 0, true
	}

	m := clockRe.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}

	secondsLeft, _ = strconv.ParseFloat(m[2], 64)
	if m[1] != "" {
		mins, _ := strconv.Atoi(m[1])
		secondsLeft += float64(mins) * 60
	}

	switch {
	case m[3] != "":
		quarter, _ = strconv.Atoi(m[3])
	case m[4] != "":
		ot, _ := strconv.Atoi(m[4])
		quarter = regulationQuarters + ot
	default:
		// plain "OT"
		quarter = regulationQuarters + 1
	}
	return quarter, secondsLeft, true
}

// MinutesRemaining converts a period and its remaining seconds into
// regulation minutes remaining: max(0, 4-quarter)*12 + seconds/60. Overtime
// counts only the period clock.
func MinutesRemaining(quarter int, secondsLeft float64) float64 {
	full := math.Max(0, float64(regulationQuarters-quarter)) * minutesPerQuarter
	return full + secondsLeft/60.0
}

// LiveWeight is a(t): 0 at tip-off, 1 at the final buzzer.
func LiveWeight(minutesRemaining float64) float64 {
	a := 1.0 - minutesRemaining/regulationMinutes
	return math.Max(0.0, math.Min(1.0, a))
}

// Blender freezes pre-game spreads into the store and blends them with live
// spreads as games progress. It assumes a single writer per store, one batch
// at a time; concurrent processes sharing one store file are not guarded
// here.
type Blender struct {
	store Store
}

// NewBlender creates a blender over the given store.
func NewBlender(store Store) *Blender {
	return &Blender{store: store}
}

// Observe folds one game observation into the store and stamps the game's
// frozen close. While the game is pre, every observed current spread
// overwrites the stored entry; the last pre-game observation is the freeze.
// An authoritative close already present on the game overrides the local
// freeze in both directions. Once the game is live the stored value is
// read-only.
func (b *Blender) Observe(g *model.Game) {
	if g.HomeSpreadClose != nil {
		// Authoritative closing line wins over the locally frozen value.
		b.store.Put(g.GameID, *g.HomeSpreadClose)
		return
	}
	if g.Status == model.StatusPre && g.HomeSpread != nil {
		b.store.Put(g.GameID, *g.HomeSpread)
	}
	if v, ok := b.store.Get(g.GameID); ok {
		frozen := v
		g.HomeSpreadClose = &frozen
	}
}

// Effective computes the blended spread for a game and the live weight used.
//   - pre/post, or no clock, or no frozen close: the current spread passes
//     through unchanged (no blend possible) with weight 0 or 1.
//   - in: a(t)*current + (1-a(t))*frozen.
func (b *Blender) Effective(g model.Game) (*float64, float64) {
	if g.Status != model.StatusIn {
		return g.HomeSpread, 0
	}

	quarter, secs, ok := ParseClock(g.TimeRemaining)
	if !ok {
		return g.HomeSpread, 1
	}
	a := LiveWeight(MinutesRemaining(quarter, secs))

	if g.HomeSpreadClose == nil {
		return g.HomeSpread, a
	}
	if g.HomeSpread == nil {
		frozen := *g.HomeSpreadClose
		return &frozen, a
	}

	v := a*(*g.HomeSpread) + (1-a)*(*g.HomeSpreadClose)
	return &v, a
}
