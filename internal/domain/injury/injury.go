// Package injury merges conflicting injury signals into one four-valued
// status per player.
//
// Three sources can disagree for the same player: the league-wide injuries
// feed (fantasy-status abbreviation, most authoritative), the per-game
// summary injuries block, and free-text comments. The reconciler resolves
// them behind this package so the rest of the pipeline only ever sees a
// Status, never raw text.
package injury

import (
	"regexp"
	"strings"
	"time"

	"github.com/cameronntaylor/nba-watchability/internal/domain/model"
)

// Status is the resolved availability of a player. GTD is never a terminal
// value; it is refined into one of these four.
type Status int

// Resolved statuses, ordered by decreasing availability.
const (
	Available Status = iota
	Questionable
	Doubtful
	Out
)

// String returns the display form of a status.
func (s Status) String() string {
	switch s {
	case Questionable:
		return "Questionable"
	case Doubtful:
		return "Doubtful"
	case Out:
		return "Out"
	default:
		return "Available"
	}
}

// Default status weights.
const (
	defaultWeightAvailable    = 0.0
	defaultWeightQuestionable = 0.4
	defaultWeightDoubtful     = 0.7
	defaultWeightOut          = 1.0
)

// Weights maps each status to its penalty weight in [0,1].
type Weights struct {
	Available    float64
	Questionable float64
	Doubtful     float64
	Out          float64
}

// DefaultWeights returns the production status weights.
func DefaultWeights() Weights {
	return Weights{
		Available:    defaultWeightAvailable,
		Questionable: defaultWeightQuestionable,
		Doubtful:     defaultWeightDoubtful,
		Out:          defaultWeightOut,
	}
}

// For returns the weight for a status.
func (w Weights) For(s Status) float64 {
	switch s {
	case Questionable:
		return w.Questionable
	case Doubtful:
		return w.Doubtful
	case Out:
		return w.Out
	default:
		return w.Available
	}
}

// dayToDay matches the ambiguous fantasy-status codes that need text
// refinement before they map to a terminal status.
var dayToDay = map[string]bool{
	"gtd":                true,
	"dtd":                true,
	"day-to-day":         true,
	"day to day":         true,
	"game-time decision": true,
	"game time decision": true,
}

// ParseAbbr converts a feed status string (abbreviation or full word) into a
// status. The ambiguous day-to-day codes come back as Questionable with
// ambiguous=true so callers can attempt comment refinement. Unknown or empty
// input resolves to Available: optimistic availability beats false penalties.
func ParseAbbr(raw string) (s Status, ambiguous bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return Available, false
	}
	if dayToDay[v] {
		return Questionable, true
	}
	switch {
	case strings.Contains(v, "injur"):
		return Out, false
	case v == "o" || strings.Contains(v, "out"):
		return Out, false
	case v == "d" || strings.Contains(v, "doubt"):
		return Doubtful, false
	case v == "q" || strings.Contains(v, "question"):
		return Questionable, false
	case v == "p" || strings.Contains(v, "prob"):
		return Available, false
	case strings.Contains(v, "active"), strings.Contains(v, "available"):
		return Available, false
	}
	return Available, false
}

// RefineDayToDay scans free-text comments for a terminal keyword, gated on
// the comment actually mentioning the target game's day of week. A comment
// written for a different game day says nothing about this one, so without a
// day mention the status stays at the ambiguous default (Questionable).
func RefineDayToDay(short, long string, gameDay time.Weekday) Status {
	for _, text := range []string{short, long} {
		if text == "" || !mentionsDay(text, gameDay) {
			continue
		}
		t := strings.ToLower(text)
		switch {
		case strings.Contains(t, "probable"):
			return Available
		case strings.Contains(t, "doubtful"):
			return Doubtful
		case strings.Contains(t, "questionable"),
			strings.Contains(t, "game-time decision"),
			strings.Contains(t, "game time decision"):
			return Questionable
		}
	}
	return Questionable
}

// shortDayPatterns matches the three-letter weekday forms ("Wed", "Wed.") as
// whole words, indexed by time.Weekday.
var shortDayPatterns = func() [7]*regexp.Regexp {
	var patterns [7]*regexp.Regexp
	for day := time.Sunday; day <= time.Saturday; day++ {
		short := strings.ToLower(day.String()[:3])
		patterns[day] = regexp.MustCompile(`\b` + short + `\b`)
	}
	return patterns
}()

// mentionsDay reports whether text references the given weekday, either by
// full name or the common three-letter form ("Wed", "Wed.").
func mentionsDay(text string, day time.Weekday) bool {
	t := strings.ToLower(text)
	if strings.Contains(t, strings.ToLower(day.String())) {
		return true
	}
	return shortDayPatterns[day].MatchString(t)
}

// PlayerRef identifies a player for reconciliation.
type PlayerRef struct {
	AthleteID string
	Name      string
}

// Option applies a configuration option to the Reconciler.
type Option func(*Reconciler)

// WithWeights sets the status weights.
func WithWeights(w Weights) Option {
	return func(r *Reconciler) {
		r.weights = w
	}
}

// Reconciler merges injury sources into a per-player status map.
type Reconciler struct {
	weights Weights
}

// NewReconciler creates a reconciler with configuration options.
func NewReconciler(opts ...Option) *Reconciler {
	r := &Reconciler{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Weights returns the configured status weights.
func (r *Reconciler) Weights() Weights { return r.weights }

// ResolveTeam merges the league feed, the game summary block, and
// roster-embedded statuses into one status per athlete id. Merge order per
// player: league record by id, game record by id, either source by
// normalized name, roster status string. Players resolving to Available are
// omitted so an empty map means a fully available team.
func (r *Reconciler) ResolveTeam(
	players []PlayerRef,
	league []model.InjuryRecord,
	game []model.InjuryRecord,
	roster map[string]string,
	gameDay time.Weekday,
) map[string]Status {
	leagueByID, leagueByName := index(league)
	gameByID, gameByName := index(game)

	out := make(map[string]Status)
	for _, p := range players {
		rec, found := lookup(p, leagueByID, leagueByName)
		if !found {
			rec, found = lookup(p, gameByID, gameByName)
		}

		var status Status
		switch {
		case found:
			status = r.resolveRecord(rec, gameDay)
		case roster[p.AthleteID] != "":
			status, _ = ParseAbbr(roster[p.AthleteID])
		default:
			continue
		}

		if status != Available {
			out[p.AthleteID] = status
		}
	}
	return out
}

// resolveRecord turns one injury record into a terminal status, refining
// ambiguous day-to-day codes through the record's comments.
func (r *Reconciler) resolveRecord(rec model.InjuryRecord, gameDay time.Weekday) Status {
	status, ambiguous := ParseAbbr(rec.StatusAbbr)
	if ambiguous {
		return RefineDayToDay(rec.ShortComment, rec.LongComment, gameDay)
	}
	return status
}

func index(records []model.InjuryRecord) (byID map[string]model.InjuryRecord, byName map[string]model.InjuryRecord) {
	byID = make(map[string]model.InjuryRecord, len(records))
	byName = make(map[string]model.InjuryRecord, len(records))
	for _, rec := range records {
		if rec.AthleteID != "" {
			if _, ok := byID[rec.AthleteID]; !ok {
				byID[rec.AthleteID] = rec
			}
		}
		if key := normalizeName(rec.Name); key != "" {
			if _, ok := byName[key]; !ok {
				byName[key] = rec
			}
		}
	}
	return byID, byName
}

func lookup(p PlayerRef, byID, byName map[string]model.InjuryRecord) (model.InjuryRecord, bool) {
	if p.AthleteID != "" {
		if rec, ok := byID[p.AthleteID]; ok {
			return rec, true
		}
	}
	// Name matching covers feeds whose athlete ids don't align.
	if key := normalizeName(p.Name); key != "" {
		if rec, ok := byName[key]; ok {
			return rec, true
		}
	}
	return model.InjuryRecord{}, false
}

var nameJunk = regexp.MustCompile(`[^a-z0-9\s]`)

func normalizeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = nameJunk.ReplaceAllString(n, "")
	return strings.Join(strings.Fields(n), " ")
}
