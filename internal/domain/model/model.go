// Package model contains domain models passed between layers.
package model

import "time"

// GameStatus is the externally driven lifecycle state of a game.
type GameStatus string

// Game lifecycle states as reported by the scoreboard feed.
const (
	StatusPre  GameStatus = "pre"
	StatusIn   GameStatus = "in"
	StatusPost GameStatus = "post"
)

// Game is one matchup within a fetch cycle. Status transitions pre -> in ->
// post are owned by the upstream feed; the pipeline only reads them.
type Game struct {
	GameID          string
	HomeTeam        string
	AwayTeam        string
	TipTimeUTC      time.Time
	Status          GameStatus
	HomeSpread      *float64 // current line, home perspective; negative favors home
	HomeSpreadClose *float64 // frozen pre-game line, when known
	HomeScore       *int
	AwayScore       *int
	TimeRemaining   string // raw clock text, e.g. "5:32 Q3"
	SpreadSource    string
}

// GameOdds is the odds feed contract: one event with a consensus home spread.
type GameOdds struct {
	GameID          string
	CommenceTimeUTC time.Time
	HomeTeam        string
	AwayTeam        string
	HomeSpread      *float64
	SpreadSource    string
}

// LiveGameState is the scoreboard feed contract for one game.
type LiveGameState struct {
	GameID        string
	HomeTeam      string
	AwayTeam      string
	StartTimeUTC  time.Time
	State         GameStatus
	HomeScore     *int
	AwayScore     *int
	TimeRemaining string
}

// StandingsRow is the standings feed contract for one team.
type StandingsRow struct {
	Wins        int
	Losses      int
	WinPct      float64
	GamesBehind *float64
	PlayoffSeed *int
	Conference  string // "east" or "west"
}

// PlayerStatLine is the per-roster stats contract. Nil fields mean the feed
// reported nothing for that stat; a player with all-nil stats is excluded
// from the impact model rather than zero-filled.
type PlayerStatLine struct {
	AthleteID string
	Name      string
	Points    *float64
	Assists   *float64
	Rebounds  *float64
	Steals    *float64
	Blocks    *float64
}

// InjuryRecord is the injuries contract, shared by the league-wide feed and
// the per-game summary block. AthleteID may be empty on some feeds, in which
// case Name is the only join key.
type InjuryRecord struct {
	AthleteID    string
	Name         string
	StatusAbbr   string
	ShortComment string
	LongComment  string
}

// TeamSnapshot is a team's strength view for one game.
type TeamSnapshot struct {
	WinPctRaw  float64
	Health     float64 // [0,1]
	StarFactor float64 // additive win% bump, >= 0
	AdjWinPct  float64 // clamp01(WinPctRaw*Health + StarFactor)
}

// Watchability is the pure aggregation output for one game.
type Watchability struct {
	TeamQuality float64
	Closeness   float64
	Uavg        float64
	AWI         float64
	Label       string
}

// Result is one scored row of the final table.
type Result struct {
	Game Game

	Home TeamSnapshot
	Away TeamSnapshot

	HomeRecord string
	AwayRecord string

	Importance     float64
	HomeImportance float64
	AwayImportance float64

	EffectiveSpread *float64
	LiveWeight      float64 // a(t): 0 at tip-off, 1 at the final buzzer

	HomeKeyInjuries []string
	AwayKeyInjuries []string
	HomeStar        string // e.g. "Nikola Jokic +2.3%"
	AwayStar        string

	Watchability
}
