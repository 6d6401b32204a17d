package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cameronntaylor/nba-watchability/internal/domain/identity"
	"github.com/cameronntaylor/nba-watchability/internal/domain/model"
	"github.com/cameronntaylor/nba-watchability/pkg/logger"
)

// ESPN endpoint defaults. The site/web/core hosts carry different API
// families; all three are overridable for tests.
const (
	defaultSiteBase = "https://site.api.espn.com/apis/site/v2/sports/basketball/nba"
	defaultWebBase  = "https://site.web.api.espn.com/apis/v2/sports/basketball/nba"
	defaultCoreBase = "https://sports.core.api.espn.com/v2/sports/basketball/leagues/nba"
)

// Feed TTL defaults, matching how fast each upstream actually moves.
const (
	defaultScoreboardTTL = time.Minute
	defaultStandingsTTL  = time.Hour
	defaultInjuriesTTL   = 10 * time.Minute
	defaultTeamsTTL      = 7 * 24 * time.Hour
	defaultRosterTTL     = 24 * time.Hour
	defaultStatsTTL      = 24 * time.Hour
	defaultSummaryTTL    = 10 * time.Minute
)

// regularSeasonType selects regular-season splits on the stats endpoint.
const regularSeasonType = 2

// TTLs carries the per-feed cache lifetimes.
type TTLs struct {
	Scoreboard time.Duration
	Standings  time.Duration
	Injuries   time.Duration
	Teams      time.Duration
	Roster     time.Duration
	Stats      time.Duration
	Summary    time.Duration
}

// RosterEntry is one player on a team roster, with the worst injury status
// the roster feed reports for them, or "" when healthy.
type RosterEntry struct {
	AthleteID string
	Name      string
	Status    string
}

// Summary is the slice of a game summary page the pipeline consumes.
type Summary struct {
	// InjuriesByTeam is keyed by normalized team name.
	InjuriesByTeam  map[string][]model.InjuryRecord
	HomeSpreadClose *float64
	SpreadProvider  string
}

// ESPN fetches NBA data from the public ESPN JSON APIs.
type ESPN struct {
	client   *http.Client
	cache    Cache
	siteBase string
	webBase  string
	coreBase string
	ttls     TTLs
	logger   logger.Logger
}

// NewESPN creates an ESPN feed client over the given cache.
func NewESPN(c Cache, opts ...ESPNOption) *ESPN {
	e := &ESPN{
		client:   &http.Client{Timeout: defaultFetchTimeout},
		cache:    c,
		siteBase: defaultSiteBase,
		webBase:  defaultWebBase,
		coreBase: defaultCoreBase,
		ttls: TTLs{
			Scoreboard: defaultScoreboardTTL,
			Standings:  defaultStandingsTTL,
			Injuries:   defaultInjuriesTTL,
			Teams:      defaultTeamsTTL,
			Roster:     defaultRosterTTL,
			Stats:      defaultStatsTTL,
			Summary:    defaultSummaryTTL,
		},
		logger: logger.Get().Named("espn"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// scoreboardPayload mirrors the scoreboard endpoint.
type scoreboardPayload struct {
	Events []struct {
		ID           string `json:"id"`
		Competitions []struct {
			Date        string `json:"date"`
			Competitors []struct {
				HomeAway string `json:"homeAway"`
				Score    string `json:"score"`
				Team     struct {
					DisplayName string `json:"displayName"`
				} `json:"team"`
			} `json:"competitors"`
			Status struct {
				Period       int    `json:"period"`
				DisplayClock string `json:"displayClock"`
				Type         struct {
					State string `json:"state"`
				} `json:"type"`
			} `json:"status"`
		} `json:"competitions"`
	} `json:"events"`
}

// Scoreboard returns the live game states for one calendar date.
func (e *ESPN) Scoreboard(ctx context.Context, date time.Time) ([]model.LiveGameState, error) {
	ymd := date.Format("20060102")
	url := fmt.Sprintf("%s/scoreboard?dates=%s", e.siteBase, ymd)

	var payload scoreboardPayload
	if err := getJSON(ctx, e.cache, e.client, "scoreboard", ymd, e.ttls.Scoreboard, url, &payload); err != nil {
		return nil, err
	}

	states := make([]model.LiveGameState, 0, len(payload.Events))
	for _, ev := range payload.Events {
		if len(ev.Competitions) == 0 {
			continue
		}
		comp := ev.Competitions[0]

		state := model.LiveGameState{GameID: ev.ID}
		if t, ok := parseESPNTime(comp.Date); ok {
			state.StartTimeUTC = t
		}
		state.State = model.GameStatus(comp.Status.Type.State)

		for _, c := range comp.Competitors {
			score := parseOptInt(c.Score)
			switch c.HomeAway {
			case "home":
				state.HomeTeam = c.Team.DisplayName
				state.HomeScore = score
			case "away":
				state.AwayTeam = c.Team.DisplayName
				state.AwayScore = score
			}
		}
		if state.State == model.StatusIn {
			state.TimeRemaining = formatLiveClock(comp.Status.Period, comp.Status.DisplayClock)
		}
		if state.HomeTeam == "" || state.AwayTeam == "" {
			continue
		}
		states = append(states, state)
	}
	return states, nil
}

// formatLiveClock renders a compact clock like "5:32 Q3" or "1:12 2OT".
func formatLiveClock(period int, displayClock string) string {
	if displayClock == "" {
		return ""
	}
	if period <= 0 {
		return displayClock
	}
	if period <= 4 {
		return fmt.Sprintf("%s Q%d", displayClock, period)
	}
	ot := period - 4
	if ot == 1 {
		return displayClock + " OT"
	}
	return fmt.Sprintf("%s %dOT", displayClock, ot)
}

// standingsPayload mirrors the conference-grouped standings endpoint.
type standingsPayload struct {
	Children []struct {
		Name      string `json:"name"`
		Standings struct {
			Entries []standingsEntry `json:"entries"`
		} `json:"standings"`
	} `json:"children"`
}

type standingsEntry struct {
	Team struct {
		DisplayName string `json:"displayName"`
	} `json:"team"`
	Stats []struct {
		Name  string   `json:"name"`
		Value *float64 `json:"value"`
	} `json:"stats"`
}

// Standings returns one row per team, keyed by normalized team name.
func (e *ESPN) Standings(ctx context.Context) (map[string]model.StandingsRow, error) {
	url := e.webBase + "/standings"

	var payload standingsPayload
	if err := getJSON(ctx, e.cache, e.client, "standings", "league", e.ttls.Standings, url, &payload); err != nil {
		return nil, err
	}

	rows := make(map[string]model.StandingsRow)
	for _, child := range payload.Children {
		conf := ""
		switch {
		case strings.Contains(strings.ToLower(child.Name), "east"):
			conf = "east"
		case strings.Contains(strings.ToLower(child.Name), "west"):
			conf = "west"
		}

		for _, entry := range child.Standings.Entries {
			if entry.Team.DisplayName == "" {
				continue
			}
			stats := make(map[string]float64, len(entry.Stats))
			for _, s := range entry.Stats {
				if s.Value != nil {
					stats[s.Name] = *s.Value
				}
			}

			row := model.StandingsRow{
				Wins:       int(stats["wins"]),
				Losses:     int(stats["losses"]),
				Conference: conf,
			}
			if pct, ok := stats["winPercent"]; ok {
				row.WinPct = pct
			} else if total := row.Wins + row.Losses; total > 0 {
				row.WinPct = float64(row.Wins) / float64(total)
			}
			if gb, ok := stats["gamesBehind"]; ok {
				v := gb
				row.GamesBehind = &v
			}
			if seed, ok := stats["playoffSeed"]; ok {
				s := int(seed)
				row.PlayoffSeed = &s
			}
			rows[identity.Key(entry.Team.DisplayName)] = row
		}
	}
	return rows, nil
}

// injuriesPayload mirrors the league-wide injuries endpoint: one block per
// team, each with its own injuries list.
type injuriesPayload struct {
	Injuries []struct {
		Team struct {
			DisplayName string `json:"displayName"`
		} `json:"team"`
		Injuries []injuryItem `json:"injuries"`
	} `json:"injuries"`
}

type injuryItem struct {
	Status       string `json:"status"`
	ShortComment string `json:"shortComment"`
	LongComment  string `json:"longComment"`
	Athlete      struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
	} `json:"athlete"`
	Details struct {
		FantasyStatus struct {
			DisplayDescription string `json:"displayDescription"`
			Description        string `json:"description"`
			Abbreviation       string `json:"abbreviation"`
		} `json:"fantasyStatus"`
	} `json:"details"`
}

func (it injuryItem) record() model.InjuryRecord {
	// The fantasy status is fresher than the raw status when both exist.
	status := it.Details.FantasyStatus.DisplayDescription
	if status == "" {
		status = it.Details.FantasyStatus.Description
	}
	if status == "" {
		status = it.Details.FantasyStatus.Abbreviation
	}
	if status == "" {
		status = it.Status
	}
	return model.InjuryRecord{
		AthleteID:    it.Athlete.ID,
		Name:         it.Athlete.DisplayName,
		StatusAbbr:   status,
		ShortComment: it.ShortComment,
		LongComment:  it.LongComment,
	}
}

// LeagueInjuries returns the league-wide injury report as a flat list.
func (e *ESPN) LeagueInjuries(ctx context.Context) ([]model.InjuryRecord, error) {
	url := e.siteBase + "/injuries"

	var payload injuriesPayload
	if err := getJSON(ctx, e.cache, e.client, "injuries", "league", e.ttls.Injuries, url, &payload); err != nil {
		return nil, err
	}

	var records []model.InjuryRecord
	for _, block := range payload.Injuries {
		for _, it := range block.Injuries {
			rec := it.record()
			if rec.AthleteID == "" && rec.Name == "" {
				continue
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

// teamsPayload mirrors the teams index endpoint.
type teamsPayload struct {
	Sports []struct {
		Leagues []struct {
			Teams []struct {
				Team struct {
					ID          string `json:"id"`
					DisplayName string `json:"displayName"`
				} `json:"team"`
			} `json:"teams"`
		} `json:"leagues"`
	} `json:"sports"`
}

// TeamIDMap returns normalized team name -> ESPN team id.
func (e *ESPN) TeamIDMap(ctx context.Context) (map[string]string, error) {
	url := e.siteBase + "/teams"

	var payload teamsPayload
	if err := getJSON(ctx, e.cache, e.client, "teams", "index", e.ttls.Teams, url, &payload); err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for _, sport := range payload.Sports {
		for _, league := range sport.Leagues {
			for _, t := range league.Teams {
				if t.Team.ID != "" && t.Team.DisplayName != "" {
					out[identity.Key(t.Team.DisplayName)] = t.Team.ID
				}
			}
		}
	}
	return out, nil
}

// rosterPayload mirrors the team roster endpoint.
type rosterPayload struct {
	Athletes []struct {
		ID          string `json:"id"`
		DisplayName string `json:"displayName"`
		FullName    string `json:"fullName"`
		Injuries    []struct {
			Status string `json:"status"`
		} `json:"injuries"`
	} `json:"athletes"`
}

// TeamRoster returns the roster for an ESPN team id.
func (e *ESPN) TeamRoster(ctx context.Context, teamID string) ([]RosterEntry, error) {
	url := fmt.Sprintf("%s/teams/%s/roster", e.siteBase, teamID)

	var payload rosterPayload
	if err := getJSON(ctx, e.cache, e.client, "roster", teamID, e.ttls.Roster, url, &payload); err != nil {
		return nil, err
	}

	roster := make([]RosterEntry, 0, len(payload.Athletes))
	for _, a := range payload.Athletes {
		name := a.DisplayName
		if name == "" {
			name = a.FullName
		}
		if a.ID == "" || name == "" {
			continue
		}
		entry := RosterEntry{AthleteID: a.ID, Name: name}
		for _, inj := range a.Injuries {
			if statusRank(inj.Status) > statusRank(entry.Status) {
				entry.Status = inj.Status
			}
		}
		roster = append(roster, entry)
	}
	return roster, nil
}

// statusRank orders raw status text by unavailability.
func statusRank(status string) int {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "out"):
		return 3
	case strings.Contains(s, "doubt"):
		return 2
	case strings.Contains(s, "question"), strings.Contains(s, "day"):
		return 1
	default:
		return 0
	}
}

// athleteStatsPayload mirrors the core statistics endpoint.
type athleteStatsPayload struct {
	Splits struct {
		Categories []struct {
			Stats []struct {
				Name  string   `json:"name"`
				Value *float64 `json:"value"`
			} `json:"stats"`
		} `json:"categories"`
	} `json:"splits"`
}

// AthleteStats returns per-game averages for one athlete. Stats the feed
// omits stay nil.
func (e *ESPN) AthleteStats(ctx context.Context, athleteID string, seasonYear int) (model.PlayerStatLine, error) {
	url := fmt.Sprintf("%s/seasons/%d/types/%d/athletes/%s/statistics/0?lang=en&region=us",
		e.coreBase, seasonYear, regularSeasonType, athleteID)
	key := fmt.Sprintf("%d:%d:%s", seasonYear, regularSeasonType, athleteID)

	var payload athleteStatsPayload
	if err := getJSON(ctx, e.cache, e.client, "stats", key, e.ttls.Stats, url, &payload); err != nil {
		return model.PlayerStatLine{}, err
	}

	line := model.PlayerStatLine{AthleteID: athleteID}
	for _, cat := range payload.Splits.Categories {
		for _, s := range cat.Stats {
			if s.Value == nil {
				continue
			}
			v := *s.Value
			switch s.Name {
			case "avgPoints":
				if line.Points == nil {
					line.Points = &v
				}
			case "avgAssists":
				if line.Assists == nil {
					line.Assists = &v
				}
			case "avgRebounds":
				if line.Rebounds == nil {
					line.Rebounds = &v
				}
			case "avgSteals":
				if line.Steals == nil {
					line.Steals = &v
				}
			case "avgBlocks":
				if line.Blocks == nil {
					line.Blocks = &v
				}
			}
		}
	}
	return line, nil
}

// summaryPayload mirrors the slice of the game summary page the pipeline
// reads: the per-game injury report and the closing line.
type summaryPayload struct {
	Injuries []struct {
		Team struct {
			DisplayName string `json:"displayName"`
		} `json:"team"`
		Injuries []injuryItem `json:"injuries"`
	} `json:"injuries"`
	Pickcenter []spreadRecord `json:"pickcenter"`
	Odds       []struct {
		Spread   *spreadSides `json:"spread"`
		Provider struct {
			Name string `json:"name"`
		} `json:"provider"`
	} `json:"odds"`
}

type spreadRecord struct {
	PointSpread *spreadSides `json:"pointSpread"`
	Provider    struct {
		Name string `json:"name"`
	} `json:"provider"`
}

type spreadSides struct {
	Home struct {
		Close struct {
			Line string `json:"line"`
		} `json:"close"`
	} `json:"home"`
	Away struct {
		Close struct {
			Line string `json:"line"`
		} `json:"close"`
	} `json:"away"`
}

// GameSummary returns the per-game injury report and closing spread for one
// game id.
func (e *ESPN) GameSummary(ctx context.Context, gameID string) (Summary, error) {
	url := fmt.Sprintf("%s/summary?event=%s", e.siteBase, gameID)

	var payload summaryPayload
	if err := getJSON(ctx, e.cache, e.client, "summary", gameID, e.ttls.Summary, url, &payload); err != nil {
		return Summary{}, err
	}

	summary := Summary{InjuriesByTeam: make(map[string][]model.InjuryRecord)}
	for _, block := range payload.Injuries {
		if block.Team.DisplayName == "" {
			continue
		}
		key := identity.Key(block.Team.DisplayName)
		for _, it := range block.Injuries {
			rec := it.record()
			if rec.AthleteID == "" && rec.Name == "" {
				continue
			}
			summary.InjuriesByTeam[key] = append(summary.InjuriesByTeam[key], rec)
		}
	}

	// Prefer pickcenter closes, fall back to the legacy odds block.
	for _, rec := range payload.Pickcenter {
		if applyClose(&summary, rec.PointSpread, rec.Provider.Name) {
			break
		}
	}
	if summary.HomeSpreadClose == nil {
		for _, rec := range payload.Odds {
			if applyClose(&summary, rec.Spread, rec.Provider.Name) {
				break
			}
		}
	}
	return summary, nil
}

// applyClose extracts a home closing line from one spread record, inferring
// the home side from the away side when only the latter is quoted.
func applyClose(summary *Summary, sides *spreadSides, provider string) bool {
	if sides == nil {
		return false
	}
	home := parseLine(sides.Home.Close.Line)
	if home == nil {
		if away := parseLine(sides.Away.Close.Line); away != nil {
			v := -*away
			home = &v
		}
	}
	if home == nil {
		return false
	}
	summary.HomeSpreadClose = home
	summary.SpreadProvider = provider
	return true
}

func parseLine(raw string) *float64 {
	s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "+"))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseOptInt(raw string) *int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v := int(f)
	return &v
}

// parseESPNTime handles both RFC 3339 and ESPN's seconds-less timestamps
// like "2026-01-15T00:00Z".
func parseESPNTime(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
