// Package app wires the feeds, domain scorers and stores into the batch
// pipeline that produces a ranked watchability table.
package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cameronntaylor/nba-watchability/internal/adapters/feeds"
	"github.com/cameronntaylor/nba-watchability/internal/adapters/mq/worker"
	"github.com/cameronntaylor/nba-watchability/internal/config"
	"github.com/cameronntaylor/nba-watchability/internal/domain/health"
	"github.com/cameronntaylor/nba-watchability/internal/domain/identity"
	"github.com/cameronntaylor/nba-watchability/internal/domain/impact"
	"github.com/cameronntaylor/nba-watchability/internal/domain/importance"
	"github.com/cameronntaylor/nba-watchability/internal/domain/injury"
	"github.com/cameronntaylor/nba-watchability/internal/domain/model"
	"github.com/cameronntaylor/nba-watchability/internal/domain/spread"
	"github.com/cameronntaylor/nba-watchability/internal/domain/watch"
	"github.com/cameronntaylor/nba-watchability/pkg/logger"
	"github.com/cameronntaylor/nba-watchability/pkg/metrics"
)

// neutralWinPct is the prior used when standings are missing a team.
const neutralWinPct = 0.5

// missingRecord is rendered when a team has no known win-loss record.
const missingRecord = "—"

// OddsSource provides the market slate.
type OddsSource interface {
	SpreadsWindow(ctx context.Context, daysAhead int) ([]model.GameOdds, error)
}

// StatsSource provides schedule, standings, roster and injury data.
type StatsSource interface {
	Scoreboard(ctx context.Context, date time.Time) ([]model.LiveGameState, error)
	Standings(ctx context.Context) (map[string]model.StandingsRow, error)
	LeagueInjuries(ctx context.Context) ([]model.InjuryRecord, error)
	TeamIDMap(ctx context.Context) (map[string]string, error)
	TeamRoster(ctx context.Context, teamID string) ([]feeds.RosterEntry, error)
	AthleteStats(ctx context.Context, athleteID string, seasonYear int) (model.PlayerStatLine, error)
	GameSummary(ctx context.Context, gameID string) (feeds.Summary, error)
}

// Pool fans out per-key tasks and joins on completion.
type Pool interface {
	Run(ctx context.Context, tasks []worker.Task) int
}

// SpreadStore is the persisted closing-spread state.
type SpreadStore interface {
	spread.Store
	Prune(active map[string]struct{}) int
	Flush() error
}

// Batch is one complete scoring pass over the slate.
type Batch struct {
	BatchID string
	BuiltAt time.Time
	Results []model.Result
}

// Service builds watchability batches.
type Service struct {
	cfg  *config.Config
	odds OddsSource
	espn StatsSource

	store   SpreadStore
	blender *spread.Blender

	watcher     *watch.Scorer
	impacts     *impact.Model
	healther    *health.Scorer
	importancer *importance.Scorer
	reconciler  *injury.Reconciler

	teamPool    Pool
	summaryPool Pool

	includePost bool
	clock       func() time.Time
	gameDayTZ   *time.Location
	logger      logger.Logger
}

// New constructs a Service from configuration and its external dependencies.
func New(cfg *config.Config, odds OddsSource, espn StatsSource, store SpreadStore, opts ...Option) *Service {
	s := &Service{
		cfg:   cfg,
		odds:  odds,
		espn:  espn,
		store: store,
		watcher: watch.NewScorer(
			watch.WithWinWindow(cfg.WinMin, cfg.WinMax),
			watch.WithSpreadWindow(cfg.SpreadMin, cfg.SpreadCap),
			watch.WithCurvature(cfg.Curvature),
			watch.WithSigma(cfg.Sigma),
			watch.WithQualityWeight(cfg.QualityWeight),
			watch.WithFloors(cfg.QualityFloor, cfg.ClosenessFloor),
			watch.WithLabels(labelRules(cfg.Labels)),
		),
		impacts: impact.NewModel(
			impact.WithSubWeights(cfg.ImpactRebWeight, cfg.ImpactAstWeight),
			impact.WithStarSubWeights(cfg.StarRebWeight, cfg.StarAstWeight),
		),
		healther: health.NewScorer(
			health.WithWeights(injuryWeights(cfg)),
			health.WithOverallWeight(cfg.InjuryOverallWeight),
			health.WithKeyShareThreshold(cfg.KeyInjuryShareThreshold),
			health.WithStarCurve(cfg.StarDenom, cfg.StarExponent, cfg.StarBump),
		),
		importancer: importance.NewScorer(
			importance.WithBounds(cfg.ImportanceFloor, cfg.ImportanceCeiling),
		),
		reconciler: injury.NewReconciler(
			injury.WithWeights(injuryWeights(cfg)),
		),
		clock:     time.Now,
		gameDayTZ: loadGameDayTZ(),
		logger:    logger.Get().Named("pipeline"),
	}
	s.blender = spread.NewBlender(store)
	for _, opt := range opts {
		opt(s)
	}
	if s.teamPool == nil {
		s.teamPool = worker.NewPool(cfg.TeamWorkers, worker.WithName("teams"))
	}
	if s.summaryPool == nil {
		s.summaryPool = worker.NewPool(cfg.SummaryWorkers, worker.WithName("summaries"))
	}
	return s
}

func labelRules(rules []config.LabelRule) []watch.LabelRule {
	out := make([]watch.LabelRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, watch.LabelRule{Min: r.Min, Name: r.Name})
	}
	return out
}

func injuryWeights(cfg *config.Config) injury.Weights {
	return injury.Weights{
		Available:    cfg.InjuryWeightAvailable,
		Questionable: cfg.InjuryWeightQuestionable,
		Doubtful:     cfg.InjuryWeightDoubtful,
		Out:          cfg.InjuryWeightOut,
	}
}

// loadGameDayTZ resolves the league's home timezone, used to decide which
// weekday an injury comment refers to. Falls back to UTC when tzdata is
// unavailable.
func loadGameDayTZ() *time.Location {
	if loc, err := time.LoadLocation("America/New_York"); err == nil {
		return loc
	}
	return time.UTC
}

// teamData is the per-team intermediate built by the team fan-out.
type teamData struct {
	impacts      []impact.PlayerImpact
	refs         []injury.PlayerRef
	rosterStatus map[string]string

	starID   string
	starName string
	starSum  float64
	hasStar  bool
}

// Build runs one full batch: fetch the slate, fan out per-team and per-game
// work, score every game and return the results sorted by index descending.
// Individual feed failures degrade to neutral inputs; only a missing slate
// fails the batch.
func (s *Service) Build(ctx context.Context) (*Batch, error) {
	start := s.clock()
	batchID := uuid.New().String()
	log := s.logger
	log.Info(ctx, "building batch", logger.String("batch_id", batchID))

	slate, err := s.odds.SpreadsWindow(ctx, s.cfg.DaysAhead)
	if err != nil {
		return nil, fmt.Errorf("fetching odds slate: %w", err)
	}
	if len(slate) == 0 {
		log.Info(ctx, "no games in window", logger.String("batch_id", batchID))
		return &Batch{BatchID: batchID, BuiltAt: start}, nil
	}

	games := s.assembleGames(ctx, slate)

	standings, err := s.espn.Standings(ctx)
	if err != nil {
		log.Warn(ctx, "standings unavailable, using neutral priors", logger.Error(err))
		standings = nil
	}
	importanceByTeam := s.importancer.Compute(standings)

	league, err := s.espn.LeagueInjuries(ctx)
	if err != nil {
		log.Warn(ctx, "league injury feed unavailable", logger.Error(err))
		league = nil
	}

	teams := s.fetchTeams(ctx, games)
	summaries := s.fetchSummaries(ctx, games)

	results := make([]model.Result, 0, len(games))
	for _, g := range games {
		results = append(results, s.scoreGame(g, standings, importanceByTeam, league, teams, summaries))
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].AWI > results[j].AWI })

	active := make(map[string]struct{}, len(games))
	for _, g := range games {
		active[g.GameID] = struct{}{}
	}
	if removed := s.store.Prune(active); removed > 0 {
		log.Debug(ctx, "pruned departed games from closing spread store", logger.Int("removed", removed))
	}
	if err := s.store.Flush(); err != nil {
		log.Warn(ctx, "closing spread flush failed", logger.Error(err))
	}

	metrics.RecordBatchBuilt(s.clock().Sub(start), len(results))
	log.Info(ctx, "batch built",
		logger.String("batch_id", batchID),
		logger.Int("games", len(results)),
		logger.String("spread_sources", SourcesSummary(results)),
	)
	return &Batch{BatchID: batchID, BuiltAt: start, Results: results}, nil
}

// assembleGames joins the odds slate against scoreboard state by local date
// and team identity. Odds events without a scoreboard match stay pre-game
// under their odds event id. Final games are dropped unless configured in.
func (s *Service) assembleGames(ctx context.Context, slate []model.GameOdds) []model.Game {
	type liveKey struct {
		date string
		home string
		away string
	}
	live := make(map[liveKey]model.LiveGameState)

	dates := make(map[string]time.Time)
	for _, ev := range slate {
		local := ev.CommenceTimeUTC.In(s.gameDayTZ)
		dates[local.Format("2006-01-02")] = local
	}
	for _, date := range dates {
		states, err := s.espn.Scoreboard(ctx, date)
		if err != nil {
			s.logger.Warn(ctx, "scoreboard unavailable for date",
				logger.String("date", date.Format("2006-01-02")),
				logger.Error(err),
			)
			continue
		}
		for _, st := range states {
			k := liveKey{
				date: st.StartTimeUTC.In(s.gameDayTZ).Format("2006-01-02"),
				home: identity.Key(st.HomeTeam),
				away: identity.Key(st.AwayTeam),
			}
			live[k] = st
		}
	}

	games := make([]model.Game, 0, len(slate))
	for _, ev := range slate {
		g := model.Game{
			GameID:       ev.GameID,
			HomeTeam:     ev.HomeTeam,
			AwayTeam:     ev.AwayTeam,
			TipTimeUTC:   ev.CommenceTimeUTC,
			Status:       model.StatusPre,
			HomeSpread:   ev.HomeSpread,
			SpreadSource: ev.SpreadSource,
		}

		k := liveKey{
			date: ev.CommenceTimeUTC.In(s.gameDayTZ).Format("2006-01-02"),
			home: identity.Key(ev.HomeTeam),
			away: identity.Key(ev.AwayTeam),
		}
		if st, ok := live[k]; ok {
			g.GameID = st.GameID
			g.Status = st.State
			g.HomeScore = st.HomeScore
			g.AwayScore = st.AwayScore
			g.TimeRemaining = st.TimeRemaining
		}

		if g.Status == model.StatusPost && !s.includePost {
			continue
		}
		games = append(games, g)
	}
	return games
}

// fetchTeams fans out one task per team on the slate: roster, per-player
// stats, impact shares and the top star. Failed teams stay absent and later
// degrade to full health and no star.
func (s *Service) fetchTeams(ctx context.Context, games []model.Game) map[string]*teamData {
	names := make(map[string]string)
	for _, g := range games {
		names[identity.Key(g.HomeTeam)] = g.HomeTeam
		names[identity.Key(g.AwayTeam)] = g.AwayTeam
	}

	idMap, err := s.espn.TeamIDMap(ctx)
	if err != nil {
		s.logger.Warn(ctx, "team index unavailable, skipping rosters", logger.Error(err))
		return nil
	}
	season := feeds.SeasonYear(s.clock())

	out := make(map[string]*teamData, len(names))
	var mu sync.Mutex

	tasks := make([]worker.Task, 0, len(names))
	for key := range names {
		teamID, ok := idMap[key]
		if !ok {
			continue
		}
		tasks = append(tasks, worker.Task{Key: key, Run: func(ctx context.Context) error {
			data, err := s.fetchOneTeam(ctx, teamID, season)
			if err != nil {
				return err
			}
			mu.Lock()
			out[key] = data
			mu.Unlock()
			return nil
		}})
	}
	s.teamPool.Run(ctx, tasks)
	return out
}

func (s *Service) fetchOneTeam(ctx context.Context, teamID string, season int) (*teamData, error) {
	roster, err := s.espn.TeamRoster(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("roster for team %s: %w", teamID, err)
	}

	data := &teamData{rosterStatus: make(map[string]string)}
	lines := make([]model.PlayerStatLine, 0, len(roster))
	for _, p := range roster {
		data.refs = append(data.refs, injury.PlayerRef{AthleteID: p.AthleteID, Name: p.Name})
		if p.Status != "" {
			data.rosterStatus[p.AthleteID] = p.Status
		}

		line, err := s.espn.AthleteStats(ctx, p.AthleteID, season)
		if err != nil {
			// A single player's stats being gone is routine churn.
			continue
		}
		line.Name = p.Name
		lines = append(lines, line)
	}

	data.impacts = s.impacts.TeamImpacts(lines)
	if best, sum, ok := s.impacts.TopStar(data.impacts); ok {
		data.starID = best.AthleteID
		data.starName = best.Name
		data.starSum = sum
		data.hasStar = true
	}
	return data, nil
}

// fetchSummaries fans out one task per game with an ESPN game id.
func (s *Service) fetchSummaries(ctx context.Context, games []model.Game) map[string]feeds.Summary {
	out := make(map[string]feeds.Summary, len(games))
	var mu sync.Mutex

	tasks := make([]worker.Task, 0, len(games))
	for _, g := range games {
		gameID := g.GameID
		tasks = append(tasks, worker.Task{Key: gameID, Run: func(ctx context.Context) error {
			summary, err := s.espn.GameSummary(ctx, gameID)
			if err != nil {
				return fmt.Errorf("summary for game %s: %w", gameID, err)
			}
			mu.Lock()
			out[gameID] = summary
			mu.Unlock()
			return nil
		}})
	}
	s.summaryPool.Run(ctx, tasks)
	return out
}

// scoreGame folds everything known about one game into a Result. Every
// missing input degrades to its neutral prior.
func (s *Service) scoreGame(
	g model.Game,
	standings map[string]model.StandingsRow,
	importanceByTeam map[string]importance.Detail,
	league []model.InjuryRecord,
	teams map[string]*teamData,
	summaries map[string]feeds.Summary,
) model.Result {
	homeKey := identity.Key(g.HomeTeam)
	awayKey := identity.Key(g.AwayTeam)
	summary := summaries[g.GameID]
	gameDay := g.TipTimeUTC.In(s.gameDayTZ).Weekday()

	res := model.Result{
		HomeRecord: recordString(standings, homeKey),
		AwayRecord: recordString(standings, awayKey),
	}

	res.Home, res.HomeKeyInjuries, res.HomeStar = s.teamSnapshot(
		teams[homeKey], standings[homeKey], league, summary.InjuriesByTeam[homeKey], gameDay)
	res.Away, res.AwayKeyInjuries, res.AwayStar = s.teamSnapshot(
		teams[awayKey], standings[awayKey], league, summary.InjuriesByTeam[awayKey], gameDay)

	res.HomeImportance = importanceValue(importanceByTeam, homeKey, s.importancer.Floor())
	res.AwayImportance = importanceValue(importanceByTeam, awayKey, s.importancer.Floor())
	res.Importance = (res.HomeImportance + res.AwayImportance) / 2

	if summary.HomeSpreadClose != nil {
		closing := *summary.HomeSpreadClose
		g.HomeSpreadClose = &closing
	}
	s.blender.Observe(&g)
	res.EffectiveSpread, res.LiveWeight = s.blender.Effective(g)

	score := s.watcher.Compute(res.Home.AdjWinPct, res.Away.AdjWinPct, res.EffectiveSpread)
	res.Watchability = model.Watchability{
		TeamQuality: score.Quality,
		Closeness:   score.Closeness,
		Uavg:        score.Index / 100,
		AWI:         score.Index,
		Label:       score.Label,
	}
	res.Game = g
	return res
}

// teamSnapshot resolves injuries and computes one team's adjusted strength.
func (s *Service) teamSnapshot(
	data *teamData,
	row model.StandingsRow,
	league []model.InjuryRecord,
	gameInjuries []model.InjuryRecord,
	gameDay time.Weekday,
) (model.TeamSnapshot, []string, string) {
	snap := model.TeamSnapshot{WinPctRaw: neutralWinPct, Health: 1.0}
	if row.Wins+row.Losses > 0 || row.WinPct > 0 {
		snap.WinPctRaw = row.WinPct
	}
	if data == nil {
		snap.AdjWinPct = health.AdjustedWinPct(snap.WinPctRaw, snap.Health, 0)
		return snap, nil, ""
	}

	statuses := s.reconciler.ResolveTeam(data.refs, league, gameInjuries, data.rosterStatus, gameDay)

	var keyInjuries []string
	snap.Health, keyInjuries = s.healther.TeamHealth(data.impacts, statuses)

	starDisplay := ""
	if data.hasStar {
		snap.StarFactor = s.healther.StarFactor(data.starSum, statuses[data.starID])
		starDisplay = fmt.Sprintf("%s +%.1f%%", data.starName, 100*snap.StarFactor)
	}
	snap.AdjWinPct = health.AdjustedWinPct(snap.WinPctRaw, snap.Health, snap.StarFactor)
	return snap, keyInjuries, starDisplay
}

func recordString(standings map[string]model.StandingsRow, key string) string {
	row, ok := standings[key]
	if !ok || row.Wins+row.Losses == 0 {
		return missingRecord
	}
	return fmt.Sprintf("%d-%d", row.Wins, row.Losses)
}

func importanceValue(details map[string]importance.Detail, key string, floor float64) float64 {
	if d, ok := details[key]; ok {
		return d.Importance
	}
	return floor
}

// SourcesSummary renders a short provenance blob for logging.
func SourcesSummary(results []model.Result) string {
	set := make(map[string]struct{})
	for _, r := range results {
		if r.Game.SpreadSource != "" {
			set[r.Game.SpreadSource] = struct{}{}
		}
	}
	sources := make([]string, 0, len(set))
	for src := range set {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	return strings.Join(sources, ",")
}
