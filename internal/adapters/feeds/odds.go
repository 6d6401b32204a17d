package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/cameronntaylor/nba-watchability/internal/domain/model"
	"github.com/cameronntaylor/nba-watchability/pkg/logger"
	"github.com/cameronntaylor/nba-watchability/pkg/metrics"
)

// The Odds API defaults.
const (
	defaultOddsBase = "https://api.the-odds-api.com/v4"
	defaultRegions  = "us"
	defaultMarkets  = "spreads"
	sportKeyNBA     = "basketball_nba"
	defaultOddsTTL  = 5 * time.Minute

	// Recently tipped games stay in the window so live slates keep their
	// market line.
	windowLookback = 6 * time.Hour

	// Spread sources reported on each game.
	SourceMedianAcrossBooks = "median_across_books"
	SourceNoSpreadFound     = "no_spread_found"
)

// OddsAPI fetches NBA spreads from The Odds API.
type OddsAPI struct {
	client  *http.Client
	cache   Cache
	base    string
	apiKey  string
	regions string
	markets string
	ttl     time.Duration
	clock   func() time.Time
	logger  logger.Logger
}

// NewOddsAPI creates an odds client over the given cache.
func NewOddsAPI(c Cache, apiKey string, opts ...OddsOption) *OddsAPI {
	o := &OddsAPI{
		client:  &http.Client{Timeout: defaultFetchTimeout},
		cache:   c,
		base:    defaultOddsBase,
		apiKey:  apiKey,
		regions: defaultRegions,
		markets: defaultMarkets,
		ttl:     defaultOddsTTL,
		clock:   time.Now,
		logger:  logger.Get().Named("odds"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// oddsEvent mirrors one event from the odds endpoint.
type oddsEvent struct {
	ID           string `json:"id"`
	CommenceTime string `json:"commence_time"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
	Bookmakers   []struct {
		Key     string `json:"key"`
		Markets []struct {
			Key      string `json:"key"`
			Outcomes []struct {
				Name  string   `json:"name"`
				Point *float64 `json:"point"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// SpreadsWindow returns the consensus home spreads for all NBA events from
// six hours ago through daysAhead days into the future, sorted by tip time.
// The consensus is the median home point across all quoting books.
func (o *OddsAPI) SpreadsWindow(ctx context.Context, daysAhead int) ([]model.GameOdds, error) {
	if o.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if daysAhead < 0 {
		daysAhead = 0
	}

	now := o.clock().UTC().Truncate(time.Second)
	start := now.Add(-windowLookback)
	end := now.Add(time.Duration(daysAhead)*24*time.Hour + 23*time.Hour + 59*time.Minute)

	var events []oddsEvent
	key := fmt.Sprintf("window:%s:%d", now.Format("2006-01-02T15"), daysAhead)
	err := o.cache.GetOrFetch(ctx, "odds", key, o.ttl, func(ctx context.Context) (any, error) {
		return o.fetchWindow(ctx, start, end)
	}, &events)
	if err != nil {
		return nil, err
	}

	games := make([]model.GameOdds, 0, len(events))
	for _, ev := range events {
		tip, err := time.Parse(time.RFC3339, ev.CommenceTime)
		if err != nil {
			continue
		}
		tip = tip.UTC()
		if tip.Before(start) || tip.After(end) {
			continue
		}

		game := model.GameOdds{
			GameID:          ev.ID,
			CommenceTimeUTC: tip,
			HomeTeam:        ev.HomeTeam,
			AwayTeam:        ev.AwayTeam,
			SpreadSource:    SourceNoSpreadFound,
		}
		if consensus, ok := consensusHomeSpread(ev); ok {
			game.HomeSpread = &consensus
			game.SpreadSource = SourceMedianAcrossBooks
		}
		games = append(games, game)
	}

	sort.Slice(games, func(i, j int) bool {
		return games[i].CommenceTimeUTC.Before(games[j].CommenceTimeUTC)
	})
	return games, nil
}

// fetchWindow queries the odds endpoint with a commence-time window, falling
// back to an unwindowed query when the plan rejects window params with 422.
// The caller filters client-side either way.
func (o *OddsAPI) fetchWindow(ctx context.Context, start, end time.Time) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("apiKey", o.apiKey)
	params.Set("regions", o.regions)
	params.Set("markets", o.markets)
	params.Set("oddsFormat", "american")
	params.Set("dateFormat", "iso")

	windowed := url.Values{}
	for k, v := range params {
		windowed[k] = v
	}
	windowed.Set("commenceTimeFrom", start.Format(time.RFC3339))
	windowed.Set("commenceTimeTo", end.Format(time.RFC3339))

	base := fmt.Sprintf("%s/sports/%s/odds", o.base, sportKeyNBA)

	fetchStart := time.Now()
	raw, err := fetchBody(ctx, o.client, base+"?"+windowed.Encode())
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnprocessableEntity {
		o.logger.Debug(ctx, "window params rejected, retrying unwindowed")
		raw, err = fetchBody(ctx, o.client, base+"?"+params.Encode())
	}
	if err != nil {
		metrics.RecordFeedFetchError("odds")
		return nil, err
	}
	metrics.RecordFeedFetch("odds", time.Since(fetchStart))
	return raw, nil
}

// consensusHomeSpread medians the home team's point across every quoting
// book in the spreads market.
func consensusHomeSpread(ev oddsEvent) (float64, bool) {
	var points []float64
	for _, book := range ev.Bookmakers {
		for _, mkt := range book.Markets {
			if mkt.Key != "spreads" {
				continue
			}
			for _, outcome := range mkt.Outcomes {
				if outcome.Name == ev.HomeTeam && outcome.Point != nil {
					points = append(points, *outcome.Point)
				}
			}
		}
	}
	if len(points) == 0 {
		return 0, false
	}
	sort.Float64s(points)
	mid := len(points) / 2
	if len(points)%2 == 1 {
		return points[mid], true
	}
	return (points[mid-1] + points[mid]) / 2, true
}
