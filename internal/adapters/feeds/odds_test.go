package feeds_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/cameronntaylor/nba-watchability/internal/adapters/cache"
	"github.com/cameronntaylor/nba-watchability/internal/adapters/feeds"
)

func newOdds(t *testing.T, now time.Time, handler http.Handler) *feeds.OddsAPI {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := cache.New(t.TempDir())
	return feeds.NewOddsAPI(c, "test-key",
		feeds.WithOddsBase(srv.URL),
		feeds.WithOddsClock(func() time.Time { return now }),
	)
}

func oddsBody(now time.Time) string {
	in := now.Add(3 * time.Hour).Format(time.RFC3339)
	far := now.Add(10 * 24 * time.Hour).Format(time.RFC3339)
	return fmt.Sprintf(`[
		{"id":"ev1","commence_time":"%s","home_team":"Boston Celtics","away_team":"Denver Nuggets",
		 "bookmakers":[
			{"key":"a","markets":[{"key":"spreads","outcomes":[
				{"name":"Boston Celtics","point":-4.5},{"name":"Denver Nuggets","point":4.5}]}]},
			{"key":"b","markets":[{"key":"spreads","outcomes":[
				{"name":"Boston Celtics","point":-5.0},{"name":"Denver Nuggets","point":5.0}]}]},
			{"key":"c","markets":[{"key":"spreads","outcomes":[
				{"name":"Boston Celtics","point":-3.5},{"name":"Denver Nuggets","point":3.5}]}]}
		]},
		{"id":"ev2","commence_time":"%s","home_team":"New York Knicks","away_team":"Utah Jazz",
		 "bookmakers":[]},
		{"id":"ev3","commence_time":"%s","home_team":"Phoenix Suns","away_team":"Miami Heat",
		 "bookmakers":[]}
	]`, in, in, far)
}

func TestSpreadsWindow(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	Convey("Given an odds feed with three books on one game", t, func() {
		o := newOdds(t, now, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(oddsBody(now)))
		}))

		games, err := o.SpreadsWindow(context.Background(), 2)
		So(err, ShouldBeNil)

		Convey("The consensus is the median across books", func() {
			So(games, ShouldHaveLength, 2)
			So(games[0].GameID, ShouldEqual, "ev1")
			So(*games[0].HomeSpread, ShouldEqual, -4.5)
			So(games[0].SpreadSource, ShouldEqual, feeds.SourceMedianAcrossBooks)
		})

		Convey("A game with no books still appears, without a spread", func() {
			So(games[1].GameID, ShouldEqual, "ev2")
			So(games[1].HomeSpread, ShouldBeNil)
			So(games[1].SpreadSource, ShouldEqual, feeds.SourceNoSpreadFound)
		})

		Convey("Events outside the window are dropped", func() {
			for _, g := range games {
				So(g.GameID, ShouldNotEqual, "ev3")
			}
		})
	})

	Convey("Given a plan that rejects window params with 422", t, func() {
		o := newOdds(t, now, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("commenceTimeFrom") != "" {
				w.WriteHeader(http.StatusUnprocessableEntity)
				return
			}
			w.Write([]byte(oddsBody(now)))
		}))

		games, err := o.SpreadsWindow(context.Background(), 2)
		So(err, ShouldBeNil)

		Convey("The unwindowed retry still filters client-side", func() {
			So(games, ShouldHaveLength, 2)
		})
	})

	Convey("Given an even number of quoting books", t, func() {
		in := now.Add(2 * time.Hour).Format(time.RFC3339)
		body := fmt.Sprintf(`[{"id":"ev4","commence_time":"%s",
			"home_team":"H","away_team":"A","bookmakers":[
			{"key":"a","markets":[{"key":"spreads","outcomes":[{"name":"H","point":-4.0}]}]},
			{"key":"b","markets":[{"key":"spreads","outcomes":[{"name":"H","point":-5.0}]}]}
		]}]`, in)
		o := newOdds(t, now, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		games, err := o.SpreadsWindow(context.Background(), 1)
		So(err, ShouldBeNil)
		So(*games[0].HomeSpread, ShouldEqual, -4.5)
	})

	Convey("Given no API key", t, func() {
		c := cache.New(t.TempDir())
		o := feeds.NewOddsAPI(c, "")
		_, err := o.SpreadsWindow(context.Background(), 1)
		So(errors.Is(err, feeds.ErrNoAPIKey), ShouldBeTrue)
	})
}
