package injury_test

import (
	"testing"
	"time"

	"github.com/cameronntaylor/nba-watchability/internal/domain/injury"
	"github.com/cameronntaylor/nba-watchability/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWeights(t *testing.T) {
	Convey("Given the default status weights", t, func() {
		w := injury.DefaultWeights()

		Convey("Then ordering is Out > Doubtful > Questionable > Available == 0", func() {
			So(w.For(injury.Out), ShouldBeGreaterThan, w.For(injury.Doubtful))
			So(w.For(injury.Doubtful), ShouldBeGreaterThan, w.For(injury.Questionable))
			So(w.For(injury.Questionable), ShouldBeGreaterThan, w.For(injury.Available))
			So(w.For(injury.Available), ShouldEqual, 0)
		})

		Convey("Then every weight is within [0,1]", func() {
			for _, s := range []injury.Status{injury.Available, injury.Questionable, injury.Doubtful, injury.Out} {
				So(w.For(s), ShouldBeBetweenOrEqual, 0, 1)
			}
		})
	})
}

func TestParseAbbr(t *testing.T) {
	Convey("Given feed status strings", t, func() {
		Convey("Then terminal statuses parse directly", func() {
			cases := map[string]injury.Status{
				"Out":          injury.Out,
				"O":            injury.Out,
				"Injured":      injury.Out,
				"Doubtful":     injury.Doubtful,
				"D":            injury.Doubtful,
				"Questionable": injury.Questionable,
				"Q":            injury.Questionable,
				"Probable":     injury.Available,
				"P":            injury.Available,
				"Active":       injury.Available,
				"Available":    injury.Available,
				"":             injury.Available,
			}
			for raw, want := range cases {
				got, ambiguous := injury.ParseAbbr(raw)
				So(got, ShouldEqual, want)
				So(ambiguous, ShouldBeFalse)
			}
		})

		Convey("Then day-to-day codes are flagged ambiguous", func() {
			for _, raw := range []string{"GTD", "DTD", "Day-To-Day", "day to day", "Game-Time Decision"} {
				got, ambiguous := injury.ParseAbbr(raw)
				So(got, ShouldEqual, injury.Questionable)
				So(ambiguous, ShouldBeTrue)
			}
		})

		Convey("Then unknown strings default to Available", func() {
			got, ambiguous := injury.ParseAbbr("NWT")
			So(got, ShouldEqual, injury.Available)
			So(ambiguous, ShouldBeFalse)
		})
	})
}

func TestRefineDayToDay(t *testing.T) {
	Convey("Given an ambiguous day-to-day status", t, func() {
		wednesday := time.Wednesday

		Convey("When the comment mentions the game day", func() {
			Convey("Then probable resolves to Available", func() {
				got := injury.RefineDayToDay("Jones is probable for Wednesday's game vs. Boston.", "", wednesday)
				So(got, ShouldEqual, injury.Available)
			})

			Convey("Then doubtful resolves to Doubtful", func() {
				got := injury.RefineDayToDay("", "Smith (ankle) is doubtful for Wednesday.", wednesday)
				So(got, ShouldEqual, injury.Doubtful)
			})

			Convey("Then questionable resolves to Questionable", func() {
				got := injury.RefineDayToDay("Questionable for Wed. tilt with a sore knee.", "", wednesday)
				So(got, ShouldEqual, injury.Questionable)
			})
		})

		Convey("When the comment references a different day", func() {
			Convey("Then a stale comment does not apply and the default holds", func() {
				got := injury.RefineDayToDay("Jones was probable for Monday's game.", "", wednesday)
				So(got, ShouldEqual, injury.Questionable)
			})

			Convey("Then a short form buried in another word does not match", func() {
				got := injury.RefineDayToDay("Jones is probable pending his wedding recovery.", "", wednesday)
				So(got, ShouldEqual, injury.Questionable)
			})
		})

		Convey("When there is no comment at all", func() {
			So(injury.RefineDayToDay("", "", wednesday), ShouldEqual, injury.Questionable)
		})
	})
}

func TestResolveTeam(t *testing.T) {
	Convey("Given a reconciler and a three-player roster", t, func() {
		r := injury.NewReconciler()
		players := []injury.PlayerRef{
			{AthleteID: "1", Name: "Ace Guard"},
			{AthleteID: "2", Name: "Big Center"},
			{AthleteID: "3", Name: "Role Player"},
		}
		day := time.Friday

		Convey("When the league feed covers a player", func() {
			league := []model.InjuryRecord{{AthleteID: "1", Name: "Ace Guard", StatusAbbr: "O"}}
			game := []model.InjuryRecord{{AthleteID: "1", Name: "Ace Guard", StatusAbbr: "Q"}}

			Convey("Then the league feed wins over the game block", func() {
				got := r.ResolveTeam(players, league, game, nil, day)
				So(got["1"], ShouldEqual, injury.Out)
			})
		})

		Convey("When a player is absent from the league feed", func() {
			game := []model.InjuryRecord{{AthleteID: "2", Name: "Big Center", StatusAbbr: "Doubtful"}}

			Convey("Then the game block fills in", func() {
				got := r.ResolveTeam(players, nil, game, nil, day)
				So(got["2"], ShouldEqual, injury.Doubtful)
			})
		})

		Convey("When athlete ids don't align across feeds", func() {
			league := []model.InjuryRecord{{AthleteID: "espn-77", Name: "Role Player", StatusAbbr: "Out"}}

			Convey("Then name matching still joins the record", func() {
				got := r.ResolveTeam(players, league, nil, nil, day)
				So(got["3"], ShouldEqual, injury.Out)
			})
		})

		Convey("When only the roster feed carries a status", func() {
			roster := map[string]string{"2": "Day-To-Day"}

			Convey("Then the roster signal is used as last resort", func() {
				got := r.ResolveTeam(players, nil, nil, roster, day)
				So(got["2"], ShouldEqual, injury.Questionable)
			})
		})

		Convey("When a GTD status has a comment for the right day", func() {
			league := []model.InjuryRecord{{
				AthleteID:    "1",
				Name:         "Ace Guard",
				StatusAbbr:   "GTD",
				ShortComment: "Ace Guard (hip) is probable for Friday against the Lakers.",
			}}

			Convey("Then the comment refines the status", func() {
				got := r.ResolveTeam(players, league, nil, nil, day)
				_, flagged := got["1"]
				So(flagged, ShouldBeFalse) // probable == Available, so omitted
			})
		})

		Convey("When a GTD comment is about another day", func() {
			league := []model.InjuryRecord{{
				AthleteID:    "1",
				Name:         "Ace Guard",
				StatusAbbr:   "GTD",
				ShortComment: "Ace Guard was probable for Tuesday's matchup.",
			}}

			Convey("Then the ambiguous default (Questionable) holds", func() {
				got := r.ResolveTeam(players, league, nil, nil, day)
				So(got["1"], ShouldEqual, injury.Questionable)
			})
		})

		Convey("When no source mentions anyone", func() {
			Convey("Then the map is empty, meaning fully available", func() {
				got := r.ResolveTeam(players, nil, nil, nil, day)
				So(got, ShouldBeEmpty)
			})
		})
	})
}
