package health_test

import (
	"testing"

	"github.com/cameronntaylor/nba-watchability/internal/domain/health"
	"github.com/cameronntaylor/nba-watchability/internal/domain/impact"
	"github.com/cameronntaylor/nba-watchability/internal/domain/injury"
	. "github.com/smartystreets/goconvey/convey"
)

func roster() []impact.PlayerImpact {
	// Sorted by raw impact descending, as the impact model guarantees.
	return []impact.PlayerImpact{
		{AthleteID: "1", Name: "Franchise", RawImpact: 50, ImpactShare: 0.5},
		{AthleteID: "2", Name: "Second", RawImpact: 30, ImpactShare: 0.3},
		{AthleteID: "3", Name: "Bench", RawImpact: 20, ImpactShare: 0.2},
	}
}

func TestTeamHealth(t *testing.T) {
	Convey("Given a default health scorer", t, func() {
		s := health.NewScorer()

		Convey("When the injury map is empty", func() {
			h, keys := s.TeamHealth(roster(), nil)

			Convey("Then health is exactly 1.0 with no key injuries", func() {
				So(h, ShouldEqual, 1.0)
				So(keys, ShouldBeNil)
			})
		})

		Convey("When the franchise player is Out", func() {
			h, keys := s.TeamHealth(roster(), map[string]injury.Status{"1": injury.Out})

			Convey("Then health drops by weight*share", func() {
				So(h, ShouldAlmostEqual, 1.0-1.0*0.5)
			})

			Convey("Then the absence is a key injury", func() {
				So(keys, ShouldResemble, []string{"Franchise: Out"})
			})
		})

		Convey("When two players are penalized", func() {
			statuses := map[string]injury.Status{
				"2": injury.Doubtful,     // 0.7 * 0.3
				"3": injury.Questionable, // 0.4 * 0.2
			}
			h, keys := s.TeamHealth(roster(), statuses)

			Convey("Then penalties sum", func() {
				So(h, ShouldAlmostEqual, 1.0-(0.7*0.3+0.4*0.2))
			})

			Convey("Then key injuries are sorted by raw impact descending", func() {
				So(keys, ShouldResemble, []string{"Second: Doubtful", "Bench: Questionable"})
			})
		})

		Convey("When any positive-weight injury is added", func() {
			base, _ := s.TeamHealth(roster(), nil)
			hurt, _ := s.TeamHealth(roster(), map[string]injury.Status{"3": injury.Questionable})

			Convey("Then health strictly decreases from the baseline", func() {
				So(hurt, ShouldBeLessThan, base)
			})
		})

		Convey("When penalties would exceed 1", func() {
			s2 := health.NewScorer(health.WithOverallWeight(5))
			h, _ := s2.TeamHealth(roster(), map[string]injury.Status{
				"1": injury.Out, "2": injury.Out, "3": injury.Out,
			})

			Convey("Then health clamps to 0", func() {
				So(h, ShouldEqual, 0.0)
			})
		})

		Convey("When a borderline-share top player is Out", func() {
			players := []impact.PlayerImpact{
				{AthleteID: "1", Name: "Star", RawImpact: 10, ImpactShare: 0.05},
				{AthleteID: "2", Name: "Other", RawImpact: 9, ImpactShare: 0.05},
			}
			_, keys := s.TeamHealth(players, map[string]injury.Status{
				"1": injury.Out,
				"2": injury.Questionable,
			})

			Convey("Then the top player is flagged despite the low share, others are not", func() {
				So(keys, ShouldResemble, []string{"Star: Out"})
			})
		})

		Convey("When a flagged player is below the share threshold and not the top player", func() {
			_, keys := s.TeamHealth(roster(), map[string]injury.Status{"3": injury.Out})

			Convey("Then the player still counts via the share threshold when above it", func() {
				// Bench has share 0.2 >= default threshold 0.1, so they do appear.
				So(keys, ShouldResemble, []string{"Bench: Out"})
			})
		})
	})
}

func TestStarFactor(t *testing.T) {
	Convey("Given a default health scorer", t, func() {
		s := health.NewScorer()

		Convey("Then the star raw score amplifies cubically", func() {
			So(s.StarRaw(40), ShouldAlmostEqual, 1.0)   // (40/40)^3
			So(s.StarRaw(20), ShouldAlmostEqual, 0.125) // (0.5)^3
			So(s.StarRaw(0), ShouldEqual, 0.0)
		})

		Convey("Then an available star contributes the full bump", func() {
			So(s.StarFactor(40, injury.Available), ShouldAlmostEqual, 0.05)
		})

		Convey("Then an Out star contributes zero", func() {
			So(s.StarFactor(40, injury.Out), ShouldEqual, 0.0)
		})

		Convey("Then a questionable star is scaled by availability", func() {
			So(s.StarFactor(40, injury.Questionable), ShouldAlmostEqual, 0.05*(1-0.4))
		})
	})

	Convey("Given a custom star curve", t, func() {
		s := health.NewScorer(health.WithStarCurve(50, 2, 0.1))

		Convey("Then denominator, exponent and bump all apply", func() {
			So(s.StarFactor(25, injury.Available), ShouldAlmostEqual, 0.1*0.25)
		})
	})
}

func TestAdjustedWinPct(t *testing.T) {
	Convey("Given raw win%, health, and star factor", t, func() {
		Convey("Then the adjustment multiplies health and adds the star bump", func() {
			So(health.AdjustedWinPct(0.6, 0.9, 0.02), ShouldAlmostEqual, 0.56)
		})

		Convey("Then the result clamps to [0,1]", func() {
			So(health.AdjustedWinPct(0.99, 1.0, 0.5), ShouldEqual, 1.0)
			So(health.AdjustedWinPct(0.0, 0.0, 0.0), ShouldEqual, 0.0)
		})
	})
}
