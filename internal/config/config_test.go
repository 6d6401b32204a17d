package config_test

import (
	"runtime"
	"testing"

	"github.com/cameronntaylor/nba-watchability/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":9090")
			convey.So(cfg.RefreshCron, convey.ShouldEqual, "*/5 * * * *")
			convey.So(cfg.DaysAhead, convey.ShouldEqual, 2)
			convey.So(cfg.TeamWorkers, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.SummaryWorkers, convey.ShouldEqual, 8)
			convey.So(cfg.SpreadCap, convey.ShouldEqual, 15.0)
			convey.So(cfg.Sigma, convey.ShouldEqual, 0.4)
			convey.So(cfg.QualityWeight, convey.ShouldEqual, 0.7)
		})

		convey.Convey("Then the label ladder covers every index", func() {
			convey.So(cfg.Labels, convey.ShouldHaveLength, 5)
			convey.So(cfg.Labels[0].Name, convey.ShouldEqual, "Amazing game")
			convey.So(cfg.Labels[len(cfg.Labels)-1].Min, convey.ShouldEqual, 0)
		})

		convey.Convey("Then it should pass its own validation", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		convey.Convey("An inverted win window is rejected", func() {
			cfg := config.New()
			cfg.WinMin, cfg.WinMax = 0.7, 0.2
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("A spread cap at or below the minimum is rejected", func() {
			cfg := config.New()
			cfg.SpreadCap = cfg.SpreadMin
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("Non-monotonic injury weights are rejected", func() {
			cfg := config.New()
			cfg.InjuryWeightDoubtful = cfg.InjuryWeightQuestionable
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("A doubtful weight equal to the out weight is rejected", func() {
			cfg := config.New()
			cfg.InjuryWeightDoubtful = cfg.InjuryWeightOut
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("A label ladder not ending at zero is rejected", func() {
			cfg := config.New()
			cfg.Labels = []config.LabelRule{{Min: 50, Name: "Good game"}}
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})

		convey.Convey("Out-of-range floors are rejected", func() {
			cfg := config.New()
			cfg.QualityFloor = 0
			convey.So(cfg.Validate(), convey.ShouldNotBeNil)
		})
	})
}
