package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cameronntaylor/nba-watchability/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DaysAhead, convey.ShouldEqual, 2)
				convey.So(cfg.SpreadCap, convey.ShouldEqual, 15.0)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("NBA_WATCH_METRICS_ADDR", ":8080")
			_ = os.Setenv("NBA_WATCH_DAYS_AHEAD", "5")
			_ = os.Setenv("NBA_WATCH_SPREAD_CAP", "12.5")
			_ = os.Setenv("NBA_WATCH_ODDS_API_KEY", "test-key")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DaysAhead, convey.ShouldEqual, 5)
				convey.So(cfg.SpreadCap, convey.ShouldEqual, 12.5)
				convey.So(cfg.OddsAPIKey, convey.ShouldEqual, "test-key")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
metrics_addr: ":7070"
days_ahead: 3
quality_weight: 0.6
refresh_cron: "*/10 * * * *"
`
			tmpFile := createTempConfigFile(t, yamlContent)

			_ = os.Setenv("NBA_WATCH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.MetricsAddr, convey.ShouldEqual, ":7070")
				convey.So(cfg.DaysAhead, convey.ShouldEqual, 3)
				convey.So(cfg.QualityWeight, convey.ShouldEqual, 0.6)
				convey.So(cfg.RefreshCron, convey.ShouldEqual, "*/10 * * * *")
			})
		})

		convey.Convey("When env vars override the YAML file", func() {
			tmpFile := createTempConfigFile(t, "days_ahead: 3\n")
			_ = os.Setenv("NBA_WATCH_CONFIG", tmpFile)
			_ = os.Setenv("NBA_WATCH_DAYS_AHEAD", "7")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DaysAhead, convey.ShouldEqual, 7)
			})
		})

		convey.Convey("When the config file is missing", func() {
			_ = os.Setenv("NBA_WATCH_CONFIG", "/nonexistent/config.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails with a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
			})
		})

		convey.Convey("When loaded values violate invariants", func() {
			_ = os.Setenv("NBA_WATCH_WIN_MIN", "0.9")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects the config", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"NBA_WATCH_CONFIG",
		"NBA_WATCH_METRICS_ADDR",
		"NBA_WATCH_DAYS_AHEAD",
		"NBA_WATCH_SPREAD_CAP",
		"NBA_WATCH_ODDS_API_KEY",
		"NBA_WATCH_WIN_MIN",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}
