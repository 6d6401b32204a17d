package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/cameronntaylor/nba-watchability/internal/adapters/cache"
	"github.com/cameronntaylor/nba-watchability/internal/adapters/feeds"
	"github.com/cameronntaylor/nba-watchability/internal/adapters/repository"
	"github.com/cameronntaylor/nba-watchability/internal/app"
	"github.com/cameronntaylor/nba-watchability/internal/config"
	"github.com/cameronntaylor/nba-watchability/internal/domain/model"
	"github.com/cameronntaylor/nba-watchability/pkg/logger"
	"github.com/cameronntaylor/nba-watchability/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	serve := flag.Bool("serve", false, "run continuously, rebuilding on the configured cron schedule")
	jsonPath := flag.String("json", "", "also write the batch as JSON to this path")
	flag.Parse()

	// .env is a local convenience; absence is not an error.
	_ = godotenv.Load()

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := buildService(cfg)

	if *serve {
		runServe(ctx, cfg, svc, log)
		return
	}

	batch, err := svc.Build(ctx)
	if err != nil {
		log.Error(ctx, "batch build failed", logger.Error(err))
		os.Exit(1)
	}
	render(os.Stdout, batch)
	if *jsonPath != "" {
		if err := writeJSON(*jsonPath, batch); err != nil {
			log.Error(ctx, "writing json output failed",
				logger.String("path", *jsonPath), logger.Error(err))
			os.Exit(1)
		}
	}
}

// writeJSON dumps the full batch, scores and explanations included.
func writeJSON(path string, batch *app.Batch) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding batch: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// buildService wires the disk cache, feeds, spread store and pipeline.
func buildService(cfg *config.Config) *app.Service {
	httpClient := &http.Client{Timeout: time.Duration(cfg.FetchTimeoutMS) * time.Millisecond}
	c := cache.New(cfg.CacheDir)

	espn := feeds.NewESPN(c,
		feeds.WithESPNHTTPClient(httpClient),
		feeds.WithESPNTTLs(feeds.TTLs{
			Scoreboard: secs(cfg.ScoreboardTTLSecs),
			Standings:  secs(cfg.StandingsTTLSecs),
			Injuries:   secs(cfg.InjuriesTTLSeconds),
			Roster:     secs(cfg.RosterTTLSeconds),
			Stats:      secs(cfg.StatsTTLSeconds),
			Summary:    secs(cfg.SummaryTTLSeconds),
		}),
	)
	odds := feeds.NewOddsAPI(c, cfg.OddsAPIKey,
		feeds.WithOddsHTTPClient(httpClient),
		feeds.WithOddsTTL(secs(cfg.OddsTTLSeconds)),
	)
	store := repository.NewFileStore(cfg.ClosingSpreadPath)

	return app.New(cfg, odds, espn, store)
}

func secs(n int) time.Duration { return time.Duration(n) * time.Second }

// runServe rebuilds on the configured cron schedule and exposes metrics and
// health endpoints until the process is signaled to stop.
func runServe(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) {
	rebuild := func() {
		if _, err := svc.Build(ctx); err != nil {
			log.Error(ctx, "scheduled batch build failed", logger.Error(err))
		}
	}

	// One immediate build so the first scrape has data behind it.
	rebuild()

	sched := cron.New()
	if _, err := sched.AddFunc(cfg.RefreshCron, rebuild); err != nil {
		log.Error(ctx, "invalid refresh_cron", logger.String("cron", cfg.RefreshCron), logger.Error(err))
		return
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              cfg.MetricsAddr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	go func() {
		log.Info(ctx, "starting metrics server", logger.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("metrics server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "metrics server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "stopped")
}

// render writes the ranked slate as an aligned text table.
func render(w io.Writer, batch *app.Batch) {
	eastern, err := time.LoadLocation("America/New_York")
	if err != nil {
		eastern = time.UTC
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MATCHUP\tTIP (ET)\tSTATUS\tSPREAD\tAWI\tLABEL\tRECORDS\tIMP\tKEY INJURIES\tSTARS")
	for _, r := range batch.Results {
		fmt.Fprintf(tw, "%s @ %s\t%s\t%s\t%s\t%.1f\t%s\t%s / %s\t%.2f\t%s\t%s\n",
			r.Game.AwayTeam, r.Game.HomeTeam,
			r.Game.TipTimeUTC.In(eastern).Format("Mon 3:04 PM"),
			statusText(r.Game),
			spreadText(r.EffectiveSpread),
			r.AWI, r.Label,
			r.AwayRecord, r.HomeRecord,
			r.Importance,
			injuryText(r.AwayKeyInjuries, r.HomeKeyInjuries),
			starText(r.AwayStar, r.HomeStar),
		)
	}
	_ = tw.Flush()
}

func statusText(g model.Game) string {
	if g.Status == model.StatusIn {
		if g.HomeScore != nil && g.AwayScore != nil {
			return fmt.Sprintf("%d-%d %s", *g.AwayScore, *g.HomeScore, g.TimeRemaining)
		}
		return g.TimeRemaining
	}
	return string(g.Status)
}

func spreadText(v *float64) string {
	if v == nil {
		return "—"
	}
	return fmt.Sprintf("%+.1f", *v)
}

func injuryText(away, home []string) string {
	parts := append(append([]string{}, away...), home...)
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, "; ")
}

func starText(away, home string) string {
	switch {
	case away == "" && home == "":
		return "—"
	case away == "":
		return home
	case home == "":
		return away
	}
	return away + " / " + home
}
