// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - Every scoring constant is a tunable here, never a hardcoded literal in the
//   domain packages.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"runtime"
)

// LabelRule maps a minimum watchability index to a display label. Rules are
// evaluated in order; the first rule whose Min is not above the index wins.
type LabelRule struct {
	Min  float64 `koanf:"min"`
	Name string  `koanf:"name"`
}

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsAddr configures the metrics/health HTTP listen address.
	MetricsAddr string `koanf:"metrics_addr"`

	// RefreshCron is the cron spec used by serve mode for periodic recomputes.
	RefreshCron string `koanf:"refresh_cron"`

	// DaysAhead bounds the odds window: games from now through N days out.
	DaysAhead int `koanf:"days_ahead"`

	// CacheDir is the root directory for the disk response cache.
	CacheDir string `koanf:"cache_dir"`

	// ClosingSpreadPath is the file backing the closing-spread store.
	ClosingSpreadPath string `koanf:"closing_spread_path"`

	// OddsAPIKey authenticates against The Odds API.
	OddsAPIKey string `koanf:"odds_api_key"`

	// TeamWorkers sets the worker pool size for per-team impact fetches.
	TeamWorkers int `koanf:"team_workers"`

	// SummaryWorkers sets the worker pool size for per-game summary fetches.
	SummaryWorkers int `koanf:"summary_workers"`

	// FetchTimeoutMS bounds each external fetch independently of the pool.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// Cache TTLs per feed class, in seconds.
	OddsTTLSeconds      int `koanf:"odds_ttl_seconds"`
	ScoreboardTTLSecs   int `koanf:"scoreboard_ttl_seconds"`
	StandingsTTLSecs    int `koanf:"standings_ttl_seconds"`
	InjuriesTTLSeconds  int `koanf:"injuries_ttl_seconds"`
	RosterTTLSeconds    int `koanf:"roster_ttl_seconds"`
	StatsTTLSeconds     int `koanf:"stats_ttl_seconds"`
	SummaryTTLSeconds   int `koanf:"summary_ttl_seconds"`

	// Watchability aggregation parameters.
	WinMin         float64 `koanf:"win_min"`
	WinMax         float64 `koanf:"win_max"`
	SpreadCap      float64 `koanf:"spread_cap"`
	SpreadMin      float64 `koanf:"spread_min"`
	Curvature      float64 `koanf:"curvature"`
	Sigma          float64 `koanf:"sigma"`
	QualityWeight  float64 `koanf:"quality_weight"`
	QualityFloor   float64 `koanf:"quality_floor"`
	ClosenessFloor float64 `koanf:"closeness_floor"`

	// Labels is the awi bucket ladder, highest threshold first.
	Labels []LabelRule `koanf:"labels"`

	// Player impact sub-weights: raw_impact = pts + reb_w*reb + ast_w*ast.
	ImpactRebWeight float64 `koanf:"impact_reb_weight"`
	ImpactAstWeight float64 `koanf:"impact_ast_weight"`

	// Injury status weights, monotonic Available < Questionable < Doubtful < Out.
	InjuryWeightAvailable    float64 `koanf:"injury_weight_available"`
	InjuryWeightQuestionable float64 `koanf:"injury_weight_questionable"`
	InjuryWeightDoubtful     float64 `koanf:"injury_weight_doubtful"`
	InjuryWeightOut          float64 `koanf:"injury_weight_out"`

	// InjuryOverallWeight scales the summed per-player injury penalty.
	InjuryOverallWeight float64 `koanf:"injury_overall_weight"`

	// KeyInjuryShareThreshold marks a penalized player as a headline injury.
	KeyInjuryShareThreshold float64 `koanf:"key_injury_share_threshold"`

	// Star factor tunables: the curve is a parameter, not a law.
	StarRebWeight float64 `koanf:"star_reb_weight"`
	StarAstWeight float64 `koanf:"star_ast_weight"`
	StarDenom     float64 `koanf:"star_denom"`
	StarExponent  float64 `koanf:"star_exponent"`
	StarBump      float64 `koanf:"star_bump"`

	// Importance bounds.
	ImportanceFloor   float64 `koanf:"importance_floor"`
	ImportanceCeiling float64 `koanf:"importance_ceiling"`
}

// New creates a Config populated with production defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		MetricsAddr:       ":9090",
		RefreshCron:       "*/5 * * * *",
		DaysAhead:         2,
		CacheDir:          ".cache",
		ClosingSpreadPath: "data/close_spreads.json",

		TeamWorkers:    runtime.NumCPU() * 2,
		SummaryWorkers: 8,
		FetchTimeoutMS: 15_000,

		OddsTTLSeconds:     5 * 60,
		ScoreboardTTLSecs:  60,
		StandingsTTLSecs:   60 * 60,
		InjuriesTTLSeconds: 10 * 60,
		RosterTTLSeconds:   24 * 60 * 60,
		StatsTTLSeconds:    24 * 60 * 60,
		SummaryTTLSeconds:  10 * 60,

		WinMin:         0.2,
		WinMax:         0.7,
		SpreadCap:      15.0,
		SpreadMin:      0.5,
		Curvature:      0.9,
		Sigma:          0.4,
		QualityWeight:  0.7,
		QualityFloor:   0.1,
		ClosenessFloor: 0.1,

		Labels: []LabelRule{
			{Min: 90, Name: "Amazing game"},
			{Min: 75, Name: "Great game"},
			{Min: 50, Name: "Good game"},
			{Min: 25, Name: "Ok game"},
			{Min: 0, Name: "Crap game"},
		},

		ImpactRebWeight: 1.0,
		ImpactAstWeight: 1.0,

		InjuryWeightAvailable:    0.0,
		InjuryWeightQuestionable: 0.4,
		InjuryWeightDoubtful:     0.7,
		InjuryWeightOut:          1.0,
		InjuryOverallWeight:      1.0,
		KeyInjuryShareThreshold:  0.10,

		StarRebWeight: 0.5,
		StarAstWeight: 0.75,
		StarDenom:     40.0,
		StarExponent:  3.0,
		StarBump:      0.05,

		ImportanceFloor:   0.1,
		ImportanceCeiling: 1.0,
	}
}
