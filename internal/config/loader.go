package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if NBA_WATCH_CONFIG is set
//  3. env (prefix NBA_WATCH_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("NBA_WATCH_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: NBA_WATCH_SPREAD_CAP, NBA_WATCH_DAYS_AHEAD, ...
	// Map env keys like NBA_WATCH_SPREAD_CAP -> spread_cap (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("NBA_WATCH_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "nba_watch_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks invariants the scoring pipeline depends on.
func (c *Config) Validate() error {
	if c.WinMax <= c.WinMin {
		return fmt.Errorf("%w: win_max must exceed win_min", ErrInvalidConfig)
	}
	if c.SpreadCap <= c.SpreadMin || c.SpreadMin < 0 {
		return fmt.Errorf("%w: spread_cap must exceed spread_min >= 0", ErrInvalidConfig)
	}
	if c.Sigma < 0 {
		return fmt.Errorf("%w: sigma must be non-negative", ErrInvalidConfig)
	}
	if c.QualityWeight < 0 || c.QualityWeight > 1 {
		return fmt.Errorf("%w: quality_weight must be in [0,1]", ErrInvalidConfig)
	}
	if c.QualityFloor <= 0 || c.QualityFloor >= 1 || c.ClosenessFloor <= 0 || c.ClosenessFloor >= 1 {
		return fmt.Errorf("%w: quality/closeness floors must be in (0,1)", ErrInvalidConfig)
	}
	if !(c.InjuryWeightAvailable < c.InjuryWeightQuestionable &&
		c.InjuryWeightQuestionable < c.InjuryWeightDoubtful &&
		c.InjuryWeightDoubtful < c.InjuryWeightOut) {
		return fmt.Errorf("%w: injury weights must be monotonic available < questionable < doubtful < out", ErrInvalidConfig)
	}
	if c.ImportanceCeiling <= c.ImportanceFloor {
		return fmt.Errorf("%w: importance_ceiling must exceed importance_floor", ErrInvalidConfig)
	}
	if len(c.Labels) == 0 {
		return fmt.Errorf("%w: labels must not be empty", ErrInvalidConfig)
	}
	for i := 1; i < len(c.Labels); i++ {
		if c.Labels[i].Min >= c.Labels[i-1].Min {
			return fmt.Errorf("%w: label thresholds must strictly decrease", ErrInvalidConfig)
		}
	}
	if c.Labels[len(c.Labels)-1].Min > 0 {
		return fmt.Errorf("%w: final label threshold must be 0 so every awi maps to a label", ErrInvalidConfig)
	}
	return nil
}
