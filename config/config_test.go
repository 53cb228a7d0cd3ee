package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if got := cfg.Scoring.Weights.MaxScore(); got != 10.5 {
		t.Fatalf("default max score: got %f, want 10.5", got)
	}
}

/*
   -----------------------------------------------------------------------
   Validation rejects out-of-range values.
   -----------------------------------------------------------------------
   Each mutation breaks exactly one rule on top of an otherwise valid
   default configuration.
*/
func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero ATR period", func(c *Config) { c.Zone.ATRPeriod = 0 }},
		{"negative epsilon", func(c *Config) { c.Sweep.Epsilon = -0.1 }},
		{"threshold above max score", func(c *Config) { c.Scoring.PassThreshold = 99 }},
		{"positive max loss", func(c *Config) { c.Capital.MaxLossFixed = 5 }},
		{"zero risk per trade", func(c *Config) { c.Sizing.RiskPerTradePct = 0 }},
		{"max risk below base risk", func(c *Config) { c.Sizing.MaxRiskPerTradePct = 0.001 }},
		{"payout above one", func(c *Config) { c.Sizing.PayoutRate = 1.5 }},
		{"zero martingale base", func(c *Config) { c.Sizing.MartingaleBase = 0 }},
		{"drawdown pct at 100", func(c *Config) { c.Sizing.MaxDrawdownPct = 100 }},
		{"zero backtest candles", func(c *Config) { c.Backtest.MinCandles = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected a validation error for %s", tc.name)
			}
		})
	}
}

/*
   -----------------------------------------------------------------------
   YAML loading over defaults.
   -----------------------------------------------------------------------
   The file only names the fields it overrides; everything else keeps the
   default value.
*/
func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
sizing:
  method: martingale
  martingale_base: 2
capital:
  profit_target_fixed: 75
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sizing.Method != "martingale" || cfg.Sizing.MartingaleBase != 2 {
		t.Fatalf("overrides not applied: %+v", cfg.Sizing)
	}
	if cfg.Capital.ProfitTargetFixed != 75 {
		t.Fatalf("capital override not applied: %+v", cfg.Capital)
	}
	// untouched fields keep their defaults
	if cfg.Sweep.Epsilon != 0.2 || cfg.Sizing.PayoutRate != 0.90 {
		t.Fatalf("defaults clobbered: %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
sizing:
  risk_per_trade_pct: 0.9
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a validation error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
