package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ZoneConfig tunes the period-zone detector.
type ZoneConfig struct {
	// ATRPeriod is the ATR window used both for the doji test and the
	// widened bounds.
	ATRPeriod int `yaml:"atr_period"`
	// DojiFactor: a period whose |open-close| is below DojiFactor*ATR has
	// no directional resolution and gets the widened bounds.
	DojiFactor float64 `yaml:"doji_factor"`
	// PaddingFactor pads the widened bounds beyond the period's range, in
	// ATR multiples.
	PaddingFactor float64 `yaml:"padding_factor"`
}

// SweepConfig tunes the liquidity-sweep detector.
type SweepConfig struct {
	ATRPeriod int `yaml:"atr_period"`
	// Epsilon is the excursion tolerance beyond a zone boundary, in ATR
	// multiples. Untuned default carried over from the original rule set.
	Epsilon float64 `yaml:"epsilon"`
}

// Weights are the fixed contributions of each scoring factor. Trend is the
// bonus for trading with the EMA200 regime; the counter-trend penalty is
// twice the bonus.
type Weights struct {
	Engulfing  float64 `yaml:"engulfing"`
	MACD       float64 `yaml:"macd"`
	RSI        float64 `yaml:"rsi"`
	Stochastic float64 `yaml:"stochastic"`
	Bollinger  float64 `yaml:"bollinger"`
	EMA        float64 `yaml:"ema"`
	Volume     float64 `yaml:"volume"`
	Trend      float64 `yaml:"trend"`
}

// MaxScore is the highest total a signal can reach: the sum of all positive
// factor weights plus the trend bonus.
func (w Weights) MaxScore() float64 {
	return w.Engulfing + w.MACD + w.RSI + w.Stochastic + w.Bollinger + w.EMA + w.Volume + w.Trend
}

// ScoringConfig tunes the entry scoring engine.
type ScoringConfig struct {
	// Enabled gates entries on the weighted score. When false every
	// evaluation proceeds straight to level computation with a neutral
	// confidence of 0.5.
	Enabled       bool    `yaml:"enabled"`
	PassThreshold float64 `yaml:"pass_threshold"`
	MinRiskReward float64 `yaml:"min_risk_reward"`
	VolumeFactor  float64 `yaml:"volume_factor"`
	// RiskPercent is the fixed per-trade risk attached to decisions. A
	// placeholder hook for future dynamic risk.
	RiskPercent float64 `yaml:"risk_percent"`
	Weights     Weights `yaml:"weights"`
}

// CapitalConfig tunes the daily profit/loss budget.
type CapitalConfig struct {
	ProfitTargetFixed float64 `yaml:"profit_target_fixed"`
	ProfitTargetPct   float64 `yaml:"profit_target_pct"`
	// MaxLossFixed is negative; the effective limit is the more negative of
	// the fixed loss and MaxLossPct of the start balance.
	MaxLossFixed float64 `yaml:"max_loss_fixed"`
	MaxLossPct   float64 `yaml:"max_loss_pct"`
	// MaxTradesPerDay of zero disables trade-count limiting.
	MaxTradesPerDay  int     `yaml:"max_trades_per_day"`
	ProfitProtection bool    `yaml:"profit_protection"`
	ProtectionPct    float64 `yaml:"protection_pct"`
}

// SizingConfig selects and tunes the position-sizing strategy.
type SizingConfig struct {
	// Method is one of: kelly, kelly_fractional, fixed_fractional,
	// anti_martingale, volatility, risk_parity, martingale. Unknown values
	// fall back to fixed_fractional.
	Method             string  `yaml:"method"`
	RiskPerTradePct    float64 `yaml:"risk_per_trade_pct"`
	MaxRiskPerTradePct float64 `yaml:"max_risk_per_trade_pct"`
	LookbackDays       int     `yaml:"lookback_days"`

	KellyFraction        float64 `yaml:"kelly_fraction"`
	FractionalMultiplier float64 `yaml:"fractional_multiplier"`

	AntiMartingaleMultiplier float64 `yaml:"anti_martingale_multiplier"`
	ResetWinsOnLoss          bool    `yaml:"reset_wins_on_loss"`

	ATRMultiplier float64 `yaml:"atr_multiplier"`

	TargetVolatility       float64 `yaml:"target_volatility"`
	MaxConcurrentPositions int     `yaml:"max_concurrent_positions"`

	MartingaleBase      float64 `yaml:"martingale_base"`
	MartingaleMaxLevel  int     `yaml:"martingale_max_level"`
	MartingaleIncrement float64 `yaml:"martingale_increment"`
	PayoutRate          float64 `yaml:"payout_rate"`
	ResetOnWin          bool    `yaml:"reset_on_win"`

	MaxDrawdownPct float64 `yaml:"max_drawdown_pct"`
}

// BacktestConfig tunes the historical replay.
type BacktestConfig struct {
	MinCandles    int     `yaml:"min_candles"`
	ZoneLimit     int     `yaml:"zone_limit"`
	CommissionBps float64 `yaml:"commission_bps"`
	// SlippagePct is the half-width of the uniform slippage band, as a
	// fraction of the entry price.
	SlippagePct  float64 `yaml:"slippage_pct"`
	MaxLatencyMs int     `yaml:"max_latency_ms"`
}

// Config bundles every tunable of the engine.
type Config struct {
	Zone     ZoneConfig     `yaml:"zone"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Capital  CapitalConfig  `yaml:"capital"`
	Sizing   SizingConfig   `yaml:"sizing"`
	Backtest BacktestConfig `yaml:"backtest"`
}

// Default returns the engine defaults. The sweep epsilon and the scoring
// pass threshold are carried over from the original rule set untuned.
func Default() Config {
	return Config{
		Zone: ZoneConfig{
			ATRPeriod:     14,
			DojiFactor:    0.2,
			PaddingFactor: 0.5,
		},
		Sweep: SweepConfig{
			ATRPeriod: 14,
			Epsilon:   0.2,
		},
		Scoring: ScoringConfig{
			Enabled:       true,
			PassThreshold: 5.5,
			MinRiskReward: 1.5,
			VolumeFactor:  1.2,
			RiskPercent:   0.5,
			Weights: Weights{
				Engulfing:  2.0,
				MACD:       2.0,
				RSI:        1.5,
				Stochastic: 1.0,
				Bollinger:  1.5,
				EMA:        1.0,
				Volume:     0.5,
				Trend:      1.0,
			},
		},
		Capital: CapitalConfig{
			ProfitTargetFixed: 50,
			ProfitTargetPct:   0.05,
			MaxLossFixed:      -25,
			MaxLossPct:        0.03,
			MaxTradesPerDay:   0,
			ProfitProtection:  true,
			ProtectionPct:     0.6,
		},
		Sizing: SizingConfig{
			Method:                   "fixed_fractional",
			RiskPerTradePct:          0.02,
			MaxRiskPerTradePct:       0.05,
			LookbackDays:             30,
			KellyFraction:            0.25,
			FractionalMultiplier:     0.5,
			AntiMartingaleMultiplier: 1.5,
			ResetWinsOnLoss:          true,
			ATRMultiplier:            2.0,
			TargetVolatility:         0.02,
			MaxConcurrentPositions:   3,
			MartingaleBase:           1,
			MartingaleMaxLevel:       8,
			MartingaleIncrement:      0.01,
			PayoutRate:               0.90,
			ResetOnWin:               true,
			MaxDrawdownPct:           15,
		},
		Backtest: BacktestConfig{
			MinCandles:    50,
			ZoneLimit:     5,
			CommissionBps: 2,
			SlippagePct:   0.0005,
			MaxLatencyMs:  250,
		},
	}
}

// Load reads a YAML configuration file over the defaults and validates it.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c := Default()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Validate checks that all numeric fields are within sensible bounds. It
// returns the first encountered error, allowing the caller to surface a
// clear configuration problem before any trading starts.
func (c *Config) Validate() error {
	if c.Zone.ATRPeriod <= 0 || c.Sweep.ATRPeriod <= 0 {
		return errors.New("ATR periods must be positive")
	}
	if c.Zone.DojiFactor < 0 || c.Zone.PaddingFactor < 0 {
		return errors.New("zone factors cannot be negative")
	}
	if c.Sweep.Epsilon < 0 {
		return errors.New("sweep epsilon cannot be negative")
	}
	if c.Scoring.PassThreshold < 0 || c.Scoring.PassThreshold > c.Scoring.Weights.MaxScore() {
		return fmt.Errorf("pass threshold (%f) must be within [0, max score %f]",
			c.Scoring.PassThreshold, c.Scoring.Weights.MaxScore())
	}
	if c.Scoring.MinRiskReward <= 0 {
		return errors.New("min risk/reward must be positive")
	}
	if c.Scoring.RiskPercent <= 0 {
		return errors.New("risk percent must be positive")
	}
	if c.Capital.ProtectionPct < 0 || c.Capital.ProtectionPct > 1 {
		return errors.New("protection pct must be between 0 and 1")
	}
	if c.Capital.MaxLossFixed > 0 {
		return errors.New("max loss fixed must be negative or zero")
	}
	if c.Sizing.RiskPerTradePct <= 0 || c.Sizing.RiskPerTradePct > 0.5 {
		return fmt.Errorf("RiskPerTradePct (%f) must be >0 and <=0.5", c.Sizing.RiskPerTradePct)
	}
	if c.Sizing.MaxRiskPerTradePct < c.Sizing.RiskPerTradePct {
		return errors.New("MaxRiskPerTradePct cannot be below RiskPerTradePct")
	}
	if c.Sizing.KellyFraction <= 0 || c.Sizing.KellyFraction > 1 {
		return errors.New("KellyFraction must be in (0, 1]")
	}
	if c.Sizing.PayoutRate <= 0 || c.Sizing.PayoutRate > 1 {
		return errors.New("PayoutRate must be in (0, 1]")
	}
	if c.Sizing.MartingaleBase <= 0 {
		return errors.New("MartingaleBase must be positive")
	}
	if c.Sizing.MartingaleMaxLevel <= 0 {
		return errors.New("MartingaleMaxLevel must be positive")
	}
	if c.Sizing.MartingaleIncrement <= 0 {
		return errors.New("MartingaleIncrement must be positive")
	}
	if c.Sizing.MaxConcurrentPositions <= 0 {
		return errors.New("MaxConcurrentPositions must be positive")
	}
	if c.Sizing.LookbackDays <= 0 {
		return errors.New("LookbackDays must be positive")
	}
	if c.Sizing.MaxDrawdownPct <= 0 || c.Sizing.MaxDrawdownPct >= 100 {
		return errors.New("MaxDrawdownPct must be in (0, 100)")
	}
	if c.Backtest.MinCandles <= 0 || c.Backtest.ZoneLimit <= 0 {
		return errors.New("backtest min candles and zone limit must be positive")
	}
	if c.Backtest.CommissionBps < 0 || c.Backtest.SlippagePct < 0 || c.Backtest.MaxLatencyMs < 0 {
		return errors.New("backtest cost parameters cannot be negative")
	}
	return nil
}
