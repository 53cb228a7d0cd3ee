package capital

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/evdnx/liqsweep/config"
	"github.com/evdnx/liqsweep/types"
)

// MarketContext is the slice of market state a sizing strategy may use.
type MarketContext struct {
	ATR        float64
	EntryPrice float64
}

// Sizer converts balance, history statistics, market context and the
// per-account state into a risk amount. A sizer may mutate the state
// (the martingale ladder does).
type Sizer interface {
	Name() string
	Size(balance decimal.Decimal, stats Stats, mkt MarketContext, state *types.CapitalState) types.PositionSizeResult
}

// sizerFor maps a configured method name to its implementation. Unknown
// names deterministically fall back to fixed_fractional; the caller logs
// the mismatch.
func sizerFor(method string, cfg config.SizingConfig) (Sizer, bool) {
	switch method {
	case "kelly":
		return kellySizer{cfg: cfg}, true
	case "kelly_fractional":
		return kellySizer{cfg: cfg, fractional: true}, true
	case "fixed_fractional":
		return fixedFractionalSizer{cfg: cfg}, true
	case "anti_martingale":
		return antiMartingaleSizer{cfg: cfg}, true
	case "volatility":
		return volatilitySizer{cfg: cfg}, true
	case "risk_parity":
		return riskParitySizer{cfg: cfg}, true
	case "martingale":
		return martingaleSizer{cfg: cfg}, true
	default:
		return fixedFractionalSizer{cfg: cfg}, false
	}
}

func result(method string, risk decimal.Decimal, confidence float64) types.PositionSizeResult {
	if risk.IsNegative() {
		risk = decimal.Zero
	}
	contracts := int(risk.IntPart())
	if contracts < 1 {
		contracts = 1
	}
	return types.PositionSizeResult{
		// one currency unit buys one contract unit in the current model
		ContractAmount:       risk,
		RiskAmount:           risk,
		RecommendedContracts: contracts,
		Method:               method,
		Confidence:           confidence,
	}
}

// fixedFractionalSizer risks a flat fraction of the balance. It is also
// the deterministic fallback for every other strategy's degenerate case.
type fixedFractionalSizer struct {
	cfg config.SizingConfig
}

func (s fixedFractionalSizer) Name() string { return "fixed_fractional" }

func (s fixedFractionalSizer) Size(balance decimal.Decimal, _ Stats, _ MarketContext, _ *types.CapitalState) types.PositionSizeResult {
	risk := balance.Mul(decimal.NewFromFloat(s.cfg.RiskPerTradePct))
	return result(s.Name(), risk, 0.8)
}

// kellySizer risks the clamped Kelly fraction of the balance, optionally
// scaled down by the fractional multiplier. A zero Kelly (degenerate
// statistics) falls back to fixed-fractional.
type kellySizer struct {
	cfg        config.SizingConfig
	fractional bool
}

func (s kellySizer) Name() string {
	if s.fractional {
		return "kelly_fractional"
	}
	return "kelly"
}

func (s kellySizer) Size(balance decimal.Decimal, stats Stats, mkt MarketContext, state *types.CapitalState) types.PositionSizeResult {
	if stats.Kelly <= 0 {
		res := fixedFractionalSizer{cfg: s.cfg}.Size(balance, stats, mkt, state)
		res.Method = s.Name() + " (fallback: fixed_fractional)"
		res.Confidence = 0.5
		return res
	}
	pct := stats.Kelly
	if s.fractional {
		pct *= s.cfg.FractionalMultiplier
	}
	risk := balance.Mul(decimal.NewFromFloat(pct))
	return result(s.Name(), risk, 0.9)
}

// antiMartingaleSizer compounds the stake with consecutive wins, capped at
// three doublings and at the hard per-trade risk ceiling.
type antiMartingaleSizer struct {
	cfg config.SizingConfig
}

func (s antiMartingaleSizer) Name() string { return "anti_martingale" }

func (s antiMartingaleSizer) Size(balance decimal.Decimal, _ Stats, _ MarketContext, state *types.CapitalState) types.PositionSizeResult {
	streak := 0
	if state != nil {
		streak = state.ConsecutiveWins
	}
	if streak > 3 {
		streak = 3
	}
	mult := math.Pow(s.cfg.AntiMartingaleMultiplier, float64(streak))
	risk := balance.Mul(decimal.NewFromFloat(s.cfg.RiskPerTradePct * mult))
	maxRisk := balance.Mul(decimal.NewFromFloat(s.cfg.MaxRiskPerTradePct))
	if risk.GreaterThan(maxRisk) {
		risk = maxRisk
	}
	return result(s.Name(), risk, 0.7)
}

// volatilitySizer scales risk with the ATR relative to the entry price.
// Missing market context falls back to fixed-fractional.
type volatilitySizer struct {
	cfg config.SizingConfig
}

func (s volatilitySizer) Name() string { return "volatility" }

func (s volatilitySizer) Size(balance decimal.Decimal, stats Stats, mkt MarketContext, state *types.CapitalState) types.PositionSizeResult {
	if mkt.ATR <= 0 || mkt.EntryPrice <= 0 {
		res := fixedFractionalSizer{cfg: s.cfg}.Size(balance, stats, mkt, state)
		res.Method = s.Name() + " (fallback: fixed_fractional)"
		res.Confidence = 0.5
		return res
	}
	frac := mkt.ATR * s.cfg.ATRMultiplier / mkt.EntryPrice
	risk := balance.Mul(decimal.NewFromFloat(frac))
	maxRisk := balance.Mul(decimal.NewFromFloat(s.cfg.MaxRiskPerTradePct))
	if risk.GreaterThan(maxRisk) {
		risk = maxRisk
	}
	return result(s.Name(), risk, 0.75)
}

// riskParitySizer splits the volatility budget across the maximum number
// of concurrent positions.
type riskParitySizer struct {
	cfg config.SizingConfig
}

func (s riskParitySizer) Name() string { return "risk_parity" }

func (s riskParitySizer) Size(balance decimal.Decimal, _ Stats, _ MarketContext, _ *types.CapitalState) types.PositionSizeResult {
	risk := balance.
		Mul(decimal.NewFromFloat(s.cfg.TargetVolatility)).
		Div(decimal.NewFromInt(int64(s.cfg.MaxConcurrentPositions)))
	maxRisk := balance.Mul(decimal.NewFromFloat(s.cfg.MaxRiskPerTradePct))
	if risk.GreaterThan(maxRisk) {
		risk = maxRisk
	}
	return result(s.Name(), risk, 0.7)
}
