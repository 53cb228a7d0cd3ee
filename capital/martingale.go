package capital

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/evdnx/liqsweep/config"
	"github.com/evdnx/liqsweep/types"
)

// hardMartingaleCap bounds the configured maximum level. Eight doublings
// already exceed any sane account; beyond that the ladder resets.
const hardMartingaleCap = 8

// balanceClampPct is the share of the balance a single martingale stake may
// occupy before it is clamped (or, at the level cap, reset).
const balanceClampPct = 0.95

func martingaleCap(cfg config.SizingConfig) int {
	cap := cfg.MartingaleMaxLevel
	if cap > hardMartingaleCap {
		cap = hardMartingaleCap
	}
	return cap
}

// martingaleSizer stakes the amount needed to recover the accumulated
// losses of the current ladder at the configured payout rate, rounded up
// to the minimum increment and floored at the base amount. Reaching the
// level cap resets the ladder to the base stake.
type martingaleSizer struct {
	cfg config.SizingConfig
}

func (s martingaleSizer) Name() string { return "martingale" }

func (s martingaleSizer) Size(balance decimal.Decimal, _ Stats, _ MarketContext, state *types.CapitalState) types.PositionSizeResult {
	base := decimal.NewFromFloat(s.cfg.MartingaleBase)
	cap := martingaleCap(s.cfg)

	level := 0
	if state != nil {
		level = state.MartingaleLevel
	}

	if level >= cap {
		if state != nil {
			state.MartingaleLevel = 0
			state.MartingaleLosses = decimal.Zero
		}
		res := result(s.Name(), base, 0.3)
		res.Method = fmt.Sprintf("%s (cap %d reached, ladder reset)", s.Name(), cap)
		return res
	}

	amount := base
	if level > 0 && state != nil {
		payout := decimal.NewFromFloat(s.cfg.PayoutRate)
		inc := decimal.NewFromFloat(s.cfg.MartingaleIncrement)
		amount = roundUpToIncrement(state.MartingaleLosses.Div(payout), inc)
		if amount.LessThan(base) {
			amount = base
		}
	}

	// A stake this deep into the ladder can outgrow the account. Below the
	// cap it is clamped; the cap case above already reset instead.
	limit := balance.Mul(decimal.NewFromFloat(balanceClampPct))
	if amount.GreaterThan(limit) {
		amount = limit
	}

	confidence := 1 - 0.1*float64(level)
	if confidence < 0.3 {
		confidence = 0.3
	}
	res := result(s.Name(), amount, confidence)
	res.Method = fmt.Sprintf("%s (level %d)", s.Name(), level)
	return res
}

// roundUpToIncrement rounds amount up to the next multiple of inc.
func roundUpToIncrement(amount, inc decimal.Decimal) decimal.Decimal {
	if inc.IsZero() {
		return amount
	}
	steps := amount.Div(inc).Ceil()
	return steps.Mul(inc)
}
