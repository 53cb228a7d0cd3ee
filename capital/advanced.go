package capital

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evdnx/liqsweep/config"
	"github.com/evdnx/liqsweep/logger"
	"github.com/evdnx/liqsweep/metrics"
	"github.com/evdnx/liqsweep/store"
	"github.com/evdnx/liqsweep/types"
)

// AdvancedManager layers position sizing on the daily budget manager. It
// owns the per-account CapitalState; a single logical account must be
// served by exactly one AdvancedManager instance, and all state mutation
// goes through its lock.
type AdvancedManager struct {
	*Manager

	scfg    config.SizingConfig
	history store.TradeHistory
	log     logger.Logger

	mu    sync.Mutex
	state *types.CapitalState

	now func() time.Time // test hook
}

// NewAdvancedManager wires the sizing layer. The state object is injected
// so a caller can persist it and restore it across restarts; nil starts a
// fresh account.
func NewAdvancedManager(base *Manager, scfg config.SizingConfig, history store.TradeHistory, state *types.CapitalState, log logger.Logger) *AdvancedManager {
	if state == nil {
		state = &types.CapitalState{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &AdvancedManager{
		Manager: base,
		scfg:    scfg,
		history: history,
		log:     log,
		state:   state,
		now:     time.Now,
	}
}

// State returns a copy of the per-account state, e.g. for persistence.
func (a *AdvancedManager) State() types.CapitalState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return *a.state
}

// Size converts the balance into a position size using the configured
// strategy, then applies the global drawdown dampener. An unknown method
// name falls back to fixed_fractional deterministically.
func (a *AdvancedManager) Size(ctx context.Context, symbol string, balance decimal.Decimal, mkt MarketContext) (types.PositionSizeResult, error) {
	stats, err := a.Stats(ctx, symbol)
	if err != nil {
		return types.PositionSizeResult{}, err
	}

	sizer, known := sizerFor(a.scfg.Method, a.scfg)
	if !known {
		a.log.Warn("unknown_sizing_method",
			logger.String("method", a.scfg.Method),
			logger.String("fallback", sizer.Name()),
		)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if balance.GreaterThan(a.state.PeakBalance) {
		a.state.PeakBalance = balance
	}

	res := sizer.Size(balance, stats, mkt, a.state)

	// Drawdown dampener: the deeper below the historical peak, the less
	// risk any strategy is allowed to take.
	dd := drawdownPct(balance, a.state.PeakBalance)
	if dd > a.scfg.MaxDrawdownPct {
		factor := math.Max(0.1, 1-(dd-a.scfg.MaxDrawdownPct)/100)
		res.RiskAmount = res.RiskAmount.Mul(decimal.NewFromFloat(factor))
		res.ContractAmount = res.RiskAmount
		if c := int(res.ContractAmount.IntPart()); c >= 1 {
			res.RecommendedContracts = c
		} else {
			res.RecommendedContracts = 1
		}
		a.log.Warn("drawdown_dampener_applied",
			logger.Float64("drawdown_pct", dd),
			logger.Float64("factor", factor),
		)
	}

	metrics.OrdersSized.WithLabelValues(sizer.Name()).Inc()
	return res, nil
}

// RecordTradeResult feeds a completed trade back into the per-account
// state: win/loss streaks and, under martingale, the recovery ladder.
func (a *AdvancedManager) RecordTradeResult(won bool, amount decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if won {
		a.state.ConsecutiveWins++
		a.state.ConsecutiveLosses = 0
		if a.scfg.Method == "martingale" && a.scfg.ResetOnWin {
			a.state.MartingaleLevel = 0
			a.state.MartingaleLosses = decimal.Zero
		}
		return
	}

	a.state.ConsecutiveLosses++
	if a.scfg.ResetWinsOnLoss {
		a.state.ConsecutiveWins = 0
	}
	if a.scfg.Method == "martingale" {
		a.state.MartingaleLosses = a.state.MartingaleLosses.Add(amount)
		if a.state.MartingaleLevel >= martingaleCap(a.scfg) {
			a.state.MartingaleLevel = 0
			a.state.MartingaleLosses = decimal.Zero
		} else {
			a.state.MartingaleLevel++
		}
	}
}

// VaR is the estimated loss at the given confidence over the horizon,
// using a normal-distribution approximation over the lookback pnl.
type VaR struct {
	USD decimal.Decimal
	Pct float64
}

// ValueAtRisk computes the VaR from the pnl standard deviation of the
// lookback window. confidence 0.95 uses z=1.96, anything else z=2.33.
func (a *AdvancedManager) ValueAtRisk(ctx context.Context, symbol string, balance decimal.Decimal, confidence float64, horizonDays int) (VaR, error) {
	since := a.now().Add(-time.Duration(a.scfg.LookbackDays) * 24 * time.Hour)
	stdDev, err := a.history.StdDevPnl(ctx, symbol, types.ClosedStatuses, since)
	if err != nil {
		return VaR{}, err
	}

	z := 2.33
	if confidence == 0.95 {
		z = 1.96
	}
	usd := stdDev * z * math.Sqrt(float64(horizonDays))

	v := VaR{USD: decimal.NewFromFloat(usd)}
	if balance.IsPositive() {
		v.Pct = usd / balance.InexactFloat64() * 100
	}
	return v, nil
}

// Drawdown reports the percentage decline of the balance from the highest
// balance ever observed by this manager.
func (a *AdvancedManager) Drawdown(balance decimal.Decimal) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if balance.GreaterThan(a.state.PeakBalance) {
		a.state.PeakBalance = balance
	}
	return drawdownPct(balance, a.state.PeakBalance)
}

func drawdownPct(balance, peak decimal.Decimal) float64 {
	if !peak.IsPositive() {
		return 0
	}
	dd := peak.Sub(balance).Div(peak).InexactFloat64() * 100
	if dd < 0 {
		return 0
	}
	return dd
}
