package capital

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/evdnx/liqsweep/types"
)

// Stats summarizes the lookback window the sizing strategies feed on.
// AvgLoss is negative (or zero when there are no losses).
type Stats struct {
	Trades  int
	WinRate float64
	AvgWin  float64
	AvgLoss float64
	StdDev  float64
	Kelly   float64
}

// Stats aggregates the trade history over the configured lookback window,
// optionally filtered by symbol (empty matches all).
func (a *AdvancedManager) Stats(ctx context.Context, symbol string) (Stats, error) {
	since := a.now().Add(-time.Duration(a.scfg.LookbackDays) * 24 * time.Hour)

	wins, err := a.history.CountTrades(ctx, symbol, []types.TradeStatus{types.StatusWon}, since)
	if err != nil {
		return Stats{}, fmt.Errorf("count wins: %w", err)
	}
	losses, err := a.history.CountTrades(ctx, symbol, []types.TradeStatus{types.StatusLost}, since)
	if err != nil {
		return Stats{}, fmt.Errorf("count losses: %w", err)
	}
	avgWin, err := a.history.AveragePnl(ctx, symbol, []types.TradeStatus{types.StatusWon}, since)
	if err != nil {
		return Stats{}, fmt.Errorf("avg win: %w", err)
	}
	avgLoss, err := a.history.AveragePnl(ctx, symbol, []types.TradeStatus{types.StatusLost}, since)
	if err != nil {
		return Stats{}, fmt.Errorf("avg loss: %w", err)
	}
	stdDev, err := a.history.StdDevPnl(ctx, symbol, types.ClosedStatuses, since)
	if err != nil {
		return Stats{}, fmt.Errorf("stddev pnl: %w", err)
	}

	s := Stats{
		Trades:  wins + losses,
		AvgWin:  avgWin.InexactFloat64(),
		AvgLoss: avgLoss.InexactFloat64(),
		StdDev:  stdDev,
	}
	if s.Trades > 0 {
		s.WinRate = float64(wins) / float64(s.Trades)
	}
	s.Kelly = kellyPct(s.WinRate, s.AvgWin, s.AvgLoss, a.scfg.KellyFraction)
	return s, nil
}

// kellyPct computes the fractional Kelly risk percentage, clamped to
// [0, 0.25]. Degenerate inputs (no losses on record, a win rate at either
// extreme) yield zero rather than an unbounded stake.
func kellyPct(winRate, avgWin, avgLoss, fraction float64) float64 {
	if avgLoss == 0 || winRate <= 0 || winRate >= 1 {
		return 0
	}
	b := avgWin / math.Abs(avgLoss)
	if b <= 0 {
		return 0
	}
	q := 1 - winRate
	f := fraction * ((b*winRate - q) / b)
	if f < 0 {
		return 0
	}
	if f > 0.25 {
		return 0.25
	}
	return f
}
