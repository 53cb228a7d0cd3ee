package capital

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evdnx/liqsweep/config"
	"github.com/evdnx/liqsweep/store"
	"github.com/evdnx/liqsweep/testutils"
	"github.com/evdnx/liqsweep/types"
)

func newAdvanced(t *testing.T, mem *store.MemStore, scfg config.SizingConfig) *AdvancedManager {
	t.Helper()
	base := NewManager(config.Default().Capital, mem, testutils.NewMockLogger())
	return NewAdvancedManager(base, scfg, mem, nil, testutils.NewMockLogger())
}

/*
   -----------------------------------------------------------------------
   Fractional Kelly by hand.
   -----------------------------------------------------------------------
   winRate 0.55, avgWin 8, avgLoss -5, fraction 0.25:
     b = 8/5 = 1.6
     f = 0.25 * ((1.6*0.55 - 0.45) / 1.6) = 0.25 * 0.26875 = 0.0671875
*/
func TestKellyPctHandComputed(t *testing.T) {
	got := kellyPct(0.55, 8, -5, 0.25)
	if math.Abs(got-0.0671875) > 1e-12 {
		t.Fatalf("kelly: got %f, want 0.0671875", got)
	}
}

func TestKellyPctClampsAndDegenerates(t *testing.T) {
	// a huge edge must clamp at the 25 % ceiling
	if got := kellyPct(0.9, 100, -1, 1); got != 0.25 {
		t.Fatalf("expected clamp at 0.25, got %f", got)
	}
	// a negative edge yields zero, never a negative stake
	if got := kellyPct(0.3, 1, -1, 1); got != 0 {
		t.Fatalf("negative edge must yield 0, got %f", got)
	}
	// degenerate inputs: no losses on record, win rate at either extreme
	for _, got := range []float64{
		kellyPct(0.5, 10, 0, 1),
		kellyPct(0, 10, -5, 1),
		kellyPct(1, 10, -5, 1),
	} {
		if got != 0 {
			t.Fatalf("degenerate input must yield 0, got %f", got)
		}
	}
}

/*
   -----------------------------------------------------------------------
   Lookback aggregation.
   -----------------------------------------------------------------------
   Two wins of 10 and one loss of 5 give winRate 2/3, avgWin 10,
   avgLoss -5 and a fractional Kelly of 0.125.
*/
func TestStatsAggregation(t *testing.T) {
	mem := store.NewMemStore()
	now := time.Now()
	mem.AddTrade(types.TradeRecord{Symbol: "EURUSD", Pnl: decimal.NewFromInt(10), Status: types.StatusWon, ClosedAt: now})
	mem.AddTrade(types.TradeRecord{Symbol: "EURUSD", Pnl: decimal.NewFromInt(10), Status: types.StatusWon, ClosedAt: now})
	mem.AddTrade(types.TradeRecord{Symbol: "EURUSD", Pnl: decimal.NewFromInt(-5), Status: types.StatusLost, ClosedAt: now})

	a := newAdvanced(t, mem, config.Default().Sizing)
	stats, err := a.Stats(context.Background(), "EURUSD")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Trades != 3 {
		t.Fatalf("expected 3 trades, got %d", stats.Trades)
	}
	if math.Abs(stats.WinRate-2.0/3.0) > 1e-9 {
		t.Fatalf("win rate: got %f", stats.WinRate)
	}
	if stats.AvgWin != 10 || stats.AvgLoss != -5 {
		t.Fatalf("averages: got %f / %f", stats.AvgWin, stats.AvgLoss)
	}
	if math.Abs(stats.Kelly-0.125) > 1e-9 {
		t.Fatalf("kelly: got %f, want 0.125", stats.Kelly)
	}
}
