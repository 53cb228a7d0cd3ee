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

func containsMessage(msgs []string, want string) bool {
	for _, m := range msgs {
		if m == want {
			return true
		}
	}
	return false
}

/*
   -----------------------------------------------------------------------
   Trade results drive streaks and the martingale ladder.
   -----------------------------------------------------------------------
   Two losses climb the ladder and accumulate the staked amounts; a win
   resets both the loss streak and the ladder.
*/
func TestRecordTradeResult(t *testing.T) {
	scfg := config.Default().Sizing
	scfg.Method = "martingale"
	a := newAdvanced(t, store.NewMemStore(), scfg)

	a.RecordTradeResult(false, decimal.NewFromInt(1))
	a.RecordTradeResult(false, decimal.RequireFromString("1.12"))

	st := a.State()
	if st.ConsecutiveLosses != 2 || st.MartingaleLevel != 2 {
		t.Fatalf("after two losses: %+v", st)
	}
	if !st.MartingaleLosses.Equal(decimal.RequireFromString("2.12")) {
		t.Fatalf("accumulated losses: got %s, want 2.12", st.MartingaleLosses)
	}

	a.RecordTradeResult(true, decimal.Zero)
	st = a.State()
	if st.ConsecutiveWins != 1 || st.ConsecutiveLosses != 0 {
		t.Fatalf("after a win: %+v", st)
	}
	if st.MartingaleLevel != 0 || !st.MartingaleLosses.IsZero() {
		t.Fatalf("a win must reset the ladder: %+v", st)
	}
}

func TestSizeUnknownMethodWarnsAndFallsBack(t *testing.T) {
	scfg := config.Default().Sizing
	scfg.Method = "quantum"
	mem := store.NewMemStore()
	base := NewManager(config.Default().Capital, mem, testutils.NewMockLogger())
	log := testutils.NewMockLogger()
	a := NewAdvancedManager(base, scfg, mem, nil, log)

	res, err := a.Size(context.Background(), "EURUSD", decimal.NewFromInt(1000), MarketContext{})
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if res.Method != "fixed_fractional" {
		t.Fatalf("unknown method must size as fixed_fractional, got %s", res.Method)
	}
	if !containsMessage(log.Messages(), "unknown_sizing_method") {
		t.Fatalf("expected a warning, got %v", log.Messages())
	}
}

/*
   -----------------------------------------------------------------------
   Drawdown dampener.
   -----------------------------------------------------------------------
   Sizing at a balance of 1000 sets the peak; dropping to 800 is a 20 %
   drawdown, 5 points past the 15 % tolerance, so every stake shrinks by
   the factor 1 - 5/100 = 0.95: 800 * 2 % * 0.95 = 15.2.
*/
func TestSizeAppliesDrawdownDampener(t *testing.T) {
	mem := store.NewMemStore()
	base := NewManager(config.Default().Capital, mem, testutils.NewMockLogger())
	log := testutils.NewMockLogger()
	a := NewAdvancedManager(base, config.Default().Sizing, mem, nil, log)
	ctx := context.Background()

	res, err := a.Size(ctx, "EURUSD", decimal.NewFromInt(1000), MarketContext{})
	if err != nil {
		t.Fatalf("size at peak: %v", err)
	}
	if got := res.RiskAmount.InexactFloat64(); math.Abs(got-20) > 1e-9 {
		t.Fatalf("undampened risk: got %f, want 20", got)
	}

	res, err = a.Size(ctx, "EURUSD", decimal.NewFromInt(800), MarketContext{})
	if err != nil {
		t.Fatalf("size in drawdown: %v", err)
	}
	if got := res.RiskAmount.InexactFloat64(); math.Abs(got-15.2) > 1e-9 {
		t.Fatalf("dampened risk: got %f, want 15.2", got)
	}
	if !containsMessage(log.Messages(), "drawdown_dampener_applied") {
		t.Fatalf("expected dampener warning, got %v", log.Messages())
	}
}

/*
   -----------------------------------------------------------------------
   Value at risk.
   -----------------------------------------------------------------------
   Pnl samples +10 and -10 have a sample standard deviation of sqrt(200).
   At 95 % confidence over one day: VaR = sqrt(200) * 1.96 = 27.7186,
   which is 27.72 % of a 100-unit balance.
*/
func TestValueAtRisk(t *testing.T) {
	mem := store.NewMemStore()
	now := time.Now()
	mem.AddTrade(types.TradeRecord{Symbol: "EURUSD", Pnl: decimal.NewFromInt(10), Status: types.StatusWon, ClosedAt: now})
	mem.AddTrade(types.TradeRecord{Symbol: "EURUSD", Pnl: decimal.NewFromInt(-10), Status: types.StatusLost, ClosedAt: now})

	a := newAdvanced(t, mem, config.Default().Sizing)
	v, err := a.ValueAtRisk(context.Background(), "EURUSD", decimal.NewFromInt(100), 0.95, 1)
	if err != nil {
		t.Fatalf("var: %v", err)
	}
	want := math.Sqrt(200) * 1.96
	if got := v.USD.InexactFloat64(); math.Abs(got-want) > 1e-6 {
		t.Fatalf("VaR USD: got %f, want %f", got, want)
	}
	if math.Abs(v.Pct-want) > 1e-6 {
		t.Fatalf("VaR pct of a 100 balance: got %f, want %f", v.Pct, want)
	}
}

func TestDrawdownTracksPeak(t *testing.T) {
	a := newAdvanced(t, store.NewMemStore(), config.Default().Sizing)
	if dd := a.Drawdown(decimal.NewFromInt(1000)); dd != 0 {
		t.Fatalf("fresh peak must have zero drawdown, got %f", dd)
	}
	if dd := a.Drawdown(decimal.NewFromInt(900)); math.Abs(dd-10) > 1e-9 {
		t.Fatalf("expected 10%% drawdown, got %f", dd)
	}
}
