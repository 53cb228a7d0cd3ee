// Package backtest replays the zone -> sweep -> scoring pipeline over
// historical candles and aggregates performance.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evdnx/liqsweep/config"
	"github.com/evdnx/liqsweep/logger"
	"github.com/evdnx/liqsweep/metrics"
	"github.com/evdnx/liqsweep/scoring"
	"github.com/evdnx/liqsweep/store"
	"github.com/evdnx/liqsweep/sweep"
	"github.com/evdnx/liqsweep/types"
)

// Typed precondition failures: the caller must be able to tell which
// precondition was missing rather than receive a generic failure.
var (
	ErrInsufficientData = errors.New("backtest: insufficient candle data")
	ErrNoZones          = errors.New("backtest: no zones for symbol")
)

// secondaryLookback is how far back the secondary historical source is
// asked to reach when the primary store is thin.
const secondaryLookback = 30 * 24 * time.Hour

// primaryFetch is how many candles are requested from the primary store.
const primaryFetch = 500

// Result aggregates a backtest run.
//
// Every simulated trade is assumed to exit at its take-profit level; no
// stop-loss path is modeled. This overstates historical performance and is
// preserved for compatibility with the original rule set, not as a design
// goal.
type Result struct {
	Trades       int
	Wins         int
	TotalPnl     decimal.Decimal
	WinRate      float64
	MaxDrawdown  decimal.Decimal
	Expectancy   decimal.Decimal
	Sharpe       decimal.Decimal
	AvgLatencyMs float64
}

type Backtester struct {
	cfg       config.BacktestConfig
	repo      store.CandleRepository
	secondary store.HistoricalSource
	sweeps    *sweep.Detector
	scorer    *scoring.Engine
	log       logger.Logger
	rng       *rand.Rand
}

func New(cfg config.BacktestConfig, repo store.CandleRepository, secondary store.HistoricalSource,
	sweeps *sweep.Detector, scorer *scoring.Engine, log logger.Logger) *Backtester {

	if log == nil {
		log = logger.NewNop()
	}
	return &Backtester{
		cfg:       cfg,
		repo:      repo,
		secondary: secondary,
		sweeps:    sweeps,
		scorer:    scorer,
		log:       log,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed makes the slippage/latency draws reproducible.
func (b *Backtester) Seed(seed int64) {
	b.rng = rand.New(rand.NewSource(seed))
}

// Run replays the pipeline for one symbol: fetch candles (escalating to
// the secondary source when the primary store is thin), take the most
// recent zones, and for each zone run sweep detection and entry scoring
// with the gate enabled, simulating commission, slippage and latency.
func (b *Backtester) Run(ctx context.Context, symbol, timeframe string) (Result, error) {
	candles, err := b.repo.Candles(ctx, symbol, timeframe, primaryFetch)
	if err != nil {
		return Result{}, fmt.Errorf("fetch candles: %w", err)
	}
	if len(candles) < b.cfg.MinCandles && b.secondary != nil {
		fallback, err := b.secondary.HistoricalSeries(ctx, symbol, timeframe, secondaryLookback)
		if err != nil {
			b.log.Warn("secondary_source_failed", logger.Err(err))
		} else if len(fallback) > len(candles) {
			candles = fallback
		}
	}
	if len(candles) < b.cfg.MinCandles {
		return Result{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientData, len(candles), b.cfg.MinCandles)
	}

	zones, err := b.repo.Zones(ctx, symbol, "", b.cfg.ZoneLimit)
	if err != nil {
		return Result{}, fmt.Errorf("fetch zones: %w", err)
	}
	if len(zones) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrNoZones, symbol)
	}

	series := scoring.SeriesFromCandles(candles)

	var (
		res          Result
		cumulative   decimal.Decimal
		peak         decimal.Decimal
		totalLatency int
	)
	res.TotalPnl = decimal.Zero

	for _, z := range zones {
		ev, ok := b.sweeps.Scan(z, candles)
		if !ok {
			continue
		}
		dec, _, ok := b.scorer.Evaluate(ev.Direction, z, series)
		if !ok {
			continue
		}

		pnl := b.simulate(dec)
		latency := b.rng.Intn(b.cfg.MaxLatencyMs + 1)
		totalLatency += latency

		res.Trades++
		if pnl.IsPositive() {
			res.Wins++
		}
		cumulative = cumulative.Add(pnl)
		if cumulative.GreaterThan(peak) {
			peak = cumulative
		}
		if dd := peak.Sub(cumulative); dd.GreaterThan(res.MaxDrawdown) {
			res.MaxDrawdown = dd
		}
	}

	res.TotalPnl = cumulative
	if res.Trades > 0 {
		res.WinRate = float64(res.Wins) / float64(res.Trades)
		res.Expectancy = res.TotalPnl.Div(decimal.NewFromInt(int64(res.Trades)))
		res.AvgLatencyMs = float64(totalLatency) / float64(res.Trades)
	}
	if res.MaxDrawdown.IsPositive() {
		// crude sharpe proxy: pnl per unit of drawdown
		res.Sharpe = res.TotalPnl.Div(res.MaxDrawdown)
	}

	metrics.BacktestsRun.Inc()
	b.log.Info("backtest_done",
		logger.String("symbol", symbol),
		logger.Int("trades", res.Trades),
		logger.String("pnl", res.TotalPnl.String()),
	)
	return res, nil
}

// simulate books one trade at its take-profit exit, charging commission
// and a uniform random slippage on the entry fill. Latency is drawn by the
// caller and recorded but never applied to price.
func (b *Backtester) simulate(dec types.EntryDecision) decimal.Decimal {
	slip := (b.rng.Float64()*2 - 1) * b.cfg.SlippagePct * dec.Entry
	fill := dec.Entry + slip

	var gross float64
	if dec.Side == types.Buy {
		gross = dec.TakeProfit - fill
	} else {
		gross = fill - dec.TakeProfit
	}
	commission := fill * b.cfg.CommissionBps / 10000

	return decimal.NewFromFloat(gross - commission)
}
