// Package store defines the data collaborators the engine consumes: a
// candle/zone repository, a read-only trade-history aggregate and a
// secondary historical source. The engine performs no I/O of its own; every
// read and write goes through these contracts.
package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evdnx/liqsweep/types"
)

// CandleRepository is the primary market-data store.
type CandleRepository interface {
	// Candles returns up to limit most recent candles for the pair in
	// ascending time order.
	Candles(ctx context.Context, symbol, timeframe string, limit int) ([]types.Candle, error)

	// Zones returns the most recent zones first. An empty period matches
	// every period kind.
	Zones(ctx context.Context, symbol string, period types.PeriodKind, limit int) ([]types.Zone, error)

	// SaveZone persists a zone atomically. The write is idempotent per
	// (symbol, period, anchor): concurrent callers computing the same
	// period cannot create duplicates.
	SaveZone(ctx context.Context, z types.Zone) (types.Zone, error)

	// SaveSweep persists a sweep event, idempotent per
	// (symbol, zone anchor, time, direction).
	SaveSweep(ctx context.Context, ev types.SweepEvent) error
}

// TradeHistory is the read-only trade aggregate the capital managers derive
// their state from. An empty symbol matches all symbols.
type TradeHistory interface {
	CountTrades(ctx context.Context, symbol string, statuses []types.TradeStatus, since time.Time) (int, error)
	SumPnl(ctx context.Context, symbol string, statuses []types.TradeStatus, since time.Time) (decimal.Decimal, error)
	AveragePnl(ctx context.Context, symbol string, statuses []types.TradeStatus, since time.Time) (decimal.Decimal, error)
	StdDevPnl(ctx context.Context, symbol string, statuses []types.TradeStatus, since time.Time) (float64, error)

	// StartOfDayBalance reports the balance the account started the given
	// day with, derived from the first trade closed that day. ok is false
	// when no trade has closed yet today.
	StartOfDayBalance(ctx context.Context, day time.Time) (decimal.Decimal, bool, error)
}

// HistoricalSource is the secondary market-data source the backtester
// escalates to when the primary repository holds too few candles.
type HistoricalSource interface {
	HistoricalSeries(ctx context.Context, symbol, timeframe string, lookback time.Duration) ([]types.Candle, error)
}
