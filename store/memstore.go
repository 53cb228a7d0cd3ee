package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evdnx/liqsweep/types"
)

// MemStore is an in-memory implementation of every store contract. It backs
// the tests and lets the engine and backtester run without Postgres.
type MemStore struct {
	mu      sync.RWMutex
	candles map[string][]types.Candle
	zones   map[string]types.Zone
	sweeps  map[string]types.SweepEvent
	trades  []types.TradeRecord
	nextID  int64
}

var (
	_ CandleRepository = (*MemStore)(nil)
	_ TradeHistory     = (*MemStore)(nil)
	_ HistoricalSource = (*MemStore)(nil)
)

func NewMemStore() *MemStore {
	return &MemStore{
		candles: make(map[string][]types.Candle),
		zones:   make(map[string]types.Zone),
		sweeps:  make(map[string]types.SweepEvent),
		nextID:  1,
	}
}

func candleKey(symbol, timeframe string) string { return symbol + "|" + timeframe }

func zoneKey(z types.Zone) string {
	return fmt.Sprintf("%s|%s|%d", z.Symbol, z.Period, z.Time.UnixNano())
}

func sweepKey(ev types.SweepEvent) string {
	return fmt.Sprintf("%s|%d|%d|%s", ev.Symbol, ev.Zone.Time.UnixNano(), ev.Time.UnixNano(), ev.Direction)
}

// AddCandles seeds candles, keeping ascending time order per pair.
func (m *MemStore) AddCandles(cs ...types.Candle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cs {
		key := candleKey(c.Symbol, c.Timeframe)
		m.candles[key] = append(m.candles[key], c)
	}
	for key := range m.candles {
		sort.Slice(m.candles[key], func(i, j int) bool {
			return m.candles[key][i].Time.Before(m.candles[key][j].Time)
		})
	}
}

// AddTrade appends a trade record to the history aggregate.
func (m *MemStore) AddTrade(t types.TradeRecord) types.TradeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == 0 {
		t.ID = m.nextID
		m.nextID++
	}
	m.trades = append(m.trades, t)
	return t
}

func (m *MemStore) Candles(_ context.Context, symbol, timeframe string, limit int) ([]types.Candle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	all := m.candles[candleKey(symbol, timeframe)]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]types.Candle, len(all))
	copy(out, all)
	return out, nil
}

func (m *MemStore) Zones(_ context.Context, symbol string, period types.PeriodKind, limit int) ([]types.Zone, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []types.Zone
	for _, z := range m.zones {
		if z.Symbol != symbol {
			continue
		}
		if period != "" && z.Period != period {
			continue
		}
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.After(out[j].Time) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) SaveZone(_ context.Context, z types.Zone) (types.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := zoneKey(z)
	if existing, ok := m.zones[key]; ok {
		return existing, nil
	}
	m.zones[key] = z
	return z, nil
}

func (m *MemStore) SaveSweep(_ context.Context, ev types.SweepEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := sweepKey(ev)
	if _, ok := m.sweeps[key]; !ok {
		m.sweeps[key] = ev
	}
	return nil
}

// SweepCount reports how many distinct sweep events are stored. Test helper.
func (m *MemStore) SweepCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sweeps)
}

func matches(t types.TradeRecord, symbol string, statuses []types.TradeStatus, since time.Time) bool {
	if symbol != "" && t.Symbol != symbol {
		return false
	}
	if !since.IsZero() && t.ClosedAt.Before(since) {
		return false
	}
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if t.Status == s {
			return true
		}
	}
	return false
}

func (m *MemStore) CountTrades(_ context.Context, symbol string, statuses []types.TradeStatus, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, t := range m.trades {
		if matches(t, symbol, statuses, since) {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) SumPnl(_ context.Context, symbol string, statuses []types.TradeStatus, since time.Time) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, t := range m.trades {
		if matches(t, symbol, statuses, since) {
			sum = sum.Add(t.Pnl)
		}
	}
	return sum, nil
}

func (m *MemStore) AveragePnl(_ context.Context, symbol string, statuses []types.TradeStatus, since time.Time) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	n := 0
	for _, t := range m.trades {
		if matches(t, symbol, statuses, since) {
			sum = sum.Add(t.Pnl)
			n++
		}
	}
	if n == 0 {
		return decimal.Zero, nil
	}
	return sum.Div(decimal.NewFromInt(int64(n))), nil
}

func (m *MemStore) StdDevPnl(_ context.Context, symbol string, statuses []types.TradeStatus, since time.Time) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var pnls []float64
	for _, t := range m.trades {
		if matches(t, symbol, statuses, since) {
			pnls = append(pnls, t.Pnl.InexactFloat64())
		}
	}
	if len(pnls) < 2 {
		return 0, nil
	}
	mean := 0.0
	for _, v := range pnls {
		mean += v
	}
	mean /= float64(len(pnls))
	sum := 0.0
	for _, v := range pnls {
		d := v - mean
		sum += d * d
	}
	// sample std-dev
	return math.Sqrt(sum / float64(len(pnls)-1)), nil
}

func (m *MemStore) StartOfDayBalance(_ context.Context, day time.Time) (decimal.Decimal, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dayStart := day.UTC().Truncate(24 * time.Hour)
	var first *types.TradeRecord
	for i := range m.trades {
		t := m.trades[i]
		if t.ClosedAt.UTC().Truncate(24*time.Hour) != dayStart {
			continue
		}
		if first == nil || t.ClosedAt.Before(first.ClosedAt) {
			first = &m.trades[i]
		}
	}
	if first == nil {
		return decimal.Zero, false, nil
	}
	// balance before the first trade of the day
	return first.BalanceAfter.Sub(first.Pnl), true, nil
}

// HistoricalSeries serves stored candles within the lookback window, so a
// MemStore can double as the secondary source in tests.
func (m *MemStore) HistoricalSeries(ctx context.Context, symbol, timeframe string, lookback time.Duration) ([]types.Candle, error) {
	all, err := m.Candles(ctx, symbol, timeframe, 0)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().Add(-lookback)
	out := all[:0:0]
	for _, c := range all {
		if !c.Time.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out, nil
}
