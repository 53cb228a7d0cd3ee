package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/evdnx/liqsweep/types"
)

// PgStore implements the store contracts on Postgres. See schema.sql for
// the expected tables.
type PgStore struct {
	pool *pgxpool.Pool
}

var (
	_ CandleRepository = (*PgStore)(nil)
	_ TradeHistory     = (*PgStore)(nil)
)

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// NewPool opens a pgx connection pool for the given DSN.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg pool: %w", err)
	}
	return pool, nil
}

func (s *PgStore) Candles(ctx context.Context, symbol, timeframe string, limit int) (_ []types.Candle, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgStore.Candles: %w", err)
		}
	}()

	rows, err := s.pool.Query(ctx, `
		SELECT symbol, timeframe, ts, open, high, low, close, volume
		FROM (
			SELECT * FROM candles
			WHERE symbol = $1 AND timeframe = $2
			ORDER BY ts DESC
			LIMIT $3
		) recent
		ORDER BY ts ASC`,
		symbol, timeframe, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Candle
	for rows.Next() {
		var c types.Candle
		if err := rows.Scan(&c.Symbol, &c.Timeframe, &c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PgStore) Zones(ctx context.Context, symbol string, period types.PeriodKind, limit int) (_ []types.Zone, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgStore.Zones: %w", err)
		}
	}()

	rows, err := s.pool.Query(ctx, `
		SELECT symbol, period, zone_low, zone_high, zone_height, anchor,
		       src_open, src_close, src_high, src_low, src_atr
		FROM zones
		WHERE symbol = $1 AND ($2 = '' OR period = $2)
		ORDER BY anchor DESC
		LIMIT $3`,
		symbol, string(period), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Zone
	for rows.Next() {
		var z types.Zone
		if err := rows.Scan(&z.Symbol, &z.Period, &z.Low, &z.High, &z.Height, &z.Time,
			&z.Meta.Open, &z.Meta.Close, &z.Meta.High, &z.Meta.Low, &z.Meta.ATR); err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

// SaveZone writes the zone in its own transaction. The unique key on
// (symbol, period, anchor) makes the write idempotent: a concurrent caller
// computing the same period gets the already-stored row back.
func (s *PgStore) SaveZone(ctx context.Context, z types.Zone) (_ types.Zone, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgStore.SaveZone: %w", err)
		}
	}()

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return types.Zone{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO zones (symbol, period, zone_low, zone_high, zone_height, anchor,
		                   src_open, src_close, src_high, src_low, src_atr)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (symbol, period, anchor) DO NOTHING`,
		z.Symbol, string(z.Period), z.Low, z.High, z.Height, z.Time,
		z.Meta.Open, z.Meta.Close, z.Meta.High, z.Meta.Low, z.Meta.ATR)
	if err != nil {
		return types.Zone{}, err
	}

	var stored types.Zone
	err = tx.QueryRow(ctx, `
		SELECT symbol, period, zone_low, zone_high, zone_height, anchor,
		       src_open, src_close, src_high, src_low, src_atr
		FROM zones
		WHERE symbol = $1 AND period = $2 AND anchor = $3`,
		z.Symbol, string(z.Period), z.Time).
		Scan(&stored.Symbol, &stored.Period, &stored.Low, &stored.High, &stored.Height, &stored.Time,
			&stored.Meta.Open, &stored.Meta.Close, &stored.Meta.High, &stored.Meta.Low, &stored.Meta.ATR)
	if err != nil {
		return types.Zone{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return types.Zone{}, err
	}
	return stored, nil
}

func (s *PgStore) SaveSweep(ctx context.Context, ev types.SweepEvent) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgStore.SaveSweep: %w", err)
		}
	}()

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sweep_events (symbol, zone_anchor, ts, direction)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, zone_anchor, ts, direction) DO NOTHING`,
		ev.Symbol, ev.Zone.Time, ev.Time, string(ev.Direction))
	return err
}

// statusFilter expands a status set into a SQL ANY argument.
func statusFilter(statuses []types.TradeStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (s *PgStore) CountTrades(ctx context.Context, symbol string, statuses []types.TradeStatus, since time.Time) (_ int, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgStore.CountTrades: %w", err)
		}
	}()

	var n int
	err = s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM trades
		WHERE ($1 = '' OR symbol = $1)
		  AND status = ANY($2)
		  AND closed_at >= $3`,
		symbol, statusFilter(statuses), since).Scan(&n)
	return n, err
}

func (s *PgStore) SumPnl(ctx context.Context, symbol string, statuses []types.TradeStatus, since time.Time) (_ decimal.Decimal, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgStore.SumPnl: %w", err)
		}
	}()

	var sum decimal.Decimal
	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(pnl), 0) FROM trades
		WHERE ($1 = '' OR symbol = $1)
		  AND status = ANY($2)
		  AND closed_at >= $3`,
		symbol, statusFilter(statuses), since).Scan(&sum)
	return sum, err
}

func (s *PgStore) AveragePnl(ctx context.Context, symbol string, statuses []types.TradeStatus, since time.Time) (_ decimal.Decimal, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgStore.AveragePnl: %w", err)
		}
	}()

	var avg decimal.Decimal
	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(AVG(pnl), 0) FROM trades
		WHERE ($1 = '' OR symbol = $1)
		  AND status = ANY($2)
		  AND closed_at >= $3`,
		symbol, statusFilter(statuses), since).Scan(&avg)
	return avg, err
}

func (s *PgStore) StdDevPnl(ctx context.Context, symbol string, statuses []types.TradeStatus, since time.Time) (_ float64, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgStore.StdDevPnl: %w", err)
		}
	}()

	var sd float64
	err = s.pool.QueryRow(ctx, `
		SELECT COALESCE(STDDEV_SAMP(pnl), 0) FROM trades
		WHERE ($1 = '' OR symbol = $1)
		  AND status = ANY($2)
		  AND closed_at >= $3`,
		symbol, statusFilter(statuses), since).Scan(&sd)
	return sd, err
}

func (s *PgStore) StartOfDayBalance(ctx context.Context, day time.Time) (_ decimal.Decimal, _ bool, err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("PgStore.StartOfDayBalance: %w", err)
		}
	}()

	dayStart := day.UTC().Truncate(24 * time.Hour)
	var balanceAfter, pnl decimal.Decimal
	err = s.pool.QueryRow(ctx, `
		SELECT balance_after, pnl FROM trades
		WHERE closed_at >= $1 AND closed_at < $2
		ORDER BY closed_at ASC
		LIMIT 1`,
		dayStart, dayStart.Add(24*time.Hour)).Scan(&balanceAfter, &pnl)
	if err == pgx.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	return balanceAfter.Sub(pnl), true, nil
}
