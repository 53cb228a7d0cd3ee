// Package zone turns one period's candles (a day or a week) into a single
// liquidity zone.
package zone

import (
	"context"
	"math"

	"github.com/evdnx/liqsweep/config"
	"github.com/evdnx/liqsweep/indicator"
	"github.com/evdnx/liqsweep/logger"
	"github.com/evdnx/liqsweep/metrics"
	"github.com/evdnx/liqsweep/store"
	"github.com/evdnx/liqsweep/types"
)

// Detector computes period zones and persists them through the repository.
type Detector struct {
	cfg   config.ZoneConfig
	store store.CandleRepository
	log   logger.Logger
}

func NewDetector(cfg config.ZoneConfig, repo store.CandleRepository, log logger.Logger) *Detector {
	if log == nil {
		log = logger.NewNop()
	}
	return &Detector{cfg: cfg, store: repo, log: log}
}

// Compute derives the zone for one period from its candle series. The zone
// spans the period's open and close; when the period closes near its open
// (body below DojiFactor*ATR) there is no directional resolution and the
// bounds widen to the full range padded by PaddingFactor*ATR on each side.
// ok is false on empty input.
func (d *Detector) Compute(symbol string, period types.PeriodKind, candles []types.Candle) (types.Zone, bool) {
	if len(candles) == 0 {
		return types.Zone{}, false
	}

	openP := candles[0].Open
	closeP := candles[len(candles)-1].Close
	highP := candles[0].High
	lowP := candles[0].Low
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
		if c.High > highP {
			highP = c.High
		}
		if c.Low < lowP {
			lowP = c.Low
		}
	}

	atr, _ := indicator.LastATR(highs, lows, closes, d.cfg.ATRPeriod)

	low := math.Min(openP, closeP)
	high := math.Max(openP, closeP)
	if math.Abs(openP-closeP) < d.cfg.DojiFactor*atr {
		low = lowP - d.cfg.PaddingFactor*atr
		high = highP + d.cfg.PaddingFactor*atr
	}

	z := types.Zone{
		Symbol: symbol,
		Period: period,
		Low:    low,
		High:   high,
		Height: high - low,
		Time:   candles[0].Time,
		Meta: types.ZoneMeta{
			Open:  openP,
			Close: closeP,
			High:  highP,
			Low:   lowP,
			ATR:   atr,
		},
	}
	metrics.ZonesComputed.WithLabelValues(string(period)).Inc()
	return z, true
}

// DetectAndStore computes the zone and persists it. The repository write is
// idempotent per period anchor, so concurrent callers for the same period
// end up with a single record.
func (d *Detector) DetectAndStore(ctx context.Context, symbol string, period types.PeriodKind, candles []types.Candle) (types.Zone, bool, error) {
	z, ok := d.Compute(symbol, period, candles)
	if !ok {
		return types.Zone{}, false, nil
	}

	stored, err := d.store.SaveZone(ctx, z)
	if err != nil {
		return types.Zone{}, false, err
	}
	d.log.Info("zone_stored",
		logger.String("symbol", symbol),
		logger.String("period", string(period)),
		logger.Float64("low", stored.Low),
		logger.Float64("high", stored.High),
	)
	return stored, true, nil
}
