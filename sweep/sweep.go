// Package sweep detects liquidity sweeps: a price excursion beyond a zone
// boundary followed by a close back inside it.
package sweep

import (
	"github.com/evdnx/liqsweep/config"
	"github.com/evdnx/liqsweep/indicator"
	"github.com/evdnx/liqsweep/logger"
	"github.com/evdnx/liqsweep/metrics"
	"github.com/evdnx/liqsweep/types"
)

type Detector struct {
	cfg config.SweepConfig
	log logger.Logger
}

func NewDetector(cfg config.SweepConfig, log logger.Logger) *Detector {
	if log == nil {
		log = logger.NewNop()
	}
	return &Detector{cfg: cfg, log: log}
}

// Scan walks the intraday candles in chronological order and returns the
// first one that swept a boundary of the zone: low below zone low minus
// epsilon with a close back at or above the zone low (long), or high above
// zone high plus epsilon with a close back at or below the zone high
// (short). Epsilon is Epsilon*ATR of the intraday series. At most one event
// is returned per call; later, larger excursions are never preferred over
// the first match. ok is false when nothing qualifies.
func (d *Detector) Scan(z types.Zone, candles []types.Candle) (types.SweepEvent, bool) {
	if len(candles) == 0 {
		return types.SweepEvent{}, false
	}

	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	closes := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
		closes[i] = c.Close
	}
	atr, ok := indicator.LastATR(highs, lows, closes, d.cfg.ATRPeriod)
	if !ok {
		return types.SweepEvent{}, false
	}
	eps := d.cfg.Epsilon * atr

	for _, c := range candles {
		var dir types.Direction
		switch {
		case c.Low < z.Low-eps && c.Close >= z.Low:
			dir = types.Long
		case c.High > z.High+eps && c.Close <= z.High:
			dir = types.Short
		default:
			continue
		}

		ev := types.SweepEvent{
			Symbol:    z.Symbol,
			Zone:      z,
			Time:      c.Time,
			Direction: dir,
		}
		metrics.SweepsDetected.WithLabelValues(string(dir)).Inc()
		d.log.Info("sweep_detected",
			logger.String("symbol", z.Symbol),
			logger.String("direction", string(dir)),
			logger.Float64("eps", eps),
		)
		return ev, true
	}
	return types.SweepEvent{}, false
}
