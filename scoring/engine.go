// Package scoring implements the entry scoring engine: nine weighted
// indicator confirmations fused into a pass/fail score, and the price-level
// computation for entries that pass.
package scoring

import (
	"math"

	"github.com/evdnx/liqsweep/config"
	"github.com/evdnx/liqsweep/indicator"
	"github.com/evdnx/liqsweep/logger"
	"github.com/evdnx/liqsweep/metrics"
	"github.com/evdnx/liqsweep/types"
)

type Engine struct {
	cfg config.ScoringConfig
	log logger.Logger
}

func NewEngine(cfg config.ScoringConfig, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{cfg: cfg, log: log}
}

// Evaluate scores the series for the given direction and, on a pass,
// computes the entry/stop/take-profit levels off the zone boundary. With
// scoring disabled the gate is skipped and the decision carries a neutral
// 0.5 confidence. ok is false when the series is empty, the ATR cannot be
// computed, or the score gate rejects.
func (e *Engine) Evaluate(dir types.Direction, z types.Zone, s Series) (types.EntryDecision, types.SignalScore, bool) {
	n := s.Len()
	if n == 0 {
		return types.EntryDecision{}, types.SignalScore{}, false
	}
	atr, ok := indicator.LastATR(s.Highs, s.Lows, s.Closes, atrPeriod)
	if !ok {
		return types.EntryDecision{}, types.SignalScore{}, false
	}

	var (
		score      types.SignalScore
		confidence float64
	)
	if e.cfg.Enabled {
		score = e.CalculateScore(dir, z, s)
		if !score.Passed {
			metrics.DecisionsRejected.Inc()
			e.log.Info("entry_rejected",
				logger.String("symbol", z.Symbol),
				logger.String("direction", string(dir)),
				logger.Float64("score", score.Total),
			)
			return types.EntryDecision{}, score, false
		}
		confidence = score.Total / score.Max
	} else {
		score = types.SignalScore{
			Max:    e.cfg.Weights.MaxScore(),
			Passed: true,
			Reason: "scoring disabled",
		}
		confidence = 0.5
	}

	quality := types.QualityLow
	switch {
	case confidence >= 0.7:
		quality = types.QualityHigh
	case confidence >= 0.5:
		quality = types.QualityMedium
	}

	// Entries sit just inside the swept boundary; the stop sits beyond it
	// by at least half an ATR so ordinary noise cannot reach it.
	offset := math.Min(0.3*atr, 0.25*z.Height)
	riskDist := math.Max(0.5*atr, 0.1*z.Height)

	var entry, stop, tp float64
	if dir == types.Long {
		entry = z.Low + offset
		stop = z.Low - riskDist
		tp = entry + e.cfg.MinRiskReward*riskDist
	} else {
		entry = z.High - offset
		stop = z.High + riskDist
		tp = entry - e.cfg.MinRiskReward*riskDist
	}

	dec := types.EntryDecision{
		Side:        dir.Side(),
		Entry:       entry,
		Stop:        stop,
		TakeProfit:  tp,
		RiskPercent: e.cfg.RiskPercent,
		Confidence:  confidence,
		Quality:     quality,
	}
	metrics.DecisionsEmitted.WithLabelValues(string(quality)).Inc()
	e.log.Info("entry_decision",
		logger.String("symbol", z.Symbol),
		logger.String("side", string(dec.Side)),
		logger.Float64("entry", entry),
		logger.Float64("stop", stop),
		logger.Float64("take_profit", tp),
		logger.Float64("confidence", confidence),
	)
	return dec, score, true
}
