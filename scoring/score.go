package scoring

import (
	"fmt"

	"github.com/evdnx/liqsweep/indicator"
	"github.com/evdnx/liqsweep/types"
)

// Indicator parameters of the scoring factors. Carried over from the
// original rule set; the tunable knobs live in config.ScoringConfig.
const (
	rsiPeriod        = 14
	macdFast         = 12
	macdSlow         = 26
	macdSignal       = 9
	stochKPeriod     = 14
	stochDPeriod     = 3
	bollingerPeriod  = 20
	bollingerK       = 2.0
	emaPeriod        = 10
	trendEMAPeriod   = 200
	atrPeriod        = 14
	volumeLookback   = 20
	emaTolerance     = 0.001 // 0.1 % band around the EMA
	rsiOversold      = 30.0
	rsiOverbought    = 70.0
	rsiExtremeHigh   = 75.0
	rsiExtremeLow    = 25.0
	stochOversold    = 20.0
	stochOverbought  = 80.0
	bandOuterPct     = 0.2
	weakVolFactor    = 0.8
)

// CalculateScore fuses the independent indicator confirmations into one
// weighted score. Sub-scores for engulfing, MACD, RSI, stochastic,
// bollinger, EMA and volume are summed first and a negative running total
// is floored at zero *before* the trend and volatility adjustments are
// applied; this mid-computation clamp is part of the contract, not an
// accident, and keeps a pile of contradictions from hiding a counter-trend
// penalty.
func (e *Engine) CalculateScore(dir types.Direction, z types.Zone, s Series) types.SignalScore {
	w := e.cfg.Weights
	n := s.Len()
	if n == 0 {
		return types.SignalScore{Max: w.MaxScore(), Reason: "empty series"}
	}
	factors := make(map[string]float64, 9)

	long := dir == types.Long
	price := s.Closes[n-1]

	// Engulfing: confirmation scores full weight, a contradicting pattern
	// scores nothing, absence is mildly neutral.
	engulf := indicator.DetectEngulfing(s.Opens, s.Closes)
	switch sig := engulf[n-1]; {
	case sig == indicator.EngulfNone:
		factors["engulfing"] = 0.5
	case (sig == indicator.EngulfBullish) == long:
		factors["engulfing"] = w.Engulfing
	default:
		factors["engulfing"] = 0
	}

	// MACD: histogram sign and line/signal ordering must both agree for the
	// full weight; both disagreeing is an active contradiction.
	macd := indicator.MACD(s.Closes, macdFast, macdSlow, macdSignal)
	hist := macd.Histogram[n-1]
	lineAbove := macd.Line[n-1] > macd.Signal[n-1]
	switch {
	case long && hist > 0 && lineAbove, !long && hist < 0 && !lineAbove:
		factors["macd"] = w.MACD
	case long && hist < 0 && !lineAbove, !long && hist > 0 && lineAbove:
		factors["macd"] = -1.0
	default:
		factors["macd"] = 0.5
	}

	// RSI: the matching extreme confirms, the opposite extreme warns.
	rsi := indicator.RSI(s.Closes, rsiPeriod)[n-1]
	switch {
	case long && rsi < rsiOversold, !long && rsi > rsiOverbought:
		factors["rsi"] = w.RSI
	case long && rsi > rsiExtremeHigh, !long && rsi < rsiExtremeLow:
		factors["rsi"] = -0.5
	default:
		factors["rsi"] = 0.5
	}

	// Stochastic: %K in the matching extreme plus a favorable %K/%D cross.
	stoch := indicator.Stochastic(s.Highs, s.Lows, s.Closes, stochKPeriod, stochDPeriod)
	k, d := stoch.K[n-1], stoch.D[n-1]
	crossUp, crossDown := false, false
	if n >= 2 {
		crossUp = stoch.K[n-2] <= stoch.D[n-2] && k > d
		crossDown = stoch.K[n-2] >= stoch.D[n-2] && k < d
	}
	switch {
	case long && k < stochOversold && crossUp, !long && k > stochOverbought && crossDown:
		factors["stochastic"] = w.Stochastic
	case long && k > stochOverbought, !long && k < stochOversold:
		factors["stochastic"] = -0.5
	default:
		factors["stochastic"] = 0.25
	}

	// Bollinger: the matching outer 20 % of the band confirms, the middle
	// band is mildly neutral, the opposite outer region scores nothing.
	bb := indicator.Bollinger(s.Closes, bollingerPeriod, bollingerK)
	width := bb.Upper[n-1] - bb.Lower[n-1]
	switch {
	case width <= 0:
		factors["bollinger"] = 0.5
	case long && price <= bb.Lower[n-1]+bandOuterPct*width,
		!long && price >= bb.Upper[n-1]-bandOuterPct*width:
		factors["bollinger"] = w.Bollinger
	case long && price >= bb.Upper[n-1]-bandOuterPct*width,
		!long && price <= bb.Lower[n-1]+bandOuterPct*width:
		factors["bollinger"] = 0
	default:
		factors["bollinger"] = 0.5
	}

	// EMA(10): price beyond the 0.1 % tolerance band in the direction of
	// the trade.
	ema := indicator.EMA(s.Closes, emaPeriod)[n-1]
	switch {
	case long && price > ema*(1+emaTolerance), !long && price < ema*(1-emaTolerance):
		factors["ema"] = w.EMA
	default:
		factors["ema"] = 0
	}

	// Volume: current volume against the mean of the samples before it.
	volMean := trailingMean(s.Volumes, n-1, volumeLookback)
	vol := s.Volumes[n-1]
	switch {
	case volMean > 0 && vol > e.cfg.VolumeFactor*volMean:
		factors["volume"] = w.Volume
	case volMean > 0 && vol > weakVolFactor*volMean:
		factors["volume"] = 0.25
	default:
		factors["volume"] = 0
	}

	total := factors["engulfing"] + factors["macd"] + factors["rsi"] +
		factors["stochastic"] + factors["bollinger"] + factors["ema"] + factors["volume"]
	if total < 0 {
		total = 0
	}

	// Trend filter: only meaningful with enough history for EMA(200).
	factors["trend"] = 0
	if len(s.Closes) >= trendEMAPeriod {
		trendEMA := indicator.EMA(s.Closes, trendEMAPeriod)[n-1]
		if (long && price > trendEMA) || (!long && price < trendEMA) {
			factors["trend"] = w.Trend
		} else {
			factors["trend"] = -2 * w.Trend
		}
		total += factors["trend"]
	}

	// Volatility filter: penalize a weak-momentum regime where the current
	// ATR sits below 80 % of its own average.
	factors["volatility"] = 0
	atr := indicator.ATR(s.Highs, s.Lows, s.Closes, atrPeriod)
	atrAvg := indicator.SMA(atr, atrPeriod)[n-1]
	if atr[n-1] < weakVolFactor*atrAvg {
		factors["volatility"] = -1.0
		total += factors["volatility"]
	}

	max := w.MaxScore()
	passed := total >= e.cfg.PassThreshold
	verdict := "rejected"
	if passed {
		verdict = "passed"
	}
	return types.SignalScore{
		Total:   total,
		Max:     max,
		Factors: factors,
		Passed:  passed,
		Reason: fmt.Sprintf("%s %s: score %.2f/%.2f against threshold %.2f",
			dir, verdict, total, max, e.cfg.PassThreshold),
	}
}

func trailingMean(values []float64, n, lookback int) float64 {
	start := n - lookback
	if start < 0 {
		start = 0
	}
	window := values[start:n]
	if len(window) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}
