package indicator

import "math"

// TrueRange computes the per-bar true range:
// TR = max(high-low, |high-prevClose|, |low-prevClose|).
// The first bar has no previous close and degrades to high-low.
func TrueRange(highs, lows, closes []float64) []float64 {
	n := minLen(highs, lows, closes)
	tr := make([]float64, n)
	if n == 0 {
		return tr
	}

	tr[0] = highs[0] - lows[0]
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i] = math.Max(hl, math.Max(hc, lc))
	}
	return tr
}

// ATR is the exponential moving average of the true range.
func ATR(highs, lows, closes []float64, period int) []float64 {
	return EMA(TrueRange(highs, lows, closes), period)
}

// LastATR returns the most recent ATR value, or false when the input is
// empty.
func LastATR(highs, lows, closes []float64, period int) (float64, bool) {
	atr := ATR(highs, lows, closes, period)
	if len(atr) == 0 {
		return 0, false
	}
	return atr[len(atr)-1], true
}

func minLen(series ...[]float64) int {
	if len(series) == 0 {
		return 0
	}
	n := len(series[0])
	for _, s := range series[1:] {
		if len(s) < n {
			n = len(s)
		}
	}
	return n
}
