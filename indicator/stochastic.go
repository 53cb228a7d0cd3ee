package indicator

// StochasticResult bundles the %K and %D series.
type StochasticResult struct {
	K []float64
	D []float64
}

// Stochastic computes %K = (close-lowestLow)/(highestHigh-lowestLow)*100
// over the trailing kPeriod window and %D = SMA(%K, dPeriod). %K reports
// the neutral value 50 while the window has not filled yet or when the
// window is degenerate (highest high equals lowest low).
func Stochastic(highs, lows, closes []float64, kPeriod, dPeriod int) StochasticResult {
	n := minLen(highs, lows, closes)
	k := make([]float64, n)

	for i := 0; i < n; i++ {
		if i < kPeriod-1 {
			k[i] = 50
			continue
		}
		hh := highs[i-kPeriod+1]
		ll := lows[i-kPeriod+1]
		for j := i - kPeriod + 2; j <= i; j++ {
			if highs[j] > hh {
				hh = highs[j]
			}
			if lows[j] < ll {
				ll = lows[j]
			}
		}
		if hh == ll {
			k[i] = 50
			continue
		}
		k[i] = (closes[i] - ll) / (hh - ll) * 100
	}

	return StochasticResult{K: k, D: SMA(k, dPeriod)}
}
