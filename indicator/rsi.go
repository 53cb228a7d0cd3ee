package indicator

// RSI computes the relative strength index with gain/loss averages taken as
// simple moving averages, not Wilder's exponential smoothing. This is a
// deliberate simplification carried over from the original rule set. Index 0
// has no price step and reports the neutral value 50; an averaging window
// with zero losses reports exactly 100.
func RSI(closes []float64, period int) []float64 {
	n := len(closes)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	avgGain := SMA(gains, period)
	avgLoss := SMA(losses, period)

	out[0] = 50
	for i := 1; i < n; i++ {
		if avgLoss[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out
}
