package indicator

import "math"

// BollingerResult bundles the three Bollinger band series.
type BollingerResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger computes middle = SMA(period) and upper/lower = middle +/- k
// standard deviations of the trailing window. Before the window fills,
// upper and lower collapse to the raw close so the band carries no signal.
func Bollinger(closes []float64, period int, k float64) BollingerResult {
	n := len(closes)
	res := BollingerResult{
		Upper:  make([]float64, n),
		Middle: SMA(closes, period),
		Lower:  make([]float64, n),
	}

	for i := 0; i < n; i++ {
		if i < period-1 {
			res.Upper[i] = closes[i]
			res.Lower[i] = closes[i]
			continue
		}
		sd := stddev(closes[i-period+1:i+1], res.Middle[i])
		res.Upper[i] = res.Middle[i] + k*sd
		res.Lower[i] = res.Middle[i] - k*sd
	}
	return res
}

// stddev is the population standard deviation around a precomputed mean.
func stddev(window []float64, mean float64) float64 {
	if len(window) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range window {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(window)))
}
