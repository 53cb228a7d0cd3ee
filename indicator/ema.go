package indicator

// EMA computes the exponential moving average, seeded with the first sample.
// The result has the same length as the input. A period of one or less
// returns the input unchanged.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if period <= 1 || len(values) == 0 {
		return out
	}

	k := 2.0 / (float64(period) + 1.0)
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// SMA computes the simple moving average. Indices before the window fills
// use an expanding-window average over the samples seen so far rather than
// zero padding.
func SMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	if period < 1 {
		period = 1
	}

	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
			out[i] = sum / float64(period)
		} else {
			out[i] = sum / float64(i+1)
		}
	}
	return out
}
