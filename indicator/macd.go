package indicator

// MACDResult bundles the three MACD series.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes line = EMA(fast)-EMA(slow), signal = EMA(line, signal) and
// histogram = line-signal. If the input is shorter than slow+signal the
// series stay all zero: there is not enough history for the slow leg to
// mean anything.
func MACD(closes []float64, fast, slow, signal int) MACDResult {
	n := len(closes)
	res := MACDResult{
		Line:      make([]float64, n),
		Signal:    make([]float64, n),
		Histogram: make([]float64, n),
	}
	if n < slow+signal {
		return res
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	for i := 0; i < n; i++ {
		res.Line[i] = fastEMA[i] - slowEMA[i]
	}
	res.Signal = EMA(res.Line, signal)
	for i := 0; i < n; i++ {
		res.Histogram[i] = res.Line[i] - res.Signal[i]
	}
	return res
}
