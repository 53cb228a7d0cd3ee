package scoring

import "github.com/evdnx/liqsweep/types"

// Series holds the parallel intraday arrays the scoring engine works on.
type Series struct {
	Opens   []float64
	Highs   []float64
	Lows    []float64
	Closes  []float64
	Volumes []float64
}

// SeriesFromCandles flattens a candle slice into parallel arrays.
func SeriesFromCandles(candles []types.Candle) Series {
	s := Series{
		Opens:   make([]float64, len(candles)),
		Highs:   make([]float64, len(candles)),
		Lows:    make([]float64, len(candles)),
		Closes:  make([]float64, len(candles)),
		Volumes: make([]float64, len(candles)),
	}
	for i, c := range candles {
		s.Opens[i] = c.Open
		s.Highs[i] = c.High
		s.Lows[i] = c.Low
		s.Closes[i] = c.Close
		s.Volumes[i] = c.Volume
	}
	return s
}

func (s Series) Len() int {
	n := len(s.Closes)
	for _, arr := range [][]float64{s.Opens, s.Highs, s.Lows, s.Volumes} {
		if len(arr) < n {
			n = len(arr)
		}
	}
	return n
}
