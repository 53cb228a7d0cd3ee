package testutils

import (
	"time"

	"github.com/evdnx/liqsweep/types"
)

// BaseTime anchors generated candle series so tests are deterministic.
var BaseTime = time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

// FlatCandles builds n candles with O=H=L=C=price at one-minute spacing.
func FlatCandles(symbol string, n int, price float64) []types.Candle {
	out := make([]types.Candle, n)
	for i := range out {
		out[i] = types.Candle{
			Symbol:    symbol,
			Timeframe: "1m",
			Time:      BaseTime.Add(time.Duration(i) * time.Minute),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    1000,
		}
	}
	return out
}

// RampCandles builds n candles climbing (or falling, for negative step) by
// step per bar, with half-point wicks.
func RampCandles(symbol string, n int, start, step float64) []types.Candle {
	out := make([]types.Candle, n)
	for i := range out {
		open := start + float64(i)*step
		close := open + step
		hi, lo := close, open
		if step < 0 {
			hi, lo = open, close
		}
		out[i] = types.Candle{
			Symbol:    symbol,
			Timeframe: "1m",
			Time:      BaseTime.Add(time.Duration(i) * time.Minute),
			Open:      open,
			High:      hi + 0.5,
			Low:       lo - 0.5,
			Close:     close,
			Volume:    1000,
		}
	}
	return out
}
