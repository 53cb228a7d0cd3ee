package indicator

// Engulfing classifies the two-candle engulfing pattern at one index.
type Engulfing int8

const (
	EngulfNone    Engulfing = 0
	EngulfBullish Engulfing = 1
	EngulfBearish Engulfing = -1
)

// DetectEngulfing scans for the strict engulfing pattern: the current body
// fully contains the previous body and the two candles have opposite
// colors. Bodies that merely touch at a boundary do not qualify. Index 0
// has no predecessor and is always EngulfNone.
func DetectEngulfing(opens, closes []float64) []Engulfing {
	n := minLen(opens, closes)
	out := make([]Engulfing, n)

	for i := 1; i < n; i++ {
		prevBull := closes[i-1] > opens[i-1]
		prevBear := closes[i-1] < opens[i-1]
		currBull := closes[i] > opens[i]
		currBear := closes[i] < opens[i]

		switch {
		case currBull && prevBear && opens[i] < closes[i-1] && closes[i] > opens[i-1]:
			out[i] = EngulfBullish
		case currBear && prevBull && opens[i] > closes[i-1] && closes[i] < opens[i-1]:
			out[i] = EngulfBearish
		}
	}
	return out
}
