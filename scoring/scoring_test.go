package scoring

import (
	"math"
	"testing"

	"github.com/evdnx/liqsweep/config"
	"github.com/evdnx/liqsweep/testutils"
	"github.com/evdnx/liqsweep/types"
)

// downtrend builds a strictly falling marubozu series long enough for the
// EMA(200) trend filter to engage.
func downtrend(n int) Series {
	s := Series{
		Opens:   make([]float64, n),
		Highs:   make([]float64, n),
		Lows:    make([]float64, n),
		Closes:  make([]float64, n),
		Volumes: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		c := float64(350 - i)
		s.Closes[i] = c
		s.Opens[i] = c + 1
		s.Highs[i] = c + 1
		s.Lows[i] = c
		s.Volumes[i] = 1000
	}
	return s
}

func testZone() types.Zone {
	return types.Zone{Symbol: "EURUSD", Period: types.PeriodDay, Low: 95, High: 105, Height: 10}
}

/*
   -----------------------------------------------------------------------
   Counter-trend long on a clean downtrend.
   -----------------------------------------------------------------------
   On a 250-bar falling series every price step is a loss, so RSI pins at
   0 and the oversold confirmation fires for a long. The price sits far
   below EMA(200), so the same long is counter-trend and takes the double
   penalty. The signal must not pass the gate.
*/
func TestCalculateScoreCounterTrendLong(t *testing.T) {
	e := NewEngine(config.Default().Scoring, testutils.NewMockLogger())
	score := e.CalculateScore(types.Long, testZone(), downtrend(250))

	if got := score.Factors["rsi"]; math.Abs(got-1.5) > 1e-9 {
		t.Fatalf("oversold RSI must confirm the long, factor %f", got)
	}
	if got := score.Factors["trend"]; math.Abs(got-(-2.0)) > 1e-9 {
		t.Fatalf("counter-trend long must take the double penalty, factor %f", got)
	}
	if score.Passed {
		t.Fatalf("counter-trend long must not pass, total %f", score.Total)
	}
	if math.Abs(score.Total-1.0) > 1e-6 {
		t.Fatalf("expected total 1.0, got %f", score.Total)
	}
}

/*
   -----------------------------------------------------------------------
   Flipping direction swings the trend factor by three points.
   -----------------------------------------------------------------------
   The same series scored short is trend-aligned: +1 instead of -2.
*/
func TestTrendFactorSwingIsThreePoints(t *testing.T) {
	e := NewEngine(config.Default().Scoring, testutils.NewMockLogger())
	s := downtrend(250)

	long := e.CalculateScore(types.Long, testZone(), s)
	short := e.CalculateScore(types.Short, testZone(), s)

	if got := short.Factors["trend"]; math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("trend-aligned short must earn the bonus, factor %f", got)
	}
	if delta := short.Factors["trend"] - long.Factors["trend"]; math.Abs(delta-3.0) > 1e-9 {
		t.Fatalf("trend factor swing must be 3.0, got %f", delta)
	}
}

func TestCalculateScoreEmptySeries(t *testing.T) {
	e := NewEngine(config.Default().Scoring, testutils.NewMockLogger())
	score := e.CalculateScore(types.Long, testZone(), Series{})
	if score.Passed || score.Total != 0 {
		t.Fatalf("empty series must score zero and fail, got %+v", score)
	}
}

/*
   -----------------------------------------------------------------------
   Disabled scoring skips the gate.
   -----------------------------------------------------------------------
   With the gate off every evaluation proceeds straight to level
   computation with a neutral 0.5 confidence, and the take-profit distance
   is the configured multiple of the stop distance.
*/
func TestEvaluateDisabledScoring(t *testing.T) {
	cfg := config.Default().Scoring
	cfg.Enabled = false
	e := NewEngine(cfg, testutils.NewMockLogger())

	s := SeriesFromCandles(testutils.RampCandles("EURUSD", 30, 100, 0.1))
	dec, score, ok := e.Evaluate(types.Long, testZone(), s)
	if !ok {
		t.Fatal("disabled scoring must not reject")
	}
	if !score.Passed || score.Reason != "scoring disabled" {
		t.Fatalf("unexpected score %+v", score)
	}
	if dec.Confidence != 0.5 || dec.Quality != types.QualityMedium {
		t.Fatalf("expected neutral confidence/medium quality, got %f/%s", dec.Confidence, dec.Quality)
	}
	if dec.Side != types.Buy {
		t.Fatalf("long must map to a BUY, got %s", dec.Side)
	}

	z := testZone()
	if !(dec.Entry > z.Low && dec.Stop < z.Low && dec.TakeProfit > dec.Entry) {
		t.Fatalf("long level ordering violated: entry %f stop %f tp %f", dec.Entry, dec.Stop, dec.TakeProfit)
	}
	riskDist := z.Low - dec.Stop
	if math.Abs((dec.TakeProfit-dec.Entry)-cfg.MinRiskReward*riskDist) > 1e-9 {
		t.Fatalf("take-profit must sit MinRiskReward stop distances away: tp %f entry %f risk %f",
			dec.TakeProfit, dec.Entry, riskDist)
	}
}

/*
   -----------------------------------------------------------------------
   Long and short levels mirror around the zone.
   -----------------------------------------------------------------------
   For the same zone and series the short entry/stop/take-profit must sit
   at the same distances from the zone high as the long levels sit from
   the zone low.
*/
func TestEvaluateMirrorLevels(t *testing.T) {
	cfg := config.Default().Scoring
	cfg.Enabled = false
	e := NewEngine(cfg, testutils.NewMockLogger())

	s := SeriesFromCandles(testutils.RampCandles("EURUSD", 30, 100, 0.1))
	z := testZone()
	long, _, okL := e.Evaluate(types.Long, z, s)
	short, _, okS := e.Evaluate(types.Short, z, s)
	if !okL || !okS {
		t.Fatal("both evaluations must succeed with the gate off")
	}

	if math.Abs((long.Entry-z.Low)-(z.High-short.Entry)) > 1e-9 {
		t.Fatalf("entries not mirrored: long %f short %f", long.Entry, short.Entry)
	}
	if math.Abs((z.Low-long.Stop)-(short.Stop-z.High)) > 1e-9 {
		t.Fatalf("stops not mirrored: long %f short %f", long.Stop, short.Stop)
	}
	if math.Abs((long.TakeProfit-long.Entry)-(short.Entry-short.TakeProfit)) > 1e-9 {
		t.Fatalf("take-profits not mirrored: long %f short %f", long.TakeProfit, short.TakeProfit)
	}
}

func TestEvaluateRejectsBelowThreshold(t *testing.T) {
	log := testutils.NewMockLogger()
	e := NewEngine(config.Default().Scoring, log)

	_, score, ok := e.Evaluate(types.Long, testZone(), downtrend(250))
	if ok {
		t.Fatal("a counter-trend long on a downtrend must be rejected")
	}
	if score.Passed {
		t.Fatal("rejected evaluation must carry a failed score")
	}
	if log.LastMessage() != "entry_rejected" {
		t.Fatalf("expected entry_rejected log, got %q", log.LastMessage())
	}
}

func TestEvaluateEmptySeries(t *testing.T) {
	e := NewEngine(config.Default().Scoring, testutils.NewMockLogger())
	if _, _, ok := e.Evaluate(types.Long, testZone(), Series{}); ok {
		t.Fatal("empty series must not produce a decision")
	}
}
