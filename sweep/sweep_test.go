package sweep

import (
	"testing"
	"time"

	"github.com/evdnx/liqsweep/config"
	"github.com/evdnx/liqsweep/testutils"
	"github.com/evdnx/liqsweep/types"
)

func testZone() types.Zone {
	return types.Zone{
		Symbol: "EURUSD",
		Period: types.PeriodDay,
		Low:    95,
		High:   105,
		Height: 10,
		Time:   testutils.BaseTime,
	}
}

func bar(i int, o, h, l, c float64) types.Candle {
	return types.Candle{
		Symbol:    "EURUSD",
		Timeframe: "1m",
		Time:      testutils.BaseTime.Add(time.Duration(i) * time.Minute),
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    1000,
	}
}

/*
   -----------------------------------------------------------------------
   Long sweep of the zone low.
   -----------------------------------------------------------------------
   Twenty flat candles at 100 keep the ATR tiny; the final candle spikes
   down to 85 and closes back at 101. Its low is far below zone low minus
   epsilon and the close is back above the zone low, so the detector must
   report a long sweep anchored on that candle's timestamp.
*/
func TestScanLongSweep(t *testing.T) {
	d := NewDetector(config.Default().Sweep, testutils.NewMockLogger())
	candles := append(testutils.FlatCandles("EURUSD", 20, 100), bar(20, 100, 101, 85, 101))

	ev, ok := d.Scan(testZone(), candles)
	if !ok {
		t.Fatal("expected a sweep event")
	}
	if ev.Direction != types.Long {
		t.Fatalf("expected long sweep, got %s", ev.Direction)
	}
	if !ev.Time.Equal(candles[20].Time) {
		t.Fatalf("sweep must anchor on the sweeping candle, got %v want %v", ev.Time, candles[20].Time)
	}
	if ev.Symbol != "EURUSD" || ev.Zone.Low != 95 {
		t.Fatalf("event must carry the swept zone, got %+v", ev)
	}
}

/*
   -----------------------------------------------------------------------
   Short sweep of the zone high.
   -----------------------------------------------------------------------
   Mirror of the long case: a spike to 115 closing back at 104.
*/
func TestScanShortSweep(t *testing.T) {
	d := NewDetector(config.Default().Sweep, testutils.NewMockLogger())
	candles := append(testutils.FlatCandles("EURUSD", 20, 100), bar(20, 100, 115, 100, 104))

	ev, ok := d.Scan(testZone(), candles)
	if !ok {
		t.Fatal("expected a sweep event")
	}
	if ev.Direction != types.Short {
		t.Fatalf("expected short sweep, got %s", ev.Direction)
	}
}

/*
   -----------------------------------------------------------------------
   First match wins.
   -----------------------------------------------------------------------
   Two qualifying candles; the second excursion is larger but the first
   match must be returned.
*/
func TestScanFirstMatchWins(t *testing.T) {
	d := NewDetector(config.Default().Sweep, testutils.NewMockLogger())
	candles := append(testutils.FlatCandles("EURUSD", 20, 100),
		bar(20, 100, 101, 90, 101),
		bar(21, 100, 101, 80, 101),
	)

	ev, ok := d.Scan(testZone(), candles)
	if !ok {
		t.Fatal("expected a sweep event")
	}
	if !ev.Time.Equal(candles[20].Time) {
		t.Fatalf("the first qualifying candle must win, got %v want %v", ev.Time, candles[20].Time)
	}
}

/*
   -----------------------------------------------------------------------
   The close must come back inside.
   -----------------------------------------------------------------------
   A candle that dips below the zone low but also closes below it is a
   breakdown, not a sweep.
*/
func TestScanRequiresCloseBackInside(t *testing.T) {
	d := NewDetector(config.Default().Sweep, testutils.NewMockLogger())
	candles := append(testutils.FlatCandles("EURUSD", 20, 100), bar(20, 100, 100, 85, 94))

	if _, ok := d.Scan(testZone(), candles); ok {
		t.Fatal("a close below the zone low must not qualify as a sweep")
	}
}

func TestScanNoExcursion(t *testing.T) {
	d := NewDetector(config.Default().Sweep, testutils.NewMockLogger())
	if _, ok := d.Scan(testZone(), testutils.FlatCandles("EURUSD", 20, 100)); ok {
		t.Fatal("flat candles inside the zone must not sweep")
	}
}

func TestScanEmptyInput(t *testing.T) {
	d := NewDetector(config.Default().Sweep, testutils.NewMockLogger())
	if _, ok := d.Scan(testZone(), nil); ok {
		t.Fatal("empty input must not sweep")
	}
}
