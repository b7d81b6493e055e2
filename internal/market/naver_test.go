package market

import (
	"math"
	"testing"

	"kis-trading-bot/internal/types"
)

const dailyPageHTML = `
<table class="type2">
  <tr><th>date</th><th>close</th><th>change</th><th>open</th><th>high</th><th>low</th><th>volume</th></tr>
  <tr>
    <td><span class="tah">2026.03.02</span></td>
    <td><span class="tah">71,500</span></td>
    <td><span class="tah">1,500</span></td>
    <td><span class="tah">70,200</span></td>
    <td><span class="tah">71,800</span></td>
    <td><span class="tah">70,100</span></td>
    <td><span class="tah">12,345,678</span></td>
  </tr>
  <tr><td colspan="7"></td></tr>
  <tr>
    <td><span class="tah">2026.02.27</span></td>
    <td><span class="tah">70,000</span></td>
    <td><span class="tah">500</span></td>
    <td><span class="tah">69,800</span></td>
    <td><span class="tah">70,400</span></td>
    <td><span class="tah">69,500</span></td>
    <td><span class="tah">9,876,543</span></td>
  </tr>
</table>`

func TestParseDailyPage(t *testing.T) {
	candles, err := parseDailyPage([]byte(dailyPageHTML))
	if err != nil {
		t.Fatal(err)
	}
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2 (spacer rows skipped)", len(candles))
	}

	c := candles[0]
	if c.Close != 71500 || c.Open != 70200 || c.High != 71800 || c.Low != 70100 {
		t.Fatalf("candle = %+v", c)
	}
	if c.Vol != 12345678 {
		t.Fatalf("volume = %v", c.Vol)
	}
}

func TestParseDailyPageEmpty(t *testing.T) {
	candles, err := parseDailyPage([]byte("<html><body></body></html>"))
	if err != nil {
		t.Fatal(err)
	}
	if len(candles) != 0 {
		t.Fatalf("got %d candles from an empty page", len(candles))
	}
}

func TestIndicatorsOverSeries(t *testing.T) {
	candles := make([]types.Candle, 30)
	for i := range candles {
		price := 100.0 + float64(i)
		candles[i] = types.Candle{
			Open: price, High: price + 2, Low: price - 2, Close: price, Vol: 1000,
		}
	}

	ind := Indicators(candles)
	// Last five closes are 125..129.
	if ind.SMA[5] != 127 {
		t.Fatalf("SMA(5) = %v, want 127", ind.SMA[5])
	}
	// Monotonic rise pins RSI at 100.
	if ind.RSI != 100 {
		t.Fatalf("RSI = %v, want 100", ind.RSI)
	}
	if ind.BB.Upper <= ind.BB.Middle || ind.BB.Lower >= ind.BB.Middle {
		t.Fatalf("Bollinger bands out of order: %+v", ind.BB)
	}
	if math.IsNaN(ind.ATR) || ind.ATR <= 0 {
		t.Fatalf("ATR = %v", ind.ATR)
	}
}

func TestIndicatorsShortSeries(t *testing.T) {
	ind := Indicators([]types.Candle{{Close: 100}, {Close: 101}})
	if !math.IsNaN(ind.SMA[20]) {
		t.Fatalf("SMA(20) over 2 bars = %v, want NaN", ind.SMA[20])
	}
}
