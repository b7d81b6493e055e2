package market

import (
	"kis-trading-bot/internal/ta"
	"kis-trading-bot/internal/types"
)

// Indicators computes the standard technical indicators over a candle
// series. Windows without enough data come back as NaN, matching the
// underlying primitives.
func Indicators(candles []types.Candle) types.Indicators {
	closes := make([]float64, len(candles))
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	ind := types.Indicators{
		SMA: map[int]float64{
			5:  ta.SMA(closes, 5),
			20: ta.SMA(closes, 20),
		},
		RSI: ta.RSI(closes, 14),
		ATR: ta.ATR(highs, lows, closes, 14),
	}
	ind.BB.Middle, ind.BB.Upper, ind.BB.Lower = ta.Bollinger(closes, 20, 2.0)
	return ind
}
