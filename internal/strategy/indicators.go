package strategy

import (
	"errors"
	"fmt"

	"swing-trader/internal/ta"
	"swing-trader/internal/types"
)

// ErrInsufficientData marks a series too short to derive the indicator
// bundle. Callers skip the symbol instead of propagating it.
var ErrInsufficientData = errors.New("insufficient data")

const (
	// MinBars is the floor for computing the bundle at all.
	MinBars = 50
	// TrendBars is the history trend-following evaluators require.
	TrendBars = 200

	swingLookback = 10
)

// ComputeIndicators derives the full indicator bundle for the most recent
// bar of the series. Pure function: no I/O, no retained state.
func ComputeIndicators(candles []types.Candle) (*types.Indicators, error) {
	n := len(candles)
	if n < MinBars {
		return nil, fmt.Errorf("%w: %d bars, need %d", ErrInsufficientData, n, MinBars)
	}

	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	vols := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
		vols[i] = c.Vol
	}

	last := candles[n-1]
	prev := candles[n-2]

	ind := &types.Indicators{
		Close:     last.Close,
		Open:      last.Open,
		High:      last.High,
		Low:       last.Low,
		PrevClose: prev.Close,
		Bars:      n,
	}

	ema20 := ta.EMASeries(closes, 20)
	ema50 := ta.EMASeries(closes, 50)
	ema200 := ta.EMASeries(closes, 200)
	ind.EMA20, ind.PrevEMA20 = ema20[n-1], ema20[n-2]
	ind.EMA50, ind.PrevEMA50 = ema50[n-1], ema50[n-2]
	ind.EMA200 = ema200[n-1]

	ind.RSI = ta.RSI(closes, 14)
	ind.PrevRSI = ta.RSI(closes[:n-1], 14)

	ind.MACD, ind.MACDSignal, ind.MACDHist, ind.PrevMACD, ind.PrevMACDSignal = ta.MACD(closes, 12, 26, 9)

	ind.ATR = ta.ATR(highs, lows, closes, 14)
	ind.PrevATR = ta.ATR(highs[:n-1], lows[:n-1], closes[:n-1], 14)

	mid, up, low := ta.Bollinger(closes, 20, 2.0)
	ind.BBUpper, ind.BBLower = up, low
	if mid != 0 {
		ind.BBWidth = (up - low) / mid
	}

	ind.Volume = last.Vol
	ind.VolumeAvg = ta.SMA(vols, 20)
	if ind.VolumeAvg > 0 {
		ind.VolumeRatio = ind.Volume / ind.VolumeAvg
	} else {
		ind.VolumeRatio = 1.0
	}

	ind.SwingHigh, ind.SwingLow = ta.SwingPoints(highs, lows, swingLookback)

	switch {
	case ind.Close > ind.EMA20 && ind.EMA20 > ind.EMA50 && ind.EMA50 > ind.EMA200:
		ind.Trend = types.TrendUp
	case ind.Close < ind.EMA20 && ind.EMA20 < ind.EMA50 && ind.EMA50 < ind.EMA200:
		ind.Trend = types.TrendDown
	default:
		ind.Trend = types.TrendSideways
	}

	st, dir := ta.SuperTrend(highs, lows, closes, 10, 3.0)
	ind.SuperTrend = st[n-1]
	ind.SuperTrendDir = dir[n-1]

	piv := ta.PivotPoints(prev.High, prev.Low, prev.Close)
	ind.PivotP, ind.PivotR1, ind.PivotR2 = piv.P, piv.R1, piv.R2
	ind.PivotS1, ind.PivotS2 = piv.S1, piv.S2

	if n >= 6 && closes[n-6] != 0 {
		ind.TrendSlope = (closes[n-1] - closes[n-6]) / closes[n-6] * 100
	}

	return ind, nil
}
