package strategy

import (
	"math"

	"swing-trader/internal/types"
)

// TrendPullback buys dips to the 20 EMA inside an established trend
// structure, requiring a reversal candle and a non-extreme RSI.
type TrendPullback struct{}

const trendPullbackThreshold = 0.75

func (TrendPullback) Name() string { return "TREND_PULLBACK" }

func (t TrendPullback) Evaluate(symbol string, ind *types.Indicators) types.Signal {
	if ind.Bars < TrendBars {
		return hold(symbol, t.Name(), "history too short for trend confirmation")
	}
	pass, penalty, filterReasons := preFilter(ind)
	if !pass {
		return hold(symbol, t.Name(), filterReasons[0])
	}

	uptrend := ind.Close > ind.EMA50 && ind.EMA50 > ind.EMA200 && ind.EMA20 > ind.EMA50
	downtrend := ind.Close < ind.EMA50 && ind.EMA50 < ind.EMA200 && ind.EMA20 < ind.EMA50
	if !uptrend && !downtrend {
		return hold(symbol, t.Name(), "no clear trend structure")
	}

	touchedEMA20 := ind.Low <= ind.EMA20 && ind.EMA20 <= ind.High
	nearEMA20 := math.Abs(ind.Close-ind.EMA20)/ind.Close < 0.003
	if !touchedEMA20 && !nearEMA20 {
		return hold(symbol, t.Name(), "no pullback to EMA20")
	}

	sig := types.Signal{Symbol: symbol, Strategy: t.Name(), Action: types.Hold}
	score := 0.0

	if uptrend {
		sig.Action = types.Buy
		score = 0.4
		sig.Reasons = append(sig.Reasons, "pullback to EMA20 in uptrend")

		bullish := ind.Close > ind.Open
		strongBullish := bullish && ind.Close-ind.Open > ind.ATR*0.3
		switch {
		case strongBullish:
			score += 0.3
			sig.Reasons = append(sig.Reasons, "strong bullish reversal")
		case bullish:
			score += 0.15
			sig.Reasons = append(sig.Reasons, "bullish candle")
		default:
			// A bearish close at support argues against the bounce.
			score -= 0.2
		}

		if ind.RSI >= 35 && ind.RSI <= 55 {
			score += 0.15
			sig.Reasons = append(sig.Reasons, "RSI pullback zone")
		} else if ind.RSI > 70 {
			score -= 0.2
			sig.Reasons = append(sig.Reasons, "RSI overbought")
		}
		if ind.VolumeRatio > 1.2 {
			score += 0.15
		}
	} else {
		sig.Action = types.Sell
		score = 0.4
		sig.Reasons = append(sig.Reasons, "rally to EMA20 in downtrend")

		if ind.Close < ind.Open {
			score += 0.25
		}
		if ind.RSI >= 45 && ind.RSI <= 65 {
			score += 0.15
		}
		if ind.VolumeRatio > 1.2 {
			score += 0.15
		}
	}

	score -= penalty
	sig.Reasons = append(sig.Reasons, filterReasons...)

	sig.Entry = ind.Close
	sig.StopLoss = swingStop(ind, sig.Action)
	sig.Target = rrTarget(sig.Entry, sig.StopLoss, sig.Action, 2.0)

	return finish(sig, score, trendPullbackThreshold)
}
