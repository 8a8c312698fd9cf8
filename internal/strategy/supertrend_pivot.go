package strategy

import (
	"math"

	"swing-trader/internal/types"
)

// SuperTrendPivot trades the first daily close through R1/S1 while the
// SuperTrend direction agrees. It carries its own avoid-list instead of
// the shared pre-filter: thin volume, dead volatility, the S1..R1 chop
// zone and indecision candles all reject the setup outright.
type SuperTrendPivot struct{}

const superTrendPivotThreshold = 0.7

func (SuperTrendPivot) Name() string { return "SUPERTREND_PIVOT" }

func (p SuperTrendPivot) Evaluate(symbol string, ind *types.Indicators) types.Signal {
	if ind.Bars < TrendBars {
		return hold(symbol, p.Name(), "history too short for trend confirmation")
	}
	if ind.VolumeRatio < 0.7 {
		return hold(symbol, p.Name(), "volume too low")
	}
	if ind.Close > 0 && ind.ATR/ind.Close*100 < 0.5 {
		return hold(symbol, p.Name(), "ATR too low, no volatility")
	}

	br := bodyRatio(ind)
	if ind.PivotS1 < ind.Close && ind.Close < ind.PivotR1 && br < 0.5 {
		return hold(symbol, p.Name(), "price in no-trade zone between S1 and R1")
	}

	rng := ind.High - ind.Low
	if rng > 0 {
		upperWick := ind.High - math.Max(ind.Open, ind.Close)
		lowerWick := math.Min(ind.Open, ind.Close) - ind.Low
		if (upperWick+lowerWick)/rng > 0.7 {
			return hold(symbol, p.Name(), "large wicks, indecision candle")
		}
	}

	sig := types.Signal{Symbol: symbol, Strategy: p.Name(), Action: types.Hold}
	score := 0.0

	closeNearHigh := rng > 0 && (ind.High-ind.Close)/rng < 0.25
	closeNearLow := rng > 0 && (ind.Close-ind.Low)/rng < 0.25

	switch {
	case ind.SuperTrendDir == 1 && ind.Close > ind.PivotR1 && ind.PrevClose <= ind.PivotR1:
		sig.Action = types.Buy
		score = 0.5
		sig.Reasons = append(sig.Reasons, "breakout above R1")

		if ind.Close > ind.Open {
			score += 0.1
			sig.Reasons = append(sig.Reasons, "bullish candle")
		}
		if closeNearHigh {
			score += 0.1
			sig.Reasons = append(sig.Reasons, "close near high")
		}
		if ind.VolumeRatio > 1.5 {
			score += 0.15
			sig.Reasons = append(sig.Reasons, "strong volume")
		} else if ind.VolumeRatio > 1.2 {
			score += 0.1
			sig.Reasons = append(sig.Reasons, "volume confirmation")
		}
		if br > 0.6 {
			score += 0.1
			sig.Reasons = append(sig.Reasons, "strong candle body")
		}
		if ind.TrendSlope > 2 {
			score += 0.1
			sig.Reasons = append(sig.Reasons, "strong trend slope")
		}
		if ind.ATR > ind.PrevATR*1.1 {
			score += 0.05
			sig.Reasons = append(sig.Reasons, "ATR expanding")
		}

		// Tightest reasonable stop among structure levels.
		sig.StopLoss = math.Max(ind.SuperTrend, math.Max(ind.SwingLow, ind.Close-1.5*ind.ATR))
		risk := ind.Close - sig.StopLoss
		sig.Target = math.Max(ind.PivotR2, ind.Close+3*risk)

	case ind.SuperTrendDir == -1 && ind.Close < ind.PivotS1 && ind.PrevClose >= ind.PivotS1:
		sig.Action = types.Sell
		score = 0.5
		sig.Reasons = append(sig.Reasons, "breakdown below S1")

		if ind.Close < ind.Open {
			score += 0.1
			sig.Reasons = append(sig.Reasons, "bearish candle")
		}
		if closeNearLow {
			score += 0.1
			sig.Reasons = append(sig.Reasons, "close near low")
		}
		if ind.VolumeRatio > 1.5 {
			score += 0.15
			sig.Reasons = append(sig.Reasons, "strong volume")
		} else if ind.VolumeRatio > 1.2 {
			score += 0.1
		}
		if br > 0.6 {
			score += 0.1
		}
		if ind.TrendSlope < -2 {
			score += 0.1
			sig.Reasons = append(sig.Reasons, "strong downtrend")
		}

		sig.StopLoss = math.Min(ind.SuperTrend, math.Min(ind.SwingHigh, ind.Close+1.5*ind.ATR))
		risk := sig.StopLoss - ind.Close
		sig.Target = math.Min(ind.PivotS2, ind.Close-3*risk)

	default:
		return hold(symbol, p.Name(), "no pivot break with SuperTrend agreement")
	}

	if br < 0.4 {
		score -= 0.1
		sig.Reasons = append(sig.Reasons, "weak candle structure")
	}
	nearR2 := math.Abs(ind.Close-ind.PivotR2)/ind.Close < 0.01
	nearS2 := math.Abs(ind.Close-ind.PivotS2)/ind.Close < 0.01
	if nearR2 || nearS2 {
		score -= 0.1
		sig.Reasons = append(sig.Reasons, "near major pivot level")
	}

	sig.Entry = ind.Close
	return finish(sig, score, superTrendPivotThreshold)
}
