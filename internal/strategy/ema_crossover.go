package strategy

import "swing-trader/internal/types"

// EMACrossover is classical trend following on the EMA20/50 cross,
// filtered by the long-term trend and volume.
type EMACrossover struct{}

const emaCrossoverThreshold = 0.8

func (EMACrossover) Name() string { return "EMA_CROSSOVER" }

func (e EMACrossover) Evaluate(symbol string, ind *types.Indicators) types.Signal {
	if ind.Bars < TrendBars {
		return hold(symbol, e.Name(), "history too short for trend confirmation")
	}
	pass, penalty, filterReasons := preFilter(ind)
	if !pass {
		return hold(symbol, e.Name(), filterReasons[0])
	}

	bullishCross := ind.PrevEMA20 <= ind.PrevEMA50 && ind.EMA20 > ind.EMA50
	bearishCross := ind.PrevEMA20 >= ind.PrevEMA50 && ind.EMA20 < ind.EMA50

	sig := types.Signal{Symbol: symbol, Strategy: e.Name(), Action: types.Hold}
	score := 0.0

	switch {
	case bullishCross:
		sig.Action = types.Buy
		score = 0.35
		sig.Reasons = append(sig.Reasons, "EMA20 crossed above EMA50")

		if ind.Close > ind.EMA200 {
			score += 0.25
			sig.Reasons = append(sig.Reasons, "above EMA200")
		} else {
			score -= 0.15
		}
		if ind.VolumeRatio > 1.5 {
			score += 0.25
			sig.Reasons = append(sig.Reasons, "high volume confirmation")
		} else if ind.VolumeRatio > 1.2 {
			score += 0.15
		} else {
			score -= 0.1
		}
		if ind.RSI > 50 && ind.RSI < 70 {
			score += 0.15
			sig.Reasons = append(sig.Reasons, "RSI bullish momentum")
		}

	case bearishCross:
		sig.Action = types.Sell
		score = 0.35
		sig.Reasons = append(sig.Reasons, "EMA20 crossed below EMA50")

		if ind.Close < ind.EMA200 {
			score += 0.25
		}
		if ind.VolumeRatio > 1.5 {
			score += 0.25
		} else if ind.VolumeRatio > 1.2 {
			score += 0.15
		}
		if ind.RSI > 30 && ind.RSI < 50 {
			score += 0.15
		}

	default:
		return hold(symbol, e.Name(), "no EMA crossover")
	}

	score -= penalty
	sig.Reasons = append(sig.Reasons, filterReasons...)

	sig.Entry = ind.Close
	sig.StopLoss = swingStop(ind, sig.Action)
	sig.Target = rrTarget(sig.Entry, sig.StopLoss, sig.Action, 2.0)

	return finish(sig, score, emaCrossoverThreshold)
}
