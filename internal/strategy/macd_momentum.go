package strategy

import "swing-trader/internal/types"

// MACDMomentum captures trend acceleration on a MACD line/signal
// crossover, confirmed by the zero line, EMA50 alignment and volume.
type MACDMomentum struct{}

const macdMomentumThreshold = 0.75

func (MACDMomentum) Name() string { return "MACD_MOMENTUM" }

func (m MACDMomentum) Evaluate(symbol string, ind *types.Indicators) types.Signal {
	pass, penalty, filterReasons := preFilter(ind)
	if !pass {
		return hold(symbol, m.Name(), filterReasons[0])
	}

	bullishCross := ind.PrevMACD <= ind.PrevMACDSignal && ind.MACD > ind.MACDSignal
	bearishCross := ind.PrevMACD >= ind.PrevMACDSignal && ind.MACD < ind.MACDSignal

	sig := types.Signal{Symbol: symbol, Strategy: m.Name(), Action: types.Hold}
	score := 0.0

	switch {
	case bullishCross:
		sig.Action = types.Buy
		score = 0.4
		sig.Reasons = append(sig.Reasons, "MACD bullish crossover")

		// A cross still below the zero line is fresh momentum.
		if ind.MACD < 0 {
			score += 0.25
			sig.Reasons = append(sig.Reasons, "cross below zero line")
		} else {
			score -= 0.1
		}
		if ind.Close > ind.EMA50 {
			score += 0.15
			sig.Reasons = append(sig.Reasons, "price above EMA50")
		} else {
			score -= 0.15
		}
		if ind.VolumeRatio > 1.3 {
			score += 0.2
			sig.Reasons = append(sig.Reasons, "strong volume")
		} else if ind.VolumeRatio > 1.1 {
			score += 0.1
		}
		if ind.Close > ind.Open {
			score += 0.1
			sig.Reasons = append(sig.Reasons, "bullish candle")
		} else {
			score -= 0.1
		}

	case bearishCross:
		sig.Action = types.Sell
		score = 0.4
		sig.Reasons = append(sig.Reasons, "MACD bearish crossover")

		if ind.MACD > 0 {
			score += 0.25
		}
		if ind.Close < ind.EMA50 {
			score += 0.15
		}
		if ind.VolumeRatio > 1.3 {
			score += 0.2
		}
		if ind.Close < ind.Open {
			score += 0.1
		}

	default:
		return hold(symbol, m.Name(), "no MACD crossover")
	}

	score -= penalty
	sig.Reasons = append(sig.Reasons, filterReasons...)

	sig.Entry = ind.Close
	sig.StopLoss = swingStop(ind, sig.Action)
	sig.Target = rrTarget(sig.Entry, sig.StopLoss, sig.Action, 2.5)

	return finish(sig, score, macdMomentumThreshold)
}
