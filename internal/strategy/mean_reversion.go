package strategy

import "swing-trader/internal/types"

// BBMeanReversion fades overextended moves in sideways markets: buy the
// lower band, sell the upper, gated to RSI extremes, targeting the band
// midpoint.
type BBMeanReversion struct{}

const bbMeanReversionThreshold = 0.65

func (BBMeanReversion) Name() string { return "BB_MEAN_REVERSION" }

func (b BBMeanReversion) Evaluate(symbol string, ind *types.Indicators) types.Signal {
	if ind.Trend != types.TrendSideways {
		return hold(symbol, b.Name(), "requires sideways market")
	}

	pass, penalty, filterReasons := preFilter(ind)
	if !pass {
		return hold(symbol, b.Name(), filterReasons[0])
	}

	sig := types.Signal{Symbol: symbol, Strategy: b.Name(), Action: types.Hold}
	score := 0.0
	bbMid := (ind.BBUpper + ind.BBLower) / 2

	switch {
	case ind.Close <= ind.BBLower:
		sig.Action = types.Buy
		score = 0.4
		sig.Reasons = append(sig.Reasons, "price at lower band")

		if ind.RSI < 30 {
			score += 0.3
			sig.Reasons = append(sig.Reasons, "RSI oversold")
		} else if ind.RSI < 35 {
			score += 0.15
		} else {
			score -= 0.2
			sig.Reasons = append(sig.Reasons, "RSI not oversold enough")
		}
		if ind.Close > ind.Open {
			score += 0.2
			sig.Reasons = append(sig.Reasons, "bullish reversal candle")
		} else {
			score -= 0.15
		}
		if ind.VolumeRatio > 1.2 {
			score += 0.1
		}
		sig.StopLoss = ind.BBLower - ind.ATR*0.5
		sig.Target = bbMid

	case ind.Close >= ind.BBUpper:
		sig.Action = types.Sell
		score = 0.4
		sig.Reasons = append(sig.Reasons, "price at upper band")

		if ind.RSI > 70 {
			score += 0.3
			sig.Reasons = append(sig.Reasons, "RSI overbought")
		} else if ind.RSI > 65 {
			score += 0.15
		} else {
			score -= 0.2
		}
		if ind.Close < ind.Open {
			score += 0.2
			sig.Reasons = append(sig.Reasons, "bearish reversal candle")
		} else {
			score -= 0.15
		}
		sig.StopLoss = ind.BBUpper + ind.ATR*0.5
		sig.Target = bbMid

	default:
		return hold(symbol, b.Name(), "price inside bands")
	}

	score -= penalty
	sig.Reasons = append(sig.Reasons, filterReasons...)
	sig.Entry = ind.Close

	return finish(sig, score, bbMeanReversionThreshold)
}
