package strategy

import "swing-trader/internal/types"

// SwingBreakout enters on a volatility expansion close beyond the recent
// swing high or low. Volume is a hard gate: breakouts on thin volume are
// rejected before any scoring.
type SwingBreakout struct{}

const swingBreakoutThreshold = 0.75

func (SwingBreakout) Name() string { return "SWING_BREAKOUT" }

func (s SwingBreakout) Evaluate(symbol string, ind *types.Indicators) types.Signal {
	if ind.VolumeRatio < 1.3 {
		return hold(symbol, s.Name(), "breakouts need 1.3x+ volume")
	}

	pass, penalty, filterReasons := preFilter(ind)
	if !pass {
		return hold(symbol, s.Name(), filterReasons[0])
	}

	br := bodyRatio(ind)
	sig := types.Signal{Symbol: symbol, Strategy: s.Name(), Action: types.Hold}
	score := 0.0

	switch {
	case ind.Close > ind.SwingHigh:
		sig.Action = types.Buy
		score = 0.35
		sig.Reasons = append(sig.Reasons, "breakout above swing high")

		if ind.VolumeRatio > 2.0 {
			score += 0.3
			sig.Reasons = append(sig.Reasons, "explosive volume")
		} else if ind.VolumeRatio > 1.5 {
			score += 0.2
			sig.Reasons = append(sig.Reasons, "strong volume")
		} else {
			score += 0.1
		}
		if br > 0.7 {
			score += 0.2
			sig.Reasons = append(sig.Reasons, "strong breakout candle")
		} else if br > 0.5 {
			score += 0.1
		} else {
			score -= 0.15
			sig.Reasons = append(sig.Reasons, "weak candle structure")
		}
		if ind.Close > ind.Open {
			score += 0.1
		} else {
			score -= 0.2
		}

		sig.StopLoss = ind.SwingHigh - ind.ATR*0.5
		sig.Target = rrTarget(ind.Close, sig.StopLoss, types.Buy, 2.0)

	case ind.Close < ind.SwingLow:
		sig.Action = types.Sell
		score = 0.35
		sig.Reasons = append(sig.Reasons, "breakdown below swing low")

		if ind.VolumeRatio > 2.0 {
			score += 0.3
		} else if ind.VolumeRatio > 1.5 {
			score += 0.2
		}
		if br > 0.7 {
			score += 0.2
		} else if br > 0.5 {
			score += 0.1
		}
		if ind.Close < ind.Open {
			score += 0.1
		} else {
			score -= 0.2
		}

		sig.StopLoss = ind.SwingLow + ind.ATR*0.5
		sig.Target = rrTarget(ind.Close, sig.StopLoss, types.Sell, 2.0)

	default:
		return hold(symbol, s.Name(), "no level break")
	}

	score -= penalty
	sig.Reasons = append(sig.Reasons, filterReasons...)
	sig.Entry = ind.Close

	return finish(sig, score, swingBreakoutThreshold)
}
