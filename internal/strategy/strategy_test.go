package strategy

import (
	"math"
	"testing"

	"swing-trader/internal/types"
)

// bullishCrossover builds a bundle where EMA20 just crossed above EMA50
// in a healthy uptrend with strong volume.
func bullishCrossover() *types.Indicators {
	return &types.Indicators{
		Close: 105, Open: 103.5, High: 106, Low: 103,
		EMA20: 101, EMA50: 100, EMA200: 90,
		PrevEMA20: 99.5, PrevEMA50: 100,
		RSI:         55,
		ATR:         2,
		VolumeRatio: 1.8,
		SwingHigh:   106, SwingLow: 100,
		Trend: types.TrendUp,
		Bars:  250,
	}
}

func TestEMACrossoverBuy(t *testing.T) {
	ind := bullishCrossover()
	sig := EMACrossover{}.Evaluate("RELIANCE", ind)

	if sig.Action != types.Buy {
		t.Fatalf("Expected BUY, got %s (%v)", sig.Action, sig.Reasons)
	}
	// 0.35 cross + 0.25 above EMA200 + 0.25 volume + 0.15 RSI zone.
	if math.Abs(sig.Confidence-1.0) > 1e-9 {
		t.Errorf("Expected confidence 1.0, got %f", sig.Confidence)
	}
	if sig.Entry != ind.Close {
		t.Errorf("Expected entry at close %f, got %f", ind.Close, sig.Entry)
	}
	// Stop is min(swing low - 1.5 ATR, close - 2 ATR) = min(97, 101).
	if math.Abs(sig.StopLoss-97) > 1e-9 {
		t.Errorf("Expected stop 97, got %f", sig.StopLoss)
	}
	// 2R target: 105 + 2*(105-97).
	if math.Abs(sig.Target-121) > 1e-9 {
		t.Errorf("Expected target 121, got %f", sig.Target)
	}
}

func TestEMACrossoverBelowThresholdHolds(t *testing.T) {
	ind := bullishCrossover()
	// Weaker volume and RSI out of the bonus zone leaves the score at
	// 0.35 + 0.25 + 0.15 = 0.75, under the 0.8 activation threshold.
	ind.VolumeRatio = 1.3
	ind.RSI = 75

	sig := EMACrossover{}.Evaluate("RELIANCE", ind)
	if sig.Action != types.Hold {
		t.Fatalf("Expected HOLD below threshold, got %s", sig.Action)
	}
	if sig.Confidence != 0 {
		t.Errorf("Expected zero confidence on HOLD, got %f", sig.Confidence)
	}
	if sig.Entry != 0 || sig.StopLoss != 0 || sig.Target != 0 {
		t.Errorf("Expected levels zeroed on HOLD, got entry=%f stop=%f target=%f",
			sig.Entry, sig.StopLoss, sig.Target)
	}
}

func TestEMACrossoverNoCross(t *testing.T) {
	ind := bullishCrossover()
	ind.PrevEMA20 = 101 // already above, no fresh cross
	sig := EMACrossover{}.Evaluate("RELIANCE", ind)
	if sig.Action != types.Hold {
		t.Errorf("Expected HOLD without a crossover, got %s", sig.Action)
	}
}

func TestTrendStrategiesRequireLongHistory(t *testing.T) {
	// On a short series the EMA200 is seeded from the first bar and
	// meaningless, so a fresh cross must not fire.
	ind := bullishCrossover()
	ind.Bars = 60

	for _, ev := range []Evaluator{EMACrossover{}, TrendPullback{}, SuperTrendPivot{}} {
		sig := ev.Evaluate("RELIANCE", ind)
		if sig.Action != types.Hold {
			t.Errorf("%s: expected HOLD on %d bars, got %s (%v)",
				ev.Name(), ind.Bars, sig.Action, sig.Reasons)
		}
		if len(sig.Reasons) == 0 || sig.Reasons[0] != "history too short for trend confirmation" {
			t.Errorf("%s: expected short-history reason, got %v", ev.Name(), sig.Reasons)
		}
	}
}

func TestActivationThresholdBoundary(t *testing.T) {
	sig := types.Signal{
		Symbol: "INFY", Strategy: "EMA_CROSSOVER", Action: types.Buy,
		Entry: 105, StopLoss: 97, Target: 121,
		Reasons: []string{"EMA20 crossed above EMA50"},
	}

	// A score exactly at the activation threshold is emitted.
	at := finish(sig, emaCrossoverThreshold, emaCrossoverThreshold)
	if at.Action != types.Buy {
		t.Fatalf("Expected BUY at the exact threshold, got %s", at.Action)
	}
	if at.Confidence != emaCrossoverThreshold {
		t.Errorf("Expected confidence %f, got %f", emaCrossoverThreshold, at.Confidence)
	}

	// One ulp below it is not.
	below := finish(sig, math.Nextafter(emaCrossoverThreshold, 0), emaCrossoverThreshold)
	if below.Action != types.Hold {
		t.Errorf("Expected HOLD just below the threshold, got %s", below.Action)
	}
	if below.Confidence != 0 {
		t.Errorf("Expected zero confidence on HOLD, got %f", below.Confidence)
	}
}

func TestPreFilterVolumeGate(t *testing.T) {
	ind := bullishCrossover()
	ind.VolumeRatio = 0.8
	sig := EMACrossover{}.Evaluate("RELIANCE", ind)
	if sig.Action != types.Hold {
		t.Fatalf("Expected HOLD on below-average volume, got %s", sig.Action)
	}
	if len(sig.Reasons) == 0 || sig.Reasons[0] != "volume below average" {
		t.Errorf("Expected volume gate reason, got %v", sig.Reasons)
	}
}

func TestPreFilterAbnormalRangeGate(t *testing.T) {
	ind := bullishCrossover()
	ind.High = 112
	ind.Low = 103 // 9-point day against a 2-point ATR
	sig := EMACrossover{}.Evaluate("RELIANCE", ind)
	if sig.Action != types.Hold {
		t.Errorf("Expected HOLD on abnormal range, got %s", sig.Action)
	}
}

func TestBBMeanReversionBuy(t *testing.T) {
	ind := &types.Indicators{
		Close: 96, Open: 95, High: 96.5, Low: 94.5,
		BBUpper: 104, BBLower: 96,
		RSI:         28,
		ATR:         2,
		VolumeRatio: 1.25,
		Trend:       types.TrendSideways,
		Bars:        250,
	}
	sig := BBMeanReversion{}.Evaluate("TCS", ind)

	if sig.Action != types.Buy {
		t.Fatalf("Expected BUY at the lower band, got %s (%v)", sig.Action, sig.Reasons)
	}
	// 0.4 band touch + 0.3 oversold + 0.2 reversal candle + 0.1 volume.
	if math.Abs(sig.Confidence-1.0) > 1e-9 {
		t.Errorf("Expected confidence 1.0, got %f", sig.Confidence)
	}
	if math.Abs(sig.StopLoss-95) > 1e-9 {
		t.Errorf("Expected stop at band - 0.5 ATR = 95, got %f", sig.StopLoss)
	}
	if math.Abs(sig.Target-100) > 1e-9 {
		t.Errorf("Expected target at band midpoint 100, got %f", sig.Target)
	}
}

func TestBBMeanReversionRequiresSideways(t *testing.T) {
	ind := &types.Indicators{
		Close: 96, Open: 95, High: 96.5, Low: 94.5,
		BBUpper: 104, BBLower: 96,
		RSI: 28, ATR: 2, VolumeRatio: 1.25,
		Trend: types.TrendUp,
		Bars:  250,
	}
	sig := BBMeanReversion{}.Evaluate("TCS", ind)
	if sig.Action != types.Hold {
		t.Errorf("Expected HOLD in a trending market, got %s", sig.Action)
	}
}

func TestEvaluatorsAreDeterministic(t *testing.T) {
	ind := bullishCrossover()
	for _, ev := range DefaultRegistry() {
		a := ev.Evaluate("INFY", ind)
		b := ev.Evaluate("INFY", ind)
		if a.Action != b.Action || a.Confidence != b.Confidence ||
			a.StopLoss != b.StopLoss || a.Target != b.Target {
			t.Errorf("%s: repeated evaluation differed: %+v vs %+v", ev.Name(), a, b)
		}
	}
}
