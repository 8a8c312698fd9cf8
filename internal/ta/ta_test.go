package ta

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA(t *testing.T) {
	if got := SMA([]float64{1, 2, 3, 4}, 2); !almostEqual(got, 3.5) {
		t.Errorf("Expected SMA 3.5, got %f", got)
	}
	if got := SMA([]float64{1, 2}, 5); !math.IsNaN(got) {
		t.Errorf("Expected NaN for short series, got %f", got)
	}
}

func TestEMAConstantSeries(t *testing.T) {
	vals := []float64{100, 100, 100, 100, 100}
	if got := EMA(vals, 3); !almostEqual(got, 100) {
		t.Errorf("Expected EMA of constant series to be 100, got %f", got)
	}
}

func TestEMATracksTrend(t *testing.T) {
	up := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}
	fast := EMA(up, 3)
	slow := EMA(up, 8)
	if fast <= slow {
		t.Errorf("Expected fast EMA above slow EMA on rising series, got fast=%f slow=%f", fast, slow)
	}
}

func TestRSIExtremes(t *testing.T) {
	var rising []float64
	for i := 0; i < 20; i++ {
		rising = append(rising, float64(100+i))
	}
	if got := RSI(rising, 14); !almostEqual(got, 100) {
		t.Errorf("Expected RSI 100 on all gains, got %f", got)
	}

	// One gain and one loss of equal size averages to 50.
	if got := RSI([]float64{10, 11, 10}, 2); !almostEqual(got, 50) {
		t.Errorf("Expected RSI 50 on balanced moves, got %f", got)
	}
}

func TestBollingerConstantSeries(t *testing.T) {
	vals := make([]float64, 25)
	for i := range vals {
		vals[i] = 50
	}
	mid, up, low := Bollinger(vals, 20, 2)
	if !almostEqual(mid, 50) || !almostEqual(up, 50) || !almostEqual(low, 50) {
		t.Errorf("Expected collapsed bands at 50, got mid=%f up=%f low=%f", mid, up, low)
	}
}

func TestMACDConstantSeries(t *testing.T) {
	vals := make([]float64, 40)
	for i := range vals {
		vals[i] = 200
	}
	line, sig, hist, _, _ := MACD(vals, 12, 26, 9)
	if !almostEqual(line, 0) || !almostEqual(sig, 0) || !almostEqual(hist, 0) {
		t.Errorf("Expected zero MACD on constant series, got line=%f sig=%f hist=%f", line, sig, hist)
	}
}

func TestATRFixedRange(t *testing.T) {
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 12
		lows[i] = 10
		closes[i] = 11
	}
	if got := ATR(highs, lows, closes, 14); !almostEqual(got, 2) {
		t.Errorf("Expected ATR 2 for fixed 2-point ranges, got %f", got)
	}
}

func TestSwingPointsExcludesLastBar(t *testing.T) {
	highs := []float64{1, 5, 3, 10}
	lows := []float64{0.5, 2, 1, 9}
	hi, lo := SwingPoints(highs, lows, 10)
	if !almostEqual(hi, 5) {
		t.Errorf("Expected swing high 5 (last bar excluded), got %f", hi)
	}
	if !almostEqual(lo, 0.5) {
		t.Errorf("Expected swing low 0.5, got %f", lo)
	}
}

func TestSuperTrendFlipsBullishOnRally(t *testing.T) {
	var highs, lows, closes []float64
	for i := 0; i < 15; i++ {
		c := 100 + float64(i)*4
		closes = append(closes, c)
		highs = append(highs, c+1)
		lows = append(lows, c-1)
	}
	st, dir := SuperTrend(highs, lows, closes, 3, 3)

	last := len(closes) - 1
	if dir[last] != 1 {
		t.Fatalf("Expected bullish direction on sustained rally, got %d", dir[last])
	}
	if !(st[last] < closes[last]) {
		t.Errorf("Expected band below price in bullish state, band=%f close=%f", st[last], closes[last])
	}
}

func TestPivotPoints(t *testing.T) {
	pl := PivotPoints(110, 90, 100)
	if !almostEqual(pl.P, 100) {
		t.Errorf("Expected pivot 100, got %f", pl.P)
	}
	if !almostEqual(pl.R1, 110) || !almostEqual(pl.S1, 90) {
		t.Errorf("Expected R1=110 S1=90, got R1=%f S1=%f", pl.R1, pl.S1)
	}
	if !almostEqual(pl.R2, 120) || !almostEqual(pl.S2, 80) {
		t.Errorf("Expected R2=120 S2=80, got R2=%f S2=%f", pl.R2, pl.S2)
	}
}
