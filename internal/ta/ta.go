package ta

import "math"

func SMA(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n)
}

// EMASeries returns the full exponential moving average series seeded from
// the first value (span semantics, alpha = 2/(n+1)).
func EMASeries(vals []float64, n int) []float64 {
	if len(vals) == 0 || n <= 0 {
		return nil
	}
	alpha := 2.0 / (float64(n) + 1.0)
	out := make([]float64, len(vals))
	out[0] = vals[0]
	for i := 1; i < len(vals); i++ {
		out[i] = alpha*vals[i] + (1-alpha)*out[i-1]
	}
	return out
}

func EMA(vals []float64, n int) float64 {
	s := EMASeries(vals, n)
	if s == nil {
		return math.NaN()
	}
	return s[len(s)-1]
}

func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return 100.0 - (100.0 / (1.0 + rs))
}

func StdDev(vals []float64, n int) float64 {
	if len(vals) < n || n <= 0 {
		return math.NaN()
	}
	m := SMA(vals, n)
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n))
}

func Bollinger(closes []float64, n int, k float64) (mid, up, low float64) {
	mid = SMA(closes, n)
	sd := StdDev(closes, n)
	up = mid + k*sd
	low = mid - k*sd
	return
}

// MACD returns the MACD line, signal line and histogram for the last bar,
// plus the prior bar's line and signal for crossover detection.
func MACD(closes []float64, fast, slow, signal int) (line, sig, hist, prevLine, prevSig float64) {
	if len(closes) < slow+signal {
		nan := math.NaN()
		return nan, nan, nan, nan, nan
	}
	emaFast := EMASeries(closes, fast)
	emaSlow := EMASeries(closes, slow)
	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = emaFast[i] - emaSlow[i]
	}
	sigSeries := EMASeries(macd, signal)
	n := len(closes)
	line, sig = macd[n-1], sigSeries[n-1]
	hist = line - sig
	prevLine, prevSig = macd[n-2], sigSeries[n-2]
	return
}

func trueRanges(highs, lows, closes []float64) []float64 {
	trs := make([]float64, len(closes))
	for i := range closes {
		if i == 0 {
			trs[i] = highs[i] - lows[i]
			continue
		}
		tr := highs[i] - lows[i]
		tr = math.Max(tr, math.Abs(highs[i]-closes[i-1]))
		tr = math.Max(tr, math.Abs(lows[i]-closes[i-1]))
		trs[i] = tr
	}
	return trs
}

func ATR(highs, lows, closes []float64, period int) float64 {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return math.NaN()
	}
	if len(closes) < period+1 {
		return math.NaN()
	}
	trs := trueRanges(highs, lows, closes)
	return SMA(trs, period)
}

// SwingPoints returns the highest high and lowest low of the trailing
// lookback window, excluding the current (last) bar so a breakout close
// can be compared against the prior structure.
func SwingPoints(highs, lows []float64, lookback int) (hi, lo float64) {
	if len(highs) < 2 || len(highs) != len(lows) {
		return math.NaN(), math.NaN()
	}
	end := len(highs) - 1
	start := end - lookback
	if start < 0 {
		start = 0
	}
	hi, lo = highs[start], lows[start]
	for i := start + 1; i < end; i++ {
		hi = math.Max(hi, highs[i])
		lo = math.Min(lo, lows[i])
	}
	return hi, lo
}

// SuperTrend computes the SuperTrend band and its direction series.
// Direction is +1 while the band rides below price (bullish) and -1 while
// it rides above. Entries before the warm-up period are NaN / 0.
func SuperTrend(highs, lows, closes []float64, period int, mult float64) (st []float64, dir []int) {
	n := len(closes)
	st = make([]float64, n)
	dir = make([]int, n)
	if n <= period+1 || len(highs) != n || len(lows) != n {
		for i := range st {
			st[i] = math.NaN()
		}
		return st, dir
	}

	trs := trueRanges(highs, lows, closes)
	upper := make([]float64, n)
	lower := make([]float64, n)
	for i := 0; i < n; i++ {
		if i < period {
			upper[i] = math.NaN()
			lower[i] = math.NaN()
			st[i] = math.NaN()
			continue
		}
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += trs[j]
		}
		atr := sum / float64(period)
		hl2 := (highs[i] + lows[i]) / 2
		upper[i] = hl2 + mult*atr
		lower[i] = hl2 - mult*atr
	}

	st[period] = upper[period]
	dir[period] = -1

	for i := period + 1; i < n; i++ {
		finalLower := lower[i]
		if !(lower[i] > lower[i-1] || closes[i-1] < lower[i-1]) {
			finalLower = lower[i-1]
			lower[i] = lower[i-1]
		}
		finalUpper := upper[i]
		if !(upper[i] < upper[i-1] || closes[i-1] > upper[i-1]) {
			finalUpper = upper[i-1]
			upper[i] = upper[i-1]
		}

		if dir[i-1] == -1 {
			if closes[i] > finalUpper {
				st[i] = finalLower
				dir[i] = 1
			} else {
				st[i] = finalUpper
				dir[i] = -1
			}
		} else {
			if closes[i] < finalLower {
				st[i] = finalUpper
				dir[i] = -1
			} else {
				st[i] = finalLower
				dir[i] = 1
			}
		}
	}
	return st, dir
}

// PivotLevels are classic floor-trader pivots built from the prior
// session's OHLC.
type PivotLevels struct {
	P, R1, R2, R3, S1, S2, S3 float64
}

func PivotPoints(prevHigh, prevLow, prevClose float64) PivotLevels {
	p := (prevHigh + prevLow + prevClose) / 3
	return PivotLevels{
		P:  p,
		R1: 2*p - prevLow,
		R2: p + (prevHigh - prevLow),
		R3: prevHigh + 2*(p-prevLow),
		S1: 2*p - prevHigh,
		S2: p - (prevHigh - prevLow),
		S3: prevLow - 2*(prevHigh-p),
	}
}
