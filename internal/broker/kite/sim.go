package kite

import (
	"hash/fnv"
	"math/rand"
	"time"

	"swing-trader/internal/types"
)

// simCandles synthesizes a plausible daily series for credential-less
// dry runs. Seeding from the symbol keeps a run deterministic per symbol.
func simCandles(symbol string, n int) []types.Candle {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	base := 500 + rng.Float64()*2500
	now := time.Now().Unix()
	const day = int64(24 * 60 * 60)

	cs := make([]types.Candle, 0, n)
	price := base
	for i := n; i > 0; i-- {
		drift := (rng.Float64() - 0.48) * price * 0.02
		open := price
		close := price + drift
		high := close + rng.Float64()*price*0.01
		low := open - rng.Float64()*price*0.01
		if open > high {
			high = open
		}
		if close < low {
			low = close
		}
		cs = append(cs, types.Candle{
			Ts:    now - int64(i)*day,
			Open:  open,
			High:  high,
			Low:   low,
			Close: close,
			Vol:   100000 + rng.Float64()*900000,
		})
		price = close
	}
	return cs
}
