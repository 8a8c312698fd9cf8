package interfaces

import (
	"context"

	"swing-trader/internal/types"
)

// MarketData supplies daily candles and last traded prices.
type MarketData interface {
	DailyCandles(ctx context.Context, symbol string, days int) ([]types.Candle, error)
	LTP(ctx context.Context, symbol string) (float64, error)
}

// Broker extends market data with order placement. Orders are only sent
// once a ledger-approved, sized trade leaves paper mode.
type Broker interface {
	MarketData
	PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error)
}

// Notifier delivers human-facing alerts. Implementations are best-effort:
// a failed delivery is logged and never blocks a ledger mutation.
type Notifier interface {
	Notify(ctx context.Context, text string)
}
