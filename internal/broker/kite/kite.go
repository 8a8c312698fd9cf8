// Package kite is the primary market-data and order channel, backed by
// the Zerodha Kite Connect REST API. DRY_RUN mode keeps the full request
// path but simulates fills and, with no credentials, candles too.
package kite

import (
	"context"
	"errors"
	"fmt"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"swing-trader/internal/logger"
	"swing-trader/internal/types"
)

type Params struct {
	Mode        string // DRY_RUN or LIVE
	APIKey      string
	AccessToken string
	Exchange    string
}

type Kite struct {
	p      Params
	client *kiteconnect.Client
	mapper *instrumentMapper
}

func New(p Params) *Kite {
	k := &Kite{p: p, mapper: newInstrumentMapper()}
	if p.APIKey != "" {
		k.client = kiteconnect.New(p.APIKey)
		k.client.SetAccessToken(p.AccessToken)
	}
	return k
}

// RegisterInstruments seeds the symbol to instrument-token map from
// configuration.
func (k *Kite) RegisterInstruments(tokens map[string]uint32) {
	for sym, tok := range tokens {
		k.mapper.addMapping(sym, tok)
	}
}

// DailyCandles returns the last `days` daily bars for a symbol, oldest
// first.
func (k *Kite) DailyCandles(ctx context.Context, symbol string, days int) ([]types.Candle, error) {
	if k.client == nil {
		return simCandles(symbol, days), nil
	}

	token, ok := k.mapper.getToken(symbol)
	if !ok {
		return nil, fmt.Errorf("no instrument token for %s", symbol)
	}

	to := time.Now()
	// Pad the window so weekends and holidays still yield enough bars.
	from := to.AddDate(0, 0, -(days*3/2 + 10))
	data, err := k.client.GetHistoricalData(int(token), "day", from, to, false, false)
	if err != nil {
		return nil, fmt.Errorf("historical data %s: %w", symbol, err)
	}

	out := make([]types.Candle, 0, len(data))
	for _, d := range data {
		out = append(out, types.Candle{
			Ts:    d.Date.Unix(),
			Open:  d.Open,
			High:  d.High,
			Low:   d.Low,
			Close: d.Close,
			Vol:   float64(d.Volume),
		})
	}
	if len(out) > days {
		out = out[len(out)-days:]
	}
	return out, nil
}

func (k *Kite) LTP(ctx context.Context, symbol string) (float64, error) {
	if k.client == nil {
		cs := simCandles(symbol, 1)
		return cs[len(cs)-1].Close, nil
	}

	key := k.p.Exchange + ":" + symbol
	quotes, err := k.client.GetLTP(key)
	if err != nil {
		return 0, fmt.Errorf("ltp %s: %w", symbol, err)
	}
	q, ok := quotes[key]
	if !ok {
		return 0, fmt.Errorf("ltp %s: no quote returned", symbol)
	}
	return q.LastPrice, nil
}

func (k *Kite) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	if k.p.Mode == "DRY_RUN" {
		logger.Info(ctx, "simulated order",
			"symbol", req.Symbol, "side", req.Side, "qty", req.Qty, "price", req.Price)
		return types.OrderResp{
			OrderID: fmt.Sprintf("SIM-%d", time.Now().UnixNano()),
			Status:  "SIMULATED",
			Message: "dry-run",
		}, nil
	}

	if k.client == nil {
		return types.OrderResp{}, errors.New("missing API key/access token")
	}

	txnType := kiteconnect.TransactionTypeBuy
	if req.Side == types.Sell {
		txnType = kiteconnect.TransactionTypeSell
	}
	resp, err := k.client.PlaceOrder(kiteconnect.VarietyRegular, kiteconnect.OrderParams{
		Exchange:        k.p.Exchange,
		Tradingsymbol:   req.Symbol,
		Product:         kiteconnect.ProductCNC,
		OrderType:       kiteconnect.OrderTypeLimit,
		TransactionType: txnType,
		Quantity:        req.Qty,
		Price:           req.Price,
		Validity:        kiteconnect.ValidityDay,
		Tag:             req.Tag,
	})
	if err != nil {
		return types.OrderResp{}, fmt.Errorf("place order %s: %w", req.Symbol, err)
	}
	return types.OrderResp{OrderID: resp.OrderID, Status: "PLACED", Message: "ok"}, nil
}
