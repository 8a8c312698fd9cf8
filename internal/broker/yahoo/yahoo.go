// Package yahoo is the fallback market-data provider, reading the public
// Yahoo Finance chart API. NSE symbols map to their ".NS" listing;
// indices use their caret tickers.
package yahoo

import (
	"context"
	"fmt"
	"time"

	"swing-trader/internal/api"
	"swing-trader/internal/types"
)

const chartURL = "https://query1.finance.yahoo.com/v8/finance/chart/%s?range=%dd&interval=1d"

type Client struct {
	api *api.Client

	// tickers overrides the default ".NS" suffix per symbol (indices).
	tickers map[string]string
}

func New(tickers map[string]string) *Client {
	return &Client{
		api:     api.NewClient(api.WithTimeout(15*time.Second), api.WithLogging(true)),
		tickers: tickers,
	}
}

func (c *Client) ticker(symbol string) string {
	if t, ok := c.tickers[symbol]; ok {
		return t
	}
	return symbol + ".NS"
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func (c *Client) fetch(ctx context.Context, symbol string, days int) (*chartResponse, error) {
	url := fmt.Sprintf(chartURL, c.ticker(symbol), days)
	resp, err := c.api.GETWithRetry(ctx, url, nil, api.YahooFinanceHeaders())
	if err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	var cr chartResponse
	if err := resp.ParseJSON(&cr); err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if cr.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart %s: %s", symbol, cr.Chart.Error.Description)
	}
	if len(cr.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: empty result", symbol)
	}
	return &cr, nil
}

func (c *Client) DailyCandles(ctx context.Context, symbol string, days int) ([]types.Candle, error) {
	cr, err := c.fetch(ctx, symbol, days+10)
	if err != nil {
		return nil, err
	}

	res := cr.Chart.Result[0]
	if len(res.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo chart %s: no quote block", symbol)
	}
	q := res.Indicators.Quote[0]

	out := make([]types.Candle, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(q.Close) || q.Close[i] == 0 {
			continue
		}
		out = append(out, types.Candle{
			Ts:    ts,
			Open:  q.Open[i],
			High:  q.High[i],
			Low:   q.Low[i],
			Close: q.Close[i],
			Vol:   q.Volume[i],
		})
	}
	if len(out) > days {
		out = out[len(out)-days:]
	}
	return out, nil
}

func (c *Client) LTP(ctx context.Context, symbol string) (float64, error) {
	cr, err := c.fetch(ctx, symbol, 1)
	if err != nil {
		return 0, err
	}
	price := cr.Chart.Result[0].Meta.RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("yahoo %s: no market price", symbol)
	}
	return price, nil
}
