// Package marketdata composes the primary and fallback data providers
// into one source.
package marketdata

import (
	"context"
	"errors"
	"fmt"

	"swing-trader/internal/interfaces"
	"swing-trader/internal/logger"
	"swing-trader/internal/types"
)

// ErrDataUnavailable means every provider failed for a symbol. Batch
// callers skip the symbol and continue.
var ErrDataUnavailable = errors.New("market data unavailable")

// Source tries the primary provider first and falls back symbol by
// symbol, never run by run: one provider outage must not blind a scan.
type Source struct {
	primary  interfaces.MarketData
	fallback interfaces.MarketData
}

func NewSource(primary, fallback interfaces.MarketData) *Source {
	return &Source{primary: primary, fallback: fallback}
}

func (s *Source) DailyCandles(ctx context.Context, symbol string, days int) ([]types.Candle, error) {
	cs, err := s.primary.DailyCandles(ctx, symbol, days)
	if err == nil && len(cs) > 0 {
		return cs, nil
	}
	if err != nil {
		logger.Warn(ctx, "primary candle fetch failed, trying fallback",
			"symbol", symbol, "error", err.Error())
	}
	if s.fallback == nil {
		return nil, fmt.Errorf("%s: %w", symbol, ErrDataUnavailable)
	}

	cs, ferr := s.fallback.DailyCandles(ctx, symbol, days)
	if ferr != nil || len(cs) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrDataUnavailable)
	}
	return cs, nil
}

func (s *Source) LTP(ctx context.Context, symbol string) (float64, error) {
	price, err := s.primary.LTP(ctx, symbol)
	if err == nil && price > 0 {
		return price, nil
	}
	if err != nil {
		logger.Warn(ctx, "primary LTP failed, trying fallback",
			"symbol", symbol, "error", err.Error())
	}
	if s.fallback == nil {
		return 0, fmt.Errorf("%s: %w", symbol, ErrDataUnavailable)
	}

	price, ferr := s.fallback.LTP(ctx, symbol)
	if ferr != nil || price <= 0 {
		return 0, fmt.Errorf("%s: %w", symbol, ErrDataUnavailable)
	}
	return price, nil
}
