package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/krobus00/stocknotifier-service/internal/constant"
	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/shopspring/decimal"
)

// ExchangeInfoCache keeps validated exchangeInfo responses per symbol for the
// lifetime of the owning client. Entries are never invalidated.
type ExchangeInfoCache struct {
	fetch func(ctx context.Context, symbol string) (*entity.ResponseEnvelope, error)

	mu      sync.RWMutex
	entries map[string]*entity.BinanceExchangeInfo
}

func NewExchangeInfoCache(fetch func(ctx context.Context, symbol string) (*entity.ResponseEnvelope, error)) *ExchangeInfoCache {
	return &ExchangeInfoCache{
		fetch:   fetch,
		entries: make(map[string]*entity.BinanceExchangeInfo),
	}
}

func (c *ExchangeInfoCache) GetTickSize(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return c.filterIncrement(ctx, symbol, constant.BinancePriceFilter, func(f entity.BinanceSymbolFilter) string {
		return f.TickSize
	})
}

func (c *ExchangeInfoCache) GetStepSize(ctx context.Context, symbol string) (decimal.Decimal, error) {
	return c.filterIncrement(ctx, symbol, constant.BinanceLotSizeFilter, func(f entity.BinanceSymbolFilter) string {
		return f.StepSize
	})
}

func (c *ExchangeInfoCache) filterIncrement(ctx context.Context, symbol, filterType string, field func(entity.BinanceSymbolFilter) string) (decimal.Decimal, error) {
	info, err := c.load(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}

	for _, filter := range info.Symbols[0].Filters {
		if filter.FilterType != filterType {
			continue
		}

		raw := strings.TrimSpace(field(filter))
		increment, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %s %s increment %q: %v", ErrMetadataMalformed, symbol, filterType, raw, err)
		}
		if !increment.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: %s %s increment must be positive, got %s", ErrMetadataMalformed, symbol, filterType, raw)
		}

		return increment, nil
	}

	return decimal.Zero, fmt.Errorf("%w: %s for %s", ErrFilterNotFound, filterType, symbol)
}

func (c *ExchangeInfoCache) load(ctx context.Context, symbol string) (*entity.BinanceExchangeInfo, error) {
	c.mu.RLock()
	info, ok := c.entries[symbol]
	c.mu.RUnlock()
	if ok {
		return info, nil
	}

	resp, err := c.fetch(ctx, symbol)
	if err != nil {
		if errors.Is(err, ErrExchangeUnavailable) {
			return nil, err
		}
		return nil, &UnavailableError{Cause: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UnavailableError{StatusCode: resp.StatusCode}
	}

	info = new(entity.BinanceExchangeInfo)
	if err := resp.Decode(info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadataMalformed, err)
	}
	if len(info.Symbols) == 0 {
		return nil, fmt.Errorf("%w: no symbols returned for %s", ErrMetadataMalformed, symbol)
	}
	if len(info.Symbols[0].Filters) == 0 {
		return nil, fmt.Errorf("%w: no filters returned for %s", ErrMetadataMalformed, symbol)
	}

	c.mu.Lock()
	c.entries[symbol] = info
	c.mu.Unlock()

	return info, nil
}
