package binance

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const btcExchangeInfo = `{
	"timezone": "UTC",
	"serverTime": 1700000000000,
	"symbols": [{
		"symbol": "BTCUSDT",
		"status": "TRADING",
		"baseAsset": "BTC",
		"quoteAsset": "USDT",
		"filters": [
			{"filterType": "PRICE_FILTER", "minPrice": "0.01000000", "maxPrice": "1000000.00000000", "tickSize": "0.01000000"},
			{"filterType": "LOT_SIZE", "minQty": "0.00010000", "maxQty": "9000.00000000", "stepSize": "0.00010000"}
		]
	}]
}`

type fetchStub struct {
	calls int
	resp  *entity.ResponseEnvelope
	err   error
}

func (f *fetchStub) fetch(context.Context, string) (*entity.ResponseEnvelope, error) {
	f.calls++
	return f.resp, f.err
}

func TestExchangeInfoCacheHit(t *testing.T) {
	stub := &fetchStub{resp: &entity.ResponseEnvelope{StatusCode: http.StatusOK, Data: []byte(btcExchangeInfo)}}
	cache := NewExchangeInfoCache(stub.fetch)

	tick, err := cache.GetTickSize(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	require.True(t, tick.Equal(decimal.RequireFromString("0.01")))

	step, err := cache.GetStepSize(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	require.True(t, step.Equal(decimal.RequireFromString("0.0001")))

	_, err = cache.GetTickSize(context.Background(), "BTCUSDT")
	require.NoError(t, err)

	require.Equal(t, 1, stub.calls)
}

func TestExchangeInfoCacheUnavailable(t *testing.T) {
	stub := &fetchStub{resp: &entity.ResponseEnvelope{StatusCode: http.StatusServiceUnavailable, Data: []byte(`{"code":-1,"msg":"busy"}`)}}
	cache := NewExchangeInfoCache(stub.fetch)

	_, err := cache.GetTickSize(context.Background(), "BTCUSDT")
	require.ErrorIs(t, err, ErrExchangeUnavailable)

	var unavailable *UnavailableError
	require.True(t, errors.As(err, &unavailable))
	require.Equal(t, http.StatusServiceUnavailable, unavailable.StatusCode)

	_, err = cache.GetTickSize(context.Background(), "BTCUSDT")
	require.ErrorIs(t, err, ErrExchangeUnavailable)
	require.Equal(t, 2, stub.calls, "failed lookups must not be cached")
}

func TestExchangeInfoCacheTransportFailure(t *testing.T) {
	stub := &fetchStub{err: errors.New("dial tcp: connection refused")}
	cache := NewExchangeInfoCache(stub.fetch)

	_, err := cache.GetStepSize(context.Background(), "BTCUSDT")
	require.ErrorIs(t, err, ErrExchangeUnavailable)
}

func TestExchangeInfoCacheMalformed(t *testing.T) {
	tests := map[string]string{
		"no symbols":     `{"symbols":[]}`,
		"missing field":  `{"timezone":"UTC"}`,
		"no filters":     `{"symbols":[{"symbol":"BTCUSDT","filters":[]}]}`,
		"synthetic body": `{"error":"Invalid JSON response","status":200}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			stub := &fetchStub{resp: &entity.ResponseEnvelope{StatusCode: http.StatusOK, Data: []byte(body)}}
			cache := NewExchangeInfoCache(stub.fetch)

			_, err := cache.GetTickSize(context.Background(), "BTCUSDT")
			require.ErrorIs(t, err, ErrMetadataMalformed)

			_, err = cache.GetTickSize(context.Background(), "BTCUSDT")
			require.ErrorIs(t, err, ErrMetadataMalformed)
			require.Equal(t, 2, stub.calls)
		})
	}
}

func TestExchangeInfoCacheFilterNotFound(t *testing.T) {
	body := `{"symbols":[{"symbol":"BTCUSDT","filters":[{"filterType":"LOT_SIZE","stepSize":"0.001"}]}]}`
	stub := &fetchStub{resp: &entity.ResponseEnvelope{StatusCode: http.StatusOK, Data: []byte(body)}}
	cache := NewExchangeInfoCache(stub.fetch)

	_, err := cache.GetTickSize(context.Background(), "BTCUSDT")
	require.ErrorIs(t, err, ErrFilterNotFound)

	step, err := cache.GetStepSize(context.Background(), "BTCUSDT")
	require.NoError(t, err)
	require.Equal(t, "0.001", step.String())
	require.Equal(t, 1, stub.calls)
}

func TestExchangeInfoCacheInvalidIncrement(t *testing.T) {
	tests := map[string]string{
		"unparsable": `{"symbols":[{"symbol":"BTCUSDT","filters":[{"filterType":"PRICE_FILTER","tickSize":"abc"}]}]}`,
		"zero":       `{"symbols":[{"symbol":"BTCUSDT","filters":[{"filterType":"PRICE_FILTER","tickSize":"0.00000000"}]}]}`,
		"empty":      `{"symbols":[{"symbol":"BTCUSDT","filters":[{"filterType":"PRICE_FILTER"}]}]}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			stub := &fetchStub{resp: &entity.ResponseEnvelope{StatusCode: http.StatusOK, Data: []byte(body)}}
			cache := NewExchangeInfoCache(stub.fetch)

			_, err := cache.GetTickSize(context.Background(), "BTCUSDT")
			require.ErrorIs(t, err, ErrMetadataMalformed)
		})
	}
}
