package binance

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/krobus00/stocknotifier-service/internal/config"
	"github.com/krobus00/stocknotifier-service/internal/constant"
	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Client talks to the Binance spot REST API. Each client owns its own clock
// offset and exchange metadata cache.
type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	recvWindow int64
	httpClient *http.Client
	limiter    *rate.Limiter
	now        func() time.Time

	clock        *ClockSynchronizer
	exchangeInfo *ExchangeInfoCache
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithRecvWindow sets the recvWindow sent when a request carries none. 0 omits it.
func WithRecvWindow(recvWindow int64) Option {
	return func(c *Client) {
		c.recvWindow = recvWindow
	}
}

func NewClient(apiKey, apiSecret, baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = constant.BinanceBaseURL
	}

	c := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		apiSecret:  strings.TrimSpace(apiSecret),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: constant.BinanceDefaultHTTPTimeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.clock = NewClockSynchronizer(c.fetchServerTime, c.now, constant.BinanceClockOffsetTTL)
	c.exchangeInfo = NewExchangeInfoCache(c.GetExchangeInfo)

	return c
}

// NewClientFromConfig builds a trading client. It returns ErrMissingCredentials
// and no client when the api key or secret is blank.
func NewClientFromConfig(cfg config.ExchangeConfig, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, ErrMissingCredentials
	}
	return NewClient(cfg.APIKey, cfg.APISecret, BaseURLFromConfig(cfg), append(optionsFromConfig(cfg), opts...)...), nil
}

// NewPublicClientFromConfig builds a client without credentials for the
// unsigned market data endpoints.
func NewPublicClientFromConfig(cfg config.ExchangeConfig, opts ...Option) *Client {
	return NewClient("", "", BaseURLFromConfig(cfg), append(optionsFromConfig(cfg), opts...)...)
}

func BaseURLFromConfig(cfg config.ExchangeConfig) string {
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		return baseURL
	}
	if cfg.UseTestnet {
		return constant.BinanceTestnetBaseURL
	}
	return constant.BinanceBaseURL
}

func optionsFromConfig(cfg config.ExchangeConfig) []Option {
	opts := []Option{WithRecvWindow(cfg.RecvWindow)}
	if cfg.HTTPTimeout > 0 {
		opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
	}
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		opts = append(opts, WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)))
	}
	return opts
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) hasCredentials() bool {
	return c.apiKey != "" && c.apiSecret != ""
}

// PlaceOrder aligns numeric quantity and price to the symbol's LOT_SIZE and
// PRICE_FILTER increments, signs the order and submits it. Text values are
// sent unchanged.
func (c *Client) PlaceOrder(ctx context.Context, order entity.BinanceOrderRequest) (*entity.ResponseEnvelope, error) {
	if !c.hasCredentials() {
		return nil, ErrMissingCredentials
	}

	c.clock.EnsureFresh(ctx)

	logger := logrus.WithFields(logrus.Fields{
		"symbol": order.Symbol,
		"side":   order.Side,
		"type":   order.Type,
	})

	quantity := order.Quantity
	if quantity.IsNumeric() {
		stepSize, err := c.exchangeInfo.GetStepSize(ctx, order.Symbol)
		if err != nil {
			return nil, err
		}
		quantity = entity.NumericOrderValue(QuantizeDown(quantity.Decimal(), stepSize))
		if quantity.Decimal().IsZero() {
			logger.WithFields(logrus.Fields{
				"quantity":  order.Quantity.String(),
				"step_size": stepSize.String(),
			}).Warn("order quantity is below the step size and quantized to zero")
		}
	}

	price := order.Price
	if price.IsNumeric() {
		tickSize, err := c.exchangeInfo.GetTickSize(ctx, order.Symbol)
		if err != nil {
			return nil, err
		}
		price = entity.NumericOrderValue(QuantizeDown(price.Decimal(), tickSize))
		if price.Decimal().IsZero() {
			logger.WithFields(logrus.Fields{
				"price":     order.Price.String(),
				"tick_size": tickSize.String(),
			}).Warn("order price is below the tick size and quantized to zero")
		}
	}

	params := Params{}.
		Add("symbol", order.Symbol).
		Add("side", string(order.Side)).
		Add("type", order.Type).
		Add("quantity", quantity).
		Add("price", price).
		Add("timeInForce", optionalString(order.TimeInForce)).
		Add("recvWindow", c.resolveRecvWindow(order.RecvWindow)).
		Add("timestamp", c.clock.CurrentAdjustedTime())

	resp, err := c.doSigned(ctx, http.MethodPost, constant.BinanceOrderPath, params)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"quantity":        quantity.String(),
		"price":           price.String(),
		"status":          resp.StatusCode,
		"clock_offset_ms": c.clock.Offset(),
	}).Info("binance order submitted")

	return resp, nil
}

func (c *Client) GetAccount(ctx context.Context, recvWindow *int64) (*entity.ResponseEnvelope, error) {
	if !c.hasCredentials() {
		return nil, ErrMissingCredentials
	}

	c.clock.EnsureFresh(ctx)

	params := Params{}.
		Add("recvWindow", c.resolveRecvWindow(recvWindow)).
		Add("timestamp", c.clock.CurrentAdjustedTime())

	return c.doSigned(ctx, http.MethodGet, constant.BinanceAccountPath, params)
}

func (c *Client) GetKlines(ctx context.Context, query entity.KlinesQuery) (*entity.ResponseEnvelope, error) {
	params := Params{}.
		Add("symbol", query.Symbol).
		Add("interval", query.Interval).
		Add("limit", query.Limit).
		Add("startTime", query.StartTime).
		Add("endTime", query.EndTime)

	return c.do(ctx, http.MethodGet, constant.BinanceKlinesPath, EncodeQuery(params), "", false)
}

// GetExchangeInfo returns trading rules for symbol, or for every symbol when
// symbol is empty.
func (c *Client) GetExchangeInfo(ctx context.Context, symbol string) (*entity.ResponseEnvelope, error) {
	params := Params{}.Add("symbol", optionalString(symbol))
	return c.do(ctx, http.MethodGet, constant.BinanceExchangeInfoPath, EncodeQuery(params), "", false)
}

func (c *Client) GetServerTime(ctx context.Context) (*entity.ResponseEnvelope, error) {
	return c.do(ctx, http.MethodGet, constant.BinanceServerTimePath, "", "", false)
}

func (c *Client) fetchServerTime(ctx context.Context) (int64, error) {
	resp, err := c.GetServerTime(ctx)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, &UnavailableError{StatusCode: resp.StatusCode}
	}

	var serverTime entity.BinanceServerTime
	if err := resp.Decode(&serverTime); err != nil {
		return 0, err
	}
	if serverTime.ServerTime == nil {
		return 0, ErrMetadataMalformed
	}

	return *serverTime.ServerTime, nil
}

func (c *Client) resolveRecvWindow(recvWindow *int64) *int64 {
	if recvWindow != nil {
		return recvWindow
	}
	if c.recvWindow > 0 {
		return &c.recvWindow
	}
	return nil
}

func (c *Client) doSigned(ctx context.Context, method, path string, params Params) (*entity.ResponseEnvelope, error) {
	payload := EncodeQuery(params)
	signed := payload + "&signature=" + Sign(c.apiSecret, payload)

	var (
		resp *entity.ResponseEnvelope
		err  error
	)
	if method == http.MethodPost {
		resp, err = c.do(ctx, method, path, "", signed, true)
	} else {
		resp, err = c.do(ctx, method, path, signed, "", true)
	}

	var unavailable *UnavailableError
	if errors.As(err, &unavailable) {
		unavailable.Submitted = true
	}
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path, query, body string, withAPIKey bool) (*entity.ResponseEnvelope, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	endpoint := c.baseURL + path
	if query != "" {
		endpoint += "?" + query
	}

	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	if withAPIKey {
		req.Header.Set(constant.BinanceAPIKeyHeader, c.apiKey)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UnavailableError{Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UnavailableError{StatusCode: resp.StatusCode, Cause: err}
	}

	return newResponseEnvelope(resp.StatusCode, raw), nil
}

// newResponseEnvelope wraps the body as-is when it is valid JSON and
// substitutes a synthetic error object otherwise.
func newResponseEnvelope(statusCode int, body []byte) *entity.ResponseEnvelope {
	if len(body) > 0 && json.Valid(body) {
		return &entity.ResponseEnvelope{StatusCode: statusCode, Data: body}
	}

	data, _ := json.Marshal(struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}{
		Error:  "Invalid JSON response",
		Status: statusCode,
	})

	return &entity.ResponseEnvelope{StatusCode: statusCode, Data: data}
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
