package entity

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

func (s OrderSide) Valid() bool {
	return s == OrderSideBuy || s == OrderSideSell
}

// BinanceOrderRequest is a relay order placement. Quantity and Price keep the
// caller's JSON type: numbers are aligned to the symbol filters, strings are
// sent to the exchange untouched.
type BinanceOrderRequest struct {
	Symbol      string     `json:"symbol"`
	Side        OrderSide  `json:"side"`
	Type        string     `json:"type"`
	Quantity    OrderValue `json:"quantity"`
	Price       OrderValue `json:"price"`
	TimeInForce string     `json:"timeInForce,omitempty"`
	RecvWindow  *int64     `json:"recvWindow,omitempty"`
}

type BinanceOrderEvent struct {
	RetryCount int                 `json:"retry"`
	RequestID  string              `json:"request_id"`
	Data       BinanceOrderRequest `json:"data"`
}

type KlinesQuery struct {
	Symbol    string
	Interval  string
	Limit     *int64
	StartTime *int64
	EndTime   *int64
}

type orderValueKind uint8

const (
	orderValueAbsent orderValueKind = iota
	orderValueNumeric
	orderValueText
)

// OrderValue holds an optional quantity or price that is either numeric or
// pre-formatted text. The zero value is absent.
type OrderValue struct {
	kind   orderValueKind
	number decimal.Decimal
	text   string
}

func NumericOrderValue(d decimal.Decimal) OrderValue {
	return OrderValue{kind: orderValueNumeric, number: d}
}

func TextOrderValue(s string) OrderValue {
	return OrderValue{kind: orderValueText, text: s}
}

func (v OrderValue) IsAbsent() bool {
	return v.kind == orderValueAbsent
}

func (v OrderValue) IsNumeric() bool {
	return v.kind == orderValueNumeric
}

func (v OrderValue) Decimal() decimal.Decimal {
	return v.number
}

func (v OrderValue) String() string {
	switch v.kind {
	case orderValueNumeric:
		return v.number.String()
	case orderValueText:
		return v.text
	default:
		return ""
	}
}

func (v *OrderValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = OrderValue{}
		return nil
	}

	if trimmed[0] == '"' {
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return err
		}
		*v = TextOrderValue(text)
		return nil
	}

	number, err := decimal.NewFromString(string(trimmed))
	if err != nil {
		return fmt.Errorf("order value must be a number or a string: %s", strings.TrimSpace(string(trimmed)))
	}
	*v = NumericOrderValue(number)
	return nil
}

func (v OrderValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case orderValueNumeric:
		return []byte(v.number.String()), nil
	case orderValueText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// ResponseEnvelope carries the exchange's HTTP status and JSON body. A non-2xx
// status is not an error; callers inspect StatusCode.
type ResponseEnvelope struct {
	StatusCode int             `json:"status"`
	Data       json.RawMessage `json:"data"`
}

func (e *ResponseEnvelope) IsSuccess() bool {
	return e != nil && e.StatusCode >= 200 && e.StatusCode < 300
}

func (e *ResponseEnvelope) Decode(v any) error {
	return json.Unmarshal(e.Data, v)
}

type BinanceExchangeInfo struct {
	Timezone   string              `json:"timezone"`
	ServerTime int64               `json:"serverTime"`
	Symbols    []BinanceSymbolInfo `json:"symbols"`
}

type BinanceSymbolInfo struct {
	Symbol     string                `json:"symbol"`
	Status     string                `json:"status"`
	BaseAsset  string                `json:"baseAsset"`
	QuoteAsset string                `json:"quoteAsset"`
	Filters    []BinanceSymbolFilter `json:"filters"`
}

type BinanceSymbolFilter struct {
	FilterType string `json:"filterType"`
	MinPrice   string `json:"minPrice"`
	MaxPrice   string `json:"maxPrice"`
	TickSize   string `json:"tickSize"`
	MinQty     string `json:"minQty"`
	MaxQty     string `json:"maxQty"`
	StepSize   string `json:"stepSize"`
}

type BinanceServerTime struct {
	ServerTime *int64 `json:"serverTime"`
}
