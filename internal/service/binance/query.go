package binance

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/shopspring/decimal"
)

type Param struct {
	Name  string
	Value any
}

// Params keeps insertion order, which is also the signing order.
type Params []Param

func (p Params) Add(name string, value any) Params {
	return append(p, Param{Name: name, Value: value})
}

// EncodeQuery joins the present params as name=value pairs with '&'. Absent
// values (nil, nil pointers, absent OrderValue) are skipped.
func EncodeQuery(params Params) string {
	pairs := make([]string, 0, len(params))
	for _, p := range params {
		value, ok := paramString(p.Value)
		if !ok {
			continue
		}
		pairs = append(pairs, encodeURIComponent(p.Name)+"="+encodeURIComponent(value))
	}
	return strings.Join(pairs, "&")
}

var uriComponentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent leaves A-Z a-z 0-9 - _ . ! ~ * ' ( ) unescaped and
// percent-encodes everything else, spaces included.
func encodeURIComponent(s string) string {
	return uriComponentReplacer.Replace(url.QueryEscape(s))
}

func paramString(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int32:
		return strconv.FormatInt(int64(v), 10), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint:
		return strconv.FormatUint(uint64(v), 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case decimal.Decimal:
		return v.String(), true
	case entity.OrderSide:
		return string(v), true
	case entity.OrderValue:
		if v.IsAbsent() {
			return "", false
		}
		return v.String(), true
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		return paramString(rv.Elem().Interface())
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return "", false
	}
	return string(raw), true
}
