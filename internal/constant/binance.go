package constant

import "time"

const (
	BinanceBaseURL        = "https://api.binance.com"
	BinanceTestnetBaseURL = "https://testnet.binance.vision"

	BinanceOrderPath        = "/api/v3/order"
	BinanceAccountPath      = "/api/v3/account"
	BinanceKlinesPath       = "/api/v3/klines"
	BinanceExchangeInfoPath = "/api/v3/exchangeInfo"
	BinanceServerTimePath   = "/api/v3/time"

	BinanceAPIKeyHeader = "X-MBX-APIKEY"

	BinancePriceFilter   = "PRICE_FILTER"
	BinanceLotSizeFilter = "LOT_SIZE"

	BinanceClockOffsetTTL     = 5 * time.Minute
	BinanceDefaultHTTPTimeout = 15 * time.Second
)
