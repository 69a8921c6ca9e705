package constant

// config map keys
const (
	ExchangeBinance = "binance"

	StocknotifierDatabase = "stocknotifier"
	StocknotifierRedis    = "stocknotifier"

	HTTPPort = "http"
	GRPCPort = "grpc"
)
