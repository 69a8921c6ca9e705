package constant

const (
	BinanceOrderQueueName  = "binance_order_queue"
	BinanceOrderQueueGroup = "binance_order_group"

	BinanceOrderStreamName              = "binance_order"
	BinanceOrderStreamSubjectAll        = "binance_order.*"
	BinanceOrderStreamSubjectPlaceOrder = "binance_order.place_order"

	RecordStreamName                   = "stocknotifier_record"
	RecordStreamSubjectAll             = "stocknotifier_record.*"
	RecordStreamSubjectOrderCreated    = "stocknotifier_record.order_created"
	RecordStreamSubjectAnalysisCreated = "stocknotifier_record.analysis_created"
)
