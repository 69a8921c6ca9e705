package entity

import (
	"time"

	json "github.com/goccy/go-json"
	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

type IndicatorAnalysisRecord struct {
	ID              int64               `db:"id" json:"id"`
	Symbol          null.String         `db:"symbol" json:"symbol"`
	Strategy        null.String         `db:"strategy" json:"strategy"`
	Timeframe       null.String         `db:"timeframe" json:"timeframe"`
	Metrics         json.RawMessage     `db:"metrics" json:"metrics"`
	AnalysisTime    null.String         `db:"analysis_time" json:"analysisTime"`
	RsiStatus       null.String         `db:"rsi_status" json:"rsiStatus"`
	RsiValue        decimal.NullDecimal `db:"rsi_value" json:"rsiValue"`
	MacdStatus      null.String         `db:"macd_status" json:"macdStatus"`
	MacdValue       decimal.NullDecimal `db:"macd_value" json:"macdValue"`
	MacdSignalValue decimal.NullDecimal `db:"macd_signal_value" json:"macdSignalValue"`
	KdStatus        null.String         `db:"kd_status" json:"kdStatus"`
	KValue          decimal.NullDecimal `db:"k_value" json:"kValue"`
	DValue          decimal.NullDecimal `db:"d_value" json:"dValue"`
	CreatedAt       time.Time           `db:"created_at" json:"createdAt"`
}

func (r IndicatorAnalysisRecord) TableName() string {
	return "indicator_analysis_records"
}

type AnalysisCreatedEvent struct {
	EventID string                  `json:"event_id"`
	Data    IndicatorAnalysisRecord `json:"data"`
}
