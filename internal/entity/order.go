package entity

import (
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"
)

type Order struct {
	ID             int64               `db:"id" json:"id"`
	Symbol         string              `db:"symbol" json:"symbol"`
	Price          decimal.NullDecimal `db:"price" json:"price"`
	Qty            decimal.NullDecimal `db:"qty" json:"qty"`
	QuoteOrderQty  decimal.NullDecimal `db:"quote_order_qty" json:"quoteOrderQty"`
	Action         null.String         `db:"action" json:"action"`
	TraderNo       null.String         `db:"trader_no" json:"traderNo"`
	Strategy       null.String         `db:"strategy" json:"strategy"`
	CreatedAt      time.Time           `db:"created_at" json:"createdAt"`
	TerminateTime  null.Time           `db:"terminate_time" json:"terminateTime"`
	TerminatePrice decimal.NullDecimal `db:"terminate_price" json:"terminatePrice"`
}

func (o Order) TableName() string {
	return "orders"
}

type OrderCreatedEvent struct {
	EventID string `json:"event_id"`
	Data    Order  `json:"data"`
}
