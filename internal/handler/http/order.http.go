package http

import (
	"net/http"

	"github.com/guregu/null/v6"
	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	Symbol        string              `json:"symbol"`
	Price         decimal.NullDecimal `json:"price"`
	Qty           decimal.NullDecimal `json:"qty"`
	QuoteOrderQty decimal.NullDecimal `json:"quoteOrderQty"`
	Action        null.String         `json:"action"`
	TraderNo      null.String         `json:"traderNo"`
	Strategy      null.String         `json:"strategy"`
}

func (r CreateOrderRequest) toEntity() *entity.Order {
	return &entity.Order{
		Symbol:        r.Symbol,
		Price:         r.Price,
		Qty:           r.Qty,
		QuoteOrderQty: r.QuoteOrderQty,
		Action:        r.Action,
		TraderNo:      r.TraderNo,
		Strategy:      r.Strategy,
	}
}

func (h *Handler) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.GetAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOpenOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.GetOpen(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	order, err := h.orderService.Create(r.Context(), req.toEntity(), idempotencyKey(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}
