package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/krobus00/stocknotifier-service/internal/entity"
)

// writeEnvelope relays the exchange response as received, status included.
func writeEnvelope(w http.ResponseWriter, envelope *entity.ResponseEnvelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(envelope.StatusCode)
	_, _ = w.Write(envelope.Data)
}

func optionalInt64Query(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &value, nil
}

func (h *Handler) PlaceBinanceOrder(w http.ResponseWriter, r *http.Request) {
	var req entity.BinanceOrderRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	envelope, err := h.tradingService.PlaceOrder(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, envelope)
}

func (h *Handler) PlaceBinanceOrderAsync(w http.ResponseWriter, r *http.Request) {
	var req entity.BinanceOrderRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	requestID, err := h.tradingService.PlaceOrderAsync(r.Context(), req, idempotencyKey(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"request_id": requestID,
		"status":     "queued",
	})
}

func (h *Handler) GetBinanceAccount(w http.ResponseWriter, r *http.Request) {
	recvWindow, err := optionalInt64Query(r, "recvWindow")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	envelope, err := h.tradingService.GetAccount(r.Context(), recvWindow)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, envelope)
}

func (h *Handler) GetBinanceKlines(w http.ResponseWriter, r *http.Request) {
	query := entity.KlinesQuery{
		Symbol:   r.URL.Query().Get("symbol"),
		Interval: r.URL.Query().Get("interval"),
	}

	var err error
	for name, target := range map[string]**int64{
		"limit":     &query.Limit,
		"startTime": &query.StartTime,
		"endTime":   &query.EndTime,
	} {
		*target, err = optionalInt64Query(r, name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	envelope, err := h.tradingService.GetKlines(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, envelope)
}

func (h *Handler) GetBinanceExchangeInfo(w http.ResponseWriter, r *http.Request) {
	envelope, err := h.tradingService.GetExchangeInfo(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, envelope)
}

func (h *Handler) GetBinanceServerTime(w http.ResponseWriter, r *http.Request) {
	envelope, err := h.tradingService.GetServerTime(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeEnvelope(w, envelope)
}
