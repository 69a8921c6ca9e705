package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/krobus00/stocknotifier-service/internal/infrastructure"
	"github.com/krobus00/stocknotifier-service/internal/service/binance"
	"github.com/krobus00/stocknotifier-service/internal/service/record"
	"github.com/krobus00/stocknotifier-service/internal/service/trading"
)

const (
	idempotencyKeyHeader = "X-Idempotency-Key"
	maxRequestBodyBytes  = 1 << 20
)

type ReadinessCheck func(ctx context.Context) error

type Handler struct {
	orderService     *record.OrderService
	analysisService  *record.AnalysisService
	migrationService *record.MigrationService
	tradingService   *trading.TradingService
	readinessChecks  map[string]ReadinessCheck
}

func NewHTTPHandler(
	orderService *record.OrderService,
	analysisService *record.AnalysisService,
	migrationService *record.MigrationService,
	tradingService *trading.TradingService,
	readinessChecks map[string]ReadinessCheck,
) *Handler {
	return &Handler{
		orderService:     orderService,
		analysisService:  analysisService,
		migrationService: migrationService,
		tradingService:   tradingService,
		readinessChecks:  readinessChecks,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)

	mux.HandleFunc("GET /{$}", h.GetOrders)
	mux.HandleFunc("GET /orders", h.GetOrders)
	mux.HandleFunc("GET /orders/open", h.GetOpenOrders)
	mux.HandleFunc("GET /orders/{id}", h.GetOrderByID)
	mux.HandleFunc("POST /orders", h.CreateOrder)

	mux.HandleFunc("GET /analysis", h.GetAnalysisRecords)
	mux.HandleFunc("GET /analysis/{id}", h.GetAnalysisRecordByID)
	mux.HandleFunc("POST /analysis", h.CreateAnalysisRecord)

	mux.HandleFunc("GET /migrations", h.GetMigrations)

	mux.Handle("POST /binance/order", requireAPIKey(h.PlaceBinanceOrder))
	mux.Handle("POST /binance/order/async", requireAPIKey(h.PlaceBinanceOrderAsync))
	mux.Handle("GET /binance/account", requireAPIKey(h.GetBinanceAccount))
	mux.HandleFunc("GET /binance/klines", h.GetBinanceKlines)
	mux.HandleFunc("GET /binance/exchangeInfo", h.GetBinanceExchangeInfo)
	mux.HandleFunc("GET /binance/time", h.GetBinanceServerTime)
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{"error": message})
}

// writeServiceError maps service and exchange errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, binance.ErrMissingCredentials),
		errors.Is(err, trading.ErrInvalidOrderRequest),
		errors.Is(err, trading.ErrInvalidKlinesQuery),
		errors.Is(err, record.ErrInvalidPayload):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, record.ErrOrderNotFound), errors.Is(err, record.ErrAnalysisNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, record.ErrDuplicateRequest), errors.Is(err, trading.ErrDuplicateRequest):
		writeError(w, http.StatusConflict, "duplicate request")
	case errors.Is(err, binance.ErrFilterNotFound):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, binance.ErrExchangeUnavailable), errors.Is(err, binance.ErrMetadataMalformed):
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, trading.ErrQueueUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		infrastructure.LoggerFromContext(r.Context()).Error(err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}

func idempotencyKey(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
}
