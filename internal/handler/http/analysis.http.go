package http

import (
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/guregu/null/v6"
	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/shopspring/decimal"
)

type CreateAnalysisRequest struct {
	Symbol          null.String         `json:"symbol"`
	Strategy        null.String         `json:"strategy"`
	Timeframe       null.String         `json:"timeframe"`
	Metrics         json.RawMessage     `json:"metrics"`
	AnalysisTime    null.String         `json:"analysisTime"`
	RsiStatus       null.String         `json:"rsiStatus"`
	RsiValue        decimal.NullDecimal `json:"rsiValue"`
	MacdStatus      null.String         `json:"macdStatus"`
	MacdValue       decimal.NullDecimal `json:"macdValue"`
	MacdSignalValue decimal.NullDecimal `json:"macdSignalValue"`
	KdStatus        null.String         `json:"kdStatus"`
	KValue          decimal.NullDecimal `json:"kValue"`
	DValue          decimal.NullDecimal `json:"dValue"`

	// older publishers send the KD pair under these names
	KdKValue decimal.NullDecimal `json:"kdKValue"`
	KdDValue decimal.NullDecimal `json:"kdDValue"`
}

func (r CreateAnalysisRequest) toEntity() *entity.IndicatorAnalysisRecord {
	kValue := r.KValue
	if !kValue.Valid {
		kValue = r.KdKValue
	}
	dValue := r.DValue
	if !dValue.Valid {
		dValue = r.KdDValue
	}

	return &entity.IndicatorAnalysisRecord{
		Symbol:          r.Symbol,
		Strategy:        r.Strategy,
		Timeframe:       r.Timeframe,
		Metrics:         r.Metrics,
		AnalysisTime:    r.AnalysisTime,
		RsiStatus:       r.RsiStatus,
		RsiValue:        r.RsiValue,
		MacdStatus:      r.MacdStatus,
		MacdValue:       r.MacdValue,
		MacdSignalValue: r.MacdSignalValue,
		KdStatus:        r.KdStatus,
		KValue:          kValue,
		DValue:          dValue,
	}
}

func (h *Handler) GetAnalysisRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.analysisService.GetAll(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) GetAnalysisRecordByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	record, err := h.analysisService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) CreateAnalysisRecord(w http.ResponseWriter, r *http.Request) {
	var req CreateAnalysisRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	record, err := h.analysisService.Create(r.Context(), req.toEntity(), idempotencyKey(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}
