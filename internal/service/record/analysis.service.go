package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/krobus00/stocknotifier-service/internal/constant"
	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/krobus00/stocknotifier-service/internal/repository"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

type AnalysisService struct {
	analysisRepo *repository.AnalysisRepository
	requestLock  *repository.RequestLockRepository
	js           nats.JetStreamContext
}

func NewAnalysisService(analysisRepo *repository.AnalysisRepository, requestLock *repository.RequestLockRepository, js nats.JetStreamContext) *AnalysisService {
	return &AnalysisService{
		analysisRepo: analysisRepo,
		requestLock:  requestLock,
		js:           js,
	}
}

func (s *AnalysisService) JetstreamEventInit(ctx context.Context) error {
	return initRecordStream(ctx, s.js)
}

func (s *AnalysisService) Create(ctx context.Context, record *entity.IndicatorAnalysisRecord, idempotencyKey string) (*entity.IndicatorAnalysisRecord, error) {
	if len(record.Metrics) > 0 {
		if string(record.Metrics) == "null" {
			record.Metrics = nil
		} else if !json.Valid(record.Metrics) {
			return nil, fmt.Errorf("%w: metrics must be valid json", ErrInvalidPayload)
		}
	}

	release, err := claimRequest(ctx, s.requestLock, "analysis", strings.TrimSpace(idempotencyKey))
	if err != nil {
		if errors.Is(err, ErrDuplicateRequest) {
			logrus.WithField("idempotency_key", idempotencyKey).Warn("duplicate analysis request")
			return nil, err
		}
		logrus.Error(err)
		return nil, ErrRequestLockFailed
	}

	err = s.analysisRepo.Create(ctx, record)
	if err != nil {
		release()
		logrus.WithField("symbol", record.Symbol.String).Error(err)
		return nil, ErrCreateRecordFailed
	}

	publishCreated(s.js, constant.RecordStreamSubjectAnalysisCreated, func(eventID string) any {
		return entity.AnalysisCreatedEvent{EventID: eventID, Data: *record}
	})

	return record, nil
}

func (s *AnalysisService) GetAll(ctx context.Context, symbol string) ([]entity.IndicatorAnalysisRecord, error) {
	records, err := s.analysisRepo.GetAll(ctx, symbol)
	if err != nil {
		logrus.Error(err)
		return nil, ErrFetchRecordFailed
	}
	return records, nil
}

func (s *AnalysisService) GetByID(ctx context.Context, id int64) (*entity.IndicatorAnalysisRecord, error) {
	record, err := s.analysisRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAnalysisNotFound
		}
		logrus.Error(err)
		return nil, ErrFetchRecordFailed
	}
	return record, nil
}
