package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/krobus00/stocknotifier-service/internal/constant"
	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/krobus00/stocknotifier-service/internal/repository"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

type OrderService struct {
	orderRepo   *repository.OrderRepository
	requestLock *repository.RequestLockRepository
	js          nats.JetStreamContext
}

// NewOrderService wires the order store. requestLock and js are optional.
func NewOrderService(orderRepo *repository.OrderRepository, requestLock *repository.RequestLockRepository, js nats.JetStreamContext) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		requestLock: requestLock,
		js:          js,
	}
}

func (s *OrderService) JetstreamEventInit(ctx context.Context) error {
	return initRecordStream(ctx, s.js)
}

func (s *OrderService) Create(ctx context.Context, order *entity.Order, idempotencyKey string) (*entity.Order, error) {
	order.Symbol = strings.TrimSpace(order.Symbol)
	if order.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidPayload)
	}

	release, err := claimRequest(ctx, s.requestLock, "orders", strings.TrimSpace(idempotencyKey))
	if err != nil {
		if errors.Is(err, ErrDuplicateRequest) {
			logrus.WithField("idempotency_key", idempotencyKey).Warn("duplicate order request")
			return nil, err
		}
		logrus.Error(err)
		return nil, ErrRequestLockFailed
	}

	err = s.orderRepo.Create(ctx, order)
	if err != nil {
		release()
		logrus.WithField("symbol", order.Symbol).Error(err)
		return nil, ErrCreateRecordFailed
	}

	publishCreated(s.js, constant.RecordStreamSubjectOrderCreated, func(eventID string) any {
		return entity.OrderCreatedEvent{EventID: eventID, Data: *order}
	})

	return order, nil
}

func (s *OrderService) GetAll(ctx context.Context) ([]entity.Order, error) {
	orders, err := s.orderRepo.GetAll(ctx)
	if err != nil {
		logrus.Error(err)
		return nil, ErrFetchRecordFailed
	}
	return orders, nil
}

func (s *OrderService) GetOpen(ctx context.Context) ([]entity.Order, error) {
	orders, err := s.orderRepo.GetOpen(ctx)
	if err != nil {
		logrus.Error(err)
		return nil, ErrFetchRecordFailed
	}
	return orders, nil
}

func (s *OrderService) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		logrus.Error(err)
		return nil, ErrFetchRecordFailed
	}
	return order, nil
}
