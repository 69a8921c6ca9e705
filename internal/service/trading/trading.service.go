package trading

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	json "github.com/goccy/go-json"
	"github.com/krobus00/stocknotifier-service/internal/config"
	"github.com/krobus00/stocknotifier-service/internal/constant"
	"github.com/krobus00/stocknotifier-service/internal/entity"
	"github.com/krobus00/stocknotifier-service/internal/infrastructure"
	"github.com/krobus00/stocknotifier-service/internal/repository"
	"github.com/krobus00/stocknotifier-service/internal/service/binance"
	"github.com/krobus00/stocknotifier-service/internal/util"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const requestLockTTL = 24 * time.Hour

var (
	ErrInvalidOrderRequest     = errors.New("invalid order request")
	ErrInvalidKlinesQuery      = errors.New("invalid klines query")
	ErrDuplicateRequest        = errors.New("duplicate request")
	ErrQueueUnavailable        = errors.New("order queue is not configured")
	ErrPublishOrderEventFailed = errors.New("failed to publish order event")
)

// TradingService relays requests to Binance. The trading client is nil when
// no credentials are configured; unsigned calls go through the public client.
type TradingService struct {
	tradingClient *binance.Client
	publicClient  *binance.Client
	requestLock   *repository.RequestLockRepository
	js            nats.JetStreamContext
}

func NewTradingService(tradingClient, publicClient *binance.Client, requestLock *repository.RequestLockRepository, js nats.JetStreamContext) *TradingService {
	return &TradingService{
		tradingClient: tradingClient,
		publicClient:  publicClient,
		requestLock:   requestLock,
		js:            js,
	}
}

func (s *TradingService) JetstreamEventInit(ctx context.Context) error {
	if s.js == nil {
		return ErrQueueUnavailable
	}

	return infrastructure.EnsureStream(s.js, &nats.StreamConfig{
		Name:       constant.BinanceOrderStreamName,
		Subjects:   []string{constant.BinanceOrderStreamSubjectAll},
		Retention:  nats.WorkQueuePolicy,
		Storage:    nats.FileStorage,
		MaxAge:     24 * time.Hour,
		Duplicates: 2 * time.Minute,
	}, nats.Context(ctx))
}

func (s *TradingService) JetstreamEventSubscribe(ctx context.Context) error {
	err := s.JetstreamEventInit(ctx)
	if err != nil {
		logrus.Error(err)
		return err
	}

	_, err = s.js.QueueSubscribe(
		constant.BinanceOrderStreamSubjectPlaceOrder,
		constant.BinanceOrderQueueName,
		func(msg *nats.Msg) {
			err := util.ProcessWithTimeout(placeOrderTimeout(), msg, s.handlePlaceOrderEvent)
			if errors.Is(err, util.ErrProcessingTimeout) {
				// the signed order may still be in flight; redelivery could place it twice
				logrus.Errorf("binance order outcome unknown, terminating message: %v", err)
				if err := msg.Term(); err != nil {
					logrus.Errorf("failed to terminate message: %v", err)
				}
				return
			}
			if err != nil {
				logrus.Errorf("error processing message: %v", err)
				return
			}

			err = msg.Ack()
			if err != nil {
				logrus.Errorf("failed to acknowledge message: %v", err)
				return
			}
		},
		nats.ManualAck(),
		nats.Durable(constant.BinanceOrderQueueGroup),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", constant.BinanceOrderStreamSubjectPlaceOrder, err)
	}

	return nil
}

func (s *TradingService) PlaceOrder(ctx context.Context, order entity.BinanceOrderRequest) (*entity.ResponseEnvelope, error) {
	order, err := normalizeOrderRequest(order)
	if err != nil {
		return nil, err
	}
	if s.tradingClient == nil {
		return nil, binance.ErrMissingCredentials
	}

	return s.tradingClient.PlaceOrder(ctx, order)
}

// PlaceOrderAsync queues the order for the worker and returns the request id.
// The idempotency key, when given, doubles as the request id and the JetStream
// message id.
func (s *TradingService) PlaceOrderAsync(ctx context.Context, order entity.BinanceOrderRequest, idempotencyKey string) (string, error) {
	order, err := normalizeOrderRequest(order)
	if err != nil {
		return "", err
	}
	if s.tradingClient == nil {
		return "", binance.ErrMissingCredentials
	}
	if s.js == nil {
		return "", ErrQueueUnavailable
	}

	requestID := strings.TrimSpace(idempotencyKey)
	if requestID != "" && s.requestLock != nil {
		acquired, err := s.requestLock.Acquire(ctx, "binance_order", requestID, requestID, requestLockTTL)
		if err != nil {
			logrus.Error(err)
			return "", ErrPublishOrderEventFailed
		}
		if !acquired {
			return "", ErrDuplicateRequest
		}
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	err = util.PublishEvent(s.js, constant.BinanceOrderStreamSubjectPlaceOrder, requestID, entity.BinanceOrderEvent{
		RequestID: requestID,
		Data:      order,
	}, nats.Context(ctx))
	if err != nil {
		logrus.WithField("request_id", requestID).Error(err)
		if s.requestLock != nil && idempotencyKey != "" {
			_ = s.requestLock.Release(context.WithoutCancel(ctx), "binance_order", requestID, requestID)
		}
		return "", ErrPublishOrderEventFailed
	}

	return requestID, nil
}

func (s *TradingService) GetAccount(ctx context.Context, recvWindow *int64) (*entity.ResponseEnvelope, error) {
	if s.tradingClient == nil {
		return nil, binance.ErrMissingCredentials
	}
	return s.tradingClient.GetAccount(ctx, recvWindow)
}

func (s *TradingService) GetKlines(ctx context.Context, query entity.KlinesQuery) (*entity.ResponseEnvelope, error) {
	query.Symbol = strings.ToUpper(strings.TrimSpace(query.Symbol))
	query.Interval = strings.TrimSpace(query.Interval)
	if query.Symbol == "" || query.Interval == "" {
		return nil, fmt.Errorf("%w: symbol and interval are required", ErrInvalidKlinesQuery)
	}
	return s.publicClient.GetKlines(ctx, query)
}

func (s *TradingService) GetExchangeInfo(ctx context.Context, symbol string) (*entity.ResponseEnvelope, error) {
	return s.publicClient.GetExchangeInfo(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
}

func (s *TradingService) GetServerTime(ctx context.Context) (*entity.ResponseEnvelope, error) {
	return s.publicClient.GetServerTime(ctx)
}

// handlePlaceOrderEvent places one queued order. A nil return acks the
// message: the order was placed, dropped, or re-queued as a retry copy. An
// error leaves it unacked for JetStream to redeliver.
//
// Only failures before the signed POST are retried. Once the order may have
// reached the exchange it is never sent again, because a re-signed copy
// carries a new timestamp and the exchange cannot tell them apart.
func (s *TradingService) handlePlaceOrderEvent(ctx context.Context, msg *nats.Msg) (err error) {
	logger := logrus.WithFields(logrus.Fields{
		"req": string(msg.Data),
	})

	var req *entity.BinanceOrderEvent
	if err := json.Unmarshal(msg.Data, &req); err != nil || req == nil {
		logger.WithError(err).Error("dropping malformed binance order event")
		return nil
	}
	logger = logger.WithField("request_id", req.RequestID)

	defer func() {
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			// the subscriber has given up on this message
			logger.WithError(err).Error("binance order timed out, not retrying")
			return
		}

		req.RetryCount++
		if req.RetryCount >= maxRetries() {
			logger.WithField("retry", req.RetryCount).Error("dropping binance order after max retries")
			err = nil
			return
		}

		pubErr := util.PublishEvent(s.js, constant.BinanceOrderStreamSubjectPlaceOrder,
			fmt.Sprintf("%s-retry-%d", req.RequestID, req.RetryCount), req)
		if pubErr != nil {
			logger.Error(pubErr)
			return
		}
		err = nil
	}()

	resp, err := s.PlaceOrder(ctx, req.Data)
	if err != nil {
		if binance.MaybeSubmitted(err) {
			logger.WithError(err).Error("binance order outcome unknown, dropping without retry")
			return nil
		}
		if !errors.Is(err, binance.ErrExchangeUnavailable) {
			// bad payload, missing credentials or malformed metadata
			logger.WithError(err).Error("binance order rejected locally")
			return nil
		}
		logger.Error(err)
		return err
	}

	logger.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"response": string(resp.Data),
	}).Info("binance order processed")

	return nil
}

func normalizeOrderRequest(order entity.BinanceOrderRequest) (entity.BinanceOrderRequest, error) {
	order.Symbol = strings.ToUpper(strings.TrimSpace(order.Symbol))
	order.Side = entity.OrderSide(strings.ToUpper(strings.TrimSpace(string(order.Side))))
	order.Type = strings.ToUpper(strings.TrimSpace(order.Type))
	order.TimeInForce = strings.ToUpper(strings.TrimSpace(order.TimeInForce))

	switch {
	case order.Symbol == "":
		return order, fmt.Errorf("%w: symbol is required", ErrInvalidOrderRequest)
	case !order.Side.Valid():
		return order, fmt.Errorf("%w: side must be BUY or SELL", ErrInvalidOrderRequest)
	case order.Type == "":
		return order, fmt.Errorf("%w: type is required", ErrInvalidOrderRequest)
	}

	return order, nil
}

func placeOrderTimeout() time.Duration {
	if config.Env != nil {
		if timeout := config.Env.NatsJetstream.TimeoutHandler["place_order"]; timeout > 0 {
			return timeout
		}
	}
	return 30 * time.Second
}

func maxRetries() int {
	if config.Env != nil && config.Env.NatsJetstream.MaxRetries > 0 {
		return config.Env.NatsJetstream.MaxRetries
	}
	return 3
}
