package record

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/krobus00/stocknotifier-service/internal/constant"
	"github.com/krobus00/stocknotifier-service/internal/infrastructure"
	"github.com/krobus00/stocknotifier-service/internal/repository"
	"github.com/krobus00/stocknotifier-service/internal/util"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const requestLockTTL = 24 * time.Hour

func recordStreamConfig() *nats.StreamConfig {
	return &nats.StreamConfig{
		Name:       constant.RecordStreamName,
		Subjects:   []string{constant.RecordStreamSubjectAll},
		Storage:    nats.FileStorage,
		Retention:  nats.LimitsPolicy,
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 2 * time.Minute,
		Replicas:   1,
	}
}

func initRecordStream(ctx context.Context, js nats.JetStreamContext) error {
	if js == nil {
		return nil
	}
	return infrastructure.EnsureStream(js, recordStreamConfig(), nats.Context(ctx))
}

// publishCreated emits a created event. Publishing is best effort: the row is
// already committed, so failures are only logged.
func publishCreated(js nats.JetStreamContext, subject string, build func(eventID string) any) {
	if js == nil {
		return
	}

	eventID := uuid.NewString()
	err := util.PublishEvent(js, subject, eventID, build(eventID))
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"subject":  subject,
			"event_id": eventID,
		}).Warnf("failed to publish record event: %v", err)
	}
}

// claimRequest returns a release func when the idempotency key was claimed.
// An empty key or a missing lock store always succeeds.
func claimRequest(ctx context.Context, lock *repository.RequestLockRepository, scope, key string) (release func(), err error) {
	noop := func() {}
	if lock == nil || key == "" {
		return noop, nil
	}

	owner := uuid.NewString()
	acquired, err := lock.Acquire(ctx, scope, key, owner, requestLockTTL)
	if err != nil {
		return noop, err
	}
	if !acquired {
		return noop, ErrDuplicateRequest
	}

	return func() {
		if err := lock.Release(context.WithoutCancel(ctx), scope, key, owner); err != nil {
			logrus.WithField("idempotency_key", key).Warnf("failed to release request lock: %v", err)
		}
	}, nil
}
