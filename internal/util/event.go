package util

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

var (
	ErrJetstreamNotConfigured = errors.New("nats jetstream is not configured")
	ErrProcessingTimeout      = errors.New("processing timeout")
)

func ProcessWithTimeout(timeout time.Duration, msg *nats.Msg, callback func(ctx context.Context, msg *nats.Msg) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- callback(ctx, msg)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w for message: %s", ErrProcessingTimeout, string(msg.Data))
	case err := <-done:
		return err
	}
}

// PublishEvent encodes data as JSON and publishes it. A non-empty msgID is
// sent as the JetStream dedup header.
func PublishEvent(js nats.JetStreamContext, subject, msgID string, data any, opts ...nats.PubOpt) error {
	if js == nil {
		return ErrJetstreamNotConfigured
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(subject)
	msg.Data = payload
	if msgID != "" {
		msg.Header.Set(nats.MsgIdHdr, msgID)
	}

	_, err = js.PublishMsg(msg, opts...)
	if err != nil {
		return err
	}

	return nil
}
