package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/krobus00/stocknotifier-service/internal/config"
	"github.com/krobus00/stocknotifier-service/internal/constant"
	"github.com/krobus00/stocknotifier-service/internal/infrastructure"
	"github.com/krobus00/stocknotifier-service/internal/repository"
	"github.com/krobus00/stocknotifier-service/internal/service/binance"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

type operation func(ctx context.Context) error

// gracefulShutdown waits for termination syscalls and doing clean up operations after received it.
func gracefulShutdown(ctx context.Context, timeout time.Duration, ops map[string]operation) <-chan struct{} {
	wait := make(chan struct{})
	go func() {
		s := make(chan os.Signal, 1)

		// add any other syscalls that you want to be notified with
		signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		<-s

		logrus.Info("shutting down")

		// set timeout for the ops to be done to prevent system hang
		timeoutFunc := time.AfterFunc(timeout, func() {
			logrus.Error(fmt.Sprintf("timeout %d ms has been elapsed, force exit", timeout.Milliseconds()))
			os.Exit(0)
		})

		defer timeoutFunc.Stop()

		var wg conc.WaitGroup
		for key, op := range ops {
			wg.Go(func() {
				logrus.Info(fmt.Sprintf("cleaning up: %s", key))
				if err := op(ctx); err != nil {
					logrus.Error(fmt.Sprintf("%s: clean up failed: %s", key, err.Error()))
					return
				}

				logrus.Info(fmt.Sprintf("%s was shutdown gracefully", key))
			})
		}

		// a panicking cleanup must not keep the process alive
		if recovered := wg.WaitAndRecover(); recovered != nil {
			logrus.Error(recovered.AsError())
		}

		close(wait)
	}()

	return wait
}

// newBinanceClients builds the signed trading client and the public market
// data client. The trading client is nil when credentials are missing so the
// gateway can still serve unsigned routes.
func newBinanceClients() (tradingClient, publicClient *binance.Client) {
	cfg := config.Env.Exchanges[constant.ExchangeBinance]

	publicClient = binance.NewPublicClientFromConfig(cfg)

	tradingClient, err := binance.NewClientFromConfig(cfg)
	if err != nil {
		if !errors.Is(err, binance.ErrMissingCredentials) {
			logrus.Fatal(err)
		}
		logrus.Warn("binance credentials are not configured, signed endpoints are disabled")
		return nil, publicClient
	}

	logrus.WithField("base_url", tradingClient.BaseURL()).Info("binance trading client ready")
	return tradingClient, publicClient
}

// connectRequestLock connects redis when a dsn is configured. Without it the
// services run without idempotency keys.
func connectRequestLock(ctx context.Context) (*redis.Client, *repository.RequestLockRepository, error) {
	cfg, ok := config.Env.Redis[constant.StocknotifierRedis]
	if !ok || strings.TrimSpace(cfg.CacheDSN) == "" {
		logrus.Info("redis is not configured, idempotency keys are ignored")
		return nil, nil, nil
	}

	client, err := infrastructure.NewRedisClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	return client, repository.NewRequestLockRepository(client, config.ServiceName), nil
}

// connectOptionalJetstream connects nats when a url is configured.
func connectOptionalJetstream() (*nats.Conn, nats.JetStreamContext, error) {
	if strings.TrimSpace(config.Env.NatsJetstream.URL) == "" {
		logrus.Info("nats jetstream is not configured, record events and async orders are disabled")
		return nil, nil, nil
	}

	return infrastructure.NewJetstream(config.Env.NatsJetstream)
}
