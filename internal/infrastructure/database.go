package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jmoiron/sqlx"
	"github.com/krobus00/stocknotifier-service/internal/config"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultBackoffFactor  = 2.0
	defaultMinJitter      = 100 * time.Millisecond
	defaultMaxJitter      = 1 * time.Second
	defaultMaxIdleConns   = 10
	defaultMaxOpenConns   = 100
	defaultConnLifetime   = 1 * time.Hour
)

func NewPostgresConnection(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("database dsn is required")
	}

	connectTimeout := cfg.PingInterval
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}

	maxRetry := cfg.MaxRetry
	if maxRetry < 0 {
		maxRetry = 0
	}

	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = defaultMaxIdleConns
	}

	maxOpenConns := cfg.MaxActiveConns
	if maxOpenConns <= 0 {
		maxOpenConns = defaultMaxOpenConns
	}

	maxConnLifetime := cfg.MaxConnLifetime
	if maxConnLifetime <= 0 {
		maxConnLifetime = defaultConnLifetime
	}

	attempt := 0
	db, err := backoff.Retry(ctx, func() (*sqlx.DB, error) {
		attempt++
		attemptCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		return sqlx.ConnectContext(attemptCtx, "postgres", cfg.DSN)
	},
		backoff.WithBackOff(newReconnectBackOff(cfg.ReconnectFactor, cfg.MinJitter, cfg.MaxJitter)),
		backoff.WithMaxTries(uint(maxRetry+1)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			logrus.WithFields(logrus.Fields{
				"attempt":      attempt,
				"max_retry":    maxRetry,
				"retry_in":     wait.String(),
				"postgres_dsn": maskDSN(cfg.DSN),
			}).Warnf("postgres connection failed: %v", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres after %d attempts: %w", attempt, err)
	}

	db.SetMaxIdleConns(maxIdleConns)
	db.SetMaxOpenConns(maxOpenConns)
	db.SetConnMaxLifetime(maxConnLifetime)
	if cfg.PingInterval > 0 {
		db.SetConnMaxIdleTime(cfg.PingInterval)
	}

	logrus.WithFields(logrus.Fields{
		"max_retry":         maxRetry,
		"max_idle_conns":    maxIdleConns,
		"max_active_conns":  maxOpenConns,
		"max_conn_lifetime": maxConnLifetime,
	}).Info("postgres connection established")

	return db, nil
}

// newReconnectBackOff maps the reconnect_factor/min_jitter/max_jitter config
// onto an exponential backoff.
func newReconnectBackOff(factor float64, minWait, maxWait time.Duration) *backoff.ExponentialBackOff {
	if factor < 1 {
		factor = defaultBackoffFactor
	}
	if minWait <= 0 {
		minWait = defaultMinJitter
	}
	if maxWait <= 0 {
		maxWait = defaultMaxJitter
	}
	if maxWait < minWait {
		maxWait = minWait
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = minWait
	b.Multiplier = factor
	b.MaxInterval = maxWait
	b.RandomizationFactor = backoff.DefaultRandomizationFactor
	return b
}

func StartPostgresHealthCheck(ctx context.Context, db *sqlx.DB, interval time.Duration) {
	if db == nil || interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pingCtx, cancel := context.WithTimeout(ctx, interval)
				err := db.PingContext(pingCtx)
				cancel()
				if err != nil {
					logrus.Errorf("postgres health check failed: %v", err)
				}
			}
		}
	}()
}

func maskDSN(dsn string) string {
	idx := strings.LastIndex(dsn, "@")
	if idx == -1 {
		return dsn
	}

	prefix := dsn[:idx]
	credsIdx := strings.LastIndex(prefix, "://")
	if credsIdx == -1 {
		return "***" + dsn[idx:]
	}

	return prefix[:credsIdx+3] + "***" + dsn[idx:]
}
