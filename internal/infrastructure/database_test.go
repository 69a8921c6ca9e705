package infrastructure

import (
	"context"
	"testing"
	"time"

	"github.com/krobus00/stocknotifier-service/internal/config"
	"github.com/stretchr/testify/require"
)

func TestMaskDSN(t *testing.T) {
	require.Equal(t, "postgres://***@localhost:5432/stocknotifier", maskDSN("postgres://user:p@ss@localhost:5432/stocknotifier"))
	require.Equal(t, "host=localhost dbname=stocknotifier", maskDSN("host=localhost dbname=stocknotifier"))
}

func TestNewReconnectBackOffDefaults(t *testing.T) {
	b := newReconnectBackOff(0, 0, 0)
	require.Equal(t, defaultMinJitter, b.InitialInterval)
	require.Equal(t, defaultMaxJitter, b.MaxInterval)
	require.Equal(t, defaultBackoffFactor, b.Multiplier)

	b = newReconnectBackOff(3, 2*time.Second, time.Second)
	require.Equal(t, 2*time.Second, b.InitialInterval)
	require.Equal(t, 2*time.Second, b.MaxInterval)
	require.Equal(t, 3.0, b.Multiplier)
}

func TestNewPostgresConnectionRequiresDSN(t *testing.T) {
	_, err := NewPostgresConnection(context.Background(), config.DatabaseConfig{})
	require.Error(t, err)
}

func TestNewRedisClientRequiresDSN(t *testing.T) {
	_, err := NewRedisClient(context.Background(), config.RedisConfig{})
	require.Error(t, err)

	_, err = NewRedisClient(context.Background(), config.RedisConfig{CacheDSN: "://bad"})
	require.Error(t, err)
}
