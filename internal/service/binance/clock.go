package binance

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ClockSynchronizer tracks the offset between the local clock and the
// exchange server clock.
type ClockSynchronizer struct {
	fetchServerTime func(ctx context.Context) (int64, error)
	now             func() time.Time
	ttl             time.Duration

	mu       sync.RWMutex
	offsetMs int64
	syncedAt time.Time
	synced   bool
}

func NewClockSynchronizer(fetchServerTime func(ctx context.Context) (int64, error), now func() time.Time, ttl time.Duration) *ClockSynchronizer {
	if now == nil {
		now = time.Now
	}
	return &ClockSynchronizer{
		fetchServerTime: fetchServerTime,
		now:             now,
		ttl:             ttl,
	}
}

// EnsureFresh refreshes the offset when it was never synced or is older than
// the ttl. Failures keep the previous offset and are only logged.
func (c *ClockSynchronizer) EnsureFresh(ctx context.Context) {
	c.mu.RLock()
	fresh := c.synced && c.now().Sub(c.syncedAt) < c.ttl
	c.mu.RUnlock()
	if fresh {
		return
	}

	serverTime, err := c.fetchServerTime(ctx)
	if err != nil {
		logrus.WithError(err).Warn("failed to sync binance server time, keeping previous offset")
		return
	}

	receivedAt := c.now()

	c.mu.Lock()
	c.offsetMs = serverTime - receivedAt.UnixMilli()
	c.syncedAt = receivedAt
	c.synced = true
	c.mu.Unlock()

	logrus.WithField("offset_ms", serverTime-receivedAt.UnixMilli()).Debug("binance server time synced")
}

func (c *ClockSynchronizer) Offset() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offsetMs
}

// CurrentAdjustedTime is the local time in milliseconds corrected by the last
// known offset.
func (c *ClockSynchronizer) CurrentAdjustedTime() int64 {
	return c.now().UnixMilli() + c.Offset()
}
