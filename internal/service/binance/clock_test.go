package binance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func TestClockSynchronizerOffsetWithinTTL(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	calls := 0
	synchronizer := NewClockSynchronizer(func(context.Context) (int64, error) {
		calls++
		return clock.Now().UnixMilli() + 1500, nil
	}, clock.Now, 5*time.Minute)

	require.Equal(t, clock.Now().UnixMilli(), synchronizer.CurrentAdjustedTime())

	synchronizer.EnsureFresh(context.Background())
	require.Equal(t, 1, calls)
	require.Equal(t, int64(1500), synchronizer.Offset())
	require.Equal(t, clock.Now().UnixMilli()+1500, synchronizer.CurrentAdjustedTime())

	clock.Advance(4 * time.Minute)
	synchronizer.EnsureFresh(context.Background())
	require.Equal(t, 1, calls)
	require.Equal(t, clock.Now().UnixMilli()+1500, synchronizer.CurrentAdjustedTime())
}

func TestClockSynchronizerRefreshesAfterTTL(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	drift := int64(1500)
	calls := 0
	synchronizer := NewClockSynchronizer(func(context.Context) (int64, error) {
		calls++
		return clock.Now().UnixMilli() + drift, nil
	}, clock.Now, 5*time.Minute)

	synchronizer.EnsureFresh(context.Background())
	require.Equal(t, int64(1500), synchronizer.Offset())

	drift = -250
	clock.Advance(5*time.Minute + time.Second)
	synchronizer.EnsureFresh(context.Background())

	require.Equal(t, 2, calls)
	require.Equal(t, int64(-250), synchronizer.Offset())
}

func TestClockSynchronizerKeepsOffsetOnFailure(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	fail := false
	synchronizer := NewClockSynchronizer(func(context.Context) (int64, error) {
		if fail {
			return 0, errors.New("connection refused")
		}
		return clock.Now().UnixMilli() + 900, nil
	}, clock.Now, 5*time.Minute)

	synchronizer.EnsureFresh(context.Background())
	require.Equal(t, int64(900), synchronizer.Offset())

	fail = true
	clock.Advance(10 * time.Minute)
	synchronizer.EnsureFresh(context.Background())

	require.Equal(t, int64(900), synchronizer.Offset())
	require.Equal(t, clock.Now().UnixMilli()+900, synchronizer.CurrentAdjustedTime())
}

func TestClockSynchronizerNeverSyncedFailure(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	calls := 0
	synchronizer := NewClockSynchronizer(func(context.Context) (int64, error) {
		calls++
		return 0, errors.New("timeout")
	}, clock.Now, 5*time.Minute)

	synchronizer.EnsureFresh(context.Background())
	synchronizer.EnsureFresh(context.Background())

	require.Equal(t, 2, calls)
	require.Equal(t, int64(0), synchronizer.Offset())
	require.Equal(t, clock.Now().UnixMilli(), synchronizer.CurrentAdjustedTime())
}
