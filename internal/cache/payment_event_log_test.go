package cache_test

import (
	"context"
	"testing"
	"time"

	"katagaki/internal/cache"
	"katagaki/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentEventLog_Acquire(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - first delivery acquires", func(t *testing.T) {
		_, rdb := testutil.NewMiniRedis(t)
		eventLog := cache.NewPaymentEventLog(rdb)

		state, err := eventLog.Acquire(ctx, "evt_1", "owner-a", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, cache.EventAcquired, state)
	})

	t.Run("Concurrent delivery sees in progress", func(t *testing.T) {
		_, rdb := testutil.NewMiniRedis(t)
		eventLog := cache.NewPaymentEventLog(rdb)

		_, err := eventLog.Acquire(ctx, "evt_1", "owner-a", time.Minute)
		require.NoError(t, err)

		state, err := eventLog.Acquire(ctx, "evt_1", "owner-b", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, cache.EventInProgress, state)
	})

	t.Run("Lease expiry lets redelivery acquire", func(t *testing.T) {
		mr, rdb := testutil.NewMiniRedis(t)
		eventLog := cache.NewPaymentEventLog(rdb)

		_, err := eventLog.Acquire(ctx, "evt_1", "owner-a", 30*time.Second)
		require.NoError(t, err)
		mr.FastForward(31 * time.Second)

		state, err := eventLog.Acquire(ctx, "evt_1", "owner-b", 30*time.Second)
		require.NoError(t, err)
		assert.Equal(t, cache.EventAcquired, state)
	})

	t.Run("Failed - empty event id", func(t *testing.T) {
		_, rdb := testutil.NewMiniRedis(t)
		eventLog := cache.NewPaymentEventLog(rdb)

		_, err := eventLog.Acquire(ctx, "", "owner-a", time.Minute)
		assert.Error(t, err)
	})

	t.Run("Failed - redis down", func(t *testing.T) {
		mr, rdb := testutil.NewMiniRedis(t)
		eventLog := cache.NewPaymentEventLog(rdb)
		mr.Close()

		_, err := eventLog.Acquire(ctx, "evt_1", "owner-a", time.Minute)
		assert.Error(t, err)
	})
}

func TestPaymentEventLog_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner marks done", func(t *testing.T) {
		mr, rdb := testutil.NewMiniRedis(t)
		eventLog := cache.NewPaymentEventLog(rdb)

		_, err := eventLog.Acquire(ctx, "evt_1", "owner-a", time.Minute)
		require.NoError(t, err)
		require.NoError(t, eventLog.Complete(ctx, "evt_1", "owner-a", time.Hour))

		state, err := eventLog.Acquire(ctx, "evt_1", "owner-b", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, cache.EventDone, state)
		assert.Greater(t, mr.TTL("payment:event:evt_1"), time.Minute)
	})

	t.Run("Stale owner cannot complete", func(t *testing.T) {
		_, rdb := testutil.NewMiniRedis(t)
		eventLog := cache.NewPaymentEventLog(rdb)

		_, err := eventLog.Acquire(ctx, "evt_1", "owner-a", time.Minute)
		require.NoError(t, err)
		require.NoError(t, eventLog.Complete(ctx, "evt_1", "owner-b", time.Hour))

		state, err := eventLog.Acquire(ctx, "evt_1", "owner-c", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, cache.EventInProgress, state)
	})
}

func TestPaymentEventLog_Release(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner release allows retry", func(t *testing.T) {
		_, rdb := testutil.NewMiniRedis(t)
		eventLog := cache.NewPaymentEventLog(rdb)

		_, err := eventLog.Acquire(ctx, "evt_1", "owner-a", time.Minute)
		require.NoError(t, err)
		require.NoError(t, eventLog.Release(ctx, "evt_1", "owner-a"))

		state, err := eventLog.Acquire(ctx, "evt_1", "owner-b", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, cache.EventAcquired, state)
	})

	t.Run("Other owner release is a no-op", func(t *testing.T) {
		mr, rdb := testutil.NewMiniRedis(t)
		eventLog := cache.NewPaymentEventLog(rdb)

		_, err := eventLog.Acquire(ctx, "evt_1", "owner-a", time.Minute)
		require.NoError(t, err)
		require.NoError(t, eventLog.Release(ctx, "evt_1", "owner-b"))

		value, err := mr.Get("payment:event:evt_1")
		require.NoError(t, err)
		assert.Equal(t, "owner-a", value)
	})
}
