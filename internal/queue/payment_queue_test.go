package queue_test

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"katagaki/internal/model"
	"katagaki/internal/queue"
	"katagaki/internal/testutil"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCompletion(sessionID string) *model.CheckoutCompletion {
	return &model.CheckoutCompletion{
		EventID:         "evt_" + sessionID,
		SessionID:       sessionID,
		TitleID:         "T1",
		UserID:          "U1",
		PaymentIntentID: "pi_1",
	}
}

func TestMemoryPaymentQueue(t *testing.T) {
	t.Run("full buffer rejects publish", func(t *testing.T) {
		ctx := context.Background()
		q := queue.NewMemoryPaymentQueue(1)

		require.NoError(t, q.PublishCompletion(ctx, testCompletion("cs_1")))
		assert.ErrorIs(t, q.PublishCompletion(ctx, testCompletion("cs_2")), queue.ErrQueueFull)
	})

	t.Run("nack requeue redelivers", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		q := queue.NewMemoryPaymentQueue(1)

		require.NoError(t, q.PublishCompletion(ctx, testCompletion("cs_1")))
		deliveries, err := q.SubscribeCompletions(ctx)
		require.NoError(t, err)

		first := <-deliveries
		first.Nack(true)
		second := <-deliveries
		assert.Equal(t, "cs_1", second.Data.SessionID)
		second.Ack()
	})
}

func newStreamQueue(t *testing.T, ctx context.Context, rdb *redis.Client, consumer string) *queue.RedisStreamPaymentQueue {
	t.Helper()
	return newStreamQueueWith(t, ctx, rdb, consumer, queue.RedisStreamPaymentQueueConfig{
		ClaimMinIdleTime:   time.Minute,
		MaxDeliveries:      3,
		ReadGroupBlockTime: 50 * time.Millisecond,
		RedriveInterval:    time.Hour,
	})
}

func newStreamQueueWith(t *testing.T, ctx context.Context, rdb *redis.Client, consumer string, cfg queue.RedisStreamPaymentQueueConfig) *queue.RedisStreamPaymentQueue {
	t.Helper()
	q, err := queue.NewRedisStreamPaymentQueue(ctx, rdb, consumer, &cfg)
	require.NoError(t, err)
	return q
}

func deadLetterSessions(t *testing.T, ctx context.Context, rdb *redis.Client) []string {
	t.Helper()
	entries, err := rdb.XRange(ctx, queue.DeadLetterStreamKey, "-", "+").Result()
	require.NoError(t, err)

	sessions := make([]string, 0, len(entries))
	for _, e := range entries {
		var c model.CheckoutCompletion
		require.NoError(t, json.Unmarshal([]byte(e.Values["completion"].(string)), &c))
		sessions = append(sessions, c.SessionID)
	}
	return sessions
}

func TestRedisStreamPaymentQueue_New(t *testing.T) {
	ctx := context.Background()
	_, rdb := testutil.NewMiniRedis(t)

	// 第二次建立時 consumer group 已存在
	newStreamQueue(t, ctx, rdb, "a")
	newStreamQueue(t, ctx, rdb, "")
}

func TestRedisStreamPaymentQueue_PublishAndSubscribe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, rdb := testutil.NewMiniRedis(t)

	q := newStreamQueue(t, ctx, rdb, "deliver-test")
	sent := testCompletion("cs_1")
	require.NoError(t, q.PublishCompletion(ctx, sent))

	deliveries, err := q.SubscribeCompletions(ctx)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		assert.Equal(t, sent, d.Data)
		d.Ack()
	case <-ctx.Done():
		t.Fatal("no delivery received")
	}

	pending, err := rdb.XPending(ctx, queue.StreamKey, queue.ConsumerGroupName).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}

func TestRedisStreamPaymentQueue_SkipsMalformed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, rdb := testutil.NewMiniRedis(t)

	q := newStreamQueue(t, ctx, rdb, "malformed-test")
	require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: queue.StreamKey,
		Values: map[string]interface{}{"completion": "{not json"},
	}).Err())
	require.NoError(t, q.PublishCompletion(ctx, testCompletion("cs_2")))

	deliveries, err := q.SubscribeCompletions(ctx)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		assert.Equal(t, "cs_2", d.Data.SessionID)
		d.Ack()
	case <-ctx.Done():
		t.Fatal("no delivery received")
	}
}

func TestRedisStreamPaymentQueue_ParksAfterMaxDeliveries(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, rdb := testutil.NewMiniRedis(t)

	q := newStreamQueueWith(t, ctx, rdb, "park-test", queue.RedisStreamPaymentQueueConfig{
		ClaimMinIdleTime:   20 * time.Millisecond,
		MaxDeliveries:      2,
		ReadGroupBlockTime: 20 * time.Millisecond,
		RedriveInterval:    time.Hour,
	})
	require.NoError(t, q.PublishCompletion(ctx, testCompletion("cs_unlucky")))

	deliveries, err := q.SubscribeCompletions(ctx)
	require.NoError(t, err)

	// 每次都失敗重試
	var attempts atomic.Int32
	go func() {
		for d := range deliveries {
			attempts.Add(1)
			d.Nack(true)
		}
	}()

	require.Eventually(t, func() bool {
		return rdb.XLen(ctx, queue.DeadLetterStreamKey).Val() == 1
	}, 3*time.Second, 20*time.Millisecond)

	assert.Equal(t, []string{"cs_unlucky"}, deadLetterSessions(t, ctx, rdb))
	assert.Equal(t, int32(2), attempts.Load())

	pending, err := rdb.XPending(ctx, queue.StreamKey, queue.ConsumerGroupName).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending.Count)
}

func TestRedisStreamPaymentQueue_NackWithoutRequeueParks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, rdb := testutil.NewMiniRedis(t)

	q := newStreamQueue(t, ctx, rdb, "nack-test")
	require.NoError(t, q.PublishCompletion(ctx, testCompletion("cs_1")))

	deliveries, err := q.SubscribeCompletions(ctx)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		d.Nack(false)
	case <-ctx.Done():
		t.Fatal("no delivery received")
	}

	assert.Equal(t, []string{"cs_1"}, deadLetterSessions(t, ctx, rdb))
}

func TestRedisStreamPaymentQueue_Redrive(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, rdb := testutil.NewMiniRedis(t)

	q := newStreamQueue(t, ctx, rdb, "redrive-test")

	payload, err := json.Marshal(testCompletion("cs_parked"))
	require.NoError(t, err)
	require.NoError(t, rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: queue.DeadLetterStreamKey,
		Values: map[string]interface{}{"completion": string(payload), "source_id": "1-0", "deliveries": 11},
	}).Err())

	moved, err := q.Redrive(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)
	assert.Equal(t, int64(0), rdb.XLen(ctx, queue.DeadLetterStreamKey).Val())

	deliveries, err := q.SubscribeCompletions(ctx)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		assert.Equal(t, "cs_parked", d.Data.SessionID)
		d.Ack()
	case <-ctx.Done():
		t.Fatal("redriven completion not delivered")
	}

	moved, err = q.Redrive(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
}
