package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"katagaki/internal/model"
	"katagaki/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	StreamKey           = "payments:completions"
	DeadLetterStreamKey = "payments:completions:dead"
	ConsumerGroupName   = "entitlement-workers"
	ConsumerNamePrefix  = "worker"

	completionField = "completion"
	sourceIDField   = "source_id"
	deliveriesField = "deliveries"

	batchSize = 10
)

// RedisStreamPaymentQueueConfig 零值欄位使用預設值
type RedisStreamPaymentQueueConfig struct {
	ClaimMinIdleTime   time.Duration // 未 ack 的訊息閒置超過此時間後重新投遞
	MaxDeliveries      int           // 超過投遞次數的訊息移到 dead letter stream
	ReadGroupBlockTime time.Duration
	RedriveInterval    time.Duration // dead letter 搬回主 stream 的週期
}

func defaultRedisStreamConfig() RedisStreamPaymentQueueConfig {
	return RedisStreamPaymentQueueConfig{
		ClaimMinIdleTime:   5 * time.Second,
		MaxDeliveries:      10,
		ReadGroupBlockTime: 2 * time.Second,
		RedriveInterval:    time.Minute,
	}
}

func (c RedisStreamPaymentQueueConfig) withDefaults() RedisStreamPaymentQueueConfig {
	d := defaultRedisStreamConfig()
	if c.ClaimMinIdleTime > 0 {
		d.ClaimMinIdleTime = c.ClaimMinIdleTime
	}
	if c.MaxDeliveries > 0 {
		d.MaxDeliveries = c.MaxDeliveries
	}
	if c.ReadGroupBlockTime > 0 {
		d.ReadGroupBlockTime = c.ReadGroupBlockTime
	}
	if c.RedriveInterval > 0 {
		d.RedriveInterval = c.RedriveInterval
	}
	return d
}

// RedisStreamPaymentQueue 付款完成事件的 Redis Stream 隊列。
// 已付款的事件不會被丟棄：重試次數用完的訊息停在 dead letter stream，定期搬回主 stream 再試。
type RedisStreamPaymentQueue struct {
	client   *redis.Client
	stream   string
	dead     string
	group    string
	consumer string
	cfg      RedisStreamPaymentQueueConfig
	log      *zap.Logger
}

func NewRedisStreamPaymentQueue(ctx context.Context, client *redis.Client, consumerID string, config *RedisStreamPaymentQueueConfig) (*RedisStreamPaymentQueue, error) {
	if consumerID == "" {
		consumerID = uuid.NewString()
	}
	var cfg RedisStreamPaymentQueueConfig
	if config != nil {
		cfg = *config
	}

	q := &RedisStreamPaymentQueue{
		client:   client,
		stream:   StreamKey,
		dead:     DeadLetterStreamKey,
		group:    ConsumerGroupName,
		consumer: ConsumerNamePrefix + ":" + consumerID,
		cfg:      cfg.withDefaults(),
		log:      logger.WithComponent("mq"),
	}

	err := client.XGroupCreateMkStream(ctx, q.stream, q.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	return q, nil
}

func (q *RedisStreamPaymentQueue) PublishCompletion(ctx context.Context, completion *model.CheckoutCompletion) error {
	payload, err := json.Marshal(completion)
	if err != nil {
		return fmt.Errorf("marshal completion: %w", err)
	}
	if err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{completionField: string(payload)},
	}).Err(); err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

// SubscribeCompletions 同時跑新訊息讀取、逾時訊息領回與 dead letter 搬回；ctx 結束後關閉 channel
func (q *RedisStreamPaymentQueue) SubscribeCompletions(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return q.readNew(gctx, out) })
	g.Go(func() error { return q.reclaimIdle(gctx, out) })
	g.Go(func() error { return q.redriveLoop(gctx) })

	go func() {
		defer close(out)
		_ = g.Wait()
	}()
	return out, nil
}

func (q *RedisStreamPaymentQueue) readNew(ctx context.Context, out chan<- Delivery) error {
	for ctx.Err() == nil {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.group,
			Consumer: q.consumer,
			Streams:  []string{q.stream, ">"},
			Count:    batchSize,
			Block:    q.cfg.ReadGroupBlockTime,
		}).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			q.log.Error("XReadGroup failed", zap.Error(err))
			sleep(ctx, time.Second)
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				// 第一次投遞
				if !q.dispatch(ctx, out, msg, 1) {
					return nil
				}
			}
		}
	}
	return nil
}

// reclaimIdle 以 XAUTOCLAIM 領回閒置的訊息；nack(requeue) 的訊息靠這裡延遲重試
func (q *RedisStreamPaymentQueue) reclaimIdle(ctx context.Context, out chan<- Delivery) error {
	ticker := time.NewTicker(q.cfg.ClaimMinIdleTime)
	defer ticker.Stop()

	cursor := "0-0"
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		claimed, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   q.stream,
			Group:    q.group,
			Consumer: q.consumer,
			MinIdle:  q.cfg.ClaimMinIdleTime,
			Start:    cursor,
			Count:    batchSize,
		}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() == nil {
				q.log.Error("XAutoClaim failed", zap.Error(err))
			}
			continue
		}
		cursor = next
		if cursor == "" {
			cursor = "0-0"
		}

		counts := q.deliveryCounts(ctx, claimed)
		for _, msg := range claimed {
			if !q.dispatch(ctx, out, msg, counts[msg.ID]) {
				return nil
			}
		}
	}
}

// deliveryCounts 查詢訊息已被投遞的次數；查不到時視為 1
func (q *RedisStreamPaymentQueue) deliveryCounts(ctx context.Context, msgs []redis.XMessage) map[string]int64 {
	counts := make(map[string]int64, len(msgs))
	if len(msgs) == 0 {
		return counts
	}
	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: q.stream,
		Group:  q.group,
		Start:  msgs[0].ID,
		End:    msgs[len(msgs)-1].ID,
		Count:  int64(len(msgs)),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		q.log.Warn("XPendingExt failed", zap.Error(err))
	}
	for _, p := range pending {
		counts[p.ID] = p.RetryCount
	}
	for _, msg := range msgs {
		if counts[msg.ID] == 0 {
			counts[msg.ID] = 1
		}
	}
	return counts
}

// dispatch 解析並投遞一則訊息；ctx 結束時回傳 false
func (q *RedisStreamPaymentQueue) dispatch(ctx context.Context, out chan<- Delivery, msg redis.XMessage, deliveries int64) bool {
	raw, _ := msg.Values[completionField].(string)

	var completion model.CheckoutCompletion
	if err := json.Unmarshal([]byte(raw), &completion); err != nil {
		// 無法還原成付款事件，重試也沒有意義
		q.log.Error("drop undecodable completion",
			zap.String("message_id", msg.ID), zap.String("payload", raw), zap.Error(err))
		q.ack(ctx, msg.ID)
		return true
	}

	if deliveries > int64(q.cfg.MaxDeliveries) {
		q.park(ctx, msg.ID, raw, deliveries)
		return true
	}

	d := Delivery{
		Data: &completion,
		Ack:  func() { q.ack(ctx, msg.ID) },
		Nack: func(requeue bool) {
			if requeue {
				// 留在 PEL，閒置超過 ClaimMinIdleTime 後由 reclaimIdle 再投遞
				return
			}
			q.park(ctx, msg.ID, raw, deliveries)
		},
	}

	select {
	case out <- d:
		return true
	case <-ctx.Done():
		return false
	}
}

func (q *RedisStreamPaymentQueue) ack(ctx context.Context, id string) {
	if err := q.client.XAck(ctx, q.stream, q.group, id).Err(); err != nil {
		q.log.Error("XAck failed", zap.String("message_id", id), zap.Error(err))
	}
}

// park 在同一個 MULTI 中寫入 dead letter stream 並 ack 原訊息
func (q *RedisStreamPaymentQueue) park(ctx context.Context, id, raw string, deliveries int64) {
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: q.dead,
			Values: map[string]interface{}{
				completionField: raw,
				sourceIDField:   id,
				deliveriesField: deliveries,
			},
		})
		pipe.XAck(ctx, q.stream, q.group, id)
		return nil
	})
	if err != nil {
		// 沒有搬成功就留在 PEL，下一輪 reclaim 再處理
		q.log.Error("park completion failed", zap.String("message_id", id), zap.Error(err))
		return
	}
	q.log.Error("completion parked in dead letter stream",
		zap.String("message_id", id),
		zap.Int64("deliveries", deliveries),
		zap.Duration("redrive_in", q.cfg.RedriveInterval),
	)
}

func (q *RedisStreamPaymentQueue) redriveLoop(ctx context.Context) error {
	ticker := time.NewTicker(q.cfg.RedriveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := q.Redrive(ctx, batchSize); err != nil && ctx.Err() == nil {
				q.log.Error("redrive dead letters failed", zap.Error(err))
			}
		}
	}
}

// Redrive 把最多 limit 筆 dead letter 搬回主 stream，回傳搬移筆數
func (q *RedisStreamPaymentQueue) Redrive(ctx context.Context, limit int) (int, error) {
	entries, err := q.client.XRangeN(ctx, q.dead, "-", "+", int64(limit)).Result()
	if err != nil {
		return 0, fmt.Errorf("xrange dead letters: %w", err)
	}

	moved := 0
	for _, entry := range entries {
		raw, _ := entry.Values[completionField].(string)
		_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: q.stream,
				Values: map[string]interface{}{completionField: raw},
			})
			pipe.XDel(ctx, q.dead, entry.ID)
			return nil
		})
		if err != nil {
			return moved, fmt.Errorf("redrive %s: %w", entry.ID, err)
		}
		moved++
	}
	if moved > 0 {
		q.log.Info("dead letters redriven", zap.Int("count", moved))
	}
	return moved, nil
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
