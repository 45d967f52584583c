package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventState 付款事件在 Redis 中的處理狀態
type EventState int

const (
	// EventAcquired 取得處理權
	EventAcquired EventState = iota
	// EventInProgress 另一個請求正在處理同一事件
	EventInProgress
	// EventDone 事件已處理完成
	EventDone
)

const eventDoneMarker = "done"

type PaymentEventLog interface {
	// 取得：以 SET NX 搶佔事件的處理權 (使用Lua腳本確保原子性)
	Acquire(ctx context.Context, eventID string, owner string, lease time.Duration) (EventState, error)
	// 完成：只有持有者可以把事件標記為完成
	Complete(ctx context.Context, eventID string, owner string, retention time.Duration) error
	// 釋放：處理失敗時釋放處理權，讓重送的事件可以再處理
	Release(ctx context.Context, eventID string, owner string) error
}

type RedisPaymentEventLog struct {
	client *redis.Client
}

func NewPaymentEventLog(client *redis.Client) PaymentEventLog {
	return &RedisPaymentEventLog{
		client: client,
	}
}

// 事件 key
func (l *RedisPaymentEventLog) getEventKey(eventID string) string {
	return fmt.Sprintf("payment:event:%s", eventID)
}

var acquireScript = redis.NewScript(`
	local event_key = KEYS[1]
	local owner = ARGV[1]
	local lease_ms = tonumber(ARGV[2])

	local current = redis.call('GET', event_key)
	if current == 'done' then
		return 2 -- 已完成
	end
	if current then
		return 1 -- 處理中
	end

	redis.call('SET', event_key, owner, 'PX', lease_ms)
	return 0
`)

var completeScript = redis.NewScript(`
	local event_key = KEYS[1]
	local owner = ARGV[1]
	local retention_ms = tonumber(ARGV[2])

	if redis.call('GET', event_key) ~= owner then
		return 0 -- lease 已過期或被其他人取得
	end
	redis.call('SET', event_key, 'done', 'PX', retention_ms)
	return 1
`)

var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

func (l *RedisPaymentEventLog) Acquire(ctx context.Context, eventID string, owner string, lease time.Duration) (EventState, error) {
	if eventID == "" || owner == "" || owner == eventDoneMarker {
		return EventInProgress, errors.New("event id and owner are required")
	}

	code, err := acquireScript.Run(ctx, l.client, []string{l.getEventKey(eventID)}, owner, lease.Milliseconds()).Int()
	if err != nil {
		return EventInProgress, err
	}

	switch code {
	case 0:
		return EventAcquired, nil
	case 1:
		return EventInProgress, nil
	case 2:
		return EventDone, nil
	default:
		return EventInProgress, fmt.Errorf("unexpected acquire result %d", code)
	}
}

func (l *RedisPaymentEventLog) Complete(ctx context.Context, eventID string, owner string, retention time.Duration) error {
	_, err := completeScript.Run(ctx, l.client, []string{l.getEventKey(eventID)}, owner, retention.Milliseconds()).Int()
	return err
}

func (l *RedisPaymentEventLog) Release(ctx context.Context, eventID string, owner string) error {
	_, err := releaseScript.Run(ctx, l.client, []string{l.getEventKey(eventID)}, owner).Int()
	return err
}
