package queue

import (
	"context"
	"errors"

	"katagaki/internal/model"
)

var ErrQueueFull = errors.New("payment queue full")

type Delivery struct {
	Data *model.CheckoutCompletion
	Ack  func()
	Nack func(requeue bool)
}

type PaymentQueue interface {
	// 發送已驗證的付款完成事件到隊列
	PublishCompletion(ctx context.Context, completion *model.CheckoutCompletion) error
	// 訂閱付款完成事件
	SubscribeCompletions(ctx context.Context) (<-chan Delivery, error)
}

type MemoryPaymentQueue struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *model.CheckoutCompletion
}

func NewMemoryPaymentQueue(bufferSize int) PaymentQueue {
	return &MemoryPaymentQueue{
		ch: make(chan *model.CheckoutCompletion, bufferSize),
	}
}

func (q *MemoryPaymentQueue) PublishCompletion(ctx context.Context, completion *model.CheckoutCompletion) error {
	select {
	case q.ch <- completion:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (q *MemoryPaymentQueue) SubscribeCompletions(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case completion, ok := <-q.ch:
				if !ok {
					return
				}

				delivery := Delivery{
					Data: completion,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if !requeue {
							return
						}
						// 簡單模擬重回隊列，滿了就丟棄
						select {
						case q.ch <- completion:
						default:
						}
					},
				}

				select {
				case out <- delivery:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
