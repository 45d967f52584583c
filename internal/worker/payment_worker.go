package worker

import (
	"context"
	"errors"

	"katagaki/internal/metrics"
	"katagaki/internal/queue"
	"katagaki/internal/service"
	apperrors "katagaki/pkg/app_errors"
	"katagaki/pkg/logger"

	"go.uber.org/zap"
)

type PaymentWorker interface {
	// 訂閱付款完成隊列，ctx 結束時停止
	Start(ctx context.Context) error
}

type PaymentWorkerImpl struct {
	service service.EntitlementService
	queue   queue.PaymentQueue
	metrics *metrics.Metrics
	done    chan struct{}
}

func NewPaymentWorker(service service.EntitlementService, queue queue.PaymentQueue, m *metrics.Metrics) *PaymentWorkerImpl {
	return &PaymentWorkerImpl{
		service: service,
		queue:   queue,
		metrics: m,
		done:    make(chan struct{}),
	}
}

func (w *PaymentWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeCompletions(ctx)
	if err != nil {
		close(w.done)
		return err
	}

	go func() {
		defer close(w.done)
		log := logger.WithComponent("worker")
		for msg := range msgs {
			_, err := w.service.ProcessCompletion(ctx, msg.Data)

			switch {
			case err == nil:
				msg.Ack()
				w.record("ack")
			case apperrors.IsNonRetryablePaymentOutcome(err):
				// 重送也不會改變結果，直接結案
				msg.Ack()
				w.record("dropped")
			case errors.Is(err, context.Canceled):
				msg.Nack(true)
				return
			default:
				// 資料庫或 Stripe 暫時失敗，留在隊列等待重試
				log.Warn("payment completion nack", zap.String("session_id", msg.Data.SessionID), zap.Error(err))
				msg.Nack(true)
				w.record("nack")
			}
		}
	}()
	return nil
}

// Done worker 結束後關閉
func (w *PaymentWorkerImpl) Done() <-chan struct{} {
	return w.done
}

func (w *PaymentWorkerImpl) record(result string) {
	if w.metrics != nil {
		w.metrics.QueueDeliveries.WithLabelValues(result).Inc()
	}
}
