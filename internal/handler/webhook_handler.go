package handler

import (
	"errors"
	"io"
	"net/http"

	"katagaki/internal/payment"
	"katagaki/internal/queue"
	"katagaki/internal/service"
	apperrors "katagaki/pkg/app_errors"
	"katagaki/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	WebhookModeSync  = "sync"
	WebhookModeAsync = "async"

	maxWebhookBodyBytes = 65536
)

type WebhookHandler struct {
	gateway payment.Gateway
	service service.EntitlementService
	queue   queue.PaymentQueue
	mode    string
	log     *zap.Logger
}

// NewWebhookHandler async 模式下 q 不可為 nil
func NewWebhookHandler(gateway payment.Gateway, service service.EntitlementService, q queue.PaymentQueue, mode string) *WebhookHandler {
	if mode != WebhookModeAsync || q == nil {
		mode = WebhookModeSync
	}
	return &WebhookHandler{
		gateway: gateway,
		service: service,
		queue:   q,
		mode:    mode,
		log:     logger.WithComponent("webhook"),
	}
}

func (h *WebhookHandler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/webhooks/stripe", h.HandleStripe)
}

func (h *WebhookHandler) HandleStripe(c *gin.Context) {
	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No signature"})
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.log.Warn("read webhook body failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook Error: " + err.Error()})
		return
	}

	event, err := h.gateway.ParseEvent(payload, signature)
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrSignatureInvalid):
		h.log.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook Error: " + err.Error()})
		return
	case errors.Is(err, apperrors.ErrMalformedPaymentEvent):
		h.log.Error("malformed webhook payload", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	default:
		handleError(c, err, "ParseWebhook")
		return
	}

	log := h.log.With(zap.String("event_id", event.ID), zap.String("event_type", event.Type))

	switch event.Type {
	case payment.EventCheckoutSessionCompleted:
		if !h.handleCompletion(c, event, log) {
			return
		}
	case payment.EventPaymentIntentSucceeded:
		log.Info("payment intent succeeded", zap.String("payment_intent_id", event.PaymentIntentID))
	case payment.EventPaymentIntentFailed:
		log.Warn("payment intent failed", zap.String("payment_intent_id", event.PaymentIntentID))
	default:
		log.Info("unhandled event type")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// handleCompletion 已寫入錯誤回應時回傳 false
func (h *WebhookHandler) handleCompletion(c *gin.Context, event *payment.Event, log *zap.Logger) bool {
	completion := event.Completion

	if h.mode == WebhookModeAsync {
		if completion == nil || !completion.Validate() {
			log.Warn("checkout completion missing metadata, dropping")
			return true
		}
		if err := h.queue.PublishCompletion(c, completion); err != nil {
			log.Error("publish completion failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue payment event"})
			return false
		}
		log.Info("completion enqueued", zap.String("session_id", completion.SessionID))
		return true
	}

	outcome, err := h.service.ProcessCompletion(c, completion)
	switch {
	case err == nil:
		log.Info("completion processed", zap.String("outcome", string(outcome)))
		return true
	case apperrors.IsNonRetryablePaymentOutcome(err):
		return true
	case errors.Is(err, apperrors.ErrEventInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": "Event is being processed"})
		return false
	default:
		log.Error("completion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return false
	}
}
