package payment

import (
	"context"
	"fmt"

	"katagaki/internal/model"
	apperrors "katagaki/pkg/app_errors"
)

const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventPaymentIntentSucceeded   = "payment_intent.succeeded"
	EventPaymentIntentFailed      = "payment_intent.payment_failed"
)

var (
	ErrMissingSecretKey     = fmt.Errorf("%w: Stripe configuration error: Missing secret key", apperrors.ErrConfiguration)
	ErrMissingWebhookSecret = fmt.Errorf("%w: Stripe configuration error: Missing webhook secret", apperrors.ErrConfiguration)
)

// Event 已驗證簽章的付款事件
type Event struct {
	ID   string
	Type string
	// Completion 只在 checkout.session.completed 時有值
	Completion *model.CheckoutCompletion
	// PaymentIntentID payment_intent.* 事件的對象
	PaymentIntentID string
}

// Gateway 付款服務商的抽象
type Gateway interface {
	// Ready 未設定 secret key 時回傳 ErrMissingSecretKey
	Ready() error
	CreateCheckoutSession(ctx context.Context, params model.CheckoutSessionParams) (*model.CheckoutSession, error)
	// ParseEvent 驗證簽章並解析事件，簽章不符回傳 ErrSignatureInvalid
	ParseEvent(payload []byte, signature string) (*Event, error)
	// Refund 以 idempotencyKey 退款，重複呼叫不會重複退款
	Refund(ctx context.Context, paymentIntentID string, idempotencyKey string) error
}

// UnconfiguredGateway 未設定 secret key 時使用，所有操作都回傳設定錯誤
type UnconfiguredGateway struct{}

func NewUnconfiguredGateway() Gateway {
	return &UnconfiguredGateway{}
}

func (g *UnconfiguredGateway) Ready() error {
	return ErrMissingSecretKey
}

func (g *UnconfiguredGateway) CreateCheckoutSession(ctx context.Context, params model.CheckoutSessionParams) (*model.CheckoutSession, error) {
	return nil, ErrMissingSecretKey
}

func (g *UnconfiguredGateway) ParseEvent(payload []byte, signature string) (*Event, error) {
	return nil, ErrMissingSecretKey
}

func (g *UnconfiguredGateway) Refund(ctx context.Context, paymentIntentID string, idempotencyKey string) error {
	return ErrMissingSecretKey
}
