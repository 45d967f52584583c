package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"katagaki/config"
	"katagaki/internal/model"
	apperrors "katagaki/pkg/app_errors"
	"katagaki/pkg/logger"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const (
	MetadataTitleID = "titleId"
	MetadataUserID  = "userId"

	signatureTolerance = 300 * time.Second
)

type StripeGateway struct {
	api           *client.API
	webhookSecret string
	log           *zap.Logger
}

// NewGateway 依設定建立 gateway，secret key 為空時回傳 UnconfiguredGateway
func NewGateway(cfg config.StripeConfig, backends *stripe.Backends) Gateway {
	if cfg.SecretKey == "" {
		logger.WithComponent("payment").Warn("stripe secret key not configured")
		return NewUnconfiguredGateway()
	}
	return NewStripeGateway(cfg.SecretKey, cfg.WebhookSecret, backends)
}

func NewStripeGateway(secretKey, webhookSecret string, backends *stripe.Backends) *StripeGateway {
	return &StripeGateway{
		api:           client.New(secretKey, backends),
		webhookSecret: webhookSecret,
		log:           logger.WithComponent("payment"),
	}
}

func (g *StripeGateway) Ready() error {
	return nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, params model.CheckoutSessionParams) (*model.CheckoutSession, error) {
	sessionParams := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(params.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(params.ProductName),
						Description: stripe.String(params.Description),
					},
					UnitAmount: stripe.Int64(params.UnitAmount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(params.SuccessURL),
		CancelURL:         stripe.String(params.CancelURL),
		ClientReferenceID: stripe.String(params.UserID),
	}
	sessionParams.Context = ctx
	sessionParams.AddMetadata(MetadataTitleID, params.TitleID)
	sessionParams.AddMetadata(MetadataUserID, params.UserID)

	session, err := g.api.CheckoutSessions.New(sessionParams)
	if err != nil {
		return nil, upstreamError(err)
	}

	return &model.CheckoutSession{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

func (g *StripeGateway) ParseEvent(payload []byte, signature string) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, ErrMissingWebhookSecret
	}

	stripeEvent, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{
			Tolerance:                signatureTolerance,
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSignatureInvalid, err)
	}

	event := &Event{
		ID:   stripeEvent.ID,
		Type: string(stripeEvent.Type),
	}
	if stripeEvent.Data == nil {
		return event, nil
	}

	switch event.Type {
	case EventCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(stripeEvent.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedPaymentEvent, err)
		}
		event.Completion = completionFromSession(stripeEvent.ID, &session)
	case EventPaymentIntentSucceeded, EventPaymentIntentFailed:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(stripeEvent.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedPaymentEvent, err)
		}
		event.PaymentIntentID = intent.ID
	}

	return event, nil
}

func completionFromSession(eventID string, session *stripe.CheckoutSession) *model.CheckoutCompletion {
	completion := &model.CheckoutCompletion{
		EventID:   eventID,
		SessionID: session.ID,
		TitleID:   session.Metadata[MetadataTitleID],
		UserID:    session.Metadata[MetadataUserID],
	}
	if session.PaymentIntent != nil {
		completion.PaymentIntentID = session.PaymentIntent.ID
	}
	if session.Customer != nil {
		completion.CustomerID = session.Customer.ID
	}
	return completion
}

func (g *StripeGateway) Refund(ctx context.Context, paymentIntentID string, idempotencyKey string) error {
	if paymentIntentID == "" {
		return fmt.Errorf("%w: missing payment intent", apperrors.ErrMalformedPaymentEvent)
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentIntentID),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)
	params.AddMetadata("reason", "sold_out")

	refund, err := g.api.Refunds.New(params)
	if err != nil {
		return upstreamError(err)
	}

	g.log.Info("payment refunded",
		zap.String("refund_id", refund.ID),
		zap.String("payment_intent_id", paymentIntentID),
	)
	return nil
}

// upstreamError 把 stripe 的錯誤轉成 UpstreamError，保留 code 與 type
func upstreamError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return &apperrors.UpstreamError{
			StatusCode: stripeErr.HTTPStatusCode,
			Code:       string(stripeErr.Code),
			Type:       string(stripeErr.Type),
			Message:    stripeErr.Msg,
			Err:        err,
		}
	}
	return &apperrors.UpstreamError{Message: err.Error(), Err: err}
}
