package payment_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"katagaki/config"
	"katagaki/internal/model"
	"katagaki/internal/payment"
	apperrors "katagaki/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func sign(payload string, secret string) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header
}

func completedPayload(metadata string) string {
	return fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_1",
			"object": "checkout.session",
			"payment_intent": "pi_1",
			"customer": "cus_1",
			"metadata": %s
		}}
	}`, metadata)
}

func TestStripeGateway_ParseEvent(t *testing.T) {
	gateway := payment.NewStripeGateway("sk_test_dummy", testWebhookSecret, nil)

	t.Run("Success - checkout completion", func(t *testing.T) {
		payload := completedPayload(`{"titleId": "T1", "userId": "U1"}`)

		event, err := gateway.ParseEvent([]byte(payload), sign(payload, testWebhookSecret))
		require.NoError(t, err)
		assert.Equal(t, payment.EventCheckoutSessionCompleted, event.Type)
		assert.Equal(t, &model.CheckoutCompletion{
			EventID:         "evt_1",
			SessionID:       "cs_1",
			TitleID:         "T1",
			UserID:          "U1",
			PaymentIntentID: "pi_1",
			CustomerID:      "cus_1",
		}, event.Completion)
	})

	t.Run("Success - missing metadata is returned for the caller to judge", func(t *testing.T) {
		payload := completedPayload(`{}`)

		event, err := gateway.ParseEvent([]byte(payload), sign(payload, testWebhookSecret))
		require.NoError(t, err)
		assert.False(t, event.Completion.Validate())
	})

	t.Run("Success - payment intent event", func(t *testing.T) {
		payload := `{"id":"evt_2","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_9","object":"payment_intent"}}}`

		event, err := gateway.ParseEvent([]byte(payload), sign(payload, testWebhookSecret))
		require.NoError(t, err)
		assert.Equal(t, "pi_9", event.PaymentIntentID)
		assert.Nil(t, event.Completion)
	})

	t.Run("Failed - wrong secret", func(t *testing.T) {
		payload := completedPayload(`{}`)

		_, err := gateway.ParseEvent([]byte(payload), sign(payload, "whsec_other"))
		assert.ErrorIs(t, err, apperrors.ErrSignatureInvalid)
	})

	t.Run("Failed - tampered payload", func(t *testing.T) {
		payload := completedPayload(`{"titleId": "T1", "userId": "U1"}`)
		header := sign(payload, testWebhookSecret)

		_, err := gateway.ParseEvent([]byte(completedPayload(`{"titleId": "T2", "userId": "U1"}`)), header)
		assert.ErrorIs(t, err, apperrors.ErrSignatureInvalid)
	})

	t.Run("Failed - webhook secret not configured", func(t *testing.T) {
		unconfigured := payment.NewStripeGateway("sk_test_dummy", "", nil)

		_, err := unconfigured.ParseEvent([]byte(`{}`), "t=1,v1=x")
		assert.ErrorIs(t, err, payment.ErrMissingWebhookSecret)
		assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	})
}

func newStripeBackend(t *testing.T, handler http.HandlerFunc) *stripe.Backends {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
}

func TestStripeGateway_CreateCheckoutSession(t *testing.T) {
	params := model.CheckoutSessionParams{
		TitleID:     "T1",
		UserID:      "U1",
		ProductName: "技術顧問",
		Description: "公認番号: ktgk_000001",
		UnitAmount:  10000,
		Currency:    "jpy",
		SuccessURL:  "https://katagaki.example/purchase/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   "https://katagaki.example/titles/T1",
	}

	t.Run("Success", func(t *testing.T) {
		backends := newStripeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "payment", r.PostForm.Get("mode"))
			assert.Equal(t, "10000", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
			assert.Equal(t, "jpy", r.PostForm.Get("line_items[0][price_data][currency]"))
			assert.Equal(t, "T1", r.PostForm.Get("metadata[titleId]"))
			assert.Equal(t, "U1", r.PostForm.Get("metadata[userId]"))
			assert.Equal(t, "U1", r.PostForm.Get("client_reference_id"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`))
		})
		gateway := payment.NewStripeGateway("sk_test_dummy", testWebhookSecret, backends)

		session, err := gateway.CreateCheckoutSession(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, "cs_test_1", session.SessionID)
		assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)
	})

	t.Run("Failed - stripe rejects request", func(t *testing.T) {
		backends := newStripeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","code":"parameter_invalid_integer","message":"Invalid integer: abc"}}`))
		})
		gateway := payment.NewStripeGateway("sk_test_dummy", testWebhookSecret, backends)

		_, err := gateway.CreateCheckoutSession(context.Background(), params)

		var upstream *apperrors.UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
		assert.Equal(t, "parameter_invalid_integer", upstream.Code)
		assert.Equal(t, "invalid_request_error", upstream.Type)
		assert.Equal(t, "Invalid integer: abc", upstream.Message)
	})
}

func TestStripeGateway_Refund(t *testing.T) {
	t.Run("Success - idempotency key forwarded", func(t *testing.T) {
		backends := newStripeBackend(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/refunds", r.URL.Path)
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "pi_1", r.PostForm.Get("payment_intent"))
			assert.Equal(t, "oversold-cs_1", r.Header.Get("Idempotency-Key"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"re_1","object":"refund","status":"succeeded"}`))
		})
		gateway := payment.NewStripeGateway("sk_test_dummy", testWebhookSecret, backends)

		require.NoError(t, gateway.Refund(context.Background(), "pi_1", "oversold-cs_1"))
	})

	t.Run("Failed - missing payment intent", func(t *testing.T) {
		gateway := payment.NewStripeGateway("sk_test_dummy", testWebhookSecret, nil)

		err := gateway.Refund(context.Background(), "", "oversold-cs_1")
		assert.ErrorIs(t, err, apperrors.ErrMalformedPaymentEvent)
	})
}

func TestNewGateway(t *testing.T) {
	t.Run("Unconfigured without secret key", func(t *testing.T) {
		gateway := payment.NewGateway(config.StripeConfig{}, nil)

		assert.ErrorIs(t, gateway.Ready(), payment.ErrMissingSecretKey)
		_, err := gateway.CreateCheckoutSession(context.Background(), model.CheckoutSessionParams{})
		assert.ErrorIs(t, err, payment.ErrMissingSecretKey)
		assert.ErrorIs(t, gateway.Refund(context.Background(), "pi_1", "k"), payment.ErrMissingSecretKey)
	})

	t.Run("Configured", func(t *testing.T) {
		gateway := payment.NewGateway(config.StripeConfig{SecretKey: "sk_test_dummy", WebhookSecret: testWebhookSecret}, nil)

		assert.NoError(t, gateway.Ready())
	})
}
