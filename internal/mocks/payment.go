package mocks

import (
	"context"
	"time"

	"katagaki/internal/cache"
	"katagaki/internal/model"
	"katagaki/internal/payment"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type GatewayMock struct {
	mock.Mock
}

func NewGatewayMock() *GatewayMock {
	return &GatewayMock{}
}

func (m *GatewayMock) Ready() error {
	args := m.Called()
	return args.Error(0)
}

func (m *GatewayMock) CreateCheckoutSession(ctx context.Context, params model.CheckoutSessionParams) (*model.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutSession), args.Error(1)
}

func (m *GatewayMock) ParseEvent(payload []byte, signature string) (*payment.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}

func (m *GatewayMock) Refund(ctx context.Context, paymentIntentID string, idempotencyKey string) error {
	args := m.Called(ctx, paymentIntentID, idempotencyKey)
	return args.Error(0)
}

type PaymentEventLogMock struct {
	mock.Mock
}

func NewPaymentEventLogMock() *PaymentEventLogMock {
	return &PaymentEventLogMock{}
}

func (m *PaymentEventLogMock) Acquire(ctx context.Context, eventID string, owner string, lease time.Duration) (cache.EventState, error) {
	args := m.Called(ctx, eventID, owner, lease)
	return args.Get(0).(cache.EventState), args.Error(1)
}

func (m *PaymentEventLogMock) Complete(ctx context.Context, eventID string, owner string, retention time.Duration) error {
	args := m.Called(ctx, eventID, owner, retention)
	return args.Error(0)
}

func (m *PaymentEventLogMock) Release(ctx context.Context, eventID string, owner string) error {
	args := m.Called(ctx, eventID, owner)
	return args.Error(0)
}

// TxManager 直接執行 fn，tx 為 nil；repository 皆為 mock 時使用
type TxManager struct {
	Calls int
	Err   error
}

func (m *TxManager) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	m.Calls++
	if m.Err != nil {
		return m.Err
	}
	return fn(nil)
}
