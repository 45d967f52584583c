package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"katagaki/internal/metrics"
	"katagaki/internal/model"
	"katagaki/internal/payment"
	"katagaki/internal/repository"
	apperrors "katagaki/pkg/app_errors"
	"katagaki/pkg/logger"

	"go.uber.org/zap"
)

// AnnualRightDescription 結帳畫面顯示的商品說明
const AnnualRightDescription = "年間使用権"

type CheckoutService interface {
	// CreateSession 以資料庫中的價格建立結帳，origin 用於組出完成與取消的網址
	CreateSession(ctx context.Context, principal model.Principal, req model.CheckoutRequest, origin string) (*model.CheckoutSession, error)
}

type CheckoutServiceImpl struct {
	titleRepo repository.TitleRepository
	gateway   payment.Gateway
	currency  string
	metrics   *metrics.Metrics
}

func NewCheckoutService(
	titleRepo repository.TitleRepository,
	gateway payment.Gateway,
	currency string,
	m *metrics.Metrics,
) CheckoutService {
	return &CheckoutServiceImpl{
		titleRepo: titleRepo,
		gateway:   gateway,
		currency:  currency,
		metrics:   m,
	}
}

func (s *CheckoutServiceImpl) CreateSession(ctx context.Context, principal model.Principal, req model.CheckoutRequest, origin string) (*model.CheckoutSession, error) {
	session, err := s.createSession(ctx, principal, req, origin)
	s.record(err)
	return session, err
}

func (s *CheckoutServiceImpl) createSession(ctx context.Context, principal model.Principal, req model.CheckoutRequest, origin string) (*model.CheckoutSession, error) {
	if err := requireUser(principal); err != nil {
		return nil, err
	}
	if err := s.gateway.Ready(); err != nil {
		return nil, err
	}
	if req.TitleID == "" {
		return nil, apperrors.ErrInvalidInput
	}

	// 1. 重新讀取肩書き，價格與狀態以資料庫為準
	title, err := s.titleRepo.FindByID(ctx, req.TitleID)
	if err != nil {
		return nil, err
	}
	if !title.IsPurchasable() {
		return nil, apperrors.ErrTitleNotAvailable
	}
	if req.Price != nil && *req.Price != title.BasePrice {
		return nil, apperrors.ErrPriceMismatch
	}

	// 2. 建立 Stripe Checkout
	origin = strings.TrimRight(origin, "/")
	session, err := s.gateway.CreateCheckoutSession(ctx, model.CheckoutSessionParams{
		TitleID:     title.ID,
		UserID:      principal.UserID,
		ProductName: title.Name,
		Description: AnnualRightDescription,
		UnitAmount:  title.BasePrice,
		Currency:    s.currency,
		SuccessURL:  origin + "/purchase/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   fmt.Sprintf("%s/titles/%s", origin, url.PathEscape(title.ID)),
	})
	if err != nil {
		return nil, err
	}

	logger.WithComponent("service").Info("checkout session created",
		zap.String("session_id", session.SessionID),
		zap.String("title_id", title.ID),
		zap.String("user_id", principal.UserID),
		zap.Int64("amount", title.BasePrice),
	)
	return session, nil
}

func (s *CheckoutServiceImpl) record(err error) {
	if s.metrics == nil {
		return
	}
	result := "created"
	if err != nil {
		result = "failed"
	}
	s.metrics.CheckoutSessions.WithLabelValues(result).Inc()
}
