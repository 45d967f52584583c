package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"katagaki/config"
	"katagaki/internal/cache"
	"katagaki/internal/database"
	"katagaki/internal/metrics"
	"katagaki/internal/model"
	"katagaki/internal/payment"
	"katagaki/internal/repository"
	apperrors "katagaki/pkg/app_errors"
	"katagaki/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type EntitlementService interface {
	// GrantFromCheckout 在單一交易中建立使用權，並更新肩書き的購買數與狀態
	GrantFromCheckout(ctx context.Context, completion *model.CheckoutCompletion) (*model.Right, error)
	// ProcessCompletion 處理一次付款完成事件：去重、授權，售罄時退款
	ProcessCompletion(ctx context.Context, completion *model.CheckoutCompletion) (model.GrantOutcome, error)
}

type EntitlementServiceImpl struct {
	txManager database.TxManager
	titleRepo repository.TitleRepository
	rightRepo repository.RightRepository
	userRepo  repository.UserRepository
	gateway   payment.Gateway
	eventLog  cache.PaymentEventLog
	cfg       config.WebhookConfig
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

// NewEntitlementService eventLog 可為 nil，此時只依靠資料庫的唯一鍵去重
func NewEntitlementService(
	txManager database.TxManager,
	titleRepo repository.TitleRepository,
	rightRepo repository.RightRepository,
	userRepo repository.UserRepository,
	gateway payment.Gateway,
	eventLog cache.PaymentEventLog,
	cfg config.WebhookConfig,
	m *metrics.Metrics,
) EntitlementService {
	return &EntitlementServiceImpl{
		txManager: txManager,
		titleRepo: titleRepo,
		rightRepo: rightRepo,
		userRepo:  userRepo,
		gateway:   gateway,
		eventLog:  eventLog,
		cfg:       cfg,
		metrics:   m,
		log:       logger.WithComponent("entitlement"),
		now:       time.Now,
	}
}

func (s *EntitlementServiceImpl) GrantFromCheckout(ctx context.Context, completion *model.CheckoutCompletion) (*model.Right, error) {
	if completion == nil || !completion.Validate() {
		return nil, apperrors.ErrMalformedPaymentEvent
	}

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.GrantDuration.Observe(time.Since(start).Seconds())
		}
	}()

	var granted *model.Right
	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		// 1. 先鎖住肩書き，同一肩書き的授權依序進行
		if _, err := s.titleRepo.FindByIDWithLock(ctx, tx, completion.TitleID); err != nil {
			return err
		}

		// 2. 取得鎖之後再查付款參照，才能看到前一筆已提交的授權
		_, err := s.rightRepo.FindByPaymentReferenceTx(ctx, tx, completion.SessionID)
		if err == nil {
			return apperrors.ErrAlreadyGranted
		}
		if !errors.Is(err, apperrors.ErrRightNotFound) {
			return err
		}

		// 3. 名額內才增加購買數，到達上限時轉為 sold_out
		if _, err := s.titleRepo.IncrementPurchased(ctx, tx, completion.TitleID); err != nil {
			return err
		}

		// 4. 建立一年期的使用權
		right := model.NewRight(completion.TitleID, completion.UserID, completion.SessionID,
			s.now().UTC().Truncate(time.Microsecond))
		granted, err = s.rightRepo.Create(ctx, tx, right)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RightsGranted.Inc()
	}
	return granted, nil
}

func (s *EntitlementServiceImpl) ProcessCompletion(ctx context.Context, completion *model.CheckoutCompletion) (model.GrantOutcome, error) {
	if completion == nil || !completion.Validate() {
		s.log.Warn("checkout completion missing metadata, dropping", zap.Any("completion", completion))
		s.recordEvent("malformed")
		return "", apperrors.ErrMalformedPaymentEvent
	}

	log := s.log.With(
		zap.String("event_id", completion.EventID),
		zap.String("session_id", completion.SessionID),
		zap.String("title_id", completion.TitleID),
		zap.String("user_id", completion.UserID),
	)

	var outcome model.GrantOutcome
	owner, err := s.acquire(ctx, completion.EventID)
	if err == nil {
		outcome, err = s.apply(ctx, completion, log)
		s.finish(ctx, completion.EventID, owner, err)
	}

	switch {
	case err == nil:
		log.Info("checkout completion processed", zap.String("outcome", string(outcome)))
		s.recordEvent(string(outcome))
	case errors.Is(err, apperrors.ErrAlreadyGranted):
		log.Info("checkout completion already granted")
		s.recordEvent("duplicate")
	case errors.Is(err, apperrors.ErrEventInProgress):
		log.Info("checkout completion in progress elsewhere")
		s.recordEvent("in_progress")
	case errors.Is(err, apperrors.ErrTitleNotFound):
		log.Warn("title missing for completed checkout, lost sale")
		s.recordEvent("title_missing")
	case apperrors.IsNonRetryablePaymentOutcome(err):
		log.Warn("checkout completion dropped", zap.Error(err))
		s.recordEvent("dropped")
	default:
		log.Error("checkout completion failed, will retry", zap.Error(err))
		s.recordEvent("retry")
	}
	return outcome, err
}

func (s *EntitlementServiceImpl) apply(ctx context.Context, completion *model.CheckoutCompletion, log *zap.Logger) (model.GrantOutcome, error) {
	right, err := s.GrantFromCheckout(ctx, completion)
	if err == nil {
		log.Info("right granted", zap.String("right_id", right.ID), zap.Time("end_date", right.EndDate))
		s.linkCustomer(ctx, completion, log)
		return model.GrantOutcomeGranted, nil
	}
	if !errors.Is(err, apperrors.ErrTitleSoldOut) {
		return "", err
	}

	// 付款完成時名額已滿：退款，以 session 作為冪等鍵避免重複退款
	log.Warn("title sold out after payment, refunding", zap.String("payment_intent_id", completion.PaymentIntentID))
	refundErr := s.gateway.Refund(ctx, completion.PaymentIntentID, "oversold-"+completion.SessionID)
	s.recordRefund(refundErr)
	if refundErr != nil {
		if errors.Is(refundErr, apperrors.ErrMalformedPaymentEvent) {
			return "", refundErr
		}
		return "", fmt.Errorf("refund oversold payment: %w", refundErr)
	}
	return model.GrantOutcomeRefunded, nil
}

// linkCustomer 記錄 Stripe customer，失敗不影響授權結果
func (s *EntitlementServiceImpl) linkCustomer(ctx context.Context, completion *model.CheckoutCompletion, log *zap.Logger) {
	if completion.CustomerID == "" || s.userRepo == nil {
		return
	}
	err := s.userRepo.SetStripeCustomerID(ctx, completion.UserID, completion.CustomerID)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		log.Warn("failed to record stripe customer", zap.Error(err))
	}
}

// acquire 取得事件處理權；Redis 無法使用時退回資料庫唯一鍵去重
func (s *EntitlementServiceImpl) acquire(ctx context.Context, eventID string) (string, error) {
	if s.eventLog == nil || eventID == "" {
		return "", nil
	}

	owner := uuid.NewString()
	state, err := s.eventLog.Acquire(ctx, eventID, owner, s.cfg.EventLeaseTTL)
	if err != nil {
		s.log.Warn("payment event log unavailable", zap.String("event_id", eventID), zap.Error(err))
		return "", nil
	}

	switch state {
	case cache.EventDone:
		return "", apperrors.ErrAlreadyGranted
	case cache.EventInProgress:
		return "", apperrors.ErrEventInProgress
	}
	return owner, nil
}

func (s *EntitlementServiceImpl) finish(ctx context.Context, eventID, owner string, err error) {
	if owner == "" {
		return
	}
	// 請求結束後仍要寫回狀態
	ctx = context.WithoutCancel(ctx)

	if err == nil || apperrors.IsNonRetryablePaymentOutcome(err) {
		if completeErr := s.eventLog.Complete(ctx, eventID, owner, s.cfg.EventRetention); completeErr != nil {
			s.log.Warn("failed to mark payment event done", zap.String("event_id", eventID), zap.Error(completeErr))
		}
		return
	}
	if releaseErr := s.eventLog.Release(ctx, eventID, owner); releaseErr != nil {
		s.log.Warn("failed to release payment event", zap.String("event_id", eventID), zap.Error(releaseErr))
	}
}

func (s *EntitlementServiceImpl) recordEvent(outcome string) {
	if s.metrics != nil {
		s.metrics.PaymentEvents.WithLabelValues(payment.EventCheckoutSessionCompleted, outcome).Inc()
	}
}

func (s *EntitlementServiceImpl) recordRefund(err error) {
	if s.metrics == nil {
		return
	}
	result := "refunded"
	if err != nil {
		result = "failed"
	}
	s.metrics.OversoldRefunds.WithLabelValues(result).Inc()
}
