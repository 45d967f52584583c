package service

import (
	"context"
	"time"

	"katagaki/internal/model"
	"katagaki/internal/repository"
	apperrors "katagaki/pkg/app_errors"
	"katagaki/pkg/logger"

	"go.uber.org/zap"
)

type RightService interface {
	// ListMine 自己的使用權，附帶肩書き與讀取時計算的狀態
	ListMine(ctx context.Context, principal model.Principal) ([]*model.RightView, error)
	List(ctx context.Context, principal model.Principal) ([]*model.RightView, error)
	// FindBySession 結帳完成頁查詢 webhook 是否已授權
	FindBySession(ctx context.Context, principal model.Principal, sessionID string) (*model.RightView, error)
	Revoke(ctx context.Context, principal model.Principal, id string) (*model.Right, error)
}

type RightServiceImpl struct {
	repo      repository.RightRepository
	titleRepo repository.TitleRepository
	now       func() time.Time
}

func NewRightService(repo repository.RightRepository, titleRepo repository.TitleRepository) RightService {
	return &RightServiceImpl{
		repo:      repo,
		titleRepo: titleRepo,
		now:       time.Now,
	}
}

func (s *RightServiceImpl) ListMine(ctx context.Context, principal model.Principal) ([]*model.RightView, error) {
	if err := requireUser(principal); err != nil {
		return nil, err
	}
	rights, err := s.repo.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, rights)
}

func (s *RightServiceImpl) List(ctx context.Context, principal model.Principal) ([]*model.RightView, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	rights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, rights)
}

func (s *RightServiceImpl) FindBySession(ctx context.Context, principal model.Principal, sessionID string) (*model.RightView, error) {
	if err := requireUser(principal); err != nil {
		return nil, err
	}
	right, err := s.repo.FindByPaymentReference(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// 不洩漏他人的購買紀錄
	if right.UserID != principal.UserID && !principal.IsAdmin() {
		return nil, apperrors.ErrRightNotFound
	}

	views, err := s.toViews(ctx, []*model.Right{right})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *RightServiceImpl) Revoke(ctx context.Context, principal model.Principal, id string) (*model.Right, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	right, err := s.repo.SetActive(ctx, id, false)
	if err != nil {
		return nil, err
	}

	logger.WithComponent("service").Info("right revoked",
		zap.String("right_id", id),
		zap.String("revoked_by", principal.UserID),
	)
	return right, nil
}

func (s *RightServiceImpl) toViews(ctx context.Context, rights []*model.Right) ([]*model.RightView, error) {
	ids := make([]string, 0, len(rights))
	for _, right := range rights {
		ids = append(ids, right.TitleID)
	}
	titles, err := s.titleRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]*model.RightView, 0, len(rights))
	for _, right := range rights {
		views = append(views, &model.RightView{
			Right:    *right,
			Title:    titles[right.TitleID],
			Standing: right.Standing(now),
			DaysLeft: right.DaysLeft(now),
		})
	}
	return views, nil
}
