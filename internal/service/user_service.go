package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"katagaki/internal/model"
	"katagaki/internal/repository"
	apperrors "katagaki/pkg/app_errors"
	"katagaki/pkg/logger"

	"go.uber.org/zap"
)

const maxProfileTextLength = 500

type UserService interface {
	// Register 登入後建立或更新自己的資料，新使用者一律為 role=user
	Register(ctx context.Context, principal model.Principal, displayName, email string) (*model.User, error)
	GetMe(ctx context.Context, principal model.Principal) (*model.User, error)
	// RoleOf 回傳使用者的角色，尚未註冊時視為 user
	RoleOf(ctx context.Context, userID string) (model.Role, error)
	UpdateProfile(ctx context.Context, principal model.Principal, params model.UpdateProfileParams) (*model.User, error)
	List(ctx context.Context, principal model.Principal, role model.Role) ([]*model.UserSummary, error)
	ChangeRole(ctx context.Context, principal model.Principal, userID string, role model.Role) (*model.User, error)
}

type UserServiceImpl struct {
	repo repository.UserRepository
	now  func() time.Time
}

func NewUserService(repo repository.UserRepository) UserService {
	return &UserServiceImpl{repo: repo, now: time.Now}
}

func (s *UserServiceImpl) Register(ctx context.Context, principal model.Principal, displayName, email string) (*model.User, error) {
	if err := requireUser(principal); err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, model.UpsertUserParams{
		ID:          principal.UserID,
		DisplayName: strings.TrimSpace(displayName),
		Email:       strings.TrimSpace(email),
	})
}

func (s *UserServiceImpl) GetMe(ctx context.Context, principal model.Principal) (*model.User, error) {
	if err := requireUser(principal); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, principal.UserID)
}

func (s *UserServiceImpl) RoleOf(ctx context.Context, userID string) (model.Role, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return model.RoleUser, nil
		}
		return "", err
	}
	return user.Role, nil
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, principal model.Principal, params model.UpdateProfileParams) (*model.User, error) {
	if err := requireUser(principal); err != nil {
		return nil, err
	}
	if params.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}
	if params.PublicProfileText != nil {
		text := strings.TrimSpace(*params.PublicProfileText)
		if len([]rune(text)) > maxProfileTextLength {
			return nil, apperrors.ErrInvalidInput
		}
		params.PublicProfileText = &text
	}
	return s.repo.UpdateProfile(ctx, principal.UserID, params)
}

func (s *UserServiceImpl) List(ctx context.Context, principal model.Principal, role model.Role) ([]*model.UserSummary, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	if role != "" && !role.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.List(ctx, role, s.now().UTC())
}

func (s *UserServiceImpl) ChangeRole(ctx context.Context, principal model.Principal, userID string, role model.Role) (*model.User, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}
	if userID == principal.UserID {
		return nil, apperrors.ErrSelfRoleChange
	}

	user, err := s.repo.UpdateRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	logger.WithComponent("service").Info("user role changed",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.String("changed_by", principal.UserID),
	)
	return user, nil
}
