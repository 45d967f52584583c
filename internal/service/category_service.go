package service

import (
	"context"
	"strings"

	"katagaki/internal/model"
	"katagaki/internal/repository"
	apperrors "katagaki/pkg/app_errors"
)

type CategoryService interface {
	List(ctx context.Context) ([]*model.Category, error)
	GetByID(ctx context.Context, id string) (*model.Category, error)
	Create(ctx context.Context, principal model.Principal, params model.CreateCategoryParams) (*model.Category, error)
	Update(ctx context.Context, principal model.Principal, id string, params model.UpdateCategoryParams) (*model.Category, error)
	Delete(ctx context.Context, principal model.Principal, id string) error
}

type CategoryServiceImpl struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &CategoryServiceImpl{repo: repo}
}

func (s *CategoryServiceImpl) List(ctx context.Context) ([]*model.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoryServiceImpl) GetByID(ctx context.Context, id string) (*model.Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CategoryServiceImpl) Create(ctx context.Context, principal model.Principal, params model.CreateCategoryParams) (*model.Category, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	params.NameJa = strings.TrimSpace(params.NameJa)
	if params.NameJa == "" {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.Create(ctx, params)
}

func (s *CategoryServiceImpl) Update(ctx context.Context, principal model.Principal, id string, params model.UpdateCategoryParams) (*model.Category, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	if params.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}
	if params.NameJa != nil {
		name := strings.TrimSpace(*params.NameJa)
		if name == "" {
			return nil, apperrors.ErrInvalidInput
		}
		params.NameJa = &name
	}
	return s.repo.Update(ctx, id, params)
}

func (s *CategoryServiceImpl) Delete(ctx context.Context, principal model.Principal, id string) error {
	if err := requireAdmin(principal); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
