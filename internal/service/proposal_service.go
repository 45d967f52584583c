package service

import (
	"context"
	"strings"
	"time"

	"katagaki/internal/model"
	"katagaki/internal/repository"
	apperrors "katagaki/pkg/app_errors"
	"katagaki/pkg/logger"

	"go.uber.org/zap"
)

type ProposalService interface {
	Submit(ctx context.Context, principal model.Principal, proposedTitle, reason string) (*model.Proposal, error)
	ListMine(ctx context.Context, principal model.Principal) ([]*model.Proposal, error)
	List(ctx context.Context, principal model.Principal, status model.ProposalStatus) ([]*model.Proposal, error)
	// Review 將 pending 的提案改為 approved 或 rejected，並記錄審核者與時間
	Review(ctx context.Context, principal model.Principal, id string, status model.ProposalStatus) (*model.Proposal, error)
	// TitleDraft 核准後的提案可帶入肩書き建立表單
	TitleDraft(ctx context.Context, principal model.Principal, id string) (*model.TitleDraft, error)
	Delete(ctx context.Context, principal model.Principal, id string) error
}

type ProposalServiceImpl struct {
	repo repository.ProposalRepository
	now  func() time.Time
}

func NewProposalService(repo repository.ProposalRepository) ProposalService {
	return &ProposalServiceImpl{repo: repo, now: time.Now}
}

func (s *ProposalServiceImpl) Submit(ctx context.Context, principal model.Principal, proposedTitle, reason string) (*model.Proposal, error) {
	if err := requireUser(principal); err != nil {
		return nil, err
	}
	proposedTitle = strings.TrimSpace(proposedTitle)
	reason = strings.TrimSpace(reason)
	if proposedTitle == "" || reason == "" {
		return nil, apperrors.ErrInvalidInput
	}

	return s.repo.Create(ctx, model.CreateProposalParams{
		UserID:         principal.UserID,
		ProposedTitle:  proposedTitle,
		ProposalReason: reason,
	})
}

func (s *ProposalServiceImpl) ListMine(ctx context.Context, principal model.Principal) ([]*model.Proposal, error) {
	if err := requireUser(principal); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, principal.UserID)
}

func (s *ProposalServiceImpl) List(ctx context.Context, principal model.Principal, status model.ProposalStatus) ([]*model.Proposal, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	if status != "" && !status.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.List(ctx, status)
}

func (s *ProposalServiceImpl) Review(ctx context.Context, principal model.Principal, id string, status model.ProposalStatus) (*model.Proposal, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	if !model.ProposalStatusPending.CanTransitionTo(status) {
		return nil, apperrors.ErrInvalidInput
	}

	proposal, err := s.repo.Review(ctx, id, status, principal.UserID, s.now().UTC())
	if err != nil {
		return nil, err
	}

	logger.WithComponent("service").Info("proposal reviewed",
		zap.String("proposal_id", id),
		zap.String("status", string(status)),
		zap.String("reviewed_by", principal.UserID),
	)
	return proposal, nil
}

func (s *ProposalServiceImpl) TitleDraft(ctx context.Context, principal model.Principal, id string) (*model.TitleDraft, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}

	proposal, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if proposal.Status != model.ProposalStatusApproved {
		return nil, apperrors.ErrProposalNotApproved
	}

	draft := model.DraftFromProposal(proposal)
	return &draft, nil
}

func (s *ProposalServiceImpl) Delete(ctx context.Context, principal model.Principal, id string) error {
	if err := requireAdmin(principal); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
