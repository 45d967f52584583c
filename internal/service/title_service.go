package service

import (
	"context"
	"fmt"
	"time"

	"katagaki/internal/database"
	"katagaki/internal/metrics"
	"katagaki/internal/model"
	"katagaki/internal/repository"
	apperrors "katagaki/pkg/app_errors"
	"katagaki/pkg/logger"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TitleService interface {
	Search(ctx context.Context, filter model.TitleFilter) ([]*model.Title, error)
	GetByID(ctx context.Context, id string) (*model.Title, error)
	Holders(ctx context.Context, id string) ([]*model.TitleHolder, error)
	// Create 在同一個交易中取得公認番號並建立肩書き
	Create(ctx context.Context, principal model.Principal, params model.CreateTitleParams) (*model.Title, error)
	Update(ctx context.Context, principal model.Principal, id string, params model.UpdateTitleParams) (*model.Title, error)
	Delete(ctx context.Context, principal model.Principal, id string) error
	// VerifyNumbering 確認番號計數器沒有落後於已發出的最大番號
	VerifyNumbering(ctx context.Context) error
}

type TitleServiceImpl struct {
	txManager    database.TxManager
	repo         repository.TitleRepository
	sequenceRepo repository.SequenceRepository
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewTitleService(
	txManager database.TxManager,
	repo repository.TitleRepository,
	sequenceRepo repository.SequenceRepository,
	m *metrics.Metrics,
) TitleService {
	return &TitleServiceImpl{
		txManager:    txManager,
		repo:         repo,
		sequenceRepo: sequenceRepo,
		metrics:      m,
		now:          time.Now,
	}
}

func (s *TitleServiceImpl) Search(ctx context.Context, filter model.TitleFilter) ([]*model.Title, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.Search(ctx, filter)
}

func (s *TitleServiceImpl) GetByID(ctx context.Context, id string) (*model.Title, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TitleServiceImpl) Holders(ctx context.Context, id string) ([]*model.TitleHolder, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListHolders(ctx, id, s.now().UTC())
}

func (s *TitleServiceImpl) Create(ctx context.Context, principal model.Principal, params model.CreateTitleParams) (*model.Title, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	if params.Status == "" {
		params.Status = model.TitleStatusDraft
	}
	if !params.Validate() {
		return nil, apperrors.ErrInvalidInput
	}

	var title *model.Title
	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		// 計數器列在交易結束前保持鎖定，同時建立的肩書き會依序取得番號
		seq, err := s.sequenceRepo.Next(ctx, tx, model.OfficialNumberSequence)
		if err != nil {
			return fmt.Errorf("allocate official number: %w", err)
		}

		title, err = s.repo.Create(ctx, tx, params, model.FormatOfficialNumber(seq))
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TitlesCreated.Inc()
	}
	logger.WithComponent("service").Info("title created",
		zap.String("title_id", title.ID),
		zap.String("official_number", title.OfficialNumber),
		zap.String("created_by", principal.UserID),
	)
	return title, nil
}

func (s *TitleServiceImpl) Update(ctx context.Context, principal model.Principal, id string, params model.UpdateTitleParams) (*model.Title, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	if params.IsEmpty() || !params.Validate() {
		return nil, apperrors.ErrInvalidInput
	}
	return s.repo.Update(ctx, id, params)
}

func (s *TitleServiceImpl) Delete(ctx context.Context, principal model.Principal, id string) error {
	if err := requireAdmin(principal); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *TitleServiceImpl) VerifyNumbering(ctx context.Context) error {
	latest, err := s.repo.LatestOfficialNumber(ctx)
	if err != nil {
		return fmt.Errorf("load latest official number: %w", err)
	}
	if latest == "" {
		return nil
	}

	issued, ok := model.ParseOfficialNumber(latest)
	if !ok {
		return fmt.Errorf("%w: unparseable official number %q", apperrors.ErrConfiguration, latest)
	}

	current, err := s.sequenceRepo.Current(ctx, model.OfficialNumberSequence)
	if err != nil {
		return fmt.Errorf("load official number counter: %w", err)
	}
	if current < issued {
		// 計數器落後時下一個番號會和既有的重複
		return fmt.Errorf("%w: official number counter %d is behind issued %s", apperrors.ErrConfiguration, current, latest)
	}
	return nil
}
