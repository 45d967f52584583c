package repository

import (
	"context"
	"errors"
	"time"

	"katagaki/internal/database"
	"katagaki/internal/model"
	apperrors "katagaki/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProposalRepository interface {
	Create(ctx context.Context, params model.CreateProposalParams) (*model.Proposal, error)
	List(ctx context.Context, status model.ProposalStatus) ([]*model.Proposal, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Proposal, error)
	FindByID(ctx context.Context, id string) (*model.Proposal, error)
	// Review 只更新仍為 pending 的提案，已審核過回傳 ErrProposalAlreadyReviewed
	Review(ctx context.Context, id string, status model.ProposalStatus, reviewer string, at time.Time) (*model.Proposal, error)
	Delete(ctx context.Context, id string) error
}

type ProposalRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewProposalRepository(pool *pgxpool.Pool) ProposalRepository {
	return &ProposalRepositoryImpl{
		pool: pool,
	}
}

const proposalColumns = `id, user_id, proposed_title, proposal_reason, status,
		proposed_at, reviewed_at, reviewed_by`

func scanProposal(row pgx.Row) (*model.Proposal, error) {
	var proposal model.Proposal
	if err := row.Scan(
		&proposal.ID,
		&proposal.UserID,
		&proposal.ProposedTitle,
		&proposal.ProposalReason,
		&proposal.Status,
		&proposal.ProposedAt,
		&proposal.ReviewedAt,
		&proposal.ReviewedBy,
	); err != nil {
		return nil, err
	}
	return &proposal, nil
}

func collectProposals(rows pgx.Rows) ([]*model.Proposal, error) {
	defer rows.Close()

	proposals := make([]*model.Proposal, 0)
	for rows.Next() {
		proposal, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		proposals = append(proposals, proposal)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapConnError(err)
	}
	return proposals, nil
}

func (r *ProposalRepositoryImpl) Create(ctx context.Context, params model.CreateProposalParams) (*model.Proposal, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO proposals (user_id, proposed_title, proposal_reason, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING ` + proposalColumns

	proposal, err := scanProposal(db.QueryRow(ctx, query, params.UserID, params.ProposedTitle, params.ProposalReason))
	if err != nil {
		return nil, database.MapConnError(err)
	}
	return proposal, nil
}

func (r *ProposalRepositoryImpl) List(ctx context.Context, status model.ProposalStatus) ([]*model.Proposal, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + proposalColumns + `
		FROM proposals
		WHERE ($1::text = '' OR status = $1::text)
		ORDER BY proposed_at DESC
	`

	rows, err := db.Query(ctx, query, string(status))
	if err != nil {
		return nil, database.MapConnError(err)
	}
	return collectProposals(rows)
}

func (r *ProposalRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*model.Proposal, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE user_id = $1 ORDER BY proposed_at DESC`

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, database.MapConnError(err)
	}
	return collectProposals(rows)
}

func (r *ProposalRepositoryImpl) FindByID(ctx context.Context, id string) (*model.Proposal, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	proposal, err := scanProposal(db.QueryRow(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, apperrors.ErrProposalNotFound)
	}
	return proposal, nil
}

func (r *ProposalRepositoryImpl) Review(ctx context.Context, id string, status model.ProposalStatus, reviewer string, at time.Time) (*model.Proposal, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE proposals
		SET status = $1, reviewed_at = $2, reviewed_by = $3
		WHERE id = $4 AND status = 'pending'
		RETURNING ` + proposalColumns

	proposal, err := scanProposal(db.QueryRow(ctx, query, status, at, reviewer, id))
	if err == nil {
		return proposal, nil
	}
	if err = mapError(err, apperrors.ErrProposalNotFound); !errors.Is(err, apperrors.ErrProposalNotFound) {
		return nil, err
	}

	// 沒有更新到任何列：區分不存在與已審核
	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, apperrors.ErrProposalAlreadyReviewed
}

func (r *ProposalRepositoryImpl) Delete(ctx context.Context, id string) error {
	db, err := conn(r.pool)
	if err != nil {
		return err
	}

	result, err := db.Exec(ctx, `DELETE FROM proposals WHERE id = $1`, id)
	if err != nil {
		return mapError(err, apperrors.ErrProposalNotFound)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrProposalNotFound
	}
	return nil
}
