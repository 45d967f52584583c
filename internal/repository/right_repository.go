package repository

import (
	"context"

	"katagaki/internal/database"
	"katagaki/internal/model"
	apperrors "katagaki/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RightRepository interface {
	List(ctx context.Context) ([]*model.Right, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Right, error)
	FindByID(ctx context.Context, id string) (*model.Right, error)
	FindByPaymentReference(ctx context.Context, reference string) (*model.Right, error)
	SetActive(ctx context.Context, id string, active bool) (*model.Right, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, right *model.Right) (*model.Right, error)
	FindByPaymentReferenceTx(ctx context.Context, tx pgx.Tx, reference string) (*model.Right, error)
}

type RightRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewRightRepository(pool *pgxpool.Pool) RightRepository {
	return &RightRepositoryImpl{
		pool: pool,
	}
}

const rightColumns = `id, title_id, user_id, start_date, end_date, is_active, payment_reference, created_at`

func scanRight(row pgx.Row) (*model.Right, error) {
	var right model.Right
	if err := row.Scan(
		&right.ID,
		&right.TitleID,
		&right.UserID,
		&right.StartDate,
		&right.EndDate,
		&right.IsActive,
		&right.PaymentReference,
		&right.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &right, nil
}

func collectRights(rows pgx.Rows) ([]*model.Right, error) {
	defer rows.Close()

	rights := make([]*model.Right, 0)
	for rows.Next() {
		right, err := scanRight(rows)
		if err != nil {
			return nil, err
		}
		rights = append(rights, right)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapConnError(err)
	}
	return rights, nil
}

// Create 寫入使用權；同一個付款參照重複寫入時回傳 ErrAlreadyGranted
func (r *RightRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, right *model.Right) (*model.Right, error) {
	query := `
		INSERT INTO rights (title_id, user_id, start_date, end_date, is_active, payment_reference)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + rightColumns

	created, err := scanRight(tx.QueryRow(ctx, query,
		right.TitleID, right.UserID, right.StartDate, right.EndDate, right.IsActive, right.PaymentReference,
	))
	if err != nil {
		switch {
		case database.IsPgError(err, database.UniqueViolation):
			return nil, apperrors.ErrAlreadyGranted
		case database.IsPgError(err, database.ForeignKeyViolation):
			return nil, apperrors.ErrTitleNotFound
		}
		return nil, database.MapConnError(err)
	}
	return created, nil
}

func (r *RightRepositoryImpl) List(ctx context.Context) ([]*model.Right, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(ctx, `SELECT `+rightColumns+` FROM rights ORDER BY created_at DESC`)
	if err != nil {
		return nil, database.MapConnError(err)
	}
	return collectRights(rows)
}

func (r *RightRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*model.Right, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + rightColumns + ` FROM rights WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, database.MapConnError(err)
	}
	return collectRights(rows)
}

func (r *RightRepositoryImpl) FindByID(ctx context.Context, id string) (*model.Right, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	right, err := scanRight(db.QueryRow(ctx, `SELECT `+rightColumns+` FROM rights WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, apperrors.ErrRightNotFound)
	}
	return right, nil
}

func (r *RightRepositoryImpl) FindByPaymentReference(ctx context.Context, reference string) (*model.Right, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}
	return findRightByPaymentReference(ctx, db, reference)
}

func (r *RightRepositoryImpl) FindByPaymentReferenceTx(ctx context.Context, tx pgx.Tx, reference string) (*model.Right, error) {
	return findRightByPaymentReference(ctx, tx, reference)
}

func findRightByPaymentReference(ctx context.Context, db dbtx, reference string) (*model.Right, error) {
	query := `SELECT ` + rightColumns + ` FROM rights WHERE payment_reference = $1`

	right, err := scanRight(db.QueryRow(ctx, query, reference))
	if err != nil {
		return nil, mapError(err, apperrors.ErrRightNotFound)
	}
	return right, nil
}

func (r *RightRepositoryImpl) SetActive(ctx context.Context, id string, active bool) (*model.Right, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `UPDATE rights SET is_active = $1 WHERE id = $2 RETURNING ` + rightColumns

	right, err := scanRight(db.QueryRow(ctx, query, active, id))
	if err != nil {
		return nil, mapError(err, apperrors.ErrRightNotFound)
	}
	return right, nil
}
