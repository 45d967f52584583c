package repository

import (
	"context"

	"katagaki/internal/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SequenceRepository 單調遞增的計數器，用於公認番號
type SequenceRepository interface {
	// Next 在交易中取得下一個值；同一列被鎖住直到交易結束，rollback 的值不會被其他交易看到
	Next(ctx context.Context, tx pgx.Tx, name string) (int64, error)
	Current(ctx context.Context, name string) (int64, error)
}

type SequenceRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewSequenceRepository(pool *pgxpool.Pool) SequenceRepository {
	return &SequenceRepositoryImpl{
		pool: pool,
	}
}

func (r *SequenceRepositoryImpl) Next(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	query := `
		INSERT INTO sequences (name, value)
		VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value
	`

	var value int64
	if err := tx.QueryRow(ctx, query, name).Scan(&value); err != nil {
		return 0, database.MapConnError(err)
	}
	return value, nil
}

func (r *SequenceRepositoryImpl) Current(ctx context.Context, name string) (int64, error) {
	db, err := conn(r.pool)
	if err != nil {
		return 0, err
	}

	var value int64
	err = db.QueryRow(ctx, `SELECT COALESCE(MAX(value), 0) FROM sequences WHERE name = $1`, name).Scan(&value)
	if err != nil {
		return 0, database.MapConnError(err)
	}
	return value, nil
}
