package repository

import (
	"context"
	"errors"

	"katagaki/internal/database"
	apperrors "katagaki/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// dbtx 讓同一段查詢可以跑在 pool 或交易上
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn 回傳可用的連線，pool 未初始化時回傳 ErrStoreNotConfigured
func conn(pool *pgxpool.Pool) (dbtx, error) {
	if pool == nil {
		return nil, apperrors.ErrStoreNotConfigured
	}
	return pool, nil
}

// mapError 把 driver 錯誤轉成 domain 錯誤；查無資料或 id 格式不合法都視為 notFound
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || database.IsPgError(err, database.InvalidTextRepr) {
		return notFound
	}
	return database.MapConnError(err)
}
