package repository

import (
	"context"
	"fmt"
	"strings"

	"katagaki/internal/database"
	"katagaki/internal/model"
	apperrors "katagaki/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryRepository interface {
	Create(ctx context.Context, params model.CreateCategoryParams) (*model.Category, error)
	List(ctx context.Context) ([]*model.Category, error)
	FindByID(ctx context.Context, id string) (*model.Category, error)
	Update(ctx context.Context, id string, params model.UpdateCategoryParams) (*model.Category, error)
	Delete(ctx context.Context, id string) error
}

type CategoryRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &CategoryRepositoryImpl{
		pool: pool,
	}
}

func scanCategory(row pgx.Row) (*model.Category, error) {
	var category model.Category
	if err := row.Scan(
		&category.ID,
		&category.NameJa,
		&category.SortOrder,
		&category.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepositoryImpl) Create(ctx context.Context, params model.CreateCategoryParams) (*model.Category, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO categories (name_ja, sort_order)
		VALUES ($1, $2)
		RETURNING id, name_ja, sort_order, created_at
	`

	category, err := scanCategory(db.QueryRow(ctx, query, params.NameJa, params.SortOrder))
	if err != nil {
		return nil, database.MapConnError(err)
	}
	return category, nil
}

func (r *CategoryRepositoryImpl) List(ctx context.Context) ([]*model.Category, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name_ja, sort_order, created_at
		FROM categories
		ORDER BY sort_order ASC, created_at ASC
	`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, database.MapConnError(err)
	}
	defer rows.Close()

	categories := make([]*model.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapConnError(err)
	}
	return categories, nil
}

func (r *CategoryRepositoryImpl) FindByID(ctx context.Context, id string) (*model.Category, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name_ja, sort_order, created_at
		FROM categories
		WHERE id = $1
	`

	category, err := scanCategory(db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, apperrors.ErrCategoryNotFound)
	}
	return category, nil
}

func (r *CategoryRepositoryImpl) Update(ctx context.Context, id string, params model.UpdateCategoryParams) (*model.Category, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if params.NameJa != nil {
		sets = append(sets, fmt.Sprintf("name_ja = $%d", argPos))
		args = append(args, *params.NameJa)
		argPos++
	}
	if params.SortOrder != nil {
		sets = append(sets, fmt.Sprintf("sort_order = $%d", argPos))
		args = append(args, *params.SortOrder)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE categories
		SET %s
		WHERE id = $%d
		RETURNING id, name_ja, sort_order, created_at
	`, strings.Join(sets, ", "), argPos)

	category, err := scanCategory(db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, apperrors.ErrCategoryNotFound)
	}
	return category, nil
}

// Delete 刪除分類，引用它的肩書き category_id 會被設為 NULL
func (r *CategoryRepositoryImpl) Delete(ctx context.Context, id string) error {
	db, err := conn(r.pool)
	if err != nil {
		return err
	}

	result, err := db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapError(err, apperrors.ErrCategoryNotFound)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}
