package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"katagaki/internal/database"
	"katagaki/internal/model"
	apperrors "katagaki/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	// Upsert 首次登入時建立 role=user 的資料，之後只更新名稱與 email
	Upsert(ctx context.Context, params model.UpsertUserParams) (*model.User, error)
	List(ctx context.Context, role model.Role, now time.Time) ([]*model.UserSummary, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, params model.UpdateProfileParams) (*model.User, error)
	UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error)
	SetStripeCustomerID(ctx context.Context, id string, customerID string) error
	Delete(ctx context.Context, id string) error
}

type UserRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &UserRepositoryImpl{
		pool: pool,
	}
}

const userColumns = `id, display_name, email, role, stripe_customer_id,
		public_profile_text, is_profile_public, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	if err := row.Scan(
		&user.ID,
		&user.DisplayName,
		&user.Email,
		&user.Role,
		&user.StripeCustomerID,
		&user.PublicProfileText,
		&user.IsProfilePublic,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Upsert(ctx context.Context, params model.UpsertUserParams) (*model.User, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO users (id, display_name, email, role)
		VALUES ($1, $2, $3, 'user')
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name, email = EXCLUDED.email
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRow(ctx, query, params.ID, params.DisplayName, params.Email))
	if err != nil {
		return nil, database.MapConnError(err)
	}
	return user, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, role model.Role, now time.Time) ([]*model.UserSummary, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT u.id, u.display_name, u.email, u.role, u.stripe_customer_id,
			u.public_profile_text, u.is_profile_public, u.created_at,
			COUNT(ri.id) FILTER (WHERE ri.is_active AND ri.end_date >= $1)
		FROM users u
		LEFT JOIN rights ri ON ri.user_id = u.id
		WHERE ($2::text = '' OR u.role = $2::text)
		GROUP BY u.id
		ORDER BY u.created_at DESC
	`

	rows, err := db.Query(ctx, query, now, string(role))
	if err != nil {
		return nil, database.MapConnError(err)
	}
	defer rows.Close()

	users := make([]*model.UserSummary, 0)
	for rows.Next() {
		var summary model.UserSummary
		if err := rows.Scan(
			&summary.ID,
			&summary.DisplayName,
			&summary.Email,
			&summary.Role,
			&summary.StripeCustomerID,
			&summary.PublicProfileText,
			&summary.IsProfilePublic,
			&summary.CreatedAt,
			&summary.ActiveRightCount,
		); err != nil {
			return nil, err
		}
		users = append(users, &summary)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapConnError(err)
	}
	return users, nil
}

func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*model.User, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

func (r *UserRepositoryImpl) UpdateProfile(ctx context.Context, id string, params model.UpdateProfileParams) (*model.User, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if params.IsProfilePublic != nil {
		sets = append(sets, fmt.Sprintf("is_profile_public = $%d", argPos))
		args = append(args, *params.IsProfilePublic)
		argPos++
	}
	if params.PublicProfileText != nil {
		sets = append(sets, fmt.Sprintf("public_profile_text = $%d", argPos))
		args = append(args, *params.PublicProfileText)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, userColumns)

	user, err := scanUser(db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

func (r *UserRepositoryImpl) UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `UPDATE users SET role = $1 WHERE id = $2 RETURNING ` + userColumns

	user, err := scanUser(db.QueryRow(ctx, query, role, id))
	if err != nil {
		return nil, mapError(err, apperrors.ErrUserNotFound)
	}
	return user, nil
}

func (r *UserRepositoryImpl) SetStripeCustomerID(ctx context.Context, id string, customerID string) error {
	db, err := conn(r.pool)
	if err != nil {
		return err
	}

	result, err := db.Exec(ctx, `UPDATE users SET stripe_customer_id = $1 WHERE id = $2`, customerID, id)
	if err != nil {
		return database.MapConnError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id string) error {
	db, err := conn(r.pool)
	if err != nil {
		return err
	}

	result, err := db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return database.MapConnError(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}
