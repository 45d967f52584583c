package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"katagaki/internal/database"
	"katagaki/internal/model"
	apperrors "katagaki/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TitleRepository interface {
	// LatestOfficialNumber 目前最大的公認番號，沒有肩書き時回傳空字串
	LatestOfficialNumber(ctx context.Context) (string, error)
	Search(ctx context.Context, filter model.TitleFilter) ([]*model.Title, error)
	FindByID(ctx context.Context, id string) (*model.Title, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Title, error)
	Update(ctx context.Context, id string, params model.UpdateTitleParams) (*model.Title, error)
	Delete(ctx context.Context, id string) error
	ListHolders(ctx context.Context, id string, now time.Time) ([]*model.TitleHolder, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, params model.CreateTitleParams, officialNumber string) (*model.Title, error)
	FindByIDWithLock(ctx context.Context, tx pgx.Tx, id string) (*model.Title, error)
	IncrementPurchased(ctx context.Context, tx pgx.Tx, id string) (*model.Title, error)
}

type TitleRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTitleRepository(pool *pgxpool.Pool) TitleRepository {
	return &TitleRepositoryImpl{
		pool: pool,
	}
}

const titleColumns = `id, name, description, category_id, base_price, price_tier,
		is_official, official_number, status, purchasable_limit, purchased_count,
		created_at, updated_at`

func scanTitle(row pgx.Row) (*model.Title, error) {
	var title model.Title
	err := row.Scan(
		&title.ID,
		&title.Name,
		&title.Description,
		&title.CategoryID,
		&title.BasePrice,
		&title.PriceTier,
		&title.IsOfficial,
		&title.OfficialNumber,
		&title.Status,
		&title.PurchasableLimit,
		&title.PurchasedCount,
		&title.CreatedAt,
		&title.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &title, nil
}

func collectTitles(rows pgx.Rows) ([]*model.Title, error) {
	defer rows.Close()

	titles := make([]*model.Title, 0)
	for rows.Next() {
		title, err := scanTitle(rows)
		if err != nil {
			return nil, err
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapConnError(err)
	}
	return titles, nil
}

func (r *TitleRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, params model.CreateTitleParams, officialNumber string) (*model.Title, error) {
	query := `
		INSERT INTO titles (
			name, description, category_id, base_price, price_tier,
			is_official, official_number, status, purchasable_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + titleColumns

	title, err := scanTitle(tx.QueryRow(ctx, query,
		params.Name, params.Description, params.CategoryID, params.BasePrice, params.PriceTier,
		params.IsOfficial, officialNumber, params.Status, params.PurchasableLimit,
	))
	if err != nil {
		if database.IsPgError(err, database.ForeignKeyViolation) {
			return nil, apperrors.ErrCategoryNotFound
		}
		// category_id 不是合法的 uuid
		return nil, mapError(err, apperrors.ErrCategoryNotFound)
	}
	return title, nil
}

func (r *TitleRepositoryImpl) LatestOfficialNumber(ctx context.Context) (string, error) {
	db, err := conn(r.pool)
	if err != nil {
		return "", err
	}

	// 補零到 6 位數，超過時靠長度排序
	query := `
		SELECT official_number
		FROM titles
		ORDER BY length(official_number) DESC, official_number DESC
		LIMIT 1
	`

	var latest string
	err = db.QueryRow(ctx, query).Scan(&latest)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", database.MapConnError(err)
	}
	return latest, nil
}

func (r *TitleRepositoryImpl) Search(ctx context.Context, filter model.TitleFilter) ([]*model.Title, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	conds := []string{}
	args := []interface{}{}
	argPos := 1

	if filter.Name != "" {
		conds = append(conds, fmt.Sprintf("name ILIKE '%%' || $%d || '%%'", argPos))
		args = append(args, escapeLike(filter.Name))
		argPos++
	}
	if filter.CategoryID != "" {
		conds = append(conds, fmt.Sprintf("category_id::text = $%d", argPos))
		args = append(args, filter.CategoryID)
		argPos++
	}
	if filter.Status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", argPos))
		args = append(args, filter.Status)
		argPos++
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM titles
		%s
		ORDER BY created_at DESC
	`, titleColumns, where)

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, database.MapConnError(err)
	}
	return collectTitles(rows)
}

func (r *TitleRepositoryImpl) FindByID(ctx context.Context, id string) (*model.Title, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + titleColumns + ` FROM titles WHERE id = $1`

	title, err := scanTitle(db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, apperrors.ErrTitleNotFound)
	}
	return title, nil
}

func (r *TitleRepositoryImpl) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Title, error) {
	result := make(map[string]*model.Title, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + titleColumns + ` FROM titles WHERE id::text = ANY($1)`

	rows, err := db.Query(ctx, query, ids)
	if err != nil {
		return nil, database.MapConnError(err)
	}
	titles, err := collectTitles(rows)
	if err != nil {
		return nil, err
	}
	for _, title := range titles {
		result[title.ID] = title
	}
	return result, nil
}

func (r *TitleRepositoryImpl) FindByIDWithLock(ctx context.Context, tx pgx.Tx, id string) (*model.Title, error) {
	query := `SELECT ` + titleColumns + ` FROM titles WHERE id = $1 FOR UPDATE`

	title, err := scanTitle(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, apperrors.ErrTitleNotFound)
	}
	return title, nil
}

// IncrementPurchased 在名額內把 purchased_count +1，到達上限時同時轉為 sold_out；名額已滿回傳 ErrTitleSoldOut
func (r *TitleRepositoryImpl) IncrementPurchased(ctx context.Context, tx pgx.Tx, id string) (*model.Title, error) {
	query := `
		UPDATE titles
		SET purchased_count = purchased_count + 1,
			status = CASE WHEN purchased_count + 1 >= purchasable_limit THEN 'sold_out' ELSE status END,
			updated_at = $1
		WHERE id = $2 AND purchased_count < purchasable_limit
		RETURNING ` + titleColumns

	title, err := scanTitle(tx.QueryRow(ctx, query, time.Now().UTC(), id))
	if err != nil {
		return nil, mapError(err, apperrors.ErrTitleSoldOut)
	}
	return title, nil
}

func (r *TitleRepositoryImpl) Update(ctx context.Context, id string, params model.UpdateTitleParams) (*model.Title, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	sets := []string{}
	args := []interface{}{}
	argPos := 1

	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}

	if params.Name != nil {
		set("name", *params.Name)
	}
	if params.Description != nil {
		set("description", *params.Description)
	}
	if params.ClearCategory {
		sets = append(sets, "category_id = NULL")
	} else if params.CategoryID != nil {
		set("category_id", *params.CategoryID)
	}
	if params.BasePrice != nil {
		set("base_price", *params.BasePrice)
	}
	if params.PriceTier != nil {
		set("price_tier", *params.PriceTier)
	}
	if params.IsOfficial != nil {
		set("is_official", *params.IsOfficial)
	}
	limitExpr, statusExpr := "purchasable_limit", "status"
	if params.Status != nil {
		statusExpr = fmt.Sprintf("$%d::text", argPos)
		args = append(args, string(*params.Status))
		argPos++
	}
	if params.PurchasableLimit != nil {
		limitExpr = fmt.Sprintf("$%d::int", argPos)
		set("purchasable_limit", *params.PurchasableLimit)
	}
	if params.Status != nil || params.PurchasableLimit != nil {
		// 名額已滿時狀態固定為 sold_out
		sets = append(sets, fmt.Sprintf(
			"status = CASE WHEN purchased_count >= %s THEN 'sold_out' ELSE %s END", limitExpr, statusExpr))
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	set("updated_at", time.Now().UTC())

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE titles
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), argPos, titleColumns)

	title, err := scanTitle(db.QueryRow(ctx, query, args...))
	if err != nil {
		switch {
		case database.IsPgError(err, database.CheckViolation) &&
			database.ConstraintName(err) == "titles_purchased_within_limit":
			return nil, apperrors.ErrLimitBelowPurchased
		case database.IsPgError(err, database.ForeignKeyViolation):
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, mapError(err, apperrors.ErrTitleNotFound)
	}
	return title, nil
}

func (r *TitleRepositoryImpl) Delete(ctx context.Context, id string) error {
	db, err := conn(r.pool)
	if err != nil {
		return err
	}

	result, err := db.Exec(ctx, `DELETE FROM titles WHERE id = $1`, id)
	if err != nil {
		if database.IsPgError(err, database.ForeignKeyViolation) {
			return apperrors.ErrTitleInUse
		}
		return mapError(err, apperrors.ErrTitleNotFound)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrTitleNotFound
	}
	return nil
}

// ListHolders 有效期間內、公開個人資料的持有者
func (r *TitleRepositoryImpl) ListHolders(ctx context.Context, id string, now time.Time) ([]*model.TitleHolder, error) {
	db, err := conn(r.pool)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT u.id, u.display_name, u.public_profile_text, ri.start_date, ri.end_date
		FROM rights ri
		JOIN users u ON u.id = ri.user_id
		WHERE ri.title_id = $1
			AND ri.is_active
			AND ri.end_date >= $2
			AND u.is_profile_public
		ORDER BY ri.start_date ASC
	`

	rows, err := db.Query(ctx, query, id, now)
	if err != nil {
		return nil, mapError(err, apperrors.ErrTitleNotFound)
	}
	defer rows.Close()

	holders := make([]*model.TitleHolder, 0)
	for rows.Next() {
		var holder model.TitleHolder
		if err := rows.Scan(
			&holder.UserID,
			&holder.DisplayName,
			&holder.PublicProfileText,
			&holder.StartDate,
			&holder.EndDate,
		); err != nil {
			return nil, err
		}
		holders = append(holders, &holder)
	}
	if err := rows.Err(); err != nil {
		return nil, database.MapConnError(err)
	}
	return holders, nil
}

// escapeLike 避免使用者輸入的 % 與 _ 被當成萬用字元
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
