package model

import "time"

// Category 肩書き的分類
type Category struct {
	ID        string    `json:"category_id" db:"id"`
	NameJa    string    `json:"name_ja" db:"name_ja"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CreateCategoryParams struct {
	NameJa    string
	SortOrder int
}

type UpdateCategoryParams struct {
	NameJa    *string
	SortOrder *int
}

func (p UpdateCategoryParams) IsEmpty() bool {
	return p.NameJa == nil && p.SortOrder == nil
}
