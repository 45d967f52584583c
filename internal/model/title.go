package model

import "time"

// TitleStatus 肩書き的販售狀態
type TitleStatus string

const (
	TitleStatusDraft     TitleStatus = "draft"
	TitleStatusAvailable TitleStatus = "available"
	TitleStatusSoldOut   TitleStatus = "sold_out"
)

func (s TitleStatus) IsValid() bool {
	switch s {
	case TitleStatusDraft, TitleStatusAvailable, TitleStatusSoldOut:
		return true
	}
	return false
}

// PriceTier 價格帶
type PriceTier string

const (
	PriceTierExclusive PriceTier = "Exclusive"
	PriceTierStandard  PriceTier = "Standard"
	PriceTierPremium   PriceTier = "Premium"
)

func (t PriceTier) IsValid() bool {
	switch t {
	case PriceTierExclusive, PriceTierStandard, PriceTierPremium:
		return true
	}
	return false
}

// Title 可購買的肩書き
type Title struct {
	ID               string      `json:"title_id" db:"id"`
	Name             string      `json:"name" db:"name"`
	Description      string      `json:"description" db:"description"`
	CategoryID       *string     `json:"category_id" db:"category_id"`
	BasePrice        int64       `json:"base_price" db:"base_price"`
	PriceTier        PriceTier   `json:"price_tier" db:"price_tier"`
	IsOfficial       bool        `json:"is_official" db:"is_official"`
	OfficialNumber   string      `json:"official_number,omitempty" db:"official_number"`
	Status           TitleStatus `json:"status" db:"status"`
	PurchasableLimit int         `json:"purchasable_limit" db:"purchasable_limit"`
	PurchasedCount   int         `json:"purchased_count" db:"purchased_count"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// RemainingCapacity 剩餘可購買的名額
func (t *Title) RemainingCapacity() int {
	if remaining := t.PurchasableLimit - t.PurchasedCount; remaining > 0 {
		return remaining
	}
	return 0
}

// IsPurchasable 檢查肩書き是否可開始結帳
func (t *Title) IsPurchasable() bool {
	return t.Status == TitleStatusAvailable && t.RemainingCapacity() > 0
}

// TitleFilter 肩書き檢索條件，空值代表不篩選
type TitleFilter struct {
	Name       string
	CategoryID string
	Status     TitleStatus
}

type CreateTitleParams struct {
	Name             string
	Description      string
	CategoryID       *string
	BasePrice        int64
	PriceTier        PriceTier
	IsOfficial       bool
	Status           TitleStatus
	PurchasableLimit int
}

// Validate 建立時的欄位檢查
func (p CreateTitleParams) Validate() bool {
	if p.Name == "" || p.Description == "" {
		return false
	}
	if p.BasePrice <= 0 || p.PurchasableLimit < 1 {
		return false
	}
	if !p.PriceTier.IsValid() {
		return false
	}
	return p.Status == TitleStatusDraft || p.Status == TitleStatusAvailable
}

// UpdateTitleParams 部分更新；official_number 與 purchased_count 不開放修改
type UpdateTitleParams struct {
	Name             *string
	Description      *string
	CategoryID       *string
	ClearCategory    bool
	BasePrice        *int64
	PriceTier        *PriceTier
	IsOfficial       *bool
	Status           *TitleStatus
	PurchasableLimit *int
}

func (p UpdateTitleParams) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.CategoryID == nil && !p.ClearCategory &&
		p.BasePrice == nil && p.PriceTier == nil && p.IsOfficial == nil &&
		p.Status == nil && p.PurchasableLimit == nil
}

func (p UpdateTitleParams) Validate() bool {
	if p.Name != nil && *p.Name == "" {
		return false
	}
	if p.Description != nil && *p.Description == "" {
		return false
	}
	if p.BasePrice != nil && *p.BasePrice <= 0 {
		return false
	}
	if p.PriceTier != nil && !p.PriceTier.IsValid() {
		return false
	}
	if p.Status != nil && !p.Status.IsValid() {
		return false
	}
	if p.PurchasableLimit != nil && *p.PurchasableLimit < 1 {
		return false
	}
	return true
}

// TitleHolder 肩書き詳細頁顯示的公開持有者
type TitleHolder struct {
	UserID            string    `json:"user_id"`
	DisplayName       string    `json:"display_name"`
	PublicProfileText *string   `json:"public_profile_text,omitempty"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
}
