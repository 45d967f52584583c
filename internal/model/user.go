package model

import "time"

// Role 使用者角色
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User user_id 為 identity provider 的 subject
type User struct {
	ID                string    `json:"user_id" db:"id"`
	DisplayName       string    `json:"display_name" db:"display_name"`
	Email             string    `json:"email" db:"email"`
	Role              Role      `json:"role" db:"role"`
	StripeCustomerID  *string   `json:"stripe_customer_id,omitempty" db:"stripe_customer_id"`
	PublicProfileText *string   `json:"public_profile_text,omitempty" db:"public_profile_text"`
	IsProfilePublic   bool      `json:"is_profile_public" db:"is_profile_public"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// UserSummary 管理畫面用，附帶有效中的肩書き數
type UserSummary struct {
	User
	ActiveRightCount int `json:"active_right_count"`
}

// UpsertUserParams 註冊或更新自己的基本資料，role 不在此處變更
type UpsertUserParams struct {
	ID          string
	DisplayName string
	Email       string
}

type UpdateProfileParams struct {
	IsProfilePublic   *bool
	PublicProfileText *string
}

func (p UpdateProfileParams) IsEmpty() bool {
	return p.IsProfilePublic == nil && p.PublicProfileText == nil
}
