package model

import (
	"math"
	"time"
)

// ExpiringSoonDays 剩餘天數在此範圍內視為即將到期
const ExpiringSoonDays = 30

// Standing 讀取時計算出的使用權狀態，不會寫回資料庫
type Standing string

const (
	StandingActive       Standing = "active"
	StandingExpiringSoon Standing = "expiring_soon"
	StandingExpired      Standing = "expired"
	StandingRevoked      Standing = "revoked"
)

// Right 年間使用權
type Right struct {
	ID               string    `json:"right_id" db:"id"`
	TitleID          string    `json:"title_id" db:"title_id"`
	UserID           string    `json:"user_id" db:"user_id"`
	StartDate        time.Time `json:"start_date" db:"start_date"`
	EndDate          time.Time `json:"end_date" db:"end_date"`
	IsActive         bool      `json:"is_active" db:"is_active"`
	PaymentReference string    `json:"stripe_subscription_id" db:"payment_reference"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// NewRight 建立從 start 起算一年的使用權
func NewRight(titleID, userID, paymentReference string, start time.Time) *Right {
	return &Right{
		TitleID:          titleID,
		UserID:           userID,
		StartDate:        start,
		EndDate:          start.AddDate(1, 0, 0),
		IsActive:         true,
		PaymentReference: paymentReference,
	}
}

// DaysLeft 無條件進位的剩餘天數，已過期為負數或 0
func (r *Right) DaysLeft(now time.Time) int {
	return int(math.Ceil(r.EndDate.Sub(now).Hours() / 24))
}

func (r *Right) Standing(now time.Time) Standing {
	if !r.IsActive {
		return StandingRevoked
	}
	if r.EndDate.Before(now) {
		return StandingExpired
	}
	if days := r.DaysLeft(now); days > 0 && days <= ExpiringSoonDays {
		return StandingExpiringSoon
	}
	return StandingActive
}

// RightView 我的肩書き列表用，附帶肩書き與狀態
type RightView struct {
	Right
	Title    *Title   `json:"title,omitempty"`
	Standing Standing `json:"standing"`
	DaysLeft int      `json:"days_left"`
}
