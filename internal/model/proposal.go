package model

import (
	"slices"
	"time"
)

// ProposalStatus 提案狀態類型
type ProposalStatus string

const (
	ProposalStatusPending  ProposalStatus = "pending"
	ProposalStatusApproved ProposalStatus = "approved"
	ProposalStatusRejected ProposalStatus = "rejected"
)

func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalStatusPending, ProposalStatusApproved, ProposalStatusRejected:
		return true
	}
	return false
}

// CanTransitionTo 只有 pending 可以被審核
func (s ProposalStatus) CanTransitionTo(target ProposalStatus) bool {
	transitions := map[ProposalStatus][]ProposalStatus{
		ProposalStatusPending:  {ProposalStatusApproved, ProposalStatusRejected},
		ProposalStatusApproved: {},
		ProposalStatusRejected: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	return slices.Contains(allowed, target)
}

// Proposal 使用者提出的新肩書き
type Proposal struct {
	ID             string         `json:"proposal_id" db:"id"`
	UserID         string         `json:"user_id" db:"user_id"`
	ProposedTitle  string         `json:"proposed_title" db:"proposed_title"`
	ProposalReason string         `json:"proposal_reason" db:"proposal_reason"`
	Status         ProposalStatus `json:"status" db:"status"`
	ProposedAt     time.Time      `json:"proposed_at" db:"proposed_at"`
	ReviewedAt     *time.Time     `json:"reviewed_at,omitempty" db:"reviewed_at"`
	ReviewedBy     *string        `json:"reviewed_by,omitempty" db:"reviewed_by"`
}

type CreateProposalParams struct {
	UserID         string
	ProposedTitle  string
	ProposalReason string
}

// TitleDraft 核准後的提案帶入肩書き建立表單的預設值
type TitleDraft struct {
	ProposalID       string      `json:"proposal_id"`
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	BasePrice        int64       `json:"base_price"`
	PriceTier        PriceTier   `json:"price_tier"`
	Status           TitleStatus `json:"status"`
	PurchasableLimit int         `json:"purchasable_limit"`
}

const (
	DefaultDraftPrice = 10000
	DefaultDraftLimit = 1
)

// DraftFromProposal 依提案產生肩書き草稿
func DraftFromProposal(p *Proposal) TitleDraft {
	return TitleDraft{
		ProposalID:       p.ID,
		Name:             p.ProposedTitle,
		Description:      p.ProposalReason,
		BasePrice:        DefaultDraftPrice,
		PriceTier:        PriceTierStandard,
		Status:           TitleStatusDraft,
		PurchasableLimit: DefaultDraftLimit,
	}
}
