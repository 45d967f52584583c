package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle_IsPurchasable(t *testing.T) {
	tests := []struct {
		name  string
		title Title
		want  bool
	}{
		{"available with capacity", Title{Status: TitleStatusAvailable, PurchasableLimit: 2, PurchasedCount: 1}, true},
		{"available but full", Title{Status: TitleStatusAvailable, PurchasableLimit: 1, PurchasedCount: 1}, false},
		{"draft", Title{Status: TitleStatusDraft, PurchasableLimit: 1}, false},
		{"sold out", Title{Status: TitleStatusSoldOut, PurchasableLimit: 1, PurchasedCount: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.title.IsPurchasable())
		})
	}
}

func TestTitle_RemainingCapacity(t *testing.T) {
	assert.Equal(t, 2, (&Title{PurchasableLimit: 3, PurchasedCount: 1}).RemainingCapacity())
	assert.Equal(t, 0, (&Title{PurchasableLimit: 1, PurchasedCount: 5}).RemainingCapacity())
}

func TestCreateTitleParams_Validate(t *testing.T) {
	valid := CreateTitleParams{
		Name:             "技術顧問",
		Description:      "desc",
		BasePrice:        10000,
		PriceTier:        PriceTierStandard,
		Status:           TitleStatusDraft,
		PurchasableLimit: 1,
	}
	assert.True(t, valid.Validate())

	mutate := func(fn func(p *CreateTitleParams)) CreateTitleParams {
		p := valid
		fn(&p)
		return p
	}

	assert.False(t, mutate(func(p *CreateTitleParams) { p.Name = "" }).Validate())
	assert.False(t, mutate(func(p *CreateTitleParams) { p.Description = "" }).Validate())
	assert.False(t, mutate(func(p *CreateTitleParams) { p.BasePrice = 0 }).Validate())
	assert.False(t, mutate(func(p *CreateTitleParams) { p.PurchasableLimit = 0 }).Validate())
	assert.False(t, mutate(func(p *CreateTitleParams) { p.PriceTier = "Gold" }).Validate())
	assert.False(t, mutate(func(p *CreateTitleParams) { p.Status = TitleStatusSoldOut }).Validate())
	assert.True(t, mutate(func(p *CreateTitleParams) { p.Status = TitleStatusAvailable }).Validate())
}

func TestUpdateTitleParams(t *testing.T) {
	assert.True(t, UpdateTitleParams{}.IsEmpty())
	assert.False(t, UpdateTitleParams{ClearCategory: true}.IsEmpty())

	zero := 0
	assert.False(t, UpdateTitleParams{PurchasableLimit: &zero}.Validate())

	status := TitleStatus("archived")
	assert.False(t, UpdateTitleParams{Status: &status}.Validate())

	name := "新しい名前"
	assert.True(t, UpdateTitleParams{Name: &name}.Validate())
}
