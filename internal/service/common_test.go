package service_test

import (
	"katagaki/internal/metrics"
	"katagaki/internal/model"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	admin     = model.Principal{UserID: "admin-1", Role: model.RoleAdmin}
	user      = model.Principal{UserID: "U1", Role: model.RoleUser}
	anonymous = model.Principal{}
)

// newTestMetrics 每個測試各自的 registry，避免重複註冊
func newTestMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func availableTitle(id string, limit, purchased int) *model.Title {
	return &model.Title{
		ID:               id,
		Name:             "技術顧問",
		Description:      "desc",
		BasePrice:        10000,
		PriceTier:        model.PriceTierStandard,
		Status:           model.TitleStatusAvailable,
		PurchasableLimit: limit,
		PurchasedCount:   purchased,
	}
}
