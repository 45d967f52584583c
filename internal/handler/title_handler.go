package handler

import (
	"net/http"

	"katagaki/internal/middleware"
	"katagaki/internal/model"
	"katagaki/internal/service"

	"github.com/gin-gonic/gin"
)

type TitleHandler struct {
	service service.TitleService
}

func NewTitleHandler(service service.TitleService) *TitleHandler {
	return &TitleHandler{service: service}
}

func (h *TitleHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1")
	{
		router.GET("titles", h.Search)
		router.GET("titles/:id", h.GetByID)
		router.GET("titles/:id/holders", h.Holders)
	}

	admin := r.Group("/api/v1/admin", auth, middleware.RequireAdmin())
	{
		admin.POST("titles", h.Create)
		admin.PUT("titles/:id", h.Update)
		admin.DELETE("titles/:id", h.Delete)
	}
}

// SearchTitlesQuery 肩書き檢索條件
type SearchTitlesQuery struct {
	Name       string `form:"name"`
	CategoryID string `form:"category_id"`
	Status     string `form:"status"`
}

// CreateTitleRequest 建立肩書き請求，status 省略時為 draft
type CreateTitleRequest struct {
	Name             string  `json:"name" binding:"required"`
	Description      string  `json:"description" binding:"required"`
	CategoryID       *string `json:"category_id"`
	BasePrice        int64   `json:"base_price" binding:"required"`
	PriceTier        string  `json:"price_tier" binding:"required"`
	IsOfficial       bool    `json:"is_official"`
	Status           string  `json:"status"`
	PurchasableLimit int     `json:"purchasable_limit" binding:"required"`
}

// UpdateTitleRequest 部分更新；clear_category 為 true 時移除分類
type UpdateTitleRequest struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	CategoryID       *string `json:"category_id"`
	ClearCategory    bool    `json:"clear_category"`
	BasePrice        *int64  `json:"base_price"`
	PriceTier        *string `json:"price_tier"`
	IsOfficial       *bool   `json:"is_official"`
	Status           *string `json:"status"`
	PurchasableLimit *int    `json:"purchasable_limit"`
}

func (h *TitleHandler) Search(c *gin.Context) {
	var query SearchTitlesQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	titles, err := h.service.Search(c, model.TitleFilter{
		Name:       query.Name,
		CategoryID: query.CategoryID,
		Status:     model.TitleStatus(query.Status),
	})
	if err != nil {
		handleError(c, err, "SearchTitles")
		return
	}
	handleSuccess(c, titles, http.StatusOK)
}

func (h *TitleHandler) GetByID(c *gin.Context) {
	title, err := h.service.GetByID(c, c.Param("id"))
	if err != nil {
		handleError(c, err, "GetTitle")
		return
	}
	handleSuccess(c, title, http.StatusOK)
}

func (h *TitleHandler) Holders(c *gin.Context) {
	holders, err := h.service.Holders(c, c.Param("id"))
	if err != nil {
		handleError(c, err, "ListTitleHolders")
		return
	}
	handleSuccess(c, holders, http.StatusOK)
}

func (h *TitleHandler) Create(c *gin.Context) {
	var req CreateTitleRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	title, err := h.service.Create(c, middleware.PrincipalFrom(c), model.CreateTitleParams{
		Name:             req.Name,
		Description:      req.Description,
		CategoryID:       req.CategoryID,
		BasePrice:        req.BasePrice,
		PriceTier:        model.PriceTier(req.PriceTier),
		IsOfficial:       req.IsOfficial,
		Status:           model.TitleStatus(req.Status),
		PurchasableLimit: req.PurchasableLimit,
	})
	if err != nil {
		handleError(c, err, "CreateTitle")
		return
	}
	handleSuccess(c, title, http.StatusCreated)
}

func (h *TitleHandler) Update(c *gin.Context) {
	var req UpdateTitleRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	params := model.UpdateTitleParams{
		Name:             req.Name,
		Description:      req.Description,
		CategoryID:       req.CategoryID,
		ClearCategory:    req.ClearCategory,
		BasePrice:        req.BasePrice,
		IsOfficial:       req.IsOfficial,
		PurchasableLimit: req.PurchasableLimit,
	}
	if req.PriceTier != nil {
		tier := model.PriceTier(*req.PriceTier)
		params.PriceTier = &tier
	}
	if req.Status != nil {
		status := model.TitleStatus(*req.Status)
		params.Status = &status
	}

	title, err := h.service.Update(c, middleware.PrincipalFrom(c), c.Param("id"), params)
	if err != nil {
		handleError(c, err, "UpdateTitle")
		return
	}
	handleSuccess(c, title, http.StatusOK)
}

func (h *TitleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c, middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		handleError(c, err, "DeleteTitle")
		return
	}
	handleSuccess(c, nil, http.StatusNoContent)
}
