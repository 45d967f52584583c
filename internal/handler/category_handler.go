package handler

import (
	"net/http"

	"katagaki/internal/middleware"
	"katagaki/internal/model"
	"katagaki/internal/service"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	service service.CategoryService
}

func NewCategoryHandler(service service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1")
	{
		router.GET("categories", h.List)
		router.GET("categories/:id", h.GetByID)
	}

	admin := r.Group("/api/v1/admin", auth, middleware.RequireAdmin())
	{
		admin.POST("categories", h.Create)
		admin.PUT("categories/:id", h.Update)
		admin.DELETE("categories/:id", h.Delete)
	}
}

type CreateCategoryRequest struct {
	NameJa    string `json:"name_ja" binding:"required"`
	SortOrder int    `json:"sort_order"`
}

type UpdateCategoryRequest struct {
	NameJa    *string `json:"name_ja"`
	SortOrder *int    `json:"sort_order"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.service.List(c)
	if err != nil {
		handleError(c, err, "ListCategories")
		return
	}
	handleSuccess(c, categories, http.StatusOK)
}

func (h *CategoryHandler) GetByID(c *gin.Context) {
	category, err := h.service.GetByID(c, c.Param("id"))
	if err != nil {
		handleError(c, err, "GetCategory")
		return
	}
	handleSuccess(c, category, http.StatusOK)
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req CreateCategoryRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	category, err := h.service.Create(c, middleware.PrincipalFrom(c), model.CreateCategoryParams{
		NameJa:    req.NameJa,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		handleError(c, err, "CreateCategory")
		return
	}
	handleSuccess(c, category, http.StatusCreated)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	var req UpdateCategoryRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	category, err := h.service.Update(c, middleware.PrincipalFrom(c), c.Param("id"), model.UpdateCategoryParams{
		NameJa:    req.NameJa,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		handleError(c, err, "UpdateCategory")
		return
	}
	handleSuccess(c, category, http.StatusOK)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c, middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		handleError(c, err, "DeleteCategory")
		return
	}
	handleSuccess(c, nil, http.StatusNoContent)
}
