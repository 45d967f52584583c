package handler

import (
	"net/http"

	"katagaki/internal/middleware"
	"katagaki/internal/service"

	"github.com/gin-gonic/gin"
)

type RightHandler struct {
	service service.RightService
}

func NewRightHandler(service service.RightService) *RightHandler {
	return &RightHandler{service: service}
}

func (h *RightHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1", auth)
	{
		router.GET("me/rights", h.ListMine)
		router.GET("checkout/sessions/:id/right", h.FindBySession)
	}

	admin := r.Group("/api/v1/admin", auth, middleware.RequireAdmin())
	{
		admin.GET("rights", h.List)
		admin.PUT("rights/:id/revoke", h.Revoke)
	}
}

func (h *RightHandler) ListMine(c *gin.Context) {
	rights, err := h.service.ListMine(c, middleware.PrincipalFrom(c))
	if err != nil {
		handleError(c, err, "ListMyRights")
		return
	}
	handleSuccess(c, rights, http.StatusOK)
}

func (h *RightHandler) List(c *gin.Context) {
	rights, err := h.service.List(c, middleware.PrincipalFrom(c))
	if err != nil {
		handleError(c, err, "ListRights")
		return
	}
	handleSuccess(c, rights, http.StatusOK)
}

// FindBySession webhook 尚未授權時回傳 404，前端會重試
func (h *RightHandler) FindBySession(c *gin.Context) {
	right, err := h.service.FindBySession(c, middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "FindRightBySession")
		return
	}
	handleSuccess(c, right, http.StatusOK)
}

func (h *RightHandler) Revoke(c *gin.Context) {
	right, err := h.service.Revoke(c, middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "RevokeRight")
		return
	}
	handleSuccess(c, right, http.StatusOK)
}
