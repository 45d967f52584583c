package handler

import (
	"errors"
	"net/http"
	"net/url"

	"katagaki/internal/middleware"
	"katagaki/internal/model"
	"katagaki/internal/payment"
	"katagaki/internal/service"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	service service.CheckoutService
	baseURL string
}

func NewCheckoutHandler(service service.CheckoutService, baseURL string) *CheckoutHandler {
	return &CheckoutHandler{service: service, baseURL: baseURL}
}

// RegisterRoutes limit 為 nil 時不限流
func (h *CheckoutHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc, limit gin.HandlerFunc) {
	chain := []gin.HandlerFunc{auth}
	if limit != nil {
		chain = append(chain, limit)
	}
	chain = append(chain, h.CreateSession)

	r.POST("/api/v1/checkout/sessions", chain...)
	// 舊前端使用的路徑
	r.POST("/api/create-checkout-session", chain...)
}

func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req model.CheckoutRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	session, err := h.service.CreateSession(c, middleware.PrincipalFrom(c), req, h.origin(c))
	if err != nil {
		if errors.Is(err, payment.ErrMissingSecretKey) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe configuration error: Missing secret key"})
			return
		}
		handleError(c, err, "CreateCheckoutSession")
		return
	}
	handleSuccess(c, session, http.StatusOK)
}

// origin 依序使用 Origin、Referer 的 scheme+host、設定的 base URL
func (h *CheckoutHandler) origin(c *gin.Context) string {
	if origin := c.GetHeader("Origin"); origin != "" && origin != "null" {
		return origin
	}
	if referer := c.GetHeader("Referer"); referer != "" {
		if u, err := url.Parse(referer); err == nil && u.Scheme != "" && u.Host != "" {
			return u.Scheme + "://" + u.Host
		}
	}
	return h.baseURL
}
