package handler

import (
	"errors"
	"net/http"

	apperrors "katagaki/pkg/app_errors"
	"katagaki/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// handleError 將 domain 錯誤轉成 HTTP 回應：4xx 記 Warn，5xx 記 Error
func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))

	var upstream *apperrors.UpstreamError
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		log.Warn("Unauthorized")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrSelfRoleChange):
		log.Warn("Self role change")
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot change your own role"})
	case errors.Is(err, apperrors.ErrForbidden):
		log.Warn("Forbidden")
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrTitleNotFound):
		log.Warn("Title not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Title not found"})
	case errors.Is(err, apperrors.ErrCategoryNotFound):
		log.Warn("Category not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
	case errors.Is(err, apperrors.ErrUserNotFound):
		log.Warn("User not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, apperrors.ErrRightNotFound):
		log.Warn("Right not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Right not found"})
	case errors.Is(err, apperrors.ErrProposalNotFound):
		log.Warn("Proposal not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Proposal not found"})
	case errors.Is(err, apperrors.ErrTitleNotAvailable), errors.Is(err, apperrors.ErrTitleSoldOut):
		log.Warn("Title not available")
		c.JSON(http.StatusConflict, gin.H{"error": "Title not available for purchase"})
	case errors.Is(err, apperrors.ErrPriceMismatch):
		log.Warn("Price mismatch")
		c.JSON(http.StatusConflict, gin.H{"error": "Price mismatch"})
	case errors.Is(err, apperrors.ErrTitleInUse):
		log.Warn("Title in use")
		c.JSON(http.StatusConflict, gin.H{"error": "Title has rights and cannot be deleted"})
	case errors.Is(err, apperrors.ErrLimitBelowPurchased):
		log.Warn("Limit below purchased count")
		c.JSON(http.StatusConflict, gin.H{"error": "Purchasable limit is below purchased count"})
	case errors.Is(err, apperrors.ErrProposalAlreadyReviewed):
		log.Warn("Proposal already reviewed")
		c.JSON(http.StatusConflict, gin.H{"error": "Proposal already reviewed"})
	case errors.Is(err, apperrors.ErrProposalNotApproved):
		log.Warn("Proposal not approved")
		c.JSON(http.StatusConflict, gin.H{"error": "Proposal not approved"})
	case errors.As(err, &upstream):
		log.Error("Upstream error", zap.String("code", upstream.Code), zap.String("type", upstream.Type))
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   upstream.Message,
			"details": upstreamDetails(upstream),
		})
	case errors.Is(err, apperrors.ErrConfiguration):
		log.Error("Configuration error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Configuration error"})
	case errors.Is(err, apperrors.ErrConnectivity):
		log.Error("Store unreachable")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Service temporarily unavailable"})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func upstreamDetails(err *apperrors.UpstreamError) string {
	switch {
	case err.Code != "":
		return err.Code
	case err.Type != "":
		return err.Type
	}
	return "unknown"
}

func handleSuccess(c *gin.Context, data interface{}, statusCode int) {
	if data != nil {
		c.JSON(statusCode, data)
	} else {
		c.Status(statusCode)
	}
}
