package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"katagaki/internal/identity"
	"katagaki/internal/model"
	apperrors "katagaki/pkg/app_errors"
	"katagaki/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	principalKey = "principal"
	identityKey  = "identity"
	userIDKey    = "userID"
)

// RoleResolver 從使用者資料取得角色
type RoleResolver interface {
	RoleOf(ctx context.Context, userID string) (model.Role, error)
}

// Authenticate 驗證 Authorization: Bearer <token>，失敗時回傳 401 並中止
func Authenticate(verifier identity.Verifier, roles RoleResolver) gin.HandlerFunc {
	log := logger.WithComponent("auth")

	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		id, err := verifier.Verify(c, token)
		if err != nil {
			log.Warn("token verification failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		role, err := roles.RoleOf(c, id.UserID)
		if err != nil {
			log.Error("role lookup failed", zap.String("user_id", id.UserID), zap.Error(err))
			status := http.StatusInternalServerError
			if errors.Is(err, apperrors.ErrUnauthorized) {
				status = http.StatusUnauthorized
			}
			c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
			return
		}

		c.Set(identityKey, id)
		c.Set(userIDKey, id.UserID)
		c.Set(principalKey, model.Principal{UserID: id.UserID, Role: role})
		c.Next()
	}
}

// RequireAdmin 必須放在 Authenticate 之後
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !PrincipalFrom(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

// PrincipalFrom 取得已驗證的呼叫者，未驗證時回傳零值
func PrincipalFrom(c *gin.Context) model.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(model.Principal); ok {
			return p
		}
	}
	return model.Principal{}
}

func IdentityFrom(c *gin.Context) *identity.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(*identity.Identity); ok {
			return id
		}
	}
	return &identity.Identity{}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
