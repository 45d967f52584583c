package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"katagaki/internal/identity"
	"katagaki/internal/middleware"
	"katagaki/internal/model"
	apperrors "katagaki/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roleFunc func(ctx context.Context, userID string) (model.Role, error)

func (f roleFunc) RoleOf(ctx context.Context, userID string) (model.Role, error) {
	return f(ctx, userID)
}

func adminFor(id string) roleFunc {
	return func(ctx context.Context, userID string) (model.Role, error) {
		if userID == id {
			return model.RoleAdmin, nil
		}
		return model.RoleUser, nil
	}
}

func setupAuthRouter(verifier identity.Verifier, roles middleware.RoleResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := middleware.Authenticate(verifier, roles)

	router.GET("/me", auth, func(c *gin.Context) {
		p := middleware.PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{
			"user_id": p.UserID,
			"role":    p.Role,
			"email":   middleware.IdentityFrom(c).Email,
		})
	})
	router.GET("/admin", auth, middleware.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func get(router *gin.Engine, path, authorization string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	router := setupAuthRouter(identity.NewPassthroughVerifier(), adminFor("admin-1"))

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
	}{
		{"Success - bearer", "Bearer U1", http.StatusOK},
		{"Success - lowercase scheme", "bearer U1", http.StatusOK},
		{"Failed - missing header", "", http.StatusUnauthorized},
		{"Failed - basic scheme", "Basic dTE6cA==", http.StatusUnauthorized},
		{"Failed - empty token", "Bearer ", http.StatusUnauthorized},
		{"Failed - malformed uid", "Bearer a/b", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(router, "/me", tt.authorization)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthenticate_JWT(t *testing.T) {
	verifier := identity.NewJWTVerifier([]byte("secret"), "katagaki")
	router := setupAuthRouter(verifier, adminFor("admin-1"))

	token, err := verifier.Sign(identity.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "U1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "u1@example.com",
	})
	require.NoError(t, err)

	w := get(router, "/me", "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"U1","role":"user","email":"u1@example.com"}`, w.Body.String())
}

func TestAuthenticate_RoleLookupFailure(t *testing.T) {
	router := setupAuthRouter(identity.NewPassthroughVerifier(), roleFunc(func(ctx context.Context, userID string) (model.Role, error) {
		return "", errors.Join(apperrors.ErrConnectivity, errors.New("timeout"))
	}))

	w := get(router, "/me", "Bearer U1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	router := setupAuthRouter(identity.NewPassthroughVerifier(), adminFor("admin-1"))

	assert.Equal(t, http.StatusNoContent, get(router, "/admin", "Bearer admin-1").Code)
	assert.Equal(t, http.StatusForbidden, get(router, "/admin", "Bearer U1").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/admin", "").Code)
}
