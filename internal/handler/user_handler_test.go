package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"katagaki/internal/handler"
	"katagaki/internal/mocks"
	"katagaki/internal/model"
	apperrors "katagaki/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupUserTestRouter(mockService *mocks.UserServiceMock) *gin.Engine {
	router := newTestRouter()
	handler.NewUserHandler(mockService).RegisterRoutes(router, testAuth())
	return router
}

func TestRegisterUser(t *testing.T) {
	t.Run("Success - with body", func(t *testing.T) {
		mockService := mocks.NewUserServiceMock()
		router := setupUserTestRouter(mockService)

		mockService.On("Register", mock.Anything, buyer, "Alice", "a@example.com").
			Return(&model.User{ID: "U1", Role: model.RoleUser}, nil).Once()

		body := handler.RegisterRequest{DisplayName: "Alice", Email: "a@example.com"}
		req := withBearer(createJSONHTTPRequest("PUT", "/api/v1/me", body), "U1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Success - empty body", func(t *testing.T) {
		mockService := mocks.NewUserServiceMock()
		router := setupUserTestRouter(mockService)

		mockService.On("Register", mock.Anything, buyer, "", "").Return(&model.User{ID: "U1"}, nil).Once()

		req, _ := http.NewRequest("PUT", "/api/v1/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "U1"))

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestGetMe(t *testing.T) {
	t.Run("Failed - ErrUserNotFound", func(t *testing.T) {
		mockService := mocks.NewUserServiceMock()
		router := setupUserTestRouter(mockService)

		mockService.On("GetMe", mock.Anything, buyer).Return(nil, apperrors.ErrUserNotFound).Once()

		req, _ := http.NewRequest("GET", "/api/v1/me", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "U1"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Failed - malformed token", func(t *testing.T) {
		mockService := mocks.NewUserServiceMock()
		router := setupUserTestRouter(mockService)

		req, _ := http.NewRequest("GET", "/api/v1/me", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUpdateProfile(t *testing.T) {
	mockService := mocks.NewUserServiceMock()
	router := setupUserTestRouter(mockService)

	mockService.On("UpdateProfile", mock.Anything, buyer, mock.MatchedBy(func(p model.UpdateProfileParams) bool {
		return p.IsProfilePublic != nil && *p.IsProfilePublic && p.PublicProfileText == nil
	})).Return(&model.User{ID: "U1", IsProfilePublic: true}, nil).Once()

	req := withBearer(createJSONHTTPRequest("PATCH", "/api/v1/me/profile", map[string]bool{"is_profile_public": true}), "U1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestChangeRole(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewUserServiceMock()
		router := setupUserTestRouter(mockService)

		mockService.On("ChangeRole", mock.Anything, adminPrincipal, "U1", model.RoleAdmin).
			Return(&model.User{ID: "U1", Role: model.RoleAdmin}, nil).Once()

		req := withBearer(createJSONHTTPRequest("PUT", "/api/v1/admin/users/U1/role", map[string]string{"role": "admin"}), "admin-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Failed - ErrSelfRoleChange", func(t *testing.T) {
		mockService := mocks.NewUserServiceMock()
		router := setupUserTestRouter(mockService)

		mockService.On("ChangeRole", mock.Anything, adminPrincipal, "admin-1", model.RoleUser).
			Return(nil, apperrors.ErrSelfRoleChange).Once()

		req := withBearer(createJSONHTTPRequest("PUT", "/api/v1/admin/users/admin-1/role", map[string]string{"role": "user"}), "admin-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Cannot change your own role", decodeBody(w.Body)["error"])
	})

	t.Run("Failed - missing role", func(t *testing.T) {
		mockService := mocks.NewUserServiceMock()
		router := setupUserTestRouter(mockService)

		req := withBearer(createJSONHTTPRequest("PUT", "/api/v1/admin/users/U1/role", map[string]string{}), "admin-1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
