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

func setupRightTestRouter(mockService *mocks.RightServiceMock) *gin.Engine {
	router := newTestRouter()
	handler.NewRightHandler(mockService).RegisterRoutes(router, testAuth())
	return router
}

func TestListMyRights(t *testing.T) {
	mockService := mocks.NewRightServiceMock()
	router := setupRightTestRouter(mockService)

	mockService.On("ListMine", mock.Anything, buyer).Return([]*model.RightView{{
		Right:    model.Right{ID: "R1", TitleID: "T1", UserID: "U1", IsActive: true},
		Standing: model.StandingExpiringSoon,
		DaysLeft: 12,
	}}, nil).Once()

	req, _ := http.NewRequest("GET", "/api/v1/me/rights", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, withBearer(req, "U1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"standing":"expiring_soon"`)
	assert.Contains(t, w.Body.String(), `"days_left":12`)
}

func TestFindRightBySession(t *testing.T) {
	t.Run("Failed - not granted yet", func(t *testing.T) {
		mockService := mocks.NewRightServiceMock()
		router := setupRightTestRouter(mockService)

		mockService.On("FindBySession", mock.Anything, buyer, "cs_1").Return(nil, apperrors.ErrRightNotFound).Once()

		req, _ := http.NewRequest("GET", "/api/v1/checkout/sessions/cs_1/right", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "U1"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRevokeRight(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewRightServiceMock()
		router := setupRightTestRouter(mockService)

		mockService.On("Revoke", mock.Anything, adminPrincipal, "R1").Return(&model.Right{ID: "R1"}, nil).Once()

		req, _ := http.NewRequest("PUT", "/api/v1/admin/rights/R1/revoke", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "admin-1"))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Failed - not admin", func(t *testing.T) {
		mockService := mocks.NewRightServiceMock()
		router := setupRightTestRouter(mockService)

		req, _ := http.NewRequest("PUT", "/api/v1/admin/rights/R1/revoke", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "U1"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockService.AssertNotCalled(t, "Revoke", mock.Anything, mock.Anything, mock.Anything)
	})
}
