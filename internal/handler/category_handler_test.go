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

func setupCategoryTestRouter(mockService *mocks.CategoryServiceMock) *gin.Engine {
	router := newTestRouter()
	handler.NewCategoryHandler(mockService).RegisterRoutes(router, testAuth())
	return router
}

func TestListCategories(t *testing.T) {
	mockService := mocks.NewCategoryServiceMock()
	router := setupCategoryTestRouter(mockService)

	mockService.On("List", mock.Anything).Return([]*model.Category{
		{ID: "C1", NameJa: "社内", SortOrder: 1},
		{ID: "C2", NameJa: "趣味", SortOrder: 2},
	}, nil).Once()

	req, _ := http.NewRequest("GET", "/api/v1/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name_ja":"社内"`)
	mockService.AssertExpectations(t)
}

func TestGetCategory(t *testing.T) {
	t.Run("Failed - not found", func(t *testing.T) {
		mockService := mocks.NewCategoryServiceMock()
		router := setupCategoryTestRouter(mockService)

		mockService.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.ErrCategoryNotFound).Once()

		req, _ := http.NewRequest("GET", "/api/v1/categories/missing", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Category not found", decodeBody(w.Body)["error"])
	})
}

func TestCreateCategory(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewCategoryServiceMock()
		router := setupCategoryTestRouter(mockService)

		params := model.CreateCategoryParams{NameJa: "社内", SortOrder: 3}
		mockService.On("Create", mock.Anything, adminPrincipal, params).
			Return(&model.Category{ID: "C1", NameJa: "社内", SortOrder: 3}, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/admin/categories", map[string]interface{}{
			"name_ja":    "社内",
			"sort_order": 3,
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "admin-1"))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "C1", decodeBody(w.Body)["category_id"])
		mockService.AssertExpectations(t)
	})

	t.Run("Failed - not admin", func(t *testing.T) {
		mockService := mocks.NewCategoryServiceMock()
		router := setupCategoryTestRouter(mockService)

		req := createJSONHTTPRequest("POST", "/api/v1/admin/categories", map[string]interface{}{"name_ja": "社内"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "U1"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failed - no token", func(t *testing.T) {
		mockService := mocks.NewCategoryServiceMock()
		router := setupCategoryTestRouter(mockService)

		req := createJSONHTTPRequest("POST", "/api/v1/admin/categories", map[string]interface{}{"name_ja": "社内"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Failed - missing name", func(t *testing.T) {
		mockService := mocks.NewCategoryServiceMock()
		router := setupCategoryTestRouter(mockService)

		req := createJSONHTTPRequest("POST", "/api/v1/admin/categories", map[string]interface{}{"sort_order": 1})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "admin-1"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request format", decodeBody(w.Body)["error"])
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewCategoryServiceMock()
		router := setupCategoryTestRouter(mockService)

		sortOrder := 9
		params := model.UpdateCategoryParams{SortOrder: &sortOrder}
		mockService.On("Update", mock.Anything, adminPrincipal, "C1", params).
			Return(&model.Category{ID: "C1", NameJa: "社内", SortOrder: 9}, nil).Once()

		req := createJSONHTTPRequest("PUT", "/api/v1/admin/categories/C1", map[string]interface{}{"sort_order": 9})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "admin-1"))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(9), decodeBody(w.Body)["sort_order"])
	})

	t.Run("Failed - empty update", func(t *testing.T) {
		mockService := mocks.NewCategoryServiceMock()
		router := setupCategoryTestRouter(mockService)

		mockService.On("Update", mock.Anything, adminPrincipal, "C1", model.UpdateCategoryParams{}).
			Return(nil, apperrors.ErrInvalidInput).Once()

		req := createJSONHTTPRequest("PUT", "/api/v1/admin/categories/C1", map[string]interface{}{})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "admin-1"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Failed - not found", func(t *testing.T) {
		mockService := mocks.NewCategoryServiceMock()
		router := setupCategoryTestRouter(mockService)

		name := "新"
		mockService.On("Update", mock.Anything, adminPrincipal, "missing", model.UpdateCategoryParams{NameJa: &name}).
			Return(nil, apperrors.ErrCategoryNotFound).Once()

		req := createJSONHTTPRequest("PUT", "/api/v1/admin/categories/missing", map[string]interface{}{"name_ja": "新"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "admin-1"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := mocks.NewCategoryServiceMock()
		router := setupCategoryTestRouter(mockService)

		mockService.On("Delete", mock.Anything, adminPrincipal, "C1").Return(nil).Once()

		req, _ := http.NewRequest("DELETE", "/api/v1/admin/categories/C1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "admin-1"))

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("Failed - not found", func(t *testing.T) {
		mockService := mocks.NewCategoryServiceMock()
		router := setupCategoryTestRouter(mockService)

		mockService.On("Delete", mock.Anything, adminPrincipal, "missing").Return(apperrors.ErrCategoryNotFound).Once()

		req, _ := http.NewRequest("DELETE", "/api/v1/admin/categories/missing", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "admin-1"))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Failed - not admin", func(t *testing.T) {
		mockService := mocks.NewCategoryServiceMock()
		router := setupCategoryTestRouter(mockService)

		req, _ := http.NewRequest("DELETE", "/api/v1/admin/categories/C1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, withBearer(req, "U1"))

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockService.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}
