package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"katagaki/internal/identity"
	"katagaki/internal/middleware"
	"katagaki/internal/model"

	"github.com/gin-gonic/gin"
)

var (
	InvalidJSON = `{"invalid": json}`
)

// staticRoles 測試用角色表，未列出的使用者為 user
type staticRoles map[string]model.Role

func (r staticRoles) RoleOf(ctx context.Context, userID string) (model.Role, error) {
	if role, ok := r[userID]; ok {
		return role, nil
	}
	return model.RoleUser, nil
}

func testAuth() gin.HandlerFunc {
	return middleware.Authenticate(identity.NewPassthroughVerifier(), staticRoles{"admin-1": model.RoleAdmin})
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.ContextWithFallback = true
	return router
}

// create JSON request body
func createJSONRequest(data interface{}) *bytes.Buffer {
	if s, ok := data.(string); ok {
		return bytes.NewBufferString(s)
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return bytes.NewBuffer([]byte(""))
	}
	return bytes.NewBuffer(jsonData)
}

// create HTTP request with JSON body
func createJSONHTTPRequest(method, url string, data interface{}) *http.Request {
	req, err := http.NewRequest(method, url, createJSONRequest(data))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeBody(body *bytes.Buffer) map[string]interface{} {
	out := map[string]interface{}{}
	_ = json.Unmarshal(body.Bytes(), &out)
	return out
}
