package handler

import (
	"net/http"

	"katagaki/internal/middleware"
	"katagaki/internal/model"
	"katagaki/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	me := r.Group("/api/v1/me", auth)
	{
		me.GET("", h.GetMe)
		me.PUT("", h.Register)
		me.PATCH("profile", h.UpdateProfile)
	}

	admin := r.Group("/api/v1/admin", auth, middleware.RequireAdmin())
	{
		admin.GET("users", h.List)
		admin.PUT("users/:id/role", h.ChangeRole)
	}
}

// RegisterRequest 省略時使用 token 內的名稱與 email
type RegisterRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

type UpdateProfileRequest struct {
	IsProfilePublic   *bool   `json:"is_profile_public"`
	PublicProfileText *string `json:"public_profile_text"`
}

type ListUsersQuery struct {
	Role string `form:"role"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if c.Request.ContentLength != 0 {
		if err := BindJson(c, &req); err != nil {
			return
		}
	}

	id := middleware.IdentityFrom(c)
	if req.DisplayName == "" {
		req.DisplayName = id.DisplayName
	}
	if req.Email == "" {
		req.Email = id.Email
	}

	user, err := h.service.Register(c, middleware.PrincipalFrom(c), req.DisplayName, req.Email)
	if err != nil {
		handleError(c, err, "RegisterUser")
		return
	}
	handleSuccess(c, user, http.StatusOK)
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.service.GetMe(c, middleware.PrincipalFrom(c))
	if err != nil {
		handleError(c, err, "GetMe")
		return
	}
	handleSuccess(c, user, http.StatusOK)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	user, err := h.service.UpdateProfile(c, middleware.PrincipalFrom(c), model.UpdateProfileParams{
		IsProfilePublic:   req.IsProfilePublic,
		PublicProfileText: req.PublicProfileText,
	})
	if err != nil {
		handleError(c, err, "UpdateProfile")
		return
	}
	handleSuccess(c, user, http.StatusOK)
}

func (h *UserHandler) List(c *gin.Context) {
	var query ListUsersQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	users, err := h.service.List(c, middleware.PrincipalFrom(c), model.Role(query.Role))
	if err != nil {
		handleError(c, err, "ListUsers")
		return
	}
	handleSuccess(c, users, http.StatusOK)
}

func (h *UserHandler) ChangeRole(c *gin.Context) {
	var req ChangeRoleRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	user, err := h.service.ChangeRole(c, middleware.PrincipalFrom(c), c.Param("id"), model.Role(req.Role))
	if err != nil {
		handleError(c, err, "ChangeRole")
		return
	}
	handleSuccess(c, user, http.StatusOK)
}
