package handler

import (
	"net/http"

	"katagaki/internal/middleware"
	"katagaki/internal/model"
	"katagaki/internal/service"

	"github.com/gin-gonic/gin"
)

type ProposalHandler struct {
	service service.ProposalService
}

func NewProposalHandler(service service.ProposalService) *ProposalHandler {
	return &ProposalHandler{service: service}
}

func (h *ProposalHandler) RegisterRoutes(r *gin.Engine, auth gin.HandlerFunc) {
	router := r.Group("/api/v1", auth)
	{
		router.POST("proposals", h.Submit)
		router.GET("me/proposals", h.ListMine)
	}

	admin := r.Group("/api/v1/admin", auth, middleware.RequireAdmin())
	{
		admin.GET("proposals", h.List)
		admin.PUT("proposals/:id/review", h.Review)
		admin.GET("proposals/:id/title-draft", h.TitleDraft)
		admin.DELETE("proposals/:id", h.Delete)
	}
}

type SubmitProposalRequest struct {
	ProposedTitle  string `json:"proposed_title" binding:"required"`
	ProposalReason string `json:"proposal_reason"`
}

type ListProposalsQuery struct {
	Status string `form:"status"`
}

// ReviewProposalRequest status 為 approved 或 rejected
type ReviewProposalRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *ProposalHandler) Submit(c *gin.Context) {
	var req SubmitProposalRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	proposal, err := h.service.Submit(c, middleware.PrincipalFrom(c), req.ProposedTitle, req.ProposalReason)
	if err != nil {
		handleError(c, err, "SubmitProposal")
		return
	}
	handleSuccess(c, proposal, http.StatusCreated)
}

func (h *ProposalHandler) ListMine(c *gin.Context) {
	proposals, err := h.service.ListMine(c, middleware.PrincipalFrom(c))
	if err != nil {
		handleError(c, err, "ListMyProposals")
		return
	}
	handleSuccess(c, proposals, http.StatusOK)
}

func (h *ProposalHandler) List(c *gin.Context) {
	var query ListProposalsQuery
	if err := BindQuery(c, &query); err != nil {
		return
	}

	proposals, err := h.service.List(c, middleware.PrincipalFrom(c), model.ProposalStatus(query.Status))
	if err != nil {
		handleError(c, err, "ListProposals")
		return
	}
	handleSuccess(c, proposals, http.StatusOK)
}

func (h *ProposalHandler) Review(c *gin.Context) {
	var req ReviewProposalRequest
	if err := BindJson(c, &req); err != nil {
		return
	}

	proposal, err := h.service.Review(c, middleware.PrincipalFrom(c), c.Param("id"), model.ProposalStatus(req.Status))
	if err != nil {
		handleError(c, err, "ReviewProposal")
		return
	}
	handleSuccess(c, proposal, http.StatusOK)
}

func (h *ProposalHandler) TitleDraft(c *gin.Context) {
	draft, err := h.service.TitleDraft(c, middleware.PrincipalFrom(c), c.Param("id"))
	if err != nil {
		handleError(c, err, "ProposalTitleDraft")
		return
	}
	handleSuccess(c, draft, http.StatusOK)
}

func (h *ProposalHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c, middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		handleError(c, err, "DeleteProposal")
		return
	}
	handleSuccess(c, nil, http.StatusNoContent)
}
