package handler

import (
	"net/http"

	"ammotrack/internal/dto"
	"ammotrack/internal/service"

	"github.com/gin-gonic/gin"
)

type IssueHandler struct{ svc service.IssueService }

func NewIssueHandler(svc service.IssueService) *IssueHandler {
	return &IssueHandler{svc: svc}
}

// Create godoc
// @Summary Issue ammunition against a stock lot
// @Description Atomically records the issue and decrements the lot. Fails with
// @Description 409 when the lot does not hold enough rounds.
// @Tags issues
// @Accept json
// @Produce json
// @Param body body dto.CreateIssueRequest true "Issue"
// @Success 201 {object} dto.IssueResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/issues [post]
func (h *IssueHandler) Create(c *gin.Context) {
	var req dto.CreateIssueRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateIssue(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary List issue records with lot and requester resolved
// @Tags issues
// @Produce json
// @Success 200 {object} dto.IssueListResponse
// @Router /v1/issues [get]
func (h *IssueHandler) List(c *gin.Context) {
	var filter dto.IssueFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListIssues(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *IssueHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetIssue(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update edits the issue record only; the lot quantity is left untouched.
func (h *IssueHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.UpdateIssueRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateIssue(c.Request.Context(), actorFromContext(c), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *IssueHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteIssue(c.Request.Context(), actorFromContext(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
