package handler

import (
	"net/http"

	"ammotrack/internal/dto"
	"ammotrack/internal/service"

	"github.com/gin-gonic/gin"
)

type AlertHandler struct{ svc service.AlertService }

func NewAlertHandler(svc service.AlertService) *AlertHandler {
	return &AlertHandler{svc: svc}
}

// List godoc
// @Summary List alerts filtered by status, severity and type
// @Tags alerts
// @Produce json
// @Success 200 {object} dto.AlertListResponse
// @Router /v1/alerts [get]
func (h *AlertHandler) List(c *gin.Context) {
	var filter dto.AlertFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListAlerts(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Sweep triggers an on-demand derivation pass. The same pass also runs on a
// cron schedule; calling both concurrently is safe.
func (h *AlertHandler) Sweep(c *gin.Context) {
	created, err := h.svc.Sweep(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}

func (h *AlertHandler) Acknowledge(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.AcknowledgeAlertRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Acknowledge(c.Request.Context(), actorFromContext(c), id, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlertHandler) Dismiss(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Dismiss(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlertHandler) Resolve(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.Resolve(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AlertHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteAlert(c.Request.Context(), actorFromContext(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
