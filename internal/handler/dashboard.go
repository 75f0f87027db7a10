package handler

import (
	"net/http"

	"ammotrack/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct{ svc service.DashboardService }

func NewDashboardHandler(svc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Stats godoc
// @Summary Dashboard aggregates
// @Description Cached for a short TTL; values may lag writes by a few seconds.
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.DashboardStats
// @Router /v1/dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	resp, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
