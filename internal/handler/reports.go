package handler

import (
	"net/http"

	"ammotrack/internal/dto"
	"ammotrack/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct{ svc service.ReportService }

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Generate godoc
// @Summary Request report generation
// @Description Returns 202 with the pending record; generation runs async.
// @Tags reports
// @Accept json
// @Produce json
// @Param body body dto.GenerateReportRequest true "Report request"
// @Success 202 {object} dto.ReportResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/reports [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	var req dto.GenerateReportRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Generate(c.Request.Context(), actorFromContext(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

func (h *ReportHandler) List(c *gin.Context) {
	var filter dto.ReportFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListReports(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetReport(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Download streams the generated file and records the access.
func (h *ReportHandler) Download(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	path, fileName, err := h.svc.Download(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.FileAttachment(path, fileName)
}

func (h *ReportHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteReport(c.Request.Context(), actorFromContext(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
