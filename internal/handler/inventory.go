package handler

import (
	"net/http"
	"strconv"

	"ammotrack/internal/dto"
	"ammotrack/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// Create godoc
// @Summary Register a new ammunition stock lot
// @Tags inventory
// @Accept json
// @Produce json
// @Param body body dto.CreateStockLotRequest true "Stock lot"
// @Success 201 {object} dto.StockLotResponse
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/inventory [post]
func (h *InventoryHandler) Create(c *gin.Context) {
	var req dto.CreateStockLotRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateLot(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary List stock lots with filters and pagination
// @Tags inventory
// @Produce json
// @Param lot_number query string false "Lot number substring"
// @Param ammo_type query string false "Exact ammunition type"
// @Param expiring_days query int false "Only lots expiring within N days"
// @Param below_min query bool false "Only lots below minimum threshold"
// @Success 200 {object} dto.StockLotListResponse
// @Router /v1/inventory [get]
func (h *InventoryHandler) List(c *gin.Context) {
	var filter dto.InventoryFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListLots(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	resp, err := h.svc.GetLot(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetQuantity returns just the current on-hand quantity for a lot. Advisory:
// the value may be stale the moment it is read.
func (h *InventoryHandler) GetQuantity(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	qty, err := h.svc.GetQuantity(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id.String(), "quantity": qty})
}

// Movements returns the lot's quantity-change history, newest first.
func (h *InventoryHandler) Movements(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	resp, err := h.svc.ListMovements(c.Request.Context(), id, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *InventoryHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var req dto.UpdateStockLotRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateLot(c.Request.Context(), actorFromContext(c), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteLot(c.Request.Context(), actorFromContext(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
