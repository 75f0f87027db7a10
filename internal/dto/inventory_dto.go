package dto

// ─── Filter / List ──────────────────────────────────────────────────────────

// InventoryFilter is bound from the query string of GET /v1/inventory.
type InventoryFilter struct {
	LotNumber    string `form:"lot_number"`
	AmmoType     string `form:"ammo_type"`
	ExpiringDays int    `form:"expiring_days" validate:"min=0"` // 0 = no expiry filter
	BelowMin     bool   `form:"below_min"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type StockLotResponse struct {
	ID           string  `json:"id"`
	LotNumber    string  `json:"lot_number"`
	AmmoType     string  `json:"ammo_type"`
	CustodianID  string  `json:"custodian_id"`
	Custodian    string  `json:"custodian,omitempty"`
	Quantity     int     `json:"quantity"`
	MinThreshold int     `json:"min_threshold"`
	ReceivedDate string  `json:"received_date"`
	ExpiryDate   *string `json:"expiry_date"`
	CreatedAt    string  `json:"created_at"`
}

type StockLotListResponse struct {
	Data  []StockLotResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// StockMovementResponse is one row of a lot's quantity-change history.
type StockMovementResponse struct {
	ID             string  `json:"id"`
	StockLotID     string  `json:"stock_lot_id"`
	Type           string  `json:"type"`
	Delta          int     `json:"delta"`
	QuantityBefore int     `json:"quantity_before"`
	QuantityAfter  int     `json:"quantity_after"`
	Reason         string  `json:"reason"`
	ReferenceID    *string `json:"reference_id"`
	CreatedAt      string  `json:"created_at"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateStockLotRequest struct {
	LotNumber    string  `json:"lot_number"    validate:"required,min=1"`
	AmmoType     string  `json:"ammo_type"     validate:"required,min=1"`
	CustodianID  string  `json:"custodian_id"  validate:"required,uuid"`
	Quantity     int     `json:"quantity"      validate:"required,min=1"`
	MinThreshold int     `json:"min_threshold" validate:"min=0"`
	ReceivedDate string  `json:"received_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate   *string `json:"expiry_date"   validate:"omitempty,datetime=2006-01-02"`
}

// UpdateStockLotRequest is a correction edit: it sets the absolute quantity
// rather than applying a delta. The difference is recorded as a "correction"
// stock movement.
type UpdateStockLotRequest struct {
	LotNumber    string  `json:"lot_number"    validate:"required,min=1"`
	AmmoType     string  `json:"ammo_type"     validate:"required,min=1"`
	CustodianID  string  `json:"custodian_id"  validate:"required,uuid"`
	Quantity     int     `json:"quantity"      validate:"min=0"`
	MinThreshold int     `json:"min_threshold" validate:"min=0"`
	ReceivedDate string  `json:"received_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate   *string `json:"expiry_date"   validate:"omitempty,datetime=2006-01-02"`
}
