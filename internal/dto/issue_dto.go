package dto

// ─── Requests ────────────────────────────────────────────────────────────────

type CreateIssueRequest struct {
	StockLotID  string  `json:"stock_lot_id"   validate:"required,uuid"`
	RequesterID string  `json:"requester_id"   validate:"required,uuid"`
	IssueDate   string  `json:"issue_date"     validate:"required,datetime=2006-01-02"`
	Quantity    int     `json:"issue_quantity" validate:"required,gt=0"`
	TypeLineRef *string `json:"type_line_ref"`
}

// UpdateIssueRequest edits an existing issue record. Quantity and date edits
// do NOT re-reconcile the stock lot quantity.
type UpdateIssueRequest struct {
	RequesterID string  `json:"requester_id"   validate:"required,uuid"`
	IssueDate   string  `json:"issue_date"     validate:"required,datetime=2006-01-02"`
	Quantity    int     `json:"issue_quantity" validate:"required,gt=0"`
	TypeLineRef *string `json:"type_line_ref"`
}

// ─── Filter / List ──────────────────────────────────────────────────────────

type IssueFilter struct {
	StockLotID  string `form:"stock_lot_id" validate:"omitempty,uuid"`
	RequesterID string `form:"requester_id" validate:"omitempty,uuid"`
	From        string `form:"from"  validate:"omitempty,datetime=2006-01-02"`
	To          string `form:"to"    validate:"omitempty,datetime=2006-01-02"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

// IssueResponse is the joined view: lot number and requester name are
// resolved server-side so the dashboard renders in one call.
type IssueResponse struct {
	ID          string  `json:"id"`
	StockLotID  string  `json:"stock_lot_id"`
	LotNumber   string  `json:"lot_number,omitempty"`
	AmmoType    string  `json:"ammo_type,omitempty"`
	RequesterID string  `json:"requester_id"`
	Requester   string  `json:"requester,omitempty"`
	IssueDate   string  `json:"issue_date"`
	Quantity    int     `json:"issue_quantity"`
	TypeLineRef *string `json:"type_line_ref"`
	CreatedAt   string  `json:"created_at"`
}

type IssueListResponse struct {
	Data  []IssueResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
