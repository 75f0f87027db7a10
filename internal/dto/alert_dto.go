package dto

type AlertFilter struct {
	Status   string `form:"status"   validate:"omitempty,oneof=open acknowledged dismissed resolved all"`
	Severity string `form:"severity" validate:"omitempty,oneof=critical high medium low"`
	Type     string `form:"type"     validate:"omitempty,oneof=low_stock expiry_warning security"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type AcknowledgeAlertRequest struct {
	Notes *string `json:"notes"`
}

type AlertResponse struct {
	ID             string  `json:"id"`
	StockLotID     *string `json:"stock_lot_id"`
	LotNumber      string  `json:"lot_number,omitempty"`
	Type           string  `json:"type"`
	Severity       string  `json:"severity"`
	Message        string  `json:"message"`
	Status         string  `json:"status"`
	AcknowledgedBy *string `json:"acknowledged_by"`
	AcknowledgedAt *string `json:"acknowledged_at"`
	Notes          *string `json:"notes"`
	CreatedAt      string  `json:"created_at"`
}

type AlertListResponse struct {
	Data  []AlertResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
