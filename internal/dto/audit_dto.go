package dto

type AuditFilter struct {
	Action string `form:"action"`
	UserID string `form:"user_id" validate:"omitempty,uuid"`
	From   string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `form:"to"   validate:"omitempty,datetime=2006-01-02"`
	Page   int    `form:"page,default=1"    validate:"min=1"`
	Limit  int    `form:"limit,default=100" validate:"min=1,max=500"`
}

type AuditLogResponse struct {
	ID        string  `json:"id"`
	UserID    *string `json:"user_id"`
	Username  string  `json:"username"`
	Action    string  `json:"action"`
	Entity    string  `json:"entity"`
	EntityID  *string `json:"entity_id"`
	Detail    string  `json:"detail"`
	CreatedAt string  `json:"created_at"`
}

type AuditListResponse struct {
	Data  []AuditLogResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
