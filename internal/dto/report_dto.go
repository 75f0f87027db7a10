package dto

type GenerateReportRequest struct {
	Name   string `json:"name"   validate:"required,min=1"`
	Type   string `json:"type"   validate:"required,oneof=inventory issues alerts audit"`
	Format string `json:"format" validate:"required,oneof=pdf csv"`
	Period string `json:"period"`
}

type ReportFilter struct {
	Type   string `form:"type"   validate:"omitempty,oneof=inventory issues alerts audit"`
	Status string `form:"status" validate:"omitempty,oneof=pending completed failed"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ReportResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Format        string  `json:"format"`
	Period        string  `json:"period"`
	Status        string  `json:"status"`
	FileSize      int64   `json:"file_size"`
	GeneratedBy   string  `json:"generated_by"`
	RetentionDate string  `json:"retention_date"`
	DownloadCount int     `json:"download_count"`
	LastAccessed  *string `json:"last_accessed"`
	CreatedAt     string  `json:"created_at"`
}

type ReportListResponse struct {
	Data  []ReportResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}
