package model

import (
	"time"

	"github.com/google/uuid"
)

// Report is the metadata record for a generated (or pending) report file.
// Files live on disk under the configured storage path; rows are retained
// for three years from generation.
type Report struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string    `gorm:"not null"`
	Type          string    `gorm:"not null"` // "inventory" | "issues" | "alerts" | "audit"
	Format        string    `gorm:"not null"` // "pdf" | "csv"
	Period        string
	Status        string `gorm:"not null;default:'pending'"` // "pending" | "completed" | "failed"
	FilePath      *string
	FileSize      int64     `gorm:"not null;default:0"`
	GeneratedByID uuid.UUID `gorm:"type:uuid;not null"`
	RetentionDate time.Time `gorm:"not null"`
	DownloadCount int       `gorm:"not null;default:0"`
	LastAccessed  *time.Time
	LastError     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	GeneratedBy *User `gorm:"foreignKey:GeneratedByID"`
}
