package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog is an append-only trail of mutating actions. Written best-effort
// after the mutation commits; never part of the mutation's transaction.
type AuditLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    *uuid.UUID `gorm:"type:uuid;index"`
	Username  string
	Action    string `gorm:"not null;index"` // e.g. "issue.create", "inventory.update"
	Entity    string `gorm:"not null"`
	EntityID  *string
	Detail    string
	CreatedAt time.Time `gorm:"index"`
}
