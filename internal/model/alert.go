package model

import (
	"time"

	"github.com/google/uuid"
)

// Alert lifecycle: open → acknowledged | dismissed → resolved.
const (
	AlertStatusOpen         = "open"
	AlertStatusAcknowledged = "acknowledged"
	AlertStatusDismissed    = "dismissed"
	AlertStatusResolved     = "resolved"
)

// Alert types derived by the sweep plus the security signal from auth.
const (
	AlertTypeLowStock      = "low_stock"
	AlertTypeExpiryWarning = "expiry_warning"
	AlertTypeSecurity      = "security"
)

// Alert is a derived notification. Duplicate suppression for lot-scoped
// alerts is enforced by a partial unique index on (stock_lot_id, type)
// WHERE status = 'open' — creation uses ON CONFLICT DO NOTHING, never a
// read-then-insert check.
type Alert struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StockLotID     *uuid.UUID `gorm:"type:uuid;index"` // nil for security alerts
	Type           string     `gorm:"not null"`
	Severity       string     `gorm:"not null"` // "critical" | "high" | "medium" | "low"
	Message        string     `gorm:"not null"`
	Status         string     `gorm:"not null;default:'open'"`
	AcknowledgedBy *uuid.UUID `gorm:"type:uuid"`
	AcknowledgedAt *time.Time
	Notes          *string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	StockLot *StockLot `gorm:"foreignKey:StockLotID"`
}
