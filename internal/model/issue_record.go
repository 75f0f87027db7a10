package model

import (
	"time"

	"github.com/google/uuid"
)

// IssueRecord is a single disbursal of ammunition from one StockLot to a
// requester. Created atomically with the lot decrement; later edits or
// deletes do NOT adjust the lot quantity (issue history and inventory are
// independently editable — see the reconciliation note in DESIGN.md).
type IssueRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StockLotID  uuid.UUID `gorm:"type:uuid;not null;index"`
	RequesterID uuid.UUID `gorm:"type:uuid;not null;index"`
	IssueDate   time.Time `gorm:"not null;index"`
	Quantity    int       `gorm:"not null"`
	// TypeLineRef is the optional ammunition-type-line reference carried on
	// the issue voucher; free-form, nil when not supplied.
	TypeLineRef *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	StockLot  *StockLot `gorm:"foreignKey:StockLotID"`
	Requester *User     `gorm:"foreignKey:RequesterID"`
}
