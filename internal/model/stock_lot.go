package model

import (
	"time"

	"github.com/google/uuid"
)

// StockLot is a tracked quantity of ammunition under one lot number,
// owned by a single custodian. Quantity is the authoritative on-hand
// count and must never go negative — the decrement path re-checks it
// inside the same transaction that inserts the issue record.
type StockLot struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LotNumber    string    `gorm:"uniqueIndex;not null"`
	AmmoType     string    `gorm:"index;not null"` // e.g. "5.56mm NATO", "9mm Parabellum"
	CustodianID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Quantity     int       `gorm:"not null;default:0"`
	MinThreshold int       `gorm:"not null;default:100"`
	ReceivedDate time.Time `gorm:"not null"`
	ExpiryDate   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Custodian *User `gorm:"foreignKey:CustodianID"`
}
