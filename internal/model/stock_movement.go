package model

import (
	"time"

	"github.com/google/uuid"
)

// StockMovement records every quantity change on a StockLot.
// Written in the same transaction as the change itself.
type StockMovement struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StockLotID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Type           string    `gorm:"not null"` // "issue" | "stock_add" | "correction"
	Delta          int       `gorm:"not null"` // positive = intake, negative = disbursal
	QuantityBefore int       `gorm:"not null"`
	QuantityAfter  int       `gorm:"not null"`
	Reason         string
	ReferenceID    *uuid.UUID `gorm:"type:uuid"` // issue_record id when Type = "issue"
	CreatedAt      time.Time

	StockLot *StockLot `gorm:"foreignKey:StockLotID"`
}

// TableName overrides GORM's default pluralization (stock_movements is fine,
// but keep it explicit alongside the partial-index patches in infra).
func (StockMovement) TableName() string { return "stock_movements" }
