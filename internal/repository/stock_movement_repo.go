package repository

import (
	"context"

	"ammotrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	// CreateTx writes the movement in the same transaction as the quantity
	// change it describes.
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	ListByLot(ctx context.Context, lotID uuid.UUID, limit int) ([]model.StockMovement, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockMovementRepo) ListByLot(ctx context.Context, lotID uuid.UUID, limit int) ([]model.StockMovement, error) {
	if limit <= 0 {
		limit = 100
	}
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("stock_lot_id = ?", lotID).
		Order("created_at DESC").Limit(limit).Find(&movements).Error
	return movements, err
}
