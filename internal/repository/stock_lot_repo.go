package repository

import (
	"context"
	"errors"
	"time"

	"ammotrack/internal/dto"
	"ammotrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockLotRepository is the stock ledger: the single source of truth for
// on-hand quantity per lot. Services depend on this interface, not on the
// concrete GORM implementation, enabling unit testing via in-memory stubs.
//
// Reads done outside a transaction are advisory only. Any read that feeds a
// disbursal decision must be repeated through FindByIDForUpdateTx inside the
// same transaction that performs the write.
type StockLotRepository interface {
	Create(ctx context.Context, lot *model.StockLot) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockLot, error)
	GetQuantity(ctx context.Context, id uuid.UUID) (int, error)
	List(ctx context.Context, filter dto.InventoryFilter) ([]model.StockLot, int64, error)
	Update(ctx context.Context, lot *model.StockLot) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Used inside transactions — callers must pass the tx instance.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.StockLot, error)
	DecrementTx(tx *gorm.DB, id uuid.UUID, amount int) error
	AdjustTx(tx *gorm.DB, id uuid.UUID, delta int) error

	// Alert sweep queries.
	ListBelowThreshold(ctx context.Context) ([]model.StockLot, error)
	ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]model.StockLot, error)

	// Dashboard aggregates.
	Count(ctx context.Context) (int64, error)
	TotalQuantity(ctx context.Context) (int64, error)
	CountBelowThreshold(ctx context.Context) (int64, error)
	CountExpiringBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Report export.
	ListAll(ctx context.Context) ([]model.StockLot, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type stockLotRepo struct{ db *gorm.DB }

func NewStockLotRepository(db *gorm.DB) StockLotRepository { return &stockLotRepo{db: db} }

func (r *stockLotRepo) Create(ctx context.Context, lot *model.StockLot) error {
	return r.db.WithContext(ctx).Create(lot).Error
}

func (r *stockLotRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockLot, error) {
	var lot model.StockLot
	err := r.db.WithContext(ctx).Preload("Custodian").First(&lot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &lot, err
}

func (r *stockLotRepo) GetQuantity(ctx context.Context, id uuid.UUID) (int, error) {
	var lot model.StockLot
	err := r.db.WithContext(ctx).Select("quantity").First(&lot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	return lot.Quantity, err
}

func (r *stockLotRepo) List(ctx context.Context, filter dto.InventoryFilter) ([]model.StockLot, int64, error) {
	var lots []model.StockLot
	var total int64

	q := r.db.WithContext(ctx).Model(&model.StockLot{})
	if filter.LotNumber != "" {
		q = q.Where("lot_number ILIKE ?", "%"+filter.LotNumber+"%")
	}
	if filter.AmmoType != "" {
		q = q.Where("ammo_type = ?", filter.AmmoType)
	}
	if filter.ExpiringDays > 0 {
		cutoff := time.Now().AddDate(0, 0, filter.ExpiringDays)
		q = q.Where("expiry_date IS NOT NULL AND expiry_date <= ?", cutoff)
	}
	if filter.BelowMin {
		q = q.Where("quantity < min_threshold")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Custodian").Order("lot_number ASC").Limit(filter.Limit).Offset(offset).Find(&lots).Error
	return lots, total, err
}

func (r *stockLotRepo) Update(ctx context.Context, lot *model.StockLot) error {
	return r.db.WithContext(ctx).Save(lot).Error
}

func (r *stockLotRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.StockLot{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByIDForUpdateTx takes a row lock on the lot for the duration of tx.
// Concurrent issuers against the same lot serialize here.
func (r *stockLotRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.StockLot, error) {
	var lot model.StockLot
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&lot, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &lot, err
}

// DecrementTx applies the decrement with the sufficiency check in the UPDATE
// itself: quantity >= amount is re-validated at write time, so even without
// the prior row lock the lot can never go negative.
func (r *stockLotRepo) DecrementTx(tx *gorm.DB, id uuid.UUID, amount int) error {
	res := tx.Model(&model.StockLot{}).
		Where("id = ? AND quantity >= ?", id, amount).
		Update("quantity", gorm.Expr("quantity - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := tx.Model(&model.StockLot{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return ErrInsufficientStock
	}
	return nil
}

func (r *stockLotRepo) AdjustTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	res := tx.Model(&model.StockLot{}).Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *stockLotRepo) ListBelowThreshold(ctx context.Context) ([]model.StockLot, error) {
	var lots []model.StockLot
	err := r.db.WithContext(ctx).Where("quantity < min_threshold").Find(&lots).Error
	return lots, err
}

func (r *stockLotRepo) ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]model.StockLot, error) {
	var lots []model.StockLot
	err := r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date <= ?", cutoff).
		Find(&lots).Error
	return lots, err
}

func (r *stockLotRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.StockLot{}).Count(&n).Error
	return n, err
}

func (r *stockLotRepo) TotalQuantity(ctx context.Context) (int64, error) {
	var sum *int64
	err := r.db.WithContext(ctx).Model(&model.StockLot{}).
		Select("SUM(quantity)").Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}

func (r *stockLotRepo) CountBelowThreshold(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.StockLot{}).
		Where("quantity < min_threshold").Count(&n).Error
	return n, err
}

func (r *stockLotRepo) CountExpiringBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.StockLot{}).
		Where("expiry_date IS NOT NULL AND expiry_date <= ?", cutoff).Count(&n).Error
	return n, err
}

func (r *stockLotRepo) ListAll(ctx context.Context) ([]model.StockLot, error) {
	var lots []model.StockLot
	err := r.db.WithContext(ctx).Preload("Custodian").Order("lot_number ASC").Find(&lots).Error
	return lots, err
}

func (r *stockLotRepo) DB() *gorm.DB { return r.db }
