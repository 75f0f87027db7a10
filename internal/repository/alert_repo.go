package repository

import (
	"context"
	"errors"

	"ammotrack/internal/dto"
	"ammotrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AlertRepository interface {
	// CreateIfAbsent inserts the alert unless an open alert for the same
	// (stock_lot_id, type) already exists. Returns true when a row was
	// actually inserted. The uniqueness is a partial index enforced by the
	// database, so concurrent sweeps cannot double-insert.
	CreateIfAbsent(ctx context.Context, a *model.Alert) (bool, error)
	Create(ctx context.Context, a *model.Alert) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Alert, error)
	List(ctx context.Context, filter dto.AlertFilter) ([]model.Alert, int64, error)
	Update(ctx context.Context, a *model.Alert) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountOpen(ctx context.Context) (int64, error)
	ListForExport(ctx context.Context) ([]model.Alert, error)
}

type alertRepo struct{ db *gorm.DB }

func NewAlertRepository(db *gorm.DB) AlertRepository { return &alertRepo{db: db} }

func (r *alertRepo) CreateIfAbsent(ctx context.Context, a *model.Alert) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stock_lot_id"}, {Name: "type"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Name: "status"}, Value: model.AlertStatusOpen},
		}},
		DoNothing: true,
	}).Create(a)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *alertRepo) Create(ctx context.Context, a *model.Alert) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *alertRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Alert, error) {
	var a model.Alert
	err := r.db.WithContext(ctx).Preload("StockLot").First(&a, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *alertRepo) List(ctx context.Context, filter dto.AlertFilter) ([]model.Alert, int64, error) {
	var alerts []model.Alert
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Alert{})
	switch filter.Status {
	case "", "all":
		// no filter
	default:
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Severity != "" {
		q = q.Where("severity = ?", filter.Severity)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("StockLot").Order("created_at DESC").
		Limit(filter.Limit).Offset(offset).Find(&alerts).Error
	return alerts, total, err
}

func (r *alertRepo) Update(ctx context.Context, a *model.Alert) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *alertRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Alert{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *alertRepo) CountOpen(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Alert{}).
		Where("status = ?", model.AlertStatusOpen).Count(&n).Error
	return n, err
}

func (r *alertRepo) ListForExport(ctx context.Context) ([]model.Alert, error) {
	var alerts []model.Alert
	err := r.db.WithContext(ctx).Preload("StockLot").
		Order("created_at DESC").Find(&alerts).Error
	return alerts, err
}
