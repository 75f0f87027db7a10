package repository

import (
	"context"
	"errors"
	"time"

	"ammotrack/internal/dto"
	"ammotrack/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportRepository interface {
	Create(ctx context.Context, rep *model.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	List(ctx context.Context, filter dto.ReportFilter) ([]model.Report, int64, error)
	Update(ctx context.Context, rep *model.Report) error
	Delete(ctx context.Context, id uuid.UUID) error
	// RecordDownload bumps the counter and the last-access timestamp.
	RecordDownload(ctx context.Context, id uuid.UUID, at time.Time) error
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) Create(ctx context.Context, rep *model.Report) error {
	return r.db.WithContext(ctx).Create(rep).Error
}

func (r *reportRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var rep model.Report
	err := r.db.WithContext(ctx).Preload("GeneratedBy").First(&rep, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &rep, err
}

func (r *reportRepo) List(ctx context.Context, filter dto.ReportFilter) ([]model.Report, int64, error) {
	var reports []model.Report
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Report{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("GeneratedBy").Order("created_at DESC").
		Limit(filter.Limit).Offset(offset).Find(&reports).Error
	return reports, total, err
}

func (r *reportRepo) Update(ctx context.Context, rep *model.Report) error {
	return r.db.WithContext(ctx).Save(rep).Error
}

func (r *reportRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Report{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *reportRepo) RecordDownload(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Report{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"download_count": gorm.Expr("download_count + 1"),
			"last_accessed":  at,
		}).Error
}
