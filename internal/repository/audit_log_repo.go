package repository

import (
	"context"

	"ammotrack/internal/dto"
	"ammotrack/internal/model"

	"gorm.io/gorm"
)

type AuditLogRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, filter dto.AuditFilter) ([]model.AuditLog, int64, error)
	ListForExport(ctx context.Context) ([]model.AuditLog, error)
}

type auditLogRepo struct{ db *gorm.DB }

func NewAuditLogRepository(db *gorm.DB) AuditLogRepository { return &auditLogRepo{db: db} }

func (r *auditLogRepo) Create(ctx context.Context, entry *model.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepo) List(ctx context.Context, filter dto.AuditFilter) ([]model.AuditLog, int64, error) {
	var entries []model.AuditLog
	var total int64

	q := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.From != "" {
		q = q.Where("created_at >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("created_at <= ?", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Limit(filter.Limit).Offset(offset).Find(&entries).Error
	return entries, total, err
}

func (r *auditLogRepo) ListForExport(ctx context.Context) ([]model.AuditLog, error) {
	var entries []model.AuditLog
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(10000).Find(&entries).Error
	return entries, err
}
