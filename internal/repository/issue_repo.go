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

// IssueRepository persists issue records. CreateTx exists because the insert
// must share a transaction with the stock decrement.
type IssueRepository interface {
	CreateTx(tx *gorm.DB, issue *model.IssueRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.IssueRecord, error)
	List(ctx context.Context, filter dto.IssueFilter) ([]model.IssueRecord, int64, error)
	Update(ctx context.Context, issue *model.IssueRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStockLot(ctx context.Context, lotID uuid.UUID) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	SumQuantitySince(ctx context.Context, since time.Time) (int64, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]model.IssueRecord, error)
}

type issueRepo struct{ db *gorm.DB }

func NewIssueRepository(db *gorm.DB) IssueRepository { return &issueRepo{db: db} }

func (r *issueRepo) CreateTx(tx *gorm.DB, issue *model.IssueRecord) error {
	return tx.Create(issue).Error
}

func (r *issueRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.IssueRecord, error) {
	var issue model.IssueRecord
	err := r.db.WithContext(ctx).
		Preload("StockLot").Preload("Requester").
		First(&issue, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &issue, err
}

func (r *issueRepo) List(ctx context.Context, filter dto.IssueFilter) ([]model.IssueRecord, int64, error) {
	var issues []model.IssueRecord
	var total int64

	q := r.db.WithContext(ctx).Model(&model.IssueRecord{})
	if filter.StockLotID != "" {
		q = q.Where("stock_lot_id = ?", filter.StockLotID)
	}
	if filter.RequesterID != "" {
		q = q.Where("requester_id = ?", filter.RequesterID)
	}
	if filter.From != "" {
		q = q.Where("issue_date >= ?", filter.From)
	}
	if filter.To != "" {
		q = q.Where("issue_date <= ?", filter.To)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("StockLot").Preload("Requester").
		Order("issue_date DESC").Limit(filter.Limit).Offset(offset).Find(&issues).Error
	return issues, total, err
}

func (r *issueRepo) Update(ctx context.Context, issue *model.IssueRecord) error {
	return r.db.WithContext(ctx).Save(issue).Error
}

func (r *issueRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.IssueRecord{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *issueRepo) CountByStockLot(ctx context.Context, lotID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.IssueRecord{}).
		Where("stock_lot_id = ?", lotID).Count(&n).Error
	return n, err
}

func (r *issueRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.IssueRecord{}).
		Where("issue_date >= ?", since).Count(&n).Error
	return n, err
}

func (r *issueRepo) SumQuantitySince(ctx context.Context, since time.Time) (int64, error) {
	var sum *int64
	err := r.db.WithContext(ctx).Model(&model.IssueRecord{}).
		Select("SUM(quantity)").Where("issue_date >= ?", since).Scan(&sum).Error
	if err != nil || sum == nil {
		return 0, err
	}
	return *sum, nil
}

func (r *issueRepo) ListBetween(ctx context.Context, from, to time.Time) ([]model.IssueRecord, error) {
	var issues []model.IssueRecord
	err := r.db.WithContext(ctx).
		Preload("StockLot").Preload("Requester").
		Where("issue_date >= ? AND issue_date <= ?", from, to).
		Order("issue_date DESC").Find(&issues).Error
	return issues, err
}
