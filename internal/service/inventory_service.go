package service

import (
	"context"
	"fmt"
	"time"

	"ammotrack/internal/dto"
	"ammotrack/internal/model"
	"ammotrack/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryService manages stock lots. Quantity mutations here are intake
// and correction edits; disbursals go exclusively through IssueService.
type InventoryService interface {
	CreateLot(ctx context.Context, actor Actor, req dto.CreateStockLotRequest) (*dto.StockLotResponse, error)
	GetLot(ctx context.Context, id uuid.UUID) (*dto.StockLotResponse, error)
	GetQuantity(ctx context.Context, id uuid.UUID) (int, error)
	ListLots(ctx context.Context, filter dto.InventoryFilter) (*dto.StockLotListResponse, error)
	UpdateLot(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateStockLotRequest) (*dto.StockLotResponse, error)
	DeleteLot(ctx context.Context, actor Actor, id uuid.UUID) error
	ListMovements(ctx context.Context, id uuid.UUID, limit int) ([]dto.StockMovementResponse, error)
}

type inventoryService struct {
	lots      repository.StockLotRepository
	issues    repository.IssueRepository
	movements repository.StockMovementRepository
	audit     AuditService
}

func NewInventoryService(
	lots repository.StockLotRepository,
	issues repository.IssueRepository,
	movements repository.StockMovementRepository,
	audit AuditService,
) InventoryService {
	return &inventoryService{lots: lots, issues: issues, movements: movements, audit: audit}
}

func (s *inventoryService) CreateLot(ctx context.Context, actor Actor, req dto.CreateStockLotRequest) (*dto.StockLotResponse, error) {
	custodianID, err := uuid.Parse(req.CustodianID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid custodian_id", ErrValidation)
	}
	received, err := time.Parse("2006-01-02", req.ReceivedDate)
	if err != nil {
		return nil, fmt.Errorf("%w: received_date must be YYYY-MM-DD", ErrValidation)
	}
	var expiry *time.Time
	if req.ExpiryDate != nil {
		t, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("%w: expiry_date must be YYYY-MM-DD", ErrValidation)
		}
		expiry = &t
	}

	lot := &model.StockLot{
		LotNumber:    req.LotNumber,
		AmmoType:     req.AmmoType,
		CustodianID:  custodianID,
		Quantity:     req.Quantity,
		MinThreshold: req.MinThreshold,
		ReceivedDate: received,
		ExpiryDate:   expiry,
	}

	txErr := runTx(ctx, s.lots.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			return s.lots.Create(ctx, lot)
		}
		if err := tx.Create(lot).Error; err != nil {
			return err
		}
		mov := &model.StockMovement{
			StockLotID:     lot.ID,
			Type:           "stock_add",
			Delta:          req.Quantity,
			QuantityBefore: 0,
			QuantityAfter:  req.Quantity,
			Reason:         fmt.Sprintf("Initial intake of lot %s", req.LotNumber),
		}
		return s.movements.CreateTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	id := lot.ID.String()
	s.audit.Record(ctx, &actor.ID, actor.Username, "inventory.create", "stock_lot", &id,
		fmt.Sprintf("added lot %s with %d rounds", req.LotNumber, req.Quantity))
	return lotToResponse(lot), nil
}

func (s *inventoryService) GetLot(ctx context.Context, id uuid.UUID) (*dto.StockLotResponse, error) {
	lot, err := s.lots.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return lotToResponse(lot), nil
}

// GetQuantity reads the current on-hand count. Repeated calls without
// intervening writes return the same value; callers must not use it to
// authorize a disbursal (that happens inside the issue transaction).
func (s *inventoryService) GetQuantity(ctx context.Context, id uuid.UUID) (int, error) {
	return s.lots.GetQuantity(ctx, id)
}

func (s *inventoryService) ListLots(ctx context.Context, filter dto.InventoryFilter) (*dto.StockLotListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	lots, total, err := s.lots.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockLotResponse, 0, len(lots))
	for i := range lots {
		items = append(items, *lotToResponse(&lots[i]))
	}
	return &dto.StockLotListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// UpdateLot is a correction edit: the supplied quantity replaces the stored
// one, and the difference is recorded as a "correction" movement in the same
// transaction.
func (s *inventoryService) UpdateLot(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateStockLotRequest) (*dto.StockLotResponse, error) {
	custodianID, err := uuid.Parse(req.CustodianID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid custodian_id", ErrValidation)
	}
	received, err := time.Parse("2006-01-02", req.ReceivedDate)
	if err != nil {
		return nil, fmt.Errorf("%w: received_date must be YYYY-MM-DD", ErrValidation)
	}
	var expiry *time.Time
	if req.ExpiryDate != nil {
		t, err := time.Parse("2006-01-02", *req.ExpiryDate)
		if err != nil {
			return nil, fmt.Errorf("%w: expiry_date must be YYYY-MM-DD", ErrValidation)
		}
		expiry = &t
	}

	var updated *model.StockLot
	txErr := runTx(ctx, s.lots.DB(), func(tx *gorm.DB) error {
		var lot *model.StockLot
		var err error
		if tx == nil {
			lot, err = s.lots.FindByID(ctx, id)
		} else {
			lot, err = s.lots.FindByIDForUpdateTx(tx, id)
		}
		if err != nil {
			return err
		}

		delta := req.Quantity - lot.Quantity
		before := lot.Quantity

		lot.LotNumber = req.LotNumber
		lot.AmmoType = req.AmmoType
		lot.CustodianID = custodianID
		lot.Quantity = req.Quantity
		lot.MinThreshold = req.MinThreshold
		lot.ReceivedDate = received
		lot.ExpiryDate = expiry

		if tx == nil {
			updated = lot
			return s.lots.Update(ctx, lot)
		}
		if err := tx.Save(lot).Error; err != nil {
			return err
		}
		updated = lot
		if delta == 0 {
			return nil
		}
		mov := &model.StockMovement{
			StockLotID:     lot.ID,
			Type:           "correction",
			Delta:          delta,
			QuantityBefore: before,
			QuantityAfter:  req.Quantity,
			Reason:         fmt.Sprintf("Correction edit by %s", actor.Username),
		}
		return s.movements.CreateTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	idStr := id.String()
	s.audit.Record(ctx, &actor.ID, actor.Username, "inventory.update", "stock_lot", &idStr, "")
	return lotToResponse(updated), nil
}

// DeleteLot refuses while issue records still reference the lot.
func (s *inventoryService) DeleteLot(ctx context.Context, actor Actor, id uuid.UUID) error {
	n, err := s.issues.CountByStockLot(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return repository.ErrLotReferenced
	}
	if err := s.lots.Delete(ctx, id); err != nil {
		return err
	}
	idStr := id.String()
	s.audit.Record(ctx, &actor.ID, actor.Username, "inventory.delete", "stock_lot", &idStr, "")
	return nil
}

// ListMovements returns the lot's quantity-change history, newest first.
func (s *inventoryService) ListMovements(ctx context.Context, id uuid.UUID, limit int) ([]dto.StockMovementResponse, error) {
	if _, err := s.lots.FindByID(ctx, id); err != nil {
		return nil, err
	}
	movements, err := s.movements.ListByLot(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		m := &movements[i]
		item := dto.StockMovementResponse{
			ID:             m.ID.String(),
			StockLotID:     m.StockLotID.String(),
			Type:           m.Type,
			Delta:          m.Delta,
			QuantityBefore: m.QuantityBefore,
			QuantityAfter:  m.QuantityAfter,
			Reason:         m.Reason,
			CreatedAt:      m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if m.ReferenceID != nil {
			ref := m.ReferenceID.String()
			item.ReferenceID = &ref
		}
		resp = append(resp, item)
	}
	return resp, nil
}

func lotToResponse(lot *model.StockLot) *dto.StockLotResponse {
	resp := &dto.StockLotResponse{
		ID:           lot.ID.String(),
		LotNumber:    lot.LotNumber,
		AmmoType:     lot.AmmoType,
		CustodianID:  lot.CustodianID.String(),
		Quantity:     lot.Quantity,
		MinThreshold: lot.MinThreshold,
		ReceivedDate: lot.ReceivedDate.Format("2006-01-02"),
		CreatedAt:    lot.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if lot.ExpiryDate != nil {
		d := lot.ExpiryDate.Format("2006-01-02")
		resp.ExpiryDate = &d
	}
	if lot.Custodian != nil {
		resp.Custodian = lot.Custodian.Name
	}
	return resp
}
