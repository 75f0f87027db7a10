package service

import (
	"fmt"
	"time"

	"context"

	"ammotrack/internal/dto"
	"ammotrack/internal/model"
	"ammotrack/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor identifies the authenticated user performing a mutation, for the
// audit trail.
type Actor struct {
	ID       uuid.UUID
	Username string
}

type IssueService interface {
	CreateIssue(ctx context.Context, actor Actor, req dto.CreateIssueRequest) (*dto.IssueResponse, error)
	GetIssue(ctx context.Context, id uuid.UUID) (*dto.IssueResponse, error)
	ListIssues(ctx context.Context, filter dto.IssueFilter) (*dto.IssueListResponse, error)
	UpdateIssue(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateIssueRequest) (*dto.IssueResponse, error)
	DeleteIssue(ctx context.Context, actor Actor, id uuid.UUID) error
}

type issueService struct {
	issues    repository.IssueRepository
	lots      repository.StockLotRepository
	movements repository.StockMovementRepository
	users     repository.UserRepository
	audit     AuditService
}

func NewIssueService(
	issues repository.IssueRepository,
	lots repository.StockLotRepository,
	movements repository.StockMovementRepository,
	users repository.UserRepository,
	audit AuditService,
) IssueService {
	return &issueService{issues: issues, lots: lots, movements: movements, users: users, audit: audit}
}

// ── CreateIssue ───────────────────────────────────────────────────────────────
// The only operation with a shared-mutation hazard. Per attempt:
//
//	validate → advisory stock check → BEGIN TX:
//	    lock lot row (SELECT ... FOR UPDATE)
//	    re-check quantity against the locked row
//	    insert issue record
//	    decrement lot (UPDATE ... WHERE quantity >= ?, RowsAffected checked)
//	    insert stock movement
//	COMMIT — any error on any step rolls back every write.
//
// The pre-flight check outside the transaction exists only for a fast
// user-facing error; the locked re-check inside is authoritative. Two
// concurrent issuers against the same lot serialize on the row lock, so
// exactly one wins when stock covers only one of them.

func (s *issueService) CreateIssue(ctx context.Context, actor Actor, req dto.CreateIssueRequest) (*dto.IssueResponse, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: issue_quantity must be a positive integer", ErrValidation)
	}
	lotID, err := uuid.Parse(req.StockLotID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid stock_lot_id", ErrValidation)
	}
	requesterID, err := uuid.Parse(req.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid requester_id", ErrValidation)
	}
	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: issue_date must be YYYY-MM-DD", ErrValidation)
	}

	// Pre-flight checks, outside the transaction. Advisory only.
	lot, err := s.lots.FindByID(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("stock lot %s: %w", req.StockLotID, err)
	}
	if _, err := s.users.FindByID(ctx, requesterID); err != nil {
		return nil, fmt.Errorf("requester %s: %w", req.RequesterID, err)
	}
	if lot.Quantity < req.Quantity {
		return nil, ErrInsufficientStock
	}

	var issue model.IssueRecord
	txErr := runTx(ctx, s.lots.DB(), func(tx *gorm.DB) error {
		locked, err := s.lots.FindByIDForUpdateTx(tx, lotID)
		if err != nil {
			return err
		}
		// Authoritative re-check: the advisory read may be stale by now.
		if locked.Quantity < req.Quantity {
			return ErrInsufficientStock
		}

		issue = model.IssueRecord{
			StockLotID:  lotID,
			RequesterID: requesterID,
			IssueDate:   issueDate,
			Quantity:    req.Quantity,
			TypeLineRef: req.TypeLineRef,
		}
		if err := s.issues.CreateTx(tx, &issue); err != nil {
			return err
		}

		if err := s.lots.DecrementTx(tx, lotID, req.Quantity); err != nil {
			return err
		}

		ref := issue.ID
		mov := &model.StockMovement{
			StockLotID:     lotID,
			Type:           "issue",
			Delta:          -req.Quantity,
			QuantityBefore: locked.Quantity,
			QuantityAfter:  locked.Quantity - req.Quantity,
			Reason:         fmt.Sprintf("Issue of %d rounds from lot %s", req.Quantity, locked.LotNumber),
			ReferenceID:    &ref,
		}
		return s.movements.CreateTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	id := issue.ID.String()
	s.audit.Record(ctx, &actor.ID, actor.Username, "issue.create", "issue_record", &id,
		fmt.Sprintf("issued %d rounds from lot %s", req.Quantity, lot.LotNumber))

	resp := issueToResponse(&issue)
	resp.LotNumber = lot.LotNumber
	resp.AmmoType = lot.AmmoType
	return resp, nil
}

func (s *issueService) GetIssue(ctx context.Context, id uuid.UUID) (*dto.IssueResponse, error) {
	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return issueToResponse(issue), nil
}

func (s *issueService) ListIssues(ctx context.Context, filter dto.IssueFilter) (*dto.IssueListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	issues, total, err := s.issues.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, *issueToResponse(&issues[i]))
	}
	return &dto.IssueListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// UpdateIssue edits the record only. The stock lot quantity is NOT
// re-reconciled: issue history and inventory are independently editable,
// matching the observed behavior this service replaces.
func (s *issueService) UpdateIssue(ctx context.Context, actor Actor, id uuid.UUID, req dto.UpdateIssueRequest) (*dto.IssueResponse, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: issue_quantity must be a positive integer", ErrValidation)
	}
	requesterID, err := uuid.Parse(req.RequesterID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid requester_id", ErrValidation)
	}
	issueDate, err := time.Parse("2006-01-02", req.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("%w: issue_date must be YYYY-MM-DD", ErrValidation)
	}
	if _, err := s.users.FindByID(ctx, requesterID); err != nil {
		return nil, fmt.Errorf("requester %s: %w", req.RequesterID, err)
	}

	issue, err := s.issues.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	issue.RequesterID = requesterID
	issue.IssueDate = issueDate
	issue.Quantity = req.Quantity
	issue.TypeLineRef = req.TypeLineRef
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, err
	}

	idStr := id.String()
	s.audit.Record(ctx, &actor.ID, actor.Username, "issue.update", "issue_record", &idStr, "")
	return issueToResponse(issue), nil
}

// DeleteIssue removes the record without giving stock back to the lot.
func (s *issueService) DeleteIssue(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.issues.Delete(ctx, id); err != nil {
		return err
	}
	idStr := id.String()
	s.audit.Record(ctx, &actor.ID, actor.Username, "issue.delete", "issue_record", &idStr, "")
	return nil
}

func issueToResponse(issue *model.IssueRecord) *dto.IssueResponse {
	resp := &dto.IssueResponse{
		ID:          issue.ID.String(),
		StockLotID:  issue.StockLotID.String(),
		RequesterID: issue.RequesterID.String(),
		IssueDate:   issue.IssueDate.Format("2006-01-02"),
		Quantity:    issue.Quantity,
		TypeLineRef: issue.TypeLineRef,
		CreatedAt:   issue.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if issue.StockLot != nil {
		resp.LotNumber = issue.StockLot.LotNumber
		resp.AmmoType = issue.StockLot.AmmoType
	}
	if issue.Requester != nil {
		resp.Requester = issue.Requester.Name
	}
	return resp
}
