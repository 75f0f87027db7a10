package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ammotrack/internal/dto"
	"ammotrack/internal/model"
	"ammotrack/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIssueSvc() (service.IssueService, *stubLotRepo, *stubIssueRepo, *stubMovementRepo, *stubUserRepo, *stubAuditService) {
	lots := newStubLotRepo()
	issues := newStubIssueRepo()
	movements := &stubMovementRepo{}
	users := newStubUserRepo()
	audit := &stubAuditService{}
	svc := service.NewIssueService(issues, lots, movements, users, audit)
	return svc, lots, issues, movements, users, audit
}

func seedLotAndUser(t *testing.T, lots *stubLotRepo, users *stubUserRepo, quantity int) (uuid.UUID, uuid.UUID) {
	t.Helper()
	lot := &model.StockLot{
		LotNumber:    "LOT-7.62-0425",
		AmmoType:     "7.62mm",
		CustodianID:  uuid.New(),
		Quantity:     quantity,
		MinThreshold: 50,
		ReceivedDate: time.Now().AddDate(0, -1, 0),
	}
	require.NoError(t, lots.Create(context.Background(), lot))

	user := &model.User{Username: "rifleman", Name: "A. Rifleman", Role: "clerk", PasswordHash: "x", Active: true}
	require.NoError(t, users.Create(context.Background(), user))
	return lot.ID, user.ID
}

func issueReq(lotID, userID uuid.UUID, qty int) dto.CreateIssueRequest {
	return dto.CreateIssueRequest{
		StockLotID:  lotID.String(),
		RequesterID: userID.String(),
		IssueDate:   "2026-08-30",
		Quantity:    qty,
	}
}

var testActor = service.Actor{ID: uuid.New(), Username: "tester"}

func TestCreateIssue_Success(t *testing.T) {
	svc, lots, issues, movements, users, audit := buildIssueSvc()
	lotID, userID := seedLotAndUser(t, lots, users, 100)

	resp, err := svc.CreateIssue(context.Background(), testActor, issueReq(lotID, userID, 30))
	require.NoError(t, err)
	assert.Equal(t, 30, resp.Quantity)
	assert.Equal(t, "LOT-7.62-0425", resp.LotNumber)

	qty, err := lots.GetQuantity(context.Background(), lotID)
	require.NoError(t, err)
	assert.Equal(t, 70, qty)

	assert.Equal(t, 1, issues.count())
	assert.Equal(t, 1, movements.count())
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "issue.create", audit.entries[0].Action)
}

func TestCreateIssue_InvalidQuantity_NoWrites(t *testing.T) {
	svc, lots, issues, movements, users, _ := buildIssueSvc()
	lotID, userID := seedLotAndUser(t, lots, users, 100)

	for _, qty := range []int{0, -5} {
		req := issueReq(lotID, userID, qty)
		_, err := svc.CreateIssue(context.Background(), testActor, req)
		assert.ErrorIs(t, err, service.ErrValidation)
	}

	qty, _ := lots.GetQuantity(context.Background(), lotID)
	assert.Equal(t, 100, qty)
	assert.Zero(t, issues.count())
	assert.Zero(t, movements.count())
}

func TestCreateIssue_BadDate(t *testing.T) {
	svc, lots, _, _, users, _ := buildIssueSvc()
	lotID, userID := seedLotAndUser(t, lots, users, 100)

	req := issueReq(lotID, userID, 10)
	req.IssueDate = "30-08-2026"
	_, err := svc.CreateIssue(context.Background(), testActor, req)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestCreateIssue_UnknownLot(t *testing.T) {
	svc, lots, issues, _, users, _ := buildIssueSvc()
	_, userID := seedLotAndUser(t, lots, users, 100)

	req := issueReq(uuid.New(), userID, 10)
	_, err := svc.CreateIssue(context.Background(), testActor, req)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Zero(t, issues.count())
}

func TestCreateIssue_UnknownRequester(t *testing.T) {
	svc, lots, issues, _, users, _ := buildIssueSvc()
	lotID, _ := seedLotAndUser(t, lots, users, 100)

	req := issueReq(lotID, uuid.New(), 10)
	_, err := svc.CreateIssue(context.Background(), testActor, req)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Zero(t, issues.count())
}

func TestCreateIssue_InsufficientStock(t *testing.T) {
	svc, lots, issues, movements, users, _ := buildIssueSvc()
	lotID, userID := seedLotAndUser(t, lots, users, 50)

	_, err := svc.CreateIssue(context.Background(), testActor, issueReq(lotID, userID, 51))
	require.ErrorIs(t, err, service.ErrInsufficientStock)
	assert.Equal(t, "Not enough quantity in inventory", service.ErrInsufficientStock.Error())

	qty, _ := lots.GetQuantity(context.Background(), lotID)
	assert.Equal(t, 50, qty)
	assert.Zero(t, issues.count())
	assert.Zero(t, movements.count())
}

func TestCreateIssue_ExactDecrementToZero(t *testing.T) {
	svc, lots, issues, _, users, _ := buildIssueSvc()
	lotID, userID := seedLotAndUser(t, lots, users, 500)

	_, err := svc.CreateIssue(context.Background(), testActor, issueReq(lotID, userID, 500))
	require.NoError(t, err)

	qty, _ := lots.GetQuantity(context.Background(), lotID)
	assert.Zero(t, qty)

	// Lot is drained: the next issue of any size must fail.
	_, err = svc.CreateIssue(context.Background(), testActor, issueReq(lotID, userID, 1))
	assert.ErrorIs(t, err, service.ErrInsufficientStock)
	assert.Equal(t, 1, issues.count())
}

// TestCreateIssue_StaleAdvisoryRead simulates a concurrent issuer draining
// the lot between the advisory pre-flight read and the row lock. The locked
// re-check must catch it before any write happens.
func TestCreateIssue_StaleAdvisoryRead(t *testing.T) {
	svc, lots, issues, movements, users, _ := buildIssueSvc()
	lotID, userID := seedLotAndUser(t, lots, users, 100)

	drained := false
	lots.onLockedRead = func(lot *model.StockLot) {
		if !drained {
			lot.Quantity = 20 // concurrent writer got there first
			drained = true
		}
	}

	_, err := svc.CreateIssue(context.Background(), testActor, issueReq(lotID, userID, 80))
	require.ErrorIs(t, err, service.ErrInsufficientStock)

	// Re-check fired before the insert: no issue record, no movement.
	assert.Zero(t, issues.count())
	assert.Zero(t, movements.count())
}

func TestCreateIssue_MovementWriteFailure(t *testing.T) {
	svc, lots, _, movements, users, _ := buildIssueSvc()
	lotID, userID := seedLotAndUser(t, lots, users, 100)

	movements.failErr = errors.New("disk full")
	_, err := svc.CreateIssue(context.Background(), testActor, issueReq(lotID, userID, 10))
	require.Error(t, err)
	assert.ErrorContains(t, err, "disk full")
}

func TestGetQuantity_RepeatedReadsStable(t *testing.T) {
	svc, lots, _, _, users, _ := buildIssueSvc()
	lotID, userID := seedLotAndUser(t, lots, users, 100)
	invSvc := service.NewInventoryService(lots, newStubIssueRepo(), &stubMovementRepo{}, &stubAuditService{})

	first, err := invSvc.GetQuantity(context.Background(), lotID)
	require.NoError(t, err)
	second, err := invSvc.GetQuantity(context.Background(), lotID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = svc.CreateIssue(context.Background(), testActor, issueReq(lotID, userID, 25))
	require.NoError(t, err)

	after, err := invSvc.GetQuantity(context.Background(), lotID)
	require.NoError(t, err)
	assert.Equal(t, first-25, after)
}

// Issue edits and deletes touch the history only — stock stays where the
// original disbursal left it.
func TestUpdateIssue_DoesNotTouchStock(t *testing.T) {
	svc, lots, _, _, users, _ := buildIssueSvc()
	lotID, userID := seedLotAndUser(t, lots, users, 100)

	resp, err := svc.CreateIssue(context.Background(), testActor, issueReq(lotID, userID, 40))
	require.NoError(t, err)
	issueID := uuid.MustParse(resp.ID)

	_, err = svc.UpdateIssue(context.Background(), testActor, issueID, dto.UpdateIssueRequest{
		RequesterID: userID.String(),
		IssueDate:   "2026-08-30",
		Quantity:    10, // was 40
	})
	require.NoError(t, err)

	qty, _ := lots.GetQuantity(context.Background(), lotID)
	assert.Equal(t, 60, qty, "stock must not be reconciled on issue edit")
}

func TestUpdateIssue_UnknownRequester(t *testing.T) {
	svc, lots, _, _, users, _ := buildIssueSvc()
	lotID, userID := seedLotAndUser(t, lots, users, 100)

	resp, err := svc.CreateIssue(context.Background(), testActor, issueReq(lotID, userID, 40))
	require.NoError(t, err)
	issueID := uuid.MustParse(resp.ID)

	_, err = svc.UpdateIssue(context.Background(), testActor, issueID, dto.UpdateIssueRequest{
		RequesterID: uuid.New().String(),
		IssueDate:   "2026-08-30",
		Quantity:    40,
	})
	assert.ErrorIs(t, err, service.ErrNotFound)

	// Record untouched.
	unchanged, err := svc.GetIssue(context.Background(), issueID)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), unchanged.RequesterID)
}

func TestDeleteIssue_DoesNotRestoreStock(t *testing.T) {
	svc, lots, issues, _, users, _ := buildIssueSvc()
	lotID, userID := seedLotAndUser(t, lots, users, 100)

	resp, err := svc.CreateIssue(context.Background(), testActor, issueReq(lotID, userID, 40))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteIssue(context.Background(), testActor, uuid.MustParse(resp.ID)))
	assert.Zero(t, issues.count())

	qty, _ := lots.GetQuantity(context.Background(), lotID)
	assert.Equal(t, 60, qty, "stock must not be restored on issue delete")
}

func TestDeleteIssue_NotFound(t *testing.T) {
	svc, _, _, _, _, _ := buildIssueSvc()
	err := svc.DeleteIssue(context.Background(), testActor, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
