package service_test

import (
	"context"
	"testing"
	"time"

	"ammotrack/internal/dto"
	"ammotrack/internal/model"
	"ammotrack/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildAlertSvc() (service.AlertService, *stubAlertRepo, *stubLotRepo, *stubNotifier) {
	alerts := newStubAlertRepo()
	lots := newStubLotRepo()
	notifier := &stubNotifier{}
	svc := service.NewAlertService(alerts, lots, &stubAuditService{}, notifier, 30)
	return svc, alerts, lots, notifier
}

func seedLowLot(t *testing.T, lots *stubLotRepo, quantity, threshold int) uuid.UUID {
	t.Helper()
	lot := &model.StockLot{
		LotNumber:    "LOT-9MM-0126",
		AmmoType:     "9mm",
		CustodianID:  uuid.New(),
		Quantity:     quantity,
		MinThreshold: threshold,
		ReceivedDate: time.Now().AddDate(0, -2, 0),
	}
	require.NoError(t, lots.Create(context.Background(), lot))
	return lot.ID
}

func TestSweep_CreatesLowStockAlert(t *testing.T) {
	svc, alerts, lots, _ := buildAlertSvc()
	seedLowLot(t, lots, 40, 100)

	created, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, alerts.count())
}

func TestSweep_Idempotent(t *testing.T) {
	svc, alerts, lots, _ := buildAlertSvc()
	seedLowLot(t, lots, 40, 100)

	first, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	// Same conditions, second pass: suppressed by the open-alert uniqueness.
	second, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second)
	assert.Equal(t, 1, alerts.count())
}

func TestSweep_ExpiryWarning(t *testing.T) {
	svc, alerts, lots, _ := buildAlertSvc()
	expiry := time.Now().AddDate(0, 0, 10)
	lot := &model.StockLot{
		LotNumber:    "LOT-12G-0925",
		AmmoType:     "12 gauge",
		CustodianID:  uuid.New(),
		Quantity:     500,
		MinThreshold: 100,
		ReceivedDate: time.Now().AddDate(-1, 0, 0),
		ExpiryDate:   &expiry,
	}
	require.NoError(t, lots.Create(context.Background(), lot))

	created, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	list, _, err := alerts.List(context.Background(), dto.AlertFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.AlertTypeExpiryWarning, list[0].Type)
}

func TestSweep_CriticalSeverityNotifies(t *testing.T) {
	svc, _, lots, notifier := buildAlertSvc()
	// 10/100 < 25% of threshold → critical
	seedLowLot(t, lots, 10, 100)

	_, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Len(t, notifier.subjects, 1)
}

func TestSweep_MediumSeverityDoesNotNotify(t *testing.T) {
	svc, _, lots, notifier := buildAlertSvc()
	// 80/100 → medium
	seedLowLot(t, lots, 80, 100)

	_, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notifier.subjects)
}

func TestRaiseSecurityAlert(t *testing.T) {
	svc, alerts, _, notifier := buildAlertSvc()

	svc.RaiseSecurityAlert(context.Background(), "intruder")
	assert.Equal(t, 1, alerts.count())
	assert.Len(t, notifier.subjects, 1, "security alerts are critical and always notify")
}

func openAlert(t *testing.T, alerts *stubAlertRepo) uuid.UUID {
	t.Helper()
	lotID := uuid.New()
	a := &model.Alert{
		StockLotID: &lotID,
		Type:       model.AlertTypeLowStock,
		Severity:   "medium",
		Message:    "below threshold",
		Status:     model.AlertStatusOpen,
	}
	require.NoError(t, alerts.Create(context.Background(), a))
	return a.ID
}

func TestAlertTransitions(t *testing.T) {
	svc, alerts, _, _ := buildAlertSvc()
	ctx := context.Background()

	id := openAlert(t, alerts)
	notes := "verified count"
	resp, err := svc.Acknowledge(ctx, testActor, id, &notes)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusAcknowledged, resp.Status)
	require.NotNil(t, resp.Notes)
	assert.Equal(t, notes, *resp.Notes)

	// acknowledged → resolved is allowed
	resp, err = svc.Resolve(ctx, testActor, id)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusResolved, resp.Status)

	// resolved is terminal
	_, err = svc.Acknowledge(ctx, testActor, id, nil)
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = svc.Dismiss(ctx, testActor, id)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestDismissThenResolve(t *testing.T) {
	svc, alerts, _, _ := buildAlertSvc()
	ctx := context.Background()

	id := openAlert(t, alerts)
	resp, err := svc.Dismiss(ctx, testActor, id)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusDismissed, resp.Status)

	resp, err = svc.Resolve(ctx, testActor, id)
	require.NoError(t, err)
	assert.Equal(t, model.AlertStatusResolved, resp.Status)
}

func TestAlertTransition_NotFound(t *testing.T) {
	svc, _, _, _ := buildAlertSvc()
	_, err := svc.Resolve(context.Background(), testActor, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
