package service

import (
	"context"
	"fmt"
	"time"

	"ammotrack/internal/dto"
	"ammotrack/internal/model"
	"ammotrack/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Notifier decouples the alert service from the async mail pipeline.
// The worker dispatcher satisfies it; tests pass nil.
type Notifier interface {
	NotifyCriticalAlert(ctx context.Context, subject, body string) error
}

type AlertService interface {
	// Sweep derives low-stock and expiry-warning alerts from current ledger
	// state. Safe to run concurrently: duplicate suppression lives in the
	// database, not here. Returns the number of alerts actually created.
	Sweep(ctx context.Context) (int, error)
	RaiseSecurityAlert(ctx context.Context, username string)
	ListAlerts(ctx context.Context, filter dto.AlertFilter) (*dto.AlertListResponse, error)
	Acknowledge(ctx context.Context, actor Actor, id uuid.UUID, notes *string) (*dto.AlertResponse, error)
	Dismiss(ctx context.Context, actor Actor, id uuid.UUID) (*dto.AlertResponse, error)
	Resolve(ctx context.Context, actor Actor, id uuid.UUID) (*dto.AlertResponse, error)
	DeleteAlert(ctx context.Context, actor Actor, id uuid.UUID) error
}

type alertService struct {
	alerts       repository.AlertRepository
	lots         repository.StockLotRepository
	audit        AuditService
	notifier     Notifier
	expiryWindow time.Duration
}

func NewAlertService(
	alerts repository.AlertRepository,
	lots repository.StockLotRepository,
	audit AuditService,
	notifier Notifier,
	expiryWarningDays int,
) AlertService {
	return &alertService{
		alerts:       alerts,
		lots:         lots,
		audit:        audit,
		notifier:     notifier,
		expiryWindow: time.Duration(expiryWarningDays) * 24 * time.Hour,
	}
}

func (s *alertService) Sweep(ctx context.Context) (int, error) {
	created := 0

	low, err := s.lots.ListBelowThreshold(ctx)
	if err != nil {
		return 0, fmt.Errorf("sweep: below-threshold query: %w", err)
	}
	for i := range low {
		lot := &low[i]
		lotID := lot.ID
		a := &model.Alert{
			StockLotID: &lotID,
			Type:       model.AlertTypeLowStock,
			Severity:   lowStockSeverity(lot.Quantity, lot.MinThreshold),
			Message: fmt.Sprintf("%s ammunition below minimum threshold (%d/%d), lot %s",
				lot.AmmoType, lot.Quantity, lot.MinThreshold, lot.LotNumber),
			Status: model.AlertStatusOpen,
		}
		inserted, err := s.alerts.CreateIfAbsent(ctx, a)
		if err != nil {
			return created, err
		}
		if inserted {
			created++
			s.maybeNotify(ctx, a)
		}
	}

	cutoff := time.Now().Add(s.expiryWindow)
	expiring, err := s.lots.ListExpiringBefore(ctx, cutoff)
	if err != nil {
		return created, fmt.Errorf("sweep: expiry query: %w", err)
	}
	for i := range expiring {
		lot := &expiring[i]
		lotID := lot.ID
		a := &model.Alert{
			StockLotID: &lotID,
			Type:       model.AlertTypeExpiryWarning,
			Severity:   expirySeverity(*lot.ExpiryDate),
			Message: fmt.Sprintf("%s ammunition lot %s expires on %s",
				lot.AmmoType, lot.LotNumber, lot.ExpiryDate.Format("2006-01-02")),
			Status: model.AlertStatusOpen,
		}
		inserted, err := s.alerts.CreateIfAbsent(ctx, a)
		if err != nil {
			return created, err
		}
		if inserted {
			created++
			s.maybeNotify(ctx, a)
		}
	}

	return created, nil
}

// RaiseSecurityAlert is fired by the auth layer after repeated failed
// logins. Not lot-scoped, so it bypasses the duplicate-suppression index;
// the auth layer throttles how often it calls this.
func (s *alertService) RaiseSecurityAlert(ctx context.Context, username string) {
	a := &model.Alert{
		Type:     model.AlertTypeSecurity,
		Severity: "critical",
		Message:  fmt.Sprintf("Multiple failed login attempts detected for user: %s", username),
		Status:   model.AlertStatusOpen,
	}
	if err := s.alerts.Create(ctx, a); err != nil {
		log.Error().Err(err).Str("username", username).Msg("alert: failed to raise security alert")
		return
	}
	s.maybeNotify(ctx, a)
}

func (s *alertService) maybeNotify(ctx context.Context, a *model.Alert) {
	if s.notifier == nil || a.Severity != "critical" {
		return
	}
	if err := s.notifier.NotifyCriticalAlert(ctx, "Critical inventory alert", a.Message); err != nil {
		log.Warn().Err(err).Msg("alert: notification enqueue failed")
	}
}

func (s *alertService) ListAlerts(ctx context.Context, filter dto.AlertFilter) (*dto.AlertListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	alerts, total, err := s.alerts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AlertResponse, 0, len(alerts))
	for i := range alerts {
		items = append(items, *alertToResponse(&alerts[i]))
	}
	return &dto.AlertListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *alertService) Acknowledge(ctx context.Context, actor Actor, id uuid.UUID, notes *string) (*dto.AlertResponse, error) {
	return s.transition(ctx, actor, id, model.AlertStatusAcknowledged, notes, "alert.acknowledge",
		model.AlertStatusOpen)
}

func (s *alertService) Dismiss(ctx context.Context, actor Actor, id uuid.UUID) (*dto.AlertResponse, error) {
	return s.transition(ctx, actor, id, model.AlertStatusDismissed, nil, "alert.dismiss",
		model.AlertStatusOpen)
}

func (s *alertService) Resolve(ctx context.Context, actor Actor, id uuid.UUID) (*dto.AlertResponse, error) {
	return s.transition(ctx, actor, id, model.AlertStatusResolved, nil, "alert.resolve",
		model.AlertStatusOpen, model.AlertStatusAcknowledged, model.AlertStatusDismissed)
}

func (s *alertService) transition(ctx context.Context, actor Actor, id uuid.UUID, target string, notes *string, action string, allowedFrom ...string) (*dto.AlertResponse, error) {
	a, err := s.alerts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ok := false
	for _, from := range allowedFrom {
		if a.Status == from {
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("%w: alert is %s, cannot move to %s", ErrValidation, a.Status, target)
	}

	now := time.Now()
	a.Status = target
	if target == model.AlertStatusAcknowledged {
		a.AcknowledgedBy = &actor.ID
		a.AcknowledgedAt = &now
		a.Notes = notes
	}
	if err := s.alerts.Update(ctx, a); err != nil {
		return nil, err
	}

	idStr := id.String()
	s.audit.Record(ctx, &actor.ID, actor.Username, action, "alert", &idStr, "")
	return alertToResponse(a), nil
}

func (s *alertService) DeleteAlert(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.alerts.Delete(ctx, id); err != nil {
		return err
	}
	idStr := id.String()
	s.audit.Record(ctx, &actor.ID, actor.Username, "alert.delete", "alert", &idStr, "")
	return nil
}

// lowStockSeverity grades by how far below threshold the lot has fallen.
func lowStockSeverity(quantity, threshold int) string {
	if threshold <= 0 {
		return "medium"
	}
	ratio := float64(quantity) / float64(threshold)
	switch {
	case ratio < 0.25:
		return "critical"
	case ratio < 0.5:
		return "high"
	default:
		return "medium"
	}
}

func expirySeverity(expiry time.Time) string {
	if time.Until(expiry) <= 7*24*time.Hour {
		return "high"
	}
	return "medium"
}

func alertToResponse(a *model.Alert) *dto.AlertResponse {
	resp := &dto.AlertResponse{
		ID:        a.ID.String(),
		Type:      a.Type,
		Severity:  a.Severity,
		Message:   a.Message,
		Status:    a.Status,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if a.StockLotID != nil {
		s := a.StockLotID.String()
		resp.StockLotID = &s
	}
	if a.StockLot != nil {
		resp.LotNumber = a.StockLot.LotNumber
	}
	if a.AcknowledgedBy != nil {
		s := a.AcknowledgedBy.String()
		resp.AcknowledgedBy = &s
	}
	if a.AcknowledgedAt != nil {
		s := a.AcknowledgedAt.Format("2006-01-02T15:04:05Z")
		resp.AcknowledgedAt = &s
	}
	return resp
}
