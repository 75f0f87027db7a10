package service_test

import (
	"context"
	"sync"
	"time"

	"ammotrack/internal/dto"
	"ammotrack/internal/model"
	"ammotrack/internal/repository"
	"ammotrack/internal/service"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── Stock lot stub ────────────────────────────────────────────────────────────

// stubLotRepo is an in-memory StockLotRepository. DecrementTx is atomic under
// the repo mutex, mirroring the conditional UPDATE the real implementation
// issues. onLockedRead, when set, runs just before FindByIDForUpdateTx
// returns — used to simulate a concurrent writer sneaking in between the
// advisory read and the row lock.
type stubLotRepo struct {
	mu           sync.Mutex
	lots         map[uuid.UUID]*model.StockLot
	onLockedRead func(lot *model.StockLot)
}

func newStubLotRepo() *stubLotRepo {
	return &stubLotRepo{lots: make(map[uuid.UUID]*model.StockLot)}
}

func (r *stubLotRepo) Create(_ context.Context, lot *model.StockLot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lot.ID == uuid.Nil {
		lot.ID = uuid.New()
	}
	cp := *lot
	r.lots[lot.ID] = &cp
	return nil
}

func (r *stubLotRepo) FindByID(_ context.Context, id uuid.UUID) (*model.StockLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot, ok := r.lots[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *lot
	return &cp, nil
}

func (r *stubLotRepo) GetQuantity(_ context.Context, id uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot, ok := r.lots[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	return lot.Quantity, nil
}

func (r *stubLotRepo) List(_ context.Context, _ dto.InventoryFilter) ([]model.StockLot, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.StockLot, 0, len(r.lots))
	for _, lot := range r.lots {
		out = append(out, *lot)
	}
	return out, int64(len(out)), nil
}

func (r *stubLotRepo) Update(_ context.Context, lot *model.StockLot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lots[lot.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *lot
	r.lots[lot.ID] = &cp
	return nil
}

func (r *stubLotRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lots[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.lots, id)
	return nil
}

func (r *stubLotRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.StockLot, error) {
	r.mu.Lock()
	lot, ok := r.lots[id]
	if !ok {
		r.mu.Unlock()
		return nil, repository.ErrNotFound
	}
	if r.onLockedRead != nil {
		r.onLockedRead(lot)
	}
	cp := *lot
	r.mu.Unlock()
	return &cp, nil
}

func (r *stubLotRepo) DecrementTx(_ *gorm.DB, id uuid.UUID, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot, ok := r.lots[id]
	if !ok {
		return repository.ErrNotFound
	}
	if lot.Quantity < amount {
		return repository.ErrInsufficientStock
	}
	lot.Quantity -= amount
	return nil
}

func (r *stubLotRepo) AdjustTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot, ok := r.lots[id]
	if !ok {
		return repository.ErrNotFound
	}
	lot.Quantity += delta
	return nil
}

func (r *stubLotRepo) ListBelowThreshold(_ context.Context) ([]model.StockLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockLot
	for _, lot := range r.lots {
		if lot.Quantity < lot.MinThreshold {
			out = append(out, *lot)
		}
	}
	return out, nil
}

func (r *stubLotRepo) ListExpiringBefore(_ context.Context, cutoff time.Time) ([]model.StockLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockLot
	for _, lot := range r.lots {
		if lot.ExpiryDate != nil && !lot.ExpiryDate.After(cutoff) {
			out = append(out, *lot)
		}
	}
	return out, nil
}

func (r *stubLotRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.lots)), nil
}

func (r *stubLotRepo) TotalQuantity(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, lot := range r.lots {
		sum += int64(lot.Quantity)
	}
	return sum, nil
}

func (r *stubLotRepo) CountBelowThreshold(ctx context.Context) (int64, error) {
	lots, _ := r.ListBelowThreshold(ctx)
	return int64(len(lots)), nil
}

func (r *stubLotRepo) CountExpiringBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	lots, _ := r.ListExpiringBefore(ctx, cutoff)
	return int64(len(lots)), nil
}

func (r *stubLotRepo) ListAll(_ context.Context) ([]model.StockLot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.StockLot, 0, len(r.lots))
	for _, lot := range r.lots {
		out = append(out, *lot)
	}
	return out, nil
}

func (r *stubLotRepo) DB() *gorm.DB { return nil }

var _ repository.StockLotRepository = (*stubLotRepo)(nil)

// ── Issue record stub ─────────────────────────────────────────────────────────

type stubIssueRepo struct {
	mu     sync.Mutex
	issues map[uuid.UUID]*model.IssueRecord
}

func newStubIssueRepo() *stubIssueRepo {
	return &stubIssueRepo{issues: make(map[uuid.UUID]*model.IssueRecord)}
}

func (r *stubIssueRepo) CreateTx(_ *gorm.DB, issue *model.IssueRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if issue.ID == uuid.Nil {
		issue.ID = uuid.New()
	}
	cp := *issue
	r.issues[issue.ID] = &cp
	return nil
}

func (r *stubIssueRepo) FindByID(_ context.Context, id uuid.UUID) (*model.IssueRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *issue
	return &cp, nil
}

func (r *stubIssueRepo) List(_ context.Context, _ dto.IssueFilter) ([]model.IssueRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.IssueRecord, 0, len(r.issues))
	for _, issue := range r.issues {
		out = append(out, *issue)
	}
	return out, int64(len(out)), nil
}

func (r *stubIssueRepo) Update(_ context.Context, issue *model.IssueRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[issue.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *issue
	r.issues[issue.ID] = &cp
	return nil
}

func (r *stubIssueRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.issues, id)
	return nil
}

func (r *stubIssueRepo) CountByStockLot(_ context.Context, lotID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, issue := range r.issues {
		if issue.StockLotID == lotID {
			n++
		}
	}
	return n, nil
}

func (r *stubIssueRepo) CountSince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, issue := range r.issues {
		if !issue.IssueDate.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *stubIssueRepo) SumQuantitySince(_ context.Context, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, issue := range r.issues {
		if !issue.IssueDate.Before(since) {
			sum += int64(issue.Quantity)
		}
	}
	return sum, nil
}

func (r *stubIssueRepo) ListBetween(_ context.Context, from, to time.Time) ([]model.IssueRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.IssueRecord
	for _, issue := range r.issues {
		if !issue.IssueDate.Before(from) && !issue.IssueDate.After(to) {
			out = append(out, *issue)
		}
	}
	return out, nil
}

func (r *stubIssueRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.issues)
}

var _ repository.IssueRepository = (*stubIssueRepo)(nil)

// ── Stock movement stub ───────────────────────────────────────────────────────

type stubMovementRepo struct {
	mu        sync.Mutex
	movements []model.StockMovement
	failErr   error // when set, CreateTx fails — simulates a write error mid-transaction
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) ListByLot(_ context.Context, lotID uuid.UUID, _ int) ([]model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.StockLotID == lotID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMovementRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.movements)
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// ── User stub ─────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username && u.Active {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *stubUserRepo) List(_ context.Context, includeInactive bool) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.User
	for _, u := range r.users {
		if u.Active || includeInactive {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUserRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Active = false
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Alert stub ────────────────────────────────────────────────────────────────

// stubAlertRepo mirrors the partial-unique-index semantics: CreateIfAbsent
// refuses a second OPEN alert for the same (lot, type).
type stubAlertRepo struct {
	mu     sync.Mutex
	alerts map[uuid.UUID]*model.Alert
}

func newStubAlertRepo() *stubAlertRepo {
	return &stubAlertRepo{alerts: make(map[uuid.UUID]*model.Alert)}
}

func (r *stubAlertRepo) CreateIfAbsent(_ context.Context, a *model.Alert) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.alerts {
		if existing.Status == model.AlertStatusOpen &&
			existing.Type == a.Type &&
			existing.StockLotID != nil && a.StockLotID != nil &&
			*existing.StockLotID == *a.StockLotID {
			return false, nil
		}
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	r.alerts[a.ID] = &cp
	return true, nil
}

func (r *stubAlertRepo) Create(_ context.Context, a *model.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	cp := *a
	r.alerts[a.ID] = &cp
	return nil
}

func (r *stubAlertRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *stubAlertRepo) List(_ context.Context, filter dto.AlertFilter) ([]model.Alert, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Alert
	for _, a := range r.alerts {
		if filter.Status != "" && filter.Status != "all" && a.Status != filter.Status {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (r *stubAlertRepo) Update(_ context.Context, a *model.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.alerts[a.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *a
	r.alerts[a.ID] = &cp
	return nil
}

func (r *stubAlertRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.alerts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.alerts, id)
	return nil
}

func (r *stubAlertRepo) CountOpen(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.alerts {
		if a.Status == model.AlertStatusOpen {
			n++
		}
	}
	return n, nil
}

func (r *stubAlertRepo) ListForExport(_ context.Context) ([]model.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		out = append(out, *a)
	}
	return out, nil
}

func (r *stubAlertRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

var _ repository.AlertRepository = (*stubAlertRepo)(nil)

// ── Audit recorder ────────────────────────────────────────────────────────────

type recordedAudit struct {
	Action string
	Entity string
}

type stubAuditService struct {
	mu      sync.Mutex
	entries []recordedAudit
}

func (s *stubAuditService) Record(_ context.Context, _ *uuid.UUID, _ string, action, entity string, _ *string, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, recordedAudit{Action: action, Entity: entity})
}

func (s *stubAuditService) List(_ context.Context, _ dto.AuditFilter) (*dto.AuditListResponse, error) {
	return &dto.AuditListResponse{}, nil
}

var _ service.AuditService = (*stubAuditService)(nil)

// ── Notifier recorder ─────────────────────────────────────────────────────────

type stubNotifier struct {
	mu       sync.Mutex
	subjects []string
}

func (n *stubNotifier) NotifyCriticalAlert(_ context.Context, subject, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subjects = append(n.subjects, subject)
	return nil
}

var _ service.Notifier = (*stubNotifier)(nil)
