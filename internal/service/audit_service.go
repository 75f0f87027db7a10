package service

import (
	"context"

	"ammotrack/internal/dto"
	"ammotrack/internal/model"
	"ammotrack/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type AuditService interface {
	// Record is best-effort: a failed audit write is logged, never surfaced
	// to the caller, and never joins the mutation's transaction.
	Record(ctx context.Context, userID *uuid.UUID, username, action, entity string, entityID *string, detail string)
	List(ctx context.Context, filter dto.AuditFilter) (*dto.AuditListResponse, error)
}

type auditService struct {
	repo repository.AuditLogRepository
}

func NewAuditService(repo repository.AuditLogRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, userID *uuid.UUID, username, action, entity string, entityID *string, detail string) {
	entry := &model.AuditLog{
		UserID:   userID,
		Username: username,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		log.Error().Err(err).Str("action", action).Msg("audit: failed to record entry")
	}
}

func (s *auditService) List(ctx context.Context, filter dto.AuditFilter) (*dto.AuditListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 100
	}
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.AuditLogResponse, 0, len(entries))
	for _, e := range entries {
		var userID *string
		if e.UserID != nil {
			s := e.UserID.String()
			userID = &s
		}
		items = append(items, dto.AuditLogResponse{
			ID:        e.ID.String(),
			UserID:    userID,
			Username:  e.Username,
			Action:    e.Action,
			Entity:    e.Entity,
			EntityID:  e.EntityID,
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return &dto.AuditListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}
