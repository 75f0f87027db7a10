package service

import (
	"context"
	"fmt"
	"time"

	"ammotrack/internal/dto"
	"ammotrack/internal/model"
	"ammotrack/internal/repository"
	"ammotrack/internal/worker"

	"github.com/google/uuid"
)

// retentionYears is how long generated report rows are kept before the
// cleanup job may purge them.
const retentionYears = 3

type ReportService interface {
	// Generate creates the metadata row in "pending" state and enqueues the
	// actual file generation. Callers poll GetReport for completion.
	Generate(ctx context.Context, actor Actor, req *dto.GenerateReportRequest) (*dto.ReportResponse, error)
	GetReport(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error)
	ListReports(ctx context.Context, filter dto.ReportFilter) (*dto.ReportListResponse, error)
	DeleteReport(ctx context.Context, actor Actor, id uuid.UUID) error
	// Download returns the on-disk path of a completed report and records
	// the access. ErrValidation when the report is not ready.
	Download(ctx context.Context, id uuid.UUID) (path string, fileName string, err error)
}

type reportService struct {
	reports    repository.ReportRepository
	dispatcher *worker.Dispatcher
	audit      AuditService
}

func NewReportService(reports repository.ReportRepository, dispatcher *worker.Dispatcher, audit AuditService) ReportService {
	return &reportService{reports: reports, dispatcher: dispatcher, audit: audit}
}

func (s *reportService) Generate(ctx context.Context, actor Actor, req *dto.GenerateReportRequest) (*dto.ReportResponse, error) {
	rep := &model.Report{
		Name:          req.Name,
		Type:          req.Type,
		Format:        req.Format,
		Period:        req.Period,
		Status:        "pending",
		GeneratedByID: actor.ID,
		RetentionDate: time.Now().AddDate(retentionYears, 0, 0),
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, err
	}

	if err := s.dispatcher.EnqueueReport(ctx, worker.ReportJobPayload{ReportID: rep.ID.String()}); err != nil {
		// Leave the row pending; a re-enqueue sweep or manual retry can pick
		// it up, and the client sees the true state.
		return nil, fmt.Errorf("enqueue report job: %w", err)
	}

	idStr := rep.ID.String()
	s.audit.Record(ctx, &actor.ID, actor.Username, "report.generate", "report", &idStr,
		fmt.Sprintf("type=%s format=%s", req.Type, req.Format))
	return reportToResponse(rep), nil
}

func (s *reportService) GetReport(ctx context.Context, id uuid.UUID) (*dto.ReportResponse, error) {
	rep, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return reportToResponse(rep), nil
}

func (s *reportService) ListReports(ctx context.Context, filter dto.ReportFilter) (*dto.ReportListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	reports, total, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReportResponse, 0, len(reports))
	for i := range reports {
		items = append(items, *reportToResponse(&reports[i]))
	}
	return &dto.ReportListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *reportService) DeleteReport(ctx context.Context, actor Actor, id uuid.UUID) error {
	if err := s.reports.Delete(ctx, id); err != nil {
		return err
	}
	idStr := id.String()
	s.audit.Record(ctx, &actor.ID, actor.Username, "report.delete", "report", &idStr, "")
	return nil
}

func (s *reportService) Download(ctx context.Context, id uuid.UUID) (string, string, error) {
	rep, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	if rep.Status != "completed" || rep.FilePath == nil {
		return "", "", fmt.Errorf("%w: report is %s, not downloadable", ErrValidation, rep.Status)
	}
	if err := s.reports.RecordDownload(ctx, id, time.Now()); err != nil {
		return "", "", err
	}
	fileName := fmt.Sprintf("%s.%s", rep.Name, rep.Format)
	return *rep.FilePath, fileName, nil
}

func reportToResponse(rep *model.Report) *dto.ReportResponse {
	resp := &dto.ReportResponse{
		ID:            rep.ID.String(),
		Name:          rep.Name,
		Type:          rep.Type,
		Format:        rep.Format,
		Period:        rep.Period,
		Status:        rep.Status,
		FileSize:      rep.FileSize,
		RetentionDate: rep.RetentionDate.Format("2006-01-02"),
		DownloadCount: rep.DownloadCount,
		CreatedAt:     rep.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if rep.GeneratedBy != nil {
		resp.GeneratedBy = rep.GeneratedBy.Name
	}
	if rep.LastAccessed != nil {
		s := rep.LastAccessed.Format("2006-01-02T15:04:05Z")
		resp.LastAccessed = &s
	}
	return resp
}
