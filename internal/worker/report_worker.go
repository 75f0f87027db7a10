package worker

// report_worker.go
// Processes report-generation jobs from QueueReports: gathers the rows for
// the requested report type, renders PDF or CSV to the storage path, and
// updates the metadata record. Failures mark the record failed and park the
// job in the DLQ for inspection.

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ammotrack/internal/infra"
	"ammotrack/internal/model"
	"ammotrack/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ReportJobPayload is the job envelope sent to QueueReports.
type ReportJobPayload struct {
	ReportID string `json:"report_id"`
}

type ReportWorker struct {
	reports     repository.ReportRepository
	lots        repository.StockLotRepository
	issues      repository.IssueRepository
	alerts      repository.AlertRepository
	audit       repository.AuditLogRepository
	rdb         *redis.Client
	storagePath string
}

func NewReportWorker(
	reports repository.ReportRepository,
	lots repository.StockLotRepository,
	issues repository.IssueRepository,
	alerts repository.AlertRepository,
	audit repository.AuditLogRepository,
	rdb *redis.Client,
	storagePath string,
) *ReportWorker {
	return &ReportWorker{
		reports:     reports,
		lots:        lots,
		issues:      issues,
		alerts:      alerts,
		audit:       audit,
		rdb:         rdb,
		storagePath: storagePath,
	}
}

func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return
	}
	id, err := uuid.Parse(payload.ReportID)
	if err != nil {
		log.Error().Str("report_id", payload.ReportID).Msg("report_worker: invalid report_id")
		return
	}

	report, err := w.reports.FindByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("report_id", payload.ReportID).Msg("report_worker: report not found")
		return
	}

	path, size, genErr := w.generate(ctx, report)
	if genErr != nil {
		msg := genErr.Error()
		report.Status = "failed"
		report.LastError = &msg
		if err := w.reports.Update(ctx, report); err != nil {
			log.Error().Err(err).Msg("report_worker: failed to mark report failed")
		}
		SendToDLQ(ctx, w.rdb, QueueReports, "report", raw, msg, 1)
		return
	}

	report.Status = "completed"
	report.FilePath = &path
	report.FileSize = size
	report.LastError = nil
	if err := w.reports.Update(ctx, report); err != nil {
		log.Error().Err(err).Str("report_id", payload.ReportID).Msg("report_worker: failed to finalize report")
		return
	}
	log.Info().
		Str("report_id", payload.ReportID).
		Str("type", report.Type).
		Str("format", report.Format).
		Int64("bytes", size).
		Msg("report_worker: report generated")
}

func (w *ReportWorker) generate(ctx context.Context, report *model.Report) (string, int64, error) {
	headers, rows, err := w.gather(ctx, report.Type)
	if err != nil {
		return "", 0, fmt.Errorf("gather %s data: %w", report.Type, err)
	}

	if err := os.MkdirAll(w.storagePath, 0o755); err != nil {
		return "", 0, fmt.Errorf("create storage dir: %w", err)
	}
	fileName := fmt.Sprintf("report_%s.%s", report.ID, report.Format)
	path := filepath.Join(w.storagePath, fileName)

	switch report.Format {
	case "csv":
		err = writeCSV(path, headers, rows)
	default:
		err = infra.WriteReportPDF(report.Name, report.Period, headers, rows, path)
	}
	if err != nil {
		return "", 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", 0, err
	}
	return path, info.Size(), nil
}

func (w *ReportWorker) gather(ctx context.Context, reportType string) ([]string, [][]string, error) {
	switch reportType {
	case "inventory":
		lots, err := w.lots.ListAll(ctx)
		if err != nil {
			return nil, nil, err
		}
		headers := []string{"Lot Number", "Ammo Type", "Custodian", "Quantity", "Min Threshold", "Received", "Expiry"}
		rows := make([][]string, 0, len(lots))
		for i := range lots {
			lot := &lots[i]
			custodian := ""
			if lot.Custodian != nil {
				custodian = lot.Custodian.Name
			}
			expiry := ""
			if lot.ExpiryDate != nil {
				expiry = lot.ExpiryDate.Format("2006-01-02")
			}
			rows = append(rows, []string{
				lot.LotNumber, lot.AmmoType, custodian,
				fmt.Sprintf("%d", lot.Quantity), fmt.Sprintf("%d", lot.MinThreshold),
				lot.ReceivedDate.Format("2006-01-02"), expiry,
			})
		}
		return headers, rows, nil

	case "issues":
		issues, err := w.issues.ListBetween(ctx, time.Time{}, time.Now())
		if err != nil {
			return nil, nil, err
		}
		headers := []string{"Date", "Lot Number", "Ammo Type", "Requester", "Quantity"}
		rows := make([][]string, 0, len(issues))
		for i := range issues {
			issue := &issues[i]
			lotNumber, ammoType, requester := "", "", ""
			if issue.StockLot != nil {
				lotNumber = issue.StockLot.LotNumber
				ammoType = issue.StockLot.AmmoType
			}
			if issue.Requester != nil {
				requester = issue.Requester.Name
			}
			rows = append(rows, []string{
				issue.IssueDate.Format("2006-01-02"), lotNumber, ammoType,
				requester, fmt.Sprintf("%d", issue.Quantity),
			})
		}
		return headers, rows, nil

	case "alerts":
		alerts, err := w.alerts.ListForExport(ctx)
		if err != nil {
			return nil, nil, err
		}
		headers := []string{"Created", "Type", "Severity", "Status", "Lot Number", "Message"}
		rows := make([][]string, 0, len(alerts))
		for i := range alerts {
			a := &alerts[i]
			lotNumber := ""
			if a.StockLot != nil {
				lotNumber = a.StockLot.LotNumber
			}
			rows = append(rows, []string{
				a.CreatedAt.Format("2006-01-02 15:04"), a.Type, a.Severity,
				a.Status, lotNumber, a.Message,
			})
		}
		return headers, rows, nil

	case "audit":
		entries, err := w.audit.ListForExport(ctx)
		if err != nil {
			return nil, nil, err
		}
		headers := []string{"Timestamp", "User", "Action", "Entity", "Detail"}
		rows := make([][]string, 0, len(entries))
		for i := range entries {
			e := &entries[i]
			rows = append(rows, []string{
				e.CreatedAt.Format("2006-01-02 15:04:05"), e.Username,
				e.Action, e.Entity, e.Detail,
			})
		}
		return headers, rows, nil

	default:
		return nil, nil, fmt.Errorf("unknown report type %q", reportType)
	}
}

func writeCSV(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
