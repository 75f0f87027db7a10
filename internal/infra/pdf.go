package infra

// pdf.go — PDF report rendering using go-pdf/fpdf.
// Renders an A4 landscape table: title, optional period line, header row,
// data rows with alternating shading, page-break handling, and a footer
// with the generation timestamp.

import (
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// WriteReportPDF renders a tabular report to outPath.
func WriteReportPDF(title, period string, headers []string, rows [][]string, outPath string) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 14)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20
	colW := contentW / float64(len(headers))

	// ── Title ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, title, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if period != "" {
		pdf.CellFormat(contentW, 5, "Period: "+period, "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range headers {
			pdf.CellFormat(colW, 6, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	drawHeader()

	_, pageH := pdf.GetPageSize()
	for i, row := range rows {
		if pdf.GetY() > pageH-20 {
			pdf.AddPage()
			drawHeader()
		}
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		for _, cell := range row {
			if len(cell) > 40 {
				cell = cell[:39] + "…"
			}
			pdf.CellFormat(colW, 5, cell, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
	}

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4,
		fmt.Sprintf("Generated %s — %d rows", time.Now().Format("2006-01-02 15:04"), len(rows)),
		"", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("pdf: write file: %w", err)
	}
	return nil
}
