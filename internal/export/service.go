package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/jobboard/internal/entity"
)

const sheetName = "Applications"

// Service produces XLSX bytes for recruiter exports.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ApplicationsXLSX returns a workbook with one row per application, in the
// order given. Callers pass the already-filtered dashboard list.
func (s *Service) ApplicationsXLSX(ctx context.Context, apps []entity.Application) ([]byte, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// rename the default sheet instead of leaving an empty "Sheet1"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	activeIndex, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Submitted",
		"Full Name",
		"Email",
		"Phone",
		"Job",
		"Company",
		"Status",
		"Resume",
		"Cover Letter",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	row := 2
	for _, a := range apps {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}

		if a.CreatedAt != nil {
			write(1, a.CreatedAt.UTC().Format("2006-01-02"))
		} else {
			write(1, "")
		}
		write(2, a.FullName)
		write(3, a.Email)
		write(4, a.Phone)

		jobTitle, company := a.JobTitle(), ""
		if a.Job != nil {
			company = a.Job.Company
		}
		if jobTitle == "" && a.JobID != 0 {
			jobTitle = fmt.Sprintf("#%d", a.JobID)
		}
		write(5, jobTitle)
		write(6, company)
		write(7, a.Status.Label())
		write(8, a.Resume)
		write(9, truncate(a.CoverLetter, 500))

		row++
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12) // date
	_ = f.SetColWidth(sheetName, "B", "C", 28) // name, email
	_ = f.SetColWidth(sheetName, "D", "D", 16)
	_ = f.SetColWidth(sheetName, "E", "F", 28) // job, company
	_ = f.SetColWidth(sheetName, "G", "G", 12)
	_ = f.SetColWidth(sheetName, "H", "H", 48)
	_ = f.SetColWidth(sheetName, "I", "I", 60)
	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		s.logger.Warn("export.xlsx.freeze_failed", "error", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(apps),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// Filename is the attachment name used for a download made at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("applications-%s.xlsx", t.UTC().Format("20060102-150405"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
