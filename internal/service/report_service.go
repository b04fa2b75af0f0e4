package service

import (
	"context"
	"fmt"
	"time"

	"github.com/driveops/driveops/internal/model"
)

type ReportGenerator interface {
	Generate(report model.DayLogReport) ([]byte, error)
}

// ReportStore lists the period's day-log rows.
type ReportStore interface {
	ListDayLogRows(ctx context.Context, from, to time.Time) ([]model.DayLogRow, error)
}

type ReportService struct {
	store ReportStore
	excel ReportGenerator
	pdf   ReportGenerator
	loc   *time.Location
}

func NewReportService(store ReportStore, excel, pdf ReportGenerator, loc *time.Location) *ReportService {
	return &ReportService{store: store, excel: excel, pdf: pdf, loc: loc}
}

type GenerateReportInput struct {
	PeriodStart time.Time
	PeriodEnd   time.Time
	Principal   model.Principal
}

type GenerateReportResult struct {
	FileName string
	Content  []byte
}

func (s *ReportService) buildReport(ctx context.Context, input GenerateReportInput) (*model.DayLogReport, error) {
	if !input.Principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if input.PeriodStart.IsZero() || input.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}

	periodStart := s.dateOnly(input.PeriodStart)
	periodEnd := s.dateOnly(input.PeriodEnd)
	if periodStart.After(periodEnd) {
		return nil, fmt.Errorf("%w: period_start must be before or equal to period_end", ErrInvalidInput)
	}
	endExclusive := periodEnd.Add(24 * time.Hour)

	rows, err := s.store.ListDayLogRows(ctx, periodStart, endExclusive)
	if err != nil {
		return nil, err
	}

	report := &model.DayLogReport{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Rows:        rows,
	}
	for _, row := range rows {
		report.TotalParcels += int64(row.ParcelCount)
		if row.ParcelsDelivered != nil {
			report.TotalDelivered += int64(*row.ParcelsDelivered)
		}
	}
	return report, nil
}

func (s *ReportService) GenerateReport(ctx context.Context, input GenerateReportInput) (*GenerateReportResult, error) {
	report, err := s.buildReport(ctx, input)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.Generate(*report)
	if err != nil {
		return nil, err
	}
	return &GenerateReportResult{
		FileName: buildFileName(*report, "xlsx"),
		Content:  content,
	}, nil
}

func (s *ReportService) GenerateReportPDF(ctx context.Context, input GenerateReportInput) (*GenerateReportResult, error) {
	report, err := s.buildReport(ctx, input)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(*report)
	if err != nil {
		return nil, err
	}
	return &GenerateReportResult{
		FileName: buildFileName(*report, "pdf"),
		Content:  content,
	}, nil
}

func buildFileName(report model.DayLogReport, ext string) string {
	period := fmt.Sprintf("%s-%s", report.PeriodStart.Format("20060102"), report.PeriodEnd.Format("20060102"))
	return fmt.Sprintf("day-logs-%s.%s", period, ext)
}

func (s *ReportService) dateOnly(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}
