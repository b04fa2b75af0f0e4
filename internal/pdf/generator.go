package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/driveops/driveops/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.DayLogReport) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, "Daily delivery logs", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Period %s - %s", formatDate(report.PeriodStart), formatDate(report.PeriodEnd)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Parcels loaded: %d, delivered: %d", report.TotalParcels, report.TotalDelivered), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Date", "Driver", "Loaded", "Start mileage", "Delivered", "Undelivered", "Issues"}
	colWidths := []float64{25, 60, 20, 28, 22, 26, 86}
	drawRow(pdf, headers, colWidths, true)

	for _, row := range report.Rows {
		delivered := "no EOD"
		if row.ParcelsDelivered != nil {
			delivered = strconv.Itoa(*row.ParcelsDelivered)
		}
		issues := ""
		if row.IssuesReported != nil {
			issues = *row.IssuesReported
		}
		drawRow(pdf, []string{
			formatDate(row.LogDate),
			row.DriverName,
			strconv.Itoa(row.ParcelCount),
			strconv.Itoa(row.StartingMileage),
			delivered,
			strconv.Itoa(row.Undelivered()),
			issues,
		}, colWidths, false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawRow(pdf *gofpdf.Fpdf, cells []string, widths []float64, header bool) {
	if header {
		pdf.SetFont("Arial", "B", 10)
	} else {
		pdf.SetFont("Arial", "", 10)
	}
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 7, cell, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
