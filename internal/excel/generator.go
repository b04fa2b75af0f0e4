package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/driveops/driveops/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(report model.DayLogReport) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Day Logs"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Period start")
	set("B1", formatDate(report.PeriodStart))
	set("A2", "Period end")
	set("B2", formatDate(report.PeriodEnd))
	set("A3", "Parcels loaded")
	set("B3", report.TotalParcels)
	set("A4", "Parcels delivered")
	set("B4", report.TotalDelivered)

	headerRow := 6
	headers := []string{"Date", "Driver", "Parcels loaded", "Starting mileage", "Parcels delivered", "Undelivered", "Issues"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		set(cell, header)
	}

	for i, row := range report.Rows {
		r := headerRow + 1 + i
		set(fmt.Sprintf("A%d", r), formatDate(row.LogDate))
		set(fmt.Sprintf("B%d", r), row.DriverName)
		set(fmt.Sprintf("C%d", r), row.ParcelCount)
		set(fmt.Sprintf("D%d", r), row.StartingMileage)
		if row.ParcelsDelivered != nil {
			set(fmt.Sprintf("E%d", r), *row.ParcelsDelivered)
		} else {
			set(fmt.Sprintf("E%d", r), "no EOD")
		}
		set(fmt.Sprintf("F%d", r), row.Undelivered())
		if row.IssuesReported != nil {
			set(fmt.Sprintf("G%d", r), *row.IssuesReported)
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDate(t time.Time) string {
	return t.Format("02.01.2006")
}
