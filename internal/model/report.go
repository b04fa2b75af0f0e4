package model

import (
	"time"

	"github.com/google/uuid"
)

// DayLogRow is one (driver, date) line in the admin period report. EOD fields
// are nil when the driver never closed the day.
type DayLogRow struct {
	DriverID         uuid.UUID
	DriverName       string
	LogDate          time.Time
	ParcelCount      int
	StartingMileage  int
	ParcelsDelivered *int
	IssuesReported   *string
}

// Undelivered returns parcels remaining at end of day, or the full start count
// when no EOD was logged.
func (r DayLogRow) Undelivered() int {
	if r.ParcelsDelivered == nil {
		return r.ParcelCount
	}
	d := r.ParcelCount - *r.ParcelsDelivered
	if d < 0 {
		return 0
	}
	return d
}

type DayLogReport struct {
	PeriodStart    time.Time
	PeriodEnd      time.Time
	TotalParcels   int64
	TotalDelivered int64
	Rows           []DayLogRow
}
