package model

import (
	"time"

	"github.com/google/uuid"
)

// VehicleCheck is the fixed pre-shift checklist. Every item must be true for
// the check to count as completed.
type VehicleCheck struct {
	Lights        bool `json:"lights"`
	Tyres         bool `json:"tyres"`
	Brakes        bool `json:"brakes"`
	Mirrors       bool `json:"mirrors"`
	Fuel          bool `json:"fuel"`
	Cleanliness   bool `json:"cleanliness"`
	Documentation bool `json:"documentation"`
}

func (c VehicleCheck) Complete() bool {
	return c.Lights && c.Tyres && c.Brakes && c.Mirrors && c.Fuel && c.Cleanliness && c.Documentation
}

// Items lists each checklist entry by name, in a fixed order.
func (c VehicleCheck) Items() map[string]bool {
	return map[string]bool{
		"lights":        c.Lights,
		"tyres":         c.Tyres,
		"brakes":        c.Brakes,
		"mirrors":       c.Mirrors,
		"fuel":          c.Fuel,
		"cleanliness":   c.Cleanliness,
		"documentation": c.Documentation,
	}
}

// StartOfDayLog is a driver's pre-shift declaration. One per (driver, date);
// immutable after creation except by admin edit.
type StartOfDayLog struct {
	ID                    uuid.UUID
	DriverID              uuid.UUID
	VehicleID             uuid.UUID
	LogDate               time.Time // calendar day, midnight in the operating timezone
	ParcelCount           int
	StartingMileage       int
	VanConfirmed          bool
	VehicleCheck          VehicleCheck `gorm:"-"`
	VehicleCheckCompleted bool
	Notes                 string
	CreatedAt             time.Time
}

// EndOfDayLog is a driver's post-shift declaration. One per (driver, date).
type EndOfDayLog struct {
	ID               uuid.UUID
	DriverID         uuid.UUID
	LogDate          time.Time
	ParcelsDelivered int
	ScreenshotPath   string
	IssuesReported   string
	CreatedAt        time.Time
}
