// Package rules holds the cross-field and cross-record invariants the schema
// validators cannot express alone: they need the current day, other records,
// or other entities.
package rules

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/driveops/driveops/internal/model"
	"github.com/driveops/driveops/internal/validate"
)

// CheckParcelDelivery fails when more parcels are reported delivered than
// were loaded at start of day. Pure; the caller supplies startCount from the
// fetched SOD record.
func CheckParcelDelivery(r *validate.Result, startCount, delivered int) {
	if delivered > startCount {
		r.Fail("parcels_delivered",
			fmt.Sprintf("cannot deliver %d parcels when only %d were loaded", delivered, startCount))
	}
}

// CheckLogDate fails unless logDate falls on the current calendar day in the
// operating timezone. Backdating and future-dating are both rejected.
func CheckLogDate(r *validate.Result, logDate, now time.Time, loc *time.Location) {
	ly, lm, ld := logDate.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	if ly != ny || lm != nm || ld != nd {
		r.Fail("log_date", "logs can only be submitted for today")
	}
}

// CheckVehicleAssignment fails when the driver has no vehicle assigned.
func CheckVehicleAssignment(r *validate.Result, driver model.Driver) {
	if driver.AssignedVehicleID == nil {
		r.Fail("vehicle", "no vehicle is assigned to this driver")
	}
}

// CheckVehicleCheck fails for every checklist item left unticked, so the
// driver sees the full list of outstanding items at once.
func CheckVehicleCheck(r *validate.Result, check model.VehicleCheck) {
	items := check.Items()
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !items[name] {
			r.Fail("vehicle_check."+name, "checklist item must be confirmed")
		}
	}
}

// DayLogStore is the slice of the record store the store-backed checks need.
type DayLogStore interface {
	FindStartOfDay(ctx context.Context, driverID uuid.UUID, date time.Time) (*model.StartOfDayLog, error)
	FindEndOfDay(ctx context.Context, driverID uuid.UUID, date time.Time) (*model.EndOfDayLog, error)
	FindStartOfDayByVehicle(ctx context.Context, vehicleID uuid.UUID, date time.Time) (*model.StartOfDayLog, error)
}

// Checker runs the rule checks that must consult today's records. The
// duplicate and availability checks are advisory pre-checks: the store's
// uniqueness constraints remain authoritative, and a late constraint
// violation must be treated the same as a duplicate found here.
type Checker struct {
	store DayLogStore
}

func NewChecker(store DayLogStore) *Checker {
	return &Checker{store: store}
}

// CheckNoStartOfDay fails when the driver already has an SOD for the date.
func (c *Checker) CheckNoStartOfDay(ctx context.Context, r *validate.Result, driverID uuid.UUID, date time.Time) error {
	existing, err := c.store.FindStartOfDay(ctx, driverID, date)
	if err != nil {
		return err
	}
	if existing != nil {
		r.Fail("log_date", "start-of-day log already exists for today")
	}
	return nil
}

// CheckNoEndOfDay fails when the driver already has an EOD for the date.
func (c *Checker) CheckNoEndOfDay(ctx context.Context, r *validate.Result, driverID uuid.UUID, date time.Time) error {
	existing, err := c.store.FindEndOfDay(ctx, driverID, date)
	if err != nil {
		return err
	}
	if existing != nil {
		r.Fail("log_date", "end-of-day log already exists for today")
	}
	return nil
}

// CheckVehicleAvailable fails when another driver already opened today
// against the same vehicle.
func (c *Checker) CheckVehicleAvailable(ctx context.Context, r *validate.Result, vehicleID, driverID uuid.UUID, date time.Time) error {
	existing, err := c.store.FindStartOfDayByVehicle(ctx, vehicleID, date)
	if err != nil {
		return err
	}
	if existing != nil && existing.DriverID != driverID {
		r.Fail("vehicle", "vehicle is already in use by another driver today")
	}
	return nil
}
