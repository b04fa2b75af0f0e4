package rules

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/driveops/driveops/internal/model"
	"github.com/driveops/driveops/internal/validate"
)

func TestCheckParcelDelivery(t *testing.T) {
	cases := []struct {
		start, delivered int
		ok               bool
	}{
		{0, 0, true},
		{50, 45, true},
		{50, 50, true},
		{50, 51, false},
		{0, 1, false},
	}
	for _, tc := range cases {
		var r validate.Result
		CheckParcelDelivery(&r, tc.start, tc.delivered)
		if r.Valid() != tc.ok {
			t.Fatalf("start=%d delivered=%d: expected ok=%v, got %v", tc.start, tc.delivered, tc.ok, r.Errors)
		}
	}
}

func TestCheckLogDate(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, loc)

	var r validate.Result
	CheckLogDate(&r, time.Date(2026, 3, 10, 0, 0, 0, 0, loc), now, loc)
	if !r.Valid() {
		t.Fatalf("expected today to pass, got %v", r.Errors)
	}

	r = validate.Result{}
	CheckLogDate(&r, time.Date(2026, 3, 9, 0, 0, 0, 0, loc), now, loc)
	if r.Valid() {
		t.Fatalf("expected backdated log to fail")
	}

	r = validate.Result{}
	CheckLogDate(&r, time.Date(2026, 3, 11, 0, 0, 0, 0, loc), now, loc)
	if r.Valid() {
		t.Fatalf("expected future-dated log to fail")
	}
}

func TestCheckVehicleAssignment(t *testing.T) {
	var r validate.Result
	CheckVehicleAssignment(&r, model.Driver{})
	if r.Valid() {
		t.Fatalf("expected unassigned driver to fail")
	}

	vehicleID := uuid.New()
	r = validate.Result{}
	CheckVehicleAssignment(&r, model.Driver{AssignedVehicleID: &vehicleID})
	if !r.Valid() {
		t.Fatalf("expected assigned driver to pass, got %v", r.Errors)
	}
}

func TestCheckVehicleCheckListsEveryMissingItem(t *testing.T) {
	check := model.VehicleCheck{
		Lights: true, Tyres: true, Brakes: true, Mirrors: true,
		Fuel: true, Cleanliness: true, Documentation: true,
	}

	var r validate.Result
	CheckVehicleCheck(&r, check)
	if !r.Valid() {
		t.Fatalf("expected complete check to pass, got %v", r.Errors)
	}

	check.Brakes = false
	check.Fuel = false
	r = validate.Result{}
	CheckVehicleCheck(&r, check)
	if len(r.Errors) != 2 {
		t.Fatalf("expected 2 missing items, got %v", r.Errors)
	}
}

type fakeStore struct {
	sods []model.StartOfDayLog
	eods []model.EndOfDayLog
}

func (s *fakeStore) FindStartOfDay(_ context.Context, driverID uuid.UUID, date time.Time) (*model.StartOfDayLog, error) {
	for i := range s.sods {
		if s.sods[i].DriverID == driverID && s.sods[i].LogDate.Equal(date) {
			return &s.sods[i], nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindEndOfDay(_ context.Context, driverID uuid.UUID, date time.Time) (*model.EndOfDayLog, error) {
	for i := range s.eods {
		if s.eods[i].DriverID == driverID && s.eods[i].LogDate.Equal(date) {
			return &s.eods[i], nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindStartOfDayByVehicle(_ context.Context, vehicleID uuid.UUID, date time.Time) (*model.StartOfDayLog, error) {
	for i := range s.sods {
		if s.sods[i].VehicleID == vehicleID && s.sods[i].LogDate.Equal(date) {
			return &s.sods[i], nil
		}
	}
	return nil, nil
}

func TestDuplicateChecks(t *testing.T) {
	driverID := uuid.New()
	vehicleID := uuid.New()
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	checker := NewChecker(&fakeStore{
		sods: []model.StartOfDayLog{{DriverID: driverID, VehicleID: vehicleID, LogDate: today}},
	})
	ctx := context.Background()

	var r validate.Result
	if err := checker.CheckNoStartOfDay(ctx, &r, driverID, today); err != nil {
		t.Fatal(err)
	}
	if r.Valid() {
		t.Fatalf("expected duplicate SOD to be flagged")
	}

	r = validate.Result{}
	if err := checker.CheckNoStartOfDay(ctx, &r, uuid.New(), today); err != nil {
		t.Fatal(err)
	}
	if !r.Valid() {
		t.Fatalf("expected other driver to be clear, got %v", r.Errors)
	}

	r = validate.Result{}
	if err := checker.CheckNoEndOfDay(ctx, &r, driverID, today); err != nil {
		t.Fatal(err)
	}
	if !r.Valid() {
		t.Fatalf("expected no EOD yet, got %v", r.Errors)
	}
}

func TestCheckVehicleAvailable(t *testing.T) {
	holder := uuid.New()
	vehicleID := uuid.New()
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	checker := NewChecker(&fakeStore{
		sods: []model.StartOfDayLog{{DriverID: holder, VehicleID: vehicleID, LogDate: today}},
	})
	ctx := context.Background()

	var r validate.Result
	if err := checker.CheckVehicleAvailable(ctx, &r, vehicleID, uuid.New(), today); err != nil {
		t.Fatal(err)
	}
	if r.Valid() {
		t.Fatalf("expected vehicle held by another driver to be unavailable")
	}

	// The holder itself is not blocked by its own log.
	r = validate.Result{}
	if err := checker.CheckVehicleAvailable(ctx, &r, vehicleID, holder, today); err != nil {
		t.Fatal(err)
	}
	if !r.Valid() {
		t.Fatalf("expected holder to remain clear, got %v", r.Errors)
	}
}
