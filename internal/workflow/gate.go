package workflow

import "github.com/driveops/driveops/internal/model"

// DayState captures which daily logs already exist for (driver, today).
type DayState struct {
	HasStartOfDay bool
	HasEndOfDay   bool
}

// Decision is the gate's verdict. Warnings accompany permitted actions that
// carry a soft-rule caveat; Reason explains a denial.
type Decision struct {
	Allowed  bool
	Reason   string
	Warnings []string
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// GateStartOfDay permits SOD only for an active, onboarded driver with a
// vehicle assigned and no SOD logged today.
func GateStartOfDay(driver model.Driver, day DayState) Decision {
	if driver.Status != model.DriverStatusActive {
		return deny("driver account is not active")
	}
	if !driver.OnboardingComplete() {
		return deny("onboarding must be completed first")
	}
	if driver.AssignedVehicleID == nil {
		return deny("no vehicle is assigned to this driver")
	}
	if day.HasStartOfDay {
		return deny("start-of-day log already exists for today")
	}
	return Decision{Allowed: true}
}

// GateEndOfDay permits EOD for an active driver with no EOD logged today.
// A missing same-day SOD is a soft prerequisite: the action proceeds with a
// warning and the caller must skip the parcel-count cross-check.
func GateEndOfDay(driver model.Driver, day DayState) Decision {
	if driver.Status != model.DriverStatusActive {
		return deny("driver account is not active")
	}
	if !driver.OnboardingComplete() {
		return deny("onboarding must be completed first")
	}
	if day.HasEndOfDay {
		return deny("end-of-day log already exists for today")
	}
	d := Decision{Allowed: true}
	if !day.HasStartOfDay {
		d.Warnings = append(d.Warnings, "no start-of-day log found for today; parcel count not verified")
	}
	return d
}
