package model

import (
	"time"

	"github.com/google/uuid"
)

type DriverStatus string

const (
	DriverStatusInvited    DriverStatus = "INVITED"
	DriverStatusPending    DriverStatus = "PENDING"
	DriverStatusActive     DriverStatus = "ACTIVE"
	DriverStatusInactive   DriverStatus = "INACTIVE"
	DriverStatusSuspended  DriverStatus = "SUSPENDED"
	DriverStatusTerminated DriverStatus = "TERMINATED"
	DriverStatusCancelled  DriverStatus = "CANCELLED"
	DriverStatusRejected   DriverStatus = "REJECTED"
)

type Driver struct {
	ID                  uuid.UUID
	Email               string
	PasswordHash        string
	FirstName           string
	LastName            string
	Phone               *string
	Status              DriverStatus
	AssignedVehicleID   *uuid.UUID
	RequiresOnboarding  bool
	FirstLoginCompleted bool
	LicenseNumber       *string
	LicenseExpiry       *time.Time
	LicenseDocPath      *string
	InsuranceDocPath    *string // optional, not required for onboarding completion
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// OnboardingComplete reports whether the driver has finished the onboarding
// stage: first login done, onboarding form submitted, license document on file.
// Insurance is optional.
func (d Driver) OnboardingComplete() bool {
	return !d.RequiresOnboarding && d.FirstLoginCompleted && d.LicenseDocPath != nil
}
