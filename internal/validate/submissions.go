package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/driveops/driveops/internal/model"
)

const (
	MaxParcelCount     = 9999
	MaxStartingMileage = 999999
	MaxNotesLen        = 500
	MaxIssuesLen       = 1000
)

type OnboardingInput struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
	LicenseExpiry string `json:"license_expiry"` // YYYY-MM-DD
}

type Onboarding struct {
	FirstName     string
	LastName      string
	Phone         *string
	LicenseNumber string
	LicenseExpiry time.Time
}

// CheckOnboarding validates the onboarding form. now anchors the
// license-expiry check; the expiry must be strictly in the future.
func CheckOnboarding(in OnboardingInput, now time.Time) (Onboarding, Result) {
	var r Result
	out := Onboarding{
		FirstName: checkName(&r, "first_name", in.FirstName, 2, 50),
		LastName:  checkName(&r, "last_name", in.LastName, 2, 50),
		Phone:     checkPhone(&r, "phone", in.Phone),
	}

	out.LicenseNumber = strings.TrimSpace(in.LicenseNumber)
	if out.LicenseNumber == "" {
		r.Fail("license_number", "license number is required")
	}

	expiry, err := time.Parse("2006-01-02", strings.TrimSpace(in.LicenseExpiry))
	if err != nil {
		r.Fail("license_expiry", "must be a date in YYYY-MM-DD format")
	} else if !expiry.After(now) {
		r.Fail("license_expiry", "license must not be expired")
	} else {
		out.LicenseExpiry = expiry
	}
	return out, r
}

type InvitationInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Invitation struct {
	Email     string
	FirstName string
	LastName  string
}

func CheckInvitation(in InvitationInput) (Invitation, Result) {
	var r Result
	out := Invitation{
		Email:     checkEmail(&r, "email", in.Email),
		FirstName: checkName(&r, "first_name", in.FirstName, 1, 50),
		LastName:  checkName(&r, "last_name", in.LastName, 1, 50),
	}
	return out, r
}

type StartOfDayInput struct {
	ParcelCount           int                `json:"parcel_count"`
	StartingMileage       int                `json:"starting_mileage"`
	VanConfirmed          bool               `json:"van_confirmed"`
	VehicleCheckCompleted bool               `json:"vehicle_check_completed"`
	VehicleCheck          model.VehicleCheck `json:"vehicle_check"`
	Notes                 string             `json:"notes"`
}

type StartOfDay struct {
	ParcelCount     int
	StartingMileage int
	VehicleCheck    model.VehicleCheck
	Notes           string
}

// CheckStartOfDay validates the SOD form shape. Per-item checklist
// completeness is a business rule and lives in the rules package; here only
// the confirmation flags and field ranges are enforced.
func CheckStartOfDay(in StartOfDayInput) (StartOfDay, Result) {
	var r Result
	checkIntRange(&r, "parcel_count", in.ParcelCount, 0, MaxParcelCount)
	checkIntRange(&r, "starting_mileage", in.StartingMileage, 0, MaxStartingMileage)
	if !in.VanConfirmed {
		r.Fail("van_confirmed", "van must be confirmed before starting the day")
	}
	if !in.VehicleCheckCompleted {
		r.Fail("vehicle_check_completed", "vehicle check must be completed")
	}
	notes := strings.TrimSpace(in.Notes)
	checkMaxLen(&r, "notes", notes, MaxNotesLen)
	return StartOfDay{
		ParcelCount:     in.ParcelCount,
		StartingMileage: in.StartingMileage,
		VehicleCheck:    in.VehicleCheck,
		Notes:           notes,
	}, r
}

type EndOfDayInput struct {
	ParcelsDelivered int    `json:"parcels_delivered"`
	IssuesReported   string `json:"issues_reported"`
}

type EndOfDay struct {
	ParcelsDelivered int
	IssuesReported   string
}

func CheckEndOfDay(in EndOfDayInput) (EndOfDay, Result) {
	var r Result
	checkIntRange(&r, "parcels_delivered", in.ParcelsDelivered, 0, MaxParcelCount)
	issues := strings.TrimSpace(in.IssuesReported)
	checkMaxLen(&r, "issues_reported", issues, MaxIssuesLen)
	return EndOfDay{ParcelsDelivered: in.ParcelsDelivered, IssuesReported: issues}, r
}

type IncidentInput struct {
	OccurredAt  string `json:"occurred_at"` // RFC 3339
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

type Incident struct {
	OccurredAt  time.Time
	Severity    model.IncidentSeverity
	Description string
}

func CheckIncident(in IncidentInput, now time.Time) (Incident, Result) {
	var r Result
	var out Incident

	occurred, err := time.Parse(time.RFC3339, strings.TrimSpace(in.OccurredAt))
	if err != nil {
		r.Fail("occurred_at", "must be an RFC 3339 timestamp")
	} else if occurred.After(now) {
		r.Fail("occurred_at", "must not be in the future")
	} else {
		out.OccurredAt = occurred
	}

	switch model.IncidentSeverity(strings.ToUpper(strings.TrimSpace(in.Severity))) {
	case model.IncidentSeverityLow, model.IncidentSeverityMedium,
		model.IncidentSeverityHigh, model.IncidentSeverityCritical:
		out.Severity = model.IncidentSeverity(strings.ToUpper(strings.TrimSpace(in.Severity)))
	default:
		r.Fail("severity", "must be one of LOW, MEDIUM, HIGH, CRITICAL")
	}

	out.Description = strings.TrimSpace(in.Description)
	if out.Description == "" {
		r.Fail("description", "description is required")
	}
	checkMaxLen(&r, "description", out.Description, MaxIssuesLen)
	return out, r
}

// FileUpload validates an uploaded file's size and declared content type.
// maxBytes is the single configured limit for the file kind.
func FileUpload(r *Result, field string, size int64, contentType string, maxBytes int64) {
	if size <= 0 {
		r.Fail(field, "file is required")
		return
	}
	if size > maxBytes {
		r.Fail(field, fmt.Sprintf("file exceeds the %d MB limit", maxBytes>>20))
	}
	if !strings.HasPrefix(contentType, "image/") {
		r.Fail(field, "file must be an image")
	}
}
