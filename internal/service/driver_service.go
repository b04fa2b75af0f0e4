package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/driveops/driveops/internal/auth"
	"github.com/driveops/driveops/internal/model"
	"github.com/driveops/driveops/internal/notify"
	"github.com/driveops/driveops/internal/ratelimit"
	"github.com/driveops/driveops/internal/rules"
	"github.com/driveops/driveops/internal/storage"
	"github.com/driveops/driveops/internal/validate"
	"github.com/driveops/driveops/internal/workflow"
)

// AdminDriverStore is the record-store surface the administrative flows use.
type AdminDriverStore interface {
	DriverStore
	GetDriverByEmail(ctx context.Context, email string) (*model.Driver, error)
	CreateInvitedDriver(ctx context.Context, d model.Driver, invitedBy uuid.UUID) (*model.Driver, *model.Invitation, error)
	GetInvitation(ctx context.Context, id uuid.UUID) (*model.Invitation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.DriverStatus) error
	SaveOnboarding(ctx context.Context, id uuid.UUID, ob model.Driver) error
	SetFirstLoginCompleted(ctx context.Context, id uuid.UUID) error
	SetDocumentPath(ctx context.Context, id uuid.UUID, column, path string) error
	GetVehicle(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	AssignVehicle(ctx context.Context, driverID, vehicleID uuid.UUID) error
	UnassignVehicle(ctx context.Context, driverID uuid.UUID) error
}

type DriverService struct {
	store    AdminDriverStore
	files    ObjectStore
	checker  *rules.Checker
	notifier notify.Notifier
	limiter  *ratelimit.Limiter
	issuer   *auth.Issuer
	upload   int64 // max document size in bytes
	loc      *time.Location
	log      zerolog.Logger
	now      func() time.Time
	dupCheck func(error) bool
}

func NewDriverService(
	store AdminDriverStore,
	logs DayLogStore,
	files ObjectStore,
	notifier notify.Notifier,
	limiter *ratelimit.Limiter,
	issuer *auth.Issuer,
	maxDocBytes int64,
	loc *time.Location,
	log zerolog.Logger,
	isDuplicate func(error) bool,
) *DriverService {
	return &DriverService{
		store:    store,
		files:    files,
		checker:  rules.NewChecker(logs),
		notifier: notifier,
		limiter:  limiter,
		issuer:   issuer,
		upload:   maxDocBytes,
		loc:      loc,
		log:      log,
		now:      time.Now,
		dupCheck: isDuplicate,
	}
}

// notifyAsync delivers best-effort: a failed send is logged and swallowed so
// it never fails the operation that triggered it.
func (s *DriverService) notifyAsync(to string, template notify.Template, vars map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.notifier.Send(ctx, to, template, vars); err != nil {
		s.log.Error().Err(err).Str("to", to).Str("template", string(template)).Msg("notification failed")
	}
}

type LoginResult struct {
	Token  string        `json:"token"`
	Driver *model.Driver `json:"driver"`
}

func (s *DriverService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	ok, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.log.Error().Err(err).Msg("rate limiter unavailable, allowing attempt")
	} else if !ok {
		return nil, ErrTooManyAttempts
	}

	driver, err := s.store.GetDriverByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	switch driver.Status {
	case model.DriverStatusTerminated, model.DriverStatusCancelled, model.DriverStatusRejected:
		return nil, ErrPermissionDenied
	}
	if bcrypt.CompareHashAndPassword([]byte(driver.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}

	if err := s.limiter.Clear(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("could not clear login attempts")
	}
	if !driver.FirstLoginCompleted {
		if err := s.store.SetFirstLoginCompleted(ctx, driver.ID); err != nil {
			return nil, err
		}
		driver.FirstLoginCompleted = true
	}

	token, err := s.issuer.Issue(model.Principal{UserID: driver.ID, Role: model.RoleDriver}, s.now())
	if err != nil {
		return nil, err
	}
	driver.PasswordHash = ""
	return &LoginResult{Token: token, Driver: driver}, nil
}

type InviteInput struct {
	Principal model.Principal
	Form      validate.InvitationInput
}

// Invite creates the driver shell in INVITED and emails a temporary
// credential. The email failure path never rolls the invitation back.
func (s *DriverService) Invite(ctx context.Context, in InviteInput) (*model.Invitation, error) {
	if !in.Principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	form, r := validate.CheckInvitation(in.Form)
	if !r.Valid() {
		return nil, validationErr(r)
	}

	tempPassword := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	_, invitation, err := s.store.CreateInvitedDriver(ctx, model.Driver{
		Email:        form.Email,
		PasswordHash: string(hash),
		FirstName:    form.FirstName,
		LastName:     form.LastName,
	}, in.Principal.UserID)
	if err != nil {
		if s.dupCheck(err) {
			var dup validate.Result
			dup.Fail("email", "a driver with this email already exists")
			return nil, validationErr(dup)
		}
		return nil, err
	}

	s.notifyAsync(form.Email, notify.TemplateCredentials, map[string]string{
		"first_name": form.FirstName,
		"email":      form.Email,
		"password":   tempPassword,
	})
	return invitation, nil
}

// AcceptInvitation moves the invited driver into PENDING review.
func (s *DriverService) AcceptInvitation(ctx context.Context, invitationID uuid.UUID) (*model.Driver, error) {
	invitation, err := s.store.GetInvitation(ctx, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.transition(ctx, invitation.DriverID, model.DriverStatusPending)
}

type ChangeStatusInput struct {
	Principal model.Principal
	DriverID  uuid.UUID
	Target    model.DriverStatus
}

// ChangeStatus applies an administrative lifecycle transition and notifies
// the driver.
func (s *DriverService) ChangeStatus(ctx context.Context, in ChangeStatusInput) (*model.Driver, error) {
	if !in.Principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	driver, err := s.transition(ctx, in.DriverID, in.Target)
	if err != nil {
		return nil, err
	}
	s.notifyAsync(driver.Email, notify.TemplateStatusChanged, map[string]string{
		"first_name": driver.FirstName,
		"status":     string(driver.Status),
	})
	return driver, nil
}

func (s *DriverService) transition(ctx context.Context, driverID uuid.UUID, target model.DriverStatus) (*model.Driver, error) {
	driver, err := s.store.GetDriver(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := workflow.ApplyTransition(driver, target); err != nil {
		return nil, gateErr(err.Error())
	}
	if err := s.store.UpdateStatus(ctx, driver.ID, driver.Status); err != nil {
		return nil, err
	}
	return driver, nil
}

type AssignVehicleInput struct {
	Principal model.Principal
	DriverID  uuid.UUID
	VehicleID uuid.UUID
}

// AssignVehicle links driver and vehicle after the exclusivity and
// availability checks. An existing assignment to another driver must be
// cleared first; it is never stolen.
func (s *DriverService) AssignVehicle(ctx context.Context, in AssignVehicleInput) error {
	if !in.Principal.IsAdmin() {
		return ErrPermissionDenied
	}
	vehicle, err := s.store.GetVehicle(ctx, in.VehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	var r validate.Result
	if !vehicle.IsActive {
		r.Fail("vehicle", "vehicle is not in active service")
	}
	if vehicle.AssignedDriverID != nil && *vehicle.AssignedDriverID != in.DriverID {
		r.Fail("vehicle", "vehicle is already assigned to another driver")
	}
	today := s.today()
	if err := s.checker.CheckVehicleAvailable(ctx, &r, in.VehicleID, in.DriverID, today); err != nil {
		return err
	}
	if !r.Valid() {
		return validationErr(r)
	}

	if err := s.store.AssignVehicle(ctx, in.DriverID, in.VehicleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Lost the race for the vehicle; same answer as the pre-check.
			var lost validate.Result
			lost.Fail("vehicle", "vehicle is already assigned to another driver")
			return validationErr(lost)
		}
		return err
	}
	return nil
}

func (s *DriverService) UnassignVehicle(ctx context.Context, principal model.Principal, driverID uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	return s.store.UnassignVehicle(ctx, driverID)
}

type OnboardingSubmission struct {
	DriverID uuid.UUID
	Form     validate.OnboardingInput
}

// CompleteOnboarding records the onboarding form. The license document is
// uploaded separately via UploadDocument; the onboarding-complete state also
// requires it to be on file.
func (s *DriverService) CompleteOnboarding(ctx context.Context, in OnboardingSubmission) error {
	form, r := validate.CheckOnboarding(in.Form, s.now())
	if !r.Valid() {
		return validationErr(r)
	}
	driver, err := s.store.GetDriver(ctx, in.DriverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.store.SaveOnboarding(ctx, driver.ID, model.Driver{
		FirstName:     form.FirstName,
		LastName:      form.LastName,
		Phone:         form.Phone,
		LicenseNumber: &form.LicenseNumber,
		LicenseExpiry: &form.LicenseExpiry,
	})
}

type DocumentKind string

const (
	DocumentLicense   DocumentKind = "license"
	DocumentInsurance DocumentKind = "insurance"
)

type DocumentUpload struct {
	DriverID    uuid.UUID
	Kind        DocumentKind
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

// UploadDocument stores an onboarding document under the driver's own path.
func (s *DriverService) UploadDocument(ctx context.Context, in DocumentUpload) (string, error) {
	var column string
	switch in.Kind {
	case DocumentLicense:
		column = "license_doc_path"
	case DocumentInsurance:
		column = "insurance_doc_path"
	default:
		return "", ErrInvalidInput
	}

	var r validate.Result
	if in.Size <= 0 {
		r.Fail("document", "file is required")
	}
	if in.Size > s.upload {
		r.Fail("document", "file exceeds the size limit")
	}
	if !strings.HasPrefix(in.ContentType, "image/") && in.ContentType != "application/pdf" {
		r.Fail("document", "file must be an image or a PDF")
	}
	if !r.Valid() {
		return "", validationErr(r)
	}

	path, err := storage.ObjectPath(in.DriverID, "documents", string(in.Kind)+extensionForDocument(in.ContentType))
	if err != nil {
		return "", err
	}
	stored, err := s.files.Upload(path, in.Content)
	if err != nil {
		return "", err
	}
	if err := s.store.SetDocumentPath(ctx, in.DriverID, column, stored); err != nil {
		return "", err
	}
	return stored, nil
}

func extensionForDocument(contentType string) string {
	if contentType == "application/pdf" {
		return ".pdf"
	}
	return extensionFor(contentType)
}

func (s *DriverService) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}
