package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/driveops/driveops/internal/auth"
	"github.com/driveops/driveops/internal/model"
	"github.com/driveops/driveops/internal/notify"
	"github.com/driveops/driveops/internal/ratelimit"
	"github.com/driveops/driveops/internal/validate"
)

type fakeAdminStore struct {
	drivers     map[uuid.UUID]model.Driver
	invitations map[uuid.UUID]model.Invitation
	vehicles    map[uuid.UUID]model.Vehicle
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{
		drivers:     map[uuid.UUID]model.Driver{},
		invitations: map[uuid.UUID]model.Invitation{},
		vehicles:    map[uuid.UUID]model.Vehicle{},
	}
}

func (s *fakeAdminStore) GetDriver(_ context.Context, id uuid.UUID) (*model.Driver, error) {
	d, ok := s.drivers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (s *fakeAdminStore) GetDriverByEmail(_ context.Context, email string) (*model.Driver, error) {
	for _, d := range s.drivers {
		if d.Email == email {
			copied := d
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeAdminStore) CreateInvitedDriver(_ context.Context, d model.Driver, invitedBy uuid.UUID) (*model.Driver, *model.Invitation, error) {
	for _, existing := range s.drivers {
		if existing.Email == d.Email {
			return nil, nil, errDuplicateRow
		}
	}
	d.ID = uuid.New()
	d.Status = model.DriverStatusInvited
	d.RequiresOnboarding = true
	s.drivers[d.ID] = d

	inv := model.Invitation{
		ID:        uuid.New(),
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		DriverID:  d.ID,
		InvitedBy: invitedBy,
	}
	s.invitations[inv.ID] = inv
	return &d, &inv, nil
}

func (s *fakeAdminStore) GetInvitation(_ context.Context, id uuid.UUID) (*model.Invitation, error) {
	inv, ok := s.invitations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &inv, nil
}

func (s *fakeAdminStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.DriverStatus) error {
	d := s.drivers[id]
	d.Status = status
	s.drivers[id] = d
	return nil
}

func (s *fakeAdminStore) SaveOnboarding(_ context.Context, id uuid.UUID, ob model.Driver) error {
	d := s.drivers[id]
	d.FirstName = ob.FirstName
	d.LastName = ob.LastName
	d.Phone = ob.Phone
	d.LicenseNumber = ob.LicenseNumber
	d.LicenseExpiry = ob.LicenseExpiry
	d.RequiresOnboarding = false
	s.drivers[id] = d
	return nil
}

func (s *fakeAdminStore) SetFirstLoginCompleted(_ context.Context, id uuid.UUID) error {
	d := s.drivers[id]
	d.FirstLoginCompleted = true
	s.drivers[id] = d
	return nil
}

func (s *fakeAdminStore) SetDocumentPath(_ context.Context, id uuid.UUID, column, path string) error {
	d := s.drivers[id]
	if column == "license_doc_path" {
		d.LicenseDocPath = &path
	} else {
		d.InsuranceDocPath = &path
	}
	s.drivers[id] = d
	return nil
}

func (s *fakeAdminStore) GetVehicle(_ context.Context, id uuid.UUID) (*model.Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (s *fakeAdminStore) AssignVehicle(_ context.Context, driverID, vehicleID uuid.UUID) error {
	v := s.vehicles[vehicleID]
	if !v.IsActive || (v.AssignedDriverID != nil && *v.AssignedDriverID != driverID) {
		return gorm.ErrRecordNotFound
	}
	v.AssignedDriverID = &driverID
	s.vehicles[vehicleID] = v

	d := s.drivers[driverID]
	d.AssignedVehicleID = &vehicleID
	s.drivers[driverID] = d
	return nil
}

func (s *fakeAdminStore) UnassignVehicle(_ context.Context, driverID uuid.UUID) error {
	for id, v := range s.vehicles {
		if v.AssignedDriverID != nil && *v.AssignedDriverID == driverID {
			v.AssignedDriverID = nil
			s.vehicles[id] = v
		}
	}
	d := s.drivers[driverID]
	d.AssignedVehicleID = nil
	s.drivers[driverID] = d
	return nil
}

type sentMail struct {
	to       string
	template notify.Template
}

type fakeNotifier struct {
	sent []sentMail
	fail bool
}

func (n *fakeNotifier) Send(_ context.Context, to string, template notify.Template, _ map[string]string) error {
	if n.fail {
		return errors.New("smtp unreachable")
	}
	n.sent = append(n.sent, sentMail{to: to, template: template})
	return nil
}

type countingStore struct {
	counts map[string]int64
}

func (s *countingStore) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if s.counts == nil {
		s.counts = map[string]int64{}
	}
	s.counts[key]++
	return s.counts[key], nil
}

func (s *countingStore) Reset(_ context.Context, key string) error {
	delete(s.counts, key)
	return nil
}

func newDriverService(t *testing.T, notifier notify.Notifier) (*DriverService, *fakeAdminStore) {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Fatal(err)
	}
	store := newFakeAdminStore()
	limiter := ratelimit.New(&countingStore{}, "login", 5, time.Minute)
	issuer := auth.NewIssuer("test-secret", time.Hour)
	svc := NewDriverService(
		store, &fakeLogStore{}, &fakeFileStore{}, notifier, limiter, issuer,
		5<<20, loc, zerolog.Nop(), testDupCheck,
	)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, loc) }
	return svc, store
}

func admin() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}
}

func TestInviteCreatesDriverAndSendsCredentials(t *testing.T) {
	notifier := &fakeNotifier{}
	svc, store := newDriverService(t, notifier)

	invitation, err := svc.Invite(context.Background(), InviteInput{
		Principal: admin(),
		Form: validate.InvitationInput{
			Email:     "new.driver@example.com",
			FirstName: "New",
			LastName:  "Driver",
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	driver := store.drivers[invitation.DriverID]
	if driver.Status != model.DriverStatusInvited || !driver.RequiresOnboarding {
		t.Fatalf("unexpected driver state: %+v", driver)
	}
	if driver.PasswordHash == "" {
		t.Fatalf("expected a hashed temporary credential")
	}
	if len(notifier.sent) != 1 || notifier.sent[0].template != notify.TemplateCredentials {
		t.Fatalf("expected credentials email, got %v", notifier.sent)
	}
}

func TestInviteNotificationFailureDoesNotFail(t *testing.T) {
	svc, store := newDriverService(t, &fakeNotifier{fail: true})

	invitation, err := svc.Invite(context.Background(), InviteInput{
		Principal: admin(),
		Form: validate.InvitationInput{
			Email:     "new.driver@example.com",
			FirstName: "New",
			LastName:  "Driver",
		},
	})
	if err != nil {
		t.Fatalf("notification failure must not fail the invite: %v", err)
	}
	if _, ok := store.invitations[invitation.ID]; !ok {
		t.Fatalf("invitation must be persisted")
	}
}

func TestInviteDuplicateEmail(t *testing.T) {
	svc, _ := newDriverService(t, &fakeNotifier{})
	ctx := context.Background()

	form := validate.InvitationInput{Email: "dup@example.com", FirstName: "A", LastName: "B"}
	if _, err := svc.Invite(ctx, InviteInput{Principal: admin(), Form: form}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Invite(ctx, InviteInput{Principal: admin(), Form: form})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected duplicate email validation error, got %v", err)
	}
}

func TestInviteRequiresAdmin(t *testing.T) {
	svc, _ := newDriverService(t, &fakeNotifier{})
	_, err := svc.Invite(context.Background(), InviteInput{
		Principal: model.Principal{UserID: uuid.New(), Role: model.RoleDriver},
		Form:      validate.InvitationInput{Email: "x@y.co", FirstName: "A", LastName: "B"},
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denial, got %v", err)
	}
}

func TestLifecycleFlow(t *testing.T) {
	notifier := &fakeNotifier{}
	svc, store := newDriverService(t, notifier)
	ctx := context.Background()

	invitation, err := svc.Invite(ctx, InviteInput{
		Principal: admin(),
		Form:      validate.InvitationInput{Email: "flow@example.com", FirstName: "Flow", LastName: "Driver"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.AcceptInvitation(ctx, invitation.ID); err != nil {
		t.Fatal(err)
	}
	if store.drivers[invitation.DriverID].Status != model.DriverStatusPending {
		t.Fatalf("expected PENDING after acceptance")
	}

	if _, err := svc.ChangeStatus(ctx, ChangeStatusInput{
		Principal: admin(),
		DriverID:  invitation.DriverID,
		Target:    model.DriverStatusActive,
	}); err != nil {
		t.Fatal(err)
	}
	if store.drivers[invitation.DriverID].Status != model.DriverStatusActive {
		t.Fatalf("expected ACTIVE")
	}

	// Active -> terminated is not an edge; must be rejected.
	_, err = svc.ChangeStatus(ctx, ChangeStatusInput{
		Principal: admin(),
		DriverID:  invitation.DriverID,
		Target:    model.DriverStatusTerminated,
	})
	if !errors.Is(err, ErrNotPermitted) {
		t.Fatalf("expected invalid transition rejection, got %v", err)
	}
}

func TestLoginFlow(t *testing.T) {
	svc, store := newDriverService(t, &fakeNotifier{})
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("temp-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	driver := model.Driver{
		ID:           uuid.New(),
		Email:        "login@example.com",
		PasswordHash: string(hash),
		Status:       model.DriverStatusActive,
	}
	store.drivers[driver.ID] = driver

	result, err := svc.Login(ctx, "Login@Example.com", "temp-password")
	if err != nil {
		t.Fatal(err)
	}
	if result.Token == "" {
		t.Fatalf("expected a token")
	}
	if !store.drivers[driver.ID].FirstLoginCompleted {
		t.Fatalf("first login must be recorded")
	}

	if _, err := svc.Login(ctx, "login@example.com", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected bad credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected bad credentials for unknown email, got %v", err)
	}
}

func TestLoginRateLimit(t *testing.T) {
	svc, store := newDriverService(t, &fakeNotifier{})
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	driver := model.Driver{
		ID:           uuid.New(),
		Email:        "limited@example.com",
		PasswordHash: string(hash),
		Status:       model.DriverStatusActive,
	}
	store.drivers[driver.ID] = driver

	for i := 0; i < 5; i++ {
		if _, err := svc.Login(ctx, "limited@example.com", "wrong"); !errors.Is(err, ErrBadCredentials) {
			t.Fatalf("attempt %d: expected bad credentials, got %v", i+1, err)
		}
	}
	if _, err := svc.Login(ctx, "limited@example.com", "pw"); !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected rate limit, got %v", err)
	}
}

func TestLoginBlockedForTerminalStatus(t *testing.T) {
	svc, store := newDriverService(t, &fakeNotifier{})

	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	driver := model.Driver{
		ID:           uuid.New(),
		Email:        "gone@example.com",
		PasswordHash: string(hash),
		Status:       model.DriverStatusTerminated,
	}
	store.drivers[driver.ID] = driver

	if _, err := svc.Login(context.Background(), "gone@example.com", "pw"); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected terminated driver to be blocked, got %v", err)
	}
}

func TestAssignVehicle(t *testing.T) {
	svc, store := newDriverService(t, &fakeNotifier{})
	ctx := context.Background()

	driverID := uuid.New()
	store.drivers[driverID] = model.Driver{ID: driverID, Status: model.DriverStatusActive}
	vehicleID := uuid.New()
	store.vehicles[vehicleID] = model.Vehicle{ID: vehicleID, Registration: "AB12 CDE", IsActive: true}

	if err := svc.AssignVehicle(ctx, AssignVehicleInput{
		Principal: admin(),
		DriverID:  driverID,
		VehicleID: vehicleID,
	}); err != nil {
		t.Fatal(err)
	}
	if store.drivers[driverID].AssignedVehicleID == nil {
		t.Fatalf("expected assignment recorded")
	}

	// A vehicle held by one driver is never silently reassigned.
	otherID := uuid.New()
	store.drivers[otherID] = model.Driver{ID: otherID, Status: model.DriverStatusActive}
	err := svc.AssignVehicle(ctx, AssignVehicleInput{
		Principal: admin(),
		DriverID:  otherID,
		VehicleID: vehicleID,
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected exclusivity rejection, got %v", err)
	}

	if err := svc.UnassignVehicle(ctx, admin(), driverID); err != nil {
		t.Fatal(err)
	}
	if err := svc.AssignVehicle(ctx, AssignVehicleInput{
		Principal: admin(),
		DriverID:  otherID,
		VehicleID: vehicleID,
	}); err != nil {
		t.Fatalf("expected assignment after clearing, got %v", err)
	}
}

func TestAssignVehicleInactiveVehicle(t *testing.T) {
	svc, store := newDriverService(t, &fakeNotifier{})

	driverID := uuid.New()
	store.drivers[driverID] = model.Driver{ID: driverID, Status: model.DriverStatusActive}
	vehicleID := uuid.New()
	store.vehicles[vehicleID] = model.Vehicle{ID: vehicleID, Registration: "XY99 ZZZ", IsActive: false}

	err := svc.AssignVehicle(context.Background(), AssignVehicleInput{
		Principal: admin(),
		DriverID:  driverID,
		VehicleID: vehicleID,
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected inactive vehicle rejection, got %v", err)
	}
}

func TestCompleteOnboarding(t *testing.T) {
	svc, store := newDriverService(t, &fakeNotifier{})
	ctx := context.Background()

	driverID := uuid.New()
	store.drivers[driverID] = model.Driver{
		ID:                 driverID,
		Status:             model.DriverStatusActive,
		RequiresOnboarding: true,
	}

	err := svc.CompleteOnboarding(ctx, OnboardingSubmission{
		DriverID: driverID,
		Form: validate.OnboardingInput{
			FirstName:     "Sam",
			LastName:      "Porter",
			LicenseNumber: "PORTE901012SX9AB",
			LicenseExpiry: "2030-06-01",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if store.drivers[driverID].RequiresOnboarding {
		t.Fatalf("expected onboarding flag cleared")
	}

	err = svc.CompleteOnboarding(ctx, OnboardingSubmission{
		DriverID: driverID,
		Form:     validate.OnboardingInput{FirstName: "S", LastName: "P", LicenseNumber: "", LicenseExpiry: "2001-01-01"},
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if len(validation.Result.Errors) < 3 {
		t.Fatalf("expected every field error collected, got %v", validation.Result.Errors)
	}
}

func TestUploadDocument(t *testing.T) {
	svc, store := newDriverService(t, &fakeNotifier{})
	ctx := context.Background()

	driverID := uuid.New()
	store.drivers[driverID] = model.Driver{ID: driverID, Status: model.DriverStatusActive}

	path, err := svc.UploadDocument(ctx, DocumentUpload{
		DriverID:    driverID,
		Kind:        DocumentLicense,
		Name:        "license.pdf",
		Size:        1000,
		ContentType: "application/pdf",
		Content:     strings.NewReader("pdf bytes"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if store.drivers[driverID].LicenseDocPath == nil || *store.drivers[driverID].LicenseDocPath != path {
		t.Fatalf("expected license path recorded")
	}

	_, err = svc.UploadDocument(ctx, DocumentUpload{
		DriverID:    driverID,
		Kind:        DocumentInsurance,
		Name:        "notes.txt",
		Size:        1000,
		ContentType: "text/plain",
		Content:     strings.NewReader("nope"),
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected content-type rejection, got %v", err)
	}
}
