package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/driveops/driveops/internal/config"
	"github.com/driveops/driveops/internal/model"
	"github.com/driveops/driveops/internal/rules"
	"github.com/driveops/driveops/internal/storage"
	"github.com/driveops/driveops/internal/validate"
	"github.com/driveops/driveops/internal/workflow"
)

// DriverStore is the slice of the record store the day-log pipeline reads
// drivers from.
type DriverStore interface {
	GetDriver(ctx context.Context, id uuid.UUID) (*model.Driver, error)
}

// DayLogStore extends the rule checker's read surface with the writes the
// pipeline performs once validation passes.
type DayLogStore interface {
	rules.DayLogStore
	InsertStartOfDay(ctx context.Context, log model.StartOfDayLog) (*model.StartOfDayLog, error)
	InsertEndOfDay(ctx context.Context, log model.EndOfDayLog) (*model.EndOfDayLog, error)
	InsertIncident(ctx context.Context, incident model.Incident) (*model.Incident, error)
}

// ObjectStore receives validated screenshot uploads.
type ObjectStore interface {
	Upload(path string, r io.Reader) (string, error)
}

// DayLogService runs the submission pipeline: schema validation, workflow
// gating, business rule checks, then the write. Duplicate pre-checks are
// advisory; the store's unique indexes settle races.
type DayLogService struct {
	drivers  DriverStore
	logs     DayLogStore
	files    ObjectStore
	checker  *rules.Checker
	upload   config.UploadConfig
	loc      *time.Location
	log      zerolog.Logger
	now      func() time.Time
	dupCheck func(error) bool
}

func NewDayLogService(
	drivers DriverStore,
	logs DayLogStore,
	files ObjectStore,
	upload config.UploadConfig,
	loc *time.Location,
	log zerolog.Logger,
	isDuplicate func(error) bool,
) *DayLogService {
	return &DayLogService{
		drivers:  drivers,
		logs:     logs,
		files:    files,
		checker:  rules.NewChecker(logs),
		upload:   upload,
		loc:      loc,
		log:      log,
		now:      time.Now,
		dupCheck: isDuplicate,
	}
}

// today returns midnight of the current calendar day in the operating
// timezone.
func (s *DayLogService) today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

func (s *DayLogService) getDriver(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	driver, err := s.drivers.GetDriver(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return driver, nil
}

func (s *DayLogService) dayState(ctx context.Context, driverID uuid.UUID, date time.Time) (*model.StartOfDayLog, *model.EndOfDayLog, error) {
	sod, err := s.logs.FindStartOfDay(ctx, driverID, date)
	if err != nil {
		return nil, nil, err
	}
	eod, err := s.logs.FindEndOfDay(ctx, driverID, date)
	if err != nil {
		return nil, nil, err
	}
	return sod, eod, nil
}

type SubmitStartOfDayInput struct {
	DriverID uuid.UUID
	LogDate  time.Time
	Form     validate.StartOfDayInput
}

func (s *DayLogService) SubmitStartOfDay(ctx context.Context, in SubmitStartOfDayInput) (*model.StartOfDayLog, error) {
	form, r := validate.CheckStartOfDay(in.Form)
	if !r.Valid() {
		return nil, validationErr(r)
	}

	driver, err := s.getDriver(ctx, in.DriverID)
	if err != nil {
		return nil, err
	}

	sod, eod, err := s.dayState(ctx, in.DriverID, s.today())
	if err != nil {
		return nil, err
	}
	decision := workflow.GateStartOfDay(*driver, workflow.DayState{
		HasStartOfDay: sod != nil,
		HasEndOfDay:   eod != nil,
	})
	if !decision.Allowed {
		return nil, gateErr(decision.Reason)
	}

	var rr validate.Result
	rules.CheckLogDate(&rr, in.LogDate, s.now(), s.loc)
	rules.CheckVehicleAssignment(&rr, *driver)
	rules.CheckVehicleCheck(&rr, form.VehicleCheck)
	if rr.Valid() {
		if err := s.checker.CheckVehicleAvailable(ctx, &rr, *driver.AssignedVehicleID, driver.ID, s.today()); err != nil {
			return nil, err
		}
	}
	if !rr.Valid() {
		return nil, validationErr(rr)
	}

	saved, err := s.logs.InsertStartOfDay(ctx, model.StartOfDayLog{
		DriverID:              driver.ID,
		VehicleID:             *driver.AssignedVehicleID,
		LogDate:               s.today(),
		ParcelCount:           form.ParcelCount,
		StartingMileage:       form.StartingMileage,
		VanConfirmed:          true,
		VehicleCheck:          form.VehicleCheck,
		VehicleCheckCompleted: true,
		Notes:                 form.Notes,
	})
	if err != nil {
		if s.dupCheck(err) {
			// Late constraint violation; same outcome as the advisory check.
			var dup validate.Result
			dup.Fail("log_date", "start-of-day log already exists for today")
			return nil, validationErr(dup)
		}
		return nil, err
	}
	return saved, nil
}

// ScreenshotUpload is the proof image attached to an EOD submission.
type ScreenshotUpload struct {
	Name        string
	Size        int64
	ContentType string
	Content     io.Reader
}

type SubmitEndOfDayInput struct {
	DriverID   uuid.UUID
	LogDate    time.Time
	Form       validate.EndOfDayInput
	Screenshot ScreenshotUpload
}

type SubmitEndOfDayResult struct {
	Log      *model.EndOfDayLog
	Warnings []string
}

func (s *DayLogService) SubmitEndOfDay(ctx context.Context, in SubmitEndOfDayInput) (*SubmitEndOfDayResult, error) {
	form, r := validate.CheckEndOfDay(in.Form)
	validate.FileUpload(&r, "screenshot", in.Screenshot.Size, in.Screenshot.ContentType, s.upload.MaxScreenshotBytes)
	if !r.Valid() {
		return nil, validationErr(r)
	}

	driver, err := s.getDriver(ctx, in.DriverID)
	if err != nil {
		return nil, err
	}

	today := s.today()
	sod, eod, err := s.dayState(ctx, in.DriverID, today)
	if err != nil {
		return nil, err
	}
	decision := workflow.GateEndOfDay(*driver, workflow.DayState{
		HasStartOfDay: sod != nil,
		HasEndOfDay:   eod != nil,
	})
	if !decision.Allowed {
		return nil, gateErr(decision.Reason)
	}
	warnings := decision.Warnings

	var rr validate.Result
	rules.CheckLogDate(&rr, in.LogDate, s.now(), s.loc)
	if sod != nil {
		// Cross-check only when today's SOD exists; without it the count is
		// unverifiable and the gate already surfaced a warning.
		rules.CheckParcelDelivery(&rr, sod.ParcelCount, form.ParcelsDelivered)
		if rr.Valid() && form.ParcelsDelivered < sod.ParcelCount {
			warnings = append(warnings, fmt.Sprintf("%d parcels remain undelivered", sod.ParcelCount-form.ParcelsDelivered))
		}
	}
	if !rr.Valid() {
		return nil, validationErr(rr)
	}

	path, err := s.storeScreenshot(driver.ID, today, in.Screenshot)
	if err != nil {
		return nil, err
	}

	saved, err := s.logs.InsertEndOfDay(ctx, model.EndOfDayLog{
		DriverID:         driver.ID,
		LogDate:          today,
		ParcelsDelivered: form.ParcelsDelivered,
		ScreenshotPath:   path,
		IssuesReported:   form.IssuesReported,
	})
	if err != nil {
		if s.dupCheck(err) {
			var dup validate.Result
			dup.Fail("log_date", "end-of-day log already exists for today")
			return nil, validationErr(dup)
		}
		return nil, err
	}
	return &SubmitEndOfDayResult{Log: saved, Warnings: warnings}, nil
}

func (s *DayLogService) storeScreenshot(driverID uuid.UUID, date time.Time, up ScreenshotUpload) (string, error) {
	name := fmt.Sprintf("eod-%s%s", date.Format("2006-01-02"), extensionFor(up.ContentType))
	path, err := storage.ObjectPath(driverID, "screenshots", name)
	if err != nil {
		return "", err
	}
	return s.files.Upload(path, up.Content)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

type ReportIncidentInput struct {
	DriverID uuid.UUID
	Form     validate.IncidentInput
}

func (s *DayLogService) ReportIncident(ctx context.Context, in ReportIncidentInput) (*model.Incident, error) {
	form, r := validate.CheckIncident(in.Form, s.now())
	if !r.Valid() {
		return nil, validationErr(r)
	}

	driver, err := s.getDriver(ctx, in.DriverID)
	if err != nil {
		return nil, err
	}
	return s.logs.InsertIncident(ctx, model.Incident{
		DriverID:    driver.ID,
		OccurredAt:  form.OccurredAt,
		Severity:    form.Severity,
		Description: form.Description,
	})
}

// TodayStatus reports which daily logs exist for (driver, today).
type TodayStatus struct {
	Date       time.Time            `json:"date"`
	StartOfDay *model.StartOfDayLog `json:"start_of_day"`
	EndOfDay   *model.EndOfDayLog   `json:"end_of_day"`
}

func (s *DayLogService) TodayState(ctx context.Context, driverID uuid.UUID) (*TodayStatus, error) {
	today := s.today()
	sod, eod, err := s.dayState(ctx, driverID, today)
	if err != nil {
		return nil, err
	}
	return &TodayStatus{Date: today, StartOfDay: sod, EndOfDay: eod}, nil
}
