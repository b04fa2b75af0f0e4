package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driveops/driveops/internal/model"
)

type DayLogRepository struct {
	db *gorm.DB
}

func NewDayLogRepository(db *gorm.DB) *DayLogRepository {
	return &DayLogRepository{db: db}
}

const sodColumns = `
	id, driver_id, vehicle_id, log_date, parcel_count, starting_mileage,
	van_confirmed, vehicle_check_completed, notes, created_at
`

func (r *DayLogRepository) InsertStartOfDay(ctx context.Context, log model.StartOfDayLog) (*model.StartOfDayLog, error) {
	var saved model.StartOfDayLog
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO start_of_day_logs (
			driver_id, vehicle_id, log_date, parcel_count, starting_mileage,
			van_confirmed, vehicle_check_completed, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+sodColumns+`
	`,
		log.DriverID,
		log.VehicleID,
		log.LogDate,
		log.ParcelCount,
		log.StartingMileage,
		log.VanConfirmed,
		log.VehicleCheckCompleted,
		log.Notes,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *DayLogRepository) InsertEndOfDay(ctx context.Context, log model.EndOfDayLog) (*model.EndOfDayLog, error) {
	var saved model.EndOfDayLog
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO end_of_day_logs (
			driver_id, log_date, parcels_delivered, screenshot_path, issues_reported
		) VALUES (?, ?, ?, ?, ?)
		RETURNING id, driver_id, log_date, parcels_delivered, screenshot_path, issues_reported, created_at
	`,
		log.DriverID,
		log.LogDate,
		log.ParcelsDelivered,
		log.ScreenshotPath,
		log.IssuesReported,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *DayLogRepository) FindStartOfDay(ctx context.Context, driverID uuid.UUID, date time.Time) (*model.StartOfDayLog, error) {
	var log model.StartOfDayLog
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+sodColumns+`
		FROM start_of_day_logs
		WHERE driver_id = ? AND log_date = ?
		LIMIT 1
	`, driverID, date).Scan(&log).Error; err != nil {
		return nil, err
	}
	if log.ID == uuid.Nil {
		return nil, nil
	}
	return &log, nil
}

func (r *DayLogRepository) FindEndOfDay(ctx context.Context, driverID uuid.UUID, date time.Time) (*model.EndOfDayLog, error) {
	var log model.EndOfDayLog
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, driver_id, log_date, parcels_delivered, screenshot_path, issues_reported, created_at
		FROM end_of_day_logs
		WHERE driver_id = ? AND log_date = ?
		LIMIT 1
	`, driverID, date).Scan(&log).Error; err != nil {
		return nil, err
	}
	if log.ID == uuid.Nil {
		return nil, nil
	}
	return &log, nil
}

func (r *DayLogRepository) FindStartOfDayByVehicle(ctx context.Context, vehicleID uuid.UUID, date time.Time) (*model.StartOfDayLog, error) {
	var log model.StartOfDayLog
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+sodColumns+`
		FROM start_of_day_logs
		WHERE vehicle_id = ? AND log_date = ?
		LIMIT 1
	`, vehicleID, date).Scan(&log).Error; err != nil {
		return nil, err
	}
	if log.ID == uuid.Nil {
		return nil, nil
	}
	return &log, nil
}

func (r *DayLogRepository) InsertIncident(ctx context.Context, incident model.Incident) (*model.Incident, error) {
	var saved model.Incident
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO incidents (driver_id, occurred_at, severity, description, photo_path)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, driver_id, occurred_at, severity, description, photo_path, created_at
	`,
		incident.DriverID,
		incident.OccurredAt,
		incident.Severity,
		incident.Description,
		incident.PhotoPath,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
