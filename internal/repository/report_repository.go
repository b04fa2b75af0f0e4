package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/driveops/driveops/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// ListDayLogRows joins each SOD in the period with its matching EOD, one row
// per (driver, date). to is exclusive.
func (r *ReportRepository) ListDayLogRows(ctx context.Context, from, to time.Time) ([]model.DayLogRow, error) {
	var rows []model.DayLogRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT
			s.driver_id,
			d.first_name || ' ' || d.last_name AS driver_name,
			s.log_date,
			s.parcel_count,
			s.starting_mileage,
			e.parcels_delivered,
			e.issues_reported
		FROM start_of_day_logs s
		JOIN drivers d ON d.id = s.driver_id
		LEFT JOIN end_of_day_logs e
			ON e.driver_id = s.driver_id AND e.log_date = s.log_date
		WHERE s.log_date >= ? AND s.log_date < ?
		ORDER BY s.log_date ASC, driver_name ASC
	`, from, to).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
