package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/driveops/driveops/internal/model"
)

type DriverRepository struct {
	db *gorm.DB
}

func NewDriverRepository(db *gorm.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// IsDuplicate reports whether err is a uniqueness-constraint violation. The
// advisory pre-checks in the rules package do not replace the store's unique
// indexes; a violation surfacing here is the authoritative duplicate signal.
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "sqlstate 23505")
}

const driverColumns = `
	id, email, password_hash, first_name, last_name, phone, status,
	assigned_vehicle_id, requires_onboarding, first_login_completed,
	license_number, license_expiry, license_doc_path, insurance_doc_path,
	created_at, updated_at
`

func (r *DriverRepository) GetDriver(ctx context.Context, id uuid.UUID) (*model.Driver, error) {
	var d model.Driver
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+driverColumns+`
		FROM drivers
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&d).Error; err != nil {
		return nil, err
	}
	if d.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (r *DriverRepository) GetDriverByEmail(ctx context.Context, email string) (*model.Driver, error) {
	var d model.Driver
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+driverColumns+`
		FROM drivers
		WHERE email = ?
		LIMIT 1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&d).Error; err != nil {
		return nil, err
	}
	if d.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

// CreateInvitedDriver inserts the driver shell and its invitation in one
// transaction. The driver starts in INVITED with onboarding outstanding.
func (r *DriverRepository) CreateInvitedDriver(ctx context.Context, d model.Driver, invitedBy uuid.UUID) (*model.Driver, *model.Invitation, error) {
	var saved model.Driver
	var inv model.Invitation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw(`
			INSERT INTO drivers (
				email, password_hash, first_name, last_name, status,
				requires_onboarding, first_login_completed
			) VALUES (?, ?, ?, ?, ?, TRUE, FALSE)
			RETURNING `+driverColumns+`
		`, d.Email, d.PasswordHash, d.FirstName, d.LastName, model.DriverStatusInvited).Scan(&saved).Error; err != nil {
			return err
		}
		return tx.Raw(`
			INSERT INTO invitations (email, first_name, last_name, driver_id, invited_by)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id, email, first_name, last_name, driver_id, invited_by, created_at
		`, d.Email, d.FirstName, d.LastName, saved.ID, invitedBy).Scan(&inv).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return &saved, &inv, nil
}

func (r *DriverRepository) GetInvitation(ctx context.Context, id uuid.UUID) (*model.Invitation, error) {
	var inv model.Invitation
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, email, first_name, last_name, driver_id, invited_by, created_at
		FROM invitations
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&inv).Error; err != nil {
		return nil, err
	}
	if inv.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &inv, nil
}

func (r *DriverRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DriverStatus) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE drivers
		SET status = ?, updated_at = NOW()
		WHERE id = ?
	`, status, id).Error
}

// SaveOnboarding records the onboarding form and clears the outstanding flag.
func (r *DriverRepository) SaveOnboarding(ctx context.Context, id uuid.UUID, ob model.Driver) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE drivers
		SET first_name = ?,
			last_name = ?,
			phone = ?,
			license_number = ?,
			license_expiry = ?,
			requires_onboarding = FALSE,
			updated_at = NOW()
		WHERE id = ?
	`, ob.FirstName, ob.LastName, ob.Phone, ob.LicenseNumber, ob.LicenseExpiry, id).Error
}

func (r *DriverRepository) SetFirstLoginCompleted(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE drivers
		SET first_login_completed = TRUE, updated_at = NOW()
		WHERE id = ?
	`, id).Error
}

func (r *DriverRepository) SetDocumentPath(ctx context.Context, id uuid.UUID, column, path string) error {
	if column != "license_doc_path" && column != "insurance_doc_path" {
		return gorm.ErrInvalidField
	}
	return r.db.WithContext(ctx).Exec(`
		UPDATE drivers
		SET `+column+` = ?, updated_at = NOW()
		WHERE id = ?
	`, path, id).Error
}

func (r *DriverRepository) GetVehicle(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var v model.Vehicle
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, registration, make, model, assigned_driver_id, is_active, created_at, updated_at
		FROM vehicles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&v).Error; err != nil {
		return nil, err
	}
	if v.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

// AssignVehicle links the driver and vehicle in one transaction. The guarded
// UPDATE refuses a vehicle already held by a different driver; clearing the
// previous assignment is a separate administrative step.
func (r *DriverRepository) AssignVehicle(ctx context.Context, driverID, vehicleID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(`
			UPDATE vehicles
			SET assigned_driver_id = ?, updated_at = NOW()
			WHERE id = ?
				AND is_active = TRUE
				AND (assigned_driver_id IS NULL OR assigned_driver_id = ?)
		`, driverID, vehicleID, driverID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Exec(`
			UPDATE drivers
			SET assigned_vehicle_id = ?, updated_at = NOW()
			WHERE id = ?
		`, vehicleID, driverID).Error
	})
}

func (r *DriverRepository) UnassignVehicle(ctx context.Context, driverID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`
			UPDATE vehicles
			SET assigned_driver_id = NULL, updated_at = NOW()
			WHERE assigned_driver_id = ?
		`, driverID).Error; err != nil {
			return err
		}
		return tx.Exec(`
			UPDATE drivers
			SET assigned_vehicle_id = NULL, updated_at = NOW()
			WHERE id = ?
		`, driverID).Error
	})
}
