package db

import (
	"fmt"

	"gorm.io/gorm"
)

// The unique indexes on (driver_id, log_date) are load-bearing: the advisory
// duplicate pre-checks in the rules package only provide a fast UX hint, the
// store constraint is the authoritative duplicate signal.
var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'driver_status') THEN
			CREATE TYPE driver_status AS ENUM (
				'INVITED', 'PENDING', 'ACTIVE', 'INACTIVE',
				'SUSPENDED', 'TERMINATED', 'CANCELLED', 'REJECTED'
			);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'incident_severity') THEN
			CREATE TYPE incident_severity AS ENUM ('LOW', 'MEDIUM', 'HIGH', 'CRITICAL');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		registration VARCHAR(16) NOT NULL,
		make VARCHAR(64) NOT NULL DEFAULT '',
		model VARCHAR(64) NOT NULL DEFAULT '',
		assigned_driver_id UUID,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_vehicle_registration ON vehicles (registration);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_vehicle_assigned_driver
		ON vehicles (assigned_driver_id) WHERE assigned_driver_id IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL DEFAULT '',
		first_name VARCHAR(64) NOT NULL,
		last_name VARCHAR(64) NOT NULL,
		phone VARCHAR(32),
		status driver_status NOT NULL DEFAULT 'INVITED',
		assigned_vehicle_id UUID REFERENCES vehicles(id),
		requires_onboarding BOOLEAN NOT NULL DEFAULT TRUE,
		first_login_completed BOOLEAN NOT NULL DEFAULT FALSE,
		license_number VARCHAR(64),
		license_expiry DATE,
		license_doc_path TEXT,
		insurance_doc_path TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_driver_email ON drivers (email);`,
	`CREATE TABLE IF NOT EXISTS invitations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) NOT NULL,
		first_name VARCHAR(64) NOT NULL,
		last_name VARCHAR(64) NOT NULL,
		driver_id UUID NOT NULL REFERENCES drivers(id),
		invited_by UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS start_of_day_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		driver_id UUID NOT NULL REFERENCES drivers(id),
		vehicle_id UUID NOT NULL REFERENCES vehicles(id),
		log_date DATE NOT NULL,
		parcel_count INTEGER NOT NULL CHECK (parcel_count BETWEEN 0 AND 9999),
		starting_mileage INTEGER NOT NULL CHECK (starting_mileage BETWEEN 0 AND 999999),
		van_confirmed BOOLEAN NOT NULL,
		vehicle_check_completed BOOLEAN NOT NULL,
		notes VARCHAR(500) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_sod_driver_date ON start_of_day_logs (driver_id, log_date);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_sod_vehicle_date ON start_of_day_logs (vehicle_id, log_date);`,
	`CREATE TABLE IF NOT EXISTS end_of_day_logs (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		driver_id UUID NOT NULL REFERENCES drivers(id),
		log_date DATE NOT NULL,
		parcels_delivered INTEGER NOT NULL CHECK (parcels_delivered >= 0),
		screenshot_path TEXT NOT NULL,
		issues_reported VARCHAR(1000) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_eod_driver_date ON end_of_day_logs (driver_id, log_date);`,
	`CREATE TABLE IF NOT EXISTS incidents (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		driver_id UUID NOT NULL REFERENCES drivers(id),
		occurred_at TIMESTAMPTZ NOT NULL,
		severity incident_severity NOT NULL,
		description VARCHAR(1000) NOT NULL,
		photo_path TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_incidents_driver_id ON incidents (driver_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
