package model

import (
	"time"

	"github.com/google/uuid"
)

type Vehicle struct {
	ID               uuid.UUID
	Registration     string
	Make             string
	Model            string
	AssignedDriverID *uuid.UUID // at most one driver at a time
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
