package model

import (
	"time"

	"github.com/google/uuid"
)

type Invitation struct {
	ID        uuid.UUID
	Email     string
	FirstName string
	LastName  string
	DriverID  uuid.UUID
	InvitedBy uuid.UUID
	CreatedAt time.Time
}
