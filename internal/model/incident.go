package model

import (
	"time"

	"github.com/google/uuid"
)

type IncidentSeverity string

const (
	IncidentSeverityLow      IncidentSeverity = "LOW"
	IncidentSeverityMedium   IncidentSeverity = "MEDIUM"
	IncidentSeverityHigh     IncidentSeverity = "HIGH"
	IncidentSeverityCritical IncidentSeverity = "CRITICAL"
)

type Incident struct {
	ID          uuid.UUID
	DriverID    uuid.UUID
	OccurredAt  time.Time
	Severity    IncidentSeverity
	Description string
	PhotoPath   *string
	CreatedAt   time.Time
}
