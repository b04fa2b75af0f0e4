package model

import "github.com/google/uuid"

type Role string

const (
	RoleDriver Role = "DRIVER"
	RoleAdmin  Role = "ADMIN"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsDriver() bool {
	return p.Role == RoleDriver
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
