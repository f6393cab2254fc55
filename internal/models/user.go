package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an identity in SafeNest.
type User struct {
	UserID         uuid.UUID  // UUIDv7
	Username       string     // Unique
	Email          string
	OrganizationID *uuid.UUID // Nil until assigned, FK to organizations
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewUser returns a user with a fresh UUIDv7 identifier.
func NewUser(username, email string, orgID *uuid.UUID) (*User, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &User{
		UserID:         id,
		Username:       username,
		Email:          email,
		OrganizationID: orgID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// HasOrganization reports whether the user references an organization.
func (u *User) HasOrganization() bool {
	return u.OrganizationID != nil
}
