package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is a named grouping that users belong to.
// Names are unique across the store.
type Organization struct {
	OrgID       uuid.UUID // UUIDv7
	Name        string
	Description string
	Settings    map[string]any // Free-form, stored as JSONB
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewOrganization returns an active organization with a fresh UUIDv7 identifier.
func NewOrganization(name, description string) (*Organization, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Organization{
		OrgID:       id,
		Name:        name,
		Description: description,
		Settings:    map[string]any{},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
