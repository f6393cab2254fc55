package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/safenest/safenest/internal/models"
)

// Sentinel errors for organization store operations
var (
	ErrOrganizationNotFound      = errors.New("organization not found")
	ErrOrganizationAlreadyExists = errors.New("organization already exists")
)

// OrganizationStore defines the interface for organization storage operations.
type OrganizationStore interface {
	// Create creates a new organization in the store.
	// Returns ErrOrganizationAlreadyExists if the ID or name is already taken.
	Create(ctx context.Context, org *models.Organization) error

	// Get retrieves an organization by ID.
	// Returns ErrOrganizationNotFound if the organization doesn't exist.
	Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error)

	// GetByName retrieves an organization by exact name.
	// Returns ErrOrganizationNotFound if no organization has that name.
	GetByName(ctx context.Context, name string) (*models.Organization, error)

	// List returns all organizations ordered by name.
	List(ctx context.Context) ([]*models.Organization, error)
}
