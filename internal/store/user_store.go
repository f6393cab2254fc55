package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/safenest/safenest/internal/models"
)

// Sentinel errors for user store operations
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserStore defines the interface for user storage operations.
type UserStore interface {
	// Create creates a new user.
	// Returns ErrUserAlreadyExists if the ID or username is already taken.
	Create(ctx context.Context, user *models.User) error

	// Get retrieves a user by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	Get(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// GetByUsername retrieves a user by username.
	// Returns ErrUserNotFound if the user doesn't exist.
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// ListWithoutOrganization returns every user whose organization is null,
	// oldest first.
	ListWithoutOrganization(ctx context.Context) ([]*models.User, error)

	// AssignOrganization sets the user's organization only if it is currently null.
	// Returns false when the user already had an organization.
	// Returns ErrUserNotFound if the user doesn't exist.
	AssignOrganization(ctx context.Context, userID, orgID uuid.UUID) (bool, error)

	// List returns all users, oldest first.
	List(ctx context.Context) ([]*models.User, error)
}
