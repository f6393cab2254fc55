package memory

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
)

// UserStore implements store.UserStore using in-memory storage.
type UserStore struct {
	db *DB
}

var _ store.UserStore = (*UserStore)(nil)

// Create creates a new user in memory.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.users[user.UserID]; exists {
		return store.ErrUserAlreadyExists
	}
	if _, exists := s.db.usersByName[user.Username]; exists {
		return store.ErrUserAlreadyExists
	}

	// Mirror the users_organization_id_fkey constraint
	if user.OrganizationID != nil {
		if _, exists := s.db.organizations[*user.OrganizationID]; !exists {
			return store.ErrOrganizationNotFound
		}
	}

	s.db.users[user.UserID] = cloneUser(user)
	s.db.usersByName[user.Username] = user.UserID

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	user, exists := s.db.users[userID]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	return cloneUser(user), nil
}

// GetByUsername retrieves a user by username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	userID, exists := s.db.usersByName[username]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	return cloneUser(s.db.users[userID]), nil
}

// ListWithoutOrganization returns every user with a nil organization, oldest first.
func (s *UserStore) ListWithoutOrganization(ctx context.Context) ([]*models.User, error) {
	return s.list(func(u *models.User) bool { return u.OrganizationID == nil }), nil
}

// List returns all users, oldest first.
func (s *UserStore) List(ctx context.Context) ([]*models.User, error) {
	return s.list(func(*models.User) bool { return true }), nil
}

// AssignOrganization sets the user's organization only while it is nil.
func (s *UserStore) AssignOrganization(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	user, exists := s.db.users[userID]
	if !exists {
		return false, store.ErrUserNotFound
	}
	if _, exists := s.db.organizations[orgID]; !exists {
		return false, store.ErrOrganizationNotFound
	}
	if user.OrganizationID != nil {
		return false, nil
	}

	// Replace rather than mutate so transaction snapshots stay intact
	updated := cloneUser(user)
	updated.OrganizationID = &orgID
	updated.UpdatedAt = time.Now().UTC()
	s.db.users[userID] = updated

	return true, nil
}

func (s *UserStore) list(keep func(*models.User) bool) []*models.User {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	var result []*models.User
	for _, u := range s.db.users {
		if keep(u) {
			result = append(result, cloneUser(u))
		}
	}

	slices.SortFunc(result, func(a, b *models.User) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.UserID[:], b.UserID[:])
	})

	return result
}

func cloneUser(user *models.User) *models.User {
	clone := *user
	if user.OrganizationID != nil {
		orgID := *user.OrganizationID
		clone.OrganizationID = &orgID
	}
	return &clone
}
