package memory

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
)

// OrganizationStore implements store.OrganizationStore using in-memory storage.
type OrganizationStore struct {
	db *DB
}

var _ store.OrganizationStore = (*OrganizationStore)(nil)

// Create creates a new organization in memory.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.organizations[org.OrgID]; exists {
		return store.ErrOrganizationAlreadyExists
	}
	if _, exists := s.db.orgsByName[org.Name]; exists {
		return store.ErrOrganizationAlreadyExists
	}

	clone := cloneOrganization(org)
	s.db.organizations[org.OrgID] = clone
	s.db.orgsByName[org.Name] = org.OrgID

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	org, exists := s.db.organizations[orgID]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	return cloneOrganization(org), nil
}

// GetByName retrieves an organization by exact name.
func (s *OrganizationStore) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	orgID, exists := s.db.orgsByName[name]
	if !exists {
		return nil, store.ErrOrganizationNotFound
	}

	return cloneOrganization(s.db.organizations[orgID]), nil
}

// List returns all organizations ordered by name.
func (s *OrganizationStore) List(ctx context.Context) ([]*models.Organization, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	result := make([]*models.Organization, 0, len(s.db.organizations))
	for _, org := range s.db.organizations {
		result = append(result, cloneOrganization(org))
	}

	slices.SortFunc(result, func(a, b *models.Organization) int {
		return strings.Compare(a.Name, b.Name)
	})

	return result, nil
}

func cloneOrganization(org *models.Organization) *models.Organization {
	clone := *org
	clone.Settings = maps.Clone(org.Settings)
	if clone.Settings == nil {
		clone.Settings = map[string]any{}
	}
	return &clone
}
