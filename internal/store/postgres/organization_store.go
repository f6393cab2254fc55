package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
)

const organizationColumns = `org_id, name, description, settings, is_active, created_at, updated_at`

// OrganizationStore implements store.OrganizationStore using PostgreSQL.
type OrganizationStore struct {
	pool *pgxpool.Pool
}

var _ store.OrganizationStore = (*OrganizationStore)(nil)

// NewOrganizationStore creates a new PostgreSQL-backed organization store.
// It shares the connection pool with other stores.
func NewOrganizationStore(pool *pgxpool.Pool) *OrganizationStore {
	return &OrganizationStore{
		pool: pool,
	}
}

// Create creates a new organization in the database.
func (s *OrganizationStore) Create(ctx context.Context, org *models.Organization) error {
	query := `
		INSERT INTO organizations (
			org_id, name, description, settings, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	settings := org.Settings
	if settings == nil {
		settings = map[string]any{}
	}

	_, err := conn(ctx, s.pool).Exec(ctx, query,
		org.OrgID,
		org.Name,
		org.Description,
		settings,
		org.IsActive,
		org.CreatedAt,
		org.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrOrganizationAlreadyExists
		}
		return store.Persistence("create organization", mapPostgresError(err))
	}

	log.Debug().
		Str("org_id", org.OrgID.String()).
		Str("name", org.Name).
		Msg("Created organization")

	return nil
}

// Get retrieves an organization by ID.
func (s *OrganizationStore) Get(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE org_id = $1`

	org, err := scanOrganization(conn(ctx, s.pool).QueryRow(ctx, query, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, store.Persistence("get organization", mapPostgresError(err))
	}

	return org, nil
}

// GetByName retrieves an organization by exact name.
func (s *OrganizationStore) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE name = $1`

	org, err := scanOrganization(conn(ctx, s.pool).QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrOrganizationNotFound
		}
		return nil, store.Persistence("get organization by name", mapPostgresError(err))
	}

	return org, nil
}

// List returns all organizations ordered by name.
func (s *OrganizationStore) List(ctx context.Context) ([]*models.Organization, error) {
	query := `SELECT ` + organizationColumns + ` FROM organizations ORDER BY name`

	rows, err := conn(ctx, s.pool).Query(ctx, query)
	if err != nil {
		return nil, store.Persistence("list organizations", mapPostgresError(err))
	}
	defer rows.Close()

	var orgs []*models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, store.Persistence("list organizations", fmt.Errorf("failed to scan organization: %w", err))
		}
		orgs = append(orgs, org)
	}

	if err := rows.Err(); err != nil {
		return nil, store.Persistence("list organizations", mapPostgresError(err))
	}

	return orgs, nil
}

func scanOrganization(row pgx.Row) (*models.Organization, error) {
	var org models.Organization
	err := row.Scan(
		&org.OrgID,
		&org.Name,
		&org.Description,
		&org.Settings,
		&org.IsActive,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if org.Settings == nil {
		org.Settings = map[string]any{}
	}

	return &org, nil
}
