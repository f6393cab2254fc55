package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
)

const userColumns = `user_id, username, email, organization_id, created_at, updated_at`

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a new PostgreSQL-backed user store.
func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{
		pool: pool,
	}
}

// Create creates a new user in the database.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			user_id, username, email, organization_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
	`

	_, err := conn(ctx, s.pool).Exec(ctx, query,
		user.UserID,
		user.Username,
		user.Email,
		user.OrganizationID,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrUserAlreadyExists
		}
		return store.Persistence("create user", mapPostgresError(err))
	}

	log.Debug().
		Str("user_id", user.UserID.String()).
		Str("username", user.Username).
		Msg("Created user")

	return nil
}

// Get retrieves a user by ID.
func (s *UserStore) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := scanUser(conn(ctx, s.pool).QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, store.Persistence("get user", mapPostgresError(err))
	}

	return user, nil
}

// GetByUsername retrieves a user by username.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(conn(ctx, s.pool).QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, store.Persistence("get user by username", mapPostgresError(err))
	}

	return user, nil
}

// ListWithoutOrganization returns every user with a null organization, oldest first.
func (s *UserStore) ListWithoutOrganization(ctx context.Context) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE organization_id IS NULL
		ORDER BY created_at, user_id
	`
	return s.list(ctx, "list users without organization", query)
}

// List returns all users, oldest first.
func (s *UserStore) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, user_id`
	return s.list(ctx, "list users", query)
}

// AssignOrganization sets organization_id only while it is still NULL, so two
// concurrent backfills never overwrite each other or count the same user twice.
func (s *UserStore) AssignOrganization(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	query := `
		UPDATE users
		SET organization_id = $2, updated_at = $3
		WHERE user_id = $1 AND organization_id IS NULL
	`

	result, err := conn(ctx, s.pool).Exec(ctx, query, userID, orgID, time.Now().UTC())
	if err != nil {
		return false, store.Persistence("assign organization", mapPostgresError(err))
	}

	if result.RowsAffected() == 1 {
		return true, nil
	}

	// Distinguish "already assigned" from "no such user"
	var exists bool
	err = conn(ctx, s.pool).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, store.Persistence("assign organization", mapPostgresError(err))
	}
	if !exists {
		return false, store.ErrUserNotFound
	}

	return false, nil
}

func (s *UserStore) list(ctx context.Context, op, query string, args ...any) ([]*models.User, error) {
	rows, err := conn(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, store.Persistence(op, mapPostgresError(err))
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, store.Persistence(op, fmt.Errorf("failed to scan user: %w", err))
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, store.Persistence(op, mapPostgresError(err))
	}

	return users, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.UserID,
		&u.Username,
		&u.Email,
		&u.OrganizationID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
