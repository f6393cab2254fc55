package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
)

// AuditLogStore implements store.AuditLogStore using PostgreSQL.
type AuditLogStore struct {
	pool *pgxpool.Pool
}

var _ store.AuditLogStore = (*AuditLogStore)(nil)

// NewAuditLogStore creates a new PostgreSQL-backed audit log store.
func NewAuditLogStore(pool *pgxpool.Pool) *AuditLogStore {
	return &AuditLogStore{
		pool: pool,
	}
}

// Create appends an audit record.
func (s *AuditLogStore) Create(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			audit_id, user_id, organization_id, action, model_name, object_id, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := conn(ctx, s.pool).Exec(ctx, query,
		entry.AuditID,
		entry.UserID,
		entry.OrganizationID,
		entry.Action,
		entry.ModelName,
		entry.ObjectID,
		entry.CreatedAt,
	)
	if err != nil {
		return store.Persistence("create audit log", mapPostgresError(err))
	}

	return nil
}

// List returns audit records matching opts, newest first.
func (s *AuditLogStore) List(ctx context.Context, opts store.ListAuditLogsOptions) ([]*models.AuditLog, error) {
	var (
		where []string
		args  []any
	)

	if opts.ModelName != "" {
		args = append(args, opts.ModelName)
		where = append(where, fmt.Sprintf("model_name = $%d", len(args)))
	}
	if opts.ObjectID != "" {
		args = append(args, opts.ObjectID)
		where = append(where, fmt.Sprintf("object_id = $%d", len(args)))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = store.DefaultAuditListLimit
	}

	query := `
		SELECT audit_id, user_id, organization_id, action, model_name, object_id, created_at
		FROM audit_logs
	`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC, audit_id DESC LIMIT $%d", len(args))

	rows, err := conn(ctx, s.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, store.Persistence("list audit logs", mapPostgresError(err))
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		var e models.AuditLog
		err := rows.Scan(
			&e.AuditID,
			&e.UserID,
			&e.OrganizationID,
			&e.Action,
			&e.ModelName,
			&e.ObjectID,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, store.Persistence("list audit logs", fmt.Errorf("failed to scan audit log: %w", err))
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, store.Persistence("list audit logs", mapPostgresError(err))
	}

	return entries, nil
}
