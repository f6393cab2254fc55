package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/safenest/safenest/internal/store"
)

// DB bundles the connection pool with the stores built on it.
type DB struct {
	Pool *pgxpool.Pool
}

// Open creates the pool and, when migrate is set, applies pending migrations.
func Open(ctx context.Context, cfg *PoolConfig, migrate bool) (*DB, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, store.Persistence("connect", err)
	}

	if migrate {
		if err := RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, store.Persistence("migrate", err)
		}
	}

	return &DB{Pool: pool}, nil
}

// Stores returns the identity stores sharing this pool.
func (db *DB) Stores() store.Stores {
	return store.Stores{
		Organizations: NewOrganizationStore(db.Pool),
		Users:         NewUserStore(db.Pool),
		AuditLogs:     NewAuditLogStore(db.Pool),
		Tx:            NewTransactor(db.Pool),
	}
}

// Close closes the pool.
func (db *DB) Close() {
	db.Pool.Close()
}
