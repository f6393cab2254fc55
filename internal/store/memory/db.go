package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"
	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
)

// DB is an in-memory database shared by the memory stores.
// This implementation is for testing only - data is lost on restart.
//
// Transactions are serialised against each other and rolled back by restoring
// a snapshot. They are not isolated from callers outside a transaction.
type DB struct {
	txMu sync.Mutex

	mu sync.RWMutex

	organizations map[uuid.UUID]*models.Organization // org_id -> Organization
	orgsByName    map[string]uuid.UUID               // name -> org_id
	users         map[uuid.UUID]*models.User         // user_id -> User
	usersByName   map[string]uuid.UUID               // username -> user_id
	auditLogs     []*models.AuditLog                 // append order
}

// NewDB creates an empty in-memory database.
func NewDB() *DB {
	return &DB{
		organizations: make(map[uuid.UUID]*models.Organization),
		orgsByName:    make(map[string]uuid.UUID),
		users:         make(map[uuid.UUID]*models.User),
		usersByName:   make(map[string]uuid.UUID),
	}
}

// Stores returns the identity stores backed by db.
func (db *DB) Stores() store.Stores {
	return store.Stores{
		Organizations: &OrganizationStore{db: db},
		Users:         &UserStore{db: db},
		AuditLogs:     &AuditLogStore{db: db},
		Tx:            db,
	}
}

type txKey struct{}

type snapshot struct {
	organizations map[uuid.UUID]*models.Organization
	orgsByName    map[string]uuid.UUID
	users         map[uuid.UUID]*models.User
	usersByName   map[string]uuid.UUID
	auditLogs     int
}

// InTx implements store.Transactor. A nested call joins the outer transaction.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	db.txMu.Lock()
	defer db.txMu.Unlock()

	snap := db.snapshot()

	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		db.restore(snap)
		return err
	}

	return nil
}

// snapshot copies the maps; stored records are never mutated in place so the
// pointers can be shared.
func (db *DB) snapshot() snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return snapshot{
		organizations: maps.Clone(db.organizations),
		orgsByName:    maps.Clone(db.orgsByName),
		users:         maps.Clone(db.users),
		usersByName:   maps.Clone(db.usersByName),
		auditLogs:     len(db.auditLogs),
	}
}

func (db *DB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.organizations = s.organizations
	db.orgsByName = s.orgsByName
	db.users = s.users
	db.usersByName = s.usersByName
	db.auditLogs = db.auditLogs[:s.auditLogs]
}
