package memory

import (
	"context"

	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
)

// AuditLogStore implements store.AuditLogStore using in-memory storage.
type AuditLogStore struct {
	db *DB
}

var _ store.AuditLogStore = (*AuditLogStore)(nil)

// Create appends an audit record.
func (s *AuditLogStore) Create(ctx context.Context, entry *models.AuditLog) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	clone := *entry
	s.db.auditLogs = append(s.db.auditLogs, &clone)

	return nil
}

// List returns audit records matching opts, newest first.
func (s *AuditLogStore) List(ctx context.Context, opts store.ListAuditLogsOptions) ([]*models.AuditLog, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	limit := opts.Limit
	if limit <= 0 {
		limit = store.DefaultAuditListLimit
	}

	var result []*models.AuditLog
	for i := len(s.db.auditLogs) - 1; i >= 0 && len(result) < limit; i-- {
		e := s.db.auditLogs[i]
		if opts.ModelName != "" && e.ModelName != opts.ModelName {
			continue
		}
		if opts.ObjectID != "" && e.ObjectID != opts.ObjectID {
			continue
		}
		clone := *e
		result = append(result, &clone)
	}

	return result, nil
}
