package store

import (
	"context"

	"github.com/safenest/safenest/internal/models"
)

// AuditLogStore appends and reads audit records. Audit rows are never updated
// or deleted.
type AuditLogStore interface {
	// Create appends an audit record.
	Create(ctx context.Context, entry *models.AuditLog) error

	// List returns audit records matching opts, newest first.
	List(ctx context.Context, opts ListAuditLogsOptions) ([]*models.AuditLog, error)
}

// ListAuditLogsOptions specifies filters for listing audit records
type ListAuditLogsOptions struct {
	ModelName string // Filter by model (empty = all)
	ObjectID  string // Filter by object ID (empty = all)
	Limit     int    // Max results (0 = default)
}

// DefaultAuditListLimit is applied when ListAuditLogsOptions.Limit is zero.
const DefaultAuditListLimit = 100
