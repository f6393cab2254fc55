package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions.
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

// Audited model names.
const (
	AuditModelUser         = "User"
	AuditModelOrganization = "Organization"
)

// AuditLog is an append-only record of a significant state change.
type AuditLog struct {
	AuditID        uuid.UUID  // UUIDv7
	UserID         *uuid.UUID // Acting or affected user, nil for system actions
	OrganizationID *uuid.UUID // Organization at the time of the change
	Action         string     // "create", "update", "delete"
	ModelName      string     // "User", "Organization"
	ObjectID       string     // String form of the affected entity's identifier
	CreatedAt      time.Time
}
