// Package audit writes append-only audit records for identity changes.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
	"github.com/safenest/safenest/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Recorder appends audit records. It never retries; a failed write is returned
// to the caller, who owns the transaction boundary.
type Recorder struct {
	logs store.AuditLogStore
	now  func() time.Time
}

// NewRecorder creates a recorder writing to logs.
func NewRecorder(logs store.AuditLogStore) *Recorder {
	return &Recorder{
		logs: logs,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// OnUserCreated records the creation of user. It is called exactly once, right
// after the user is persisted, and joins the transaction carried on ctx if any.
func (r *Recorder) OnUserCreated(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("audit: nil user")
	}

	userID := user.UserID
	return r.Record(ctx, &models.AuditLog{
		UserID:         &userID,
		OrganizationID: cloneID(user.OrganizationID),
		Action:         models.AuditActionCreate,
		ModelName:      models.AuditModelUser,
		ObjectID:       user.UserID.String(),
	})
}

// Record fills in the identifier and timestamp of entry and appends it.
// Store failures are returned as *store.PersistenceError.
func (r *Recorder) Record(ctx context.Context, entry *models.AuditLog) error {
	ctx, span := telemetry.Tracer().Start(ctx, "audit.Record", trace.WithAttributes(
		attribute.String("audit.action", entry.Action),
		attribute.String("audit.model", entry.ModelName),
		attribute.String("audit.object_id", entry.ObjectID),
	))
	defer span.End()

	m := telemetry.GetMetrics()
	attrs := metric.WithAttributes(
		attribute.String("action", entry.Action),
		attribute.String("model", entry.ModelName),
	)

	if entry.AuditID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		entry.AuditID = id
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}

	if err := r.logs.Create(ctx, entry); err != nil {
		m.AuditFailuresTotal.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, "write audit record")
		return store.Persistence("create audit log", err)
	}

	m.AuditRecordsTotal.Add(ctx, 1, attrs)

	zerolog.Ctx(ctx).Debug().
		Str("audit_id", entry.AuditID.String()).
		Str("action", entry.Action).
		Str("model", entry.ModelName).
		Str("object_id", entry.ObjectID).
		Msg("Recorded audit log")

	return nil
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
