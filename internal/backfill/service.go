// Package backfill assigns a default organization to users that have none.
package backfill

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
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

// Defaults used by the admin command when no flags are given.
const (
	DefaultOrganizationName        = "Default Organization"
	DefaultOrganizationDescription = "Default organization for existing users"
)

// ErrInvalidName is returned when the default organization name is empty.
var ErrInvalidName = errors.New("default organization name is required")

// Assignment records one user that received the default organization.
type Assignment struct {
	UserID   uuid.UUID
	Username string
}

// Result reports the outcome of a backfill run.
type Result struct {
	Updated             int
	OrganizationID      uuid.UUID
	OrganizationName    string
	OrganizationCreated bool
	Assignments         []Assignment
}

// Service is the organization backfill service.
type Service struct {
	orgs  store.OrganizationStore
	users store.UserStore
	tx    store.Transactor

	newBackOff  func() backoff.BackOff
	maxAttempts uint
}

// Option configures a Service.
type Option func(*Service)

// WithLookupBackOff sets the backoff used when organization creation loses a
// uniqueness race and the lookup is retried.
func WithLookupBackOff(newBackOff func() backoff.BackOff, maxAttempts uint) Option {
	return func(s *Service) {
		s.newBackOff = newBackOff
		s.maxAttempts = maxAttempts
	}
}

// NewService creates a backfill service over the given stores.
func NewService(stores store.Stores, opts ...Option) *Service {
	s := &Service{
		orgs:  stores.Organizations,
		users: stores.Users,
		tx:    stores.Tx,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 50 * time.Millisecond
			b.MaxInterval = time.Second
			return b
		},
		maxAttempts: 5,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// BackfillDefaultOrganization gets or creates the organization called name and
// assigns it to every user whose organization is null. Running it again with the
// same name updates nobody.
//
// Store failures are returned as *store.PersistenceError.
func (s *Service) BackfillDefaultOrganization(ctx context.Context, name, description string) (*Result, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}

	ctx, span := telemetry.Tracer().Start(ctx, "backfill.BackfillDefaultOrganization",
		trace.WithAttributes(attribute.String("organization.name", name)))
	defer span.End()

	started := time.Now()
	m := telemetry.GetMetrics()
	m.BackfillRunsTotal.Add(ctx, 1)

	logger := zerolog.Ctx(ctx)

	org, created, err := s.ensureOrganization(ctx, name, description)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ensure organization")
		return nil, store.Persistence("ensure default organization", err)
	}

	if created {
		m.OrganizationsCreatedTotal.Add(ctx, 1)
		logger.Info().
			Str("org_id", org.OrgID.String()).
			Str("name", org.Name).
			Msg("Created default organization")
	}

	var assignments []Assignment
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		assignments = nil

		users, err := s.users.ListWithoutOrganization(ctx)
		if err != nil {
			return err
		}

		for _, user := range users {
			updated, err := s.users.AssignOrganization(ctx, user.UserID, org.OrgID)
			if err != nil {
				return err
			}
			if !updated {
				// assigned by a concurrent run since the listing
				continue
			}
			assignments = append(assignments, Assignment{UserID: user.UserID, Username: user.Username})
		}

		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assign users")
		return nil, store.Persistence("assign default organization", err)
	}

	for _, a := range assignments {
		logger.Info().
			Str("user_id", a.UserID.String()).
			Str("username", a.Username).
			Str("org_id", org.OrgID.String()).
			Msg("Assigned default organization")
	}

	result := &Result{
		Updated:             len(assignments),
		OrganizationID:      org.OrgID,
		OrganizationName:    org.Name,
		OrganizationCreated: created,
		Assignments:         assignments,
	}

	m.UsersBackfilledTotal.Add(ctx, int64(result.Updated))
	m.BackfillDuration.Record(ctx, float64(time.Since(started).Milliseconds()),
		metric.WithAttributes(attribute.Bool("organization.created", created)))
	span.SetAttributes(
		attribute.String("organization.id", org.OrgID.String()),
		attribute.Int("users.updated", result.Updated),
	)

	logger.Info().
		Int("updated", result.Updated).
		Str("org_id", org.OrgID.String()).
		Dur("duration", time.Since(started)).
		Msg("Backfill complete")

	return result, nil
}

type ensured struct {
	org     *models.Organization
	created bool
}

// ensureOrganization looks the organization up by name and creates it when
// absent. A create that loses the race to another caller retries the lookup.
func (s *Service) ensureOrganization(ctx context.Context, name, description string) (*models.Organization, bool, error) {
	op := func() (ensured, error) {
		org, err := s.orgs.GetByName(ctx, name)
		if err == nil {
			return ensured{org: org}, nil
		}
		if !errors.Is(err, store.ErrOrganizationNotFound) {
			return ensured{}, backoff.Permanent(err)
		}

		org, err = models.NewOrganization(name, description)
		if err != nil {
			return ensured{}, backoff.Permanent(err)
		}

		err = s.orgs.Create(ctx, org)
		switch {
		case err == nil:
			return ensured{org: org, created: true}, nil
		case errors.Is(err, store.ErrOrganizationAlreadyExists):
			return ensured{}, err
		default:
			return ensured{}, backoff.Permanent(err)
		}
	}

	res, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(s.newBackOff()),
		backoff.WithMaxTries(s.maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			zerolog.Ctx(ctx).Debug().Err(err).Dur("retry_in", next).Str("name", name).
				Msg("Default organization created concurrently, retrying lookup")
		}),
	)
	if err != nil {
		return nil, false, err
	}

	return res.org, res.created, nil
}
