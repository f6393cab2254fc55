// Package identity creates users and notifies subscribers once a user exists.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
)

// FailurePolicy decides what a failing user-created listener does to the user
// that triggered it.
type FailurePolicy string

const (
	// FailurePolicyStrict runs listeners inside the user's transaction; a
	// listener error rolls the user back.
	FailurePolicyStrict FailurePolicy = "strict"

	// FailurePolicyLenient commits the user first; listener errors are logged
	// and dropped.
	FailurePolicyLenient FailurePolicy = "lenient"
)

// ParseFailurePolicy parses "strict" or "lenient".
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case FailurePolicyStrict, FailurePolicyLenient:
		return p, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want strict or lenient)", s)
	}
}

// UserCreatedListener is notified synchronously, exactly once, after a user is created.
type UserCreatedListener interface {
	OnUserCreated(ctx context.Context, user *models.User) error
}

// UserCreatedFunc adapts a function to UserCreatedListener.
type UserCreatedFunc func(ctx context.Context, user *models.User) error

func (f UserCreatedFunc) OnUserCreated(ctx context.Context, user *models.User) error {
	return f(ctx, user)
}

// NewUser is the input to CreateUser. Organization is an optional organization name.
type NewUser struct {
	Username     string `yaml:"username" json:"username" validate:"required,max=150"`
	Email        string `yaml:"email" json:"email" validate:"omitempty,email,max=254"`
	Organization string `yaml:"organization" json:"organization" validate:"omitempty,max=255"`
}

// ErrInvalidUser is returned when a NewUser fails validation.
var ErrInvalidUser = errors.New("invalid user")

// Registrar creates users.
type Registrar struct {
	stores    store.Stores
	policy    FailurePolicy
	validate  *validator.Validate
	listeners []UserCreatedListener
}

// NewRegistrar creates a registrar. An empty policy means FailurePolicyStrict.
func NewRegistrar(stores store.Stores, policy FailurePolicy) *Registrar {
	if policy == "" {
		policy = FailurePolicyStrict
	}
	return &Registrar{
		stores:   stores,
		policy:   policy,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Subscribe adds a listener. Listeners run in subscription order.
func (r *Registrar) Subscribe(l UserCreatedListener) {
	r.listeners = append(r.listeners, l)
}

// CreateUser validates in, resolves its organization by name and persists the
// user, then notifies every listener according to the failure policy.
func (r *Registrar) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Organization = strings.TrimSpace(in.Organization)

	if err := r.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidUser, describeValidation(err))
	}

	var created *models.User
	err := r.stores.Tx.InTx(ctx, func(ctx context.Context) error {
		var orgID *uuid.UUID
		if in.Organization != "" {
			org, err := r.stores.Organizations.GetByName(ctx, in.Organization)
			if err != nil {
				return fmt.Errorf("organization %q: %w", in.Organization, err)
			}
			orgID = &org.OrgID
		}

		user, err := models.NewUser(in.Username, in.Email, orgID)
		if err != nil {
			return err
		}

		if err := r.stores.Users.Create(ctx, user); err != nil {
			return err
		}

		if r.policy == FailurePolicyStrict {
			if err := r.notify(ctx, user); err != nil {
				return err
			}
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("user_id", created.UserID.String()).
		Str("username", created.Username).
		Msg("Created user")

	if r.policy == FailurePolicyLenient {
		if err := r.notify(ctx, created); err != nil {
			logger.Error().Err(err).
				Str("user_id", created.UserID.String()).
				Msg("User created listener failed, user kept")
		}
	}

	return created, nil
}

func (r *Registrar) notify(ctx context.Context, user *models.User) error {
	for _, l := range r.listeners {
		if err := l.OnUserCreated(ctx, user); err != nil {
			return fmt.Errorf("user created listener: %w", err)
		}
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
