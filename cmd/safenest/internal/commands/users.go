package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/safenest/safenest/internal/audit"
	"github.com/safenest/safenest/internal/identity"
	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
)

type UsersCmd struct {
	Create UsersCreateCmd `cmd:"" help:"Create a user (audited)"`
	Import UsersImportCmd `cmd:"" help:"Create users from a YAML or JSON file (audited)"`
}

// RegistrationFlags configures how user creation treats audit failures.
type RegistrationFlags struct {
	AuditFailurePolicy string `help:"strict rolls the user back when the audit write fails, lenient keeps it" default:"strict" enum:"strict,lenient" env:"SAFENEST_AUDIT_FAILURE_POLICY"`
}

func (f RegistrationFlags) registrar(stores store.Stores) (*identity.Registrar, error) {
	policy, err := identity.ParseFailurePolicy(f.AuditFailurePolicy)
	if err != nil {
		return nil, err
	}

	r := identity.NewRegistrar(stores, policy)
	r.Subscribe(audit.NewRecorder(stores.AuditLogs))
	return r, nil
}

type UsersCreateCmd struct {
	Username     string            `arg:"" help:"unique username"`
	Email        string            `arg:"" optional:"" help:"email address"`
	Organization string            `help:"name of an existing organization" default:""`
	Registration RegistrationFlags `embed:""`
	Postgres     PostgresFlags     `embed:"" prefix:"postgres-"`
}

func (c *UsersCreateCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, stop := globals.start(ctx, "users create")
	defer stop()

	db, err := c.Postgres.open(ctx)
	if err != nil {
		return failed(ctx, err, "failed to connect")
	}
	defer db.Close()

	r, err := c.Registration.registrar(db.Stores())
	if err != nil {
		return err
	}

	user, err := r.CreateUser(ctx, identity.NewUser{
		Username:     c.Username,
		Email:        c.Email,
		Organization: c.Organization,
	})
	if err != nil {
		return failed(ctx, err, "failed to create user")
	}

	printUser(os.Stdout, user)
	return nil
}

type UsersImportCmd struct {
	File         string            `arg:"" type:"existingfile" help:"YAML or JSON file with a top level users list"`
	Registration RegistrationFlags `embed:""`
	Postgres     PostgresFlags     `embed:"" prefix:"postgres-"`
}

func (c *UsersImportCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, stop := globals.start(ctx, "users import")
	defer stop()

	users, err := identity.LoadImportFile(c.File)
	if err != nil {
		return failed(ctx, err, "failed to load import file")
	}

	db, err := c.Postgres.open(ctx)
	if err != nil {
		return failed(ctx, err, "failed to connect")
	}
	defer db.Close()

	r, err := c.Registration.registrar(db.Stores())
	if err != nil {
		return err
	}

	result, err := r.ImportUsers(ctx, users)
	for _, user := range result.Created {
		printUser(os.Stdout, user)
	}
	for _, username := range result.Skipped {
		fmt.Printf("skipped %s (already exists)\n", username)
	}
	if err != nil {
		return failed(ctx, err, "import stopped")
	}

	fmt.Printf("created=%d skipped=%d\n", len(result.Created), len(result.Skipped))
	return nil
}

func printUser(w io.Writer, user *models.User) {
	org := "-"
	if user.OrganizationID != nil {
		org = user.OrganizationID.String()
	}
	fmt.Fprintf(w, "created %s id=%s organization=%s\n", user.Username, user.UserID, org)
}
