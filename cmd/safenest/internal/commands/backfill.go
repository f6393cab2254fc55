package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/safenest/safenest/internal/backfill"
)

type BackfillCmd struct {
	Name        string        `help:"name of the default organization" default:"Default Organization" env:"SAFENEST_DEFAULT_ORG_NAME"`
	Description string        `help:"description used if the organization has to be created" default:"Default organization for existing users" env:"SAFENEST_DEFAULT_ORG_DESCRIPTION"`
	Postgres    PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *BackfillCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, stop := globals.start(ctx, "backfill")
	defer stop()

	db, err := c.Postgres.open(ctx)
	if err != nil {
		return failed(ctx, err, "failed to connect")
	}
	defer db.Close()

	result, err := backfill.NewService(db.Stores()).BackfillDefaultOrganization(ctx, c.Name, c.Description)
	if err != nil {
		return failed(ctx, err, "backfill failed")
	}

	printBackfillResult(os.Stdout, result)
	return nil
}

func printBackfillResult(w io.Writer, result *backfill.Result) {
	for _, a := range result.Assignments {
		fmt.Fprintf(w, "assigned %s (%s) to %s\n", a.Username, a.UserID, result.OrganizationName)
	}

	created := ""
	if result.OrganizationCreated {
		created = " (created)"
	}
	fmt.Fprintf(w, "updated=%d organization=%s%s\n", result.Updated, result.OrganizationID, created)
}
