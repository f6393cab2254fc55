package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/safenest/safenest/internal/store/postgres"
)

type ResetCmd struct {
	Yes      bool          `help:"confirm deleting every organization, user and audit record" default:"false"`
	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *ResetCmd) Run(ctx context.Context, globals *Globals) error {
	if !c.Yes {
		return errors.New("refusing to reset without --yes")
	}

	ctx, stop := globals.start(ctx, "reset")
	defer stop()

	db, err := c.Postgres.open(ctx)
	if err != nil {
		return failed(ctx, err, "failed to connect")
	}
	defer db.Close()

	if err := postgres.Reset(ctx, db.Pool); err != nil {
		return failed(ctx, err, "failed to reset")
	}

	fmt.Println("organizations, users and audit records deleted")
	return nil
}
