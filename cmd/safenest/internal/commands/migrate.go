package commands

import (
	"context"
	"fmt"

	"github.com/safenest/safenest/internal/store/postgres"
)

type MigrateCmd struct {
	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, stop := globals.start(ctx, "migrate")
	defer stop()

	c.Postgres.AutoMigrate = false
	db, err := c.Postgres.open(ctx)
	if err != nil {
		return failed(ctx, err, "failed to connect")
	}
	defer db.Close()

	if err := postgres.RunMigrations(ctx, db.Pool); err != nil {
		return failed(ctx, err, "failed to migrate")
	}

	fmt.Println("migrations applied")
	return nil
}
