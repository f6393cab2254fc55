package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/safenest/safenest/internal/store/postgres"
)

type SchemaCmd struct {
	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *SchemaCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, stop := globals.start(ctx, "schema")
	defer stop()

	db, err := c.Postgres.open(ctx)
	if err != nil {
		return failed(ctx, err, "failed to connect")
	}
	defer db.Close()

	tables, err := postgres.Introspect(ctx, db.Pool)
	if err != nil {
		return failed(ctx, err, "failed to introspect schema")
	}

	printSchema(os.Stdout, tables)
	return nil
}

func printSchema(w io.Writer, tables []postgres.Table) {
	for _, t := range tables {
		fmt.Fprintf(w, "%s\n", t.Name)
		for _, col := range t.Columns {
			null := "NOT NULL"
			if col.Nullable {
				null = "NULL"
			}
			fmt.Fprintf(w, "  %-20s %-28s %s\n", col.Name, col.DataType, null)
		}
	}
}
