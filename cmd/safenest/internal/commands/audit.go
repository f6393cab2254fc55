package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
)

type AuditCmd struct {
	List AuditListCmd `cmd:"" help:"List audit records, newest first"`
}

type AuditListCmd struct {
	Model    string        `help:"filter by model name (e.g. User)" default:""`
	ObjectID string        `help:"filter by object id" default:""`
	Limit    int           `help:"maximum number of records" default:"100"`
	Postgres PostgresFlags `embed:"" prefix:"postgres-"`
}

func (c *AuditListCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, stop := globals.start(ctx, "audit list")
	defer stop()

	db, err := c.Postgres.open(ctx)
	if err != nil {
		return failed(ctx, err, "failed to connect")
	}
	defer db.Close()

	entries, err := db.Stores().AuditLogs.List(ctx, store.ListAuditLogsOptions{
		ModelName: c.Model,
		ObjectID:  c.ObjectID,
		Limit:     c.Limit,
	})
	if err != nil {
		return failed(ctx, err, "failed to list audit records")
	}

	return printAuditLogs(os.Stdout, entries)
}

func printAuditLogs(w io.Writer, entries []*models.AuditLog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tACTION\tMODEL\tOBJECT\tUSER\tORGANIZATION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format(time.RFC3339),
			e.Action,
			e.ModelName,
			e.ObjectID,
			idOrDash(e.UserID),
			idOrDash(e.OrganizationID),
		)
	}
	return tw.Flush()
}

func idOrDash(id *uuid.UUID) string {
	if id == nil {
		return "-"
	}
	return id.String()
}
