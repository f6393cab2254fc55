package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/safenest/safenest/cmd/safenest/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Debug   bool `help:"Enable debug mode." env:"SAFENEST_DEBUG"`
		Tracing bool `help:"Export traces and metrics over OTLP." env:"SAFENEST_TRACING"`
		Version kong.VersionFlag

		Migrate  commands.MigrateCmd  `cmd:"" help:"Apply pending database migrations"`
		Backfill commands.BackfillCmd `cmd:"" help:"Assign the default organization to users without one"`
		Users    commands.UsersCmd    `cmd:"" help:"Create and import users"`
		Audit    commands.AuditCmd    `cmd:"" help:"Inspect the audit trail"`
		Schema   commands.SchemaCmd   `cmd:"" help:"Print tables and columns of the database"`
		Reset    commands.ResetCmd    `cmd:"" help:"Delete all organizations, users and audit records"`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("safenest"),
		kong.Description("SafeNest identity administration."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Tracing: cli.Tracing, Version: version})
	cmd.FatalIfErrorf(err)
}
