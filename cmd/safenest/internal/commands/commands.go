package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/safenest/safenest/internal/logger"
	"github.com/safenest/safenest/internal/store/postgres"
	"github.com/safenest/safenest/internal/telemetry"
)

type Globals struct {
	Debug   bool
	Tracing bool
	Version string
}

// PostgresFlags configures the database connection shared by every command.
type PostgresFlags struct {
	ConnString     string `help:"PostgreSQL connection string" env:"POSTGRES_CONNECTION_STRING"`
	MaxConns       int32  `help:"maximum number of connections in pool" default:"4"`
	MinConns       int32  `help:"minimum number of connections in pool" default:"1"`
	ConnectTimeout int32  `help:"connect timeout in seconds" default:"10"`
	AutoMigrate    bool   `help:"apply pending migrations before running the command" default:"false" env:"SAFENEST_POSTGRES_AUTO_MIGRATE"`
}

func (p *PostgresFlags) Validate() error {
	if p.ConnString == "" {
		return errors.New("PostgreSQL connection string is required (--postgres-conn-string or POSTGRES_CONNECTION_STRING)")
	}
	return nil
}

func (p *PostgresFlags) open(ctx context.Context) (*postgres.DB, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	return postgres.Open(ctx, &postgres.PoolConfig{
		ConnString:     p.ConnString,
		MaxConns:       p.MaxConns,
		MinConns:       p.MinConns,
		ConnectTimeout: p.ConnectTimeout,
	}, p.AutoMigrate)
}

// start sets up logging and, when enabled, telemetry for one command. The
// returned stop function flushes telemetry and must be deferred.
func (g *Globals) start(ctx context.Context, command string) (context.Context, func()) {
	log := logger.Setup(g.Debug)
	ctx = logger.WithCommand(ctx, log, command)

	log.Debug().Str("version", g.Version).Str("command", command).Msg("Starting")

	if !g.Tracing {
		return ctx, func() {}
	}

	shutdown, err := telemetry.Init(ctx, "safenest-admin", g.Version)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
		return ctx, func() {}
	}

	return ctx, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}

// failed logs err against the command and returns it so kong exits non-zero.
func failed(ctx context.Context, err error, msg string) error {
	zerolog.Ctx(ctx).Error().Err(err).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}
