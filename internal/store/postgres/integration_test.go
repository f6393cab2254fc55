//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/safenest/safenest/internal/audit"
	"github.com/safenest/safenest/internal/backfill"
	"github.com/safenest/safenest/internal/identity"
	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgresContainer(t *testing.T, ctx context.Context) (*DB, func()) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	db, err := Open(ctx, &PoolConfig{ConnString: connString, MaxConns: 10}, true)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		_ = container.Terminate(ctx)
	}

	return db, cleanup
}

func createUser(t *testing.T, ctx context.Context, stores store.Stores, username string, orgID *uuid.UUID) *models.User {
	t.Helper()
	user, err := models.NewUser(username, username+"@example.com", orgID)
	require.NoError(t, err)
	require.NoError(t, stores.Users.Create(ctx, user))
	return user
}

func TestIntegration_Migrations(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	t.Run("rerun is a no-op", func(t *testing.T) {
		require.NoError(t, RunMigrations(ctx, db.Pool))

		var count int
		err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM schema_migrations`).Scan(&count)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("introspect lists identity tables", func(t *testing.T) {
		tables, err := Introspect(ctx, db.Pool)
		require.NoError(t, err)

		columns := map[string][]string{}
		for _, table := range tables {
			for _, col := range table.Columns {
				columns[table.Name] = append(columns[table.Name], col.Name)
			}
		}

		require.Contains(t, columns, "organizations")
		require.Contains(t, columns["users"], "organization_id")
		require.Contains(t, columns["audit_logs"], "object_id")
		require.Contains(t, columns, "schema_migrations")
	})
}

func TestIntegration_Backfill(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	stores := db.Stores()
	svc := backfill.NewService(stores)

	t.Run("assigns users without organization", func(t *testing.T) {
		orgA, err := models.NewOrganization("OrgA", "")
		require.NoError(t, err)
		require.NoError(t, stores.Organizations.Create(ctx, orgA))

		alice := createUser(t, ctx, stores, "alice", nil)
		bob := createUser(t, ctx, stores, "bob", &orgA.OrgID)

		result, err := svc.BackfillDefaultOrganization(ctx, backfill.DefaultOrganizationName, backfill.DefaultOrganizationDescription)
		require.NoError(t, err)
		require.Equal(t, 1, result.Updated)
		require.True(t, result.OrganizationCreated)

		got, err := stores.Users.Get(ctx, alice.UserID)
		require.NoError(t, err)
		require.NotNil(t, got.OrganizationID)
		require.Equal(t, result.OrganizationID, *got.OrganizationID)

		got, err = stores.Users.Get(ctx, bob.UserID)
		require.NoError(t, err)
		require.Equal(t, orgA.OrgID, *got.OrganizationID)
	})

	t.Run("second run updates nobody", func(t *testing.T) {
		result, err := svc.BackfillDefaultOrganization(ctx, backfill.DefaultOrganizationName, backfill.DefaultOrganizationDescription)
		require.NoError(t, err)
		require.Equal(t, 0, result.Updated)
		require.False(t, result.OrganizationCreated)
	})

	t.Run("concurrent runs create one organization", func(t *testing.T) {
		for i := range 10 {
			createUser(t, ctx, stores, fmt.Sprintf("racer-%d", i), nil)
		}

		const workers = 6
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			total int
			errs  []error
		)
		for range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := svc.BackfillDefaultOrganization(ctx, "Racing Org", "")
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				total += result.Updated
			}()
		}
		wg.Wait()

		require.Empty(t, errs)
		require.Equal(t, 10, total)

		var count int
		err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM organizations WHERE name = $1`, "Racing Org").Scan(&count)
		require.NoError(t, err)
		require.Equal(t, 1, count)

		pending, err := stores.Users.ListWithoutOrganization(ctx)
		require.NoError(t, err)
		require.Empty(t, pending)
	})
}

func TestIntegration_Audit(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	stores := db.Stores()

	t.Run("registrar records one create row", func(t *testing.T) {
		r := identity.NewRegistrar(stores, identity.FailurePolicyStrict)
		r.Subscribe(audit.NewRecorder(stores.AuditLogs))

		carol, err := r.CreateUser(ctx, identity.NewUser{Username: "carol", Email: "carol@example.com"})
		require.NoError(t, err)

		entries, err := stores.AuditLogs.List(ctx, store.ListAuditLogsOptions{ObjectID: carol.UserID.String()})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, models.AuditActionCreate, entries[0].Action)
		require.Equal(t, models.AuditModelUser, entries[0].ModelName)
		require.Nil(t, entries[0].OrganizationID)
	})

	t.Run("strict policy rolls back the user", func(t *testing.T) {
		r := identity.NewRegistrar(stores, identity.FailurePolicyStrict)
		r.Subscribe(audit.NewRecorder(stores.AuditLogs))
		r.Subscribe(identity.UserCreatedFunc(func(context.Context, *models.User) error {
			return errors.New("listener failed")
		}))

		_, err := r.CreateUser(ctx, identity.NewUser{Username: "dave"})
		require.Error(t, err)

		_, err = stores.Users.GetByUsername(ctx, "dave")
		require.ErrorIs(t, err, store.ErrUserNotFound)

		entries, err := stores.AuditLogs.List(ctx, store.ListAuditLogsOptions{ModelName: models.AuditModelUser})
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})

	t.Run("audit rows are immutable", func(t *testing.T) {
		_, err := db.Pool.Exec(ctx, `UPDATE audit_logs SET action = 'delete'`)
		require.Error(t, err)

		_, err = db.Pool.Exec(ctx, `DELETE FROM audit_logs`)
		require.Error(t, err)
	})

	t.Run("reset truncates everything", func(t *testing.T) {
		require.NoError(t, Reset(ctx, db.Pool))

		users, err := stores.Users.List(ctx)
		require.NoError(t, err)
		require.Empty(t, users)

		entries, err := stores.AuditLogs.List(ctx, store.ListAuditLogsOptions{})
		require.NoError(t, err)
		require.Empty(t, entries)
	})
}

func TestIntegration_UserStore(t *testing.T) {
	ctx := context.Background()
	db, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	stores := db.Stores()

	t.Run("duplicate username", func(t *testing.T) {
		createUser(t, ctx, stores, "erin", nil)

		dup, err := models.NewUser("erin", "", nil)
		require.NoError(t, err)
		require.ErrorIs(t, stores.Users.Create(ctx, dup), store.ErrUserAlreadyExists)
	})

	t.Run("assign unknown organization", func(t *testing.T) {
		user := createUser(t, ctx, stores, "frank", nil)

		_, err := stores.Users.AssignOrganization(ctx, user.UserID, uuid.New())
		require.ErrorIs(t, err, store.ErrOrganizationNotFound)
	})

	t.Run("assign is conditional", func(t *testing.T) {
		org, err := models.NewOrganization("Cond", "")
		require.NoError(t, err)
		require.NoError(t, stores.Organizations.Create(ctx, org))

		user := createUser(t, ctx, stores, "grace", nil)

		ok, err := stores.Users.AssignOrganization(ctx, user.UserID, org.OrgID)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = stores.Users.AssignOrganization(ctx, user.UserID, org.OrgID)
		require.NoError(t, err)
		require.False(t, ok)

		_, err = stores.Users.AssignOrganization(ctx, uuid.New(), org.OrgID)
		require.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("duplicate organization name", func(t *testing.T) {
		org, err := models.NewOrganization("Cond", "again")
		require.NoError(t, err)
		require.ErrorIs(t, stores.Organizations.Create(ctx, org), store.ErrOrganizationAlreadyExists)
	})
}
