package commands

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/safenest/safenest/internal/backfill"
	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store/memory"
	"github.com/safenest/safenest/internal/store/postgres"
	"github.com/stretchr/testify/require"
)

func TestPrintBackfillResult(t *testing.T) {
	orgID := uuid.MustParse("0199f1e4-0000-7000-8000-000000000001")
	userID := uuid.MustParse("0199f1e4-0000-7000-8000-000000000002")

	t.Run("with assignments", func(t *testing.T) {
		var buf bytes.Buffer
		printBackfillResult(&buf, &backfill.Result{
			Updated:             1,
			OrganizationID:      orgID,
			OrganizationName:    "Default Organization",
			OrganizationCreated: true,
			Assignments:         []backfill.Assignment{{UserID: userID, Username: "alice"}},
		})

		require.Equal(t,
			"assigned alice ("+userID.String()+") to Default Organization\n"+
				"updated=1 organization="+orgID.String()+" (created)\n",
			buf.String())
	})

	t.Run("nothing to do", func(t *testing.T) {
		var buf bytes.Buffer
		printBackfillResult(&buf, &backfill.Result{OrganizationID: orgID, OrganizationName: "Default Organization"})
		require.Equal(t, "updated=0 organization="+orgID.String()+"\n", buf.String())
	})
}

func TestPrintAuditLogs(t *testing.T) {
	userID := uuid.MustParse("0199f1e4-0000-7000-8000-000000000002")

	var buf bytes.Buffer
	err := printAuditLogs(&buf, []*models.AuditLog{{
		AuditID:   uuid.New(),
		UserID:    &userID,
		Action:    models.AuditActionCreate,
		ModelName: models.AuditModelUser,
		ObjectID:  userID.String(),
		CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "ACTION")
	require.Contains(t, out, "2025-01-02T03:04:05Z")
	require.Contains(t, out, "create")
	require.Contains(t, out, userID.String())
	require.Contains(t, out, " -\n")
}

func TestPrintSchema(t *testing.T) {
	var buf bytes.Buffer
	printSchema(&buf, []postgres.Table{{
		Name: "users",
		Columns: []postgres.Column{
			{Name: "user_id", DataType: "uuid"},
			{Name: "organization_id", DataType: "uuid", Nullable: true},
		},
	}})

	out := buf.String()
	require.Contains(t, out, "users\n")
	require.Regexp(t, `user_id\s+uuid\s+NOT NULL`, out)
	require.Regexp(t, `organization_id\s+uuid\s+NULL`, out)
}

func TestPostgresFlagsValidate(t *testing.T) {
	require.Error(t, (&PostgresFlags{}).Validate())
	require.NoError(t, (&PostgresFlags{ConnString: "postgres://localhost/db"}).Validate())
}

func TestResetRequiresConfirmation(t *testing.T) {
	err := (&ResetCmd{}).Run(context.Background(), &Globals{})
	require.ErrorContains(t, err, "--yes")
}

func TestRegistrationFlags(t *testing.T) {
	_, err := RegistrationFlags{AuditFailurePolicy: "sometimes"}.registrar(memory.NewDB().Stores())
	require.Error(t, err)

	r, err := RegistrationFlags{AuditFailurePolicy: "lenient"}.registrar(memory.NewDB().Stores())
	require.NoError(t, err)
	require.NotNil(t, r)
}
