package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/safenest/safenest/internal/models"
	"github.com/safenest/safenest/internal/store"
	"github.com/safenest/safenest/internal/store/memory"
	"github.com/stretchr/testify/require"
)

type failingAuditStore struct {
	store.AuditLogStore
	err error
}

func (s *failingAuditStore) Create(ctx context.Context, entry *models.AuditLog) error {
	return s.err
}

func TestRecorder_OnUserCreated(t *testing.T) {
	ctx := context.Background()

	t.Run("writes exactly one create record", func(t *testing.T) {
		st := memory.NewDB().Stores()
		org, err := models.NewOrganization("Acme", "")
		require.NoError(t, err)
		require.NoError(t, st.Organizations.Create(ctx, org))

		carol, err := models.NewUser("carol", "carol@example.com", &org.OrgID)
		require.NoError(t, err)
		require.NoError(t, st.Users.Create(ctx, carol))

		rec := NewRecorder(st.AuditLogs)
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		rec.now = func() time.Time { return fixed }

		require.NoError(t, rec.OnUserCreated(ctx, carol))

		logs, err := st.AuditLogs.List(ctx, store.ListAuditLogsOptions{})
		require.NoError(t, err)
		require.Len(t, logs, 1)

		entry := logs[0]
		require.Equal(t, models.AuditActionCreate, entry.Action)
		require.Equal(t, models.AuditModelUser, entry.ModelName)
		require.Equal(t, carol.UserID.String(), entry.ObjectID)
		require.Equal(t, carol.UserID, *entry.UserID)
		require.Equal(t, org.OrgID, *entry.OrganizationID)
		require.Equal(t, fixed, entry.CreatedAt)
		require.NotZero(t, entry.AuditID)
	})

	t.Run("user without organization records nil organization", func(t *testing.T) {
		st := memory.NewDB().Stores()
		dave, err := models.NewUser("dave", "dave@example.com", nil)
		require.NoError(t, err)

		require.NoError(t, NewRecorder(st.AuditLogs).OnUserCreated(ctx, dave))

		logs, err := st.AuditLogs.List(ctx, store.ListAuditLogsOptions{ObjectID: dave.UserID.String()})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		require.Nil(t, logs[0].OrganizationID)
	})

	t.Run("organization is captured at call time", func(t *testing.T) {
		st := memory.NewDB().Stores()
		org, err := models.NewOrganization("Acme", "")
		require.NoError(t, err)
		erin, err := models.NewUser("erin", "erin@example.com", &org.OrgID)
		require.NoError(t, err)

		require.NoError(t, NewRecorder(st.AuditLogs).OnUserCreated(ctx, erin))
		erin.OrganizationID = nil

		logs, err := st.AuditLogs.List(ctx, store.ListAuditLogsOptions{})
		require.NoError(t, err)
		require.Equal(t, org.OrgID, *logs[0].OrganizationID)
	})

	t.Run("store failure is a persistence error", func(t *testing.T) {
		unreachable := errors.New("connection refused")
		rec := NewRecorder(&failingAuditStore{err: unreachable})
		frank, err := models.NewUser("frank", "frank@example.com", nil)
		require.NoError(t, err)

		err = rec.OnUserCreated(ctx, frank)
		require.ErrorIs(t, err, store.ErrPersistence)
		require.ErrorIs(t, err, unreachable)
	})

	t.Run("nil user", func(t *testing.T) {
		rec := NewRecorder(memory.NewDB().Stores().AuditLogs)
		require.Error(t, rec.OnUserCreated(ctx, nil))
	})
}
