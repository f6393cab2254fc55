package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNewOrganization(t *testing.T) {
	org, err := NewOrganization("Acme", "Acme Corp")
	require.NoError(t, err)

	require.Equal(t, uuid.Version(7), org.OrgID.Version())
	require.Equal(t, "Acme", org.Name)
	require.True(t, org.IsActive)
	require.NotNil(t, org.Settings)
	require.Equal(t, org.CreatedAt, org.UpdatedAt)
}

func TestNewUser(t *testing.T) {
	t.Run("without organization", func(t *testing.T) {
		user, err := NewUser("alice", "alice@example.com", nil)
		require.NoError(t, err)
		require.Equal(t, uuid.Version(7), user.UserID.Version())
		require.False(t, user.HasOrganization())
	})

	t.Run("with organization", func(t *testing.T) {
		orgID := uuid.New()
		user, err := NewUser("bob", "", &orgID)
		require.NoError(t, err)
		require.True(t, user.HasOrganization())
		require.Equal(t, orgID, *user.OrganizationID)
	})
}
