package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPersistence(t *testing.T) {
	t.Run("nil error stays nil", func(t *testing.T) {
		require.NoError(t, Persistence("create user", nil))
	})

	t.Run("wraps and matches kind", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Persistence("create user", cause)

		require.ErrorIs(t, err, ErrPersistence)
		require.ErrorIs(t, err, cause)
		require.Contains(t, err.Error(), "create user")
		require.Contains(t, err.Error(), "connection refused")
	})

	t.Run("keeps sentinel reachable", func(t *testing.T) {
		err := Persistence("create organization", fmt.Errorf("insert: %w", ErrOrganizationAlreadyExists))

		require.ErrorIs(t, err, ErrPersistence)
		require.ErrorIs(t, err, ErrOrganizationAlreadyExists)
	})

	t.Run("does not double wrap", func(t *testing.T) {
		first := Persistence("inner", errors.New("boom"))
		second := Persistence("outer", first)

		var pe *PersistenceError
		require.ErrorAs(t, second, &pe)
		require.Equal(t, "inner", pe.Op)
	})
}
