package dbbadger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cardanoconnect/connectd/internal/core/domain"
)

func TestPermissionRepository(t *testing.T) {
	repo := NewPermissionRepositoryImpl(newTestDb(t))
	ctx := context.Background()

	// an origin never decided on yields no record and no error
	permission, err := repo.GetPermission(ctx, "https://dapp.example.com")
	require.NoError(t, err)
	require.Nil(t, permission)

	stored, err := domain.NewPermission("https://dapp.example.com", true)
	require.NoError(t, err)
	require.NoError(t, repo.UpsertPermission(ctx, stored))

	permission, err = repo.GetPermission(ctx, "https://dapp.example.com")
	require.NoError(t, err)
	require.NotNil(t, permission)
	require.True(t, permission.Approved)

	// upsert overwrites the previous decision
	stored, err = domain.NewPermission("https://dapp.example.com", false)
	require.NoError(t, err)
	require.NoError(t, repo.UpsertPermission(ctx, stored))

	permission, err = repo.GetPermission(ctx, "https://dapp.example.com")
	require.NoError(t, err)
	require.False(t, permission.Approved)

	other, err := domain.NewPermission("https://other.example.com", true)
	require.NoError(t, err)
	require.NoError(t, repo.UpsertPermission(ctx, other))

	permissions, err := repo.ListPermissions(ctx)
	require.NoError(t, err)
	require.Len(t, permissions, 2)

	require.NoError(t, repo.DeletePermission(ctx, "https://dapp.example.com"))
	permission, err = repo.GetPermission(ctx, "https://dapp.example.com")
	require.NoError(t, err)
	require.Nil(t, permission)

	// deleting an unknown origin is a no-op
	require.NoError(t, repo.DeletePermission(ctx, "https://unknown.example.com"))
}
