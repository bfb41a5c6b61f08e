package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpggio/gantry/internal/repository"
)

func TestAPIKeyRepository(t *testing.T) {
	f := newFixture(t)
	repo := NewAPIKeyRepository(f.db)
	ctx := context.Background()
	alice := f.person(t, "u1", "alice@example.com", "Alice")

	token, err := repo.Create(ctx, alice.ID, "laptop")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(token, "gnt_"))

	var stored string
	require.NoError(t, f.db.QueryRowContext(ctx, `SELECT key_hash FROM api_keys WHERE person_id = ?`, alice.ID).Scan(&stored))
	require.Equal(t, HashToken(token), stored)
	require.NotEqual(t, token, stored)

	actor, err := repo.ResolveActor(ctx, token)
	require.NoError(t, err)
	require.Equal(t, alice.ID, actor)

	_, err = repo.ResolveActor(ctx, "gnt_nope")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = repo.Create(ctx, "ghost", "")
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)

	require.NoError(t, repo.Revoke(ctx, alice.ID))
	_, err = repo.ResolveActor(ctx, token)
	require.ErrorIs(t, err, ErrInvalidToken)
	require.ErrorIs(t, repo.Revoke(ctx, alice.ID), repository.ErrNotFound)
}
