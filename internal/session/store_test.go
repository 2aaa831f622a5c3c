package session

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	path := filepath.Join(t.TempDir(), "session.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestGetSetDelete(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Delete(ctx, "k", "never-set"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestTokensSurviveReopen(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveTokens(ctx, Tokens{AuthToken: "a", RefreshToken: "r"}))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	tokens, err := reopened.LoadTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, Tokens{AuthToken: "a", RefreshToken: "r"}, tokens)

	require.NoError(t, reopened.ClearTokens(ctx))
	tokens, err = reopened.LoadTokens(ctx)
	require.NoError(t, err)
	assert.Empty(t, tokens.AuthToken)
	assert.Empty(t, tokens.RefreshToken)
}

func TestAuthSnapshot(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	snap, err := s.LoadAuthSnapshot(ctx)
	require.NoError(t, err)
	assert.False(t, snap.IsAuthenticated)

	user := json.RawMessage(`{"id":"user-1","email":"a@b.c"}`)
	require.NoError(t, s.SaveAuthSnapshot(ctx, AuthSnapshot{User: user, IsAuthenticated: true}))

	raw, err := s.Get(ctx, KeyAuthStorage)
	require.NoError(t, err)
	assert.JSONEq(t, `{"user":{"id":"user-1","email":"a@b.c"},"isAuthenticated":true}`, raw)

	snap, err = s.LoadAuthSnapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.IsAuthenticated)
	assert.JSONEq(t, string(user), string(snap.User))
}

func TestDarkMode(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	on, err := s.DarkMode(ctx)
	require.NoError(t, err)
	assert.False(t, on)

	require.NoError(t, s.SetDarkMode(ctx, true))
	on, err = s.DarkMode(ctx)
	require.NoError(t, err)
	assert.True(t, on)

	raw, err := s.Get(ctx, KeyDarkMode)
	require.NoError(t, err)
	assert.Equal(t, "true", raw)
}
