package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedkit/core"
)

func TestSQLiteStore(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "feed.db"))
	require.NoError(t, err)
	defer s.Close()
	storeContract(t, s)
	assert.Equal(t, "sqlite", s.Name())
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "feed.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "session:1", []byte(`{"a":1}`)))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()
	v, err := s.Get(ctx, "session:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(v))
}

func TestSQLiteStore_Expired(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "feed.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 60))
	_, err = s.db.ExecContext(ctx, `UPDATE kv SET expires_at = 1 WHERE key = 'k'`)
	require.NoError(t, err)

	_, err = s.Get(ctx, "k")
	assert.True(t, core.IsStoreNotFound(err))
}

func TestSQLiteStore_SetPurgesExpired(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "feed.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set(ctx, "old", []byte("v"), 60))
	_, err = s.db.ExecContext(ctx, `UPDATE kv SET expires_at = 1 WHERE key = 'old'`)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "new", []byte("v")))

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv`).Scan(&n))
	assert.Equal(t, 1, n)
}
