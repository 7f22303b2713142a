package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedkit/core"
)

// storeContract 对任意 core.Store 实现跑同一组行为检查
func storeContract(t *testing.T, s core.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.True(t, core.IsStoreNotFound(err))

	require.NoError(t, s.Set(ctx, "k1", []byte("v1")))
	v, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	require.NoError(t, s.Set(ctx, "k1", []byte("v1b")))
	v, err = s.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1b"), v)

	require.NoError(t, s.Set(ctx, "k2", []byte("v2")))
	_, err = s.Get(ctx, "nope")
	assert.True(t, core.IsStoreNotFound(err))

	require.NoError(t, s.Delete(ctx, "k2"))
	_, err = s.Get(ctx, "k2")
	assert.True(t, core.IsStoreNotFound(err))
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	storeContract(t, s)
	assert.Equal(t, "memory", s.Name())
}

func TestMemoryStore_TTL(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "short", []byte("x"), 1))
	s.mu.Lock()
	s.data["short"].expire = time.Now().Add(-time.Second)
	s.mu.Unlock()

	_, err := s.Get(ctx, "short")
	assert.True(t, core.IsStoreNotFound(err))

	s.sweep(time.Now())
	s.mu.RLock()
	_, ok := s.data["short"]
	s.mu.RUnlock()
	assert.False(t, ok)
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'z'
	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), v)

	// 重复 Close 不 panic
	require.NoError(t, s.Close())
}
