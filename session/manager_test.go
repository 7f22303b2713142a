package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/scoring"
	"github.com/rushteam/feedkit/store"
)

func newManager(t *testing.T, max int, opts ...ManagerOption) *Manager {
	t.Helper()
	c := newCatalog(t, 20)
	m, err := NewManager(c, newAssembler(t, c), ManagerConfig{Session: DefaultConfig(), MaxSessions: max, Seed: 42}, opts...)
	require.NoError(t, err)
	return m
}

func TestManager_CreateGetDelete(t *testing.T) {
	m := newManager(t, 4)
	s := m.Create(context.Background())
	require.NotEmpty(t, s.ID())

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Len())

	assert.True(t, m.Delete(s.ID()))
	_, err = m.Get(s.ID())
	assert.True(t, core.IsNotFound(err))

	_, err = m.Open(context.Background(), "nope")
	assert.True(t, core.IsNotFound(err))
}

func TestManager_EvictsLeastRecentlyUsed(t *testing.T) {
	m := newManager(t, 2)
	a := m.Create(context.Background())
	b := m.Create(context.Background())
	_, err := m.Get(a.ID())
	require.NoError(t, err)

	m.Create(context.Background())
	assert.Equal(t, 2, m.Len())
	_, err = m.Get(b.ID())
	assert.True(t, core.IsNotFound(err))
	_, err = m.Get(a.ID())
	assert.NoError(t, err)
}

func TestManager_OpenRestoresFromSnapshot(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	defer mem.Close()
	snaps := store.NewSnapshotStore(mem, "test", 0)
	m := newManager(t, 1, WithManagerSnapshotSink(snaps))

	s := m.Create(ctx)
	_, err := s.ToggleInteraction(ctx, "v03", scoring.KindLike, true)
	require.NoError(t, err)
	_, err = s.ReportDuration(ctx, "v03", 12000)
	require.NoError(t, err)
	batch, err := s.RequestBatch(ctx)
	require.NoError(t, err)
	_, err = s.ReportDuration(ctx, "v03", 1000)
	require.NoError(t, err)

	// 新会话挤掉 s
	m.Create(ctx)
	_, err = m.Get(s.ID())
	require.True(t, core.IsNotFound(err))

	restored, err := m.Open(ctx, s.ID())
	require.NoError(t, err)
	rec, ok := restored.Record("v03")
	require.True(t, ok)
	assert.InDelta(t, 2.01, rec.Score, 1e-12)
	assert.Equal(t, 13.0, rec.ViewDurationSeconds)
	assert.Equal(t, len(batch.Entries), restored.Stats().Shown)
	assert.Equal(t, 2, restored.Stats().DurationEvents)
}

func TestManager_RestoreKeepsStateAfterLastDuration(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	defer mem.Close()
	m := newManager(t, 1, WithManagerSnapshotSink(store.NewSnapshotStore(mem, "test", 0)))

	s := m.Create(ctx)
	_, err := s.ReportDuration(ctx, "v01", 3000)
	require.NoError(t, err)
	first, err := s.RequestBatch(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first.Entries)
	_, err = s.ToggleInteraction(ctx, "v02", scoring.KindLike, true)
	require.NoError(t, err)
	before := s.Stats()

	m.Create(ctx)
	restored, err := m.Open(ctx, s.ID())
	require.NoError(t, err)
	after := restored.Stats()
	assert.Equal(t, before.Shown, after.Shown)
	assert.Equal(t, before.HistoryCount, after.HistoryCount)

	shown := make(map[string]bool)
	for _, e := range first.Entries {
		shown[e.ItemID] = true
	}
	for i := 0; i < 5; i++ {
		batch, err := restored.RequestBatch(ctx)
		require.NoError(t, err)
		for _, e := range batch.Entries {
			assert.False(t, shown[e.ItemID], "item %s delivered again after restore", e.ItemID)
			shown[e.ItemID] = true
		}
	}
}
