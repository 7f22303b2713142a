package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedkit/catalog"
	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/feed"
	"github.com/rushteam/feedkit/scoring"
	"github.com/rushteam/feedkit/store"
)

func newCatalog(t *testing.T, n int) *catalog.MemoryCatalog {
	t.Helper()
	items := make([]*core.CatalogItem, n)
	for i := range items {
		vec := make([]float32, 4)
		vec[i%4] = 1
		vec[(i+1)%4] = float32(i) / float32(n)
		items[i] = &core.CatalogItem{
			ID:      fmt.Sprintf("v%02d", i),
			Vector:  vec,
			Payload: map[string]any{"description": fmt.Sprintf("clip %d", i)},
		}
	}
	c, err := catalog.New(items)
	require.NoError(t, err)
	return c
}

func newAssembler(t *testing.T, c *catalog.MemoryCatalog) *feed.Assembler {
	t.Helper()
	idx, err := store.NewMemoryVectorIndexFromCatalog(context.Background(), c, "cosine")
	require.NoError(t, err)
	a, err := feed.NewAssembler(c, idx, feed.DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)
	return a
}

func newSession(t *testing.T, n int, opts ...Option) *Session {
	t.Helper()
	c := newCatalog(t, n)
	opts = append([]Option{WithRand(rand.New(rand.NewSource(1)))}, opts...)
	return New("s1", c, newAssembler(t, c), DefaultConfig(), opts...)
}

func TestScenario_ScoreAndSingleRefresh(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, 12)

	rec, err := s.ToggleInteraction(ctx, "v00", scoring.KindLike, true)
	require.NoError(t, err)
	assert.Equal(t, 2.0, rec.Score)

	rec, err = s.ReportDuration(ctx, "v00", 10000)
	require.NoError(t, err)
	table := scoring.DefaultPointTable()
	assert.InDelta(t, table.Like+table.Long, rec.Score, 1e-12)
	assert.Equal(t, 1, rec.RewatchCount)

	for i := 1; i < 5; i++ {
		_, err := s.ReportDuration(ctx, fmt.Sprintf("v%02d", i), 3000)
		require.NoError(t, err)
		if i < 4 {
			assert.Equal(t, 0, s.Stats().Refreshes)
		}
	}
	stats := s.Stats()
	assert.Equal(t, 5, stats.DurationEvents)
	assert.Equal(t, 1, stats.Refreshes)
	assert.True(t, stats.PreferencePresent)
}

func TestScenario_SmallCatalogColdStart(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, 3)

	first, err := s.RequestBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, feed.ModeColdStart, first.Mode)
	assert.Len(t, first.Entries, 3)

	second, err := s.RequestBatch(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(second.Entries), 1)
	for _, e := range second.Entries {
		for _, prev := range first.Entries {
			assert.NotEqual(t, prev.ItemID, e.ItemID)
		}
	}
}

func TestSession_BecomesWarm(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, 40)

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("v%02d", i)
		_, err := s.ToggleInteraction(ctx, id, scoring.KindShare, true)
		require.NoError(t, err)
		_, err = s.ReportDuration(ctx, id, 9000)
		require.NoError(t, err)
	}
	require.True(t, s.Stats().PreferencePresent)
	assert.Equal(t, feed.ModeWarm, s.Stats().Mode)

	batch, err := s.RequestBatch(ctx)
	require.NoError(t, err)
	assert.Equal(t, feed.ModeWarm, batch.Mode)
	assert.Len(t, batch.Entries, 10)

	pref := s.Preference()
	var sum float32
	for _, x := range pref {
		sum += x
	}
	assert.Greater(t, sum, float32(0))
}

func TestSession_InvalidInputLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, 5)

	_, err := s.ReportDuration(ctx, "v01", 4000)
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = s.ReportDuration(ctx, "v01", -5)
	assert.True(t, core.IsInvalidInput(err))
	_, err = s.ReportDuration(ctx, "missing", 100)
	assert.True(t, core.IsNotFound(err))
	_, err = s.ToggleInteraction(ctx, "v01", scoring.Kind("dislike"), true)
	assert.True(t, core.IsInvalidInput(err))

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, 1, s.Stats().DurationEvents)
}

func TestSession_ConcurrentOperations(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, 200)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		batches [][]feed.Entry
	)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				id := fmt.Sprintf("v%02d", (w*10+i)%60)
				_, _ = s.ToggleInteraction(ctx, id, scoring.KindLike, i%2 == 0)
				_, _ = s.ReportDuration(ctx, id, float64(1000*(i+1)))
				if i%3 == 0 {
					b, err := s.RequestBatch(ctx)
					if err == nil {
						mu.Lock()
						batches = append(batches, b.Entries)
						mu.Unlock()
					}
				}
			}
		}(w)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, entries := range batches {
		for _, e := range entries {
			assert.False(t, seen[e.ItemID], "redelivered %s", e.ItemID)
			seen[e.ItemID] = true
		}
	}
	assert.Equal(t, 80, s.Stats().DurationEvents)
	assert.Equal(t, 16, s.Stats().Refreshes)

	for id, view := range s.Snapshot().History {
		var sum float64
		for _, v := range view.Interactions {
			sum += v
		}
		assert.InDelta(t, sum, view.Score, 1e-9, id)
	}
}

type failingSink struct{ calls int }

func (f *failingSink) Save(context.Context, string, any) error {
	f.calls++
	return fmt.Errorf("disk full")
}
func (f *failingSink) Load(context.Context, string, any) error { return core.ErrStoreNotFound }

func TestSession_SnapshotFailureIsNotReturned(t *testing.T) {
	sink := &failingSink{}
	s := newSession(t, 5, WithSnapshotSink(sink))

	ctx := context.Background()
	_, err := s.ReportDuration(ctx, "v01", 1000)
	require.NoError(t, err)
	_, err = s.ToggleInteraction(ctx, "v01", scoring.KindLike, true)
	require.NoError(t, err)
	batch, err := s.RequestBatch(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, batch.Entries)
	assert.Equal(t, 3, sink.calls)
}

func TestSession_RestoreRebuildsPreference(t *testing.T) {
	ctx := context.Background()
	s := newSession(t, 12)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("v%02d", i)
		_, err := s.ToggleInteraction(ctx, id, scoring.KindSave, true)
		require.NoError(t, err)
		_, err = s.ReportDuration(ctx, id, 8000)
		require.NoError(t, err)
	}
	_, err := s.RequestBatch(ctx)
	require.NoError(t, err)
	snap := s.Snapshot()

	restored := newSession(t, 12)
	require.NoError(t, restored.Restore(snap))
	stats := restored.Stats()
	assert.Equal(t, 5, stats.HistoryCount)
	assert.Equal(t, len(snap.Shown), stats.Shown)
	assert.Equal(t, 5, stats.DurationEvents)
	assert.InDeltaSlice(t, toFloat64(s.Preference()), toFloat64(restored.Preference()), 1e-6)
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
