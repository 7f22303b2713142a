package embedding

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedkit/catalog"
	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/history"
	"github.com/rushteam/feedkit/scoring"
)

func TestCompute_ConvexCombination(t *testing.T) {
	records := []history.Record{
		{ItemID: "a", Vector: []float32{1, 0}, Score: 2},
		{ItemID: "b", Vector: []float32{0, 1}, Score: 5},
	}
	vec, weights, ok := Compute(records)
	require.True(t, ok)
	require.Len(t, weights, 2)

	assert.InDelta(t, 1.0, weights[0]+weights[1], 1e-9)
	assert.InDelta(t, 3.0/9.0, weights[0], 1e-9)
	assert.InDelta(t, 6.0/9.0, weights[1], 1e-9)
	assert.InDelta(t, 3.0/9.0, vec[0], 1e-6)
	assert.InDelta(t, 6.0/9.0, vec[1], 1e-6)
}

func TestCompute_Degenerate(t *testing.T) {
	_, _, ok := Compute(nil)
	assert.False(t, ok)

	vec, weights, ok := Compute([]history.Record{
		{ItemID: "a", Vector: []float32{2, 2}, Score: 3},
		{ItemID: "b", Vector: []float32{1, 2, 3}, Score: 3},
		{ItemID: "c"},
	})
	require.True(t, ok)
	assert.Equal(t, []float64{1}, weights)
	assert.Equal(t, []float32{2, 2}, vec)
}

func newHistory(t *testing.T, n int) *history.History {
	t.Helper()
	items := make([]*core.CatalogItem, n)
	for i := range items {
		vec := make([]float32, n)
		vec[i] = 1
		items[i] = &core.CatalogItem{ID: fmt.Sprintf("v%d", i), Vector: vec}
	}
	c, err := catalog.New(items)
	require.NoError(t, err)
	return history.New(c, scoring.DefaultPointTable(), 15)
}

func TestTracker_Cadence(t *testing.T) {
	ctx := context.Background()
	h := newHistory(t, 8)
	tr := NewTracker(DefaultOptions())

	_, err := h.RecordToggle(ctx, "v0", scoring.KindLike, true)
	require.NoError(t, err)

	triggered := 0
	for i := 0; i < 5; i++ {
		_, err := h.RecordDuration(ctx, fmt.Sprintf("v%d", i), 10000)
		require.NoError(t, err)
		if tr.Observe(h) {
			triggered++
		}
	}
	assert.Equal(t, 1, triggered)
	assert.Equal(t, 1, tr.Refreshes())
	assert.Equal(t, 5, tr.Events())
	require.True(t, tr.Present())

	var sum float32
	for _, x := range tr.Vector() {
		assert.GreaterOrEqual(t, x, float32(0))
		sum += x
	}
	// 单位向量的凸组合，分量和为 1
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestTracker_SkipKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	h := newHistory(t, 4)
	tr := NewTracker(Options{WarmThreshold: 2, WindowSize: 5, RefreshCadence: 1})

	assert.False(t, tr.Refresh(h))
	assert.Nil(t, tr.Vector())

	_, err := h.RecordToggle(ctx, "v1", scoring.KindShare, true)
	require.NoError(t, err)
	require.True(t, tr.Refresh(h))
	assert.Equal(t, []float32{0, 1, 0, 0}, tr.Vector())

	_, err = h.RecordToggle(ctx, "v1", scoring.KindShare, false)
	require.NoError(t, err)
	assert.False(t, tr.Refresh(h))
	assert.Equal(t, []float32{0, 1, 0, 0}, tr.Vector())
}
