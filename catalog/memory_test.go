package catalog

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedkit/core"
)

func newTestCatalog(t *testing.T, n int) *MemoryCatalog {
	t.Helper()
	items := make([]*core.CatalogItem, n)
	for i := range items {
		items[i] = &core.CatalogItem{
			ID:      string(rune('a' + i)),
			Vector:  []float32{float32(i), 1},
			Payload: map[string]any{"description": "item"},
		}
	}
	c, err := New(items)
	require.NoError(t, err)
	return c
}

func TestNew_Rejects(t *testing.T) {
	_, err := New([]*core.CatalogItem{{ID: "a"}, {ID: "a"}})
	assert.True(t, core.IsInvalidInput(err))

	_, err = New([]*core.CatalogItem{{ID: ""}})
	assert.True(t, core.IsInvalidInput(err))

	_, err = New([]*core.CatalogItem{{ID: "a", Vector: []float32{1}}, {ID: "b", Vector: []float32{1, 2}}})
	assert.True(t, core.IsInvalidInput(err))
}

func TestMemoryCatalog_Get(t *testing.T) {
	c := newTestCatalog(t, 3)

	item, err := c.Get(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1}, item.Vector)

	_, err = c.Get(context.Background(), "zz")
	assert.True(t, core.IsNotFound(err))
	assert.Equal(t, []string{"a", "b", "c"}, c.Keys())
	assert.Equal(t, 2, c.Dimension())
}

func TestMemoryCatalog_SampleUniform(t *testing.T) {
	c := newTestCatalog(t, 10)
	rng := rand.New(rand.NewSource(1))

	exclude := func(id string) bool { return id == "a" || id == "b" }
	ids := c.SampleUniform(rng, exclude, 5)
	require.Len(t, ids, 5)
	seen := map[string]bool{}
	for _, id := range ids {
		assert.False(t, exclude(id))
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}

	// 请求数超过剩余数量时返回全部
	assert.Len(t, c.SampleUniform(rng, exclude, 100), 8)
	assert.Empty(t, c.SampleUniform(rng, func(string) bool { return true }, 3))
	assert.Empty(t, c.SampleUniform(rng, nil, 0))
}

func TestMemoryCatalog_SampleUniformDeterministic(t *testing.T) {
	c := newTestCatalog(t, 10)
	a := c.SampleUniform(rand.New(rand.NewSource(42)), nil, 4)
	b := c.SampleUniform(rand.New(rand.NewSource(42)), nil, 4)
	assert.Equal(t, a, b)
}
