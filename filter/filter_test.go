package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedkit/core"
)

type shownSet map[string]struct{}

func (s shownSet) Contains(id string) bool { _, ok := s[id]; return ok }
func (s shownSet) Add(id string) bool {
	if s.Contains(id) {
		return false
	}
	s[id] = struct{}{}
	return true
}
func (s shownSet) Len() int { return len(s) }

func TestFirst(t *testing.T) {
	ctx := context.Background()
	fctx := &core.FeedContext{Shown: shownSet{"a": {}}}
	expr, err := NewExprFilter(`item.payload.lang == "en"`)
	require.NoError(t, err)
	filters := []Filter{&ExposedFilter{}, NewBlacklistFilter([]string{"b"}), expr}

	en := map[string]any{"lang": "en"}
	assert.Equal(t, "exposed", First(ctx, fctx, &core.CatalogItem{ID: "a", Payload: en}, filters))
	assert.Equal(t, "blacklist", First(ctx, fctx, &core.CatalogItem{ID: "b", Payload: en}, filters))
	assert.Equal(t, "ineligible", First(ctx, fctx, &core.CatalogItem{ID: "c", Payload: map[string]any{"lang": "fr"}}, filters))
	assert.Equal(t, "", First(ctx, fctx, &core.CatalogItem{ID: "c", Payload: en}, filters))
}

func TestFirst_ErrorExcludesItem(t *testing.T) {
	ctx := context.Background()
	fctx := &core.FeedContext{Shown: shownSet{}}
	expr, err := NewExprFilter(`item.payload.lang == "en"`)
	require.NoError(t, err)
	filters := []Filter{&ExposedFilter{}, expr}

	assert.Equal(t, "ineligible", First(ctx, fctx, &core.CatalogItem{ID: "nolang"}, filters))
	assert.Equal(t, "ineligible", First(ctx, fctx, &core.CatalogItem{ID: "empty", Payload: map[string]any{}}, filters))

	eligible := Eligible(ctx, fctx, filters)
	assert.False(t, eligible(&core.CatalogItem{ID: "nolang"}))
	assert.True(t, eligible(&core.CatalogItem{ID: "en1", Payload: map[string]any{"lang": "en"}}))
}

func TestEligible(t *testing.T) {
	ctx := context.Background()
	fctx := &core.FeedContext{Shown: shownSet{}}
	assert.Nil(t, Eligible(ctx, fctx, nil))

	eligible := Eligible(ctx, fctx, []Filter{NewBlacklistFilter([]string{"x"})})
	require.NotNil(t, eligible)
	assert.False(t, eligible(&core.CatalogItem{ID: "x"}))
	assert.True(t, eligible(&core.CatalogItem{ID: "y"}))
}

func TestConstructorsWithoutConfig(t *testing.T) {
	assert.Nil(t, NewBlacklistFilter(nil))

	f, err := NewExprFilter("")
	require.NoError(t, err)
	assert.Nil(t, f)

	_, err = NewExprFilter("item.id ==")
	assert.True(t, core.IsInvalidInput(err))
}
