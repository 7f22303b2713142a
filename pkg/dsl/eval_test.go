package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedkit/core"
)

func TestEval_Match(t *testing.T) {
	item := &core.CatalogItem{
		ID:     "video_3",
		Vector: []float32{1, 0},
		Payload: map[string]any{
			"description": "cats",
			"categories":  []any{"pets", "funny"},
		},
	}

	tests := []struct {
		expr string
		want bool
	}{
		{`item.id.startsWith("video_")`, true},
		{`"pets" in item.payload.categories`, true},
		{`!("nsfw" in item.payload.categories)`, true},
		{`item.payload.description == "dogs"`, false},
		{`item.dim == 2`, true},
		{`has(item.payload.rating) && item.payload.rating > 3`, false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			e, err := NewEval(tt.expr)
			require.NoError(t, err)
			got, err := e.Match(item)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_EmptyAndInvalid(t *testing.T) {
	e, err := NewEval("")
	require.NoError(t, err)
	assert.Nil(t, e)
	ok, err := e.Match(&core.CatalogItem{ID: "x"})
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = NewEval("item.id ==")
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))

	e, err = NewEval(`item.id + "x"`)
	require.NoError(t, err)
	_, err = e.Match(&core.CatalogItem{ID: "x"})
	require.Error(t, err)
}
