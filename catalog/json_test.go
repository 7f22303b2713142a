package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedkit/core"
)

func TestDecodeJSON_ObjectKeepsFileOrder(t *testing.T) {
	doc := `{
		"v10": {"description": "ten", "embeddings": [1, 0]},
		"v2":  {"description": "two", "embeddings": [0, 1], "url": "u2"},
		"v1":  {"description": "one", "embeddings": [0.5, 0.5]}
	}`
	items, err := DecodeJSON(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "v10", items[0].ID)
	assert.Equal(t, "v2", items[1].ID)
	assert.Equal(t, "v1", items[2].ID)
	assert.Equal(t, []float32{0, 1}, items[1].Vector)
	assert.Equal(t, "two", items[1].Description())
	assert.Equal(t, "u2", items[1].Payload["url"])
	_, hasVector := items[1].Payload[VectorField]
	assert.False(t, hasVector)
}

func TestDecodeJSON_Array(t *testing.T) {
	doc := `[{"id": "b", "embeddings": [1]}, {"id": "a", "embeddings": [2], "description": "x"}]`
	items, err := DecodeJSON(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "x", items[1].Description())
	_, hasID := items[1].Payload["id"]
	assert.False(t, hasID)
}

func TestDecodeJSON_Invalid(t *testing.T) {
	for _, doc := range []string{
		`"nope"`,
		`{"a": {"embeddings": ["x"]}}`,
		`[{"embeddings": [1]}]`,
		`{"a": `,
	} {
		_, err := DecodeJSON(strings.NewReader(doc))
		assert.True(t, core.IsInvalidInput(err), doc)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": {"embeddings": [1, 2]}, "b": {"embeddings": [3, 4]}}`), 0o644))

	c, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, c.Keys())

	_, err = LoadJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
