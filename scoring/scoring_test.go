package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedkit/core"
)

func TestClassifyViewTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    Bucket
	}{
		{0, BucketSkip},
		{1.9, BucketSkip},
		{2.0, BucketShort},
		{5, BucketShort},
		{7.0, BucketShort},
		{7.1, BucketLong},
		{120, BucketLong},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyViewTime(tt.seconds), "seconds=%v", tt.seconds)
	}
}

func TestRewatchCount(t *testing.T) {
	assert.Equal(t, 2, RewatchCount(30, 15))
	assert.Equal(t, 1, RewatchCount(22, 15))
	assert.Equal(t, 1, RewatchCount(10, 15))
	assert.Equal(t, 0, RewatchCount(7, 15))
	assert.Equal(t, 2, RewatchCount(37.5, 15)) // 2.5 取偶
	assert.Equal(t, 0, RewatchCount(30, 0))
}

func TestPointTable_ValueFor(t *testing.T) {
	table := DefaultPointTable()

	v, err := table.ValueFor(KindLike)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = table.ValueFor(KindShare)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	_, err = table.ValueFor(KindViewTime)
	assert.True(t, core.IsInvalidInput(err))

	_, err = table.ValueFor(Kind("dislike"))
	assert.True(t, core.IsInvalidInput(err))
}

func TestPointTable_ViewTimeValue(t *testing.T) {
	table := DefaultPointTable()
	assert.Equal(t, 0.01, table.ViewTimeValue(1.9))
	assert.Equal(t, 0.25, table.ViewTimeValue(2))
	assert.Equal(t, 1.5, table.ViewTimeValue(10))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("save")
	require.NoError(t, err)
	assert.Equal(t, KindSave, k)

	for _, bad := range []string{"view_time", "rewatch_count", "", "LIKE"} {
		_, err := ParseKind(bad)
		assert.True(t, core.IsInvalidInput(err), bad)
	}
}

func TestTotalScore(t *testing.T) {
	assert.Equal(t, 0.0, TotalScore(nil))
	assert.InDelta(t, 3.5, TotalScore(map[Kind]float64{KindLike: 2, KindViewTime: 1.5, KindRewatchCount: 0}), 1e-12)
}
