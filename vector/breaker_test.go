package vector

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/feedkit/core"
)

type stubIndex struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (s *stubIndex) Search(ctx context.Context, _ *core.VectorSearchRequest) (*core.VectorSearchResult, error) {
	s.calls.Add(1)
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &core.VectorSearchResult{Items: []core.VectorSearchItem{{ID: "a", Score: 1}}}, nil
}

func (s *stubIndex) Close() error { return nil }

func TestBreakerIndex_PassThrough(t *testing.T) {
	next := &stubIndex{}
	b := NewBreakerIndex(next, BreakerConfig{}, zerolog.Nop())

	res, err := b.Search(context.Background(), &core.VectorSearchRequest{Vector: []float32{1}, TopK: 1})
	require.NoError(t, err)
	assert.Equal(t, "a", res.Items[0].ID)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerIndex_OpensAfterFailures(t *testing.T) {
	next := &stubIndex{err: errors.New("connection refused")}
	b := NewBreakerIndex(next, BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute}, zerolog.Nop())
	req := &core.VectorSearchRequest{Vector: []float32{1}, TopK: 1}

	for i := 0; i < 2; i++ {
		_, err := b.Search(context.Background(), req)
		assert.True(t, core.IsUnavailable(err))
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Search(context.Background(), req)
	assert.True(t, core.IsUnavailable(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.True(t, IsOpen(err))
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestBreakerIndex_InvalidInputDoesNotTrip(t *testing.T) {
	next := &stubIndex{err: core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput, "dimension mismatch")}
	b := NewBreakerIndex(next, BreakerConfig{FailureThreshold: 1}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		_, err := b.Search(context.Background(), &core.VectorSearchRequest{})
		assert.True(t, core.IsInvalidInput(err))
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerIndex_Timeout(t *testing.T) {
	next := &stubIndex{delay: time.Second}
	b := NewBreakerIndex(next, BreakerConfig{SearchTimeout: 10 * time.Millisecond}, zerolog.Nop())

	_, err := b.Search(context.Background(), &core.VectorSearchRequest{Vector: []float32{1}})
	assert.True(t, core.IsUnavailable(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
