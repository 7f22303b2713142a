// Package vector 为候选索引（core.VectorService）提供熔断保护。
package vector

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/rushteam/feedkit/core"
)

// BreakerConfig 熔断参数
type BreakerConfig struct {
	Name string
	// FailureThreshold 连续失败多少次后打开
	FailureThreshold uint32
	// OpenTimeout 打开状态持续多久后进入半开
	OpenTimeout time.Duration
	// HalfOpenRequests 半开状态允许的探测请求数
	HalfOpenRequests uint32
	// SearchTimeout 单次检索超时，0 表示不设置
	SearchTimeout time.Duration
}

// DefaultBreakerConfig 返回默认参数
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "candidate-index",
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 1,
	}
}

// BreakerIndex 用熔断器包装任意 core.VectorService。
// 熔断打开、检索失败或超时都以 UNAVAILABLE 返回；INVALID_INPUT 不计入失败。
type BreakerIndex struct {
	next    core.VectorService
	cb      *gobreaker.CircuitBreaker[*core.VectorSearchResult]
	timeout time.Duration
}

// NewBreakerIndex 创建熔断包装
func NewBreakerIndex(next core.VectorService, cfg BreakerConfig, logger zerolog.Logger) *BreakerIndex {
	def := DefaultBreakerConfig()
	if cfg.Name == "" {
		cfg.Name = def.Name
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = def.HalfOpenRequests
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || core.IsInvalidInput(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("candidate index breaker state changed")
		},
	}
	return &BreakerIndex{
		next:    next,
		cb:      gobreaker.NewCircuitBreaker[*core.VectorSearchResult](settings),
		timeout: cfg.SearchTimeout,
	}
}

// Search 实现 core.VectorService 接口
func (b *BreakerIndex) Search(ctx context.Context, req *core.VectorSearchRequest) (*core.VectorSearchResult, error) {
	res, err := b.cb.Execute(func() (*core.VectorSearchResult, error) {
		searchCtx := ctx
		if b.timeout > 0 {
			var cancel context.CancelFunc
			searchCtx, cancel = context.WithTimeout(ctx, b.timeout)
			defer cancel()
		}
		return b.next.Search(searchCtx, req)
	})
	if err == nil {
		return res, nil
	}
	if core.IsInvalidInput(err) {
		return nil, err
	}
	return nil, core.WrapDomainError(core.ModuleIndex, core.ErrorCodeUnavailable, "candidate index unavailable", err)
}

// IsOpen 判断错误是否由熔断器拒绝（打开或半开限流）产生，而非索引本身失败
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// State 返回熔断器当前状态
func (b *BreakerIndex) State() gobreaker.State {
	return b.cb.State()
}

// Close 关闭被包装的索引
func (b *BreakerIndex) Close() error {
	return b.next.Close()
}

var _ core.VectorService = (*BreakerIndex)(nil)
