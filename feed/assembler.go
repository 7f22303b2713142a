// Package feed 组装下发批次：冷启动随机采样，或近邻检索 + 替换 + 多样性配额 + 打乱。
package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/filter"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/metrics"
	"github.com/rushteam/feedkit/recall"
	"github.com/rushteam/feedkit/rerank"
	"github.com/rushteam/feedkit/vector"
)

// Entry 是批次中的一项
type Entry struct {
	ItemID      string         `json:"item_id"`
	Description string         `json:"description"`
	Payload     map[string]any `json:"payload,omitempty"`
	Source      string         `json:"source"`
}

// Batch 是一次组装的结果
type Batch struct {
	Mode    Mode    `json:"mode"`
	Entries []Entry `json:"entries"`
	// Fallback 为 true 表示 Warm 组装失败或为空，改走了冷启动
	Fallback bool `json:"fallback"`
}

// Request 是一次组装所需的会话状态，由 Session 持锁构造。
type Request struct {
	SessionID    string
	Preference   []float32
	HistoryCount int
	State        *State
	Rand         *rand.Rand
}

// Assembler 按 Mode 选择 Pipeline 组装批次，本身无会话状态，可被多个会话共享。
type Assembler struct {
	catalog core.Catalog
	opts    Options
	logger  zerolog.Logger

	// admission 是 Eligible 使用的过滤器（不含曝光过滤，曝光由 FeedState 排除）
	admission []filter.Filter
	warm      *pipeline.Pipeline
	cold      *pipeline.Pipeline
}

// NewAssembler 创建组装器。index 为 nil 时永远走冷启动。
func NewAssembler(catalog core.Catalog, index core.VectorService, opts Options, logger zerolog.Logger) (*Assembler, error) {
	def := DefaultOptions()
	if opts.Metric == "" {
		opts.Metric = def.Metric
	}
	if opts.SubstituteAttempts <= 0 {
		opts.SubstituteAttempts = def.SubstituteAttempts
	}

	var admission []filter.Filter
	if bl := filter.NewBlacklistFilter(opts.Blacklist); bl != nil {
		admission = append(admission, bl)
	}
	expr, err := filter.NewExprFilter(opts.Eligibility)
	if err != nil {
		return nil, err
	}
	if expr != nil {
		admission = append(admission, expr)
	}
	substituteFilters := append([]filter.Filter{&filter.ExposedFilter{}}, admission...)

	factory := pipeline.NewNodeFactory()
	recall.RegisterNodes(factory, index)
	rerank.RegisterNodes(factory, substituteFilters)

	warm, err := factory.BuildPipeline(warmNodes(opts, dimensionOf(index, catalog)))
	if err != nil {
		return nil, err
	}
	cold, err := factory.BuildPipeline(coldNodes(opts))
	if err != nil {
		return nil, err
	}
	if index == nil {
		warm = nil
	}

	return &Assembler{
		catalog:   catalog,
		opts:      opts,
		logger:    logger,
		admission: admission,
		warm:      warm,
		cold:      cold,
	}, nil
}

// dimensionOf 取索引或目录的向量维度，都未知时为 0（不校验维度）
func dimensionOf(sources ...any) int {
	for _, src := range sources {
		if d, ok := src.(interface{ Dimension() int }); ok && d.Dimension() > 0 {
			return d.Dimension()
		}
	}
	return 0
}

func warmNodes(opts Options, dimension int) []pipeline.NodeConfig {
	return []pipeline.NodeConfig{
		{Type: "recall.similar", Config: map[string]any{"k": opts.SimilarK, "metric": opts.Metric, "dimension": dimension}},
		{Type: "rerank.substitute", Config: map[string]any{"max_attempts": opts.SubstituteAttempts}},
		{Type: "recall.random", Config: map[string]any{"n": opts.DiversityK, "source": core.SourceDiversity}},
		{Type: "rerank.shuffle"},
	}
}

func coldNodes(opts Options) []pipeline.NodeConfig {
	return []pipeline.NodeConfig{
		{Type: "recall.random", Config: map[string]any{"n": opts.ColdStartBatch, "source": core.SourceColdStart}},
		{Type: "rerank.shuffle"},
	}
}

// Options 返回生效的参数
func (a *Assembler) Options() Options { return a.opts }

// Assemble 组装下一批次。
// Warm 组装出错（索引不可用、目录查询失败）或结果为空时回退到冷启动，错误只记录不返回；
// 失败的 Warm 尝试写入 FeedState 的 ID 会被撤销。
func (a *Assembler) Assemble(ctx context.Context, req Request) (*Batch, error) {
	start := time.Now()
	fctx := a.feedContext(ctx, req)
	mode := ResolveMode(len(req.Preference) > 0, req.HistoryCount, a.opts.WarmFloor)
	batch := &Batch{Mode: mode}

	if mode == ModeWarm && a.warm != nil {
		mark := req.State.Len()
		items, err := a.warm.Run(ctx, fctx, nil)
		switch {
		case err != nil:
			req.State.truncate(mark)
			metrics.RetrievalFailures.WithLabelValues(failedCollaborator(err)).Inc()
			a.logger.Warn().Err(err).
				Str("session_id", req.SessionID).
				Msg("warm assembly failed, falling back to cold start")
			batch.Fallback = true
		case len(items) == 0:
			a.logger.Debug().Str("session_id", req.SessionID).Msg("warm assembly empty, falling back to cold start")
			batch.Fallback = true
		default:
			batch.Entries = toEntries(items)
			a.observe(batch, start)
			return batch, nil
		}
	}

	items, err := a.cold.Run(ctx, fctx, nil)
	if err != nil {
		metrics.RetrievalFailures.WithLabelValues("catalog").Inc()
		a.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("cold start sampling failed")
		items = nil
	}
	batch.Mode = ModeColdStart
	batch.Entries = toEntries(items)
	a.observe(batch, start)
	return batch, nil
}

// failedCollaborator 返回降级指标的 collaborator 标签
func failedCollaborator(err error) string {
	switch {
	case vector.IsOpen(err):
		return "index_breaker"
	case core.GetDomainError(err) != nil && core.GetDomainError(err).Module == core.ModuleCatalog:
		return "catalog"
	default:
		return "index"
	}
}

// SampleRandom 抽取至多 n 个未曝光物品并写入 FeedState，不足时返回更少。
func (a *Assembler) SampleRandom(ctx context.Context, req Request, n int) ([]Entry, error) {
	node := &recall.Random{N: n, Source: core.SourceColdStart}
	items, err := node.Process(ctx, a.feedContext(ctx, req), nil)
	if err != nil {
		return nil, err
	}
	return toEntries(items), nil
}

func (a *Assembler) feedContext(ctx context.Context, req Request) *core.FeedContext {
	fctx := &core.FeedContext{
		SessionID:     req.SessionID,
		Preference:    req.Preference,
		Catalog:       a.catalog,
		Shown:         req.State,
		Rand:          req.Rand,
		MaxDrawRounds: a.opts.SubstituteAttempts,
	}
	fctx.Eligible = filter.Eligible(ctx, fctx, a.admission)
	return fctx
}

func (a *Assembler) observe(batch *Batch, start time.Time) {
	metrics.BatchesTotal.WithLabelValues(string(batch.Mode)).Inc()
	metrics.BatchSize.Observe(float64(len(batch.Entries)))
	a.logger.Debug().
		Str("mode", string(batch.Mode)).
		Bool("fallback", batch.Fallback).
		Int("size", len(batch.Entries)).
		Dur("took", time.Since(start)).
		Msg("batch assembled")
}

func toEntries(items []*core.Item) []Entry {
	out := make([]Entry, 0, len(items))
	for _, it := range items {
		e := Entry{ItemID: it.ID, Payload: it.Payload, Source: it.Source()}
		if d, ok := it.Payload["description"].(string); ok {
			e.Description = d
		}
		out = append(out, e)
	}
	return out
}
