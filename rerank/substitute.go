package rerank

import (
	"context"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/filter"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/metrics"
	"github.com/rushteam/feedkit/pkg/utils"
)

// ReasonUnknown 候选 ID 在目录中不存在
const ReasonUnknown = "unknown"

// Substitute 按顺序确认候选：可下发的直接写入 FeedState，
// 被过滤（已曝光、黑名单、不可下发）或目录中不存在的，替换为随机未曝光物品以保持批次大小。
//
// 替换结果同样经过去重与准入检查（fctx.DrawUnseen），重抽轮数受 MaxAttempts 限制；
// 目录已无可用物品时丢弃该位置。
type Substitute struct {
	Filters     []filter.Filter
	MaxAttempts int
}

func (n *Substitute) Name() string        { return "rerank.substitute" }
func (n *Substitute) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Substitute) Process(
	ctx context.Context,
	fctx *core.FeedContext,
	items []*core.Item,
) ([]*core.Item, error) {
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		reason, cat, err := n.check(ctx, fctx, it.ID)
		if err != nil {
			return nil, err
		}
		if reason == "" && fctx.Shown.Add(it.ID) {
			it.Payload = cat.Payload
			out = append(out, it)
			continue
		}
		if reason == "" {
			reason = "exposed"
		}

		sub, err := n.replace(ctx, fctx, it, reason)
		if err != nil {
			return nil, err
		}
		if sub == nil {
			metrics.SlotsDropped.Inc()
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

// check 返回拒绝原因，可下发时返回空原因与目录物品。
func (n *Substitute) check(ctx context.Context, fctx *core.FeedContext, id string) (string, *core.CatalogItem, error) {
	cat, err := fctx.Catalog.Get(ctx, id)
	if err != nil {
		if core.IsNotFound(err) {
			return ReasonUnknown, nil, nil
		}
		return "", nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, "catalog lookup failed", err)
	}
	return filter.First(ctx, fctx, cat, n.Filters), cat, nil
}

func (n *Substitute) replace(ctx context.Context, fctx *core.FeedContext, orig *core.Item, reason string) (*core.Item, error) {
	draw := *fctx
	if n.MaxAttempts > 0 {
		draw.MaxDrawRounds = n.MaxAttempts
	}
	picks, err := draw.DrawUnseen(ctx, 1)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, "substitute sample failed", err)
	}
	if len(picks) == 0 || !fctx.Shown.Add(picks[0].ID) {
		return nil, nil
	}
	metrics.Substitutions.WithLabelValues(reason).Inc()

	sub := core.NewItem(picks[0].ID)
	sub.Payload = picks[0].Payload
	sub.PutLabel(core.LabelRecallSource, utils.Label{Value: core.SourceSubstitute, Source: "rerank"})
	sub.PutLabel(core.LabelSubstitutedFor, utils.Label{Value: orig.ID, Source: reason})
	return sub, nil
}
