package recall

import (
	"context"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/utils"
)

// Random 均匀随机抽取 N 个未曝光物品追加到输入之后，并立即写入 FeedState。
// 冷启动与多样性配额都用它，区别只在 Source 标签。
// 可选物品不足 N 个时返回更少，不报错。
type Random struct {
	N      int
	Source string
}

func (n *Random) Name() string        { return "recall.random" }
func (n *Random) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Random) Process(
	ctx context.Context,
	fctx *core.FeedContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 {
		return items, nil
	}
	picks, err := fctx.DrawUnseen(ctx, n.N)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable, "random sample failed", err)
	}

	source := n.Source
	if source == "" {
		source = core.SourceDiversity
	}
	out := make([]*core.Item, 0, len(items)+len(picks))
	out = append(out, items...)
	for _, pick := range picks {
		if !fctx.Shown.Add(pick.ID) {
			continue
		}
		it := core.NewItem(pick.ID)
		it.Payload = pick.Payload
		it.PutLabel(core.LabelRecallSource, utils.Label{Value: source, Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
