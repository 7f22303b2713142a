package rerank

import (
	"context"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
)

// Shuffle 用会话注入的随机源打乱批次顺序，下发时不保留相似度排序。
type Shuffle struct{}

func (n *Shuffle) Name() string        { return "rerank.shuffle" }
func (n *Shuffle) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *Shuffle) Process(
	_ context.Context,
	fctx *core.FeedContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) < 2 || fctx.Rand == nil {
		return items, nil
	}
	fctx.Rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
	return items, nil
}
