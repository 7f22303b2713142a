package filter

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// ExposedFilter 过滤本会话已下发过的物品（FeedState）。
type ExposedFilter struct{}

func (f *ExposedFilter) Name() string {
	return "exposed"
}

func (f *ExposedFilter) ShouldFilter(_ context.Context, fctx *core.FeedContext, item *core.CatalogItem) (bool, error) {
	if fctx == nil || fctx.Shown == nil {
		return false, nil
	}
	return fctx.Shown.Contains(item.ID), nil
}
