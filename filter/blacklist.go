package filter

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// BlacklistFilter 过滤黑名单中的物品。
type BlacklistFilter struct {
	ids map[string]struct{}
}

// NewBlacklistFilter 创建黑名单过滤器，列表为空时返回 nil。
func NewBlacklistFilter(itemIDs []string) *BlacklistFilter {
	if len(itemIDs) == 0 {
		return nil
	}
	ids := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		ids[id] = struct{}{}
	}
	return &BlacklistFilter{ids: ids}
}

func (f *BlacklistFilter) Name() string {
	return "blacklist"
}

func (f *BlacklistFilter) ShouldFilter(_ context.Context, _ *core.FeedContext, item *core.CatalogItem) (bool, error) {
	_, hit := f.ids[item.ID]
	return hit, nil
}
