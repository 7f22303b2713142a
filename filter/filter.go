package filter

import (
	"context"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/logging"
)

// Filter 判断一个目录物品是否不能下发。
// 返回 true 表示应该过滤，false 表示保留；Name 同时作为替换原因上报。
type Filter interface {
	Name() string

	ShouldFilter(ctx context.Context, fctx *core.FeedContext, item *core.CatalogItem) (bool, error)
}

// First 返回第一个命中的过滤器名称，全部未命中返回空串。
// 过滤器出错按命中处理，无法判断资格的物品不下发。
func First(ctx context.Context, fctx *core.FeedContext, item *core.CatalogItem, filters []Filter) string {
	for _, f := range filters {
		hit, err := f.ShouldFilter(ctx, fctx, item)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("filter", f.Name()).Str("item_id", item.ID).Msg("filter error, item excluded")
			return f.Name()
		}
		if hit {
			return f.Name()
		}
	}
	return ""
}

// Eligible 把过滤器组合成 core.FeedContext.Eligible
func Eligible(ctx context.Context, fctx *core.FeedContext, filters []Filter) func(*core.CatalogItem) bool {
	if len(filters) == 0 {
		return nil
	}
	return func(item *core.CatalogItem) bool {
		return First(ctx, fctx, item, filters) == ""
	}
}
