package filter

import (
	"context"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/dsl"
)

// ExprFilter 用 CEL 表达式判断物品是否可下发，表达式为 false 时过滤。
//
// 示例：
//
//	item.payload.lang == "en" && item.dim > 0
type ExprFilter struct {
	eval *dsl.Eval
}

// NewExprFilter 编译表达式，空表达式返回 (nil, nil)。
func NewExprFilter(expr string) (*ExprFilter, error) {
	eval, err := dsl.NewEval(expr)
	if err != nil || eval == nil {
		return nil, err
	}
	return &ExprFilter{eval: eval}, nil
}

func (f *ExprFilter) Name() string {
	return "ineligible"
}

func (f *ExprFilter) ShouldFilter(_ context.Context, _ *core.FeedContext, item *core.CatalogItem) (bool, error) {
	ok, err := f.eval.Match(item)
	if err != nil {
		return false, err
	}
	return !ok, nil
}
