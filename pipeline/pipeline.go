package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/feedkit/core"
)

// Pipeline 把批次组装拆成可组合的 Node 链。
type Pipeline struct {
	Nodes []Node
}

// Run 依次执行 Node，任一 Node 出错即返回，错误带上 Node 名称。
func (p *Pipeline) Run(
	ctx context.Context,
	fctx *core.FeedContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, fctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// Names 返回 Node 名称列表（日志用）
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		names[i] = n.Name()
	}
	return names
}
