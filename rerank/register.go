package rerank

import (
	"github.com/rushteam/feedkit/filter"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/conv"
)

// RegisterNodes 注册重排 Node 构建器：
//
//	rerank.substitute  {max_attempts}
//	rerank.shuffle     {}
func RegisterNodes(f *pipeline.NodeFactory, filters []filter.Filter) {
	f.Register("rerank.substitute", func(cfg map[string]any) (pipeline.Node, error) {
		attempts, _ := conv.ToFloat64(cfg["max_attempts"])
		return &Substitute{Filters: filters, MaxAttempts: int(attempts)}, nil
	})
	f.Register("rerank.shuffle", func(map[string]any) (pipeline.Node, error) {
		return &Shuffle{}, nil
	})
}
