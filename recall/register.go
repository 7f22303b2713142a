package recall

import (
	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/conv"
)

// RegisterNodes 注册召回 Node 构建器：
//
//	recall.similar  {k, metric, dimension}
//	recall.random   {n, source}
func RegisterNodes(f *pipeline.NodeFactory, index core.VectorService) {
	f.Register("recall.similar", func(cfg map[string]any) (pipeline.Node, error) {
		metric, _ := conv.ToString(cfg["metric"])
		return &Similar{
			Index:     index,
			TopK:      intValue(cfg, "k"),
			Metric:    metric,
			Dimension: intValue(cfg, "dimension"),
		}, nil
	})
	f.Register("recall.random", func(cfg map[string]any) (pipeline.Node, error) {
		source, _ := conv.ToString(cfg["source"])
		return &Random{N: intValue(cfg, "n"), Source: source}, nil
	})
}

func intValue(cfg map[string]any, key string) int {
	f, ok := conv.ToFloat64(cfg[key])
	if !ok {
		return 0
	}
	return int(f)
}
