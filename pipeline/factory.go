package pipeline

import "fmt"

// NodeConfig 是单个 Node 的配置。
type NodeConfig struct {
	Type   string         `yaml:"type" json:"type"`     // recall.similar / rerank.substitute 等
	Config map[string]any `yaml:"config" json:"config"` // Node 特定配置
}

// BuilderFunc 根据配置构建 Node
type BuilderFunc func(config map[string]any) (Node, error)

// NodeFactory 根据配置构建 Node 实例。
type NodeFactory struct {
	builders map[string]BuilderFunc
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{builders: make(map[string]BuilderFunc)}
}

// Register 注册 Node 构建器，同名覆盖。
func (f *NodeFactory) Register(nodeType string, builder BuilderFunc) {
	f.builders[nodeType] = builder
}

// Build 根据类型和配置构建 Node。
func (f *NodeFactory) Build(nodeType string, config map[string]any) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, fmt.Errorf("unknown node type: %s", nodeType)
	}
	return builder(config)
}

// BuildPipeline 按顺序构建整条 Pipeline
func (f *NodeFactory) BuildPipeline(nodes []NodeConfig) (*Pipeline, error) {
	out := make([]Node, 0, len(nodes))
	for _, nc := range nodes {
		node, err := f.Build(nc.Type, nc.Config)
		if err != nil {
			return nil, fmt.Errorf("build node %s: %w", nc.Type, err)
		}
		out = append(out, node)
	}
	return &Pipeline{Nodes: out}, nil
}
