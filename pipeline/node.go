package pipeline

import (
	"context"

	"github.com/rushteam/feedkit/core"
)

// Kind 用于标记 Node 类型，方便观测/编排。
type Kind string

const (
	KindRecall Kind = "recall" // 召回阶段：生成候选（相似检索、随机补位）
	KindReRank Kind = "rerank" // 重排阶段：替换已曝光候选、打乱顺序
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态；追加型召回会保留输入并在末尾追加。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		fctx *core.FeedContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
