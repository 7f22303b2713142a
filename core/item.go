package core

import (
	"github.com/rushteam/feedkit/pkg/conv"
	"github.com/rushteam/feedkit/pkg/utils"
)

// CatalogItem 是内容目录中的一条记录，对引擎只读。
// Vector 维度在一个会话内固定；Payload 原样透传（description、categories 等）。
type CatalogItem struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// Description 返回 payload 中的 description 字段，不存在时返回空串。
func (c *CatalogItem) Description() string {
	if c == nil || c.Payload == nil {
		return ""
	}
	s, _ := conv.ToString(c.Payload["description"])
	return s
}

// Item 是组装链路中的统一承载结构：物品 ID、相似度分数、透传 payload 与标签。
// Labels 用于解释批次中每个位置的来源（similar / substitute / diversity / cold_start）。
type Item struct {
	ID      string
	Score   float64
	Payload map[string]any
	Labels  map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Source 返回召回来源标签的值。
func (it *Item) Source() string {
	if it.Labels == nil {
		return ""
	}
	return it.Labels[LabelRecallSource].Value
}

// 标签 key
const (
	LabelRecallSource   = "recall_source"
	LabelRecallRank     = "recall_rank"
	LabelSubstitutedFor = "substituted_for"
)

// 召回来源取值
const (
	SourceSimilar    = "similar"
	SourceSubstitute = "substitute"
	SourceDiversity  = "diversity"
	SourceColdStart  = "cold_start"
)
