package recall

import (
	"context"
	"math"
	"strconv"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pipeline"
	"github.com/rushteam/feedkit/pkg/utils"
)

// Similar 是按偏好向量做近邻检索的召回 Node。
//
// 输出按相似度排序的候选，不做去重也不写入 FeedState，
// 已曝光、未知或不可下发的候选由后续 rerank.Substitute 处理。
// 偏好向量缺失、含 NaN/Inf 或维度不符时不发起检索，原样返回输入。
type Similar struct {
	Index  core.VectorService
	TopK   int
	Metric string

	// Dimension 索引向量维度，>0 时校验查询向量
	Dimension int
}

func (n *Similar) Name() string        { return "recall.similar" }
func (n *Similar) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Similar) Process(
	ctx context.Context,
	fctx *core.FeedContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Index == nil || n.TopK <= 0 || !n.validQuery(fctx.Preference) {
		return items, nil
	}

	res, err := n.Index.Search(ctx, &core.VectorSearchRequest{
		Vector: fctx.Preference,
		TopK:   n.TopK,
		Metric: n.Metric,
	})
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleIndex, core.ErrorCodeUnavailable, "candidate search failed", err)
	}

	hits := res.Items
	if len(hits) > n.TopK {
		hits = hits[:n.TopK]
	}
	out := make([]*core.Item, 0, len(items)+len(hits))
	out = append(out, items...)
	for rank, hit := range hits {
		it := core.NewItem(hit.ID)
		it.Score = hit.Score
		it.PutLabel(core.LabelRecallSource, utils.Label{Value: core.SourceSimilar, Source: "recall"})
		it.PutLabel(core.LabelRecallRank, utils.Label{Value: strconv.Itoa(rank), Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

func (n *Similar) validQuery(vec []float32) bool {
	if len(vec) == 0 {
		return false
	}
	if n.Dimension > 0 && len(vec) != n.Dimension {
		return false
	}
	for _, x := range vec {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return false
		}
	}
	return true
}
