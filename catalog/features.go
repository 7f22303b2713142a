package catalog

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/feast"
	"github.com/rushteam/feedkit/pkg/conv"
)

// FeatureOptions 描述如何从 Feast 在线特征组装目录。
type FeatureOptions struct {
	// EntityKey 实体列名，例如 "video_id"
	EntityKey string
	// VectorFeature 向量特征引用，例如 "video_features:embedding"
	VectorFeature string
	// PayloadFeatures 透传字段引用；payload key 取 ":" 之后的部分
	PayloadFeatures []string
	// ChunkSize 每次请求的实体数
	ChunkSize int
	// Concurrency 并发请求数
	Concurrency int
}

func (o *FeatureOptions) normalize() error {
	if o.EntityKey == "" || o.VectorFeature == "" {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "entity key and vector feature are required")
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = 100
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 4
	}
	return nil
}

// LoadFromFeatures 按 ids 顺序从 Feast 拉取向量与 payload 并构建目录。
// 分块并发请求，任一块失败则整体失败（UNAVAILABLE）；缺少向量的实体被跳过。
func LoadFromFeatures(ctx context.Context, client feast.Client, ids []string, opts FeatureOptions) (*MemoryCatalog, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	features := append([]string{opts.VectorFeature}, opts.PayloadFeatures...)

	chunks := (len(ids) + opts.ChunkSize - 1) / opts.ChunkSize
	results := make([][]*core.CatalogItem, chunks)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Concurrency)
	for c := 0; c < chunks; c++ {
		start := c * opts.ChunkSize
		end := min(start+opts.ChunkSize, len(ids))
		chunk := ids[start:end]
		idx := c
		eg.Go(func() error {
			rows := make([]map[string]any, len(chunk))
			for i, id := range chunk {
				rows[i] = map[string]any{opts.EntityKey: id}
			}
			resp, err := client.GetOnlineFeatures(egCtx, &feast.GetOnlineFeaturesRequest{
				Features:   features,
				EntityRows: rows,
			})
			if err != nil {
				return core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable,
					fmt.Sprintf("fetch features for chunk %d", idx), err)
			}
			results[idx] = itemsFromVectors(chunk, resp.FeatureVectors, opts)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	items := make([]*core.CatalogItem, 0, len(ids))
	for _, chunk := range results {
		items = append(items, chunk...)
	}
	return New(items)
}

func itemsFromVectors(ids []string, vectors []feast.FeatureVector, opts FeatureOptions) []*core.CatalogItem {
	out := make([]*core.CatalogItem, 0, len(ids))
	for i, fv := range vectors {
		if i >= len(ids) {
			break
		}
		vec, ok := conv.ToFloat32Slice(fv.Values[opts.VectorFeature])
		if !ok || len(vec) == 0 {
			continue
		}
		payload := make(map[string]any, len(opts.PayloadFeatures))
		for _, ref := range opts.PayloadFeatures {
			if v, ok := fv.Values[ref]; ok {
				payload[payloadKey(ref)] = v
			}
		}
		out = append(out, &core.CatalogItem{ID: ids[i], Vector: vec, Payload: payload})
	}
	return out
}

func payloadKey(ref string) string {
	if i := strings.LastIndex(ref, ":"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
