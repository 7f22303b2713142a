package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/viterin/vek/vek32"

	"github.com/rushteam/feedkit/core"
)

// MemoryVectorIndex 是内存暴力检索的候选索引，用于测试/开发/小规模目录。
//
// 特点：
//   - 内部下标与构建时的 ID 顺序一致，同分结果按下标升序
//   - 支持余弦相似度、欧氏距离、内积
//   - 线程安全
type MemoryVectorIndex struct {
	mu        sync.RWMutex
	ids       []string
	vectors   [][]float32
	norms     []float32
	dimension int
	metric    string
}

// NewMemoryVectorIndex 按 ids 顺序构建索引，vectors[i] 对应 ids[i]。
func NewMemoryVectorIndex(ids []string, vectors [][]float32, metric string) (*MemoryVectorIndex, error) {
	if len(ids) != len(vectors) {
		return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput, "ids and vectors length mismatch")
	}
	if metric == "" {
		metric = string(core.MetricCosine)
	}
	if !core.ValidateVectorMetric(metric) {
		return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput, fmt.Sprintf("unsupported metric %q", metric))
	}
	idx := &MemoryVectorIndex{metric: metric}
	for i, vec := range vectors {
		if len(vec) == 0 {
			continue
		}
		if idx.dimension == 0 {
			idx.dimension = len(vec)
		}
		if len(vec) != idx.dimension {
			return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput,
				fmt.Sprintf("vector %q has dimension %d, expected %d", ids[i], len(vec), idx.dimension))
		}
		idx.ids = append(idx.ids, ids[i])
		idx.vectors = append(idx.vectors, vec)
		idx.norms = append(idx.norms, float32(math.Sqrt(float64(vek32.Dot(vec, vec)))))
	}
	return idx, nil
}

// NewMemoryVectorIndexFromCatalog 以 catalog.Keys() 的顺序构建索引，没有向量的物品不入索引。
func NewMemoryVectorIndexFromCatalog(ctx context.Context, catalog core.Catalog, metric string) (*MemoryVectorIndex, error) {
	keys := catalog.Keys()
	vectors := make([][]float32, len(keys))
	for i, id := range keys {
		item, err := catalog.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		vectors[i] = item.Vector
	}
	return NewMemoryVectorIndex(keys, vectors, metric)
}

func (m *MemoryVectorIndex) Name() string { return "memory_vector" }

// Dimension 返回索引向量维度
func (m *MemoryVectorIndex) Dimension() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimension
}

// Len 返回索引中的向量数
func (m *MemoryVectorIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

// Search 实现 core.VectorService 接口
func (m *MemoryVectorIndex) Search(ctx context.Context, req *core.VectorSearchRequest) (*core.VectorSearchResult, error) {
	if req == nil {
		return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput, "vector search request is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.ids) == 0 {
		return &core.VectorSearchResult{}, nil
	}
	if len(req.Vector) != m.dimension {
		return nil, core.NewDomainError(core.ModuleIndex, core.ErrorCodeInvalidInput, "vector dimension mismatch")
	}

	topK := req.TopK
	if topK <= 0 {
		topK = 10
	}
	metric := req.Metric
	if metric == "" {
		metric = m.metric
	}

	queryNorm := float32(math.Sqrt(float64(vek32.Dot(req.Vector, req.Vector))))
	scored := make([]core.VectorSearchItem, len(m.ids))
	for i, vec := range m.vectors {
		var score float64
		switch core.MetricType(metric) {
		case core.MetricEuclidean:
			score = 1.0 / (1.0 + float64(vek32.Distance(req.Vector, vec)))
		case core.MetricInnerProduct:
			score = float64(vek32.Dot(req.Vector, vec))
		default:
			if queryNorm == 0 || m.norms[i] == 0 {
				score = 0
			} else {
				score = float64(vek32.Dot(req.Vector, vec) / (queryNorm * m.norms[i]))
			}
		}
		scored[i] = core.VectorSearchItem{ID: m.ids[i], Score: score}
	}

	// 稳定排序：同分按索引下标
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return &core.VectorSearchResult{Items: scored}, nil
}

// Close 实现 core.VectorService 接口
func (m *MemoryVectorIndex) Close() error {
	return nil
}

var _ core.VectorService = (*MemoryVectorIndex)(nil)
