package core

import "context"

// VectorService 是候选向量检索服务的领域接口（CandidateIndex）。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store、vector）实现
//   - 索引本身由外部预先构建，引擎只做查询
//   - 查询向量缺失或维度不符时，引擎侧不会发起调用
//
// 实现：
//   - store.MemoryVectorIndex：暴力检索，作为参考实现
//   - vector.BreakerIndex：为任意实现加熔断保护
type VectorService interface {
	// Search 向量搜索，结果按相似度降序，长度 <= TopK
	Search(ctx context.Context, req *VectorSearchRequest) (*VectorSearchResult, error)

	// Close 关闭连接
	Close() error
}

// VectorSearchRequest 向量搜索请求
type VectorSearchRequest struct {
	// Vector 查询向量（float32，与索引精度一致）
	Vector []float32

	// TopK 返回 TopK 个最相似的结果
	TopK int

	// Metric 距离度量方式：cosine / euclidean / inner_product
	Metric string
}

// VectorSearchItem 单个向量搜索结果项
type VectorSearchItem struct {
	// ID 物品 ID
	ID string

	// Score 相似度分数
	Score float64
}

// VectorSearchResult 向量搜索结果
type VectorSearchResult struct {
	// Items 搜索结果项列表（按相似度排序，同分按索引顺序）
	Items []VectorSearchItem
}

// ValidateVectorMetric 验证距离度量类型
func ValidateVectorMetric(metric string) bool {
	switch MetricType(metric) {
	case MetricCosine, MetricEuclidean, MetricInnerProduct:
		return true
	default:
		return false
	}
}

// MetricType 距离度量类型
type MetricType string

const (
	MetricCosine       MetricType = "cosine"
	MetricEuclidean    MetricType = "euclidean"
	MetricInnerProduct MetricType = "inner_product"
)
