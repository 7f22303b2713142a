package core

import (
	"context"
	"math/rand"
)

// Catalog 是内容目录的领域接口（外部只读服务）。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（catalog）实现
//   - Keys 的顺序是与候选索引约定的稳定顺序（索引内部下标 → 物品 ID）
//
// 实现：
//   - catalog.MemoryCatalog 实现此接口
type Catalog interface {
	// Get 读取单个物品，未知 ID 返回 NOT_FOUND
	Get(ctx context.Context, id string) (*CatalogItem, error)

	// SampleUniform 从未被 exclude 排除的物品中均匀随机抽取至多 n 个互不相同的 ID
	SampleUniform(rng *rand.Rand, exclude func(id string) bool, n int) []string

	// Keys 按稳定顺序返回所有物品 ID
	Keys() []string

	// Len 返回物品数量
	Len() int
}

// ErrCatalogNotFound 表示目录中不存在该物品
var ErrCatalogNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: item not found")
