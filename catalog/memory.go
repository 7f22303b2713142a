// Package catalog 提供内容目录（core.Catalog）的内存实现与加载器。
package catalog

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rushteam/feedkit/core"
)

// MemoryCatalog 是只读为主的内存目录，Keys 保持加载顺序，作为候选索引的下标顺序。
type MemoryCatalog struct {
	mu    sync.RWMutex
	keys  []string
	items map[string]*core.CatalogItem
	dim   int
}

// New 按给定顺序构建目录。ID 为空、重复或向量维度不一致时返回 INVALID_INPUT。
func New(items []*core.CatalogItem) (*MemoryCatalog, error) {
	c := &MemoryCatalog{
		keys:  make([]string, 0, len(items)),
		items: make(map[string]*core.CatalogItem, len(items)),
	}
	for _, item := range items {
		if err := c.add(item); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *MemoryCatalog) add(item *core.CatalogItem) error {
	if item == nil || item.ID == "" {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog item without id")
	}
	if _, ok := c.items[item.ID]; ok {
		return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, fmt.Sprintf("duplicate catalog item %q", item.ID))
	}
	if len(item.Vector) > 0 {
		if c.dim == 0 {
			c.dim = len(item.Vector)
		} else if len(item.Vector) != c.dim {
			return core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
				fmt.Sprintf("item %q has dimension %d, expected %d", item.ID, len(item.Vector), c.dim))
		}
	}
	c.keys = append(c.keys, item.ID)
	c.items[item.ID] = item
	return nil
}

// Get 读取物品，未知 ID 返回 NOT_FOUND
func (c *MemoryCatalog) Get(_ context.Context, id string) (*core.CatalogItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	if !ok {
		return nil, core.ErrCatalogNotFound
	}
	return item, nil
}

// SampleUniform 在未被排除的物品上做部分 Fisher-Yates，返回至多 n 个不同 ID。
func (c *MemoryCatalog) SampleUniform(rng *rand.Rand, exclude func(id string) bool, n int) []string {
	if n <= 0 {
		return nil
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	c.mu.RLock()
	pool := make([]string, 0, len(c.keys))
	for _, id := range c.keys {
		if exclude == nil || !exclude(id) {
			pool = append(pool, id)
		}
	}
	c.mu.RUnlock()

	if n > len(pool) {
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

// Keys 返回全部 ID 的副本
func (c *MemoryCatalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.keys...)
}

// Len 返回物品数
func (c *MemoryCatalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.keys)
}

// Dimension 返回向量维度，目录中没有向量时为 0
func (c *MemoryCatalog) Dimension() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dim
}

// Items 按 Keys 顺序返回全部物品
func (c *MemoryCatalog) Items() []*core.CatalogItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*core.CatalogItem, len(c.keys))
	for i, id := range c.keys {
		out[i] = c.items[id]
	}
	return out
}

var _ core.Catalog = (*MemoryCatalog)(nil)
