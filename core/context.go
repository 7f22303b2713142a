package core

import (
	"context"
	"math/rand"
)

// ShownSet 是本会话已下发物品的集合（FeedState），仅用于去重判断。
type ShownSet interface {
	Contains(id string) bool
	// Add 追加 id，已存在时返回 false
	Add(id string) bool
	Len() int
}

// FeedContext 承载一次批次组装所需的会话状态，贯穿整个 Pipeline 透传。
//
// 它由 Session 在持锁状态下构造，Node 只在本次请求内使用：
//   - Preference 为 nil 表示尚无偏好向量（冷启动）
//   - Shown 会被 Node 追加（每确定一个下发 id 立即写入）
//   - Rand 是注入的随机源，所有采样与打乱都必须使用它
type FeedContext struct {
	SessionID  string
	Preference []float32
	Catalog    Catalog
	Shown      ShownSet
	Rand       *rand.Rand

	// Eligible 判断目录物品是否允许下发（可选，nil 表示全部允许）
	Eligible func(item *CatalogItem) bool

	// MaxDrawRounds 限制 DrawUnseen 的重抽轮数，<=0 时使用默认值
	MaxDrawRounds int
}

const defaultDrawRounds = 8

// Admit 返回可下发的目录物品：未曝光、目录中存在且满足 Eligible。
// 目录查询失败（非 NOT_FOUND）时返回错误。
func (fctx *FeedContext) Admit(ctx context.Context, id string) (*CatalogItem, bool, error) {
	if id == "" || fctx.Shown.Contains(id) {
		return nil, false, nil
	}
	item, err := fctx.Catalog.Get(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if fctx.Eligible != nil && !fctx.Eligible(item) {
		return nil, false, nil
	}
	return item, true, nil
}

// DrawUnseen 从目录中均匀随机抽取至多 n 个互不相同、可下发的物品，不写入 Shown。
// 不满足 Eligible 的候选会被记下并重抽，重抽轮数有上限；目录耗尽时返回更少的物品。
func (fctx *FeedContext) DrawUnseen(ctx context.Context, n int) ([]*CatalogItem, error) {
	if n <= 0 || fctx.Catalog == nil {
		return nil, nil
	}
	rounds := fctx.MaxDrawRounds
	if rounds <= 0 {
		rounds = defaultDrawRounds
	}

	tried := make(map[string]struct{}, n)
	exclude := func(id string) bool {
		if _, ok := tried[id]; ok {
			return true
		}
		return fctx.Shown.Contains(id)
	}

	out := make([]*CatalogItem, 0, n)
	for round := 0; round < rounds && len(out) < n; round++ {
		ids := fctx.Catalog.SampleUniform(fctx.Rand, exclude, n-len(out))
		if len(ids) == 0 {
			break
		}
		for _, id := range ids {
			tried[id] = struct{}{}
			item, ok, err := fctx.Admit(ctx, id)
			if err != nil {
				return out, err
			}
			if ok {
				out = append(out, item)
			}
		}
	}
	return out, nil
}
