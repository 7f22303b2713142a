// Package history 维护单个会话内的交互记录（InteractionHistory）。
//
// History 不是并发安全的，由 session.Session 的锁串行化访问。
package history

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/scoring"
)

// Record 是某个物品的交互记录。
type Record struct {
	ItemID              string
	Vector              []float32
	Interactions        map[scoring.Kind]float64
	Score               float64
	ViewDurationSeconds float64

	// RewatchCount 是最近一次时长上报估算出的重看次数
	RewatchCount int

	// UpdatedSeq 是最近一次修改时的会话内序号，用于按最近更新排序
	UpdatedSeq uint64
}

func (r *Record) clone() Record {
	out := *r
	out.Vector = append([]float32(nil), r.Vector...)
	out.Interactions = make(map[scoring.Kind]float64, len(r.Interactions))
	for k, v := range r.Interactions {
		out.Interactions[k] = v
	}
	return out
}

func (r *Record) recompute() {
	r.Score = scoring.TotalScore(r.Interactions)
}

// History 保存 itemID → Record。
type History struct {
	catalog       core.Catalog
	table         scoring.PointTable
	maxItemLength float64

	records map[string]*Record
	seq     uint64
}

// New 创建交互历史。maxItemLengthSeconds<=0 时使用 scoring.DefaultMaxItemLengthSeconds。
func New(catalog core.Catalog, table scoring.PointTable, maxItemLengthSeconds float64) *History {
	if maxItemLengthSeconds <= 0 {
		maxItemLengthSeconds = scoring.DefaultMaxItemLengthSeconds
	}
	return &History{
		catalog:       catalog,
		table:         table,
		maxItemLength: maxItemLengthSeconds,
		records:       make(map[string]*Record),
	}
}

// RecordToggle 打开或关闭某个交互。关闭一个不存在的交互不是错误。
// 交互类型与物品 ID 都在修改前校验，失败时历史保持不变。
func (h *History) RecordToggle(ctx context.Context, itemID string, kind scoring.Kind, active bool) (*Record, error) {
	if !scoring.IsToggleable(kind) {
		return nil, core.NewDomainError(core.ModuleHistory, core.ErrorCodeInvalidInput, fmt.Sprintf("kind %q cannot be toggled", kind))
	}
	value, err := h.table.ValueFor(kind)
	if err != nil {
		return nil, err
	}
	rec, err := h.resolve(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if active {
		rec.Interactions[kind] = value
	} else {
		delete(rec.Interactions, kind)
	}
	h.touch(rec)
	out := rec.clone()
	return &out, nil
}

// RecordDuration 累加一次观看时长上报（毫秒）。
// view_time 与 rewatch_count 按本次上报的时长计算，覆盖旧值。
func (h *History) RecordDuration(ctx context.Context, itemID string, durationMillis float64) (*Record, error) {
	if math.IsNaN(durationMillis) || math.IsInf(durationMillis, 0) || durationMillis < 0 {
		return nil, core.NewDomainError(core.ModuleHistory, core.ErrorCodeInvalidInput, fmt.Sprintf("invalid duration %v", durationMillis))
	}
	rec, err := h.resolve(ctx, itemID)
	if err != nil {
		return nil, err
	}

	seconds := durationMillis / 1000
	rec.ViewDurationSeconds += seconds
	rec.RewatchCount = scoring.RewatchCount(seconds, h.maxItemLength)
	rec.Interactions[scoring.KindRewatchCount] = float64(rec.RewatchCount) * h.table.Rewatch
	rec.Interactions[scoring.KindViewTime] = h.table.ViewTimeValue(seconds)
	h.touch(rec)
	out := rec.clone()
	return &out, nil
}

// resolve 返回已有记录，或从目录读取物品后创建新记录（尚未写入 records 之前不会失败）。
func (h *History) resolve(ctx context.Context, itemID string) (*Record, error) {
	if rec, ok := h.records[itemID]; ok {
		return rec, nil
	}
	if itemID == "" {
		return nil, core.NewDomainError(core.ModuleHistory, core.ErrorCodeInvalidInput, "empty item id")
	}
	item, err := h.catalog.Get(ctx, itemID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, core.WrapDomainError(core.ModuleHistory, core.ErrorCodeNotFound, fmt.Sprintf("item %q not in catalog", itemID), err)
		}
		return nil, err
	}
	rec := &Record{
		ItemID:       itemID,
		Vector:       append([]float32(nil), item.Vector...),
		Interactions: make(map[scoring.Kind]float64),
	}
	h.records[itemID] = rec
	return rec, nil
}

func (h *History) touch(rec *Record) {
	rec.recompute()
	h.seq++
	rec.UpdatedSeq = h.seq
}

// Get 返回记录副本
func (h *History) Get(itemID string) (*Record, bool) {
	rec, ok := h.records[itemID]
	if !ok {
		return nil, false
	}
	out := rec.clone()
	return &out, true
}

// Count 返回有过交互的物品数
func (h *History) Count() int {
	return len(h.records)
}

// Recent 返回 Score >= minScore 的记录中最近更新的 window 条，按更新先后（旧 → 新）排列。
// window<=0 表示不限制。
func (h *History) Recent(minScore float64, window int) []Record {
	selected := make([]*Record, 0, len(h.records))
	for _, rec := range h.records {
		if rec.Score >= minScore {
			selected = append(selected, rec)
		}
	}
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].UpdatedSeq < selected[j].UpdatedSeq
	})
	if window > 0 && len(selected) > window {
		selected = selected[len(selected)-window:]
	}
	out := make([]Record, len(selected))
	for i, rec := range selected {
		out[i] = rec.clone()
	}
	return out
}
