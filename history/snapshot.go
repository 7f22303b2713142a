package history

import (
	"fmt"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/scoring"
)

// RecordView 是 Record 的可序列化视图，供外部存储持久化。
type RecordView struct {
	Vector              []float32          `json:"vector"`
	Interactions        map[string]float64 `json:"interactions"`
	Score               float64            `json:"score"`
	ViewDurationSeconds float64            `json:"view_duration_seconds"`
	RewatchCount        int                `json:"rewatch_count"`
	UpdatedSeq          uint64             `json:"updated_seq"`
}

// Snapshot 以 itemID 为 key 导出全部记录
func (h *History) Snapshot() map[string]RecordView {
	out := make(map[string]RecordView, len(h.records))
	for id, rec := range h.records {
		interactions := make(map[string]float64, len(rec.Interactions))
		for k, v := range rec.Interactions {
			interactions[string(k)] = v
		}
		out[id] = RecordView{
			Vector:              append([]float32(nil), rec.Vector...),
			Interactions:        interactions,
			Score:               rec.Score,
			ViewDurationSeconds: rec.ViewDurationSeconds,
			RewatchCount:        rec.RewatchCount,
			UpdatedSeq:          rec.UpdatedSeq,
		}
	}
	return out
}

// Restore 用快照替换当前记录。Score 按 interactions 重新求和，不信任快照里的值。
func (h *History) Restore(snapshot map[string]RecordView) error {
	records := make(map[string]*Record, len(snapshot))
	var maxSeq uint64
	for id, view := range snapshot {
		if id == "" {
			return core.NewDomainError(core.ModuleHistory, core.ErrorCodeInvalidInput, "snapshot contains empty item id")
		}
		if view.ViewDurationSeconds < 0 {
			return core.NewDomainError(core.ModuleHistory, core.ErrorCodeInvalidInput, fmt.Sprintf("snapshot item %q has negative duration", id))
		}
		rec := &Record{
			ItemID:              id,
			Vector:              append([]float32(nil), view.Vector...),
			Interactions:        make(map[scoring.Kind]float64, len(view.Interactions)),
			ViewDurationSeconds: view.ViewDurationSeconds,
			RewatchCount:        view.RewatchCount,
			UpdatedSeq:          view.UpdatedSeq,
		}
		for k, v := range view.Interactions {
			rec.Interactions[scoring.Kind(k)] = v
		}
		rec.recompute()
		if rec.UpdatedSeq > maxSeq {
			maxSeq = rec.UpdatedSeq
		}
		records[id] = rec
	}
	h.records = records
	h.seq = maxSeq
	return nil
}
