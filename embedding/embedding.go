// Package embedding 根据交互历史维护偏好向量（PreferenceVector）。
package embedding

import (
	"gonum.org/v1/gonum/floats"

	"github.com/rushteam/feedkit/history"
	"github.com/rushteam/feedkit/pkg/metrics"
)

// Options 偏好向量的选取与重算参数
type Options struct {
	// WarmThreshold 入选记录的最低分
	WarmThreshold float64 `yaml:"warm_threshold" json:"warm_threshold"`
	// WindowSize 取最近更新的记录数
	WindowSize int `yaml:"window_size" json:"window_size"`
	// RefreshCadence 每多少次时长上报重算一次
	RefreshCadence int `yaml:"refresh_cadence" json:"refresh_cadence"`
}

// DefaultOptions 返回默认参数
func DefaultOptions() Options {
	return Options{
		WarmThreshold:  2,
		WindowSize:     5,
		RefreshCadence: 5,
	}
}

// Compute 对记录做加权平均：权重为 score+1（负值截断为 0）并归一化到和为 1。
// 维度与第一条记录不一致的记录被跳过；没有可用记录或权重全为 0 时 ok=false。
func Compute(records []history.Record) (vec []float32, weights []float64, ok bool) {
	dim := 0
	used := make([]history.Record, 0, len(records))
	for _, rec := range records {
		if len(rec.Vector) == 0 {
			continue
		}
		if dim == 0 {
			dim = len(rec.Vector)
		}
		if len(rec.Vector) != dim {
			continue
		}
		used = append(used, rec)
	}
	if len(used) == 0 {
		return nil, nil, false
	}

	weights = make([]float64, len(used))
	for i, rec := range used {
		weights[i] = max(rec.Score+1, 0)
	}
	total := floats.Sum(weights)
	if total <= 0 {
		return nil, nil, false
	}
	floats.Scale(1/total, weights)

	acc := make([]float64, dim)
	row := make([]float64, dim)
	for i, rec := range used {
		for j, x := range rec.Vector {
			row[j] = float64(x)
		}
		floats.AddScaled(acc, weights[i], row)
	}

	vec = make([]float32, dim)
	for j, x := range acc {
		vec[j] = float32(x)
	}
	return vec, weights, true
}

// Tracker 持有当前偏好向量和时长上报计数，每个会话一份。
type Tracker struct {
	opts    Options
	vector  []float32
	events  int
	refresh int
}

// NewTracker 创建 Tracker，非正参数回落到默认值
func NewTracker(opts Options) *Tracker {
	def := DefaultOptions()
	if opts.WindowSize <= 0 {
		opts.WindowSize = def.WindowSize
	}
	if opts.RefreshCadence <= 0 {
		opts.RefreshCadence = def.RefreshCadence
	}
	return &Tracker{opts: opts}
}

// Observe 记一次时长上报，计数达到 RefreshCadence 的整数倍时重算，返回是否触发了重算。
func (t *Tracker) Observe(h *history.History) bool {
	t.events++
	if t.events%t.opts.RefreshCadence != 0 {
		return false
	}
	t.Refresh(h)
	return true
}

// Refresh 立即重算。没有入选记录时保留原向量并返回 false。
func (t *Tracker) Refresh(h *history.History) bool {
	t.refresh++
	vec, _, ok := Compute(h.Recent(t.opts.WarmThreshold, t.opts.WindowSize))
	if !ok {
		metrics.PreferenceRefreshes.WithLabelValues("skipped").Inc()
		return false
	}
	t.vector = vec
	metrics.PreferenceRefreshes.WithLabelValues("updated").Inc()
	return true
}

// Vector 返回当前偏好向量副本，nil 表示尚未生成
func (t *Tracker) Vector() []float32 {
	if t.vector == nil {
		return nil
	}
	return append([]float32(nil), t.vector...)
}

// Options 返回生效的参数
func (t *Tracker) Options() Options { return t.opts }

// Present 是否已有偏好向量
func (t *Tracker) Present() bool { return t.vector != nil }

// Events 已观察到的时长上报次数
func (t *Tracker) Events() int { return t.events }

// Refreshes 已触发的重算次数（含被跳过的）
func (t *Tracker) Refreshes() int { return t.refresh }

// Restore 恢复计数（快照恢复时使用），不改变偏好向量
func (t *Tracker) Restore(events int) {
	if events > 0 {
		t.events = events
	}
}
