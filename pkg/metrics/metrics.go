// Package metrics 定义 feed 引擎的 Prometheus 指标。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchesTotal 按组装模式（cold_start / warm）统计下发批次
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_batches_total",
			Help: "Total number of delivered feed batches by assembly mode",
		},
		[]string{"mode"},
	)

	// BatchSize 每个批次的物品数
	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_batch_size",
			Help:    "Number of items in each delivered batch",
			Buckets: []float64{0, 1, 2, 3, 5, 7, 10, 15, 20},
		},
	)

	// Substitutions 相似候选被随机物品替换的次数，reason: shown / unknown / ineligible
	Substitutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_substitutions_total",
			Help: "Total number of similarity candidates replaced by a random unseen item",
		},
		[]string{"reason"},
	)

	// SlotsDropped 目录耗尽导致无法替换而丢弃的位置
	SlotsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_slots_dropped_total",
			Help: "Total number of batch slots dropped because no unseen item remained",
		},
	)

	// RetrievalFailures 协作服务故障并降级为冷启动的次数
	RetrievalFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_retrieval_failures_total",
			Help: "Total number of retrieval failures downgraded to cold start",
		},
		[]string{"collaborator"},
	)

	// PreferenceRefreshes 偏好向量重算次数，result: updated / skipped
	PreferenceRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_preference_refreshes_total",
			Help: "Total number of preference vector refresh attempts",
		},
		[]string{"result"},
	)

	// InteractionEvents 交互事件数，kind: like / comment / share / save / duration
	InteractionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_interaction_events_total",
			Help: "Total number of accepted viewer interaction events",
		},
		[]string{"kind"},
	)

	// ActiveSessions 当前会话表中的会话数
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_active_sessions",
			Help: "Current number of sessions held in memory",
		},
	)

	// SnapshotWrites 历史快照写入结果，result: ok / error
	SnapshotWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_snapshot_writes_total",
			Help: "Total number of interaction history snapshot writes",
		},
		[]string{"result"},
	)
)
