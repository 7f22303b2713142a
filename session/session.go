// Package session 把交互历史、偏好向量与 FeedState 收拢到单个会话对象中，
// 三个对外操作在会话锁内串行执行。
package session

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/embedding"
	"github.com/rushteam/feedkit/feed"
	"github.com/rushteam/feedkit/history"
	"github.com/rushteam/feedkit/pkg/metrics"
	"github.com/rushteam/feedkit/scoring"
)

// Config 会话级参数
type Config struct {
	Points               scoring.PointTable
	MaxItemLengthSeconds float64
	Embedding            embedding.Options
}

// DefaultConfig 返回默认参数
func DefaultConfig() Config {
	return Config{
		Points:               scoring.DefaultPointTable(),
		MaxItemLengthSeconds: scoring.DefaultMaxItemLengthSeconds,
		Embedding:            embedding.DefaultOptions(),
	}
}

// SnapshotSink 持久化会话快照（store.SnapshotStore 实现）
type SnapshotSink interface {
	Save(ctx context.Context, sessionID string, snapshot any) error
	Load(ctx context.Context, sessionID string, out any) error
}

// Snapshot 是会话的可序列化视图
type Snapshot struct {
	History map[string]history.RecordView `json:"history"`
	Shown   []string                      `json:"shown"`
	Events  int                           `json:"events"`
}

// Stats 会话概况
type Stats struct {
	ID                string    `json:"id"`
	Mode              feed.Mode `json:"mode"`
	HistoryCount      int       `json:"history_count"`
	Shown             int       `json:"shown"`
	DurationEvents    int       `json:"duration_events"`
	Refreshes         int       `json:"refreshes"`
	PreferencePresent bool      `json:"preference_present"`
	CreatedAt         time.Time `json:"created_at"`
}

// Session 是单个观看者的会话。
type Session struct {
	mu sync.Mutex

	id        string
	history   *history.History
	tracker   *embedding.Tracker
	state     *feed.State
	rng       *rand.Rand
	assembler *feed.Assembler
	sink      SnapshotSink
	logger    zerolog.Logger
	createdAt time.Time
}

// Option 会话可选项
type Option func(*Session)

// WithSnapshotSink 每次交互、时长上报和非空批次之后写入快照
func WithSnapshotSink(sink SnapshotSink) Option {
	return func(s *Session) { s.sink = sink }
}

// WithLogger 设置日志
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithRand 注入随机源，测试时用固定种子
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// New 创建会话
func New(id string, catalog core.Catalog, assembler *feed.Assembler, cfg Config, opts ...Option) *Session {
	s := &Session{
		id:        id,
		history:   history.New(catalog, cfg.Points, cfg.MaxItemLengthSeconds),
		tracker:   embedding.NewTracker(cfg.Embedding),
		state:     feed.NewState(),
		assembler: assembler,
		logger:    zerolog.Nop(),
		createdAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s.logger = s.logger.With().Str("session_id", id).Logger()
	return s
}

// ID 返回会话 ID
func (s *Session) ID() string { return s.id }

// ToggleInteraction 打开或关闭一个交互，成功后写快照
func (s *Session) ToggleInteraction(ctx context.Context, itemID string, kind scoring.Kind, active bool) (*history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.history.RecordToggle(ctx, itemID, kind, active)
	if err != nil {
		return nil, err
	}
	metrics.InteractionEvents.WithLabelValues(string(kind)).Inc()
	s.logger.Debug().
		Str("item_id", itemID).
		Str("kind", string(kind)).
		Bool("active", active).
		Float64("score", rec.Score).
		Msg("interaction toggled")
	s.saveLocked(ctx)
	return rec, nil
}

// ReportDuration 记录一次观看时长（毫秒），按节奏触发偏好重算并写快照。
func (s *Session) ReportDuration(ctx context.Context, itemID string, durationMillis float64) (*history.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.history.RecordDuration(ctx, itemID, durationMillis)
	if err != nil {
		return nil, err
	}
	metrics.InteractionEvents.WithLabelValues("duration").Inc()

	if s.tracker.Observe(s.history) {
		s.logger.Debug().
			Int("events", s.tracker.Events()).
			Bool("present", s.tracker.Present()).
			Msg("preference refreshed")
	}

	s.saveLocked(ctx)
	return rec, nil
}

// RequestBatch 组装下一批次，有新下发时写快照，保证恢复后不会重复下发
func (s *Session) RequestBatch(ctx context.Context) (*feed.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, err := s.assembler.Assemble(ctx, feed.Request{
		SessionID:    s.id,
		Preference:   s.tracker.Vector(),
		HistoryCount: s.history.Count(),
		State:        s.state,
		Rand:         s.rng,
	})
	if err != nil {
		return nil, err
	}
	if len(batch.Entries) > 0 {
		s.saveLocked(ctx)
	}
	return batch, nil
}

// saveLocked 写入快照，失败只记录日志并计数。调用方持有 s.mu。
func (s *Session) saveLocked(ctx context.Context) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Save(ctx, s.id, s.snapshotLocked()); err != nil {
		metrics.SnapshotWrites.WithLabelValues("error").Inc()
		s.logger.Warn().Err(err).Msg("save session snapshot failed")
		return
	}
	metrics.SnapshotWrites.WithLabelValues("ok").Inc()
}

// Record 读取某个物品的交互记录
func (s *Session) Record(itemID string) (*history.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Get(itemID)
}

// Preference 返回当前偏好向量副本
func (s *Session) Preference() []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tracker.Vector()
}

// Stats 返回会话概况
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		ID:                s.id,
		Mode:              feed.ResolveMode(s.tracker.Present(), s.history.Count(), s.assembler.Options().WarmFloor),
		HistoryCount:      s.history.Count(),
		Shown:             s.state.Len(),
		DurationEvents:    s.tracker.Events(),
		Refreshes:         s.tracker.Refreshes(),
		PreferencePresent: s.tracker.Present(),
		CreatedAt:         s.createdAt,
	}
}

// Snapshot 导出会话快照
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		History: s.history.Snapshot(),
		Shown:   s.state.IDs(),
		Events:  s.tracker.Events(),
	}
}

// Restore 用快照恢复会话。偏好向量不在快照里，曾经重算过时按恢复后的历史重新计算。
func (s *Session) Restore(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.history.Restore(snap.History); err != nil {
		return err
	}
	s.state = feed.NewState()
	for _, id := range snap.Shown {
		s.state.Add(id)
	}
	opts := s.tracker.Options()
	s.tracker = embedding.NewTracker(opts)
	s.tracker.Restore(snap.Events)
	if snap.Events >= opts.RefreshCadence {
		s.tracker.Refresh(s.history)
	}
	return nil
}
