package session

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/feed"
	"github.com/rushteam/feedkit/pkg/metrics"
)

const defaultMaxSessions = 1024

// ManagerConfig 会话表参数
type ManagerConfig struct {
	Session Config
	// MaxSessions 内存中最多保留的会话数，超出后淘汰最久未使用的
	MaxSessions int
	// Seed 非 0 时第 n 个会话使用 Seed+n 作为随机种子（可复现）
	Seed int64
}

// Manager 管理多个会话，并发安全。
type Manager struct {
	mu        sync.Mutex
	sessions  *lru.Cache[string, *Session]
	catalog   core.Catalog
	assembler *feed.Assembler
	cfg       ManagerConfig
	sink      SnapshotSink
	logger    zerolog.Logger
	created   int64
}

// ManagerOption Manager 可选项
type ManagerOption func(*Manager)

// WithManagerSnapshotSink 为所有会话设置快照存储，并允许 Open 从快照恢复
func WithManagerSnapshotSink(sink SnapshotSink) ManagerOption {
	return func(m *Manager) { m.sink = sink }
}

// WithManagerLogger 设置日志
func WithManagerLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager 创建会话表
func NewManager(catalog core.Catalog, assembler *feed.Assembler, cfg ManagerConfig, opts ...ManagerOption) (*Manager, error) {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	m := &Manager{
		catalog:   catalog,
		assembler: assembler,
		cfg:       cfg,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	cache, err := lru.NewWithEvict[string, *Session](cfg.MaxSessions, m.handleEviction)
	if err != nil {
		return nil, fmt.Errorf("session: create cache: %w", err)
	}
	m.sessions = cache
	return m, nil
}

func (m *Manager) handleEviction(id string, _ *Session) {
	metrics.ActiveSessions.Dec()
	m.logger.Debug().Str("session_id", id).Msg("session evicted")
}

// Create 新建会话
func (m *Manager) Create(_ context.Context) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.newSessionLocked(uuid.NewString())
	m.addLocked(s)
	m.logger.Info().Str("session_id", s.ID()).Msg("session created")
	return s
}

// Get 读取内存中的会话，不存在返回 NOT_FOUND
func (m *Manager) Get(id string) (*Session, error) {
	if s, ok := m.sessions.Get(id); ok {
		return s, nil
	}
	return nil, core.NewDomainError(core.ModuleSession, core.ErrorCodeNotFound, fmt.Sprintf("session %q not found", id))
}

// Open 读取会话；内存中没有且配置了快照存储时，从快照恢复。
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	if s, ok := m.sessions.Get(id); ok {
		return s, nil
	}
	if m.sink == nil {
		return m.Get(id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions.Get(id); ok {
		return s, nil
	}

	var snap Snapshot
	if err := m.sink.Load(ctx, id, &snap); err != nil {
		if core.IsNotFound(err) {
			return nil, core.WrapDomainError(core.ModuleSession, core.ErrorCodeNotFound, fmt.Sprintf("session %q not found", id), err)
		}
		return nil, err
	}
	s := m.newSessionLocked(id)
	if err := s.Restore(snap); err != nil {
		return nil, err
	}
	m.addLocked(s)
	m.logger.Info().Str("session_id", id).Int("history", len(snap.History)).Msg("session restored")
	return s, nil
}

// Delete 从内存移除会话，快照保留
func (m *Manager) Delete(id string) bool {
	return m.sessions.Remove(id)
}

// Len 内存中的会话数
func (m *Manager) Len() int {
	return m.sessions.Len()
}

func (m *Manager) newSessionLocked(id string) *Session {
	m.created++
	var seed int64
	if m.cfg.Seed != 0 {
		seed = m.cfg.Seed + m.created
	} else {
		seed = time.Now().UnixNano()
	}
	opts := []Option{
		WithRand(rand.New(rand.NewSource(seed))),
		WithLogger(m.logger),
	}
	if m.sink != nil {
		opts = append(opts, WithSnapshotSink(m.sink))
	}
	return New(id, m.catalog, m.assembler, m.cfg.Session, opts...)
}

func (m *Manager) addLocked(s *Session) {
	m.sessions.Add(s.ID(), s)
	metrics.ActiveSessions.Inc()
}
