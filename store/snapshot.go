package store

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/feedkit/core"
)

// SnapshotStore 以 JSON 把会话快照写入 Store，key 为 {KeyPrefix}:{sessionID}。
type SnapshotStore struct {
	Store     core.Store
	KeyPrefix string
	// TTL 快照过期时间（秒），0 表示不过期
	TTL int
}

func NewSnapshotStore(s core.Store, keyPrefix string, ttl int) *SnapshotStore {
	if keyPrefix == "" {
		keyPrefix = "feed:session"
	}
	return &SnapshotStore{Store: s, KeyPrefix: keyPrefix, TTL: ttl}
}

func (s *SnapshotStore) key(sessionID string) string {
	return s.KeyPrefix + ":" + sessionID
}

// Save 序列化并写入快照
func (s *SnapshotStore) Save(ctx context.Context, sessionID string, snapshot any) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return core.WrapDomainError(core.ModuleStore, core.ErrorCodeInternalError, "encode snapshot", err)
	}
	return s.Store.Set(ctx, s.key(sessionID), data, s.TTL)
}

// Load 读取并反序列化快照，不存在时返回 NOT_FOUND
func (s *SnapshotStore) Load(ctx context.Context, sessionID string, out any) error {
	data, err := s.Store.Get(ctx, s.key(sessionID))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return core.WrapDomainError(core.ModuleStore, core.ErrorCodeInternalError, "decode snapshot", err)
	}
	return nil
}

// Delete 删除快照
func (s *SnapshotStore) Delete(ctx context.Context, sessionID string) error {
	return s.Store.Delete(ctx, s.key(sessionID))
}
