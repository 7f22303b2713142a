// Package store 提供 core.Store 的实现（内存、Redis、SQLite）、
// 基于 Store 的会话快照读写，以及内存候选索引。
//
// 示例：
//
//	var s core.Store = NewMemoryStore()
//	snaps := NewSnapshotStore(s, "feed:session", 3600)
package store
