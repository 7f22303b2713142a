package feed

import "github.com/rushteam/feedkit/core"

// State 是本会话已下发物品的有序集合（FeedState），只追加、不重复。
type State struct {
	ids  []string
	seen map[string]struct{}
}

func NewState() *State {
	return &State{seen: make(map[string]struct{})}
}

// Contains 实现 core.ShownSet
func (s *State) Contains(id string) bool {
	_, ok := s.seen[id]
	return ok
}

// Add 追加 id，已存在时返回 false
func (s *State) Add(id string) bool {
	if s.Contains(id) {
		return false
	}
	s.seen[id] = struct{}{}
	s.ids = append(s.ids, id)
	return true
}

// Len 实现 core.ShownSet
func (s *State) Len() int { return len(s.ids) }

// IDs 按下发顺序返回副本
func (s *State) IDs() []string {
	return append([]string(nil), s.ids...)
}

// truncate 回滚到前 n 个，用于组装失败时撤销本次写入
func (s *State) truncate(n int) {
	if n < 0 || n >= len(s.ids) {
		return
	}
	for _, id := range s.ids[n:] {
		delete(s.seen, id)
	}
	s.ids = s.ids[:n]
}

var _ core.ShownSet = (*State)(nil)
