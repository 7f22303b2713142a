// Package feedkit 是短会话视频推荐工具包。
//
// 设计要点：
// - Session-first: 每个观看者一个会话，交互历史、偏好向量、已展示集合都挂在会话上
// - Pipeline 组装: 批次由 Node 串联生成（Recall → ReRank），冷启动与 Warm 各一条 pipeline
// - 不重复: 同一会话内已展示的物品不会再次出现，替换失败时宁可少出
package feedkit

import (
	"github.com/rushteam/feedkit/feed"
	"github.com/rushteam/feedkit/session"
)

// 轻量 facade：便于直接 import "feedkit" 使用核心类型。
type (
	Session = session.Session
	Manager = session.Manager
	Batch   = feed.Batch
	Entry   = feed.Entry
	Mode    = feed.Mode
)

const (
	ModeColdStart = feed.ModeColdStart
	ModeWarm      = feed.ModeWarm
)
