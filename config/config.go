// Package config 定义 feed 服务的配置结构。
//
// LoadFromYAML / LoadFromJSON 直接读取单个文件；Load 叠加默认值、文件与 FEED_ 环境变量。
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/embedding"
	"github.com/rushteam/feedkit/feed"
	"github.com/rushteam/feedkit/pkg/logging"
	"github.com/rushteam/feedkit/scoring"
	"github.com/rushteam/feedkit/session"
	"github.com/rushteam/feedkit/store"
	"github.com/rushteam/feedkit/vector"
)

// Config 是服务的完整配置
type Config struct {
	Scoring   ScoringConfig     `yaml:"scoring" json:"scoring"`
	Embedding embedding.Options `yaml:"embedding" json:"embedding"`
	Feed      feed.Options      `yaml:"feed" json:"feed"`
	Session   SessionConfig     `yaml:"session" json:"session"`
	Index     IndexConfig       `yaml:"index" json:"index"`
	Store     StoreConfig       `yaml:"store" json:"store"`
	Catalog   CatalogConfig     `yaml:"catalog" json:"catalog"`
	Log       logging.Config    `yaml:"log" json:"log"`
	Server    ServerConfig      `yaml:"server" json:"server"`
}

// ScoringConfig 打分参数
type ScoringConfig struct {
	Points               scoring.PointTable `yaml:"points" json:"points"`
	MaxItemLengthSeconds float64            `yaml:"max_item_length_seconds" json:"max_item_length_seconds"`
}

// SessionConfig 会话表参数
type SessionConfig struct {
	MaxSessions int   `yaml:"max_sessions" json:"max_sessions"`
	Seed        int64 `yaml:"seed" json:"seed"`
}

// IndexConfig 候选索引参数
type IndexConfig struct {
	Metric string `yaml:"metric" json:"metric"`
	// Breaker 是否启用熔断
	Breaker            bool   `yaml:"breaker" json:"breaker"`
	FailureThreshold   uint32 `yaml:"failure_threshold" json:"failure_threshold"`
	OpenTimeoutSeconds int    `yaml:"open_timeout_seconds" json:"open_timeout_seconds"`
	SearchTimeoutMs    int    `yaml:"search_timeout_ms" json:"search_timeout_ms"`
}

// StoreConfig 快照存储参数
type StoreConfig struct {
	// Backend: none / memory / redis / sqlite
	Backend    string `yaml:"backend" json:"backend"`
	Addr       string `yaml:"addr" json:"addr"`
	DB         int    `yaml:"db" json:"db"`
	Path       string `yaml:"path" json:"path"`
	KeyPrefix  string `yaml:"key_prefix" json:"key_prefix"`
	TTLSeconds int    `yaml:"ttl_seconds" json:"ttl_seconds"`
}

// CatalogConfig 目录来源：JSON 文件，或 Feast 在线特征
type CatalogConfig struct {
	Path  string      `yaml:"path" json:"path"`
	Feast FeastConfig `yaml:"feast" json:"feast"`
}

// FeastConfig Feast 目录加载参数，Host 为空表示不使用
type FeastConfig struct {
	Host            string   `yaml:"host" json:"host"`
	Port            int      `yaml:"port" json:"port"`
	Project         string   `yaml:"project" json:"project"`
	EntityKey       string   `yaml:"entity_key" json:"entity_key"`
	VectorFeature   string   `yaml:"vector_feature" json:"vector_feature"`
	PayloadFeatures []string `yaml:"payload_features" json:"payload_features"`
	// IDsPath 每行一个物品 ID
	IDsPath     string `yaml:"ids_path" json:"ids_path"`
	ChunkSize   int    `yaml:"chunk_size" json:"chunk_size"`
	Concurrency int    `yaml:"concurrency" json:"concurrency"`
}

// ServerConfig HTTP 参数
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Scoring: ScoringConfig{
			Points:               scoring.DefaultPointTable(),
			MaxItemLengthSeconds: scoring.DefaultMaxItemLengthSeconds,
		},
		Embedding: embedding.DefaultOptions(),
		Feed:      feed.DefaultOptions(),
		Session:   SessionConfig{MaxSessions: 1024},
		Index: IndexConfig{
			Metric:             string(core.MetricCosine),
			Breaker:            true,
			FailureThreshold:   5,
			OpenTimeoutSeconds: 30,
		},
		Store: StoreConfig{
			Backend:   "memory",
			KeyPrefix: "feed:session",
		},
		Log:    logging.Config{Level: "info", Format: "json"},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadFromYAML 读取 YAML 文件，未出现的字段保留默认值
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "parse yaml", err)
	}
	return cfg, nil
}

// LoadFromJSON 读取 JSON 文件，未出现的字段保留默认值
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "parse json", err)
	}
	return cfg, nil
}

// Validate 校验配置，返回全部问题
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	p := c.Scoring.Points
	for name, v := range map[string]float64{
		"like": p.Like, "comment": p.Comment, "share": p.Share, "save": p.Save,
		"skip": p.Skip, "short": p.Short, "long": p.Long, "rewatch": p.Rewatch,
	} {
		check(v >= 0, "scoring.points.%s must be >= 0", name)
	}
	check(p.Skip <= p.Short && p.Short <= p.Long, "scoring.points must satisfy skip <= short <= long")
	check(c.Scoring.MaxItemLengthSeconds > 0, "scoring.max_item_length_seconds must be > 0")

	check(c.Embedding.WarmThreshold >= 0, "embedding.warm_threshold must be >= 0")
	check(c.Embedding.WindowSize > 0, "embedding.window_size must be > 0")
	check(c.Embedding.RefreshCadence > 0, "embedding.refresh_cadence must be > 0")

	check(c.Feed.SimilarK > 0, "feed.similar_k must be > 0")
	check(c.Feed.DiversityK >= 0, "feed.diversity_k must be >= 0")
	check(c.Feed.ColdStartBatch > 0, "feed.cold_start_batch must be > 0")
	check(c.Feed.WarmFloor >= 0, "feed.warm_floor must be >= 0")
	check(c.Feed.SubstituteAttempts > 0, "feed.substitute_attempts must be > 0")
	check(core.ValidateVectorMetric(c.Feed.Metric), "feed.metric %q is not supported", c.Feed.Metric)
	check(core.ValidateVectorMetric(c.Index.Metric), "index.metric %q is not supported", c.Index.Metric)

	check(c.Session.MaxSessions > 0, "session.max_sessions must be > 0")

	switch c.Store.Backend {
	case "", "none", "memory":
	case "redis":
		check(c.Store.Addr != "", "store.addr is required for redis")
	case "sqlite":
		check(c.Store.Path != "", "store.path is required for sqlite")
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is not supported", c.Store.Backend))
	}
	check(c.Store.TTLSeconds >= 0, "store.ttl_seconds must be >= 0")

	if c.Catalog.Feast.Host != "" {
		check(c.Catalog.Feast.EntityKey != "", "catalog.feast.entity_key is required")
		check(c.Catalog.Feast.VectorFeature != "", "catalog.feast.vector_feature is required")
		check(c.Catalog.Feast.IDsPath != "", "catalog.feast.ids_path is required")
	}

	if len(errs) == 0 {
		return nil
	}
	return core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "invalid config", errors.Join(errs...))
}

// ManagerConfig 转换为 session.ManagerConfig
func (c *Config) ManagerConfig() session.ManagerConfig {
	return session.ManagerConfig{
		Session: session.Config{
			Points:               c.Scoring.Points,
			MaxItemLengthSeconds: c.Scoring.MaxItemLengthSeconds,
			Embedding:            c.Embedding,
		},
		MaxSessions: c.Session.MaxSessions,
		Seed:        c.Session.Seed,
	}
}

// BreakerConfig 转换为 vector.BreakerConfig
func (c *Config) BreakerConfig() vector.BreakerConfig {
	return vector.BreakerConfig{
		Name:             "candidate-index",
		FailureThreshold: c.Index.FailureThreshold,
		OpenTimeout:      time.Duration(c.Index.OpenTimeoutSeconds) * time.Second,
		HalfOpenRequests: 1,
		SearchTimeout:    time.Duration(c.Index.SearchTimeoutMs) * time.Millisecond,
	}
}

// OpenStore 按 Store.Backend 创建快照存储，backend 为 none 或空时返回 nil
func (c *Config) OpenStore() (*store.SnapshotStore, core.Store, error) {
	var (
		kv  core.Store
		err error
	)
	switch c.Store.Backend {
	case "", "none":
		return nil, nil, nil
	case "memory":
		kv = store.NewMemoryStore()
	case "redis":
		kv, err = store.NewRedisStore(c.Store.Addr, c.Store.DB)
	case "sqlite":
		kv, err = store.NewSQLiteStore(c.Store.Path)
	default:
		return nil, nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeNotSupported,
			fmt.Sprintf("store backend %q", c.Store.Backend))
	}
	if err != nil {
		return nil, nil, err
	}
	return store.NewSnapshotStore(kv, c.Store.KeyPrefix, c.Store.TTLSeconds), kv, nil
}
