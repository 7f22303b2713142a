package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/rushteam/feedkit/core"
)

// EnvPrefix 环境变量前缀
const EnvPrefix = "FEED_"

// envAliases 常用字段的短名
var envAliases = map[string]string{
	"log_level":      "log.level",
	"log_format":     "log.format",
	"server_addr":    "server.addr",
	"catalog_path":   "catalog.path",
	"store_backend":  "store.backend",
	"redis_addr":     "store.addr",
	"sqlite_path":    "store.path",
	"seed":           "session.seed",
	"max_sessions":   "session.max_sessions",
	"similar_k":      "feed.similar_k",
	"diversity_k":    "feed.diversity_k",
	"cold_batch":     "feed.cold_start_batch",
	"refresh_every":  "embedding.refresh_cadence",
	"index_breaker":  "index.breaker",
	"feast_host":     "catalog.feast.host",
	"feast_port":     "catalog.feast.port",
	"feast_project":  "catalog.feast.project",
	"feast_ids_path": "catalog.feast.ids_path",
}

// Load 分层加载配置：默认值 → 配置文件（可选）→ 环境变量。
//
// 配置文件按扩展名选择 LoadFromYAML（.yaml/.yml）或 LoadFromJSON（.json），其他扩展名报错。
// 环境变量：FEED_ 前缀，双下划线表示层级，例如 FEED_FEED__SIMILAR_K=4、
// FEED_STORE__BACKEND=redis；也支持 envAliases 中的短名，例如 FEED_LOG_LEVEL。
func Load(path string) (*Config, error) {
	base, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(base, "yaml"), nil); err != nil {
		return nil, fmt.Errorf("load base config: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "unmarshal config", err)
	}
	return cfg, nil
}

// loadFile 读取配置文件，path 为空时返回默认值
func loadFile(path string) (*Config, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case path == "":
		return Default(), nil
	case ext == ".yaml" || ext == ".yml":
		return LoadFromYAML(path)
	case ext == ".json":
		return LoadFromJSON(path)
	default:
		return nil, core.NewDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput,
			fmt.Sprintf("unsupported config file extension %q", ext))
	}
}

// envKey 把 FEED_STORE__BACKEND 转成 store.backend，无法识别的返回空串（忽略）
func envKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	if alias, ok := envAliases[key]; ok {
		return alias
	}
	if !strings.Contains(key, "__") {
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}
