package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/rushteam/feedkit/core"
	"github.com/rushteam/feedkit/pkg/conv"
)

// VectorField 是 JSON 目录里向量字段的名称，其余字段原样进入 Payload。
const VectorField = "embeddings"

// DecodeJSON 解析 JSON 目录，支持两种格式：
//
//	{"v1": {"description": "...", "embeddings": [...]}, ...}   // 按文件中 key 的顺序
//	[{"id": "v1", "description": "...", "embeddings": [...]}]  // 按数组顺序
func DecodeJSON(r io.Reader) ([]*core.CatalogItem, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, invalidCatalog("read catalog", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, invalidCatalog("catalog must be a JSON object or array", nil)
	}

	var items []*core.CatalogItem
	switch delim {
	case '{':
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, invalidCatalog("read catalog key", err)
			}
			id, _ := keyTok.(string)
			var fields map[string]any
			if err := dec.Decode(&fields); err != nil {
				return nil, invalidCatalog(fmt.Sprintf("decode item %q", id), err)
			}
			item, err := toItem(id, fields)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	case '[':
		for dec.More() {
			var fields map[string]any
			if err := dec.Decode(&fields); err != nil {
				return nil, invalidCatalog("decode catalog entry", err)
			}
			id, _ := conv.ToString(fields["id"])
			delete(fields, "id")
			item, err := toItem(id, fields)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	default:
		return nil, invalidCatalog("catalog must be a JSON object or array", nil)
	}
	if _, err := dec.Token(); err != nil {
		return nil, invalidCatalog("read catalog end", err)
	}
	return items, nil
}

// LoadJSON 从文件加载目录
func LoadJSON(path string) (*MemoryCatalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	items, err := DecodeJSON(f)
	if err != nil {
		return nil, err
	}
	return New(items)
}

func toItem(id string, fields map[string]any) (*core.CatalogItem, error) {
	if id == "" {
		return nil, invalidCatalog("catalog entry without id", nil)
	}
	item := &core.CatalogItem{ID: id, Payload: make(map[string]any, len(fields))}
	for k, v := range fields {
		if k == VectorField {
			vec, ok := conv.ToFloat32Slice(v)
			if !ok {
				return nil, invalidCatalog(fmt.Sprintf("item %q: %s is not a numeric array", id, VectorField), nil)
			}
			item.Vector = vec
			continue
		}
		item.Payload[k] = v
	}
	return item, nil
}

func invalidCatalog(msg string, err error) error {
	return core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, msg, err)
}
