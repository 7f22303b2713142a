// Package conv 提供类型转换工具，用于处理 JSON 解码后的 any 值（请求体、目录 payload）。
package conv

import (
	"math"
	"strconv"
)

// ToFloat64 将 any 转为 float64。
// 支持 float64、float32、int、int64、int32 以及可解析的数字字符串；
// NaN / Inf 视为无效。
func ToFloat64(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case int32:
		f = float64(val)
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ToString 将 any 转为 string。
// 仅支持 string 类型，否则返回 ("", false)。
func ToString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// ToFloat32Slice 将 []any / []float64 / []float32 转为 []float32，
// 任一元素无法转换时返回 (nil, false)。
func ToFloat32Slice(v any) ([]float32, bool) {
	switch val := v.(type) {
	case []float32:
		return val, true
	case []float64:
		out := make([]float32, len(val))
		for i, f := range val {
			out[i] = float32(f)
		}
		return out, true
	case []any:
		out := make([]float32, len(val))
		for i, e := range val {
			f, ok := ToFloat64(e)
			if !ok {
				return nil, false
			}
			out[i] = float32(f)
		}
		return out, true
	default:
		return nil, false
	}
}
