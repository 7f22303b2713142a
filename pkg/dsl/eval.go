package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/feedkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("item", cel.DynType),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Eval 是目录物品的准入表达式，使用 CEL (Common Expression Language) 实现。
// 表达式在构造时编译一次，之后可并发调用 Match。
//
// 可用变量：
//   - item.id：物品 ID
//   - item.payload：目录透传字段（description、categories 等）
//   - item.dim：特征向量维度
//
// 示例：
//   - `!("nsfw" in item.payload.categories)`
//   - `item.payload.description != ""`
//   - `item.id.startsWith("video_")`
type Eval struct {
	expr string
	prg  cel.Program
}

// NewEval 编译表达式。空表达式返回 nil（表示不做准入限制）。
func NewEval(expr string) (*Eval, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.WrapDomainError(core.ModuleConfig, core.ErrorCodeInvalidInput, "compile eligibility expression", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Eval{expr: expr, prg: prg}, nil
}

// String 返回原始表达式
func (e *Eval) String() string {
	if e == nil {
		return ""
	}
	return e.expr
}

// Match 对物品求值。nil Eval 恒为 true。
func (e *Eval) Match(item *core.CatalogItem) (bool, error) {
	if e == nil {
		return true, nil
	}
	if item == nil {
		return false, nil
	}

	out, _, err := e.prg.Eval(buildInput(item))
	if err != nil {
		// 访问不存在的 payload 字段会报错，使用 has(item.payload.x) 检查存在性
		return false, fmt.Errorf("eval error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.CatalogItem) map[string]any {
	payload := item.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	return map[string]any{
		"item": map[string]any{
			"id":      item.ID,
			"payload": payload,
			"dim":     int64(len(item.Vector)),
		},
	}
}
