package feed

import "github.com/rushteam/feedkit/core"

// Options 批次组装参数
type Options struct {
	// SimilarK 近邻检索数量（K1）
	SimilarK int `yaml:"similar_k" json:"similar_k"`
	// DiversityK 多样性随机配额（K2）
	DiversityK int `yaml:"diversity_k" json:"diversity_k"`
	// ColdStartBatch 冷启动批次大小
	ColdStartBatch int `yaml:"cold_start_batch" json:"cold_start_batch"`
	// WarmFloor 进入 Warm 所需的最少交互物品数
	WarmFloor int `yaml:"warm_floor" json:"warm_floor"`
	// SubstituteAttempts 单个位置替换时的重抽轮数上限
	SubstituteAttempts int `yaml:"substitute_attempts" json:"substitute_attempts"`
	// Metric 检索距离度量
	Metric string `yaml:"metric" json:"metric"`
	// Eligibility 可下发条件（CEL 表达式，可选）
	Eligibility string `yaml:"eligibility" json:"eligibility"`
	// Blacklist 永不下发的物品 ID
	Blacklist []string `yaml:"blacklist" json:"blacklist"`
}

// DefaultOptions 返回默认参数
func DefaultOptions() Options {
	return Options{
		SimilarK:           7,
		DiversityK:         3,
		ColdStartBatch:     5,
		WarmFloor:          3,
		SubstituteAttempts: 8,
		Metric:             string(core.MetricCosine),
	}
}
