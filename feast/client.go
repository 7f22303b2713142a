package feast

import "context"

// Client 是 Feast Feature Store 在线特征读取接口。
//
// 本项目只在启动时用它批量拉取物品的向量与展示字段（见 catalog.LoadFromFeatures），
// 因此只保留在线特征读取。
type Client interface {
	// GetOnlineFeatures 获取在线特征
	//
	// 参数：
	//   - Features: 特征引用列表，例如 ["video_features:embedding", "video_features:description"]
	//   - EntityRows: 实体行，例如 [{"video_id": "v1"}]
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	Features   []string
	EntityRows []map[string]any

	// Project 项目名称（可选，为空使用客户端默认值）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应，FeatureVectors 与 EntityRows 一一对应。
type GetOnlineFeaturesResponse struct {
	FeatureVectors []FeatureVector
}

// FeatureVector 是一个实体行的特征值。
//
// 值类型：标量为 float64/string/bool，列表为 []float32/[]float64/[]string。
type FeatureVector struct {
	Values    map[string]any
	EntityRow map[string]any
}
