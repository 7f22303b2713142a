// Package scoring 把观看者的交互事件换算成分值。
//
// 本包只有纯函数，没有状态；分值大小由 PointTable 配置决定。
package scoring

import (
	"fmt"
	"math"

	"github.com/rushteam/feedkit/core"
)

// Kind 是交互类型，同时也是 InteractionRecord.Interactions 的 key。
type Kind string

const (
	KindLike         Kind = "like"
	KindComment      Kind = "comment"
	KindShare        Kind = "share"
	KindSave         Kind = "save"
	KindViewTime     Kind = "view_time"
	KindRewatchCount Kind = "rewatch_count"
)

// Bucket 是观看时长分桶
type Bucket string

const (
	BucketSkip  Bucket = "skip"  // < 2s
	BucketShort Bucket = "short" // 2s ~ 7s（含）
	BucketLong  Bucket = "long"  // > 7s
)

const (
	SkipBelowSeconds            = 2.0
	ShortUpToSeconds            = 7.0
	DefaultMaxItemLengthSeconds = 15.0
)

// PointTable 是交互类型到分值的静态映射。
type PointTable struct {
	Like    float64 `yaml:"like" json:"like"`
	Comment float64 `yaml:"comment" json:"comment"`
	Share   float64 `yaml:"share" json:"share"`
	Save    float64 `yaml:"save" json:"save"`
	Skip    float64 `yaml:"skip" json:"skip"`
	Short   float64 `yaml:"short" json:"short"`
	Long    float64 `yaml:"long" json:"long"`

	// Rewatch 是每次重看的分值，默认 0：重看次数只记录不计分
	Rewatch float64 `yaml:"rewatch" json:"rewatch"`
}

// DefaultPointTable 返回默认分值表
func DefaultPointTable() PointTable {
	return PointTable{
		Like:    2,
		Comment: 2,
		Share:   3,
		Save:    3,
		Skip:    0.01,
		Short:   0.25,
		Long:    1.5,
		Rewatch: 0,
	}
}

// ParseKind 解析可切换的交互类型（like / comment / share / save）。
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !IsToggleable(k) {
		return "", core.NewDomainError(core.ModuleScoring, core.ErrorCodeInvalidInput, fmt.Sprintf("unknown interaction kind %q", s))
	}
	return k, nil
}

// IsToggleable 判断交互类型是否可由观看者开关
func IsToggleable(k Kind) bool {
	switch k {
	case KindLike, KindComment, KindShare, KindSave:
		return true
	default:
		return false
	}
}

// ValueFor 返回交互类型的分值。view_time 没有固定分值，需用 ViewTimeValue。
func (t PointTable) ValueFor(k Kind) (float64, error) {
	switch k {
	case KindLike:
		return t.Like, nil
	case KindComment:
		return t.Comment, nil
	case KindShare:
		return t.Share, nil
	case KindSave:
		return t.Save, nil
	case KindRewatchCount:
		return t.Rewatch, nil
	default:
		return 0, core.NewDomainError(core.ModuleScoring, core.ErrorCodeInvalidInput, fmt.Sprintf("no fixed point value for kind %q", k))
	}
}

// BucketValue 返回观看时长分桶的分值
func (t PointTable) BucketValue(b Bucket) float64 {
	switch b {
	case BucketSkip:
		return t.Skip
	case BucketShort:
		return t.Short
	default:
		return t.Long
	}
}

// ViewTimeValue 等价于 BucketValue(ClassifyViewTime(seconds))
func (t PointTable) ViewTimeValue(seconds float64) float64 {
	return t.BucketValue(ClassifyViewTime(seconds))
}

// ClassifyViewTime 按观看秒数分桶：<2 skip，[2, 7] short，>7 long。
func ClassifyViewTime(seconds float64) Bucket {
	switch {
	case seconds < SkipBelowSeconds:
		return BucketSkip
	case seconds <= ShortUpToSeconds:
		return BucketShort
	default:
		return BucketLong
	}
}

// RewatchCount 粗略估计观看时长覆盖了几次标称时长：round(seconds / maxItemLength)。
// 半数取偶（2.5 → 2），maxItemLength 非正时返回 0。
func RewatchCount(seconds, maxItemLengthSeconds float64) int {
	if maxItemLengthSeconds <= 0 || seconds <= 0 {
		return 0
	}
	return int(math.RoundToEven(seconds / maxItemLengthSeconds))
}

// TotalScore 对当前所有交互分值求和
func TotalScore(interactions map[Kind]float64) float64 {
	var sum float64
	for _, v := range interactions {
		sum += v
	}
	return sum
}
