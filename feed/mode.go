package feed

// Mode 是批次组装所处的状态
type Mode string

const (
	ModeColdStart Mode = "cold_start"
	ModeWarm      Mode = "warm"
)

// ResolveMode 每次请求时重新判定：有偏好向量且交互物品数不低于 warmFloor 时为 Warm。
func ResolveMode(preferencePresent bool, historyCount, warmFloor int) Mode {
	if preferencePresent && historyCount >= warmFloor {
		return ModeWarm
	}
	return ModeColdStart
}
