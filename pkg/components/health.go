package components

// HealthComponent 存储实体的生命值信息
// 用于单位、建筑等可被攻击的实体；资源点用它记录剩余储量
// 没有该组件的实体不可摧毁
type HealthComponent struct {
	CurrentHealth int // 当前生命值
	MaxHealth     int // 最大生命值
}

// Damaged 生命值是否低于上限
func (h *HealthComponent) Damaged() bool {
	return h.CurrentHealth < h.MaxHealth
}

// Dead 生命值是否已耗尽
func (h *HealthComponent) Dead() bool {
	return h.CurrentHealth <= 0
}
