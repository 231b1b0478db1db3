package components

import (
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/types"
)

// MovementPlan 单位的移动路线
// 内部按目标端在前存储，下一步位于末尾，逐个弹出
type MovementPlan struct {
	cells []types.Point
}

// NewMovementPlan 由寻路结果构造移动计划
func NewMovementPlan(path []types.Point) MovementPlan {
	cells := make([]types.Point, len(path))
	copy(cells, path)
	return MovementPlan{cells: cells}
}

// Next 下一步要进入的格子
func (p *MovementPlan) Next() (types.Point, bool) {
	if len(p.cells) == 0 {
		return types.Point{}, false
	}
	return p.cells[len(p.cells)-1], true
}

// Advance 弹出已完成的一步
func (p *MovementPlan) Advance() {
	if len(p.cells) > 0 {
		p.cells = p.cells[:len(p.cells)-1]
	}
}

// Empty 计划是否已耗尽
func (p *MovementPlan) Empty() bool { return len(p.cells) == 0 }

// Len 剩余步数
func (p *MovementPlan) Len() int { return len(p.cells) }

// Clear 丢弃剩余路线
func (p *MovementPlan) Clear() { p.cells = nil }

// Cells 剩余路线副本（目标端在前）
func (p *MovementPlan) Cells() []types.Point {
	out := make([]types.Point, len(p.cells))
	copy(out, p.cells)
	return out
}

// UnitComponent 可移动单位的数据
// MoveTimer 累积到 MoveInterval 时移动闸门打开，每次最多前进一格
type UnitComponent struct {
	Plan         MovementPlan
	MoveInterval float64 // 每格耗时（秒），0 表示每个 tick 一格
	MoveTimer    float64
}

// CombatComponent 近战攻击能力
// Remaining 大于 0 表示冷却中
type CombatComponent struct {
	Cooldown  float64
	Remaining float64
	// 上一次规划路线时受害者所在格子，用于判断是否需要重新寻路
	ChaseCell types.Point
}

// GatherComponent 采集能力与货物
type GatherComponent struct {
	Carrying  bool
	Resource  ecs.EntityID // 最近一次采集的资源点
	Structure ecs.EntityID // 指定的返还建筑，0 表示取第一个友方建筑
}

// TrainingComponent 建筑的训练队列（同时只训练一个单位）
type TrainingComponent struct {
	Trains   []string // 可训练的单位种类
	Active   bool
	Kind     string
	Progress float64
	Duration float64
}

// Fraction 训练进度，0..1
func (t *TrainingComponent) Fraction() float64 {
	if !t.Active || t.Duration <= 0 {
		return 0
	}
	f := t.Progress / t.Duration
	if f > 1 {
		return 1
	}
	return f
}
