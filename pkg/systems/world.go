package systems

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/game"
	"github.com/gonewx/rts/pkg/grid"
	"github.com/gonewx/rts/pkg/pathfinding"
	"github.com/gonewx/rts/pkg/types"
)

// World 各阶段系统共享的模拟状态
// 实体集合与占用网格只在这里被修改；结构性变更（创建、删除）
// 以意图的形式收集，在阶段边界统一应用
type World struct {
	EM     *ecs.EntityManager
	Grid   *grid.Grid
	Teams  *game.TeamStates
	Rules  *config.Rules
	Logger *zap.Logger

	// OnPathSearch 每次寻路后回调，用于指标统计，可为 nil
	OnPathSearch func(pathfinding.Result)

	placements []StructurePlacement
}

// StructurePlacement 建造完成、等待放置的建筑
type StructurePlacement struct {
	Builder ecs.EntityID
	Kind    string
	Team    types.Team
	Site    types.Point
}

// NewWorld 创建共享状态，logger 为 nil 时不输出日志
func NewWorld(em *ecs.EntityManager, g *grid.Grid, teams *game.TeamStates, rules *config.Rules, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &World{EM: em, Grid: g, Teams: teams, Rules: rules, Logger: logger}
}

// schedulePlacement 记录一个待放置的建筑
func (w *World) schedulePlacement(p StructurePlacement) {
	w.placements = append(w.placements, p)
}

// takePlacements 取出并清空待放置队列
func (w *World) takePlacements() []StructurePlacement {
	out := w.placements
	w.placements = nil
	return out
}

// PendingPlacements 本 tick 已排期但尚未放置的建筑数量
func (w *World) PendingPlacements() int {
	return len(w.placements)
}

// EntityField 日志字段：实体 ID
func EntityField(id ecs.EntityID) zap.Field {
	return zap.Uint64("entity", uint64(id))
}

// mustGrid 网格守卫失败说明调用方逻辑有误，直接中止
func mustGrid(op string, id ecs.EntityID, err error) {
	if err != nil {
		panic(&PreconditionError{Op: op, Entity: id, Err: err})
	}
}

// Entity 返回实体的身份与位置组件
func (w *World) Entity(id ecs.EntityID) (*components.EntityComponent, *components.PositionComponent, bool) {
	ent, ok := ecs.GetComponent[*components.EntityComponent](w.EM, id)
	if !ok {
		return nil, nil, false
	}
	pos, ok := ecs.GetComponent[*components.PositionComponent](w.EM, id)
	if !ok {
		return nil, nil, false
	}
	return ent, pos, true
}

// Footprint 实体当前覆盖的矩形
func (w *World) Footprint(id ecs.EntityID) (types.Rect, bool) {
	ent, pos, ok := w.Entity(id)
	if !ok {
		return types.Rect{}, false
	}
	return components.Footprint(ent, pos), true
}

// InMeleeRange 行动者所在格子到目标占地任一格子的距离平方不超过 2
func (w *World) InMeleeRange(actor, target ecs.EntityID) bool {
	_, pos, ok := w.Entity(actor)
	if !ok {
		return false
	}
	rect, ok := w.Footprint(target)
	if !ok {
		return false
	}
	return rect.MinDistSq(pos.Cell) <= 2
}

// IsDeposit 实体是否为资源点
func (w *World) IsDeposit(id ecs.EntityID) bool {
	return ecs.HasComponent[*components.ResourceDepositComponent](w.EM, id)
}

// Depleted 资源点是否已采空（没有生命值的资源点永不枯竭）
func (w *World) Depleted(id ecs.EntityID) bool {
	h, ok := ecs.GetComponent[*components.HealthComponent](w.EM, id)
	return ok && h.Dead()
}

// IsFriendlyStructure 实体是否为 team 的建筑（资源点除外）
func (w *World) IsFriendlyStructure(id ecs.EntityID, team types.Team) bool {
	ent, _, ok := w.Entity(id)
	if !ok || w.EM.IsMarkedForDestroy(id) {
		return false
	}
	return ent.Physical == components.PhysicalStructure && ent.Team == team && !w.IsDeposit(id)
}

// FirstFriendlyStructure 按 ID 顺序返回 team 的第一个建筑
// TODO: 改为选择最近的建筑，需要先确定距离相同时的取舍规则
func (w *World) FirstFriendlyStructure(team types.Team) (ecs.EntityID, bool) {
	for _, id := range ecs.GetEntitiesWith1[*components.EntityComponent](w.EM) {
		if w.IsFriendlyStructure(id, team) {
			return id, true
		}
	}
	return 0, false
}

// ReturnTarget 选择返还建筑：优先使用指定建筑，失效时退回第一个友方建筑
func (w *World) ReturnTarget(team types.Team, preferred ecs.EntityID) (ecs.EntityID, bool) {
	if preferred != ecs.InvalidEntity && w.IsFriendlyStructure(preferred, team) {
		return preferred, true
	}
	return w.FirstFriendlyStructure(team)
}

// SetState 切换实体状态，状态必须与物理形态相容
func (w *World) SetState(id ecs.EntityID, state components.BehaviorComponent) {
	ent, _, ok := w.Entity(id)
	if !ok {
		panic(&PreconditionError{Op: "set state", Entity: id, Err: ErrUnknownEntity})
	}
	if !state.State.AllowedFor(ent.Physical) {
		panic(&PreconditionError{
			Op:     "set state",
			Entity: id,
			Err:    fmt.Errorf("state %s is not valid for a %s", state.State, ent.Physical),
		})
	}
	b, ok := ecs.GetComponent[*components.BehaviorComponent](w.EM, id)
	if !ok {
		b = &components.BehaviorComponent{}
		w.EM.AddComponent(id, b)
	}
	*b = state
}

// Idle 回到空闲并丢弃移动计划
func (w *World) Idle(id ecs.EntityID) {
	w.SetState(id, components.BehaviorComponent{State: components.StateIdle})
	if unit, ok := ecs.GetComponent[*components.UnitComponent](w.EM, id); ok {
		unit.Plan.Clear()
	}
}

// PlanPath 为单位计算到 dest 的路线并替换其移动计划
// 找不到路线时清空计划并返回 false
func (w *World) PlanPath(id ecs.EntityID, dest pathfinding.Destination) bool {
	unit, ok := ecs.GetComponent[*components.UnitComponent](w.EM, id)
	if !ok {
		panic(&PreconditionError{Op: "plan path", Entity: id, Err: fmt.Errorf("entity is not a unit")})
	}
	_, pos, _ := w.Entity(id)

	res := pathfinding.Search(pos.Cell, dest, w.Grid)
	if w.OnPathSearch != nil {
		w.OnPathSearch(res)
	}
	if !res.Found {
		unit.Plan.Clear()
		return false
	}
	unit.Plan = components.NewMovementPlan(res.Path)
	return true
}
