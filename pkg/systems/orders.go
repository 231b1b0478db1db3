package systems

import (
	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/pathfinding"
)

// 指令和阶段系统共用的状态切换，切换状态的同时分配新的移动计划

// OrderGather 派单位前往资源点采集
// 返回 false 表示找不到路线，此时单位回到空闲
func (w *World) OrderGather(id, resource ecs.EntityID) bool {
	rect, ok := w.Footprint(resource)
	if !ok {
		w.Idle(id)
		return false
	}
	if g, ok := ecs.GetComponent[*components.GatherComponent](w.EM, id); ok {
		g.Resource = resource
	}
	if !w.PlanPath(id, pathfinding.Adjacent(rect)) {
		w.Idle(id)
		return false
	}
	w.SetState(id, components.BehaviorComponent{State: components.StateGathering, Target: resource})
	return true
}

// OrderReturn 派携带资源的单位前往建筑返还
// 返回 false 表示找不到路线，此时单位回到空闲（货物保留）
func (w *World) OrderReturn(id, structure ecs.EntityID) bool {
	rect, ok := w.Footprint(structure)
	if !ok {
		w.Idle(id)
		return false
	}
	if !w.PlanPath(id, pathfinding.Adjacent(rect)) {
		w.Idle(id)
		return false
	}
	w.SetState(id, components.BehaviorComponent{State: components.StateReturning, Target: structure})
	return true
}

// OrderAttack 派单位攻击受害者，冷却从头计时
func (w *World) OrderAttack(id, victim ecs.EntityID) bool {
	rect, ok := w.Footprint(victim)
	if !ok {
		w.Idle(id)
		return false
	}
	combat, ok := ecs.GetComponent[*components.CombatComponent](w.EM, id)
	if !ok {
		panic(&PreconditionError{Op: "attack", Entity: id, Err: errNoCombat})
	}
	combat.Remaining = combat.Cooldown
	_, victimPos, _ := w.Entity(victim)
	combat.ChaseCell = victimPos.Cell

	// 已在近战范围内则原地攻击
	if w.InMeleeRange(id, victim) {
		if unit, ok := ecs.GetComponent[*components.UnitComponent](w.EM, id); ok {
			unit.Plan.Clear()
		}
	} else if !w.PlanPath(id, pathfinding.Adjacent(rect)) {
		w.Idle(id)
		return false
	}
	w.SetState(id, components.BehaviorComponent{State: components.StateAttacking, Target: victim})
	return true
}
