package systems

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/pathfinding"
)

// CombatSystem 处理 Attacking 状态的单位
//
// 冷却期间只等待；冷却结束后若处于近战范围则造成 1 点伤害并重新冷却，
// 否则在计划耗尽或受害者移动后重新寻路追击。受害者不存在时回到空闲。
type CombatSystem struct {
	world *World
}

// NewCombatSystem 创建战斗系统
func NewCombatSystem(w *World) *CombatSystem {
	return &CombatSystem{world: w}
}

// Update 战斗阶段，返回本 tick 命中次数
func (s *CombatSystem) Update(deltaTime float64) int {
	em := s.world.EM
	hits := 0

	entityList := em.GetEntitiesWith(
		reflect.TypeOf(&components.CombatComponent{}),
		reflect.TypeOf(&components.UnitComponent{}),
		reflect.TypeOf(&components.BehaviorComponent{}),
	)

	for _, id := range entityList {
		behavior, _ := ecs.GetComponent[*components.BehaviorComponent](em, id)
		if behavior.State != components.StateAttacking {
			continue
		}
		combat, _ := ecs.GetComponent[*components.CombatComponent](em, id)
		unit, _ := ecs.GetComponent[*components.UnitComponent](em, id)
		victim := behavior.Target

		if !em.Exists(victim) {
			s.world.Logger.Debug("[CombatSystem] victim gone, back to idle",
				EntityField(id), zap.Uint64("victim", uint64(victim)))
			s.world.Idle(id)
			continue
		}

		combat.Remaining -= deltaTime
		if combat.Remaining > 0 {
			continue
		}

		if s.world.InMeleeRange(id, victim) {
			health, ok := ecs.GetComponent[*components.HealthComponent](em, victim)
			if !ok || health.Dead() {
				// 已被击杀，等待移除阶段
				continue
			}
			health.CurrentHealth--
			combat.Remaining = combat.Cooldown
			unit.Plan.Clear()
			hits++
			continue
		}

		// 冷却已结束但够不着：保持就绪，追击
		combat.Remaining = 0
		_, victimPos, _ := s.world.Entity(victim)
		if unit.Plan.Empty() || victimPos.Cell != combat.ChaseCell {
			combat.ChaseCell = victimPos.Cell
			rect, _ := s.world.Footprint(victim)
			if !s.world.PlanPath(id, pathfinding.Adjacent(rect)) {
				s.world.Logger.Debug("[CombatSystem] no path to victim, retrying next tick",
					EntityField(id), zap.Uint64("victim", uint64(victim)))
			}
		}
	}
	return hits
}
