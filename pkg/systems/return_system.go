package systems

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/pathfinding"
)

// ReturnSystem 处理 ReturningResource 状态的单位
// 到达建筑后存入 1 单位资源，随即自动回到同一个资源点继续采集
type ReturnSystem struct {
	world *World
}

// NewReturnSystem 创建返还系统
func NewReturnSystem(w *World) *ReturnSystem {
	return &ReturnSystem{world: w}
}

// Update 返还阶段，返回本 tick 存入次数
func (s *ReturnSystem) Update() int {
	em := s.world.EM
	deposited := 0

	entityList := em.GetEntitiesWith(
		reflect.TypeOf(&components.GatherComponent{}),
		reflect.TypeOf(&components.UnitComponent{}),
		reflect.TypeOf(&components.BehaviorComponent{}),
	)

	for _, id := range entityList {
		behavior, _ := ecs.GetComponent[*components.BehaviorComponent](em, id)
		unit, _ := ecs.GetComponent[*components.UnitComponent](em, id)
		if behavior.State != components.StateReturning || !unit.Plan.Empty() {
			continue
		}
		gather, _ := ecs.GetComponent[*components.GatherComponent](em, id)
		ent, _, _ := s.world.Entity(id)
		structure := behavior.Target

		if !s.world.IsFriendlyStructure(structure, ent.Team) {
			// 目标建筑已被摧毁，改送第一个友方建筑
			next, ok := s.world.FirstFriendlyStructure(ent.Team)
			if !ok {
				s.world.Logger.Warn("[ReturnSystem] no friendly structure left, keeping cargo",
					EntityField(id), zap.Stringer("team", ent.Team))
				s.world.Idle(id)
				continue
			}
			if !s.world.OrderReturn(id, next) {
				s.world.Logger.Warn("[ReturnSystem] no path to return structure",
					EntityField(id), zap.Uint64("structure", uint64(next)))
			}
			continue
		}

		if !s.world.InMeleeRange(id, structure) {
			rect, _ := s.world.Footprint(structure)
			if !s.world.PlanPath(id, pathfinding.Adjacent(rect)) {
				s.world.Logger.Warn("[ReturnSystem] no path to return structure",
					EntityField(id), zap.Uint64("structure", uint64(structure)))
				s.world.Idle(id)
			}
			continue
		}

		s.world.Teams.Add(ent.Team, 1)
		gather.Carrying = false
		deposited++

		resource := gather.Resource
		if !em.Exists(resource) || s.world.Depleted(resource) {
			s.world.Logger.Debug("[ReturnSystem] resource exhausted, back to idle",
				EntityField(id), zap.Uint64("resource", uint64(resource)))
			s.world.Idle(id)
			continue
		}
		if !s.world.OrderGather(id, resource) {
			s.world.Logger.Warn("[ReturnSystem] no path back to resource",
				EntityField(id), zap.Uint64("resource", uint64(resource)))
		}
	}
	return deposited
}
