package systems

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/pathfinding"
)

// GatheringSystem 处理 GatheringResource 状态的单位
// 移动计划耗尽后，若处于资源点近战范围内则拾取 1 单位货物并转为返还
type GatheringSystem struct {
	world *World
}

// NewGatheringSystem 创建采集系统
func NewGatheringSystem(w *World) *GatheringSystem {
	return &GatheringSystem{world: w}
}

// Update 采集阶段，返回本 tick 拾取次数
func (s *GatheringSystem) Update() int {
	em := s.world.EM
	picked := 0

	entityList := em.GetEntitiesWith(
		reflect.TypeOf(&components.GatherComponent{}),
		reflect.TypeOf(&components.UnitComponent{}),
		reflect.TypeOf(&components.BehaviorComponent{}),
	)

	for _, id := range entityList {
		behavior, _ := ecs.GetComponent[*components.BehaviorComponent](em, id)
		unit, _ := ecs.GetComponent[*components.UnitComponent](em, id)
		if behavior.State != components.StateGathering || !unit.Plan.Empty() {
			continue
		}
		gather, _ := ecs.GetComponent[*components.GatherComponent](em, id)
		resource := behavior.Target

		if !em.Exists(resource) || s.world.Depleted(resource) {
			s.world.Logger.Debug("[GatheringSystem] resource gone, back to idle",
				EntityField(id), zap.Uint64("resource", uint64(resource)))
			s.world.Idle(id)
			continue
		}

		if !s.world.InMeleeRange(id, resource) {
			rect, _ := s.world.Footprint(resource)
			if !s.world.PlanPath(id, pathfinding.Adjacent(rect)) {
				s.world.Logger.Warn("[GatheringSystem] no path to resource",
					EntityField(id), zap.Uint64("resource", uint64(resource)))
				s.world.Idle(id)
			}
			continue
		}

		if health, ok := ecs.GetComponent[*components.HealthComponent](em, resource); ok {
			health.CurrentHealth--
		}
		gather.Carrying = true
		gather.Resource = resource
		picked++

		ent, _, _ := s.world.Entity(id)
		structure, ok := s.world.ReturnTarget(ent.Team, gather.Structure)
		if !ok {
			s.world.Logger.Warn("[GatheringSystem] no friendly structure to return cargo to",
				EntityField(id), zap.Stringer("team", ent.Team))
			s.world.Idle(id)
			continue
		}
		if !s.world.OrderReturn(id, structure) {
			s.world.Logger.Warn("[GatheringSystem] no path to return structure",
				EntityField(id), zap.Uint64("structure", uint64(structure)))
		}
	}
	return picked
}
