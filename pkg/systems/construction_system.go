package systems

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/types"
)

// ConstructionSystem 处理 Constructing 状态的单位
//
// 建造者的移动计划耗尽后，检查目标占地（不含建造者自身所在格子）是否全部空闲：
// 空闲则标记建造者移除，并把建筑排入下一个子阶段放置；否则回到空闲。
// 建造者必须先在移除阶段腾出格子，建筑才能在放置阶段占用它。
type ConstructionSystem struct {
	world *World
}

// NewConstructionSystem 创建建造系统
func NewConstructionSystem(w *World) *ConstructionSystem {
	return &ConstructionSystem{world: w}
}

// Update 建造结算阶段，返回本 tick 排期的建筑数量
func (s *ConstructionSystem) Update() int {
	em := s.world.EM
	scheduled := 0
	var claimed []types.Rect

	entityList := em.GetEntitiesWith(
		reflect.TypeOf(&components.UnitComponent{}),
		reflect.TypeOf(&components.BehaviorComponent{}),
	)

	for _, id := range entityList {
		behavior, _ := ecs.GetComponent[*components.BehaviorComponent](em, id)
		unit, _ := ecs.GetComponent[*components.UnitComponent](em, id)
		if behavior.State != components.StateConstructing || !unit.Plan.Empty() {
			continue
		}
		ent, pos, _ := s.world.Entity(id)

		size, ok := s.world.Rules.StructureSize(behavior.Kind)
		if !ok {
			panic(&PreconditionError{Op: "construct", Entity: id, Err: errUnknownKind(behavior.Kind)})
		}
		site := types.RectAt(behavior.Site, size)

		if !s.world.Grid.AreaFree(site, pos.Cell) || overlapsAny(site, claimed) {
			s.world.Logger.Warn("[ConstructionSystem] not enough space, construction aborted",
				EntityField(id), zap.String("kind", behavior.Kind), zap.Stringer("site", behavior.Site))
			s.world.Idle(id)
			continue
		}

		claimed = append(claimed, site)
		em.DestroyEntity(id)
		s.world.schedulePlacement(StructurePlacement{
			Builder: id,
			Kind:    behavior.Kind,
			Team:    ent.Team,
			Site:    behavior.Site,
		})
		scheduled++
		s.world.Logger.Debug("[ConstructionSystem] builder consumed, structure scheduled",
			EntityField(id), zap.String("kind", behavior.Kind), zap.Stringer("site", behavior.Site))
	}
	return scheduled
}

// overlapsAny 本 tick 已被其他建造者占用的区域
func overlapsAny(r types.Rect, others []types.Rect) bool {
	for _, o := range others {
		for _, p := range r.Cells() {
			if o.Contains(p) {
				return true
			}
		}
	}
	return false
}
