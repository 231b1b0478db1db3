package systems

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/ecs"
)

// MovementSystem 推进单位的移动计划
// 每个单位在移动闸门打开时最多前进一格；目标格子被占用时原地等待，不会自动重新寻路
type MovementSystem struct {
	world *World
}

// NewMovementSystem 创建移动系统
func NewMovementSystem(w *World) *MovementSystem {
	return &MovementSystem{world: w}
}

// Update 移动阶段
// 参数:
//   - deltaTime: 本 tick 经过的时间（秒），用于累积移动闸门
//
// 返回:
//   - int: 本 tick 成功前进一格的单位数量
func (s *MovementSystem) Update(deltaTime float64) int {
	em := s.world.EM
	moved := 0

	entityList := em.GetEntitiesWith(
		reflect.TypeOf(&components.UnitComponent{}),
		reflect.TypeOf(&components.EntityComponent{}),
		reflect.TypeOf(&components.PositionComponent{}),
		reflect.TypeOf(&components.BehaviorComponent{}),
	)

	for _, id := range entityList {
		unit, _ := ecs.GetComponent[*components.UnitComponent](em, id)
		behavior, _ := ecs.GetComponent[*components.BehaviorComponent](em, id)

		if s.step(id, unit, deltaTime) {
			moved++
		}

		if unit.Plan.Empty() && behavior.State == components.StateMoving {
			behavior.Reset()
		}
	}
	return moved
}

// step 尝试前进一格，返回是否移动
func (s *MovementSystem) step(id ecs.EntityID, unit *components.UnitComponent, deltaTime float64) bool {
	next, ok := unit.Plan.Next()
	if !ok {
		// 没有计划时闸门保持打开，但不无限累积
		unit.MoveTimer = min(unit.MoveTimer+deltaTime, unit.MoveInterval)
		return false
	}

	unit.MoveTimer += deltaTime
	if unit.MoveTimer < unit.MoveInterval {
		return false
	}

	ent, pos, _ := s.world.Entity(id)
	if ent.Solid {
		if !s.world.Grid.IsFree(next) {
			// 被占用：保持闸门打开，下个 tick 重试
			s.world.Logger.Debug("[MovementSystem] next cell occupied, stalling",
				EntityField(id), zap.Stringer("cell", next))
			return false
		}
		mustGrid("movement release", id, s.world.Grid.Release(pos.Cell))
		mustGrid("movement occupy", id, s.world.Grid.Occupy(next, ent.Team))
	} else if !s.world.Grid.InBounds(next) {
		unit.Plan.Clear()
		return false
	}

	pos.Cell = next
	unit.Plan.Advance()
	unit.MoveTimer = 0
	return true
}
