package systems

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/ecs"
)

// RemovalSystem 移除生命值耗尽或已被标记的实体
// 移除前先释放占地，同一 tick 内后续阶段即可复用这些格子
type RemovalSystem struct {
	world *World
}

// NewRemovalSystem 创建移除系统
func NewRemovalSystem(w *World) *RemovalSystem {
	return &RemovalSystem{world: w}
}

// Update 移除阶段
// 返回:
//   - []ecs.EntityID: 本 tick 移除的实体（升序）
func (s *RemovalSystem) Update() []ecs.EntityID {
	em := s.world.EM

	for _, id := range em.GetEntitiesWith(reflect.TypeOf(&components.HealthComponent{})) {
		health, _ := ecs.GetComponent[*components.HealthComponent](em, id)
		if health.Dead() {
			em.DestroyEntity(id)
		}
	}

	for _, id := range em.PendingDestroy() {
		ent, pos, ok := s.world.Entity(id)
		if !ok || !ent.Solid {
			continue
		}
		mustGrid("removal release", id, s.world.Grid.ReleaseArea(pos.Cell, ent.Size))
	}

	removed := em.RemoveMarkedEntities()
	if len(removed) > 0 {
		s.world.Logger.Debug("[RemovalSystem] entities removed", zap.Int("count", len(removed)))
	}
	return removed
}
