package systems

import (
	"go.uber.org/zap"

	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/entities"
)

// PlacementSystem 放置本 tick 建造完成的建筑
type PlacementSystem struct {
	world *World
}

// NewPlacementSystem 创建放置系统
func NewPlacementSystem(w *World) *PlacementSystem {
	return &PlacementSystem{world: w}
}

// Update 放置阶段，返回新建筑的 ID
func (s *PlacementSystem) Update() []ecs.EntityID {
	var created []ecs.EntityID
	for _, p := range s.world.takePlacements() {
		id, err := entities.NewEntity(s.world.EM, s.world.Grid, s.world.Rules, p.Kind, p.Team, p.Site)
		if err != nil {
			// 建造阶段已检查过占地，这里失败说明中间阶段有人占用了格子
			s.world.Logger.Error("[PlacementSystem] structure placement failed",
				zap.Uint64("builder", uint64(p.Builder)), zap.String("kind", p.Kind), zap.Error(err))
			continue
		}
		created = append(created, id)
		s.world.Logger.Info("[PlacementSystem] structure completed",
			EntityField(id), zap.String("kind", p.Kind), zap.Stringer("team", p.Team), zap.Stringer("site", p.Site))
	}
	return created
}
