package simulation

import (
	"fmt"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/grid"
	"github.com/gonewx/rts/pkg/types"
)

// Width 世界宽度（格）
func (s *Simulation) Width() int { return s.grid.Width() }

// Height 世界高度（格）
func (s *Simulation) Height() int { return s.grid.Height() }

// Cell 返回格子的占用状态
func (s *Simulation) Cell(p types.Point) (grid.Cell, error) {
	return s.grid.Get(p)
}

// Kind 返回种类的规则
func (s *Simulation) Kind(name string) (*config.KindRules, bool) {
	return s.rules.Kind(name)
}

// StructureSize 建筑种类的固定占地
func (s *Simulation) StructureSize(kind string) (types.Size, bool) {
	return s.rules.StructureSize(kind)
}

// StructureFits 以 corner 为左上角、尺寸为 size 的建筑能否放下
// ignore 处的格子视为空闲（通常是将被消耗的建造者所在格子）
func (s *Simulation) StructureFits(size types.Size, corner, ignore types.Point) bool {
	if size.W < 1 || size.H < 1 {
		return false
	}
	return s.grid.AreaFree(types.RectAt(corner, size), ignore)
}

// FindStructureSite 在 near 周围由近及远逐圈寻找能放下 kind 的左上角
// 每一圈按从左到右、从上到下扫描，maxRadius 为最大圈数
func (s *Simulation) FindStructureSite(kind string, near, ignore types.Point, maxRadius int) (types.Point, bool) {
	size, ok := s.rules.StructureSize(kind)
	if !ok {
		return types.Point{}, false
	}
	for r := 0; r <= maxRadius; r++ {
		ring := types.RectAt(near, types.Size{W: 1, H: 1}).Expand(r)
		for _, corner := range ring.Cells() {
			// 只看这一圈的边
			if r > 0 && ring.Expand(-1).Contains(corner) {
				continue
			}
			if s.StructureFits(size, corner, ignore) {
				return corner, true
			}
		}
	}
	return types.Point{}, false
}

// CheckGridConsistency 校验网格中被实体占用的格子恰好等于所有 solid 实体占地的并集
func (s *Simulation) CheckGridConsistency() error {
	expected := make(map[types.Point]ecs.EntityID)
	for _, id := range s.em.Entities() {
		ent, pos, ok := s.world.Entity(id)
		if !ok || !ent.Solid {
			continue
		}
		for _, p := range components.Footprint(ent, pos).Cells() {
			if other, dup := expected[p]; dup {
				return fmt.Errorf("cell %s covered by entities %d and %d", p, other, id)
			}
			expected[p] = id
			c, err := s.grid.Get(p)
			if err != nil {
				return fmt.Errorf("entity %d footprint: %w", id, err)
			}
			if c != grid.Occupied(ent.Team) {
				return fmt.Errorf("cell %s of entity %d is %v, want %v", p, id, c, grid.Occupied(ent.Team))
			}
		}
	}

	occupied := s.grid.EntityCells()
	if len(occupied) != len(expected) {
		for _, p := range occupied {
			if _, ok := expected[p]; !ok {
				return fmt.Errorf("cell %s marked occupied but no entity covers it", p)
			}
		}
	}
	return nil
}
