package systems

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/entities"
	"github.com/gonewx/rts/pkg/types"
)

// TrainingSystem 累积建筑的训练进度，完成后在建筑周围一圈放置新单位
//
// 放置时在向外扩展一格的包围盒内从左到右、从上到下扫描第一个空闲格子；
// 没有空闲格子时该单位丢失（记录日志，不重试，不退款）。
type TrainingSystem struct {
	world *World
}

// NewTrainingSystem 创建训练系统
func NewTrainingSystem(w *World) *TrainingSystem {
	return &TrainingSystem{world: w}
}

// TrainingResult 一次训练完成的结果
type TrainingResult struct {
	Trainer ecs.EntityID
	Kind    string
	Unit    ecs.EntityID // 0 表示因没有空位而丢失
}

// Update 训练阶段
// 先推进所有建筑的进度并收集完成项，再按 ID 顺序逐个放置，后放置者能看到前者占用的格子
func (s *TrainingSystem) Update(deltaTime float64) []TrainingResult {
	em := s.world.EM

	entityList := em.GetEntitiesWith(
		reflect.TypeOf(&components.TrainingComponent{}),
		reflect.TypeOf(&components.BehaviorComponent{}),
	)

	var completed []ecs.EntityID
	for _, id := range entityList {
		training, _ := ecs.GetComponent[*components.TrainingComponent](em, id)
		if !training.Active {
			continue
		}
		training.Progress += deltaTime
		if training.Progress >= training.Duration {
			completed = append(completed, id)
		}
	}

	results := make([]TrainingResult, 0, len(completed))
	for _, id := range completed {
		training, _ := ecs.GetComponent[*components.TrainingComponent](em, id)
		kind := training.Kind
		training.Active = false
		training.Kind = ""
		training.Progress = 0
		training.Duration = 0
		s.world.SetState(id, components.BehaviorComponent{State: components.StateIdle})

		results = append(results, TrainingResult{Trainer: id, Kind: kind, Unit: s.place(id, kind)})
	}
	return results
}

// place 在训练建筑周围放置新单位，失败返回 0
func (s *TrainingSystem) place(trainer ecs.EntityID, kind string) ecs.EntityID {
	ent, _, _ := s.world.Entity(trainer)
	footprint, _ := s.world.Footprint(trainer)

	cell, ok := s.freeRingCell(footprint)
	if !ok {
		s.world.Logger.Warn("[TrainingSystem] no free cell around trainer, unit lost",
			EntityField(trainer), zap.String("kind", kind))
		return 0
	}

	id, err := entities.NewEntity(s.world.EM, s.world.Grid, s.world.Rules, kind, ent.Team, cell)
	if err != nil {
		mustGrid("training spawn", trainer, err)
	}
	s.world.Logger.Debug("[TrainingSystem] unit trained",
		EntityField(id), zap.String("kind", kind), zap.Stringer("cell", cell))
	return id
}

// freeRingCell 扫描包围 footprint 的一圈格子
func (s *TrainingSystem) freeRingCell(footprint types.Rect) (types.Point, bool) {
	for _, p := range footprint.Expand(1).Cells() {
		if footprint.Contains(p) {
			continue
		}
		if s.world.Grid.InBounds(p) && s.world.Grid.IsFree(p) {
			return p, true
		}
	}
	return types.Point{}, false
}
