package simulation

import (
	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/types"
)

// EntitySnapshot 实体的只读快照，供渲染和 HUD 使用
type EntitySnapshot struct {
	ID       ecs.EntityID
	Kind     string
	Team     types.Team
	Pos      types.Point
	Size     types.Size
	Solid    bool
	Physical components.PhysicalType
	Deposit  bool

	HasHealth bool
	Health    int
	MaxHealth int

	State    components.BehaviorComponent
	Carrying bool
	Training string  // 正在训练的种类
	Progress float64 // 训练进度 0..1
	Plan     []types.Point
	Actions  []config.Action
}

// Footprint 实体覆盖的矩形
func (e EntitySnapshot) Footprint() types.Rect {
	return types.RectAt(e.Pos, e.Size)
}

// Entities 按 ID 升序返回所有实体的快照
func (s *Simulation) Entities() []EntitySnapshot {
	ids := s.em.Entities()
	out := make([]EntitySnapshot, 0, len(ids))
	for _, id := range ids {
		if snap, ok := s.Entity(id); ok {
			out = append(out, snap)
		}
	}
	return out
}

// Entity 返回单个实体的快照
func (s *Simulation) Entity(id ecs.EntityID) (EntitySnapshot, bool) {
	ent, pos, ok := s.world.Entity(id)
	if !ok {
		return EntitySnapshot{}, false
	}
	snap := EntitySnapshot{
		ID:       id,
		Kind:     ent.Kind,
		Team:     ent.Team,
		Pos:      pos.Cell,
		Size:     ent.Size,
		Solid:    ent.Solid,
		Physical: ent.Physical,
		Deposit:  s.world.IsDeposit(id),
		Actions:  s.Actions(id),
	}
	if h, ok := ecs.GetComponent[*components.HealthComponent](s.em, id); ok {
		snap.HasHealth = true
		snap.Health = h.CurrentHealth
		snap.MaxHealth = h.MaxHealth
	}
	if b, ok := ecs.GetComponent[*components.BehaviorComponent](s.em, id); ok {
		snap.State = *b
	}
	if g, ok := ecs.GetComponent[*components.GatherComponent](s.em, id); ok {
		snap.Carrying = g.Carrying
	}
	if t, ok := ecs.GetComponent[*components.TrainingComponent](s.em, id); ok && t.Active {
		snap.Training = t.Kind
		snap.Progress = t.Fraction()
	}
	if u, ok := ecs.GetComponent[*components.UnitComponent](s.em, id); ok {
		snap.Plan = u.Plan.Cells()
	}
	return snap, true
}

// Exists 实体是否存活
func (s *Simulation) Exists(id ecs.EntityID) bool {
	return s.em.Exists(id)
}

// Resources 阵营当前资源
func (s *Simulation) Resources(team types.Team) int {
	return s.teams.Get(team)
}

// Teams 所有有资源计数的阵营
func (s *Simulation) Teams() []types.Team {
	return s.teams.Teams()
}

// Actions 实体当前可以接收的指令
// 由种类声明的指令按状态过滤：携带货物时才能返还、未携带时才能采集、
// 空闲的训练队列才能训练、受伤时才能治疗
func (s *Simulation) Actions(id ecs.EntityID) []config.Action {
	ent, _, ok := s.world.Entity(id)
	if !ok {
		return nil
	}
	kind, ok := s.rules.Kind(ent.Kind)
	if !ok {
		return nil
	}

	cargo, hasCargo := ecs.GetComponent[*components.GatherComponent](s.em, id)
	training, hasTraining := ecs.GetComponent[*components.TrainingComponent](s.em, id)
	health, hasHealth := ecs.GetComponent[*components.HealthComponent](s.em, id)

	out := make([]config.Action, 0, len(kind.Actions))
	for _, a := range kind.Actions {
		switch a {
		case config.ActionReturn:
			if !hasCargo || !cargo.Carrying {
				continue
			}
		case config.ActionGather:
			if !hasCargo || cargo.Carrying {
				continue
			}
		case config.ActionTrain:
			if !hasTraining || training.Active {
				continue
			}
		case config.ActionHeal:
			if !hasHealth || !health.Damaged() {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
