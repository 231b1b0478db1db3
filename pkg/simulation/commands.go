package simulation

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/pathfinding"
	"github.com/gonewx/rts/pkg/systems"
	"github.com/gonewx/rts/pkg/types"
)

// Command 玩家或 AI 下达的指令
type Command interface {
	// Name 指令名称，用于日志和指标
	Name() string
	// Actor 执行指令的实体，必须属于发令阵营
	Actor() ecs.EntityID
}

// Train 建筑训练一个单位，下令时立即扣费
type Train struct {
	Structure ecs.EntityID
	Kind      string
}

// Construct 单位前往 Site 建造建筑，完成时单位被消耗
type Construct struct {
	Builder ecs.EntityID
	Kind    string
	Site    types.Point // 建筑左上角
}

// Move 单位移动到指定格子
type Move struct {
	Unit ecs.EntityID
	To   types.Point
}

// Heal 花费资源把己方实体恢复到满血
type Heal struct {
	Target ecs.EntityID
}

// Attack 攻击其他阵营的实体
type Attack struct {
	Attacker ecs.EntityID
	Victim   ecs.EntityID
}

// GatherResource 前往中立资源点采集
// Structure 为 0 时返还到第一个友方建筑
type GatherResource struct {
	Gatherer  ecs.EntityID
	Resource  ecs.EntityID
	Structure ecs.EntityID
}

// ReturnResource 把携带的资源送回建筑
// Structure 为 0 时返还到第一个友方建筑
type ReturnResource struct {
	Gatherer  ecs.EntityID
	Structure ecs.EntityID
}

func (Train) Name() string          { return string(config.ActionTrain) }
func (Construct) Name() string      { return string(config.ActionConstruct) }
func (Move) Name() string           { return string(config.ActionMove) }
func (Heal) Name() string           { return string(config.ActionHeal) }
func (Attack) Name() string         { return string(config.ActionAttack) }
func (GatherResource) Name() string { return string(config.ActionGather) }
func (ReturnResource) Name() string { return string(config.ActionReturn) }

func (c Train) Actor() ecs.EntityID          { return c.Structure }
func (c Construct) Actor() ecs.EntityID      { return c.Builder }
func (c Move) Actor() ecs.EntityID           { return c.Unit }
func (c Heal) Actor() ecs.EntityID           { return c.Target }
func (c Attack) Actor() ecs.EntityID         { return c.Attacker }
func (c GatherResource) Actor() ecs.EntityID { return c.Gatherer }
func (c ReturnResource) Actor() ecs.EntityID { return c.Gatherer }

// IssueCommand 校验并执行指令
//
// 引用不存在的实体或指挥其他阵营的实体属于调用方的程序错误，以 *PreconditionError panic。
// 软拒绝（重复采集、没有货物时返还、资源不足等）返回 *RejectionError，状态不变；
// 找不到路线时行动者回到空闲，返回匹配 ErrNoPath 的 *RejectionError。
func (s *Simulation) IssueCommand(cmd Command, team types.Team) error {
	if cmd == nil {
		panic(&PreconditionError{Op: "issue command", Err: fmt.Errorf("nil command")})
	}
	actor := cmd.Actor()
	ent := s.mustEntity(cmd.Name(), actor)
	if ent.Team != team {
		panic(&PreconditionError{
			Op:     cmd.Name(),
			Entity: actor,
			Err:    fmt.Errorf("%w: owned by %s, issued by %s", ErrNotOwner, ent.Team, team),
		})
	}
	kind, _ := s.rules.Kind(ent.Kind)

	var rej *RejectionError
	if !kind.HasAction(config.Action(cmd.Name())) {
		rej = reject(cmd.Name(), actor, fmt.Sprintf("%s cannot %s", ent.Kind, cmd.Name()))
	} else {
		switch c := cmd.(type) {
		case Train:
			rej = s.train(c, ent, kind)
		case Construct:
			rej = s.construct(c, kind)
		case Move:
			rej = s.move(c)
		case Heal:
			rej = s.heal(c, ent, kind)
		case Attack:
			rej = s.attack(c, ent)
		case GatherResource:
			rej = s.gather(c, ent)
		case ReturnResource:
			rej = s.returnCargo(c, ent)
		default:
			panic(&PreconditionError{Op: "issue command", Entity: actor, Err: fmt.Errorf("unsupported command %T", cmd)})
		}
	}

	if rej != nil {
		s.logger.Warn("[Simulation] command rejected",
			zap.String("command", rej.Command), systems.EntityField(rej.Entity),
			zap.Stringer("team", team), zap.String("reason", rej.Reason))
		s.metrics.IncRejection(rej.Command, rej.class())
		return rej
	}
	s.logger.Debug("[Simulation] command accepted",
		zap.String("command", cmd.Name()), systems.EntityField(actor), zap.Stringer("team", team))
	return nil
}

// mustEntity 查找实体，不存在时 panic
func (s *Simulation) mustEntity(op string, id ecs.EntityID) *components.EntityComponent {
	ent, _, ok := s.world.Entity(id)
	if !ok {
		panic(&PreconditionError{Op: op, Entity: id, Err: ErrUnknownEntity})
	}
	return ent
}

func (s *Simulation) train(c Train, ent *components.EntityComponent, kind *config.KindRules) *RejectionError {
	if !kind.CanTrain(c.Kind) {
		return reject(c.Name(), c.Structure, fmt.Sprintf("%s cannot train %q", ent.Kind, c.Kind))
	}
	training, ok := ecs.GetComponent[*components.TrainingComponent](s.em, c.Structure)
	if !ok {
		return reject(c.Name(), c.Structure, "no training queue")
	}
	if training.Active {
		return reject(c.Name(), c.Structure, "already training")
	}
	unit := s.rules.Units[c.Kind]
	if !s.teams.Spend(ent.Team, unit.Cost) {
		return reject(c.Name(), c.Structure, fmt.Sprintf("insufficient resources: need %d, have %d", unit.Cost, s.teams.Get(ent.Team)))
	}

	training.Active = true
	training.Kind = c.Kind
	training.Progress = 0
	training.Duration = unit.TrainTime
	s.world.SetState(c.Structure, components.BehaviorComponent{State: components.StateTraining, Kind: c.Kind})
	return nil
}

func (s *Simulation) construct(c Construct, kind *config.KindRules) *RejectionError {
	if !kind.CanBuild(c.Kind) {
		return reject(c.Name(), c.Builder, fmt.Sprintf("cannot build %q", c.Kind))
	}
	size, _ := s.rules.StructureSize(c.Kind)
	_, pos, _ := s.world.Entity(c.Builder)
	if !s.grid.AreaFree(types.RectAt(c.Site, size), pos.Cell) {
		return reject(c.Name(), c.Builder, fmt.Sprintf("site %s is blocked or out of bounds", c.Site))
	}
	if !s.world.PlanPath(c.Builder, pathfinding.ToPoint(c.Site)) {
		s.world.Idle(c.Builder)
		return rejectNoPath(c.Name(), c.Builder)
	}
	s.world.SetState(c.Builder, components.BehaviorComponent{
		State: components.StateConstructing,
		Kind:  c.Kind,
		Site:  c.Site,
	})
	return nil
}

func (s *Simulation) move(c Move) *RejectionError {
	if !s.grid.InBounds(c.To) {
		return reject(c.Name(), c.Unit, fmt.Sprintf("destination %s out of bounds", c.To))
	}
	if !s.world.PlanPath(c.Unit, pathfinding.ToPoint(c.To)) {
		s.world.Idle(c.Unit)
		return rejectNoPath(c.Name(), c.Unit)
	}
	s.world.SetState(c.Unit, components.BehaviorComponent{State: components.StateMoving})
	return nil
}

func (s *Simulation) heal(c Heal, ent *components.EntityComponent, kind *config.KindRules) *RejectionError {
	health, ok := ecs.GetComponent[*components.HealthComponent](s.em, c.Target)
	if !ok || !health.Damaged() {
		return reject(c.Name(), c.Target, "not damaged")
	}
	if !s.teams.Spend(ent.Team, kind.HealCost) {
		return reject(c.Name(), c.Target, fmt.Sprintf("insufficient resources: need %d, have %d", kind.HealCost, s.teams.Get(ent.Team)))
	}
	health.CurrentHealth = health.MaxHealth
	return nil
}

func (s *Simulation) attack(c Attack, ent *components.EntityComponent) *RejectionError {
	victim := s.mustEntity(c.Name(), c.Victim)
	if victim.Team == ent.Team {
		return reject(c.Name(), c.Attacker, "cannot attack own team")
	}
	if victim.Team == types.TeamNeutral || !ecs.HasComponent[*components.HealthComponent](s.em, c.Victim) {
		return reject(c.Name(), c.Attacker, fmt.Sprintf("%s cannot be attacked", victim.Kind))
	}
	if !s.world.OrderAttack(c.Attacker, c.Victim) {
		return rejectNoPath(c.Name(), c.Attacker)
	}
	return nil
}

func (s *Simulation) gather(c GatherResource, ent *components.EntityComponent) *RejectionError {
	resource := s.mustEntity(c.Name(), c.Resource)
	cargo, ok := ecs.GetComponent[*components.GatherComponent](s.em, c.Gatherer)
	if !ok {
		return reject(c.Name(), c.Gatherer, "cannot gather")
	}
	if cargo.Carrying {
		return reject(c.Name(), c.Gatherer, "already carrying cargo")
	}
	if resource.Team != types.TeamNeutral || !s.world.IsDeposit(c.Resource) {
		return reject(c.Name(), c.Gatherer, fmt.Sprintf("%s is not a neutral resource", resource.Kind))
	}
	if s.world.Depleted(c.Resource) {
		return reject(c.Name(), c.Gatherer, "resource depleted")
	}
	if c.Structure != ecs.InvalidEntity {
		s.mustEntity(c.Name(), c.Structure)
		if !s.world.IsFriendlyStructure(c.Structure, ent.Team) {
			return reject(c.Name(), c.Gatherer, "return target is not a friendly structure")
		}
	}

	cargo.Structure = c.Structure
	if !s.world.OrderGather(c.Gatherer, c.Resource) {
		return rejectNoPath(c.Name(), c.Gatherer)
	}
	return nil
}

func (s *Simulation) returnCargo(c ReturnResource, ent *components.EntityComponent) *RejectionError {
	cargo, ok := ecs.GetComponent[*components.GatherComponent](s.em, c.Gatherer)
	if !ok || !cargo.Carrying {
		return reject(c.Name(), c.Gatherer, "not carrying cargo")
	}
	if c.Structure != ecs.InvalidEntity {
		s.mustEntity(c.Name(), c.Structure)
		if !s.world.IsFriendlyStructure(c.Structure, ent.Team) {
			return reject(c.Name(), c.Gatherer, "return target is not a friendly structure")
		}
	}
	structure, ok := s.world.ReturnTarget(ent.Team, c.Structure)
	if !ok {
		return reject(c.Name(), c.Gatherer, "no friendly structure")
	}

	if c.Structure != ecs.InvalidEntity {
		cargo.Structure = c.Structure
	}
	if !s.world.OrderReturn(c.Gatherer, structure) {
		return rejectNoPath(c.Name(), c.Gatherer)
	}
	return nil
}
