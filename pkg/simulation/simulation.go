// Package simulation 是确定性、按 tick 推进的 RTS 模拟核心
//
// Simulation 独占实体集合、占用网格和各阵营资源。每次 Advance 按固定顺序
// 执行完整的阶段流水线：移动、战斗、采集、返还、建造结算、移除、放置、训练。
// 指令通过 IssueCommand 同步生效，对下一次 Advance 可见。
//
// 模拟是单线程的，不做任何加锁；调用方必须在同一个 goroutine 中使用。
package simulation

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/entities"
	"github.com/gonewx/rts/pkg/game"
	"github.com/gonewx/rts/pkg/grid"
	"github.com/gonewx/rts/pkg/pathfinding"
	"github.com/gonewx/rts/pkg/systems"
	"github.com/gonewx/rts/pkg/types"
)

// 阶段名称，按执行顺序排列
const (
	PhaseMovement     = "movement"
	PhaseCombat       = "combat"
	PhaseGathering    = "gathering"
	PhaseReturn       = "return"
	PhaseConstruction = "construction"
	PhaseRemoval      = "removal"
	PhasePlacement    = "placement"
	PhaseTraining     = "training"
)

// Phases 阶段执行顺序
var Phases = []string{
	PhaseMovement, PhaseCombat, PhaseGathering, PhaseReturn,
	PhaseConstruction, PhaseRemoval, PhasePlacement, PhaseTraining,
}

// EntitySpec 初始实体
type EntitySpec struct {
	Kind string
	Team types.Team
	Pos  types.Point
}

// World 初始化输入：世界尺寸、永久障碍、阵营初始资源和初始实体
type World struct {
	Width    int
	Height   int
	Blocked  []types.Rect
	Teams    map[types.Team]int
	Entities []EntitySpec
}

// PhaseTiming 单个阶段耗时
type PhaseTiming struct {
	Phase    string
	Duration time.Duration
}

// TickReport 最近一次 Advance 的统计
type TickReport struct {
	Tick      uint64
	Removed   []ecs.EntityID
	Placed    []ecs.EntityID
	Trained   []systems.TrainingResult
	Moved     int
	Hits      int
	Picked    int
	Deposited int
	Phases    []PhaseTiming
	Duration  time.Duration
}

// Option 配置 Simulation
type Option func(*Simulation)

// WithLogger 设置日志
func WithLogger(logger *zap.Logger) Option {
	return func(s *Simulation) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics 设置指标记录器
func WithMetrics(m MetricsRecorder) Option {
	return func(s *Simulation) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Simulation 模拟核心
type Simulation struct {
	rules   *config.Rules
	em      *ecs.EntityManager
	grid    *grid.Grid
	teams   *game.TeamStates
	world   *systems.World
	logger  *zap.Logger
	metrics MetricsRecorder

	movement     *systems.MovementSystem
	combat       *systems.CombatSystem
	gathering    *systems.GatheringSystem
	returning    *systems.ReturnSystem
	construction *systems.ConstructionSystem
	removal      *systems.RemovalSystem
	placement    *systems.PlacementSystem
	training     *systems.TrainingSystem

	initial []ecs.EntityID
	tick    uint64
	last    TickReport
}

// New 根据种类目录和初始化输入创建模拟
// 初始实体按列表顺序创建，ID 依次递增；任何实体放置失败都会返回错误
func New(rules *config.Rules, world World, opts ...Option) (*Simulation, error) {
	if rules == nil {
		return nil, fmt.Errorf("rules are required")
	}
	if world.Width < 1 || world.Height < 1 {
		return nil, fmt.Errorf("world must be at least 1x1, got %dx%d", world.Width, world.Height)
	}

	s := &Simulation{
		rules:   rules,
		em:      ecs.NewEntityManager(),
		grid:    grid.New(world.Width, world.Height),
		logger:  zap.NewNop(),
		metrics: nopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}

	teams, err := game.NewTeamStates(world.Teams)
	if err != nil {
		return nil, err
	}
	s.teams = teams

	for i, r := range world.Blocked {
		if err := s.grid.SetArea(r.Min, r.Size, grid.Static); err != nil {
			return nil, fmt.Errorf("blocked[%d]: %w", i, err)
		}
	}

	for i, e := range world.Entities {
		id, err := entities.NewEntity(s.em, s.grid, rules, e.Kind, e.Team, e.Pos)
		if err != nil {
			return nil, fmt.Errorf("entities[%d]: %w", i, err)
		}
		if e.Team != types.TeamNeutral {
			s.teams.Ensure(e.Team)
		}
		s.initial = append(s.initial, id)
	}

	s.world = systems.NewWorld(s.em, s.grid, s.teams, rules, s.logger)
	s.world.OnPathSearch = s.observePathSearch

	s.movement = systems.NewMovementSystem(s.world)
	s.combat = systems.NewCombatSystem(s.world)
	s.gathering = systems.NewGatheringSystem(s.world)
	s.returning = systems.NewReturnSystem(s.world)
	s.construction = systems.NewConstructionSystem(s.world)
	s.removal = systems.NewRemovalSystem(s.world)
	s.placement = systems.NewPlacementSystem(s.world)
	s.training = systems.NewTrainingSystem(s.world)

	s.logger.Info("[Simulation] initialized",
		zap.Int("width", world.Width), zap.Int("height", world.Height),
		zap.Int("entities", len(s.initial)), zap.Int("blocked", len(world.Blocked)))
	s.publishGauges()
	return s, nil
}

// InitialEntities 初始实体的 ID，与 World.Entities 一一对应
func (s *Simulation) InitialEntities() []ecs.EntityID {
	out := make([]ecs.EntityID, len(s.initial))
	copy(out, s.initial)
	return out
}

// Tick 已完成的 tick 数
func (s *Simulation) Tick() uint64 {
	return s.tick
}

// LastReport 最近一次 Advance 的统计
func (s *Simulation) LastReport() TickReport {
	return s.last
}

// Advance 执行一次完整的阶段流水线
// 参数:
//   - dt: 本 tick 经过的时间（秒），不能为负
//
// 返回:
//   - []ecs.EntityID: 本 tick 被移除的实体（升序），供表现层清理
func (s *Simulation) Advance(dt float64) []ecs.EntityID {
	if dt < 0 {
		panic(&PreconditionError{Op: "advance", Err: fmt.Errorf("negative dt %v", dt)})
	}

	start := time.Now()
	report := TickReport{Tick: s.tick + 1, Phases: make([]PhaseTiming, 0, len(Phases))}
	phase := func(name string, fn func()) {
		begin := time.Now()
		fn()
		d := time.Since(begin)
		report.Phases = append(report.Phases, PhaseTiming{Phase: name, Duration: d})
		s.metrics.ObservePhase(name, d)
	}

	phase(PhaseMovement, func() { report.Moved = s.movement.Update(dt) })
	phase(PhaseCombat, func() { report.Hits = s.combat.Update(dt) })
	phase(PhaseGathering, func() { report.Picked = s.gathering.Update() })
	phase(PhaseReturn, func() { report.Deposited = s.returning.Update() })
	phase(PhaseConstruction, func() { s.construction.Update() })
	phase(PhaseRemoval, func() { report.Removed = s.removal.Update() })
	phase(PhasePlacement, func() { report.Placed = s.placement.Update() })
	phase(PhaseTraining, func() { report.Trained = s.training.Update(dt) })

	s.tick++
	report.Duration = time.Since(start)
	s.last = report

	s.metrics.ObserveTick(report.Duration)
	s.metrics.AddRemoved(len(report.Removed))
	s.publishGauges()

	if len(report.Removed) > 0 || len(report.Placed) > 0 || len(report.Trained) > 0 {
		s.logger.Debug("[Simulation] tick",
			zap.Uint64("tick", s.tick),
			zap.Int("removed", len(report.Removed)),
			zap.Int("placed", len(report.Placed)),
			zap.Int("trained", len(report.Trained)))
	}

	if report.Removed == nil {
		return []ecs.EntityID{}
	}
	return report.Removed
}

func (s *Simulation) publishGauges() {
	s.metrics.SetEntityCount(s.em.Count())
	for _, team := range s.teams.Teams() {
		s.metrics.SetTeamResources(team.String(), s.teams.Get(team))
	}
}

func (s *Simulation) observePathSearch(res pathfinding.Result) {
	switch {
	case res.Greedy:
		s.metrics.IncPathSearch("greedy")
	case res.Found:
		s.metrics.IncPathSearch("found")
	default:
		s.metrics.IncPathSearch("none")
	}
}
