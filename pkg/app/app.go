// Package app 提供模拟应用的核心包装器
//
// 该包把加载规则、场景和构建模拟的逻辑从 main 包提取出来，
// 使其可以被无界面运行器（cmd/rts-sim）和窗口查看器（cmd/rts-viewer）共用。
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gonewx/rts/internal/observability"
	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/simulation"
	"github.com/gonewx/rts/pkg/types"
)

// Options 应用启动参数
type Options struct {
	Config  *config.AppConfig
	Logger  *zap.Logger
	Metrics simulation.MetricsRecorder // 可为 nil
}

// App 持有一次模拟运行：模拟核心、场景脚本和追踪器
type App struct {
	cfg    *config.AppConfig
	sim    *simulation.Simulation
	logger *zap.Logger
	tracer trace.Tracer

	scenario *config.Scenario
	script   map[uint64][]config.ScriptedCommand
	dt       float64
}

// NewApp 加载规则与场景并创建模拟
//
// 调用此函数前，若规则或场景路径以 data/ 开头，必须先调用 embedded.Init()。
func NewApp(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config

	rules, err := config.LoadRules(cfg.Sim.Rules)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	scenario, err := config.LoadScenario(cfg.Sim.Scenario)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	world, err := simulation.WorldFromScenario(scenario)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	sim, err := simulation.New(rules, world,
		simulation.WithLogger(logger.Named("sim")),
		simulation.WithMetrics(opts.Metrics))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	script := make(map[uint64][]config.ScriptedCommand)
	for _, c := range scenario.Commands {
		script[uint64(c.Tick)] = append(script[uint64(c.Tick)], c)
	}

	logger.Info("[App] scenario loaded",
		zap.String("scenario", scenario.Name),
		zap.Int("width", scenario.Width), zap.Int("height", scenario.Height),
		zap.Int("entities", len(scenario.Entities)),
		zap.Int("scriptedCommands", len(scenario.Commands)),
		zap.Float64("tickRate", cfg.Sim.TickRate))

	return &App{
		cfg:      cfg,
		sim:      sim,
		logger:   logger,
		tracer:   otel.Tracer(observability.TracerName),
		scenario: scenario,
		script:   script,
		dt:       1 / cfg.Sim.TickRate,
	}, nil
}

// Simulation 返回模拟核心
func (a *App) Simulation() *simulation.Simulation {
	return a.sim
}

// Scenario 返回加载的场景
func (a *App) Scenario() *config.Scenario {
	return a.scenario
}

// TickInterval 每个 tick 的模拟时长（秒）
func (a *App) TickInterval() float64 {
	return a.dt
}

// Done 是否已达到最大 tick 数
func (a *App) Done() bool {
	return a.cfg.Sim.MaxTicks > 0 && a.sim.Tick() >= uint64(a.cfg.Sim.MaxTicks)
}

// Issue 下达一条指令，软拒绝只记录日志
// 引用的实体已不存在时忽略指令
func (a *App) Issue(cmd simulation.Command, team types.Team) error {
	for _, id := range simulation.References(cmd) {
		if !a.sim.Exists(id) {
			a.logger.Debug("[App] command references a removed entity, skipped",
				zap.String("command", cmd.Name()), zap.Uint64("entity", uint64(id)))
			return nil
		}
	}
	err := a.sim.IssueCommand(cmd, team)
	if err != nil && !errors.Is(err, simulation.ErrRejected) {
		return err
	}
	return nil
}

// Step 执行本 tick 的脚本指令并推进一个 tick，每个 tick 记录一个 span
func (a *App) Step(ctx context.Context) (simulation.TickReport, error) {
	tick := a.sim.Tick()
	ctx, span := a.tracer.Start(ctx, "sim.tick", trace.WithAttributes(attribute.Int64("tick", int64(tick))))
	defer span.End()

	if err := a.runScript(ctx, tick); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return simulation.TickReport{}, err
	}

	a.sim.Advance(a.dt)
	report := a.sim.LastReport()

	for _, p := range report.Phases {
		span.AddEvent(p.Phase, trace.WithAttributes(attribute.Int64("durationNs", p.Duration.Nanoseconds())))
	}
	span.SetAttributes(
		attribute.Int("removed", len(report.Removed)),
		attribute.Int("placed", len(report.Placed)),
		attribute.Int("trained", len(report.Trained)),
		attribute.Int("moved", report.Moved),
		attribute.Int("hits", report.Hits),
		attribute.Int("deposited", report.Deposited),
	)

	if a.cfg.Sim.CheckInvariants {
		if err := a.sim.CheckGridConsistency(); err != nil {
			err = fmt.Errorf("tick %d: grid consistency: %w", report.Tick, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return report, err
		}
	}
	return report, nil
}

func (a *App) runScript(ctx context.Context, tick uint64) error {
	cmds := a.script[tick]
	if len(cmds) == 0 {
		return nil
	}
	ids := a.sim.InitialEntities()
	for _, sc := range cmds {
		cmd, team, err := simulation.ScriptCommand(sc, ids)
		if err != nil {
			return fmt.Errorf("tick %d: scripted command: %w", tick, err)
		}
		trace.SpanFromContext(ctx).AddEvent("command", trace.WithAttributes(
			attribute.String("command", cmd.Name()),
			attribute.String("team", team.String()),
			attribute.Int64("actor", int64(cmd.Actor())),
		))
		if err := a.Issue(cmd, team); err != nil {
			return err
		}
	}
	return nil
}

// Summary 运行结束时的统计
type Summary struct {
	Ticks     uint64
	Entities  int
	Resources map[types.Team]int
}

// Summarize 汇总当前状态
func (a *App) Summarize() Summary {
	s := Summary{
		Ticks:     a.sim.Tick(),
		Entities:  len(a.sim.Entities()),
		Resources: make(map[types.Team]int),
	}
	for _, team := range a.sim.Teams() {
		s.Resources[team] = a.sim.Resources(team)
	}
	return s
}

// Fields 日志字段
func (s Summary) Fields() []zap.Field {
	fields := []zap.Field{zap.Uint64("ticks", s.Ticks), zap.Int("entities", s.Entities)}
	teams := make([]types.Team, 0, len(s.Resources))
	for team := range s.Resources {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i] < teams[j] })
	for _, team := range teams {
		fields = append(fields, zap.Int("resources."+team.String(), s.Resources[team]))
	}
	return fields
}
