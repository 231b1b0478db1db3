// Package viewer 用 ebiten 窗口实时显示模拟，并允许玩家用鼠标和键盘下达指令
//
// 操作：
//   - 左键：选中己方实体
//   - 右键：移动、攻击、采集或返还（由点击目标决定）
//   - T / 1-9：训练第一个 / 第 n 个种类，选中单位时为建造
//   - H：治疗
//   - Space：暂停，+/-：调整速度，G：网格线，P：移动计划，F11：全屏
package viewer

import (
	"context"
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/gonewx/rts/pkg/app"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/game"
	"github.com/gonewx/rts/pkg/simulation"
	"github.com/gonewx/rts/pkg/types"
)

// Viewer 实现 ebiten.Game
type Viewer struct {
	ctx      context.Context
	app      *app.App
	sim      *simulation.Simulation
	settings *game.SettingsManager
	logger   *zap.Logger
	title    string

	team     types.Team // 玩家控制的阵营
	selected ecs.EntityID
	paused   bool
	pending  float64 // 尚未推进的模拟时间（秒）
	status   string  // 最近一条指令的结果

	// 每帧刷新的快照
	snaps []simulation.EntitySnapshot
}

// New 创建查看器
// settings 为 nil 时使用只在内存中的默认设置
func New(ctx context.Context, a *app.App, settings *game.SettingsManager, title string, logger *zap.Logger) *Viewer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings == nil {
		settings = game.NewSettingsManager(nil, logger)
	}
	v := &Viewer{
		ctx:      ctx,
		app:      a,
		sim:      a.Simulation(),
		settings: settings,
		logger:   logger,
		title:    title,
		team:     types.TeamPlayer,
	}
	v.snaps = v.sim.Entities()
	return v
}

// Run 打开窗口并阻塞到窗口关闭或 ctx 被取消
func (v *Viewer) Run() error {
	w, h := v.layout().ScreenSize()
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(v.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(v.settings.GetSettings().Fullscreen)

	err := ebiten.RunGame(v)
	if errors.Is(err, errClosed) {
		return nil
	}
	return err
}

var errClosed = errors.New("viewer closed")

func (v *Viewer) layout() Layout {
	return Layout{
		CellSize: v.settings.GetSettings().CellSize,
		Width:    v.sim.Width(),
		Height:   v.sim.Height(),
	}
}

// Update 处理输入并按速度倍率推进模拟
func (v *Viewer) Update() error {
	if v.ctx.Err() != nil {
		return errClosed
	}

	v.handleKeys()
	v.handleMouse()

	if !v.paused && !v.app.Done() {
		v.pending += v.settings.GetSettings().Speed / float64(ebiten.TPS())
		for v.pending >= v.app.TickInterval() && !v.app.Done() {
			v.pending -= v.app.TickInterval()
			if _, err := v.app.Step(v.ctx); err != nil {
				return fmt.Errorf("tick %d: %w", v.sim.Tick(), err)
			}
		}
	}

	v.snaps = v.sim.Entities()
	if v.selected != 0 && !v.sim.Exists(v.selected) {
		v.selected = 0
	}
	return nil
}

// Layout 返回逻辑屏幕尺寸
func (v *Viewer) Layout(_, _ int) (int, int) {
	return v.layout().ScreenSize()
}

func (v *Viewer) handleMouse() {
	l := v.layout()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		p, ok := l.ScreenToCell(ebiten.CursorPosition())
		if !ok {
			return
		}
		v.selected = 0
		if hit, ok := EntityAt(v.snaps, p); ok && hit.Team == v.team {
			v.selected = hit.ID
		}
		return
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		p, ok := l.ScreenToCell(ebiten.CursorPosition())
		sel, hasSel := v.selection()
		if !ok || !hasSel {
			return
		}
		if cmd, ok := OrderFor(v.snaps, sel, p); ok {
			v.issue(cmd)
		}
	}
}

func (v *Viewer) handleKeys() {
	sm := v.settings
	changed := false

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		v.paused = !v.paused
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		v.selected = 0
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		sm.ToggleGrid()
		changed = true
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		sm.TogglePaths()
		changed = true
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual), inpututil.IsKeyJustPressed(ebiten.KeyKPAdd):
		sm.SetSpeed(sm.GetSettings().Speed * 2)
		changed = true
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract):
		sm.SetSpeed(sm.GetSettings().Speed / 2)
		changed = true
	case inpututil.IsKeyJustPressed(ebiten.KeyF11):
		sm.SetFullscreen(!ebiten.IsFullscreen())
		ebiten.SetFullscreen(sm.GetSettings().Fullscreen)
		changed = true
	}
	if changed {
		if err := sm.Save(); err != nil {
			v.logger.Warn("[Viewer] failed to save settings", zap.Error(err))
		}
	}

	sel, ok := v.selection()
	if !ok {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		if cmd, ok := HealOrder(sel); ok {
			v.issue(cmd)
		}
	}
	index := -1
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		index = 0
	}
	for i := 0; i < 9; i++ {
		if inpututil.IsKeyJustPressed(ebiten.Key1 + ebiten.Key(i)) {
			index = i
		}
	}
	if index < 0 {
		return
	}
	cmd, ok := TrainOrder(v.sim, sel, index)
	if !ok {
		cmd, ok = BuildOrder(v.sim, sel, index)
	}
	if !ok {
		v.status = fmt.Sprintf("%s #%d: nothing to train or build in slot %d", sel.Kind, sel.ID, index+1)
		return
	}
	v.issue(cmd)
}

func (v *Viewer) selection() (simulation.EntitySnapshot, bool) {
	if v.selected == 0 {
		return simulation.EntitySnapshot{}, false
	}
	return v.sim.Entity(v.selected)
}

func (v *Viewer) issue(cmd simulation.Command) {
	if err := v.sim.IssueCommand(cmd, v.team); err != nil {
		v.status = err.Error()
		v.logger.Debug("[Viewer] command rejected", zap.String("command", cmd.Name()), zap.Error(err))
		return
	}
	v.status = fmt.Sprintf("%s issued to #%d", cmd.Name(), cmd.Actor())
}
