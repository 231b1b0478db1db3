package viewer

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/grid"
	"github.com/gonewx/rts/pkg/simulation"
	"github.com/gonewx/rts/pkg/types"
)

var (
	colorBackground = color.RGBA{R: 34, G: 48, B: 34, A: 255}
	colorStatic     = color.RGBA{R: 40, G: 70, B: 120, A: 255}
	colorGridLine   = color.RGBA{R: 255, G: 255, B: 255, A: 24}
	colorResource   = color.RGBA{R: 220, G: 180, B: 40, A: 255}
	colorSelected   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorHealthBack = color.RGBA{R: 80, G: 0, B: 0, A: 255}
	colorHealth     = color.RGBA{R: 60, G: 220, B: 60, A: 255}
	colorProgress   = color.RGBA{R: 120, G: 200, B: 255, A: 255}
	colorPath       = color.RGBA{R: 255, G: 255, B: 255, A: 96}
	colorHUD        = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

var teamColors = []color.RGBA{
	{R: 70, G: 130, B: 230, A: 255}, // 玩家
	{R: 210, G: 60, B: 60, A: 255},
	{R: 230, G: 140, B: 40, A: 255},
	{R: 160, G: 80, B: 200, A: 255},
}

// TeamColor 阵营的显示颜色，敌方阵营循环使用
func TeamColor(t types.Team) color.RGBA {
	if t == types.TeamNeutral {
		return colorResource
	}
	return teamColors[int(t-types.TeamPlayer)%len(teamColors)]
}

// Draw 绘制网格、实体和信息栏
func (v *Viewer) Draw(screen *ebiten.Image) {
	l := v.layout()
	settings := v.settings.GetSettings()
	screen.Fill(colorBackground)

	v.drawTerrain(screen, l)
	if settings.ShowGrid {
		drawGridLines(screen, l)
	}
	if settings.ShowPaths {
		for _, e := range v.snaps {
			drawPlan(screen, l, e)
		}
	}
	for _, e := range v.snaps {
		drawEntity(screen, l, e, e.ID == v.selected)
	}
	v.drawHUD(screen, l)
}

func (v *Viewer) drawTerrain(screen *ebiten.Image, l Layout) {
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			p := types.Pt(x, y)
			if c, err := v.sim.Cell(p); err == nil && c.State == grid.CellStatic {
				fx, fy, w, h := l.RectBounds(types.RectAt(p, types.Size{W: 1, H: 1}))
				vector.DrawFilledRect(screen, fx, fy, w, h, colorStatic, false)
			}
		}
	}
}

func drawGridLines(screen *ebiten.Image, l Layout) {
	cs := float32(l.CellSize)
	w, h := float32(l.Width)*cs, float32(l.Height)*cs
	for x := 0; x <= l.Width; x++ {
		vector.StrokeLine(screen, float32(x)*cs, 0, float32(x)*cs, h, 1, colorGridLine, false)
	}
	for y := 0; y <= l.Height; y++ {
		vector.StrokeLine(screen, 0, float32(y)*cs, w, float32(y)*cs, 1, colorGridLine, false)
	}
}

// drawPlan 从实体所在格子连线到计划的终点，计划按终点在前存储
func drawPlan(screen *ebiten.Image, l Layout, e simulation.EntitySnapshot) {
	if len(e.Plan) == 0 {
		return
	}
	x0, y0 := l.CellCenter(e.Pos)
	for i := len(e.Plan) - 1; i >= 0; i-- {
		x1, y1 := l.CellCenter(e.Plan[i])
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, colorPath, true)
		x0, y0 = x1, y1
	}
}

func drawEntity(screen *ebiten.Image, l Layout, e simulation.EntitySnapshot, selected bool) {
	x, y, w, h := l.RectBounds(e.Footprint())
	inset := float32(1)
	if e.Physical == components.PhysicalUnit {
		inset = float32(l.CellSize) / 6
	}
	vector.DrawFilledRect(screen, x+inset, y+inset, w-2*inset, h-2*inset, TeamColor(e.Team), false)
	if selected {
		vector.StrokeRect(screen, x+0.5, y+0.5, w-1, h-1, 2, colorSelected, false)
	}

	// 生命条
	if e.HasHealth && e.MaxHealth > 0 {
		frac := float32(e.Health) / float32(e.MaxHealth)
		vector.DrawFilledRect(screen, x+1, y+1, w-2, 3, colorHealthBack, false)
		vector.DrawFilledRect(screen, x+1, y+1, (w-2)*frac, 3, colorHealth, false)
	}
	// 训练进度
	if e.Training != "" {
		vector.DrawFilledRect(screen, x+1, y+h-4, (w-2)*float32(e.Progress), 3, colorProgress, false)
	}
	// 携带的资源
	if e.Carrying {
		cx, cy := l.CellCenter(e.Pos)
		r := float32(l.CellSize) / 8
		vector.DrawFilledRect(screen, cx-r, cy-r, 2*r, 2*r, colorResource, false)
	}
}

func (v *Viewer) drawHUD(screen *ebiten.Image, l Layout) {
	top := float32(l.Height * l.CellSize)
	sw, _ := l.ScreenSize()
	vector.DrawFilledRect(screen, 0, top, float32(sw), HUDHeight, colorHUD, false)

	lines := []string{v.statusLine(), v.selectionLine(), v.status}
	ebitenutil.DebugPrintAt(screen, strings.Join(lines, "\n"), 4, int(top)+2)
}

func (v *Viewer) statusLine() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tick %d  x%.2g", v.sim.Tick(), v.settings.GetSettings().Speed)
	if v.paused {
		b.WriteString(" [paused]")
	}
	if v.app.Done() {
		b.WriteString(" [finished]")
	}
	for _, team := range v.sim.Teams() {
		fmt.Fprintf(&b, "  %s:%d", team, v.sim.Resources(team))
	}
	return b.String()
}

func (v *Viewer) selectionLine() string {
	sel, ok := v.selection()
	if !ok {
		return "left-click a unit or structure to select it"
	}
	s := fmt.Sprintf("#%d %s %s hp %d/%d", sel.ID, sel.Kind, sel.State, sel.Health, sel.MaxHealth)
	if sel.Training != "" {
		s += fmt.Sprintf(" training %s %.0f%%", sel.Training, sel.Progress*100)
	}
	if len(sel.Actions) > 0 {
		names := make([]string, len(sel.Actions))
		for i, a := range sel.Actions {
			names[i] = string(a)
		}
		s += " | " + strings.Join(names, ",")
	}
	return s
}
