// Package grid 实现占用网格：记录每个格子是空闲、被静态地形阻挡，还是被某个阵营的实体占用
//
// Grid 只是数据结构，不包含任何行为逻辑。占用/释放操作带有守卫检查：
// 占用一个非空闲格子、或释放一个本就空闲的格子都会返回错误，由调用方视为逻辑错误处理。
package grid

import (
	"errors"
	"fmt"

	"github.com/gonewx/rts/pkg/types"
)

var (
	// ErrOutOfBounds 坐标超出网格范围
	ErrOutOfBounds = errors.New("cell out of bounds")
	// ErrCellOccupied 试图占用一个非空闲的格子
	ErrCellOccupied = errors.New("cell already occupied")
	// ErrCellFree 试图释放一个未被实体占用的格子
	ErrCellFree = errors.New("cell not occupied by an entity")
)

// CellState 格子占用状态
type CellState uint8

const (
	// CellFree 空闲，可通行
	CellFree CellState = iota
	// CellStatic 被静态地形（如水面）永久阻挡
	CellStatic
	// CellEntity 被某个阵营的实体占用
	CellEntity
)

// Cell 单个格子的占用值
type Cell struct {
	State CellState
	Team  types.Team // 仅在 State == CellEntity 时有意义
}

// Free 空闲格子
var Free = Cell{State: CellFree}

// Static 静态阻挡格子
var Static = Cell{State: CellStatic}

// Occupied 返回被指定阵营实体占用的格子值
func Occupied(team types.Team) Cell {
	return Cell{State: CellEntity, Team: team}
}

// IsFree 格子是否空闲
func (c Cell) IsFree() bool {
	return c.State == CellFree
}

func (c Cell) String() string {
	switch c.State {
	case CellFree:
		return "free"
	case CellStatic:
		return "static"
	default:
		return "entity(" + c.Team.String() + ")"
	}
}

// Grid 稠密二维占用网格
// 尺寸在构造时确定，之后不可修改
type Grid struct {
	width  int
	height int
	cells  []Cell // 一维数组: index = y*width + x
}

// New 创建指定尺寸的空网格
func New(width, height int) *Grid {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("grid dimensions must be positive, got %dx%d", width, height))
	}
	return &Grid{
		width:  width,
		height: height,
		cells:  make([]Cell, width*height),
	}
}

// Width 网格宽度
func (g *Grid) Width() int { return g.width }

// Height 网格高度
func (g *Grid) Height() int { return g.height }

// InBounds 坐标是否在网格范围内
func (g *Grid) InBounds(p types.Point) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

func (g *Grid) index(p types.Point) int {
	return p.Y*g.width + p.X
}

// Get 返回格子的占用值
func (g *Grid) Get(p types.Point) (Cell, error) {
	if !g.InBounds(p) {
		return Cell{}, fmt.Errorf("get %v in %dx%d grid: %w", p, g.width, g.height, ErrOutOfBounds)
	}
	return g.cells[g.index(p)], nil
}

// IsFree 格子是否空闲，越界视为不可用
func (g *Grid) IsFree(p types.Point) bool {
	if !g.InBounds(p) {
		return false
	}
	return g.cells[g.index(p)].IsFree()
}

// Set 直接写入单个格子（不做占用守卫检查）
func (g *Grid) Set(p types.Point, c Cell) error {
	if !g.InBounds(p) {
		return fmt.Errorf("set %v in %dx%d grid: %w", p, g.width, g.height, ErrOutOfBounds)
	}
	g.cells[g.index(p)] = c
	return nil
}

// SetArea 写入一个矩形区域
// 先检查整个区域是否越界，越界时不写入任何格子
func (g *Grid) SetArea(origin types.Point, size types.Size, c Cell) error {
	rect := types.RectAt(origin, size)
	if err := g.checkRect(rect); err != nil {
		return err
	}
	for _, p := range rect.Cells() {
		g.cells[g.index(p)] = c
	}
	return nil
}

// Block 将格子标记为静态阻挡
func (g *Grid) Block(p types.Point) error {
	return g.Set(p, Static)
}

// Occupy 将空闲格子标记为被 team 的实体占用
func (g *Grid) Occupy(p types.Point, team types.Team) error {
	return g.OccupyArea(p, types.Size{W: 1, H: 1}, team)
}

// Release 释放被实体占用的格子
func (g *Grid) Release(p types.Point) error {
	return g.ReleaseArea(p, types.Size{W: 1, H: 1})
}

// OccupyArea 占用一个矩形区域
// 区域内任一格子越界或非空闲时返回错误，且不修改任何格子
func (g *Grid) OccupyArea(origin types.Point, size types.Size, team types.Team) error {
	rect := types.RectAt(origin, size)
	if err := g.checkRect(rect); err != nil {
		return err
	}
	for _, p := range rect.Cells() {
		if c := g.cells[g.index(p)]; !c.IsFree() {
			return fmt.Errorf("occupy %v (currently %v): %w", p, c, ErrCellOccupied)
		}
	}
	occupied := Occupied(team)
	for _, p := range rect.Cells() {
		g.cells[g.index(p)] = occupied
	}
	return nil
}

// ReleaseArea 释放一个矩形区域
// 区域内任一格子越界或未被实体占用时返回错误，且不修改任何格子
func (g *Grid) ReleaseArea(origin types.Point, size types.Size) error {
	rect := types.RectAt(origin, size)
	if err := g.checkRect(rect); err != nil {
		return err
	}
	for _, p := range rect.Cells() {
		if c := g.cells[g.index(p)]; c.State != CellEntity {
			return fmt.Errorf("release %v (currently %v): %w", p, c, ErrCellFree)
		}
	}
	for _, p := range rect.Cells() {
		g.cells[g.index(p)] = Free
	}
	return nil
}

// AreaFree 判断矩形区域是否全部在界内且空闲
// ignore 中的格子视为空闲（如建造者自身所在的格子）
func (g *Grid) AreaFree(rect types.Rect, ignore ...types.Point) bool {
	for _, p := range rect.Cells() {
		if !g.InBounds(p) {
			return false
		}
		if containsPoint(ignore, p) {
			continue
		}
		if !g.cells[g.index(p)].IsFree() {
			return false
		}
	}
	return true
}

// EntityCells 返回所有被实体占用的格子，按从左到右、从上到下排列
func (g *Grid) EntityCells() []types.Point {
	var out []types.Point
	for i, c := range g.cells {
		if c.State == CellEntity {
			out = append(out, types.Point{X: i % g.width, Y: i / g.width})
		}
	}
	return out
}

func (g *Grid) checkRect(rect types.Rect) error {
	if rect.Size.W <= 0 || rect.Size.H <= 0 {
		return fmt.Errorf("invalid area size %dx%d", rect.Size.W, rect.Size.H)
	}
	if !g.InBounds(rect.Min) || !g.InBounds(rect.Max()) {
		return fmt.Errorf("area %v+%dx%d in %dx%d grid: %w",
			rect.Min, rect.Size.W, rect.Size.H, g.width, g.height, ErrOutOfBounds)
	}
	return nil
}

func containsPoint(points []types.Point, p types.Point) bool {
	for _, q := range points {
		if q == p {
			return true
		}
	}
	return false
}
