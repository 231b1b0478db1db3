package types

import (
	"fmt"
	"math"
)

// Point 网格坐标（格子为单位）
type Point struct {
	X int
	Y int
}

// Pt 构造一个 Point
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add 返回两个坐标之和
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// DistSq 返回两个格子之间的欧氏距离平方
func (p Point) DistSq(q Point) int {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

func (p Point) String() string {
	return fmt.Sprintf("[%d,%d]", p.X, p.Y)
}

// Size 占地尺寸（宽 x 高，单位格）
type Size struct {
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// Area 返回尺寸覆盖的格子数
func (s Size) Area() int {
	return s.W * s.H
}

// Rect 以左上角为锚点的矩形区域
type Rect struct {
	Min  Point
	Size Size
}

// RectAt 用锚点和尺寸构造矩形
func RectAt(origin Point, size Size) Rect {
	return Rect{Min: origin, Size: size}
}

// Max 返回矩形右下角（包含）
func (r Rect) Max() Point {
	return Point{X: r.Min.X + r.Size.W - 1, Y: r.Min.Y + r.Size.H - 1}
}

// Contains 判断格子是否位于矩形内
func (r Rect) Contains(p Point) bool {
	max := r.Max()
	return p.X >= r.Min.X && p.X <= max.X && p.Y >= r.Min.Y && p.Y <= max.Y
}

// Expand 向四周各扩展 margin 格
func (r Rect) Expand(margin int) Rect {
	return Rect{
		Min:  Point{X: r.Min.X - margin, Y: r.Min.Y - margin},
		Size: Size{W: r.Size.W + 2*margin, H: r.Size.H + 2*margin},
	}
}

// Clamp 返回矩形内离 p 最近的格子
func (r Rect) Clamp(p Point) Point {
	max := r.Max()
	return Point{X: clampInt(p.X, r.Min.X, max.X), Y: clampInt(p.Y, r.Min.Y, max.Y)}
}

// DistanceTo 返回 p 到矩形的欧氏距离，矩形内为 0
func (r Rect) DistanceTo(p Point) float64 {
	return math.Sqrt(float64(r.Clamp(p).DistSq(p)))
}

// MinDistSq 返回 p 到矩形内任一格子的最小距离平方
func (r Rect) MinDistSq(p Point) int {
	return r.Clamp(p).DistSq(p)
}

// Cells 按从左到右、从上到下的顺序返回矩形内所有格子
func (r Rect) Cells() []Point {
	cells := make([]Point, 0, r.Size.Area())
	for y := r.Min.Y; y < r.Min.Y+r.Size.H; y++ {
		for x := r.Min.X; x < r.Min.X+r.Size.W; x++ {
			cells = append(cells, Point{X: x, Y: y})
		}
	}
	return cells
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
