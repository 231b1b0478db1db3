// Package pathfinding 在占用网格上计算单位的移动路线
//
// FindPath 是无状态函数：8 方向 A*（直线代价 1，斜线代价 √2），启发函数为到目标矩形的欧氏距离，
// 优先队列按 g+h 升序排列，相同代价按入队顺序出队。
// 当起点到目标矩形的直线距离超过 GreedyThreshold 时跳过 A*，直接返回忽略障碍的斜向贪心路线，
// 以在大量远距离指令同时下达时换取吞吐量。
//
// 返回的路线不包含起点，目标端在前、下一步在末尾，调用方从末尾逐个弹出。
package pathfinding

import (
	"math"

	"github.com/emirpasic/gods/queues/priorityqueue"

	"github.com/gonewx/rts/pkg/types"
)

// GreedyThreshold 超过该直线距离（格）时改用贪心路线
const GreedyThreshold = 10.0

const (
	axisCost     = 1.0
	diagonalCost = math.Sqrt2
)

// Map 寻路所需的网格只读视图
type Map interface {
	InBounds(p types.Point) bool
	IsFree(p types.Point) bool
}

// Destination 寻路目标：单个格子，或某个矩形周围一圈的任一格子
type Destination struct {
	rect types.Rect
}

// ToPoint 以单个格子为目标
func ToPoint(p types.Point) Destination {
	return Destination{rect: types.RectAt(p, types.Size{W: 1, H: 1})}
}

// Adjacent 以紧邻矩形（多格实体占地）的任一格子为目标
// 目标区域为矩形向四周各扩展一格
func Adjacent(footprint types.Rect) Destination {
	return Destination{rect: footprint.Expand(1)}
}

// Rect 目标区域
func (d Destination) Rect() types.Rect {
	return d.rect
}

// Reached 格子是否已位于目标区域内
func (d Destination) Reached(p types.Point) bool {
	return d.rect.Contains(p)
}

// Result 一次寻路的结果
type Result struct {
	Path     []types.Point // 目标端在前，下一步在末尾
	Found    bool
	Greedy   bool // 是否走了远距离贪心分支
	Expanded int  // A* 展开的节点数
}

// FindPath 计算从 start 到 dest 的路线
// 找不到路线时返回 nil, false；起点已在目标区域内时返回空路线和 true
func FindPath(start types.Point, dest Destination, m Map) ([]types.Point, bool) {
	res := Search(start, dest, m)
	return res.Path, res.Found
}

// Search 与 FindPath 相同，但额外返回搜索统计信息
func Search(start types.Point, dest Destination, m Map) Result {
	if dest.Reached(start) {
		return Result{Path: []types.Point{}, Found: true}
	}
	if dest.rect.DistanceTo(start) > GreedyThreshold {
		return Result{Path: greedyPath(start, dest), Found: true, Greedy: true}
	}
	return astar(start, dest, m)
}

// greedyPath 每一步 x、y 各向目标靠近一格，忽略障碍
func greedyPath(start types.Point, dest Destination) []types.Point {
	goal := dest.rect.Clamp(start)
	var forward []types.Point
	cur := start
	for !dest.Reached(cur) {
		cur = types.Point{X: cur.X + sign(goal.X-cur.X), Y: cur.Y + sign(goal.Y-cur.Y)}
		forward = append(forward, cur)
	}
	path := make([]types.Point, len(forward))
	for i, p := range forward {
		path[len(forward)-1-i] = p
	}
	return path
}

type step struct {
	offset types.Point
	cost   float64
}

// 邻居展开顺序固定，保证结果确定
var neighbours = [...]step{
	{types.Point{X: 1, Y: 0}, axisCost},
	{types.Point{X: 0, Y: 1}, axisCost},
	{types.Point{X: -1, Y: 0}, axisCost},
	{types.Point{X: 0, Y: -1}, axisCost},
	{types.Point{X: 1, Y: 1}, diagonalCost},
	{types.Point{X: -1, Y: 1}, diagonalCost},
	{types.Point{X: -1, Y: -1}, diagonalCost},
	{types.Point{X: 1, Y: -1}, diagonalCost},
}

type openNode struct {
	cell types.Point
	g    float64
	f    float64
	seq  int
}

// byCostThenOrder 按 f 升序，f 相同时按入队顺序
func byCostThenOrder(a, b interface{}) int {
	na := a.(*openNode)
	nb := b.(*openNode)
	switch {
	case na.f < nb.f:
		return -1
	case na.f > nb.f:
		return 1
	case na.seq < nb.seq:
		return -1
	case na.seq > nb.seq:
		return 1
	default:
		return 0
	}
}

func astar(start types.Point, dest Destination, m Map) Result {
	open := priorityqueue.NewWith(byCostThenOrder)
	gScore := map[types.Point]float64{start: 0}
	cameFrom := map[types.Point]types.Point{}
	closed := map[types.Point]bool{}
	seq := 0

	push := func(cell types.Point, g float64) {
		open.Enqueue(&openNode{cell: cell, g: g, f: g + dest.rect.DistanceTo(cell), seq: seq})
		seq++
	}
	push(start, 0)

	expanded := 0
	for !open.Empty() {
		v, _ := open.Dequeue()
		cur := v.(*openNode)
		if closed[cur.cell] {
			continue
		}
		if dest.Reached(cur.cell) {
			return Result{Path: reconstruct(cameFrom, start, cur.cell), Found: true, Expanded: expanded}
		}
		closed[cur.cell] = true
		expanded++

		for _, n := range neighbours {
			next := cur.cell.Add(n.offset)
			if closed[next] || !m.InBounds(next) || !m.IsFree(next) {
				continue
			}
			g := cur.g + n.cost
			if old, ok := gScore[next]; ok && g >= old {
				continue
			}
			gScore[next] = g
			cameFrom[next] = cur.cell
			push(next, g)
		}
	}
	return Result{Expanded: expanded}
}

// reconstruct 从终点回溯到起点（不含起点），结果天然是目标端在前
func reconstruct(cameFrom map[types.Point]types.Point, start, goal types.Point) []types.Point {
	var path []types.Point
	for cur := goal; cur != start; cur = cameFrom[cur] {
		path = append(path, cur)
	}
	return path
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
