package viewer

import "github.com/gonewx/rts/pkg/types"

// HUDHeight 底部信息栏高度（像素）
const HUDHeight = 64

// Layout 世界格子与屏幕像素之间的换算
type Layout struct {
	CellSize int
	Width    int // 世界宽度（格）
	Height   int // 世界高度（格）
}

// ScreenSize 窗口逻辑尺寸，包含底部信息栏
func (l Layout) ScreenSize() (int, int) {
	return l.Width * l.CellSize, l.Height*l.CellSize + HUDHeight
}

// ScreenToCell 把屏幕坐标换算为格子，落在世界之外时返回 false
func (l Layout) ScreenToCell(x, y int) (types.Point, bool) {
	if x < 0 || y < 0 || l.CellSize <= 0 {
		return types.Point{}, false
	}
	p := types.Pt(x/l.CellSize, y/l.CellSize)
	if p.X >= l.Width || p.Y >= l.Height {
		return types.Point{}, false
	}
	return p, true
}

// RectBounds 矩形区域左上角的屏幕坐标和像素尺寸
func (l Layout) RectBounds(r types.Rect) (x, y, w, h float32) {
	cs := float32(l.CellSize)
	return float32(r.Min.X) * cs, float32(r.Min.Y) * cs, float32(r.Size.W) * cs, float32(r.Size.H) * cs
}

// CellCenter 格子中心的屏幕坐标
func (l Layout) CellCenter(p types.Point) (float32, float32) {
	cs := float32(l.CellSize)
	return (float32(p.X) + 0.5) * cs, (float32(p.Y) + 0.5) * cs
}
