package components

import "github.com/gonewx/rts/pkg/types"

// PhysicalType 实体的物理形态
type PhysicalType int

const (
	// PhysicalUnit 可移动单位：携带移动计划，可选战斗、采集组件
	PhysicalUnit PhysicalType = iota
	// PhysicalStructure 不可移动建筑（包括资源点）：可选训练组件
	PhysicalStructure
)

func (p PhysicalType) String() string {
	if p == PhysicalUnit {
		return "unit"
	}
	return "structure"
}

// EntityComponent 实体的身份信息：种类、阵营、占地
// 每个模拟实体都必须拥有
type EntityComponent struct {
	Kind     string       // 种类名称，如 "worker"、"base"、"gold"
	Team     types.Team   // 所属阵营
	Solid    bool         // 是否占用网格
	Size     types.Size   // 占地尺寸，按种类固定
	Physical PhysicalType // 单位或建筑
}

// PositionComponent 实体所在格子；建筑为左上角锚点
type PositionComponent struct {
	Cell types.Point
}

// Footprint 返回实体当前覆盖的矩形
func Footprint(e *EntityComponent, pos *PositionComponent) types.Rect {
	return types.RectAt(pos.Cell, e.Size)
}

// ResourceDepositComponent 标记中立资源点
type ResourceDepositComponent struct{}
