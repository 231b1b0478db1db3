package components

import (
	"fmt"

	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/types"
)

// StateType 实体当前的行为模式，互斥
type StateType int

const (
	// StateIdle 空闲
	StateIdle StateType = iota
	// StateMoving 沿移动计划前进，计划耗尽后回到空闲
	StateMoving
	// StateAttacking 攻击 Target
	StateAttacking
	// StateGathering 前往资源点 Target 采集
	StateGathering
	// StateReturning 携带资源返回建筑 Target
	StateReturning
	// StateConstructing 前往 Site 建造 Kind
	StateConstructing
	// StateTraining 建筑正在训练 Kind
	StateTraining
)

var stateNames = map[StateType]string{
	StateIdle:         "Idle",
	StateMoving:       "Moving",
	StateAttacking:    "Attacking",
	StateGathering:    "GatheringResource",
	StateReturning:    "ReturningResource",
	StateConstructing: "Constructing",
	StateTraining:     "TrainingUnit",
}

func (s StateType) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("StateType(%d)", int(s))
}

// AllowedFor 状态是否与物理形态相容
// 只有单位可以移动、攻击、采集、建造，只有建筑可以训练
func (s StateType) AllowedFor(p PhysicalType) bool {
	switch s {
	case StateIdle:
		return true
	case StateTraining:
		return p == PhysicalStructure
	default:
		return p == PhysicalUnit
	}
}

// BehaviorComponent 实体状态机
// Target 的含义随状态变化：受害者、资源点或返回的建筑
type BehaviorComponent struct {
	State  StateType
	Target ecs.EntityID
	Kind   string      // 建造或训练的种类
	Site   types.Point // 建造位置（建筑左上角）
}

// Reset 回到空闲
func (b *BehaviorComponent) Reset() {
	*b = BehaviorComponent{State: StateIdle}
}

func (b BehaviorComponent) String() string {
	switch b.State {
	case StateAttacking, StateGathering, StateReturning:
		return fmt.Sprintf("%s(%d)", b.State, b.Target)
	case StateConstructing:
		return fmt.Sprintf("%s(%s@%s)", b.State, b.Kind, b.Site)
	case StateTraining:
		return fmt.Sprintf("%s(%s)", b.State, b.Kind)
	default:
		return b.State.String()
	}
}
