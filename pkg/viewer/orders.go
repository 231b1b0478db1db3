package viewer

import (
	"slices"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/simulation"
	"github.com/gonewx/rts/pkg/types"
)

// siteSearchRadius 自动选址时围绕建造者搜索的最大圈数
const siteSearchRadius = 6

// EntityAt 返回覆盖格子 p 的实体
// 快照按 ID 升序，重叠时（非 solid 实体）取 ID 最小的
func EntityAt(snaps []simulation.EntitySnapshot, p types.Point) (simulation.EntitySnapshot, bool) {
	for _, s := range snaps {
		if s.Footprint().Contains(p) {
			return s, true
		}
	}
	return simulation.EntitySnapshot{}, false
}

func can(e simulation.EntitySnapshot, a config.Action) bool {
	return slices.Contains(e.Actions, a)
}

// OrderFor 右键点击 target 时给 actor 下达的指令
//   - 点击资源点：采集
//   - 携带资源时点击己方建筑：返还到该建筑
//   - 点击其他阵营的实体：攻击
//   - 其余情况：移动到该格子
//
// actor 不是单位或不能执行对应指令时返回 false
func OrderFor(snaps []simulation.EntitySnapshot, actor simulation.EntitySnapshot, target types.Point) (simulation.Command, bool) {
	if actor.Physical != components.PhysicalUnit {
		return nil, false
	}

	if hit, ok := EntityAt(snaps, target); ok && hit.ID != actor.ID {
		switch {
		case hit.Deposit:
			if can(actor, config.ActionGather) {
				return simulation.GatherResource{Gatherer: actor.ID, Resource: hit.ID}, true
			}
		case hit.Team == actor.Team:
			if hit.Physical == components.PhysicalStructure && can(actor, config.ActionReturn) {
				return simulation.ReturnResource{Gatherer: actor.ID, Structure: hit.ID}, true
			}
		case hit.Team != types.TeamNeutral:
			if can(actor, config.ActionAttack) {
				return simulation.Attack{Attacker: actor.ID, Victim: hit.ID}, true
			}
		}
	}

	if !can(actor, config.ActionMove) {
		return nil, false
	}
	return simulation.Move{Unit: actor.ID, To: target}, true
}

// TrainOrder 让建筑训练第 index 个可训练种类
func TrainOrder(sim *simulation.Simulation, structure simulation.EntitySnapshot, index int) (simulation.Command, bool) {
	if !can(structure, config.ActionTrain) {
		return nil, false
	}
	kind, ok := sim.Kind(structure.Kind)
	if !ok || index < 0 || index >= len(kind.Trains) {
		return nil, false
	}
	return simulation.Train{Structure: structure.ID, Kind: kind.Trains[index]}, true
}

// BuildOrder 让单位建造第 index 个可建造种类
// 位置由 FindStructureSite 在建造者附近选取，建造者所在格子视为空闲
func BuildOrder(sim *simulation.Simulation, builder simulation.EntitySnapshot, index int) (simulation.Command, bool) {
	if !can(builder, config.ActionConstruct) {
		return nil, false
	}
	kind, ok := sim.Kind(builder.Kind)
	if !ok || index < 0 || index >= len(kind.Builds) {
		return nil, false
	}
	structure := kind.Builds[index]
	site, ok := sim.FindStructureSite(structure, builder.Pos, builder.Pos, siteSearchRadius)
	if !ok {
		return nil, false
	}
	return simulation.Construct{Builder: builder.ID, Kind: structure, Site: site}, true
}

// HealOrder 治疗选中的实体
func HealOrder(target simulation.EntitySnapshot) (simulation.Command, bool) {
	if !can(target, config.ActionHeal) {
		return nil, false
	}
	return simulation.Heal{Target: target.ID}, true
}
