package simulation

import (
	"fmt"

	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/types"
)

// WorldFromScenario 把场景配置转换为初始化输入
func WorldFromScenario(sc *config.Scenario) (World, error) {
	w := World{
		Width:  sc.Width,
		Height: sc.Height,
		Teams:  make(map[types.Team]int, len(sc.Teams)),
	}
	for _, b := range sc.Blocked {
		w.Blocked = append(w.Blocked, b.Rect())
	}
	for i, ts := range sc.Teams {
		team, err := types.ParseTeam(ts.Team)
		if err != nil {
			return World{}, fmt.Errorf("teams[%d]: %w", i, err)
		}
		w.Teams[team] = ts.Resources
	}
	for i, e := range sc.Entities {
		team, err := types.ParseTeam(e.Team)
		if err != nil {
			return World{}, fmt.Errorf("entities[%d]: %w", i, err)
		}
		w.Entities = append(w.Entities, EntitySpec{Kind: e.Kind, Team: team, Pos: types.Pt(e.X, e.Y)})
	}
	return w, nil
}

// ScriptCommand 把场景脚本中的一条指令转换为 Command
// 参数:
//   - sc: 脚本指令，下标引用场景的 entities 列表
//   - ids: 初始实体 ID（Simulation.InitialEntities）
//
// 返回:
//   - Command: 转换后的指令
//   - types.Team: 发令阵营
//   - error: 阵营或指令类型非法时返回错误
func ScriptCommand(sc config.ScriptedCommand, ids []ecs.EntityID) (Command, types.Team, error) {
	team, err := types.ParseTeam(sc.Team)
	if err != nil {
		return nil, 0, err
	}
	lookup := func(idx *int) (ecs.EntityID, error) {
		if idx == nil {
			return ecs.InvalidEntity, nil
		}
		if *idx < 0 || *idx >= len(ids) {
			return 0, fmt.Errorf("entity index %d out of range", *idx)
		}
		return ids[*idx], nil
	}

	actor, err := lookup(&sc.Actor)
	if err != nil {
		return nil, 0, err
	}
	target, err := lookup(sc.Target)
	if err != nil {
		return nil, 0, err
	}
	structure, err := lookup(sc.Structure)
	if err != nil {
		return nil, 0, err
	}
	at := types.Pt(sc.X, sc.Y)

	switch config.Action(sc.Type) {
	case config.ActionMove:
		return Move{Unit: actor, To: at}, team, nil
	case config.ActionAttack:
		return Attack{Attacker: actor, Victim: target}, team, nil
	case config.ActionGather:
		return GatherResource{Gatherer: actor, Resource: target, Structure: structure}, team, nil
	case config.ActionReturn:
		return ReturnResource{Gatherer: actor, Structure: structure}, team, nil
	case config.ActionConstruct:
		return Construct{Builder: actor, Kind: sc.Kind, Site: at}, team, nil
	case config.ActionTrain:
		return Train{Structure: actor, Kind: sc.Kind}, team, nil
	case config.ActionHeal:
		return Heal{Target: actor}, team, nil
	default:
		return nil, 0, fmt.Errorf("unknown command type %q", sc.Type)
	}
}

// References 指令引用的全部实体，第一个为行动者
// 调用方在下发脚本指令前用它确认实体仍然存活
func References(cmd Command) []ecs.EntityID {
	refs := []ecs.EntityID{cmd.Actor()}
	switch c := cmd.(type) {
	case Attack:
		refs = append(refs, c.Victim)
	case GatherResource:
		refs = append(refs, c.Resource)
		if c.Structure != ecs.InvalidEntity {
			refs = append(refs, c.Structure)
		}
	case ReturnResource:
		if c.Structure != ecs.InvalidEntity {
			refs = append(refs, c.Structure)
		}
	}
	return refs
}
