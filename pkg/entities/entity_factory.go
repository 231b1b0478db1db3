package entities

import (
	"fmt"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/grid"
	"github.com/gonewx/rts/pkg/types"
)

// NewEntity 根据种类创建实体并占用网格
// 单位、建筑、资源点共用同一个入口，按种类目录决定挂载哪些组件
//
// 参数:
//   - em: 实体管理器
//   - g: 占用网格（实体为 solid 时写入占地）
//   - rules: 种类目录
//   - kind: 种类名称，如 "worker"、"base"、"gold"
//   - team: 所属阵营，资源点必须为中立，其余必须不是中立
//   - pos: 位置，建筑为左上角锚点
//
// 返回:
//   - ecs.EntityID: 创建的实体ID，如果失败返回 0
//   - error: 种类未知、阵营不合法、越界或占地冲突时返回错误，此时不会创建任何实体
func NewEntity(em *ecs.EntityManager, g *grid.Grid, rules *config.Rules, kind string, team types.Team, pos types.Point) (ecs.EntityID, error) {
	k, ok := rules.Kind(kind)
	if !ok {
		return 0, fmt.Errorf("unknown kind %q", kind)
	}

	switch {
	case k.Category == config.CategoryResource && team != types.TeamNeutral:
		return 0, fmt.Errorf("resource %s must be neutral, got %s", kind, team)
	case k.Category != config.CategoryResource && team == types.TeamNeutral:
		return 0, fmt.Errorf("%s %s cannot be neutral", k.Category, kind)
	}

	// 先占地再建实体，占地失败时不留下半成品
	if k.IsSolid() {
		if err := g.OccupyArea(pos, k.Size, team); err != nil {
			return 0, fmt.Errorf("place %s at %s: %w", kind, pos, err)
		}
	} else if !g.InBounds(pos) || !g.InBounds(types.RectAt(pos, k.Size).Max()) {
		return 0, fmt.Errorf("place %s at %s: %w", kind, pos, grid.ErrOutOfBounds)
	}

	physical := components.PhysicalStructure
	if k.Category == config.CategoryUnit {
		physical = components.PhysicalUnit
	}

	entityID := em.CreateEntity()

	em.AddComponent(entityID, &components.EntityComponent{
		Kind:     kind,
		Team:     team,
		Solid:    k.IsSolid(),
		Size:     k.Size,
		Physical: physical,
	})
	em.AddComponent(entityID, &components.PositionComponent{Cell: pos})
	em.AddComponent(entityID, &components.BehaviorComponent{State: components.StateIdle})

	// 没有生命值的实体不可摧毁（资源点则是取之不尽）
	if k.Health > 0 {
		em.AddComponent(entityID, &components.HealthComponent{
			CurrentHealth: k.Health,
			MaxHealth:     k.Health,
		})
	}

	switch k.Category {
	case config.CategoryUnit:
		em.AddComponent(entityID, &components.UnitComponent{MoveInterval: k.MoveInterval})
		if k.AttackCooldown > 0 {
			em.AddComponent(entityID, &components.CombatComponent{Cooldown: k.AttackCooldown})
		}
		if k.Gather {
			em.AddComponent(entityID, &components.GatherComponent{})
		}
	case config.CategoryStructure:
		if len(k.Trains) > 0 {
			trains := make([]string, len(k.Trains))
			copy(trains, k.Trains)
			em.AddComponent(entityID, &components.TrainingComponent{Trains: trains})
		}
	case config.CategoryResource:
		em.AddComponent(entityID, &components.ResourceDepositComponent{})
	}

	return entityID, nil
}
