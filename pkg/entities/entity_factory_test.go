package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/grid"
	"github.com/gonewx/rts/pkg/types"
)

const testRules = `
units:
  worker:
    size: {w: 1, h: 1}
    health: 10
    attackCooldown: 2
    gather: true
    moveInterval: 0.5
    builds: [base]
    actions: [move, attack, gather, return, construct]
  ghost:
    size: {w: 1, h: 1}
    solid: false
structures:
  base:
    size: {w: 2, h: 2}
    health: 30
    trains: [worker]
    actions: [train]
resources:
  gold:
    size: {w: 2, h: 1}
    health: 5
  spring:
    size: {w: 1, h: 1}
`

func newTestWorld(t *testing.T) (*ecs.EntityManager, *grid.Grid, *config.Rules) {
	t.Helper()
	rules, err := config.ParseRules([]byte(testRules))
	require.NoError(t, err)
	return ecs.NewEntityManager(), grid.New(8, 8), rules
}

func TestNewUnitEntity(t *testing.T) {
	em, g, rules := newTestWorld(t)

	id, err := NewEntity(em, g, rules, "worker", types.TeamPlayer, types.Pt(1, 2))
	require.NoError(t, err)
	assert.Equal(t, ecs.EntityID(1), id)

	ent, ok := ecs.GetComponent[*components.EntityComponent](em, id)
	require.True(t, ok)
	assert.Equal(t, components.PhysicalUnit, ent.Physical)
	assert.Equal(t, types.TeamPlayer, ent.Team)

	unit, ok := ecs.GetComponent[*components.UnitComponent](em, id)
	require.True(t, ok)
	assert.Equal(t, 0.5, unit.MoveInterval)
	assert.True(t, ecs.HasComponent[*components.CombatComponent](em, id))
	assert.True(t, ecs.HasComponent[*components.GatherComponent](em, id))

	health, ok := ecs.GetComponent[*components.HealthComponent](em, id)
	require.True(t, ok)
	assert.Equal(t, 10, health.CurrentHealth)

	cell, err := g.Get(types.Pt(1, 2))
	require.NoError(t, err)
	assert.Equal(t, grid.Occupied(types.TeamPlayer), cell)
}

func TestNewStructureAndResource(t *testing.T) {
	em, g, rules := newTestWorld(t)

	base, err := NewEntity(em, g, rules, "base", types.Enemy(1), types.Pt(4, 4))
	require.NoError(t, err)
	assert.True(t, ecs.HasComponent[*components.TrainingComponent](em, base))
	assert.False(t, ecs.HasComponent[*components.UnitComponent](em, base))
	assert.Len(t, g.EntityCells(), 4)

	gold, err := NewEntity(em, g, rules, "gold", types.TeamNeutral, types.Pt(0, 0))
	require.NoError(t, err)
	assert.True(t, ecs.HasComponent[*components.ResourceDepositComponent](em, gold))
	ent, _ := ecs.GetComponent[*components.EntityComponent](em, gold)
	assert.Equal(t, components.PhysicalStructure, ent.Physical)

	// 没有生命值的资源点取之不尽
	spring, err := NewEntity(em, g, rules, "spring", types.TeamNeutral, types.Pt(7, 0))
	require.NoError(t, err)
	assert.False(t, ecs.HasComponent[*components.HealthComponent](em, spring))
}

func TestNewEntityFailuresLeaveNoTrace(t *testing.T) {
	em, g, rules := newTestWorld(t)
	_, err := NewEntity(em, g, rules, "base", types.TeamPlayer, types.Pt(0, 0))
	require.NoError(t, err)
	occupied := len(g.EntityCells())

	tests := []struct {
		name string
		kind string
		team types.Team
		pos  types.Point
	}{
		{"未知种类", "dragon", types.TeamPlayer, types.Pt(5, 5)},
		{"资源点必须中立", "gold", types.TeamPlayer, types.Pt(5, 5)},
		{"单位不能中立", "worker", types.TeamNeutral, types.Pt(5, 5)},
		{"占地冲突", "worker", types.TeamPlayer, types.Pt(1, 1)},
		{"越界", "base", types.TeamPlayer, types.Pt(7, 7)},
		{"非实体也不能越界", "ghost", types.TeamPlayer, types.Pt(8, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEntity(em, g, rules, tt.kind, tt.team, tt.pos)
			assert.Error(t, err)
			assert.Equal(t, 1, em.Count())
			assert.Len(t, g.EntityCells(), occupied)
		})
	}
}

func TestNonSolidEntityDoesNotOccupy(t *testing.T) {
	em, g, rules := newTestWorld(t)
	_, err := NewEntity(em, g, rules, "ghost", types.TeamPlayer, types.Pt(3, 3))
	require.NoError(t, err)
	assert.Empty(t, g.EntityCells())
	assert.True(t, g.IsFree(types.Pt(3, 3)))
}
