package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/rts/pkg/components"
	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/entities"
	"github.com/gonewx/rts/pkg/game"
	"github.com/gonewx/rts/pkg/grid"
	"github.com/gonewx/rts/pkg/pathfinding"
	"github.com/gonewx/rts/pkg/types"
)

const worldRulesYAML = `
units:
  peon:
    size: {w: 1, h: 1}
    health: 2
    attackCooldown: 1
    gather: true
    builds: [hut]
    actions: [move, attack, gather, return, construct]
structures:
  keep:
    size: {w: 2, h: 2}
    health: 10
  hut:
    size: {w: 1, h: 1}
    health: 3
resources:
  stone:
    size: {w: 1, h: 1}
    health: 2
`

func newTestWorld(t *testing.T) *World {
	t.Helper()
	rules, err := config.ParseRules([]byte(worldRulesYAML))
	require.NoError(t, err)
	teams, err := game.NewTeamStates(map[types.Team]int{types.TeamPlayer: 0})
	require.NoError(t, err)
	return NewWorld(ecs.NewEntityManager(), grid.New(8, 8), teams, rules, nil)
}

func spawn(t *testing.T, w *World, kind string, team types.Team, x, y int) ecs.EntityID {
	t.Helper()
	id, err := entities.NewEntity(w.EM, w.Grid, w.Rules, kind, team, types.Pt(x, y))
	require.NoError(t, err)
	return id
}

func TestWorld_InMeleeRange(t *testing.T) {
	w := newTestWorld(t)
	keep := spawn(t, w, "keep", types.TeamPlayer, 2, 2)

	tests := []struct {
		name string
		x, y int
		want bool
	}{
		{"正左侧", 1, 2, true},
		{"对角相邻", 4, 4, true},
		{"隔一格", 5, 3, false},
		{"斜向隔一格", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			peon := spawn(t, w, "peon", types.TeamPlayer, tt.x, tt.y)
			assert.Equal(t, tt.want, w.InMeleeRange(peon, keep))
			w.EM.DestroyEntity(peon)
			require.NoError(t, w.Grid.Release(types.Pt(tt.x, tt.y)))
			w.EM.RemoveMarkedEntities()
		})
	}

	assert.False(t, w.InMeleeRange(99, keep))
}

func TestWorld_FriendlyStructures(t *testing.T) {
	w := newTestWorld(t)
	spawn(t, w, "stone", types.TeamNeutral, 0, 0)
	enemyKeep := spawn(t, w, "keep", types.Enemy(1), 4, 4)
	first := spawn(t, w, "keep", types.TeamPlayer, 0, 4)
	second := spawn(t, w, "hut", types.TeamPlayer, 6, 0)

	id, ok := w.FirstFriendlyStructure(types.TeamPlayer)
	require.True(t, ok)
	assert.Equal(t, first, id)

	t.Run("指定建筑优先", func(t *testing.T) {
		id, ok := w.ReturnTarget(types.TeamPlayer, second)
		require.True(t, ok)
		assert.Equal(t, second, id)
	})

	t.Run("敌方建筑不能作为返还目标", func(t *testing.T) {
		id, ok := w.ReturnTarget(types.TeamPlayer, enemyKeep)
		require.True(t, ok)
		assert.Equal(t, first, id)
	})

	t.Run("已标记移除的建筑被跳过", func(t *testing.T) {
		w.EM.DestroyEntity(first)
		id, ok := w.FirstFriendlyStructure(types.TeamPlayer)
		require.True(t, ok)
		assert.Equal(t, second, id)
	})

	_, ok = w.FirstFriendlyStructure(types.Enemy(2))
	assert.False(t, ok)
}

func TestWorld_SetState(t *testing.T) {
	w := newTestWorld(t)
	peon := spawn(t, w, "peon", types.TeamPlayer, 1, 1)
	keep := spawn(t, w, "keep", types.TeamPlayer, 4, 4)

	w.SetState(peon, components.BehaviorComponent{State: components.StateMoving})
	b, _ := ecs.GetComponent[*components.BehaviorComponent](w.EM, peon)
	assert.Equal(t, components.StateMoving, b.State)

	assert.PanicsWithError(t,
		"precondition violated in set state (entity 2): state Moving is not valid for a structure",
		func() { w.SetState(keep, components.BehaviorComponent{State: components.StateMoving}) })

	assert.Panics(t, func() { w.SetState(42, components.BehaviorComponent{}) })
}

func TestWorld_PlanPath(t *testing.T) {
	w := newTestWorld(t)
	peon := spawn(t, w, "peon", types.TeamPlayer, 0, 0)

	var searches []pathfinding.Result
	w.OnPathSearch = func(r pathfinding.Result) { searches = append(searches, r) }

	require.True(t, w.PlanPath(peon, pathfinding.ToPoint(types.Pt(2, 0))))
	unit, _ := ecs.GetComponent[*components.UnitComponent](w.EM, peon)
	assert.Equal(t, []types.Point{types.Pt(2, 0), types.Pt(1, 0)}, unit.Plan.Cells())

	// 用静态地形围住目标
	for _, p := range []types.Point{{X: 5, Y: 6}, {X: 6, Y: 5}, {X: 5, Y: 5}, {X: 7, Y: 5}, {X: 5, Y: 7}} {
		require.NoError(t, w.Grid.Block(p))
	}
	assert.False(t, w.PlanPath(peon, pathfinding.ToPoint(types.Pt(7, 7))))
	assert.True(t, unit.Plan.Empty())
	require.Len(t, searches, 2)
	assert.True(t, searches[0].Found)
	assert.False(t, searches[1].Found)
}
