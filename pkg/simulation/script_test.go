package simulation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/ecs"
	"github.com/gonewx/rts/pkg/embedded"
	"github.com/gonewx/rts/pkg/types"
)

func intPtr(v int) *int { return &v }

func TestWorldFromScenario(t *testing.T) {
	sc := &config.Scenario{
		Width:   12,
		Height:  8,
		Blocked: []config.BlockedArea{{X: 4, Y: 0, W: 1, H: 3}, {X: 7, Y: 7}},
		Teams:   []config.TeamSetup{{Team: "player", Resources: 9}, {Team: "enemy-2", Resources: 3}},
		Entities: []config.EntitySetup{
			{Kind: "hall", Team: "player", X: 0, Y: 0},
			{Kind: "ore", Team: "neutral", X: 9, Y: 5},
		},
	}

	w, err := WorldFromScenario(sc)
	require.NoError(t, err)
	assert.Equal(t, 12, w.Width)
	assert.Equal(t, 8, w.Height)
	assert.Equal(t, []types.Rect{
		types.RectAt(types.Pt(4, 0), types.Size{W: 1, H: 3}),
		types.RectAt(types.Pt(7, 7), types.Size{W: 1, H: 1}),
	}, w.Blocked)
	assert.Equal(t, map[types.Team]int{types.TeamPlayer: 9, types.Enemy(2): 3}, w.Teams)
	assert.Equal(t, []EntitySpec{
		{Kind: "hall", Team: types.TeamPlayer, Pos: types.Pt(0, 0)},
		{Kind: "ore", Team: types.TeamNeutral, Pos: types.Pt(9, 5)},
	}, w.Entities)

	t.Run("非法阵营", func(t *testing.T) {
		bad := *sc
		bad.Entities = []config.EntitySetup{{Kind: "hall", Team: "pirates"}}
		_, err := WorldFromScenario(&bad)
		assert.Error(t, err)
	})
}

func TestScriptCommand(t *testing.T) {
	ids := []ecs.EntityID{10, 11, 12}

	tests := []struct {
		name string
		in   config.ScriptedCommand
		want Command
	}{
		{"移动", config.ScriptedCommand{Team: "player", Type: "move", Actor: 1, X: 3, Y: 4},
			Move{Unit: 11, To: types.Pt(3, 4)}},
		{"攻击", config.ScriptedCommand{Team: "player", Type: "attack", Actor: 1, Target: intPtr(2)},
			Attack{Attacker: 11, Victim: 12}},
		{"采集并指定建筑", config.ScriptedCommand{Team: "player", Type: "gather", Actor: 1, Target: intPtr(2), Structure: intPtr(0)},
			GatherResource{Gatherer: 11, Resource: 12, Structure: 10}},
		{"返还", config.ScriptedCommand{Team: "player", Type: "return", Actor: 1},
			ReturnResource{Gatherer: 11}},
		{"建造", config.ScriptedCommand{Team: "player", Type: "construct", Actor: 1, Kind: "hut", X: 5, Y: 6},
			Construct{Builder: 11, Kind: "hut", Site: types.Pt(5, 6)}},
		{"训练", config.ScriptedCommand{Team: "player", Type: "train", Actor: 0, Kind: "worker"},
			Train{Structure: 10, Kind: "worker"}},
		{"治疗", config.ScriptedCommand{Team: "player", Type: "heal", Actor: 2},
			Heal{Target: 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, team, err := ScriptCommand(tt.in, ids)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
			assert.Equal(t, types.TeamPlayer, team)
		})
	}

	t.Run("下标越界", func(t *testing.T) {
		_, _, err := ScriptCommand(config.ScriptedCommand{Team: "player", Type: "move", Actor: 3}, ids)
		assert.Error(t, err)
	})
	t.Run("未知类型", func(t *testing.T) {
		_, _, err := ScriptCommand(config.ScriptedCommand{Team: "player", Type: "dance"}, ids)
		assert.Error(t, err)
	})
}

func TestReferences(t *testing.T) {
	assert.Equal(t, []ecs.EntityID{1, 2}, References(Attack{Attacker: 1, Victim: 2}))
	assert.Equal(t, []ecs.EntityID{1, 2, 3}, References(GatherResource{Gatherer: 1, Resource: 2, Structure: 3}))
	assert.Equal(t, []ecs.EntityID{1, 2}, References(GatherResource{Gatherer: 1, Resource: 2}))
	assert.Equal(t, []ecs.EntityID{4}, References(ReturnResource{Gatherer: 4}))
	assert.Equal(t, []ecs.EntityID{5}, References(Train{Structure: 5, Kind: "worker"}))
}

// runSkirmish 按脚本运行内置的遭遇战场景
func runSkirmish(t *testing.T, ticks int) *Simulation {
	t.Helper()
	embedded.Init(os.DirFS(filepath.Join("..", "..")))

	rules, err := config.LoadRules(config.DefaultRulesPath)
	require.NoError(t, err)
	sc, err := config.LoadScenario(config.DefaultScenarioPath)
	require.NoError(t, err)
	w, err := WorldFromScenario(sc)
	require.NoError(t, err)

	s, err := New(rules, w)
	require.NoError(t, err)
	ids := s.InitialEntities()

	for tick := 0; tick < ticks; tick++ {
		for _, c := range sc.Commands {
			if c.Tick != tick {
				continue
			}
			cmd, team, err := ScriptCommand(c, ids)
			require.NoError(t, err)
			alive := true
			for _, id := range References(cmd) {
				alive = alive && s.Exists(id)
			}
			if !alive {
				continue
			}
			if err := s.IssueCommand(cmd, team); err != nil {
				require.True(t, errors.Is(err, ErrRejected), "tick %d: %v", tick, err)
			}
		}
		step(t, s, 0.1)
	}
	return s
}

func TestSkirmishScenario(t *testing.T) {
	s := runSkirmish(t, 200)
	assert.Equal(t, uint64(200), s.Tick())
	assert.Equal(t, 32, s.Width())
	assert.Equal(t, 20, s.Height())
	assert.Greater(t, s.Resources(types.TeamPlayer), 0)

	t.Run("相同输入得到相同结果", func(t *testing.T) {
		other := runSkirmish(t, 200)
		assert.Equal(t, s.Entities(), other.Entities())
		for _, team := range s.Teams() {
			assert.Equal(t, s.Resources(team), other.Resources(team), "team %s", team)
		}
	})
}
