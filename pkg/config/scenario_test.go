package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/rts/pkg/types"
)

func TestLoadDefaultScenario(t *testing.T) {
	useRepoData(t)

	sc, err := LoadScenario(DefaultScenarioPath)
	require.NoError(t, err)
	assert.Equal(t, "skirmish", sc.Name)
	assert.Equal(t, 32, sc.Width)
	assert.Equal(t, 20, sc.Height)
	assert.NotEmpty(t, sc.Entities)
	assert.NotEmpty(t, sc.Commands)

	rules, err := LoadRules(DefaultRulesPath)
	require.NoError(t, err)
	for i, e := range sc.Entities {
		_, ok := rules.Kind(e.Kind)
		assert.True(t, ok, "entities[%d] uses unknown kind %s", i, e.Kind)
	}
}

func TestLoadScenarioFromDisk(t *testing.T) {
	content := `
name: tiny
width: 6
height: 4
blocked:
  - {x: 3, y: 0}
  - {x: 3, y: 2, h: 2}
teams:
  - {team: player, resources: 5}
entities:
  - {kind: worker, team: player, x: 0, y: 0}
  - {kind: gold, team: neutral, x: 5, y: 0}
commands:
  - {tick: 2, team: player, type: gather, actor: 0, target: 1}
`
	path := filepath.Join(t.TempDir(), "tiny.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sc, err := LoadScenario(path)
	require.NoError(t, err)

	require.Len(t, sc.Blocked, 2)
	assert.Equal(t, types.RectAt(types.Pt(3, 0), types.Size{W: 1, H: 1}), sc.Blocked[0].Rect())
	assert.Equal(t, types.RectAt(types.Pt(3, 2), types.Size{W: 1, H: 2}), sc.Blocked[1].Rect())

	require.Len(t, sc.Commands, 1)
	cmd := sc.Commands[0]
	assert.Equal(t, 2, cmd.Tick)
	require.NotNil(t, cmd.Target)
	assert.Equal(t, 1, *cmd.Target)
	assert.Nil(t, cmd.Structure)
}

func TestParseScenarioValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"空世界", "width: 0\nheight: 3\n", "world must be at least 1x1"},
		{"障碍越界", "width: 3\nheight: 3\nblocked: [{x: 2, y: 2, w: 2}]\n", "outside"},
		{"未知阵营", "width: 3\nheight: 3\nteams: [{team: aliens}]\n", "unknown team"},
		{"负资源", "width: 3\nheight: 3\nteams: [{team: player, resources: -1}]\n", "cannot be negative"},
		{"缺少种类", "width: 3\nheight: 3\nentities: [{team: player}]\n", "kind is required"},
		{
			"指令下标越界",
			"width: 3\nheight: 3\nentities: [{kind: worker, team: player}]\ncommands: [{team: player, type: move, actor: 4}]\n",
			"actor index 4 out of range",
		},
		{
			"攻击缺少目标",
			"width: 3\nheight: 3\nentities: [{kind: worker, team: player}]\ncommands: [{team: player, type: attack, actor: 0}]\n",
			"attack requires target",
		},
		{
			"未知指令",
			"width: 3\nheight: 3\nentities: [{kind: worker, team: player}]\ncommands: [{team: player, type: dance, actor: 0}]\n",
			"unknown command type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
