package pathfinding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gonewx/rts/pkg/grid"
	"github.com/gonewx/rts/pkg/types"
)

func pts(coords ...[2]int) []types.Point {
	out := make([]types.Point, len(coords))
	for i, c := range coords {
		out[i] = types.Pt(c[0], c[1])
	}
	return out
}

func TestFindPathStraight(t *testing.T) {
	g := grid.New(10, 10)

	path, ok := FindPath(types.Pt(0, 0), ToPoint(types.Pt(2, 0)), g)
	require.True(t, ok)
	assert.Equal(t, pts([2]int{2, 0}, [2]int{1, 0}), path)
}

func TestFindPathDiagonal(t *testing.T) {
	g := grid.New(10, 10)

	path, ok := FindPath(types.Pt(0, 0), ToPoint(types.Pt(2, 2)), g)
	require.True(t, ok)
	assert.Equal(t, pts([2]int{2, 2}, [2]int{1, 1}), path)
}

func TestFindPathAvoidsObstacle(t *testing.T) {
	g := grid.New(10, 10)
	require.NoError(t, g.Block(types.Pt(1, 0)))

	path, ok := FindPath(types.Pt(0, 0), ToPoint(types.Pt(2, 0)), g)
	require.True(t, ok)
	assert.Equal(t, pts([2]int{2, 0}, [2]int{1, 1}), path)
}

func TestFindPathAvoidsEntities(t *testing.T) {
	g := grid.New(10, 10)
	require.NoError(t, g.Occupy(types.Pt(1, 0), types.Enemy(1)))

	path, ok := FindPath(types.Pt(0, 0), ToPoint(types.Pt(2, 0)), g)
	require.True(t, ok)
	assert.NotContains(t, path, types.Pt(1, 0))
	assert.Equal(t, types.Pt(2, 0), path[0])
}

func TestFindPathNoPath(t *testing.T) {
	g := grid.New(10, 2)
	require.NoError(t, g.Block(types.Pt(2, 0)))
	require.NoError(t, g.Block(types.Pt(2, 1)))

	path, ok := FindPath(types.Pt(0, 0), ToPoint(types.Pt(4, 0)), g)
	assert.False(t, ok)
	assert.Nil(t, path)

	res := Search(types.Pt(0, 0), ToPoint(types.Pt(4, 0)), g)
	assert.False(t, res.Found)
	assert.Equal(t, 4, res.Expanded, "the four reachable cells left of the wall are expanded")
}

func TestFindPathAdjacentToFootprint(t *testing.T) {
	g := grid.New(10, 10)
	footprint := types.RectAt(types.Pt(5, 0), types.Size{W: 2, H: 2})
	require.NoError(t, g.OccupyArea(footprint.Min, footprint.Size, types.TeamPlayer))

	path, ok := FindPath(types.Pt(0, 0), Adjacent(footprint), g)
	require.True(t, ok)
	require.NotEmpty(t, path)
	assert.Equal(t, types.Pt(4, 0), path[0], "ends on the first cell of the one-cell ring")
	assert.Len(t, path, 4)
	for _, p := range path {
		assert.False(t, footprint.Contains(p), "path must not enter the footprint")
	}
}

func TestFindPathAlreadyThere(t *testing.T) {
	g := grid.New(4, 4)
	path, ok := FindPath(types.Pt(1, 1), ToPoint(types.Pt(1, 1)), g)
	assert.True(t, ok)
	assert.Empty(t, path)
}

func TestFindPathGreedyFallback(t *testing.T) {
	g := grid.New(30, 30)
	// 贪心分支忽略障碍
	require.NoError(t, g.Block(types.Pt(1, 1)))

	res := Search(types.Pt(0, 0), ToPoint(types.Pt(12, 3)), g)
	require.True(t, res.Found)
	assert.True(t, res.Greedy)
	require.Len(t, res.Path, 12)
	assert.Equal(t, types.Pt(12, 3), res.Path[0])
	assert.Equal(t, types.Pt(1, 1), res.Path[len(res.Path)-1], "first step is diagonal even through an obstacle")
	assert.Equal(t, types.Pt(3, 3), res.Path[len(res.Path)-3])
	assert.Equal(t, types.Pt(4, 3), res.Path[len(res.Path)-4])
}

func TestFindPathThresholdBoundary(t *testing.T) {
	g := grid.New(30, 30)

	// 恰好 10 格仍走 A*
	res := Search(types.Pt(0, 0), ToPoint(types.Pt(10, 0)), g)
	require.True(t, res.Found)
	assert.False(t, res.Greedy)
	assert.Len(t, res.Path, 10)
}
