// Package game 保存跨系统共享的状态：阵营资源储量和查看器设置
package game

import (
	"fmt"
	"sort"

	"github.com/gonewx/rts/pkg/types"
)

// TeamStates 各阵营的资源储量
// 储量为非负整数，只通过采集返还和训练、治疗扣费改变
type TeamStates struct {
	resources map[types.Team]int
}

// NewTeamStates 为给定阵营创建资源计数，初始值可以为 0
// 参数：
//   - initial: 阵营到初始储量的映射，负值会返回错误
func NewTeamStates(initial map[types.Team]int) (*TeamStates, error) {
	ts := &TeamStates{resources: make(map[types.Team]int, len(initial))}
	for team, amount := range initial {
		if amount < 0 {
			return nil, fmt.Errorf("team %s: resources cannot be negative, got %d", team, amount)
		}
		ts.resources[team] = amount
	}
	return ts, nil
}

// Ensure 确保阵营存在计数（不存在时从 0 开始）
func (ts *TeamStates) Ensure(team types.Team) {
	if _, ok := ts.resources[team]; !ok {
		ts.resources[team] = 0
	}
}

// Add 增加资源
func (ts *TeamStates) Add(team types.Team, amount int) {
	if amount < 0 {
		panic(fmt.Sprintf("TeamStates.Add: negative amount %d", amount))
	}
	ts.resources[team] += amount
}

// Spend 扣除资源，如果资源不足返回 false
// 只有当资源充足时才会扣除
func (ts *TeamStates) Spend(team types.Team, amount int) bool {
	if amount < 0 {
		panic(fmt.Sprintf("TeamStates.Spend: negative amount %d", amount))
	}
	if ts.resources[team] < amount {
		return false
	}
	ts.resources[team] -= amount
	return true
}

// CanAfford 资源是否足够
func (ts *TeamStates) CanAfford(team types.Team, amount int) bool {
	return ts.resources[team] >= amount
}

// Get 返回阵营当前资源，未知阵营为 0
func (ts *TeamStates) Get(team types.Team) int {
	return ts.resources[team]
}

// Teams 按编号升序返回所有阵营
func (ts *TeamStates) Teams() []types.Team {
	teams := make([]types.Team, 0, len(ts.resources))
	for team := range ts.resources {
		teams = append(teams, team)
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i] < teams[j] })
	return teams
}
