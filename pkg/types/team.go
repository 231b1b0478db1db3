// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Team 定义实体所属阵营
// 0 为中立（资源点），1 为玩家，2 及以上为第 n 个敌方 (Enemy(1) == 2)
type Team int

const (
	// TeamNeutral 中立阵营，资源点属于该阵营
	TeamNeutral Team = iota
	// TeamPlayer 玩家阵营
	TeamPlayer
)

// Enemy 返回第 n 个敌方阵营（n 从 1 开始）
func Enemy(n int) Team {
	if n < 1 {
		panic(fmt.Sprintf("enemy index must be >= 1, got %d", n))
	}
	return TeamPlayer + Team(n)
}

// IsEnemy 是否为敌方阵营
func (t Team) IsEnemy() bool {
	return t > TeamPlayer
}

// String 返回阵营的字符串表示
func (t Team) String() string {
	switch {
	case t == TeamNeutral:
		return "neutral"
	case t == TeamPlayer:
		return "player"
	case t.IsEnemy():
		return "enemy-" + strconv.Itoa(int(t-TeamPlayer))
	default:
		return "team(" + strconv.Itoa(int(t)) + ")"
	}
}

// ParseTeam 解析 "neutral" / "player" / "enemy-N" 形式的阵营名
func ParseTeam(s string) (Team, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "neutral":
		return TeamNeutral, nil
	case "player":
		return TeamPlayer, nil
	}
	if rest, ok := strings.CutPrefix(s, "enemy-"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("invalid enemy team %q", s)
		}
		return Enemy(n), nil
	}
	return 0, fmt.Errorf("unknown team %q", s)
}
