package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/gonewx/rts/pkg/embedded"
	"github.com/gonewx/rts/pkg/types"
)

// DefaultScenarioPath 内置演示场景
const DefaultScenarioPath = "data/scenarios/skirmish.yaml"

// BlockedArea 永久不可通行的矩形区域（水域、悬崖）
type BlockedArea struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"` // 缺省为 1
	H int `yaml:"h"` // 缺省为 1
}

// Rect 转换为格子矩形
func (b BlockedArea) Rect() types.Rect {
	w, h := b.W, b.H
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return types.RectAt(types.Pt(b.X, b.Y), types.Size{W: w, H: h})
}

// TeamSetup 阵营初始资源
type TeamSetup struct {
	Team      string `yaml:"team"`
	Resources int    `yaml:"resources"`
}

// EntitySetup 场景初始实体
type EntitySetup struct {
	Kind string `yaml:"kind"`
	Team string `yaml:"team"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// ScriptedCommand 场景脚本中的一条指令
// Actor、Target、Structure 为 entities 列表的下标
type ScriptedCommand struct {
	Tick      int    `yaml:"tick"`
	Team      string `yaml:"team"`
	Type      string `yaml:"type"`
	Actor     int    `yaml:"actor"`
	Target    *int   `yaml:"target"`
	Structure *int   `yaml:"structure"`
	Kind      string `yaml:"kind"`
	X         int    `yaml:"x"`
	Y         int    `yaml:"y"`
}

// Scenario 场景配置：世界几何、初始实体和脚本指令
type Scenario struct {
	Name     string            `yaml:"name"`
	Width    int               `yaml:"width"`
	Height   int               `yaml:"height"`
	Blocked  []BlockedArea     `yaml:"blocked"`
	Teams    []TeamSetup       `yaml:"teams"`
	Entities []EntitySetup     `yaml:"entities"`
	Commands []ScriptedCommand `yaml:"commands"`
}

// LoadScenario 从 YAML 文件加载场景
func LoadScenario(filepath string) (*Scenario, error) {
	data, err := embedded.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", filepath, err)
	}

	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath, err)
	}
	return sc, nil
}

// ParseScenario 解析并校验 YAML 格式的场景
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario YAML: %w", err)
	}
	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &sc, nil
}

// validateScenario 只校验场景自身的结构，种类与占地冲突由模拟初始化检查
func validateScenario(sc *Scenario) error {
	if sc.Width < 1 || sc.Height < 1 {
		return fmt.Errorf("world must be at least 1x1, got %dx%d", sc.Width, sc.Height)
	}
	bounds := types.RectAt(types.Pt(0, 0), types.Size{W: sc.Width, H: sc.Height})

	for i, b := range sc.Blocked {
		if b.W < 0 || b.H < 0 {
			return fmt.Errorf("blocked[%d]: negative size", i)
		}
		r := b.Rect()
		if !bounds.Contains(r.Min) || !bounds.Contains(r.Max()) {
			return fmt.Errorf("blocked[%d]: %v outside %dx%d world", i, r, sc.Width, sc.Height)
		}
	}

	for i, ts := range sc.Teams {
		if _, err := types.ParseTeam(ts.Team); err != nil {
			return fmt.Errorf("teams[%d]: %w", i, err)
		}
		if ts.Resources < 0 {
			return fmt.Errorf("teams[%d]: resources cannot be negative, got %d", i, ts.Resources)
		}
	}

	for i, e := range sc.Entities {
		if e.Kind == "" {
			return fmt.Errorf("entities[%d]: kind is required", i)
		}
		if _, err := types.ParseTeam(e.Team); err != nil {
			return fmt.Errorf("entities[%d]: %w", i, err)
		}
	}

	index := func(v int) bool { return v >= 0 && v < len(sc.Entities) }
	for i, c := range sc.Commands {
		if c.Tick < 0 {
			return fmt.Errorf("commands[%d]: tick cannot be negative", i)
		}
		if _, err := types.ParseTeam(c.Team); err != nil {
			return fmt.Errorf("commands[%d]: %w", i, err)
		}
		if !index(c.Actor) {
			return fmt.Errorf("commands[%d]: actor index %d out of range", i, c.Actor)
		}
		if c.Target != nil && !index(*c.Target) {
			return fmt.Errorf("commands[%d]: target index %d out of range", i, *c.Target)
		}
		if c.Structure != nil && !index(*c.Structure) {
			return fmt.Errorf("commands[%d]: structure index %d out of range", i, *c.Structure)
		}
		switch c.Type {
		case "move", "construct", "heal", "train", "return":
		case "attack", "gather":
			if c.Target == nil {
				return fmt.Errorf("commands[%d]: %s requires target", i, c.Type)
			}
		default:
			return fmt.Errorf("commands[%d]: unknown command type %q", i, c.Type)
		}
	}
	return nil
}
