package config

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/gonewx/rts/pkg/embedded"
	"github.com/gonewx/rts/pkg/types"
)

// DefaultRulesPath 内置种类目录
const DefaultRulesPath = "data/rules.yaml"

// Action 实体可以接收的指令种类
type Action string

const (
	ActionMove      Action = "move"
	ActionAttack    Action = "attack"
	ActionGather    Action = "gather"
	ActionReturn    Action = "return"
	ActionConstruct Action = "construct"
	ActionTrain     Action = "train"
	ActionHeal      Action = "heal"
)

// unitOnlyActions 只有单位才能执行的指令
var unitOnlyActions = map[Action]bool{
	ActionMove:      true,
	ActionAttack:    true,
	ActionGather:    true,
	ActionReturn:    true,
	ActionConstruct: true,
}

// Category 种类所属目录
type Category int

const (
	CategoryUnit Category = iota
	CategoryStructure
	CategoryResource
)

func (c Category) String() string {
	switch c {
	case CategoryUnit:
		return "unit"
	case CategoryStructure:
		return "structure"
	default:
		return "resource"
	}
}

// KindRules 单个种类的属性配置
type KindRules struct {
	Name           string     `yaml:"-"`              // 种类名称（加载后回填）
	Category       Category   `yaml:"-"`              // 所属目录（加载后回填）
	Size           types.Size `yaml:"size"`           // 占地尺寸
	Health         int        `yaml:"health"`         // 最大生命值，0 表示不可摧毁
	Solid          *bool      `yaml:"solid"`          // 是否占用网格，缺省为 true
	Cost           int        `yaml:"cost"`           // 训练费用
	TrainTime      float64    `yaml:"trainTime"`      // 训练耗时（秒）
	MoveInterval   float64    `yaml:"moveInterval"`   // 每格移动耗时（秒）
	AttackCooldown float64    `yaml:"attackCooldown"` // 攻击冷却（秒），0 表示不能攻击
	Gather         bool       `yaml:"gather"`         // 能否采集资源
	Actions        []Action   `yaml:"actions"`        // 可接收的指令
	Trains         []string   `yaml:"trains"`         // 可训练的单位种类（建筑）
	Builds         []string   `yaml:"builds"`         // 可建造的建筑种类（单位）
	HealCost       int        `yaml:"healCost"`       // 治疗费用
}

// IsSolid 是否占用网格
func (k *KindRules) IsSolid() bool {
	return k.Solid == nil || *k.Solid
}

// HasAction 种类是否声明了某个指令
func (k *KindRules) HasAction(a Action) bool {
	for _, have := range k.Actions {
		if have == a {
			return true
		}
	}
	return false
}

// CanTrain 建筑能否训练该单位
func (k *KindRules) CanTrain(kind string) bool {
	return contains(k.Trains, kind)
}

// CanBuild 单位能否建造该建筑
func (k *KindRules) CanBuild(kind string) bool {
	return contains(k.Builds, kind)
}

// Rules 种类目录配置文件结构
type Rules struct {
	Units      map[string]*KindRules `yaml:"units"`
	Structures map[string]*KindRules `yaml:"structures"`
	Resources  map[string]*KindRules `yaml:"resources"`
}

// LoadRules 从 YAML 文件加载种类目录
// 参数：
//
//	filepath - 配置文件路径，"data/" 前缀从内置数据读取
//
// 返回：
//
//	*Rules - 解析并校验后的配置
//	error - 如果文件读取、解析或校验失败，返回错误信息
func LoadRules(filepath string) (*Rules, error) {
	data, err := embedded.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", filepath, err)
	}

	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath, err)
	}
	return rules, nil
}

// ParseRules 解析并校验 YAML 格式的种类目录
func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules YAML: %w", err)
	}

	fill := func(m map[string]*KindRules, c Category) {
		for name, k := range m {
			if k == nil {
				k = &KindRules{}
				m[name] = k
			}
			k.Name = name
			k.Category = c
		}
	}
	fill(rules.Units, CategoryUnit)
	fill(rules.Structures, CategoryStructure)
	fill(rules.Resources, CategoryResource)

	if err := validateRules(&rules); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	return &rules, nil
}

// validateRules 验证种类目录的完整性和合法性
func validateRules(r *Rules) error {
	if len(r.Units) == 0 {
		return fmt.Errorf("at least one unit kind is required")
	}

	seen := make(map[string]Category)
	for _, k := range r.all() {
		if prev, dup := seen[k.Name]; dup {
			return fmt.Errorf("kind %s declared as both %s and %s", k.Name, prev, k.Category)
		}
		seen[k.Name] = k.Category

		if k.Size.W < 1 || k.Size.H < 1 {
			return fmt.Errorf("kind %s: size must be at least 1x1, got %dx%d", k.Name, k.Size.W, k.Size.H)
		}
		if k.Health < 0 {
			return fmt.Errorf("kind %s: health cannot be negative, got %d", k.Name, k.Health)
		}
		if k.Cost < 0 || k.HealCost < 0 {
			return fmt.Errorf("kind %s: costs cannot be negative", k.Name)
		}
		if k.TrainTime < 0 || k.MoveInterval < 0 || k.AttackCooldown < 0 {
			return fmt.Errorf("kind %s: durations cannot be negative", k.Name)
		}
		if err := validateActions(k); err != nil {
			return err
		}
	}

	for _, k := range r.Units {
		if k.Size != (types.Size{W: 1, H: 1}) {
			return fmt.Errorf("unit %s: units occupy exactly one cell, got %dx%d", k.Name, k.Size.W, k.Size.H)
		}
		for _, b := range k.Builds {
			if _, ok := r.Structures[b]; !ok {
				return fmt.Errorf("unit %s: builds unknown structure %s", k.Name, b)
			}
		}
	}
	for _, k := range r.Structures {
		for _, u := range k.Trains {
			if _, ok := r.Units[u]; !ok {
				return fmt.Errorf("structure %s: trains unknown unit %s", k.Name, u)
			}
		}
	}
	return nil
}

func validateActions(k *KindRules) error {
	for _, a := range k.Actions {
		switch a {
		case ActionMove, ActionAttack, ActionGather, ActionReturn, ActionConstruct, ActionTrain, ActionHeal:
		default:
			return fmt.Errorf("kind %s: unknown action %q", k.Name, a)
		}
		if k.Category == CategoryResource {
			return fmt.Errorf("resource %s: resources accept no actions", k.Name)
		}
		if unitOnlyActions[a] && k.Category != CategoryUnit {
			return fmt.Errorf("kind %s: action %s is only valid for units", k.Name, a)
		}
		if a == ActionTrain && (k.Category != CategoryStructure || len(k.Trains) == 0) {
			return fmt.Errorf("kind %s: train requires a structure with trains", k.Name)
		}
		if a == ActionAttack && k.AttackCooldown <= 0 {
			return fmt.Errorf("kind %s: attack requires attackCooldown > 0", k.Name)
		}
		if (a == ActionGather || a == ActionReturn) && !k.Gather {
			return fmt.Errorf("kind %s: %s requires gather: true", k.Name, a)
		}
		if a == ActionConstruct && len(k.Builds) == 0 {
			return fmt.Errorf("kind %s: construct requires builds", k.Name)
		}
		if a == ActionHeal && k.Health == 0 {
			return fmt.Errorf("kind %s: heal requires health", k.Name)
		}
	}
	return nil
}

// all 按目录、名称排序返回全部种类
func (r *Rules) all() []*KindRules {
	var out []*KindRules
	for _, m := range []map[string]*KindRules{r.Units, r.Structures, r.Resources} {
		names := make([]string, 0, len(m))
		for name := range m {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, m[name])
		}
	}
	return out
}

// Kind 按名称查找种类
// 如果种类不存在，返回 nil 和 false
func (r *Rules) Kind(name string) (*KindRules, bool) {
	if k, ok := r.Units[name]; ok {
		return k, true
	}
	if k, ok := r.Structures[name]; ok {
		return k, true
	}
	if k, ok := r.Resources[name]; ok {
		return k, true
	}
	return nil, false
}

// StructureSize 获取建筑种类的固定占地
func (r *Rules) StructureSize(kind string) (types.Size, bool) {
	k, ok := r.Structures[kind]
	if !ok {
		return types.Size{}, false
	}
	return k.Size, true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
