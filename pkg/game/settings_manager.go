package game

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gonewx/rts/pkg/config"
)

// ViewerSettings 查看器设置，跨场景全局保存
type ViewerSettings struct {
	CellSize   int     `yaml:"cellSize"`   // 每格像素
	Speed      float64 `yaml:"speed"`      // 模拟速度倍率
	ShowGrid   bool    `yaml:"showGrid"`   // 是否绘制网格线
	ShowPaths  bool    `yaml:"showPaths"`  // 是否绘制移动计划
	Fullscreen bool    `yaml:"fullscreen"` // 启动时是否全屏
}

// 速度倍率范围
const (
	MinSpeed = 0.25
	MaxSpeed = 8.0
)

// 每格像素范围
const (
	MinCellSize = 8
	MaxCellSize = 64
)

// DefaultSettings 返回默认设置
func DefaultSettings() *ViewerSettings {
	return &ViewerSettings{
		CellSize:  config.DefaultCellSize,
		Speed:     1.0,
		ShowGrid:  true,
		ShowPaths: true,
	}
}

// SettingsManager 设置管理器
// 负责查看器设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，仅内存设置）
	settings     *ViewerSettings
	logger       *zap.Logger
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "viewer"
)

// NewSettingsManager 创建设置管理器并尝试加载已保存的设置
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式）
//   - logger: 日志，可为 nil
//
// 返回：
//   - *SettingsManager: 设置管理器实例；加载失败时使用默认设置
func NewSettingsManager(gdataManager *gdata.Manager, logger *zap.Logger) *SettingsManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
		logger:       logger,
	}
	if err := sm.Load(); err != nil {
		sm.logger.Warn("[SettingsManager] failed to load settings, using defaults", zap.Error(err))
	}
	return sm
}

// Load 从 gdata 加载设置
// 没有存储或没有保存过时使用默认设置
func (sm *SettingsManager) Load() error {
	if sm.gdataManager == nil || !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultSettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		sm.settings = DefaultSettings()
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.CellSize = clampInt(loaded.CellSize, MinCellSize, MaxCellSize)
	loaded.Speed = clampFloat(loaded.Speed, MinSpeed, MaxSpeed)

	sm.settings = loaded
	sm.logger.Debug("[SettingsManager] settings loaded")
	return nil
}

// Save 保存设置到 gdata，降级模式下什么都不做
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	sm.logger.Debug("[SettingsManager] settings saved")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *ViewerSettings {
	return sm.settings
}

// SetCellSize 设置每格像素，限制在 [MinCellSize, MaxCellSize]
// 注意：仅修改内存中的设置，需调用 Save() 持久化
func (sm *SettingsManager) SetCellSize(size int) {
	sm.settings.CellSize = clampInt(size, MinCellSize, MaxCellSize)
}

// SetSpeed 设置速度倍率，限制在 [MinSpeed, MaxSpeed]
func (sm *SettingsManager) SetSpeed(speed float64) {
	sm.settings.Speed = clampFloat(speed, MinSpeed, MaxSpeed)
}

// ToggleGrid 切换网格线
func (sm *SettingsManager) ToggleGrid() {
	sm.settings.ShowGrid = !sm.settings.ShowGrid
}

// TogglePaths 切换移动计划显示
func (sm *SettingsManager) TogglePaths() {
	sm.settings.ShowPaths = !sm.settings.ShowPaths
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func clampFloat(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
