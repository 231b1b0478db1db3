package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultCellSize 查看器默认每格像素
const DefaultCellSize = 24

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`      // debug/info/warn/error
	Dev        bool   `mapstructure:"dev"`        // 开发模式：warn 及以上带堆栈
	FileDir    string `mapstructure:"fileDir"`    // 日志文件路径，为空则只输出到控制台
	MaxSize    int    `mapstructure:"maxSize"`    // 单个文件最大大小（MB）
	MaxBackups int    `mapstructure:"maxBackups"` // 最多保留多少个旧文件
	MaxAge     int    `mapstructure:"maxAge"`     // 最多保留多少天
	Compress   bool   `mapstructure:"compress"`   // 是否压缩旧文件
}

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// TracingConfig OpenTelemetry 追踪配置
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Exporter    string  `mapstructure:"exporter"` // stdout 或 otlp
	Endpoint    string  `mapstructure:"endpoint"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRatio float64 `mapstructure:"sampleRatio"`
	ServiceName string  `mapstructure:"serviceName"`
}

// SimConfig 模拟运行配置
type SimConfig struct {
	Rules           string  `mapstructure:"rules"`
	Scenario        string  `mapstructure:"scenario"`
	TickRate        float64 `mapstructure:"tickRate"`        // 每秒 tick 数
	MaxTicks        int     `mapstructure:"maxTicks"`        // 0 表示不限
	Realtime        bool    `mapstructure:"realtime"`        // 是否按 tickRate 真实计时
	CheckInvariants bool    `mapstructure:"checkInvariants"` // 每个 tick 后校验网格一致性
}

// ViewerConfig 窗口查看器配置
type ViewerConfig struct {
	CellSize int    `mapstructure:"cellSize"`
	Title    string `mapstructure:"title"`
}

// AppConfig 应用配置
type AppConfig struct {
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Sim     SimConfig     `mapstructure:"sim"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
}

// Validate 校验应用配置
func (c *AppConfig) Validate() error {
	if c.Sim.TickRate <= 0 {
		return fmt.Errorf("sim.tickRate must be positive, got %v", c.Sim.TickRate)
	}
	if c.Sim.MaxTicks < 0 {
		return fmt.Errorf("sim.maxTicks cannot be negative, got %d", c.Sim.MaxTicks)
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sampleRatio must be within [0,1], got %v", c.Tracing.SampleRatio)
	}
	switch c.Tracing.Exporter {
	case "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be stdout or otlp, got %q", c.Tracing.Exporter)
	}
	if c.Viewer.CellSize < 4 {
		return fmt.Errorf("viewer.cellSize must be at least 4, got %d", c.Viewer.CellSize)
	}
	return nil
}

// Loader 基于 viper 的配置加载器
// 配置文件可选；环境变量 RTS_SIM_TICKRATE 形式可覆盖任意键
type Loader struct {
	v    *viper.Viper
	path string
}

// NewLoader 创建配置加载器，path 为空时只使用默认值和环境变量
func NewLoader(path string) *Loader {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("rts")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	}
	return &Loader{v: v, path: path}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dev", false)
	v.SetDefault("log.fileDir", "")
	v.SetDefault("log.maxSize", 50)
	v.SetDefault("log.maxBackups", 3)
	v.SetDefault("log.maxAge", 7)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9102")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", "stdout")
	v.SetDefault("tracing.endpoint", "localhost:4317")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sampleRatio", 1.0)
	v.SetDefault("tracing.serviceName", "rts-sim")

	v.SetDefault("sim.rules", DefaultRulesPath)
	v.SetDefault("sim.scenario", DefaultScenarioPath)
	v.SetDefault("sim.tickRate", 10.0)
	v.SetDefault("sim.maxTicks", 600)
	v.SetDefault("sim.realtime", false)
	v.SetDefault("sim.checkInvariants", false)

	v.SetDefault("viewer.cellSize", DefaultCellSize)
	v.SetDefault("viewer.title", "RTS Simulation")
}

// Set 覆盖单个键（命令行参数使用）
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// BindFlags 把命令行参数绑定到配置键（参数名 -> 键）
// 显式给出的参数优先于配置文件和环境变量
func (l *Loader) BindFlags(fs *pflag.FlagSet, keys map[string]string) error {
	for name, key := range keys {
		f := fs.Lookup(name)
		if f == nil {
			return fmt.Errorf("flag --%s is not defined", name)
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", name, err)
		}
	}
	return nil
}

// Load 读取配置文件（如果有）并解析为 AppConfig
func (l *Loader) Load() (*AppConfig, error) {
	if l.path != "" {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", l.path, err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (*AppConfig, error) {
	var cfg AppConfig
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("viper unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch 监听配置文件变更，每次变更后重新解析并回调
// 没有配置文件时不做任何事
func (l *Loader) Watch(onChange func(*AppConfig, error)) {
	if l.path == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(l.decode())
	})
	l.v.WatchConfig()
}
