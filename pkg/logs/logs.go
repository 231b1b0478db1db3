// Package logs 构建应用使用的 zap 日志
//
// 控制台输出彩色级别，配置了文件路径时另起一路 JSON 输出，由 lumberjack 负责切割。
// 级别由 zap.AtomicLevel 控制，配置热更新时可以直接调整。
package logs

import (
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gonewx/rts/pkg/config"
)

// Logger 日志及其可调级别
type Logger struct {
	*zap.Logger
	Level zap.AtomicLevel
}

// New 按配置创建日志，控制台输出到 stderr
func New(appName string, cfg config.LogConfig) *Logger {
	return newLogger(appName, cfg, zapcore.Lock(os.Stderr))
}

// Nop 不输出任何内容的日志
func Nop() *Logger {
	return &Logger{Logger: zap.NewNop(), Level: zap.NewAtomicLevel()}
}

// ParseLevel 解析日志级别，大小写不敏感，无法识别时回退到 info
func ParseLevel(s string) zapcore.Level {
	lvl := zapcore.InfoLevel
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(s)))); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// SetLevel 动态调整日志级别，返回调整前的级别
func (l *Logger) SetLevel(s string) zapcore.Level {
	prev := l.Level.Level()
	l.Level.SetLevel(ParseLevel(s))
	return prev
}

func newLogger(appName string, cfg config.LogConfig, console zapcore.WriteSyncer) *Logger {
	atomicLevel := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	encoderCfg := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	consoleCfg := encoderCfg
	consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), console, atomicLevel)

	// 文件里不要 ANSI 颜色
	if cfg.FileDir != "" {
		fileCfg := encoderCfg
		fileCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		fileWriter := &lumberjack.Logger{
			Filename:   cfg.FileDir,
			MaxSize:    max(1, cfg.MaxSize),
			MaxBackups: max(0, cfg.MaxBackups),
			MaxAge:     max(0, cfg.MaxAge),
			Compress:   cfg.Compress,
		}
		core = zapcore.NewTee(
			core,
			zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), zapcore.AddSync(fileWriter), atomicLevel),
		)
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Dev {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.WarnLevel))
	}

	return &Logger{
		Logger: zap.New(core, opts...).Named(appName),
		Level:  atomicLevel,
	}
}
