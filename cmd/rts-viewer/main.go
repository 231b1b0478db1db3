// rts-viewer 在窗口中运行模拟，玩家用鼠标和键盘控制 player 阵营
//
// 查看器设置（格子大小、速度、网格线等）通过 gdata 保存在用户数据目录，下次启动时恢复。
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/quasilyte/gdata/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	rts "github.com/gonewx/rts"
	"github.com/gonewx/rts/internal/observability"
	"github.com/gonewx/rts/pkg/app"
	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/embedded"
	"github.com/gonewx/rts/pkg/game"
	"github.com/gonewx/rts/pkg/logs"
	"github.com/gonewx/rts/pkg/viewer"
)

const appName = "rts-viewer"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "rts-viewer:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "配置文件路径（yaml）")
	fs.String("rules", config.DefaultRulesPath, "种类目录文件")
	fs.String("scenario", config.DefaultScenarioPath, "场景文件")
	fs.Int("ticks", 0, "最多运行的 tick 数，0 表示不限")
	fs.Float64("tick-rate", 10, "每秒 tick 数（1 倍速时）")
	fs.Bool("check", false, "每个 tick 后校验网格一致性")
	fs.String("log-level", "info", "日志级别")
	fs.Bool("trace", false, "启用 OpenTelemetry 追踪")
	fs.Int("cell-size", config.DefaultCellSize, "每格像素，覆盖已保存的设置")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	embedded.Init(rts.DataFS)

	loader := config.NewLoader(*configPath)
	if err := loader.BindFlags(fs, map[string]string{
		"rules":     "sim.rules",
		"scenario":  "sim.scenario",
		"tick-rate": "sim.tickRate",
		"check":     "sim.checkInvariants",
		"log-level": "log.level",
		"trace":     "tracing.enabled",
		"cell-size": "viewer.cellSize",
	}); err != nil {
		return err
	}
	// 查看器默认不限 tick 数
	loader.Set("sim.maxTicks", 0)
	if fs.Changed("ticks") {
		ticks, _ := fs.GetInt("ticks")
		loader.Set("sim.maxTicks", ticks)
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	logger := logs.New(appName, cfg.Log)
	defer func() { _ = logger.Sync() }()

	loader.Watch(func(next *config.AppConfig, err error) {
		if err != nil {
			logger.Warn("[Config] reload failed, keeping previous config", zap.Error(err))
			return
		}
		logger.SetLevel(next.Log.Level)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, os.Stdout, logger.Logger)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger.Logger)

	// 存储不可用时降级为仅内存设置
	store, err := gdata.Open(gdata.Config{AppName: "gonewx_rts"})
	if err != nil {
		logger.Warn("[Viewer] settings storage unavailable", zap.Error(err))
		store = nil
	}
	settings := game.NewSettingsManager(store, logger.Named("settings"))
	if fs.Changed("cell-size") {
		settings.SetCellSize(cfg.Viewer.CellSize)
	}

	a, err := app.NewApp(app.Options{Config: cfg, Logger: logger.Logger})
	if err != nil {
		return err
	}
	return viewer.New(ctx, a, settings, cfg.Viewer.Title, logger.Named("viewer")).Run()
}
