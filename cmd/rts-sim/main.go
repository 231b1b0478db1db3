// rts-sim 无界面运行模拟
//
// 用法：
//
//	rts-sim --config rts.yaml --scenario data/scenarios/skirmish.yaml --ticks 600 --metrics
//
// 配置文件可选；命令行参数优先于配置文件，环境变量 RTS_SIM_TICKRATE 形式可覆盖任意键。
// 配置文件变更时日志级别会热更新。
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	rts "github.com/gonewx/rts"
	"github.com/gonewx/rts/internal/observability"
	"github.com/gonewx/rts/pkg/app"
	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/embedded"
	"github.com/gonewx/rts/pkg/logs"
	"github.com/gonewx/rts/pkg/simulation"
)

const appName = "rts-sim"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "rts-sim:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	configPath := fs.StringP("config", "c", "", "配置文件路径（yaml）")
	fs.String("rules", config.DefaultRulesPath, "种类目录文件")
	fs.String("scenario", config.DefaultScenarioPath, "场景文件")
	fs.Int("ticks", 600, "最多运行的 tick 数，0 表示直到中断")
	fs.Float64("tick-rate", 10, "每秒 tick 数")
	fs.Bool("realtime", false, "按 tick-rate 真实计时运行")
	fs.Bool("check", false, "每个 tick 后校验网格一致性")
	fs.String("log-level", "info", "日志级别")
	fs.Bool("metrics", false, "启用 Prometheus /metrics")
	fs.String("metrics-listen", ":9102", "/metrics 监听地址")
	fs.Bool("trace", false, "启用 OpenTelemetry 追踪")
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	embedded.Init(rts.DataFS)

	loader := config.NewLoader(*configPath)
	if err := loader.BindFlags(fs, map[string]string{
		"rules":          "sim.rules",
		"scenario":       "sim.scenario",
		"ticks":          "sim.maxTicks",
		"tick-rate":      "sim.tickRate",
		"realtime":       "sim.realtime",
		"check":          "sim.checkInvariants",
		"log-level":      "log.level",
		"metrics":        "metrics.enabled",
		"metrics-listen": "metrics.listen",
		"trace":          "tracing.enabled",
	}); err != nil {
		return err
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
		prev := logger.SetLevel(next.Log.Level)
		logger.Info("[Config] reloaded",
			zap.Stringer("previousLevel", prev), zap.String("level", next.Log.Level))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, os.Stdout, logger.Logger)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, logger.Logger)

	var metrics simulation.MetricsRecorder
	if cfg.Metrics.Enabled {
		collector, err := observability.NewSimCollector(nil)
		if err != nil {
			return err
		}
		srv, err := app.StartMetricsServer(cfg.Metrics.Listen, collector.Handler(), logger.Logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("[Metrics] shutdown failed", zap.Error(err))
			}
		}()
		metrics = collector
	}

	a, err := app.NewApp(app.Options{Config: cfg, Logger: logger.Logger, Metrics: metrics})
	if err != nil {
		return err
	}
	_, err = a.Run(ctx)
	return err
}
