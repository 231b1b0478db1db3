package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Run 按固定步长运行模拟，直到达到最大 tick 数或 ctx 被取消
// Realtime 为 true 时按 tickRate 真实计时，否则尽快运行
func (a *App) Run(ctx context.Context) (Summary, error) {
	var ticker *time.Ticker
	if a.cfg.Sim.Realtime {
		ticker = time.NewTicker(time.Duration(a.dt * float64(time.Second)))
		defer ticker.Stop()
	}

	started := time.Now()
	for !a.Done() {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return a.stop(started, ctx.Err())
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return a.stop(started, err)
		}

		if _, err := a.Step(ctx); err != nil {
			return a.stop(started, err)
		}
	}
	return a.stop(started, nil)
}

func (a *App) stop(started time.Time, err error) (Summary, error) {
	summary := a.Summarize()
	fields := append(summary.Fields(), zap.Duration("elapsed", time.Since(started)))
	switch {
	case err == nil:
		a.logger.Info("[App] run finished", fields...)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		a.logger.Info("[App] run interrupted", fields...)
		err = nil
	default:
		a.logger.Error("[App] run failed", append(fields, zap.Error(err))...)
	}
	return summary, err
}

// MetricsServer 暴露 /metrics 的 HTTP 服务
type MetricsServer struct {
	srv    *http.Server
	ln     net.Listener
	logger *zap.Logger
}

// StartMetricsServer 在 listen 地址上启动指标服务
func StartMetricsServer(listen string, handler http.Handler, logger *zap.Logger) (*MetricsServer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	m := &MetricsServer{
		srv:    &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:     ln,
		logger: logger,
	}
	go func() {
		if err := m.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("[Metrics] server stopped", zap.Error(err))
		}
	}()
	logger.Info("[Metrics] listening", zap.String("addr", ln.Addr().String()))
	return m, nil
}

// Addr 实际监听地址
func (m *MetricsServer) Addr() string {
	return m.ln.Addr().String()
}

// Shutdown 关闭指标服务
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return m.srv.Shutdown(ctx)
}
