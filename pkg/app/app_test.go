package app

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/gonewx/rts/internal/observability"
	"github.com/gonewx/rts/pkg/config"
	"github.com/gonewx/rts/pkg/simulation"
	"github.com/gonewx/rts/pkg/types"
)

const appRules = `
units:
  worker:
    size: {w: 1, h: 1}
    health: 5
    cost: 3
    trainTime: 0.5
    attackCooldown: 1
    gather: true
    actions: [move, attack, gather, return]
structures:
  depot:
    size: {w: 2, h: 2}
    health: 30
    trains: [worker]
    actions: [train]
resources:
  crystal:
    size: {w: 1, h: 1}
    health: 20
`

const appScenario = `
name: test-run
width: 16
height: 10
teams:
  - {team: player, resources: 10}
entities:
  - {kind: depot, team: player, x: 1, y: 1}
  - {kind: worker, team: player, x: 4, y: 1}
  - {kind: crystal, team: neutral, x: 8, y: 1}
commands:
  - {tick: 0, team: player, type: gather, actor: 1, target: 2}
  - {tick: 2, team: player, type: train, actor: 0, kind: worker}
  - {tick: 3, team: player, type: train, actor: 0, kind: worker}
`

// testConfig 把规则和场景写入临时目录并返回对应的配置
func testConfig(t *testing.T, maxTicks int) *config.AppConfig {
	t.Helper()
	dir := t.TempDir()
	rules := filepath.Join(dir, "rules.yaml")
	scenario := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(rules, []byte(appRules), 0o644))
	require.NoError(t, os.WriteFile(scenario, []byte(appScenario), 0o644))

	l := config.NewLoader("")
	l.Set("sim.rules", rules)
	l.Set("sim.scenario", scenario)
	l.Set("sim.maxTicks", maxTicks)
	l.Set("sim.checkInvariants", true)
	cfg, err := l.Load()
	require.NoError(t, err)
	return cfg
}

func TestNewApp(t *testing.T) {
	t.Run("缺少配置", func(t *testing.T) {
		_, err := NewApp(Options{})
		assert.Error(t, err)
	})

	t.Run("场景文件不存在", func(t *testing.T) {
		cfg := testConfig(t, 10)
		cfg.Sim.Scenario = filepath.Join(t.TempDir(), "missing.yaml")
		_, err := NewApp(Options{Config: cfg})
		assert.Error(t, err)
	})

	t.Run("加载成功", func(t *testing.T) {
		a, err := NewApp(Options{Config: testConfig(t, 10)})
		require.NoError(t, err)
		assert.Equal(t, "test-run", a.Scenario().Name)
		assert.InDelta(t, 0.1, a.TickInterval(), 1e-9)
		assert.Len(t, a.Simulation().Entities(), 3)
		assert.False(t, a.Done())
	})
}

func TestApp_RunFollowsScript(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := observability.NewSimCollector(reg)
	require.NoError(t, err)

	a, err := NewApp(Options{Config: testConfig(t, 60), Metrics: collector})
	require.NoError(t, err)

	summary, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, a.Done())
	assert.Equal(t, uint64(60), summary.Ticks)
	assert.Equal(t, 60.0, testutil.ToFloat64(collector.Ticks))

	// 第二次训练时第一次仍在进行，被软拒绝；训练出一个新工人
	assert.Equal(t, 4, summary.Entities)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Rejections.WithLabelValues("train", "rejected")))

	// 工人一直在采集，资源在扣除训练费用后有所增加
	assert.Greater(t, summary.Resources[types.TeamPlayer], 7)
	assert.NotEmpty(t, summary.Fields())
}

func TestApp_RunCancelled(t *testing.T) {
	a, err := NewApp(Options{Config: testConfig(t, 0)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := a.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), summary.Ticks)
}

func TestApp_StepRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	a, err := NewApp(Options{Config: testConfig(t, 10)})
	require.NoError(t, err)

	report, err := a.Step(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), report.Tick)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "sim.tick", span.Name())

	var names []string
	for _, e := range span.Events() {
		names = append(names, e.Name)
	}
	assert.Equal(t, append([]string{"command"}, simulation.Phases...), names)
}

func TestApp_IssueSkipsRemovedEntities(t *testing.T) {
	a, err := NewApp(Options{Config: testConfig(t, 10)})
	require.NoError(t, err)

	ids := a.Simulation().InitialEntities()
	assert.NoError(t, a.Issue(simulation.Attack{Attacker: ids[1], Victim: 999}, types.TeamPlayer))
	assert.NoError(t, a.Issue(simulation.ReturnResource{Gatherer: ids[1]}, types.TeamPlayer), "soft rejection is swallowed")
}

func TestMetricsServer(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := observability.NewSimCollector(reg)
	require.NoError(t, err)
	collector.SetEntityCount(5)

	srv, err := StartMetricsServer("127.0.0.1:0", collector.Handler(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "rts_entities 5")
}
