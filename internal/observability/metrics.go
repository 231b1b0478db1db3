package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gonewx/rts/pkg/simulation"
)

var _ simulation.MetricsRecorder = (*SimCollector)(nil)

// SimCollector 模拟核心的 Prometheus 指标，实现 simulation.MetricsRecorder
type SimCollector struct {
	gatherer prometheus.Gatherer

	Ticks         prometheus.Counter
	TickDuration  prometheus.Histogram
	PhaseDuration *prometheus.HistogramVec
	Entities      prometheus.Gauge
	Removed       prometheus.Counter
	Rejections    *prometheus.CounterVec
	PathSearches  *prometheus.CounterVec
	TeamResources *prometheus.GaugeVec
}

// tick 耗时通常在微秒到毫秒级
var tickBuckets = []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}

// NewSimCollector 在 reg 上注册模拟指标，reg 为 nil 时使用全局注册表
// 重复注册时复用已存在的同名指标
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &SimCollector{gatherer: gatherer}
	var err error

	if c.Ticks, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rts_ticks_total",
		Help: "Total number of simulation ticks advanced.",
	}), "rts_ticks_total"); err != nil {
		return nil, err
	}
	if c.TickDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rts_tick_duration_seconds",
		Help:    "Wall time spent running the whole phase pipeline of one tick.",
		Buckets: tickBuckets,
	}), "rts_tick_duration_seconds"); err != nil {
		return nil, err
	}
	if c.PhaseDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rts_phase_duration_seconds",
		Help:    "Wall time spent in each simulation phase.",
		Buckets: tickBuckets,
	}, []string{"phase"}), "rts_phase_duration_seconds"); err != nil {
		return nil, err
	}
	if c.Entities, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rts_entities",
		Help: "Current number of live entities.",
	}), "rts_entities"); err != nil {
		return nil, err
	}
	if c.Removed, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rts_entities_removed_total",
		Help: "Total number of entities removed by the removal phase.",
	}), "rts_entities_removed_total"); err != nil {
		return nil, err
	}
	if c.Rejections, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rts_command_rejections_total",
		Help: "Commands softly rejected, labeled by command and class (rejected, no_path).",
	}, []string{"command", "class"}), "rts_command_rejections_total"); err != nil {
		return nil, err
	}
	if c.PathSearches, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rts_path_searches_total",
		Help: "Path searches, labeled by result (found, greedy, none).",
	}, []string{"result"}), "rts_path_searches_total"); err != nil {
		return nil, err
	}
	if c.TeamResources, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rts_team_resources",
		Help: "Current resource stockpile per team.",
	}, []string{"team"}), "rts_team_resources"); err != nil {
		return nil, err
	}
	return c, nil
}

// Handler 暴露 /metrics
func (c *SimCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *SimCollector) ObserveTick(d time.Duration) {
	c.Ticks.Inc()
	c.TickDuration.Observe(d.Seconds())
}

func (c *SimCollector) ObservePhase(phase string, d time.Duration) {
	c.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (c *SimCollector) SetEntityCount(n int) {
	c.Entities.Set(float64(n))
}

func (c *SimCollector) AddRemoved(n int) {
	c.Removed.Add(float64(n))
}

func (c *SimCollector) IncRejection(command, class string) {
	c.Rejections.WithLabelValues(command, class).Inc()
}

func (c *SimCollector) IncPathSearch(result string) {
	c.PathSearches.WithLabelValues(result).Inc()
}

func (c *SimCollector) SetTeamResources(team string, amount int) {
	c.TeamResources.WithLabelValues(team).Set(float64(amount))
}

// register 注册指标；已注册过同名同类型指标时返回已存在的那个
func register[T prometheus.Collector](reg prometheus.Registerer, collector T, name string) (T, error) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return collector, nil
}
