package simulation

import "time"

// MetricsRecorder 接收模拟运行指标
// 由上层注入具体实现（如 Prometheus），模拟本身不依赖任何指标库
type MetricsRecorder interface {
	ObserveTick(d time.Duration)
	ObservePhase(phase string, d time.Duration)
	SetEntityCount(n int)
	AddRemoved(n int)
	IncRejection(command, class string) // class: rejected 或 no_path
	IncPathSearch(result string)
	SetTeamResources(team string, amount int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveTick(time.Duration)          {}
func (nopMetrics) ObservePhase(string, time.Duration) {}
func (nopMetrics) SetEntityCount(int)                 {}
func (nopMetrics) AddRemoved(int)                     {}
func (nopMetrics) IncRejection(string, string)        {}
func (nopMetrics) IncPathSearch(string)               {}
func (nopMetrics) SetTeamResources(string, int)       {}
