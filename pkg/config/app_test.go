package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderDefaults(t *testing.T) {
	cfg, err := NewLoader("").Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, DefaultRulesPath, cfg.Sim.Rules)
	assert.Equal(t, DefaultScenarioPath, cfg.Sim.Scenario)
	assert.Equal(t, 10.0, cfg.Sim.TickRate)
	assert.Equal(t, 600, cfg.Sim.MaxTicks)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "stdout", cfg.Tracing.Exporter)
	assert.Equal(t, 24, cfg.Viewer.CellSize)
}

func TestLoaderFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
sim:
  tickRate: 20
  maxTicks: 50
metrics:
  enabled: true
  listen: ":9999"
`), 0o644))
	t.Setenv("RTS_SIM_MAXTICKS", "75")

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 20.0, cfg.Sim.TickRate)
	assert.Equal(t, 75, cfg.Sim.MaxTicks, "environment overrides the file")
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, ":9999", cfg.Metrics.Listen)
}

func TestLoaderSetOverrides(t *testing.T) {
	l := NewLoader("")
	l.Set("sim.scenario", "maps/duel.yaml")

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "maps/duel.yaml", cfg.Sim.Scenario)
}

func TestLoaderValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sim:\n  tickRate: 0\n"), 0o644))

	_, err := NewLoader(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tickRate must be positive")

	_, err = NewLoader(filepath.Join(t.TempDir(), "missing.yaml")).Load()
	require.Error(t, err)
}

func TestLoaderWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644))

	l := NewLoader(path)
	_, err := l.Load()
	require.NoError(t, err)

	levels := make(chan string, 8)
	l.Watch(func(cfg *AppConfig, err error) {
		if err != nil {
			return
		}
		select {
		case levels <- cfg.Log.Level:
		default:
		}
	})

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o644))

	// 截断和写入可能触发多次事件，等到新值出现为止
	deadline := time.After(5 * time.Second)
	for {
		select {
		case level := <-levels:
			if level == "warn" {
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}

func TestLoaderBindFlags(t *testing.T) {
	fs := pflag.NewFlagSet("rts-sim", pflag.ContinueOnError)
	fs.Int("max-ticks", 600, "")
	fs.String("log-level", "info", "")
	require.NoError(t, fs.Parse([]string{"--max-ticks=42"}))

	l := NewLoader("")
	require.NoError(t, l.BindFlags(fs, map[string]string{
		"max-ticks": "sim.maxTicks",
		"log-level": "log.level",
	}))
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Sim.MaxTicks)
	assert.Equal(t, "info", cfg.Log.Level)

	t.Run("未定义的参数", func(t *testing.T) {
		err := l.BindFlags(fs, map[string]string{"nope": "sim.rules"})
		assert.Error(t, err)
	})
}
