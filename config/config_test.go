package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Missing(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFrom_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neongraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
canvas:
  width: 1920
  height: 1080
intro:
  spawn_budget: 4s
  schedule:
    - below: 5
      delay: 100ms
    - below: 10
      delay: 300ms
  title:
    left: 100
    top: 400
    right: 1800
    bottom: 600
reveal:
  step: 1500ms
data:
  paths: [a.json, b.csv]
  watch: true
log:
  level: debug
`), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1920.0, cfg.Canvas.Width)
	assert.Equal(t, 4*time.Second, cfg.Intro.SpawnBudget.Std())
	assert.Equal(t, 10*time.Second, cfg.Intro.HaltAfter.Std(), "unset fields keep defaults")
	assert.Equal(t, []string{"a.json", "b.csv"}, cfg.Data.Paths)
	assert.True(t, cfg.Data.Watch)
	require.NotNil(t, cfg.Intro.Title)
	assert.Equal(t, 1800.0, cfg.Intro.Title.Box().Max.X)

	timing := cfg.Timing()
	require.Len(t, timing.Schedule, 2)
	d, ok := timing.Schedule.Delay(7)
	assert.True(t, ok)
	assert.Equal(t, 300*time.Millisecond, d)

	opts := cfg.RevealOptions()
	assert.Equal(t, 1500*time.Millisecond, opts.Step)
	assert.Equal(t, time.Second, opts.InitialDelay)
	assert.Equal(t, 1080.0, opts.Height)
}

func TestLoadFrom_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neongraph.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed = 42

[server]
addr = ":9000"

[events]
nats_url = "nats://127.0.0.1:4222"

[reveal]
initial_delay = "250ms"
`), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Events.NATSURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Reveal.InitialDelay.Std())
	assert.Equal(t, int64(42), cfg.RevealOptions().Seed)
}

func TestLoadFrom_BadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reveal:\n  step: soon\n"), 0o644))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			want := Default()
			want.Seed = 7
			want.Data.Paths = []string{"data.json"}
			require.NoError(t, Save(path, want))

			got, err := LoadFrom(path)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvAddr:    "127.0.0.1:1234",
		EnvNATSURL: "nats://example:4222",
		EnvData:    "one.json" + string(os.PathListSeparator) + "two.json",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "127.0.0.1:1234", cfg.Server.Addr)
	assert.Equal(t, "nats://example:4222", cfg.Events.NATSURL)
	assert.Equal(t, []string{"one.json", "two.json"}, cfg.Data.Paths)

	untouched := Default()
	untouched.ApplyEnv(func(string) string { return "" })
	assert.Equal(t, Default(), untouched)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Canvas.Width = 0
	cfg.Intro.HaltAfter = Duration(time.Second)
	cfg.Intro.Schedule = []StageConfig{{Below: 10, Delay: Duration(time.Second)}, {Below: 5, Delay: 0}}
	cfg.Log.Level = "loud"
	cfg.Server.MaxSessions = -1

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"canvas", "halt_after", "schedule[1].below", "schedule[1].delay", "log", "session limits"} {
		assert.ErrorContains(t, err, want)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	LogConfig{Level: "warn"}.NewLogger(&buf).Info("hidden")
	assert.Empty(t, buf.String())

	LogConfig{Debug: true}.NewLogger(&buf).Debug("shown", "k", 1)
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "source=")
}
