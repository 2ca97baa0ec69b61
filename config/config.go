// Package config loads neongraph settings from YAML or TOML files with
// environment overrides.
//
// Lookup order for the file itself is the --config flag, then
// ./neongraph.yaml. A missing file is not an error: defaults apply.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/TFMV/neongraph/circuit"
	"github.com/TFMV/neongraph/geom"
	"github.com/TFMV/neongraph/reveal"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "neongraph.yaml"

// Environment overrides.
const (
	EnvAddr    = "NEONGRAPH_ADDR"
	EnvNATSURL = "NEONGRAPH_NATS_URL"
	EnvData    = "NEONGRAPH_DATA"
)

// Duration is a time.Duration written as a Go duration string ("200ms").
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// CanvasConfig is the drawing surface size.
type CanvasConfig struct {
	Width  float64 `yaml:"width" toml:"width"`
	Height float64 `yaml:"height" toml:"height"`
}

// BoxConfig is a title box in canvas pixels.
type BoxConfig struct {
	Left   float64 `yaml:"left" toml:"left"`
	Top    float64 `yaml:"top" toml:"top"`
	Right  float64 `yaml:"right" toml:"right"`
	Bottom float64 `yaml:"bottom" toml:"bottom"`
}

// Box converts to a geom.Box.
func (b BoxConfig) Box() geom.Box {
	return geom.Rect(b.Left, b.Top, b.Right, b.Bottom)
}

// StageConfig is one spawn cadence stage.
type StageConfig struct {
	Below int      `yaml:"below" toml:"below"`
	Delay Duration `yaml:"delay" toml:"delay"`
}

// IntroConfig controls the circuit intro.
type IntroConfig struct {
	FrameInterval Duration      `yaml:"frame_interval" toml:"frame_interval"`
	SpawnBudget   Duration      `yaml:"spawn_budget" toml:"spawn_budget"`
	HaltAfter     Duration      `yaml:"halt_after" toml:"halt_after"`
	Schedule      []StageConfig `yaml:"schedule,omitempty" toml:"schedule,omitempty"`
	Title         *BoxConfig    `yaml:"title,omitempty" toml:"title,omitempty"` // paths converge here; centered band when unset
}

// RevealConfig controls the detail-view reveal.
type RevealConfig struct {
	InitialDelay  Duration `yaml:"initial_delay" toml:"initial_delay"`
	Step          Duration `yaml:"step" toml:"step"`
	PopDuration   Duration `yaml:"pop_duration" toml:"pop_duration"`
	FrameInterval Duration `yaml:"frame_interval" toml:"frame_interval"`
}

// DataConfig lists department data sources.
type DataConfig struct {
	Paths    []string `yaml:"paths,omitempty" toml:"paths,omitempty"`
	Watch    bool     `yaml:"watch" toml:"watch"`
	Debounce Duration `yaml:"debounce" toml:"debounce"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr            string   `yaml:"addr" toml:"addr"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	MaxSessions     int      `yaml:"max_sessions" toml:"max_sessions"` // least recently used is evicted beyond this
	SessionIdle     Duration `yaml:"session_idle" toml:"session_idle"`
}

// EventsConfig controls the event mirror.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url,omitempty" toml:"nats_url,omitempty"` // empty disables mirroring
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"` // debug, info, warn, error
	Debug bool   `yaml:"debug" toml:"debug"` // debug level plus source locations
}

// Config is the top-level configuration.
type Config struct {
	Canvas CanvasConfig `yaml:"canvas" toml:"canvas"`
	Intro  IntroConfig  `yaml:"intro" toml:"intro"`
	Reveal RevealConfig `yaml:"reveal" toml:"reveal"`
	Data   DataConfig   `yaml:"data" toml:"data"`
	Server ServerConfig `yaml:"server" toml:"server"`
	Events EventsConfig `yaml:"events" toml:"events"`
	Log    LogConfig    `yaml:"log" toml:"log"`
	Seed   int64        `yaml:"seed" toml:"seed"`
}

// Default returns the default configuration.
func Default() Config {
	timing := circuit.DefaultTiming()
	opts := reveal.DefaultOptions()

	stages := make([]StageConfig, 0, len(timing.Schedule))
	for _, s := range timing.Schedule {
		stages = append(stages, StageConfig{Below: s.Below, Delay: Duration(s.Delay)})
	}

	return Config{
		Canvas: CanvasConfig{Width: opts.Width, Height: opts.Height},
		Intro: IntroConfig{
			FrameInterval: Duration(timing.FrameInterval),
			SpawnBudget:   Duration(timing.SpawnBudget),
			HaltAfter:     Duration(timing.HaltAfter),
			Schedule:      stages,
		},
		Reveal: RevealConfig{
			InitialDelay:  Duration(opts.InitialDelay),
			Step:          Duration(opts.Step),
			PopDuration:   Duration(opts.PopDuration),
			FrameInterval: Duration(opts.FrameInterval),
		},
		Data: DataConfig{
			Debounce: Duration(250 * time.Millisecond),
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: Duration(5 * time.Second),
			MaxSessions:     64,
			SessionIdle:     Duration(10 * time.Minute),
		},
		Log:  LogConfig{Level: "info"},
		Seed: opts.Seed,
	}
}

// Load reads path (DefaultPath when empty) and applies environment
// overrides from the process environment.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return cfg, err
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, cfg.Validate()
}

// LoadFrom reads config from a specific path. The format follows the
// extension: .toml for TOML, anything else is YAML.
// Returns Default if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}
	return cfg, nil
}

// Save writes cfg to path in the format implied by its extension.
func Save(path string, cfg Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating config: %w", err)
	}
	defer f.Close()

	format := "yaml"
	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		format = "toml"
	}
	return Encode(f, cfg, format)
}

// Encode writes cfg as "yaml" or "toml".
func Encode(w io.Writer, cfg Config, format string) error {
	if format == "toml" {
		if err := toml.NewEncoder(w).Encode(cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		return nil
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return enc.Close()
}

// ApplyEnv overrides fields from environment variables. NEONGRAPH_DATA is
// a list separated by the OS path list separator.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := getenv(EnvNATSURL); v != "" {
		c.Events.NATSURL = v
	}
	if v := getenv(EnvData); v != "" {
		c.Data.Paths = filepath.SplitList(v)
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas: size must be positive, got %gx%g", c.Canvas.Width, c.Canvas.Height))
	}
	if c.Intro.FrameInterval <= 0 {
		errs = append(errs, errors.New("intro: frame_interval must be positive"))
	}
	if c.Reveal.FrameInterval <= 0 {
		errs = append(errs, errors.New("reveal: frame_interval must be positive"))
	}
	if c.Intro.HaltAfter < c.Intro.SpawnBudget {
		errs = append(errs, errors.New("intro: halt_after must not be shorter than spawn_budget"))
	}
	prev := 0
	for i, s := range c.Intro.Schedule {
		if s.Below <= prev {
			errs = append(errs, fmt.Errorf("intro: schedule[%d].below must increase", i))
		}
		if s.Delay <= 0 {
			errs = append(errs, fmt.Errorf("intro: schedule[%d].delay must be positive", i))
		}
		prev = s.Below
	}
	if c.Reveal.InitialDelay < 0 || c.Reveal.Step < 0 || c.Reveal.PopDuration < 0 {
		errs = append(errs, errors.New("reveal: delays must not be negative"))
	}
	if c.Server.MaxSessions < 0 || c.Server.SessionIdle < 0 {
		errs = append(errs, errors.New("server: session limits must not be negative"))
	}
	if _, err := c.Log.level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Timing converts the intro section to circuit timing.
func (c Config) Timing() circuit.Timing {
	t := circuit.Timing{
		FrameInterval: c.Intro.FrameInterval.Std(),
		SpawnBudget:   c.Intro.SpawnBudget.Std(),
		HaltAfter:     c.Intro.HaltAfter.Std(),
		Schedule:      circuit.DefaultSchedule,
	}
	if len(c.Intro.Schedule) > 0 {
		t.Schedule = make(circuit.SpawnSchedule, 0, len(c.Intro.Schedule))
		for _, s := range c.Intro.Schedule {
			t.Schedule = append(t.Schedule, circuit.SpawnStage{Below: s.Below, Delay: s.Delay.Std()})
		}
	}
	return t
}

// RevealOptions converts the reveal and canvas sections to session options.
func (c Config) RevealOptions() reveal.Options {
	return reveal.Options{
		Width:         c.Canvas.Width,
		Height:        c.Canvas.Height,
		InitialDelay:  c.Reveal.InitialDelay.Std(),
		Step:          c.Reveal.Step.Std(),
		PopDuration:   c.Reveal.PopDuration.Std(),
		FrameInterval: c.Reveal.FrameInterval.Std(),
		Seed:          c.Seed,
	}
}

func (l LogConfig) level() (slog.Level, error) {
	if l.Debug {
		return slog.LevelDebug, nil
	}
	var lvl slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log: %w", err)
	}
	return lvl, nil
}

// NewLogger builds a text logger writing to w. Debug mode adds source
// locations.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	lvl, _ := l.level()
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     lvl,
		AddSource: l.Debug,
	}))
}
