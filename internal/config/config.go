// Package config loads the queue, ingress and scheduler settings with viper.
//
// Values come from, in increasing precedence: built-in defaults, a YAML
// file, and CANQ_* environment variables (CANQ_QUEUE_CAPACITY,
// CANQ_SCHEDULER_BUDGET, ...). A missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/randomizedcoder/can-msgqueue/internal/canq"
	"github.com/randomizedcoder/can-msgqueue/internal/ringidx"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "CANQ"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the full runtime configuration.
type Config struct {
	Queue     QueueConfig     `mapstructure:"queue"`
	Ingress   IngressConfig   `mapstructure:"ingress"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Sim       SimConfig       `mapstructure:"sim"`

	// Source is the file the values were read from, empty for defaults only.
	Source string `mapstructure:"-"`
}

type QueueConfig struct {
	// Capacity is the ring size; one slot stays unused.
	Capacity int    `mapstructure:"capacity"`
	Mode     string `mapstructure:"mode"`
}

type IngressConfig struct {
	Capacity uint64 `mapstructure:"capacity"`
	Shards   uint64 `mapstructure:"shards"`
}

type SchedulerConfig struct {
	Ticker   string        `mapstructure:"ticker"`
	Interval time.Duration `mapstructure:"interval"`
	Budget   int           `mapstructure:"budget"`
	DrainMax int           `mapstructure:"drain_max"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	Prefix string `mapstructure:"prefix"`
}

// SimConfig drives cmd/cansim.
type SimConfig struct {
	Producers int           `mapstructure:"producers"`
	IDs       int           `mapstructure:"ids"`
	Duration  time.Duration `mapstructure:"duration"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("queue.capacity", 16)
	v.SetDefault("queue.mode", "priority")
	v.SetDefault("ingress.capacity", 1024)
	v.SetDefault("ingress.shards", 4)
	v.SetDefault("scheduler.ticker", "atomic")
	v.SetDefault("scheduler.interval", time.Millisecond)
	v.SetDefault("scheduler.budget", 8)
	v.SetDefault("scheduler.drain_max", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.prefix", "canq")
	v.SetDefault("sim.producers", 4)
	v.SetDefault("sim.ids", 64)
	v.SetDefault("sim.duration", 2*time.Second)
}

// Default returns the built-in configuration, ignoring files and environment.
func Default() Config {
	cfg, err := load(viper.New(), "", false)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads path (YAML) over the defaults and applies CANQ_* overrides.
// With an empty path it looks for canq.yaml in . and ./configs.
func Load(path string) (Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("canq")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	return load(v, path, true)
}

func load(v *viper.Viper, path string, read bool) (Config, error) {
	setDefaults(v)

	source := ""
	if read {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		err := v.ReadInConfig()
		var notFound viper.ConfigFileNotFoundError
		switch {
		case err == nil:
			source = v.ConfigFileUsed()
		case errors.As(err, &notFound), errors.Is(err, fs.ErrNotExist):
			// defaults and environment only
		default:
			return Config{}, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values the queue and ingress constructors would reject.
func (c Config) Validate() error {
	if c.Queue.Capacity < ringidx.MinSize {
		return fmt.Errorf("%w: queue.capacity %d < %d", ErrInvalid, c.Queue.Capacity, ringidx.MinSize)
	}
	if _, err := canq.ParseMode(c.Queue.Mode); err != nil {
		return fmt.Errorf("%w: queue.mode: %w", ErrInvalid, err)
	}
	if c.Ingress.Shards == 0 {
		return fmt.Errorf("%w: ingress.shards must be > 0", ErrInvalid)
	}
	if c.Ingress.Capacity < c.Ingress.Shards {
		return fmt.Errorf("%w: ingress.capacity %d < shards %d", ErrInvalid, c.Ingress.Capacity, c.Ingress.Shards)
	}
	if c.Scheduler.Budget <= 0 {
		return fmt.Errorf("%w: scheduler.budget must be > 0", ErrInvalid)
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("%w: scheduler.interval must be > 0", ErrInvalid)
	}
	if c.Sim.IDs <= 0 || c.Sim.IDs > math.MaxUint16+1 {
		return fmt.Errorf("%w: sim.ids %d out of range", ErrInvalid, c.Sim.IDs)
	}
	if c.Sim.Producers < 0 {
		return fmt.Errorf("%w: sim.producers must be >= 0", ErrInvalid)
	}
	return nil
}

// Mode returns the parsed queue mode. Validate has already accepted it.
func (c Config) Mode() canq.Mode {
	m, _ := canq.ParseMode(c.Queue.Mode)
	return m
}
