package ecs

import (
	"io"
	"strings"

	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const (
	DefaultWorldID         = "world"
	DefaultTitle           = "ecs"
	DefaultLogLevel        = "info"
	DefaultTickRate        = 60
	DefaultInitialCapacity = 1024
)

// Config is the configuration of a World and of the App driving it.
type Config struct {
	WorldID string `config:"ECS_WORLD_ID"`
	Title   string `config:"ECS_TITLE"`

	// MaxEntities bounds the entity id space. Zero means the whole uint32 range.
	MaxEntities     uint32 `config:"ECS_MAX_ENTITIES"`
	InitialCapacity int    `config:"ECS_INITIAL_CAPACITY"`

	LogLevel  string `config:"ECS_LOG_LEVEL"`
	LogPretty bool   `config:"ECS_LOG_PRETTY"`

	// StatsdAddress enables metrics when set; StatsdTags is comma separated.
	StatsdAddress string `config:"ECS_STATSD_ADDRESS"`
	StatsdTags    string `config:"ECS_STATSD_TAGS"`

	// TickRate is the number of update phases per second an App runs.
	TickRate int    `config:"ECS_TICK_RATE"`
	MaxTicks uint64 `config:"ECS_MAX_TICKS"`
}

func DefaultConfig() Config {
	return Config{
		WorldID:         DefaultWorldID,
		Title:           DefaultTitle,
		InitialCapacity: DefaultInitialCapacity,
		LogLevel:        DefaultLogLevel,
		TickRate:        DefaultTickRate,
	}
}

// LoadConfig returns the defaults overridden by ECS_* environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if err := config.FromEnv().To(&cfg); err != nil {
		return Config{}, eris.Wrap(err, "failed to load config from environment")
	}
	return cfg, cfg.Validate()
}

// LoadConfigFile reads KEY=VALUE pairs from path, then applies the environment on top.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := config.From(path).FromEnv().To(&cfg); err != nil {
		return Config{}, eris.Wrapf(err, "failed to load config from %s", path)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return eris.Errorf("tick rate must be positive, got %d", c.TickRate)
	}
	if c.InitialCapacity < 0 {
		return eris.Errorf("initial capacity must not be negative, got %d", c.InitialCapacity)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return eris.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	return nil
}

func (c Config) Tags() []string {
	if c.StatsdTags == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(c.StatsdTags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// NewLogger builds the zerolog logger described by the config, writing to out.
func (c Config) NewLogger(out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.Nop(), eris.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	if c.LogPretty {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).Level(level).With().
		Timestamp().
		Str("world_id", c.WorldID).
		Logger(), nil
}
