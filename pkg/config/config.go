// Package config loads skyline settings from a TOML file.
//
// Every field has a default, so an empty or missing file is valid.
// Durations are written as strings:
//
//	addr = ":8080"
//	refresh_interval = "5s"
//	tick_interval = "40ms"
//
//	[scene]
//	metric = "cpu"
//	max_cubes = 16
//
//	[source]
//	kind = "remote"
//	url = "http://db-01:8080"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[history]
//	backend = "mongo"
//	uri = "mongodb://localhost:27017"
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/skyline/pkg/anim"
	"github.com/matzehuels/skyline/pkg/errors"
	"github.com/matzehuels/skyline/pkg/grid"
	"github.com/matzehuels/skyline/pkg/scene"
	"github.com/matzehuels/skyline/pkg/snapshot"
)

// Source kinds.
const (
	SourceHost   = "host"
	SourceRemote = "remote"
	SourceFile   = "file"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// History backends.
const (
	HistoryNone   = "none"
	HistoryMemory = "memory"
	HistoryMongo  = "mongo"
)

// Duration is a time.Duration written as a Go duration string.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the whole configuration.
type Config struct {
	Addr            string   `toml:"addr"`
	RefreshInterval Duration `toml:"refresh_interval"`
	// TickInterval paces the rotation and the live page's polling, so the
	// browser sees every frame.
	TickInterval    Duration `toml:"tick_interval"`

	Scene   Scene   `toml:"scene"`
	Source  Source  `toml:"source"`
	Cache   Cache   `toml:"cache"`
	History History `toml:"history"`
}

// Scene mirrors scene.Options in file form.
type Scene struct {
	Metric    string  `toml:"metric"`
	Scale     float64 `toml:"scale"`
	Spacing   float64 `toml:"spacing"`
	Bound     int     `toml:"bound"`
	Threshold int     `toml:"threshold"`
	MaxCubes  int     `toml:"max_cubes"`
	Easing    string  `toml:"easing"`
	Paint     string  `toml:"paint"`
}

type Source struct {
	Kind    string   `toml:"kind"`
	URL     string   `toml:"url"`
	Path    string   `toml:"path"`
	Timeout Duration `toml:"timeout"`
	CmdLine bool     `toml:"cmd_line"`
}

type Cache struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	TTL       Duration `toml:"ttl"`
}

type History struct {
	Backend    string `toml:"backend"`
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	Limit      int    `toml:"limit"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:            ":8080",
		RefreshInterval: Duration{5 * time.Second},
		TickInterval:    Duration{40 * time.Millisecond},
		Scene: Scene{
			Metric:    string(snapshot.MetricMem),
			Scale:     scene.DefaultScale,
			Spacing:   scene.DefaultSpacing,
			Bound:     grid.DefaultBound,
			Threshold: grid.DefaultThreshold,
			MaxCubes:  grid.MaxCubes,
			Easing:    "linear",
			Paint:     string(scene.PaintReverse),
		},
		Source: Source{
			Kind:    SourceHost,
			Timeout: Duration{3 * time.Second},
			CmdLine: true,
		},
		Cache: Cache{
			Backend: CacheNone,
			TTL:     Duration{10 * time.Minute},
		},
		History: History{
			Backend:    HistoryMemory,
			Database:   "skyline",
			Collection: "snapshots",
			Limit:      100,
		},
	}
}

// Load reads path over the defaults. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, cfg)
}

// Decode reads TOML from r over base and validates the result.
func Decode(r io.Reader, base Config) (Config, error) {
	md, err := toml.NewDecoder(r).Decode(&base)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := base.Validate(); err != nil {
		return Config{}, err
	}
	return base, nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.RefreshInterval.Duration <= 0 {
		return invalid("refresh_interval must be positive")
	}
	if c.TickInterval.Duration <= 0 {
		return invalid("tick_interval must be positive")
	}
	if _, err := c.SceneOptions(); err != nil {
		return err
	}

	switch c.Source.Kind {
	case SourceHost:
	case SourceRemote:
		if c.Source.URL == "" {
			return invalid("source.url is required for kind %q", SourceRemote)
		}
	case SourceFile:
		if c.Source.Path == "" {
			return invalid("source.path is required for kind %q", SourceFile)
		}
	default:
		return invalid("unknown source.kind %q", c.Source.Kind)
	}

	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr is required for backend %q", CacheRedis)
		}
	default:
		return invalid("unknown cache.backend %q", c.Cache.Backend)
	}

	switch c.History.Backend {
	case HistoryNone, HistoryMemory:
	case HistoryMongo:
		if c.History.URI == "" {
			return invalid("history.uri is required for backend %q", HistoryMongo)
		}
	default:
		return invalid("unknown history.backend %q", c.History.Backend)
	}
	return nil
}

// SceneOptions converts the [scene] section.
func (c Config) SceneOptions() (scene.Options, error) {
	s := c.Scene
	metric, err := snapshot.ParseMetric(s.Metric)
	if err != nil {
		return scene.Options{}, err
	}
	easing, err := anim.ParseEasing(s.Easing)
	if err != nil {
		return scene.Options{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "scene.easing")
	}
	paint := scene.PaintMode(s.Paint)
	switch paint {
	case "":
		paint = scene.PaintReverse
	case scene.PaintReverse, scene.PaintDepth:
	default:
		return scene.Options{}, invalid("unknown scene.paint %q (want reverse or depth)", s.Paint)
	}
	if s.Scale <= 0 || s.Spacing <= 0 {
		return scene.Options{}, invalid("scene.scale and scene.spacing must be positive")
	}
	if s.Bound <= 0 || s.Threshold <= 0 || s.MaxCubes < 0 {
		return scene.Options{}, invalid("scene.bound and scene.threshold must be positive, max_cubes non-negative")
	}
	return scene.Options{
		Scale:     s.Scale,
		Spacing:   s.Spacing,
		Bound:     s.Bound,
		Threshold: s.Threshold,
		MaxCubes:  s.MaxCubes,
		Metric:    metric,
		Easing:    easing,
		Paint:     paint,
	}, nil
}
