package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skyline/pkg/buildinfo"
	"github.com/matzehuels/skyline/pkg/cache"
	"github.com/matzehuels/skyline/pkg/config"
	"github.com/matzehuels/skyline/pkg/history"
	"github.com/matzehuels/skyline/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

const (
	appName = "skyline"

	configFile = "config.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Skyline draws running processes as an isometric city",
		Long:         `Skyline groups processes by name and draws each group as a cube whose height grows with its memory or CPU share. The scene rotates into place whenever a new snapshot arrives.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default $XDG_CONFIG_HOME/skyline/config.toml if present)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.collectCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads --config, or the default config file when it exists.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		if p, err := defaultConfigPath(); err == nil {
			if _, err := os.Stat(p); err == nil {
				path = p
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		c.Logger.Debug("config loaded", "path", path)
	}
	return cfg, nil
}

// =============================================================================
// Component Factories
// =============================================================================

func (c *CLI) newSource(cfg config.Config) source.Source {
	switch cfg.Source.Kind {
	case config.SourceRemote:
		return source.NewRemote(cfg.Source.URL, cfg.Source.Timeout.Duration)
	case config.SourceFile:
		return source.NewFile(cfg.Source.Path)
	default:
		return source.NewHost(source.WithHostLogger(c.Logger), source.WithCmdLine(cfg.Source.CmdLine))
	}
}

func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cfg.Cache.RedisAddr, DB: cfg.Cache.RedisDB})
	case config.CacheFile:
		dir := cfg.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				c.Logger.Warn("no cache directory, caching disabled", "err", err)
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	default:
		return cache.NewNullCache(), nil
	}
}

func newHistory(ctx context.Context, cfg config.Config) (history.Store, error) {
	switch cfg.History.Backend {
	case config.HistoryMongo:
		return history.NewMongoStore(ctx, history.MongoOptions{
			URI:        cfg.History.URI,
			Database:   cfg.History.Database,
			Collection: cfg.History.Collection,
		})
	case config.HistoryMemory:
		return history.NewMemoryStore(cfg.History.Limit), nil
	default:
		return history.NullStore{}, nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/skyline/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// defaultConfigPath returns ~/.config/skyline/config.toml, honoring
// XDG_CONFIG_HOME.
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFile), nil
}
