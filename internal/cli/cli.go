// Package cli implements the kintree command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/internal/config"
	"github.com/matzehuels/kintree/pkg/buildinfo"
	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/store/memory"
	"github.com/matzehuels/kintree/pkg/store/mongo"
	"github.com/matzehuels/kintree/pkg/store/sqlite"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "kintree"

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

	// cfg is loaded once by the root command's PersistentPreRunE. Tests
	// preset it to point commands at a scratch store.
	cfg     *config.Config
	cfgPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "kintree",
		Short:        "Kintree lays out and renders family trees",
		Long:         `Kintree is a CLI tool for managing genealogical records and visualizing them as generation-row family trees, with pan, zoom, and click-to-select both in the terminal and over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.cfgPath, "config", "", "path to config file")

	// Register all subcommands
	root.AddCommand(c.memberCommand())
	root.AddCommand(c.relateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the configuration once per process. An explicit
// --config path must exist; otherwise the standard search locations are
// tried and built-in defaults apply when nothing is found.
func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if c.cfgPath != "" {
		cfg, path, err = config.LoadFromPath(c.cfgPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}
	c.cfg = cfg
	if path != "" {
		c.Logger.Debugf("Loaded config from %s", path)
	}
	return nil
}

// =============================================================================
// Store / Cache / Runner Factories
// =============================================================================

// newStore opens the persistence backend selected by the configuration.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	switch c.cfg.Store.Backend {
	case config.StoreMemory:
		return memory.New(), nil
	case config.StoreSQLite:
		return sqlite.New(c.cfg.Store.Path)
	case config.StoreMongo:
		return mongo.New(ctx, c.cfg.Store.URI, c.cfg.Store.Database)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", c.cfg.Store.Backend)
	}
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// newCache opens the cache backend selected by the configuration. Cache
// trouble never blocks a command: when the file cache directory cannot be
// resolved the pipeline simply runs uncached.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.CacheMemory:
		return cache.NewMemoryCache(), nil
	case config.CacheNull:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.cfg.Cache.Addr,
			Password: c.cfg.Cache.Password,
			DB:       c.cfg.Cache.DB,
		})
	default:
		dir, err := c.fileCacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// fileCacheDir returns the directory for the file cache: the configured
// directory if set, the XDG default otherwise.
func (c *CLI) fileCacheDir() (string, error) {
	if c.cfg != nil && c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cacheDir()
}

// treeOptions returns pipeline options preloaded with the configured grid
// and viewport.
func (c *CLI) treeOptions() pipeline.Options {
	return c.cfg.PipelineOptions()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/kintree/).
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
