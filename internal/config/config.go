// Package config provides configuration management for kintree.
//
// Everything has a working default: with no config file the CLI uses a
// SQLite store next to the working directory and a file cache under the
// user cache dir. A config file overrides selectively; unset fields keep
// their defaults.
//
// Config file locations (priority order):
//  1. $KINTREE_CONFIG
//  2. ./kintree.toml
//  3. $XDG_CONFIG_HOME/kintree/config.toml
//  4. ~/.config/kintree/config.toml
//  5. /etc/kintree/config.toml
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/pipeline"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Cache backends.
const (
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheNull   = "null"
)

// Config is the top-level configuration schema.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Cache  CacheConfig  `toml:"cache"`
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
	Watch  WatchConfig  `toml:"watch"`
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	Backend  string `toml:"backend"`  // memory | sqlite | mongo
	Path     string `toml:"path"`     // sqlite: database file
	URI      string `toml:"uri"`      // mongo: connection string
	Database string `toml:"database"` // mongo: database name
}

// CacheConfig selects and configures the pipeline cache.
type CacheConfig struct {
	Backend  string `toml:"backend"` // memory | file | redis | null
	Dir      string `toml:"dir"`     // file: cache directory (default: user cache dir)
	Addr     string `toml:"addr"`    // redis: host:port
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// LayoutConfig overrides the generation grid geometry.
type LayoutConfig struct {
	SpacingX float64 `toml:"spacing_x"`
	SpacingY float64 `toml:"spacing_y"`
	CenterX  float64 `toml:"center_x"`
	BaseY    float64 `toml:"base_y"`
}

// RenderConfig overrides the default viewport and node size.
type RenderConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Radius float64 `toml:"radius"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// WatchConfig configures tree-file watching.
type WatchConfig struct {
	DebounceMS int `toml:"debounce_ms"`
}

// Load finds and loads the config file, or returns defaults if none found.
// The second return is the path the config was loaded from, empty for
// defaults.
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path.
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	if c.Store.Backend == "" {
		c.Store.Backend = StoreSQLite
	}
	if c.Store.Path == "" {
		c.Store.Path = "./kintree.db"
	}
	if c.Store.URI == "" {
		c.Store.URI = "mongodb://localhost:27017"
	}
	if c.Store.Database == "" {
		c.Store.Database = "kintree"
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	if c.Cache.Addr == "" {
		c.Cache.Addr = "localhost:6379"
	}

	if c.Layout.SpacingX == 0 {
		c.Layout.SpacingX = layout.DefaultSpacingX
	}
	if c.Layout.SpacingY == 0 {
		c.Layout.SpacingY = layout.DefaultSpacingY
	}
	if c.Layout.CenterX == 0 {
		c.Layout.CenterX = layout.DefaultCenterX
	}
	if c.Layout.BaseY == 0 {
		c.Layout.BaseY = layout.DefaultBaseY
	}

	if c.Render.Width == 0 {
		c.Render.Width = pipeline.DefaultWidth
	}
	if c.Render.Height == 0 {
		c.Render.Height = pipeline.DefaultHeight
	}
	if c.Render.Radius == 0 {
		c.Render.Radius = pipeline.DefaultRadius
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}

	if c.Watch.DebounceMS == 0 {
		c.Watch.DebounceMS = 500
	}
}

// Validate rejects unknown backend names early, before anything connects.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreSQLite, StoreMongo:
	default:
		return fmt.Errorf("invalid store backend: %q (must be one of: memory, sqlite, mongo)", c.Store.Backend)
	}
	switch c.Cache.Backend {
	case CacheMemory, CacheFile, CacheRedis, CacheNull:
	default:
		return fmt.Errorf("invalid cache backend: %q (must be one of: memory, file, redis, null)", c.Cache.Backend)
	}
	return nil
}

// Grid returns the configured generation grid.
func (c *Config) Grid() layout.Grid {
	return layout.Grid{
		SpacingX: c.Layout.SpacingX,
		SpacingY: c.Layout.SpacingY,
		CenterX:  c.Layout.CenterX,
		BaseY:    c.Layout.BaseY,
	}
}

// PipelineOptions returns pipeline options seeded from the config. Callers
// layer request-specific settings (formats, view) on top.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Grid:   c.Grid(),
		Width:  c.Render.Width,
		Height: c.Render.Height,
		Radius: c.Render.Radius,
	}
}
