package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/kintree/pkg/layout"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Store.Backend != StoreSQLite {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, StoreSQLite)
	}
	if cfg.Store.Path != "./kintree.db" {
		t.Errorf("Store.Path = %q, want ./kintree.db", cfg.Store.Path)
	}
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, CacheFile)
	}
	if cfg.Layout.SpacingX != layout.DefaultSpacingX {
		t.Errorf("Layout.SpacingX = %v, want %v", cfg.Layout.SpacingX, layout.DefaultSpacingX)
	}
	if cfg.Render.Width != 1200 || cfg.Render.Height != 800 {
		t.Errorf("Render viewport = %vx%v, want 1200x800", cfg.Render.Width, cfg.Render.Height)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Watch.DebounceMS != 500 {
		t.Errorf("Watch.DebounceMS = %d, want 500", cfg.Watch.DebounceMS)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[store]
backend = "memory"

[layout]
spacing_x = 300.0

[server]
addr = ":9999"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, from, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if from != path {
		t.Errorf("loaded from %q, want %q", from, path)
	}

	if cfg.Store.Backend != StoreMemory {
		t.Errorf("Store.Backend = %q, want memory", cfg.Store.Backend)
	}
	if cfg.Layout.SpacingX != 300 {
		t.Errorf("Layout.SpacingX = %v, want 300", cfg.Layout.SpacingX)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want :9999", cfg.Server.Addr)
	}

	// Unset fields keep defaults.
	if cfg.Layout.SpacingY != layout.DefaultSpacingY {
		t.Errorf("Layout.SpacingY = %v, want default %v", cfg.Layout.SpacingY, layout.DefaultSpacingY)
	}
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("Cache.Backend = %q, want default file", cfg.Cache.Backend)
	}
}

func TestLoadFromPathInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[store\nbackend ="), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := LoadFromPath(path); err == nil {
		t.Error("expected parse error for malformed TOML")
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateRejectsUnknownBackends(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad store", func(c *Config) { c.Store.Backend = "postgres" }, "store backend"},
		{"bad cache", func(c *Config) { c.Cache.Backend = "memcached" }, "cache backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadFromPathValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[store]
backend = "postgres"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := LoadFromPath(path); err == nil {
		t.Error("expected validation error for unknown backend")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Store.Backend = StoreMemory
	cfg.Layout.SpacingX = 250

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error = %v", err)
	}
	if loaded.Store.Backend != StoreMemory {
		t.Errorf("Store.Backend = %q, want memory", loaded.Store.Backend)
	}
	if loaded.Layout.SpacingX != 250 {
		t.Errorf("Layout.SpacingX = %v, want 250", loaded.Layout.SpacingX)
	}
}

func TestFindConfigPathEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	t.Setenv(EnvConfigPath, path)

	if got := FindConfigPath(); got != path {
		t.Errorf("FindConfigPath() = %q, want %q", got, path)
	}
}

func TestFindConfigPathXDG(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", t.TempDir())

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	// Nothing exists yet.
	if got := FindConfigPath(); got != "" {
		t.Errorf("FindConfigPath() = %q, want empty", got)
	}

	path := filepath.Join(xdg, ConfigDirName, "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(""), 0644); err != nil {
		t.Fatal(err)
	}

	if got := FindConfigPath(); got != path {
		t.Errorf("FindConfigPath() = %q, want %q", got, path)
	}
}

func TestGrid(t *testing.T) {
	cfg := DefaultConfig()
	if got, want := cfg.Grid(), layout.DefaultGrid(); got != want {
		t.Errorf("Grid() = %+v, want %+v", got, want)
	}

	cfg.Layout.SpacingX = 99
	if cfg.Grid().SpacingX != 99 {
		t.Errorf("Grid().SpacingX = %v, want 99", cfg.Grid().SpacingX)
	}
}

func TestPipelineOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.PipelineOptions()

	if opts.Grid != layout.DefaultGrid() {
		t.Errorf("Grid = %+v, want defaults", opts.Grid)
	}
	if opts.Width != 1200 || opts.Height != 800 {
		t.Errorf("viewport = %vx%v, want 1200x800", opts.Width, opts.Height)
	}
	if opts.Radius != 40 {
		t.Errorf("Radius = %v, want 40", opts.Radius)
	}
}
