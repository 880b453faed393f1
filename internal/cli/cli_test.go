package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/internal/config"
	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/store/memory"
	"github.com/matzehuels/kintree/pkg/store/sqlite"
)

// newTestCLI returns a CLI preloaded with a config pointing at scratch
// storage, so commands never touch the user's real files.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(io.Discard, log.WarnLevel)
	cfg := config.DefaultConfig()
	cfg.Store.Backend = config.StoreSQLite
	cfg.Store.Path = filepath.Join(t.TempDir(), "kintree.db")
	cfg.Cache.Backend = config.CacheNull
	c.cfg = cfg
	return c
}

// runCLI executes a fresh command tree with the given arguments.
func runCLI(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := newTestCLI(t)
	root := c.RootCommand()

	if root.Use != "kintree" {
		t.Errorf("root.Use = %q, want %q", root.Use, "kintree")
	}

	got := make(map[string]bool)
	for _, cmd := range root.Commands() {
		got[cmd.Name()] = true
	}
	for _, name := range []string{"member", "relate", "render", "serve", "view", "import", "export", "cache", "completion"} {
		if !got[name] {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestRootCommandPersistentFlags(t *testing.T) {
	c := newTestCLI(t)
	root := c.RootCommand()

	verbose := root.PersistentFlags().Lookup("verbose")
	if verbose == nil {
		t.Fatal("missing --verbose flag")
	}
	if verbose.Shorthand != "v" {
		t.Errorf("verbose shorthand = %q, want %q", verbose.Shorthand, "v")
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestLoadConfigKeepsPreset(t *testing.T) {
	c := newTestCLI(t)
	preset := c.cfg

	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if c.cfg != preset {
		t.Error("loadConfig() should not replace an already-set config")
	}
}

func TestLoadConfigExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kintree.toml")
	toml := "[store]\nbackend = \"memory\"\n"
	if err := os.WriteFile(path, []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, log.WarnLevel)
	c.cfgPath = path
	if err := c.loadConfig(); err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if c.cfg.Store.Backend != config.StoreMemory {
		t.Errorf("Store.Backend = %q, want %q", c.cfg.Store.Backend, config.StoreMemory)
	}
}

func TestLoadConfigExplicitPathMissing(t *testing.T) {
	c := New(io.Discard, log.WarnLevel)
	c.cfgPath = filepath.Join(t.TempDir(), "missing.toml")
	if err := c.loadConfig(); err == nil {
		t.Error("loadConfig() with a missing explicit path should fail")
	}
}

func TestNewStoreBackends(t *testing.T) {
	ctx := context.Background()
	c := newTestCLI(t)

	c.cfg.Store.Backend = config.StoreMemory
	st, err := c.newStore(ctx)
	if err != nil {
		t.Fatalf("newStore(memory) error: %v", err)
	}
	if _, ok := st.(*memory.Store); !ok {
		t.Errorf("newStore(memory) = %T, want *memory.Store", st)
	}
	st.Close()

	c.cfg.Store.Backend = config.StoreSQLite
	st, err = c.newStore(ctx)
	if err != nil {
		t.Fatalf("newStore(sqlite) error: %v", err)
	}
	if _, ok := st.(*sqlite.Store); !ok {
		t.Errorf("newStore(sqlite) = %T, want *sqlite.Store", st)
	}
	st.Close()

	c.cfg.Store.Backend = "bogus"
	if _, err := c.newStore(ctx); err == nil {
		t.Error("newStore with an unknown backend should fail")
	}
}

func TestNewCacheBackends(t *testing.T) {
	ctx := context.Background()
	c := newTestCLI(t)

	// --no-cache wins over any configured backend
	cc, err := c.newCache(ctx, true)
	if err != nil {
		t.Fatalf("newCache(noCache) error: %v", err)
	}
	if _, ok := cc.(*cache.NullCache); !ok {
		t.Errorf("newCache(noCache) = %T, want *cache.NullCache", cc)
	}

	c.cfg.Cache.Backend = config.CacheMemory
	cc, err = c.newCache(ctx, false)
	if err != nil {
		t.Fatalf("newCache(memory) error: %v", err)
	}
	if _, ok := cc.(*cache.MemoryCache); !ok {
		t.Errorf("newCache(memory) = %T, want *cache.MemoryCache", cc)
	}

	dir := t.TempDir()
	c.cfg.Cache.Backend = config.CacheFile
	c.cfg.Cache.Dir = dir
	cc, err = c.newCache(ctx, false)
	if err != nil {
		t.Fatalf("newCache(file) error: %v", err)
	}
	fc, ok := cc.(*cache.FileCache)
	if !ok {
		t.Fatalf("newCache(file) = %T, want *cache.FileCache", cc)
	}
	if fc.Dir() != dir {
		t.Errorf("FileCache.Dir() = %q, want configured %q", fc.Dir(), dir)
	}
	cc.Close()
}

func TestCacheDirXDGOverride(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	want := filepath.Join("/tmp/xdg-cache", appName)
	if dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirDefault(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	want := filepath.Join(home, ".cache", appName)
	if dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}
