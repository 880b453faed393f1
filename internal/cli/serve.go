package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/internal/server"
	"github.com/matzehuels/kintree/internal/watcher"
	kerrors "github.com/matzehuels/kintree/pkg/errors"
	pkgio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/store"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		watchPath string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the family tree over HTTP",
		Long: `Serve the REST API with record CRUD, layout, draw-list, hit-test,
and render endpoints, plus Prometheus metrics on /metrics.

With --watch, a JSON snapshot file is imported on startup and re-imported
whenever it changes on disk, so edits show up without restarting.`,
		Example: `  kintree serve
  kintree serve --addr :9090
  kintree serve --watch family.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			st, err := c.newStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if watchPath != "" {
				if err := importTreeFile(ctx, st, watchPath); err != nil {
					if !kerrors.IsNotFound(err) {
						return err
					}
					logger.Warn("watch file does not exist yet", "path", watchPath)
				}
			}

			srv := server.New(st, runner, c.treeOptions(), logger)
			if !noCache {
				srv = srv.WithHTTPCache(runner.Cache)
			}
			server.RegisterMetrics()

			if err := srv.Rebuild(ctx); err != nil {
				return err
			}

			if watchPath != "" {
				w := watcher.New(watchPath, func() {
					if err := importTreeFile(ctx, st, watchPath); err != nil {
						logger.Error("reimport failed", "path", watchPath, "error", err)
						return
					}
					if err := srv.Rebuild(ctx); err != nil {
						logger.Error("rebuild failed", "error", err)
					}
				}).
					WithDebounce(time.Duration(c.cfg.Watch.DebounceMS) * time.Millisecond).
					WithLogger(logger)
				go func() {
					if err := w.Watch(ctx); err != nil && ctx.Err() == nil {
						logger.Error("watcher stopped", "error", err)
					}
				}()
			}

			printInfo("Serving on %s", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&watchPath, "watch", "", "JSON snapshot file to import and watch for changes")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable pipeline and response caching")

	return cmd
}

// importTreeFile replaces the store contents with the snapshot file.
func importTreeFile(ctx context.Context, st store.Store, path string) error {
	snap, err := pkgio.ImportJSON(path)
	if err != nil {
		return err
	}
	return st.Import(ctx, snap)
}
