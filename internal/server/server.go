// Package server exposes the family tree over a REST API.
//
// The server composes a [store.Store] with a [pipeline.Runner]: records are
// read and written through the store, and every mutation rebuilds the layout
// snapshot synchronously before the response goes out, so reads after a
// write always see the new geometry. The current build result is guarded by
// a read-write mutex; view endpoints (layout, drawlist, hittest, render)
// serve from it without touching the store.
//
// Endpoints live under /api/v1. Errors are returned as JSON with the
// machine codes from pkg/errors, and /metrics exposes Prometheus metrics
// fed by the pkg/observability hooks.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/store"
)

// Server serves the tree API.
type Server struct {
	store  store.Store
	runner *pipeline.Runner
	opts   pipeline.Options
	logger *log.Logger

	httpCache cache.Cache
	keyer     cache.Keyer

	mu      sync.RWMutex
	current *pipeline.Result
}

// New creates a server around a store and a runner. opts carries the
// layout grid and render defaults; request parameters override per call.
func New(st store.Store, runner *pipeline.Runner, opts pipeline.Options, logger *log.Logger) *Server {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	if logger == nil {
		logger = log.Default()
	}
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	return &Server{
		store:     st,
		runner:    runner,
		opts:      opts,
		logger:    logger,
		httpCache: cache.NewNullCache(),
		keyer:     cache.NewDefaultKeyer(),
	}
}

// WithHTTPCache caches successful GET responses on the view endpoints.
// Entries are namespaced by snapshot hash, so mutations invalidate them
// implicitly.
func (s *Server) WithHTTPCache(c cache.Cache) *Server {
	if c != nil {
		s.httpCache = c
	}
	return s
}

// Rebuild reloads the snapshot from the store and recomputes the layout.
// It runs synchronously; when it returns, view endpoints serve the new
// geometry.
func (s *Server) Rebuild(ctx context.Context) error {
	snap, err := s.store.Snapshot(ctx)
	if err != nil {
		return err
	}

	result, err := s.runner.Rebuild(ctx, snap, s.opts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = result
	s.mu.Unlock()
	return nil
}

// result returns the current build result, building it on first use.
func (s *Server) result(ctx context.Context) (*pipeline.Result, error) {
	s.mu.RLock()
	r := s.current
	s.mu.RUnlock()
	if r != nil {
		return r, nil
	}
	if err := s.Rebuild(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/members", s.listMembers)
		r.Post("/members", s.createMember)
		r.Get("/members/{id}", s.getMember)
		r.Put("/members/{id}", s.updateMember)
		r.Delete("/members/{id}", s.deleteMember)

		r.Get("/relationships", s.listRelationships)
		r.Post("/relationships", s.createRelationship)
		r.Delete("/relationships/{id}", s.deleteRelationship)

		r.Group(func(r chi.Router) {
			r.Use(s.cacheResponse)
			r.Get("/layout", s.getLayout)
			r.Get("/drawlist", s.getDrawlist)
			r.Get("/render.svg", s.renderSVG)
			r.Get("/render.dot", s.renderDOT)
		})
		r.Post("/hittest", s.hitTest)
	})

	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", MetricsHandler())

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	res, err := s.result(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"members":       res.Stats.MemberCount,
		"relationships": res.Stats.RelationshipCount,
	})
}
