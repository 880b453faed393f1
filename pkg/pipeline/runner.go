package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/family"
	kio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/pedigree"
)

// Runner encapsulates pipeline execution with caching.
// CLI, API, and TUI all use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete build → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, snap family.Snapshot, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result, err := r.Rebuild(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("rebuild: %w", err)
	}

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Rebuild runs the build and layout stages from a fresh snapshot.
//
// Every call recomputes the graph and the generation assignment wholesale;
// only the position computation is served from cache, keyed by the snapshot
// hash and the grid options.
func (r *Runner) Rebuild(ctx context.Context, snap family.Snapshot, opts Options) (*Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	observability.Pipeline().OnRebuildStart(ctx, len(snap.Members), len(snap.Relationships))

	result := &Result{Snapshot: snap}

	// Stage 1: Build
	buildStart := time.Now()
	snapData, err := marshalSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("hash snapshot: %w", err)
	}
	result.SnapshotHash = cache.Hash(snapData)

	g := pedigree.FromSnapshot(snap)
	gens := pedigree.AssignGenerations(g)
	result.Graph = g
	result.Generations = gens
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.MemberCount = g.MemberCount()
	result.Stats.RelationshipCount = g.RelationshipCount()
	result.Stats.RootCount = len(g.Roots())
	result.Stats.GenerationCount = gens.MaxGeneration() + 1

	// Stage 2: Layout
	layoutStart := time.Now()
	pos, layoutHit, err := r.computePositions(ctx, result.SnapshotHash, gens, opts)
	if err != nil {
		observability.Pipeline().OnRebuildComplete(ctx, 0, time.Since(buildStart), err)
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Positions = pos
	result.Stats.PlacedCount = len(pos)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	posData, err := json.Marshal(pos)
	if err != nil {
		return nil, fmt.Errorf("serialize positions: %w", err)
	}
	result.LayoutHash = cache.Hash(append([]byte(result.SnapshotHash), posData...))

	r.Logger.Info("rebuilt tree",
		"members", result.Stats.MemberCount,
		"relationships", result.Stats.RelationshipCount,
		"roots", result.Stats.RootCount,
		"placed", result.Stats.PlacedCount,
		"duration", result.Stats.BuildTime+result.Stats.LayoutTime)

	observability.Pipeline().OnRebuildComplete(ctx, result.Stats.PlacedCount,
		result.Stats.BuildTime+result.Stats.LayoutTime, nil)

	return result, nil
}

// computePositions returns cached positions when the snapshot and grid match
// a previous run, recomputing and storing them otherwise.
func (r *Runner) computePositions(ctx context.Context, snapshotHash string, gens pedigree.Generations, opts Options) (layout.Positions, bool, error) {
	cacheKey := r.Keyer.LayoutKey(snapshotHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var pos layout.Positions
			if err := json.Unmarshal(data, &pos); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				return pos, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	pos := layout.Compute(gens, opts.Grid)

	if data, err := json.Marshal(pos); err == nil {
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout) == nil {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return pos, false, nil // Cache miss
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, result *Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	if result == nil || result.LayoutHash == "" {
		return nil, false, fmt.Errorf("result has no layout; run Rebuild first")
	}

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	renderStart := time.Now()

	// Try to get all formats from cache
	if !opts.Refresh {
		allCached := true
		artifacts := make(map[string][]byte)

		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(result.LayoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}

		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), nil)
			return artifacts, true, nil // All artifacts from cache
		}
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	// Render all formats
	rendered, err := RenderArtifacts(result, opts)
	if err != nil {
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(result.LayoutHash, opts.ArtifactKeyOpts(format))
		if r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact) == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), nil)
	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, result *Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, result, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// marshalSnapshot produces the canonical snapshot bytes used for content
// hashing: sorted by ID, stable across runs.
func marshalSnapshot(snap family.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := kio.WriteJSON(snap, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
