// Package cache provides pluggable byte caches for pipeline results.
//
// A cache stores opaque byte payloads (laid-out positions, draw lists,
// rendered artifacts) under content-derived keys, so identical inputs never
// recompute. Backends:
//   - memory: In-process cache for tests and single-instance servers
//   - file: On-disk cache for CLI usage across invocations
//   - redis: Shared cache for multi-instance deployments
//   - null: Disabled caching
//
// Keys are derived through a [Keyer], which hashes the inputs that determine
// each stage's output. Wrap a keyer in [NewScopedKeyer] to namespace entries
// per tree.
package cache

import (
	"context"
	"time"
)

// TTLs per pipeline stage. Keys are content-derived, so entries never go
// stale; the TTLs only bound storage growth.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLHTTP     = 5 * time.Minute
)

// Cache is the interface for cache backends.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero in Set stores the entry without expiration.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// LayoutKeyOpts captures the grid parameters that shape a layout.
type LayoutKeyOpts struct {
	SpacingX float64
	SpacingY float64
	CenterX  float64
	BaseY    float64
}

// ArtifactKeyOpts captures the render parameters that shape an artifact.
type ArtifactKeyOpts struct {
	Format  string
	Width   float64
	Height  float64
	Scale   float64
	OffsetX float64
	OffsetY float64
	Radius  float64
}

// Keyer derives cache keys for the cacheable pipeline stages.
type Keyer interface {
	// HTTPKey generates a key for HTTP response caching.
	HTTPKey(namespace, key string) string

	// LayoutKey generates a key for positioned layouts, derived from the
	// snapshot hash and the grid options.
	LayoutKey(snapshotHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for rendered artifacts, derived from the
	// layout hash and the render options.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer derives keys by hashing the option structs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// LayoutKey generates a key for positioned layouts.
func (k *DefaultKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", snapshotHash, opts)
}

// ArtifactKey generates a key for rendered artifacts.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
