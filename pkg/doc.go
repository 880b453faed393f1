// Package pkg provides the core libraries for Kintree family tree visualization.
//
// # Overview
//
// Kintree turns genealogical records into laid-out, rendered family tree
// diagrams. The pkg directory is organized into four main areas:
//
//  1. [family], [pedigree] - Domain records and the relationship graph
//  2. [layout], [view], [render] - Placement, pan/zoom, and drawing
//  3. [store], [cache], [io] - Persistence, result caching, and snapshots
//  4. [pipeline] - Orchestration (build → layout → render)
//
// # Architecture
//
// The typical data flow through Kintree:
//
//	Family records (store backend or JSON snapshot)
//	         ↓
//	    [pedigree] package (graph + generation assignment)
//	         ↓
//	    [layout] package (world coordinates per member)
//	         ↓
//	    [view] package (pan/zoom transform + hit-testing)
//	         ↓
//	    [render] package (draw list → SVG/PDF/PNG/JSON)
//
// # Quick Start
//
// Import a snapshot and render it through the cached pipeline:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/kintree/pkg/cache"
//	    kio "github.com/matzehuels/kintree/pkg/io"
//	    "github.com/matzehuels/kintree/pkg/pipeline"
//	)
//
//	// 1. Load records
//	snap, _ := kio.ImportJSON("family.json")
//
//	// 2. Build the graph and layout
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, nil)
//	defer runner.Close()
//	result, _ := runner.Rebuild(context.Background(), snap, pipeline.Options{})
//
//	// 3. Render artifacts
//	artifacts, _ := runner.Render(context.Background(), result, pipeline.Options{
//	    Formats: []string{pipeline.FormatSVG},
//	})
//
// # Main Packages
//
// ## Domain
//
// [family] - Member and relationship records, snapshots, and validation.
// Records carry free-form date strings so partial genealogical knowledge
// ("about 1850") survives round trips.
//
// [pedigree] - The relationship graph over a snapshot. Assigns a generation
// number to every member by walking parental edges from the roots.
//
// ## Layout and Rendering
//
// [layout] - Grid-based placement: one row per generation, siblings spread
// around the horizontal center.
//
// [view] - Pan/zoom transform between world and screen coordinates, plus
// point hit-testing for interactive surfaces.
//
// [render] - Builds the draw list (edges under nodes, sorted by ID) and
// converts SVG output to PDF/PNG via librsvg.
//
// [render/sink] - Output formats for the tree visualization (SVG, PDF, PNG,
// JSON draw list).
//
// [render/nodelink] - Traditional directed graph diagrams using Graphviz.
//
// ## Persistence
//
// [store] - Record persistence with three backends: memory (tests), SQLite
// (single-user CLI), MongoDB (shared deployments). Deleting a member cascades
// to its relationships everywhere.
//
// [cache] - Content-addressed caching of layouts and artifacts with memory,
// file, Redis, and null backends.
//
// [io] - JSON snapshot import/export, the interchange format between the
// CLI, the HTTP API, and hand-edited files.
//
// ## Orchestration
//
// [pipeline] - Complete visualization pipeline (build → layout → render)
// used by the CLI, the HTTP server, and the TUI. Ensures the same records
// always produce the same artifacts across all entry points.
//
// [errors] - Structured errors with machine-readable codes, shared by the
// CLI and the HTTP API's JSON error responses.
//
// [observability] - Optional hook points the pipeline and server report
// timings and cache hits through.
//
// # Common Workflows
//
// Validate and store records:
//
//	st, _ := sqlite.New("family.db")
//	defer st.Close()
//	m, _ := st.UpsertMember(ctx, family.Member{FirstName: "Ada", LastName: "Byron"})
//
// Hit-test a click against the layout:
//
//	t := view.NewTransform()
//	if id, ok := view.HitTest(click, result.Positions, t, 40); ok {
//	    fmt.Println("clicked", id)
//	}
//
// Render a node-link diagram instead of the tree:
//
//	dot := nodelink.ToDOT(result.Graph, nodelink.Options{Detailed: true})
//	svg, _ := nodelink.RenderSVG(dot)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/pedigree/...  # Specific package
//	go test -run Example        # Examples only
//
// [family]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/family
// [pedigree]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/pedigree
// [layout]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/layout
// [view]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/view
// [render]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render/sink
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/render/nodelink
// [store]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/pipeline
// [errors]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/kintree/pkg/observability
package pkg
