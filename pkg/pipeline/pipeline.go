// Package pipeline provides the core visualization pipeline for kintree.
//
// This package implements the complete build → layout → render pipeline that
// can be used by CLI, API, and TUI components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Index the snapshot into a pedigree graph and assign generations
//  2. Layout: Compute world positions for every reachable member
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON)
//
// A rebuild is always wholesale: every mutation of the record set reruns all
// stages from the fresh snapshot. The layout and render stages are cached by
// content hash, so unchanged trees cost one hash instead of one recompute.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, snap, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Build and lay out only
//	result, err := runner.Rebuild(ctx, snap, opts)
//
//	// Render with an existing result
//	artifacts, err := runner.Render(ctx, result, opts)
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/pedigree"
	"github.com/matzehuels/kintree/pkg/render/sink"
	"github.com/matzehuels/kintree/pkg/view"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and TUI
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = sink.DefaultWidth

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = sink.DefaultHeight

	// DefaultRadius is the world-space node radius used for drawing and
	// hit-testing.
	DefaultRadius = view.DefaultNodeRadius
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeTree

// Visualization types.
const (
	// VizTypeTree is the generation-row tree drawing.
	VizTypeTree = "tree"
	// VizTypeNodelink is the Graphviz-drawn node-link diagram.
	VizTypeNodelink = "nodelink"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeTree:     true,
	VizTypeNodelink: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Grid layout.Grid `json:"grid,omitempty"`

	// View options
	View   view.Transform `json:"view,omitempty"`
	Radius float64        `json:"radius,omitempty"`

	// Render options
	VizType    string   `json:"viz_type,omitempty"`
	Formats    []string `json:"formats,omitempty"`
	Width      float64  `json:"width,omitempty"`
	Height     float64  `json:"height,omitempty"`
	HideLabels bool     `json:"hide_labels,omitempty"`
	HideArrows bool     `json:"hide_arrows,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"` // birth/death/maiden lines on nodelink labels
	Refresh    bool     `json:"refresh,omitempty"`  // bypass cache reads

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the record set the run was built from.
	Snapshot family.Snapshot

	// Graph is the indexed pedigree graph.
	Graph *pedigree.Graph

	// Generations maps placed member IDs to generation numbers.
	Generations pedigree.Generations

	// Positions maps placed member IDs to world coordinates.
	Positions layout.Positions

	// SnapshotHash is the content hash of the snapshot.
	SnapshotHash string

	// LayoutHash covers the snapshot and the positions; artifacts are
	// keyed off it.
	LayoutHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	MemberCount       int
	RelationshipCount int
	RootCount         int
	GenerationCount   int
	PlacedCount       int
	BuildTime         time.Duration
	LayoutTime        time.Duration
	RenderTime        time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether positions came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return fmt.Errorf("invalid viz_type: %q (must be one of: tree, nodelink)", vizType)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Grid.SpacingX == 0 {
		o.Grid.SpacingX = layout.DefaultSpacingX
	}
	if o.Grid.SpacingY == 0 {
		o.Grid.SpacingY = layout.DefaultSpacingY
	}
	if o.Grid.CenterX == 0 {
		o.Grid.CenterX = layout.DefaultCenterX
	}
	if o.Grid.BaseY == 0 {
		o.Grid.BaseY = layout.DefaultBaseY
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Radius == 0 {
		o.Radius = DefaultRadius
	}
	if o.View.Scale == 0 {
		o.View = view.NewTransform()
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// IsTree returns true if this is a generation-row tree visualization.
func (o *Options) IsTree() bool {
	return o.VizType == "" || o.VizType == VizTypeTree
}

// IsNodelink returns true if this is a nodelink visualization.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		SpacingX: o.Grid.SpacingX,
		SpacingY: o.Grid.SpacingY,
		CenterX:  o.Grid.CenterX,
		BaseY:    o.Grid.BaseY,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:  format + ":" + o.VizType + labelArrowSuffix(o),
		Width:   o.Width,
		Height:  o.Height,
		Scale:   o.View.Scale,
		OffsetX: o.View.Offset.X,
		OffsetY: o.View.Offset.Y,
		Radius:  o.Radius,
	}
}

// labelArrowSuffix folds the boolean render toggles into the format
// component of the artifact key.
func labelArrowSuffix(o *Options) string {
	s := ""
	if o.HideLabels {
		s += ":nolabels"
	}
	if o.HideArrows {
		s += ":noarrows"
	}
	if o.Detailed {
		s += ":detailed"
	}
	return s
}
