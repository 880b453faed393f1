// Package render builds draw lists for family trees and converts them
// between output formats.
//
// # Overview
//
// This package contains the rendering stage that transforms a positioned
// pedigree into visual outputs. It provides:
//
//   - The [Model] draw list and its [Build] constructor
//   - Generic format conversion (SVG to PDF/PNG)
//   - Classic canvas rendering (in [sink] subpackage)
//   - Node-link diagrams (in [nodelink] subpackage)
//
// # Draw List
//
// [Build] flattens a pedigree graph, its layout, and the current view
// transform into a [Model]: parental edges first, then one labeled circle
// per placed member, everything in screen coordinates. Surfaces (the SVG
// sink, the HTTP API, the terminal viewer) paint the model in list order
// and never recompute positions themselves.
//
//	model := render.Build(g, positions, transform, view.DefaultNodeRadius)
//	svg := sink.RenderSVG(model)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg). These are used by both the
// sink and node-link renderers.
//
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders traditional directed graph diagrams
// using Graphviz, with automatic edge routing instead of the fixed
// generation rows.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//
// [sink]: github.com/matzehuels/kintree/pkg/render/sink
// [nodelink]: github.com/matzehuels/kintree/pkg/render/nodelink
package render
