// Package sink provides output format renderers for pedigree draw lists.
//
// # Overview
//
// A "sink" transforms a computed [render.Model] into a final output format.
// This package provides renderers for:
//
//   - SVG: Scalable vector graphics
//   - JSON: Draw list export for external tools
//   - PDF: Print-ready output (requires rsvg-convert)
//   - PNG: Raster image output (requires rsvg-convert)
//
// # SVG Output
//
// [RenderSVG] paints the draw list in order: parental edges as gray arrowed
// lines, then one circle per member, then the name labels. It reproduces the
// classic canvas look of the interactive viewer (white background, light
// blue circles, bold centered names).
//
// Basic usage:
//
//	svg := sink.RenderSVG(model,
//	    sink.WithViewport(1200, 800),
//	    sink.WithNodeFill("lightblue"),
//	)
//
// # SVG Options
//
//   - [WithViewport]: Document size in pixels
//   - [WithBackground], [WithNodeFill], [WithNodeStroke], [WithEdgeColor]: Colors
//   - [WithFontSize]: Label font size
//   - [WithoutLabels]: Omit name labels
//   - [WithoutArrows]: Draw plain lines instead of parent-to-child arrows
//
// # JSON Output
//
// [RenderJSON] exports the complete draw list as JSON, enabling:
//
//   - Integration with external visualization tools
//   - Caching of computed draw lists
//   - Round-trip rendering (re-import and render identically)
//
// The JSON optionally records the view transform and generation rows needed
// to reproduce the exact visual.
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] render the draw list as PDF/PNG by first
// generating SVG, then converting via [render.ToPDF] and [render.ToPNG]:
//
//	pdf, err := sink.RenderPDF(model, opts...)
//	png, err := sink.RenderPNG(model, sink.WithScale(2), opts...)
//
// These require librsvg to be installed:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// The conversion functions are shared with [nodelink] so both visualization
// types can export to PDF/PNG.
//
// [render.Model]: github.com/matzehuels/kintree/pkg/render.Model
// [render.ToPDF]: github.com/matzehuels/kintree/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/kintree/pkg/render.ToPNG
// [nodelink]: github.com/matzehuels/kintree/pkg/render/nodelink
package sink
