package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/kintree/pkg/render"
)

// Default viewport dimensions, matching the interactive viewer window.
const (
	DefaultWidth  = 1200.0
	DefaultHeight = 800.0
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width      float64
	height     float64
	background string
	nodeFill   string
	nodeStroke string
	edgeColor  string
	fontSize   float64
	noLabels   bool
	noArrows   bool
}

// WithViewport sets the document size in pixels (default 1200x800).
func WithViewport(width, height float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = width, height }
}

func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }
func WithNodeFill(color string) SVGOption   { return func(r *svgRenderer) { r.nodeFill = color } }
func WithNodeStroke(color string) SVGOption { return func(r *svgRenderer) { r.nodeStroke = color } }
func WithEdgeColor(color string) SVGOption  { return func(r *svgRenderer) { r.edgeColor = color } }
func WithFontSize(size float64) SVGOption   { return func(r *svgRenderer) { r.fontSize = size } }
func WithoutLabels() SVGOption              { return func(r *svgRenderer) { r.noLabels = true } }
func WithoutArrows() SVGOption              { return func(r *svgRenderer) { r.noArrows = true } }

// RenderSVG serializes the draw list as a standalone SVG document. Edges are
// painted first, then circles, then labels, so names stay legible where
// nodes overlap. Coordinates are taken from the model as-is; apply the view
// transform in [render.Build], not here.
func RenderSVG(m render.Model, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)

	if !r.noArrows {
		renderArrowDefs(&buf, r.edgeColor)
	}
	fmt.Fprintf(&buf, "  <rect width=\"100%%\" height=\"100%%\" fill=%q/>\n", r.background)

	marker := ""
	if !r.noArrows {
		marker = ` marker-end="url(#arrow)"`
	}
	for _, e := range m.Edges {
		fmt.Fprintf(&buf, "  <line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\" stroke=%q%s/>\n",
			e.X1, e.Y1, e.X2, e.Y2, r.edgeColor, marker)
	}
	for _, n := range m.Nodes {
		fmt.Fprintf(&buf, "  <circle id=\"node-%s\" cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=%q stroke=%q stroke-width=\"2\"/>\n",
			escapeXML(n.ID), n.X, n.Y, n.Radius, r.nodeFill, r.nodeStroke)
	}
	if !r.noLabels {
		for _, n := range m.Nodes {
			fmt.Fprintf(&buf, "  <text x=\"%.1f\" y=\"%.1f\" text-anchor=\"middle\" dy=\".35em\" font-family=\"Arial\" font-size=\"%.0f\" font-weight=\"bold\">%s</text>\n",
				n.X, n.Y, r.fontSize, escapeXML(n.Label))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{
		width:      DefaultWidth,
		height:     DefaultHeight,
		background: "white",
		nodeFill:   "lightblue",
		nodeStroke: "black",
		edgeColor:  "gray",
		fontSize:   10,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderArrowDefs(buf *bytes.Buffer, color string) {
	fmt.Fprintf(buf, "  <defs>\n"+
		"    <marker id=\"arrow\" viewBox=\"0 0 10 10\" refX=\"10\" refY=\"5\" markerWidth=\"6\" markerHeight=\"6\" orient=\"auto\">\n"+
		"      <path d=\"M 0 0 L 10 5 L 0 10 z\" fill=%q/>\n"+
		"    </marker>\n"+
		"  </defs>\n", color)
}

// escapeXML escapes a string for safe inclusion in SVG output.
func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
