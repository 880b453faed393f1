package nodelink

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/pedigree"
	"github.com/matzehuels/kintree/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes life dates and maiden names in node labels.
	// When false, only the member's display name is shown.
	Detailed bool
}

// ToDOT converts a pedigree graph to Graphviz DOT format for node-link
// visualization. The resulting DOT string can be rendered using [RenderSVG],
// [RenderPDF], or [RenderPNG].
//
// Parental edges are drawn as solid arrows from parent to child. All other
// relationship types (spouse, sibling, custom labels) are drawn as dashed
// grey lines without direction, labeled with the relationship type.
func ToDOT(g *pedigree.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=ellipse, style=filled, fillcolor=lightblue, fontsize=12];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, m := range g.Members() {
		label := fmtLabel(m, opts.Detailed)
		fmt.Fprintf(&buf, "  %q [label=%q];\n", m.ID, label)
	}

	buf.WriteString("\n")
	rels := g.Relationships()
	slices.SortFunc(rels, func(a, b family.Relationship) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		if c := cmp.Compare(a.To, b.To); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	for _, r := range rels {
		if r.IsParental() {
			fmt.Fprintf(&buf, "  %q -> %q;\n", r.From, r.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [style=dashed, color=grey, fontcolor=grey, dir=none, label=%q];\n",
			r.From, r.To, strings.ToLower(r.Type))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(m family.Member, detailed bool) string {
	name := m.DisplayName()
	if name == "" {
		name = m.ID
	}
	if !detailed {
		return name
	}

	var parts []string
	if m.MaidenName != "" {
		parts = append(parts, fmt.Sprintf("née %s", m.MaidenName))
	}
	if m.BirthDate != "" {
		parts = append(parts, fmt.Sprintf("b. %s", m.BirthDate))
	}
	if m.DeathDate != "" {
		parts = append(parts, fmt.Sprintf("d. %s", m.DeathDate))
	}
	if len(parts) == 0 {
		return name
	}

	return name + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
