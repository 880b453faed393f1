package pipeline

import (
	"fmt"

	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/render/nodelink"
	"github.com/matzehuels/kintree/pkg/render/sink"
)

// RenderArtifacts generates output artifacts in the requested formats.
// It is the pure render stage: no caching, no logging. Use
// [Runner.Render] for the cached entry point.
func RenderArtifacts(result *Result, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if opts.IsNodelink() {
		return renderNodelink(result, opts)
	}
	return renderTree(result, opts)
}

// renderTree generates generation-row tree outputs from the positioned
// draw model.
func renderTree(result *Result, opts Options) (map[string][]byte, error) {
	model := render.Build(result.Graph, result.Positions, opts.View, opts.Radius)
	svgOpts := buildSVGOptions(opts)

	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(model, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(model, sink.WithPNGSVGOptions(svgOpts...))
		case FormatPDF:
			data, err = sink.RenderPDF(model, sink.WithPDFSVGOptions(svgOpts...))
		case FormatJSON:
			data, err = sink.RenderJSON(model,
				sink.WithJSONViewport(opts.Width, opts.Height),
				sink.WithJSONTransform(opts.View),
				sink.WithJSONRows(result.Generations.Rows()))
		default:
			return nil, fmt.Errorf("unsupported tree format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// renderNodelink generates Graphviz node-link outputs. The DOT graph is
// produced on demand from the pedigree graph; positions and view transform
// do not apply since Graphviz lays the diagram out itself.
func renderNodelink(result *Result, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(result.Graph, nodelink.Options{Detailed: opts.Detailed})

	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data, err = nodelink.RenderSVG(dot)
		case FormatPNG:
			data, err = nodelink.RenderPNG(dot, 2.0)
		case FormatPDF:
			data, err = nodelink.RenderPDF(dot)
		case FormatJSON:
			// The draw-list JSON is tied to the tree layout; for nodelink
			// the DOT source is the machine-readable form.
			data = []byte(dot)
		default:
			return nil, fmt.Errorf("unsupported nodelink format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options from pipeline options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{
		sink.WithViewport(opts.Width, opts.Height),
	}
	if opts.HideLabels {
		svgOpts = append(svgOpts, sink.WithoutLabels())
	}
	if opts.HideArrows {
		svgOpts = append(svgOpts, sink.WithoutArrows())
	}
	return svgOpts
}
