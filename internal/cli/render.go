package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
	pkgio "github.com/matzehuels/kintree/pkg/io"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/render/nodelink"
)

// formatDOT is the CLI-only Graphviz source format. The pipeline renders
// svg/png/pdf/json; DOT source is emitted directly for nodelink diagrams.
const formatDOT = "dot"

// defaultBase is the output base path when neither --output nor an input
// file is given.
const defaultBase = "tree"

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file path (or base path for multiple outputs)
	vizTypes []string // visualization types: "tree", "nodelink"
	formats  []string // output formats: "svg", "json", "png", "pdf", "dot"
	detailed bool     // birth/death/maiden detail on nodelink labels
	labels   bool     // draw name labels under tree nodes
	arrows   bool     // draw arrowheads on tree edges
	width    float64  // viewport width in pixels (0 = configured default)
	height   float64  // viewport height in pixels (0 = configured default)
	noCache  bool     // disable the pipeline cache entirely
	refresh  bool     // recompute, bypassing cache reads
}

// renderCommand creates the render command for generating visualizations.
// Records come from the configured store, or from a JSON snapshot file when
// one is given as an argument.
func (c *CLI) renderCommand() *cobra.Command {
	var vizTypesStr, formatsStr string
	opts := renderOpts{labels: true, arrows: true}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render the family tree to SVG and other formats",
		Example: `  kintree render
  kintree render -o family.svg
  kintree render --format svg,png,json
  kintree render --type nodelink --format dot backup.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.vizTypes = parseVizTypes(vizTypesStr)
			opts.formats = parseFormats(formatsStr)
			if err := validateVizTypes(opts.vizTypes); err != nil {
				return err
			}
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd.Context(), input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single type/format) or base path (multiple)")
	cmd.Flags().StringVarP(&vizTypesStr, "type", "t", "", "visualization type(s): tree (default), nodelink (comma-separated)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, png, pdf, dot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show birth/death details (nodelink)")
	cmd.Flags().BoolVar(&opts.labels, "labels", opts.labels, "draw name labels under nodes")
	cmd.Flags().BoolVar(&opts.arrows, "arrows", opts.arrows, "draw arrowheads on parent-child edges")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "viewport width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "viewport height (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the pipeline cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")

	return cmd
}

// parseVizTypes parses the --type flag into a slice of visualization types.
// If empty, defaults to ["tree"].
func parseVizTypes(s string) []string {
	if s == "" {
		return []string{pipeline.VizTypeTree}
	}
	return strings.Split(s, ",")
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// validCLIFormats adds DOT source to the pipeline's format set.
var validCLIFormats = map[string]bool{
	pipeline.FormatSVG:  true,
	pipeline.FormatJSON: true,
	pipeline.FormatPNG:  true,
	pipeline.FormatPDF:  true,
	formatDOT:           true,
}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validCLIFormats[f] {
			return fmt.Errorf("invalid format: %q (must be one of: svg, json, png, pdf, dot)", f)
		}
	}
	return nil
}

// validateVizTypes checks that all requested visualization types are valid.
func validateVizTypes(vizTypes []string) error {
	for _, vt := range vizTypes {
		if err := pipeline.ValidateVizType(vt); err != nil {
			return err
		}
	}
	return nil
}

// loadSnapshot reads the record set to render: a JSON snapshot file when
// input is given, the configured store otherwise.
func (c *CLI) loadSnapshot(ctx context.Context, input string) (family.Snapshot, error) {
	if input != "" {
		return pkgio.ImportJSON(input)
	}
	st, err := c.newStore(ctx)
	if err != nil {
		return family.Snapshot{}, err
	}
	defer st.Close()
	return st.Snapshot(ctx)
}

// runRender rebuilds the layout once and renders every requested
// type/format combination from it.
func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	snap, err := c.loadSnapshot(ctx, input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.treeOptions()
	if opts.width > 0 {
		popts.Width = opts.width
	}
	if opts.height > 0 {
		popts.Height = opts.height
	}
	popts.HideLabels = !opts.labels
	popts.HideArrows = !opts.arrows
	popts.Detailed = opts.detailed
	popts.Refresh = opts.refresh

	prog := newProgress(logger)
	result, err := runner.Rebuild(ctx, snap, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Placed %d of %d members", result.Stats.PlacedCount, result.Stats.MemberCount))

	single := len(opts.vizTypes) == 1 && len(opts.formats) == 1
	base := basePath(opts.output, input)
	allCached := result.CacheInfo.LayoutHit

	for _, vizType := range opts.vizTypes {
		for _, format := range opts.formats {
			data, hit, err := renderArtifact(ctx, runner, result, popts, vizType, format)
			if errors.Is(err, errSkipFormat) {
				logger.Debugf("Skipping %s/%s (unsupported combination)", vizType, format)
				continue
			}
			if err != nil {
				return fmt.Errorf("%s/%s: %w", vizType, format, err)
			}
			allCached = allCached && hit
			logger.Debugf("Generated %s/%s: %d bytes", vizType, format, len(data))

			path := opts.output
			if !single || path == "" {
				path = artifactPath(base, vizType, format, len(opts.vizTypes) > 1)
			}
			if err := writeArtifact(path, data); err != nil {
				return err
			}
			printFile(path)
		}
	}

	printStats(result.Stats.MemberCount, result.Stats.RelationshipCount, allCached)
	return nil
}

// errSkipFormat is a sentinel error indicating an unsupported format/visualization combination.
var errSkipFormat = fmt.Errorf("skip unsupported format")

// renderArtifact produces one artifact. DOT source only applies to nodelink
// diagrams; everything else goes through the cached pipeline render.
func renderArtifact(ctx context.Context, runner *pipeline.Runner, result *pipeline.Result, popts pipeline.Options, vizType, format string) ([]byte, bool, error) {
	if format == formatDOT {
		if vizType != pipeline.VizTypeNodelink {
			return nil, false, errSkipFormat
		}
		dot := nodelink.ToDOT(result.Graph, nodelink.Options{Detailed: popts.Detailed})
		return []byte(dot), false, nil
	}

	popts.VizType = vizType
	popts.Formats = []string{format}
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, result, popts)
	if err != nil {
		return nil, false, err
	}
	return artifacts[format], hit, nil
}

// writeArtifact writes data to path, creating or truncating the file.
func writeArtifact(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// basePath derives the base output path. --output wins with any known
// format extension stripped; otherwise the input file name (extension
// stripped), or "tree" when rendering straight from the store.
func basePath(output, input string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if validCLIFormats[strings.TrimPrefix(ext, ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	if input != "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	return defaultBase
}

// artifactPath builds the output file name, including the visualization
// type when more than one was requested (e.g. tree_nodelink.svg).
func artifactPath(base, vizType, format string, multiType bool) string {
	if multiType {
		return fmt.Sprintf("%s_%s.%s", base, vizType, format)
	}
	return fmt.Sprintf("%s.%s", base, format)
}
