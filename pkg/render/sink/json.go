package sink

import (
	"encoding/json"

	"github.com/matzehuels/kintree/pkg/render"
	"github.com/matzehuels/kintree/pkg/view"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	width     float64
	height    float64
	transform *view.Transform
	rows      map[int][]string
}

// WithJSONViewport records the viewport size in the JSON output.
func WithJSONViewport(width, height float64) JSONOption {
	return func(r *jsonRenderer) { r.width, r.height = width, height }
}

// WithJSONTransform records the view transform in the JSON output, enabling
// reproducible re-rendering of the same pan and zoom state.
func WithJSONTransform(t view.Transform) JSONOption {
	return func(r *jsonRenderer) { r.transform = &t }
}

// WithJSONRows includes the generation rows in the JSON output. Rows should
// come from [pedigree.Generations.Rows].
//
// [pedigree.Generations.Rows]: github.com/matzehuels/kintree/pkg/pedigree.Generations.Rows
func WithJSONRows(rows map[int][]string) JSONOption {
	return func(r *jsonRenderer) { r.rows = rows }
}

type jsonOutput struct {
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Transform *view.Transform  `json:"transform,omitempty"`
	Rows      map[int][]string `json:"rows,omitempty"`
	Edges     []render.Edge    `json:"edges"`
	Nodes     []render.Node    `json:"nodes"`
}

// RenderJSON exports the draw list and associated view state as a
// pretty-printed JSON document. This is the primary data interchange format
// for external renderers: a consumer can paint the document in list order
// (edges first, then nodes) without reimplementing layout or transform math.
//
// RenderJSON returns an error only if JSON marshaling fails. It does not
// modify m and is safe to call concurrently.
func RenderJSON(m render.Model, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{width: DefaultWidth, height: DefaultHeight}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:     r.width,
		Height:    r.height,
		Transform: r.transform,
		Rows:      r.rows,
		Edges:     m.Edges,
		Nodes:     m.Nodes,
	}
	if out.Edges == nil {
		out.Edges = []render.Edge{}
	}
	if out.Nodes == nil {
		out.Nodes = []render.Node{}
	}

	return json.MarshalIndent(out, "", "  ")
}
