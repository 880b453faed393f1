package render

import (
	"cmp"
	"slices"

	"github.com/matzehuels/kintree/pkg/layout"
	"github.com/matzehuels/kintree/pkg/pedigree"
	"github.com/matzehuels/kintree/pkg/view"
)

// Node is one drawable member: a circle and its label in screen coordinates.
type Node struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Edge is one drawable parental connection in screen coordinates, pointing
// from parent to child.
type Edge struct {
	FromID string  `json:"from"`
	ToID   string  `json:"to"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
}

// Model is the draw list consumed by rendering surfaces. Edges precede
// nodes, so a surface painting in list order draws connections underneath
// the circles.
type Model struct {
	Edges []Edge `json:"edges"`
	Nodes []Node `json:"nodes"`
}

// Build derives the draw list for the current layout and view. It is a pure
// function of its inputs and must be re-run whenever the record set, the
// layout, or the transform changes.
//
// The list holds one edge per parental relationship whose endpoints both
// carry a position; an edge referencing an unplaced or deleted member is
// silently skipped. It holds one node per member with a position, labeled
// with the member's first and last name. Both slices are sorted by ID for
// reproducible output. The node radius is given in world units and is
// scaled by the view, so circles grow and shrink with zoom.
func Build(g *pedigree.Graph, pos layout.Positions, t view.Transform, radius float64) Model {
	var m Model

	for _, r := range g.ParentalEdges() {
		src, okS := pos[r.From]
		dst, okD := pos[r.To]
		if !okS || !okD {
			continue
		}
		p1, p2 := t.ToScreen(src), t.ToScreen(dst)
		m.Edges = append(m.Edges, Edge{
			FromID: r.From, ToID: r.To,
			X1: p1.X, Y1: p1.Y,
			X2: p2.X, Y2: p2.Y,
		})
	}
	slices.SortFunc(m.Edges, func(a, b Edge) int {
		if c := cmp.Compare(a.FromID, b.FromID); c != 0 {
			return c
		}
		return cmp.Compare(a.ToID, b.ToID)
	})

	for _, mem := range g.Members() {
		p, ok := pos[mem.ID]
		if !ok {
			continue
		}
		s := t.ToScreen(p)
		m.Nodes = append(m.Nodes, Node{
			ID:     mem.ID,
			Label:  mem.DisplayName(),
			X:      s.X,
			Y:      s.Y,
			Radius: radius * t.Scale,
		})
	}

	return m
}
