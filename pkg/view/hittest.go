package view

import (
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/kintree/pkg/layout"
)

// DefaultNodeRadius is the node radius in world units used for both drawing
// and hit-testing. Hit-testing happens in world space, so zooming never
// changes which clicks land on a node.
const DefaultNodeRadius = 40.0

// HitTest resolves a screen point to the member drawn under it.
//
// The point is converted to world space through the transform, then members
// are scanned in ascending ID order; the first member whose center lies
// within radius of the point is returned. First match wins, not nearest
// match: overlapping nodes resolve by scan order, which keeps selection
// reproducible. Returns the member ID and true, or "" and false when the
// point lands on no node.
func HitTest(screen layout.Point, pos layout.Positions, t Transform, radius float64) (string, bool) {
	w := t.ToWorld(screen)
	for _, id := range slices.Sorted(maps.Keys(pos)) {
		p := pos[id]
		if math.Hypot(p.X-w.X, p.Y-w.Y) <= radius {
			return id, true
		}
	}
	return "", false
}
