// Package view provides the pan/zoom mapping between world and screen
// coordinates, plus point-based hit-testing over laid-out members.
//
// [Transform] is a plain value: operations return a new transform instead of
// mutating in place, so a renderer can hold one per frame and interaction
// code can build the next one without locking. The scale is clamped to
// [MinScale, MaxScale]; a zoom that would leave that range is ignored
// rather than partially applied.
package view

import (
	"math"

	"github.com/matzehuels/kintree/pkg/layout"
)

// Zoom scale clamp bounds. A zoom whose resulting scale falls outside this
// range leaves the transform unchanged.
const (
	MinScale = 0.1
	MaxScale = 10.0
)

// Zoom step factors used by the interactive surfaces (wheel up / wheel down).
const (
	ZoomInFactor  = 1.1
	ZoomOutFactor = 0.9
)

// Transform maps world coordinates to screen coordinates:
//
//	screen = world*Scale + Offset
//
// The zero value has scale 0 and is not usable - use [NewTransform].
type Transform struct {
	Scale  float64      `json:"scale" bson:"scale"`
	Offset layout.Point `json:"offset" bson:"offset"`
}

// NewTransform returns the identity transform: scale 1, zero offset.
func NewTransform() Transform {
	return Transform{Scale: 1}
}

// ToScreen maps a world point to screen space.
func (t Transform) ToScreen(p layout.Point) layout.Point {
	return layout.Point{
		X: p.X*t.Scale + t.Offset.X,
		Y: p.Y*t.Scale + t.Offset.Y,
	}
}

// ToWorld maps a screen point to world space. It is the exact inverse of
// [Transform.ToScreen] for any valid (non-zero scale) transform.
func (t Transform) ToWorld(p layout.Point) layout.Point {
	return layout.Point{
		X: (p.X - t.Offset.X) / t.Scale,
		Y: (p.Y - t.Offset.Y) / t.Scale,
	}
}

// Pan translates the view by a screen-space delta. Panning is never clamped.
func (t Transform) Pan(dx, dy float64) Transform {
	t.Offset.X += dx
	t.Offset.Y += dy
	return t
}

// Zoom scales the view by factor around an anchor point in screen space.
// The world point under the anchor stays under it after zooming. If the
// resulting scale would leave [MinScale, MaxScale] the transform is
// returned unchanged.
func (t Transform) Zoom(anchor layout.Point, factor float64) Transform {
	newScale := t.Scale * factor
	if newScale < MinScale || newScale > MaxScale {
		return t
	}
	t.Scale = newScale
	t.Offset.X = anchor.X + (t.Offset.X-anchor.X)*factor
	t.Offset.Y = anchor.Y + (t.Offset.Y-anchor.Y)*factor
	return t
}

// Fit returns a transform that centers the world box [min, max] inside a
// screen viewport of the given size, zoomed out just enough to show all of
// it. The scale is clamped to [MinScale, MaxScale]. A degenerate box (a
// single node) is centered at scale 1.
func Fit(min, max layout.Point, width, height float64) Transform {
	w := max.X - min.X
	h := max.Y - min.Y

	scale := 1.0
	if w > 0 || h > 0 {
		sx := math.Inf(1)
		sy := math.Inf(1)
		if w > 0 {
			sx = width / w
		}
		if h > 0 {
			sy = height / h
		}
		scale = math.Min(sx, sy)
	}
	scale = math.Min(math.Max(scale, MinScale), MaxScale)

	cx := (min.X + max.X) / 2
	cy := (min.Y + max.Y) / 2
	return Transform{
		Scale: scale,
		Offset: layout.Point{
			X: width/2 - cx*scale,
			Y: height/2 - cy*scale,
		},
	}
}
