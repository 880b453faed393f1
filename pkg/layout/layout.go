// Package layout converts generation assignments into deterministic world
// coordinates. Members sharing a generation form a horizontal row centered
// on a fixed axis; generations stack downward. All coordinates are in world
// units; the view package maps them to screen space.
package layout

import (
	"maps"
	"slices"
)

// Default grid geometry. The values match the classic desktop renderer so
// saved camera positions keep pointing at the same part of the tree.
const (
	DefaultSpacingX = 150.0  // distance between neighbors in a row
	DefaultSpacingY = 200.0  // distance between generations
	DefaultCenterX  = 1000.0 // world x each row is centered on
	DefaultBaseY    = 100.0  // world y of generation 0
)

// Point is a position in world coordinates.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Grid describes the row geometry used by [Compute].
type Grid struct {
	SpacingX float64
	SpacingY float64
	CenterX  float64
	BaseY    float64
}

// DefaultGrid returns the standard grid geometry.
func DefaultGrid() Grid {
	return Grid{
		SpacingX: DefaultSpacingX,
		SpacingY: DefaultSpacingY,
		CenterX:  DefaultCenterX,
		BaseY:    DefaultBaseY,
	}
}

// Positions maps member IDs to their world coordinates.
type Positions map[string]Point

// Bounds returns the bounding box over all positions and true, or zero
// points and false when there are no positions. Useful for fitting a
// viewport around the whole tree.
func (p Positions) Bounds() (min, max Point, ok bool) {
	for _, pt := range p {
		if !ok {
			min, max, ok = pt, pt, true
			continue
		}
		if pt.X < min.X {
			min.X = pt.X
		}
		if pt.Y < min.Y {
			min.Y = pt.Y
		}
		if pt.X > max.X {
			max.X = pt.X
		}
		if pt.Y > max.Y {
			max.Y = pt.Y
		}
	}
	return min, max, ok
}

// Compute places every member carrying a generation onto the grid.
//
// Members are grouped by generation; inside a row they are ordered by
// ascending ID. The i-th member of an n-member row lands at
//
//	x = CenterX - (n-1)/2*SpacingX + i*SpacingX
//	y = BaseY + generation*SpacingY
//
// so every row is centered on CenterX and a single member sits exactly on
// it. An empty mapping produces an empty result. Members without a
// generation entry (unreachable from any root) receive no position.
func Compute(gens map[string]int, grid Grid) Positions {
	pos := make(Positions, len(gens))

	rows := make(map[int][]string)
	for id, gen := range gens {
		rows[gen] = append(rows[gen], id)
	}

	for _, gen := range slices.Sorted(maps.Keys(rows)) {
		ids := rows[gen]
		slices.Sort(ids)

		n := float64(len(ids))
		startX := grid.CenterX - (n-1)*grid.SpacingX/2
		y := grid.BaseY + float64(gen)*grid.SpacingY

		for i, id := range ids {
			pos[id] = Point{X: startX + float64(i)*grid.SpacingX, Y: y}
		}
	}

	return pos
}
