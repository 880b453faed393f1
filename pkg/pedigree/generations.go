package pedigree

import "slices"

// Generations maps member IDs to their depth below the root set.
// Roots sit at generation 0; a child reached through a parental edge sits one
// below its parent. Members unreachable from any root (every member of a
// parental cycle with no outside parent) carry no entry.
type Generations map[string]int

// Rows groups member IDs by generation, each row sorted ascending.
// Row order inside the returned map is unspecified; iterate with
// [Generations.MaxGeneration] or sort the keys.
func (g Generations) Rows() map[int][]string {
	rows := make(map[int][]string)
	for id, gen := range g {
		rows[gen] = append(rows[gen], id)
	}
	for gen := range rows {
		slices.Sort(rows[gen])
	}
	return rows
}

// MaxGeneration returns the deepest generation present, or -1 for an empty
// mapping.
func (g Generations) MaxGeneration() int {
	max := -1
	for _, gen := range g {
		if gen > max {
			max = gen
		}
	}
	return max
}

// visit is one pending traversal step: reach id with the given depth.
type visit struct {
	id  string
	gen int
}

// AssignGenerations computes the generation of every member reachable from
// the root set.
//
// Traversal starts at each root (see [Graph.Roots]) with generation 0 and
// walks parental edges depth-first, assigning generation+1 to each child.
// Roots and children are visited in ascending ID order so results are
// reproducible run to run.
//
// # Revisit Rule
//
// A member reached again with a smaller generation than previously recorded
// takes the smaller value and traversal continues below it with the new
// depth. A member reached again with a generation that is not smaller stops
// the walk at that point: its children are not re-entered. Re-entry is
// therefore only possible on strict improvement, which bounds the walk on
// cyclic edge sets. A child with several recorded parents ends up at the
// smallest depth any of them propagates.
//
// # Dangling Edges
//
// Edges through IDs with no member record still propagate depth to members
// below them, but the ghost IDs themselves are dropped from the result.
//
// The walk is iterative with an explicit stack, so record sets of arbitrary
// depth cannot exhaust goroutine stack space. Time complexity is O(V + E)
// on acyclic inputs.
func AssignGenerations(g *Graph) Generations {
	best := make(map[string]int, g.MemberCount())
	stack := make([]visit, 0, g.MemberCount())

	// Push roots in reverse so the smallest ID is processed first.
	roots := g.Roots()
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, visit{id: roots[i], gen: 0})
	}

	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if prev, seen := best[v.id]; seen && v.gen >= prev {
			continue
		}
		best[v.id] = v.gen

		children := g.Children(v.id)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, visit{id: children[i], gen: v.gen + 1})
		}
	}

	gens := make(Generations, len(best))
	for id, gen := range best {
		if g.HasMember(id) {
			gens[id] = gen
		}
	}
	return gens
}
