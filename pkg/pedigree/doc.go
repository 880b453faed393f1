// Package pedigree provides the relationship graph and generation assignment
// at the core of family tree layout.
//
// # Overview
//
// Kintree renders a family as a node-link diagram where each row holds one
// generation. This package derives those generations: it builds an adjacency
// view over member and relationship records and walks parental edges from
// the root set, assigning an integer depth to every reachable member.
//
// Only relationships labeled "parent", "father", or "mother" (matched
// case-insensitively) contribute to the hierarchy. Every other label is kept
// in the graph but never moves a member between generations.
//
// # Basic Usage
//
// Build a graph from a snapshot with [FromSnapshot] (or incrementally with
// [Graph.AddMember] and [Graph.AddRelationship]), then assign depths:
//
//	g := pedigree.FromSnapshot(snap)
//	gens := pedigree.AssignGenerations(g)
//	rows := gens.Rows()
//
// Roots are members that are never the target of a parental edge; they sit
// at generation 0. A member with no relationships at all is a degenerate
// root and also lands at generation 0.
//
// # Revisit Rule
//
// The walk from the roots tolerates cycles and members with several recorded
// parents. A member already holding a generation is re-entered only when the
// new depth is strictly smaller, in which case the smaller depth wins and
// propagates below. See [AssignGenerations] for the exact rule; it is load
// bearing for reproducibility, so tests pin it.
//
// # Determinism
//
// Roots and children are always visited in ascending ID order, and the
// accessors ([Graph.Roots], [Graph.Children], [Graph.Parents],
// [Graph.MemberIDs]) return sorted slices. Two runs over the same records
// produce identical generations, which keeps layout coordinates and
// rendered output stable.
//
// # Concurrency
//
// Graph instances are not safe for concurrent mutation. The intended
// lifecycle is build once per record change, then share the immutable graph
// and its generation mapping freely across readers.
//
// # Related Packages
//
// The [layout] package turns a generation mapping into world coordinates,
// and [view] maps those into screen space for rendering and hit-testing.
//
// [layout]: github.com/matzehuels/kintree/pkg/layout
// [view]: github.com/matzehuels/kintree/pkg/view
package pedigree
