package pedigree

import (
	"errors"
	"maps"
	"slices"

	"github.com/matzehuels/kintree/pkg/family"
)

var (
	// ErrInvalidMemberID is returned by [Graph.AddMember] when the member ID
	// is empty. All members must have non-empty identifiers.
	ErrInvalidMemberID = errors.New("member ID must not be empty")

	// ErrDuplicateMemberID is returned by [Graph.AddMember] when a member with
	// the same ID already exists in the graph. Member IDs must be unique.
	ErrDuplicateMemberID = errors.New("duplicate member ID")

	// ErrEmptyEndpoint is returned by [Graph.AddRelationship] when either
	// endpoint ID is empty.
	ErrEmptyEndpoint = errors.New("relationship endpoints must not be empty")

	// ErrSelfRelationship is returned by [Graph.AddRelationship] when both
	// endpoints name the same member.
	ErrSelfRelationship = errors.New("relationship endpoints must differ")
)

// Graph is an adjacency view over member and relationship records, rebuilt
// wholesale from a snapshot whenever the record set changes. Only parental
// relationships contribute to the adjacency; all relationships are retained
// for callers that render or export the full edge set.
//
// Relationship endpoints are not required to resolve to member records: the
// source data may carry edges whose members were since deleted. Such edges
// stay in the graph and are tolerated by every traversal.
//
// The zero value is not usable - use [New] or [FromSnapshot].
// Graph is not safe for concurrent mutation; once built it is read-only and
// may be shared freely.
type Graph struct {
	members   map[string]family.Member
	relations []family.Relationship
	children  map[string][]string // parental edges: parent ID -> child IDs
	parents   map[string][]string // parental edges: child ID -> parent IDs
	targeted  map[string]bool     // IDs that appear as the To of a parental edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		members:  make(map[string]family.Member),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
		targeted: make(map[string]bool),
	}
}

// FromSnapshot builds a graph from a snapshot. It is a pure function of its
// input: the snapshot is not retained and later mutations to it do not affect
// the graph. Records that fail the structural checks of [Graph.AddMember] or
// [Graph.AddRelationship] (empty IDs, self-edges, duplicates) are skipped
// rather than failing the build, matching the tolerant rebuild semantics of
// the view layer.
func FromSnapshot(snap family.Snapshot) *Graph {
	g := New()
	for _, m := range snap.Members {
		_ = g.AddMember(m)
	}
	for _, r := range snap.Relationships {
		_ = g.AddRelationship(r)
	}
	return g
}

// AddMember adds a member record to the graph.
// Returns ErrInvalidMemberID if the ID is empty, or ErrDuplicateMemberID if
// a member with the same ID already exists.
func (g *Graph) AddMember(m family.Member) error {
	if m.ID == "" {
		return ErrInvalidMemberID
	}
	if _, exists := g.members[m.ID]; exists {
		return ErrDuplicateMemberID
	}
	g.members[m.ID] = m
	return nil
}

// AddRelationship adds a relationship record. Parental relationships (see
// [family.Relationship.IsParental]) are indexed into the child/parent
// adjacency; all relationships are retained for [Graph.Relationships].
//
// Returns ErrEmptyEndpoint if either endpoint is empty, or
// ErrSelfRelationship if both endpoints are equal. Endpoints that do not
// resolve to a member record are accepted: dangling edges are tolerated
// throughout and simply never render.
func (g *Graph) AddRelationship(r family.Relationship) error {
	if r.From == "" || r.To == "" {
		return ErrEmptyEndpoint
	}
	if r.From == r.To {
		return ErrSelfRelationship
	}
	g.relations = append(g.relations, r)
	if r.IsParental() {
		g.children[r.From] = append(g.children[r.From], r.To)
		g.parents[r.To] = append(g.parents[r.To], r.From)
		g.targeted[r.To] = true
	}
	return nil
}

// Member returns the member with the given ID and true, or a zero member and
// false if not found.
func (g *Graph) Member(id string) (family.Member, bool) {
	m, ok := g.members[id]
	return m, ok
}

// HasMember reports whether a member record with the given ID exists.
func (g *Graph) HasMember(id string) bool {
	_, ok := g.members[id]
	return ok
}

// MemberIDs returns all member IDs in ascending order.
func (g *Graph) MemberIDs() []string {
	return slices.Sorted(maps.Keys(g.members))
}

// Members returns all member records ordered by ascending ID.
func (g *Graph) Members() []family.Member {
	ids := g.MemberIDs()
	out := make([]family.Member, len(ids))
	for i, id := range ids {
		out[i] = g.members[id]
	}
	return out
}

// MemberCount returns the number of member records in the graph.
func (g *Graph) MemberCount() int { return len(g.members) }

// RelationshipCount returns the number of relationship records in the graph.
func (g *Graph) RelationshipCount() int { return len(g.relations) }

// Relationships returns a copy of all relationship records in insertion
// order, parental or not.
func (g *Graph) Relationships() []family.Relationship {
	return slices.Clone(g.relations)
}

// ParentalEdges returns the parental relationships in insertion order.
// These are the edges that drive generation assignment and diagram edges.
func (g *Graph) ParentalEdges() []family.Relationship {
	var out []family.Relationship
	for _, r := range g.relations {
		if r.IsParental() {
			out = append(out, r)
		}
	}
	return out
}

// Children returns the IDs this member is a parent of, in ascending order.
// The result may include IDs with no member record (dangling edges).
// Returns nil if the member has no parental children.
func (g *Graph) Children(id string) []string {
	if len(g.children[id]) == 0 {
		return nil
	}
	out := slices.Clone(g.children[id])
	slices.Sort(out)
	return out
}

// Parents returns the IDs recorded as parents of this member, in ascending
// order. Returns nil if the member has no recorded parent.
func (g *Graph) Parents(id string) []string {
	if len(g.parents[id]) == 0 {
		return nil
	}
	out := slices.Clone(g.parents[id])
	slices.Sort(out)
	return out
}

// HasParent reports whether the ID appears as the target of at least one
// parental edge.
func (g *Graph) HasParent(id string) bool { return g.targeted[id] }

// Roots returns the IDs of members that are never the target of a parental
// edge, in ascending order. Members with no relationships at all qualify as
// degenerate roots. Returns an empty slice when every member has a recorded
// parent (for example, a record set that is one big parental cycle).
func (g *Graph) Roots() []string {
	roots := make([]string, 0, len(g.members))
	for _, id := range g.MemberIDs() {
		if !g.targeted[id] {
			roots = append(roots, id)
		}
	}
	return roots
}
