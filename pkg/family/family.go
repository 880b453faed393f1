package family

import (
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Relationship labels that mark the target as a child of the source.
// Matching is case-insensitive; see [Relationship.IsParental].
const (
	LabelParent = "parent"
	LabelFather = "father"
	LabelMother = "mother"
)

// Common non-parental labels. Relationship types are free-form text, so
// these are conveniences for builders and tests, not an exhaustive set.
const (
	LabelSpouse  = "spouse"
	LabelSibling = "sibling"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// validate is the validator instance for family records.
var validate = validator.New()

// =============================================================================
// Member - Person Record
// =============================================================================

// Member is a single person record. All fields except the names are optional
// free-form text: dates are stored as entered ("1884", "Jan 1884", "?") and
// never parsed.
type Member struct {
	ID          string `json:"id" bson:"id"`
	FirstName   string `json:"first_name" bson:"first_name" validate:"required"`
	MiddleName  string `json:"middle_name,omitempty" bson:"middle_name,omitempty"`
	LastName    string `json:"last_name" bson:"last_name" validate:"required"`
	MaidenName  string `json:"maiden_name,omitempty" bson:"maiden_name,omitempty"`
	BirthDate   string `json:"birth_date,omitempty" bson:"birth_date,omitempty"`
	DeathDate   string `json:"death_date,omitempty" bson:"death_date,omitempty"`
	BurialPlace string `json:"burial_place,omitempty" bson:"burial_place,omitempty"`
	Links       string `json:"links,omitempty" bson:"links,omitempty"`
	Notes       string `json:"notes,omitempty" bson:"notes,omitempty"`
}

// DisplayName returns the label drawn under a tree node: first and last name
// joined by a single space. Missing parts are skipped, so a member with no
// names renders as an empty label rather than a placeholder.
func (m *Member) DisplayName() string {
	return joinNonEmpty(m.FirstName, m.LastName)
}

// FullName returns first, middle, and last name joined by single spaces,
// skipping missing parts.
func (m *Member) FullName() string {
	return joinNonEmpty(m.FirstName, m.MiddleName, m.LastName)
}

// Validate checks that the member carries the required name fields.
// Returns an error with code INVALID_MEMBER on failure.
func (m *Member) Validate() error {
	if err := validate.Struct(m); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidMember, err, "first and last name are required")
	}
	return nil
}

// =============================================================================
// Relationship - Directed Labeled Edge
// =============================================================================

// Relationship is a directed labeled edge between two members. For parental
// labels the direction reads "From is a parent of To". The type is free-form
// text; only the parental labels affect generation assignment.
type Relationship struct {
	ID   string `json:"id" bson:"id"`
	From string `json:"from" bson:"from" validate:"required"`
	To   string `json:"to" bson:"to" validate:"required,nefield=From"`
	Type string `json:"type" bson:"type" validate:"required"`
}

// IsParental reports whether the relationship marks To as a child of From.
// The label match is case-insensitive: "parent", "Father", "MOTHER" all
// qualify. Every other label ("spouse", "godmother", typos) is kept in the
// record set but ignored by generation assignment.
func (r *Relationship) IsParental() bool {
	switch strings.ToLower(r.Type) {
	case LabelParent, LabelFather, LabelMother:
		return true
	}
	return false
}

// Validate checks that the relationship has a printable type and two
// distinct endpoints. Returns an error with code INVALID_RELATIONSHIP on
// failure.
func (r *Relationship) Validate() error {
	if err := validate.Struct(r); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidRelationship, err, "relationship needs a type and two distinct members")
	}
	return kerrors.ValidateRelationshipLabel(r.Type)
}

// =============================================================================
// Snapshot - Immutable Record Set
// =============================================================================

// Snapshot is the full record set handed to layout and rendering. It is the
// canonical serialization format for import/export and caching.
//
// Snapshots are treated as immutable: mutations go through a store, which
// produces a fresh snapshot for the next rebuild.
type Snapshot struct {
	Members       []Member       `json:"members" bson:"members"`
	Relationships []Relationship `json:"relationships" bson:"relationships"`
}

// Sort orders members and relationships by ID in place. Deterministic input
// order keeps layout, rendering, and exports reproducible.
func (s *Snapshot) Sort() {
	slices.SortFunc(s.Members, func(a, b Member) int {
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortFunc(s.Relationships, func(a, b Relationship) int {
		return strings.Compare(a.ID, b.ID)
	})
}

// MemberIndex returns a lookup map from member ID to member.
func (s *Snapshot) MemberIndex() map[string]Member {
	idx := make(map[string]Member, len(s.Members))
	for _, m := range s.Members {
		idx[m.ID] = m
	}
	return idx
}

// Member returns the member with the given ID and true, or a zero member
// and false if not found.
func (s *Snapshot) Member(id string) (Member, bool) {
	for _, m := range s.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

// ParentalEdges returns the relationships whose label is parental, in input
// order. These are the edges that drive generation assignment and the edges
// drawn by the diagram renderer.
func (s *Snapshot) ParentalEdges() []Relationship {
	var out []Relationship
	for _, r := range s.Relationships {
		if r.IsParental() {
			out = append(out, r)
		}
	}
	return out
}

// Validate checks every record in the snapshot and additionally verifies
// that member IDs are unique. Relationship endpoints are not required to
// exist: a snapshot may reference members that were since deleted, and the
// layout layer skips such edges rather than failing.
func (s *Snapshot) Validate() error {
	seen := make(map[string]bool, len(s.Members))
	for i := range s.Members {
		if err := s.Members[i].Validate(); err != nil {
			return err
		}
		if seen[s.Members[i].ID] {
			return kerrors.New(kerrors.ErrCodeInvalidSnapshot, "duplicate member ID %q", s.Members[i].ID)
		}
		seen[s.Members[i].ID] = true
	}
	for i := range s.Relationships {
		if err := s.Relationships[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Internal Helpers
// =============================================================================

// joinNonEmpty joins the non-empty parts with single spaces.
func joinNonEmpty(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
