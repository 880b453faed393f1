// Package store persists family records behind a backend-neutral interface.
//
// Three backends cover the deployment shapes:
//   - memory: throwaway storage for tests and ephemeral sessions
//   - sqlite: durable single-file storage for the CLI and single-node serve
//   - mongo: document storage for multi-instance deployments
//
// All backends share the same semantics: upserts validate records before
// writing and mint UUIDs for blank IDs, lookups of unknown IDs return a
// *_NOT_FOUND coded error, and deleting a member also deletes every
// relationship referencing it. Relationship endpoints are not required to
// exist as members: records may reference people that were since deleted,
// and the pedigree layer decides how to treat such references.
package store

import (
	"context"

	"github.com/google/uuid"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// Store is the interface for persistence backends.
type Store interface {
	// UpsertMember validates and stores a member, minting an ID when blank.
	// The stored record is returned.
	UpsertMember(ctx context.Context, m family.Member) (family.Member, error)

	// GetMember retrieves a member by ID.
	GetMember(ctx context.Context, id string) (family.Member, error)

	// ListMembers returns all members sorted by ID.
	ListMembers(ctx context.Context) ([]family.Member, error)

	// DeleteMember removes a member and every relationship referencing it.
	DeleteMember(ctx context.Context, id string) error

	// UpsertRelationship validates and stores a relationship, minting an ID
	// when blank. The stored record is returned.
	UpsertRelationship(ctx context.Context, r family.Relationship) (family.Relationship, error)

	// GetRelationship retrieves a relationship by ID.
	GetRelationship(ctx context.Context, id string) (family.Relationship, error)

	// ListRelationships returns all relationships sorted by ID.
	ListRelationships(ctx context.Context) ([]family.Relationship, error)

	// DeleteRelationship removes a relationship.
	DeleteRelationship(ctx context.Context, id string) error

	// Snapshot returns all records as a sorted snapshot.
	Snapshot(ctx context.Context) (family.Snapshot, error)

	// Import replaces all stored records with the snapshot's. The snapshot
	// is validated first; backends apply it atomically where they can.
	Import(ctx context.Context, snap family.Snapshot) error

	// Close releases resources.
	Close() error
}

// NewID mints a record identifier.
func NewID() string { return uuid.NewString() }

// PrepareMember mints an ID when blank and validates the record.
// Backends call this before writing so all of them enforce the same rules.
func PrepareMember(m family.Member) (family.Member, error) {
	if m.ID == "" {
		m.ID = NewID()
	}
	if err := kerrors.ValidateID(m.ID); err != nil {
		return family.Member{}, err
	}
	if err := m.Validate(); err != nil {
		return family.Member{}, err
	}
	return m, nil
}

// PrepareRelationship mints an ID when blank and validates the record.
func PrepareRelationship(r family.Relationship) (family.Relationship, error) {
	if r.ID == "" {
		r.ID = NewID()
	}
	if err := kerrors.ValidateID(r.ID); err != nil {
		return family.Relationship{}, err
	}
	if err := r.Validate(); err != nil {
		return family.Relationship{}, err
	}
	return r, nil
}

// ErrMemberNotFound returns the coded error for an unknown member ID.
func ErrMemberNotFound(id string) error {
	return kerrors.New(kerrors.ErrCodeMemberNotFound, "member %q not found", id)
}

// ErrRelationshipNotFound returns the coded error for an unknown relationship ID.
func ErrRelationshipNotFound(id string) error {
	return kerrors.New(kerrors.ErrCodeRelationshipNotFound, "relationship %q not found", id)
}
