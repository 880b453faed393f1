// Package memory provides an in-memory [store.Store] for tests and
// ephemeral sessions. Records live in maps guarded by a mutex and are lost
// on Close.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/store"
)

// Store is an in-memory implementation of [store.Store].
type Store struct {
	mu      sync.RWMutex
	members map[string]family.Member
	rels    map[string]family.Relationship
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		members: make(map[string]family.Member),
		rels:    make(map[string]family.Relationship),
	}
}

// UpsertMember validates and stores a member, minting an ID when blank.
func (s *Store) UpsertMember(ctx context.Context, m family.Member) (family.Member, error) {
	m, err := store.PrepareMember(m)
	if err != nil {
		return family.Member{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[m.ID] = m
	return m, nil
}

// GetMember retrieves a member by ID.
func (s *Store) GetMember(ctx context.Context, id string) (family.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[id]
	if !ok {
		return family.Member{}, store.ErrMemberNotFound(id)
	}
	return m, nil
}

// ListMembers returns all members sorted by ID.
func (s *Store) ListMembers(ctx context.Context) ([]family.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]family.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b family.Member) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// DeleteMember removes a member and every relationship referencing it.
func (s *Store) DeleteMember(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.members[id]; !ok {
		return store.ErrMemberNotFound(id)
	}
	delete(s.members, id)
	for rid, r := range s.rels {
		if r.From == id || r.To == id {
			delete(s.rels, rid)
		}
	}
	return nil
}

// UpsertRelationship validates and stores a relationship, minting an ID when blank.
func (s *Store) UpsertRelationship(ctx context.Context, r family.Relationship) (family.Relationship, error) {
	r, err := store.PrepareRelationship(r)
	if err != nil {
		return family.Relationship{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rels[r.ID] = r
	return r, nil
}

// GetRelationship retrieves a relationship by ID.
func (s *Store) GetRelationship(ctx context.Context, id string) (family.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rels[id]
	if !ok {
		return family.Relationship{}, store.ErrRelationshipNotFound(id)
	}
	return r, nil
}

// ListRelationships returns all relationships sorted by ID.
func (s *Store) ListRelationships(ctx context.Context) ([]family.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]family.Relationship, 0, len(s.rels))
	for _, r := range s.rels {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b family.Relationship) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// DeleteRelationship removes a relationship.
func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rels[id]; !ok {
		return store.ErrRelationshipNotFound(id)
	}
	delete(s.rels, id)
	return nil
}

// Snapshot returns all records as a sorted snapshot.
func (s *Store) Snapshot(ctx context.Context) (family.Snapshot, error) {
	members, _ := s.ListMembers(ctx)
	rels, _ := s.ListRelationships(ctx)
	return family.Snapshot{Members: members, Relationships: rels}, nil
}

// Import replaces all stored records with the snapshot's.
func (s *Store) Import(ctx context.Context, snap family.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	members := make(map[string]family.Member, len(snap.Members))
	for _, m := range snap.Members {
		members[m.ID] = m
	}
	rels := make(map[string]family.Relationship, len(snap.Relationships))
	for _, r := range snap.Relationships {
		rels[r.ID] = r
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = members
	s.rels = rels
	return nil
}

// Close drops all records.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = make(map[string]family.Member)
	s.rels = make(map[string]family.Relationship)
	return nil
}

// Ensure Store implements store.Store.
var _ store.Store = (*Store)(nil)
