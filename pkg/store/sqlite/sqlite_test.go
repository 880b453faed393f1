package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "kintree.db"))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertMemberMintsID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	m, err := s.UpsertMember(ctx, family.Member{FirstName: "Ada", LastName: "Byron"})
	if err != nil {
		t.Fatalf("UpsertMember error: %v", err)
	}
	if m.ID == "" {
		t.Fatal("UpsertMember should mint an ID for blank records")
	}

	got, err := s.GetMember(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMember error: %v", err)
	}
	if got.FirstName != "Ada" {
		t.Errorf("GetMember.FirstName = %q, want Ada", got.FirstName)
	}
}

func TestUpsertMemberOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.UpsertMember(ctx, family.Member{ID: "a", FirstName: "Ada", LastName: "Byron"}); err != nil {
		t.Fatalf("UpsertMember error: %v", err)
	}
	if _, err := s.UpsertMember(ctx, family.Member{ID: "a", FirstName: "Adelaide", LastName: "Byron"}); err != nil {
		t.Fatalf("UpsertMember error: %v", err)
	}

	got, err := s.GetMember(ctx, "a")
	if err != nil {
		t.Fatalf("GetMember error: %v", err)
	}
	if got.FirstName != "Adelaide" {
		t.Errorf("upsert did not overwrite: FirstName = %q", got.FirstName)
	}

	members, err := s.ListMembers(ctx)
	if err != nil {
		t.Fatalf("ListMembers error: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("len(members) = %d, want 1", len(members))
	}
}

func TestOptionalFieldsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	in := family.Member{
		ID:          "ada",
		FirstName:   "Ada",
		MiddleName:  "Augusta",
		LastName:    "King",
		MaidenName:  "Byron",
		BirthDate:   "1815-12-10",
		DeathDate:   "1852-11-27",
		BurialPlace: "Hucknall",
		Notes:       "first programmer",
	}
	if _, err := s.UpsertMember(ctx, in); err != nil {
		t.Fatalf("UpsertMember error: %v", err)
	}

	got, err := s.GetMember(ctx, "ada")
	if err != nil {
		t.Fatalf("GetMember error: %v", err)
	}
	if got != in {
		t.Errorf("GetMember = %+v, want %+v", got, in)
	}
}

func TestGetMemberNotFound(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetMember(ctx, "ghost")
	if !kerrors.IsNotFound(err) {
		t.Errorf("GetMember(unknown) should be a not-found error, got %v", err)
	}
}

func TestDeleteMemberCascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, m := range []family.Member{
		{ID: "a", FirstName: "Ada", LastName: "Byron"},
		{ID: "b", FirstName: "Byron", LastName: "King"},
	} {
		if _, err := s.UpsertMember(ctx, m); err != nil {
			t.Fatalf("UpsertMember error: %v", err)
		}
	}
	for _, r := range []family.Relationship{
		{ID: "r1", From: "a", To: "b", Type: "mother"},
		{ID: "r2", From: "b", To: "ghost", Type: "father"},
		{ID: "r3", From: "ghost", To: "a", Type: "spouse"},
	} {
		if _, err := s.UpsertRelationship(ctx, r); err != nil {
			t.Fatalf("UpsertRelationship error: %v", err)
		}
	}

	if err := s.DeleteMember(ctx, "a"); err != nil {
		t.Fatalf("DeleteMember error: %v", err)
	}

	// r1 (from a) and r3 (to a) go with the member, r2 stays.
	rels, err := s.ListRelationships(ctx)
	if err != nil {
		t.Fatalf("ListRelationships error: %v", err)
	}
	if len(rels) != 1 || rels[0].ID != "r2" {
		t.Errorf("after cascade rels = %+v, want only r2", rels)
	}

	if err := s.DeleteMember(ctx, "a"); !kerrors.IsNotFound(err) {
		t.Errorf("second DeleteMember should be not-found, got %v", err)
	}
}

func TestRelationshipRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	r, err := s.UpsertRelationship(ctx, family.Relationship{From: "a", To: "b", Type: "mother"})
	if err != nil {
		t.Fatalf("UpsertRelationship error: %v", err)
	}
	if r.ID == "" {
		t.Fatal("UpsertRelationship should mint an ID")
	}

	got, err := s.GetRelationship(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetRelationship error: %v", err)
	}
	if got.From != "a" || got.To != "b" || got.Type != "mother" {
		t.Errorf("GetRelationship = %+v", got)
	}

	if err := s.DeleteRelationship(ctx, r.ID); err != nil {
		t.Fatalf("DeleteRelationship error: %v", err)
	}
	if _, err := s.GetRelationship(ctx, r.ID); !kerrors.IsNotFound(err) {
		t.Errorf("GetRelationship after delete should be not-found, got %v", err)
	}
	if err := s.DeleteRelationship(ctx, r.ID); !kerrors.IsNotFound(err) {
		t.Errorf("second DeleteRelationship should be not-found, got %v", err)
	}
}

func TestUpsertRelationshipValidates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.UpsertRelationship(ctx, family.Relationship{From: "a", To: "a", Type: "father"})
	if kerrors.GetCode(err) != kerrors.ErrCodeInvalidRelationship {
		t.Errorf("self-edge code = %q, want %q", kerrors.GetCode(err), kerrors.ErrCodeInvalidRelationship)
	}
}

func TestSnapshotSorted(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, id := range []string{"z", "a", "m"} {
		if _, err := s.UpsertMember(ctx, family.Member{ID: id, FirstName: "F", LastName: "L"}); err != nil {
			t.Fatalf("UpsertMember error: %v", err)
		}
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if len(snap.Members) != 3 {
		t.Fatalf("len(snap.Members) = %d, want 3", len(snap.Members))
	}
	for i, want := range []string{"a", "m", "z"} {
		if snap.Members[i].ID != want {
			t.Errorf("snap.Members[%d].ID = %q, want %q", i, snap.Members[i].ID, want)
		}
	}
}

func TestImportReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.UpsertMember(ctx, family.Member{ID: "old", FirstName: "Old", LastName: "Record"}); err != nil {
		t.Fatalf("UpsertMember error: %v", err)
	}

	snap := family.Snapshot{
		Members: []family.Member{
			{ID: "a", FirstName: "Ada", LastName: "Byron"},
			{ID: "b", FirstName: "Byron", LastName: "King"},
		},
		Relationships: []family.Relationship{
			{ID: "r1", From: "a", To: "b", Type: "mother"},
		},
	}
	if err := s.Import(ctx, snap); err != nil {
		t.Fatalf("Import error: %v", err)
	}

	if _, err := s.GetMember(ctx, "old"); !kerrors.IsNotFound(err) {
		t.Errorf("Import should drop pre-existing records, got %v", err)
	}
	got, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if len(got.Members) != 2 || len(got.Relationships) != 1 {
		t.Errorf("after import: %d members, %d relationships", len(got.Members), len(got.Relationships))
	}
}

func TestImportValidates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	snap := family.Snapshot{
		Members: []family.Member{
			{ID: "a", FirstName: "Ada", LastName: "Byron"},
			{ID: "a", FirstName: "Ada", LastName: "Byron"},
		},
	}
	err := s.Import(ctx, snap)
	if kerrors.GetCode(err) != kerrors.ErrCodeInvalidSnapshot {
		t.Errorf("Import(dup IDs) code = %q, want %q", kerrors.GetCode(err), kerrors.ErrCodeInvalidSnapshot)
	}
}

func TestReopenPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kintree.db")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if _, err := s.UpsertMember(ctx, family.Member{ID: "a", FirstName: "Ada", LastName: "Byron"}); err != nil {
		t.Fatalf("UpsertMember error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	s2, err := New(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s2.Close()

	got, err := s2.GetMember(ctx, "a")
	if err != nil {
		t.Fatalf("GetMember after reopen error: %v", err)
	}
	if got.FirstName != "Ada" {
		t.Errorf("GetMember.FirstName = %q, want Ada", got.FirstName)
	}
}
