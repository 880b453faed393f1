package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

const sampleJSON = `{
  "members": [
    {"id": "will", "first_name": "William", "last_name": "King"},
    {"id": "ada", "first_name": "Ada", "last_name": "Byron"}
  ],
  "relationships": [
    {"id": "r1", "from": "ada", "to": "will", "type": "mother"}
  ]
}`

func TestReadJSON(t *testing.T) {
	snap, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	if len(snap.Members) != 2 || len(snap.Relationships) != 1 {
		t.Fatalf("got %d members, %d relationships", len(snap.Members), len(snap.Relationships))
	}
	// Sorted by ID: ada before will.
	if snap.Members[0].ID != "ada" || snap.Members[1].ID != "will" {
		t.Errorf("members not sorted: %q, %q", snap.Members[0].ID, snap.Members[1].ID)
	}
	if snap.Relationships[0].Type != "mother" {
		t.Errorf("relationship type = %q", snap.Relationships[0].Type)
	}
}

func TestReadJSONMintsIDs(t *testing.T) {
	in := `{
	  "members": [{"first_name": "Ada", "last_name": "Byron"}],
	  "relationships": [{"from": "a", "to": "b", "type": "father"}]
	}`
	snap, err := ReadJSON(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	if snap.Members[0].ID == "" {
		t.Error("member ID not minted")
	}
	if snap.Relationships[0].ID == "" {
		t.Error("relationship ID not minted")
	}
}

func TestReadJSONMalformed(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`{"members": [`))
	if kerrors.GetCode(err) != kerrors.ErrCodeInvalidInput {
		t.Errorf("code = %q, want %q", kerrors.GetCode(err), kerrors.ErrCodeInvalidInput)
	}
}

func TestReadJSONValidates(t *testing.T) {
	in := `{
	  "members": [
	    {"id": "a", "first_name": "Ada", "last_name": "Byron"},
	    {"id": "a", "first_name": "Ada", "last_name": "Byron"}
	  ]
	}`
	_, err := ReadJSON(strings.NewReader(in))
	if kerrors.GetCode(err) != kerrors.ErrCodeInvalidSnapshot {
		t.Errorf("duplicate IDs code = %q, want %q", kerrors.GetCode(err), kerrors.ErrCodeInvalidSnapshot)
	}
}

func TestWriteJSONSortedAndStable(t *testing.T) {
	snap := family.Snapshot{
		Members: []family.Member{
			{ID: "z", FirstName: "Zoe", LastName: "King"},
			{ID: "a", FirstName: "Ada", LastName: "Byron"},
		},
	}

	var first, second bytes.Buffer
	if err := WriteJSON(snap, &first); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	if err := WriteJSON(snap, &second); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	if first.String() != second.String() {
		t.Error("repeated exports differ")
	}
	if za := strings.Index(first.String(), `"id": "a"`); za < 0 || za > strings.Index(first.String(), `"id": "z"`) {
		t.Errorf("output not sorted by ID:\n%s", first.String())
	}
	// Input order untouched.
	if snap.Members[0].ID != "z" {
		t.Error("WriteJSON mutated its input")
	}
}

func TestWriteJSONEmptySnapshot(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(family.Snapshot{}, &buf); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"members": []`) || !strings.Contains(out, `"relationships": []`) {
		t.Errorf("empty snapshot should encode empty arrays, got:\n%s", out)
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")

	snap, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	if err := ExportJSON(snap, path); err != nil {
		t.Fatalf("ExportJSON error: %v", err)
	}

	got, err := ImportJSON(path)
	if err != nil {
		t.Fatalf("ImportJSON error: %v", err)
	}
	if len(got.Members) != len(snap.Members) || len(got.Relationships) != len(snap.Relationships) {
		t.Fatalf("round trip changed counts: %d/%d members, %d/%d relationships",
			len(got.Members), len(snap.Members), len(got.Relationships), len(snap.Relationships))
	}
	for i := range snap.Members {
		if got.Members[i] != snap.Members[i] {
			t.Errorf("member %d changed: %+v != %+v", i, got.Members[i], snap.Members[i])
		}
	}

	// Exporting the re-imported snapshot reproduces the file byte for byte.
	var again bytes.Buffer
	if err := WriteJSON(got, &again); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if !bytes.Equal(again.Bytes(), onDisk) {
		t.Error("round trip is not byte-stable")
	}
}

func TestImportJSONMissingFile(t *testing.T) {
	_, err := ImportJSON(filepath.Join(t.TempDir(), "nope.json"))
	if kerrors.GetCode(err) != kerrors.ErrCodeFileNotFound {
		t.Errorf("code = %q, want %q", kerrors.GetCode(err), kerrors.ErrCodeFileNotFound)
	}
	if !kerrors.IsNotFound(err) {
		t.Error("missing file should satisfy IsNotFound")
	}
}
