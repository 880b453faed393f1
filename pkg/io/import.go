package io

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/google/uuid"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// ReadJSON decodes a family snapshot from r.
//
// The input must be a JSON object with "members" and "relationships" arrays:
//
//	{
//	  "members": [{"id": "a", "first_name": "Ada", "last_name": "Byron"}],
//	  "relationships": [{"from": "a", "to": "b", "type": "mother"}]
//	}
//
// Records without an "id" get one minted, so hand-written files can omit
// them. Relationships may reference member IDs that are not in the file;
// such edges are kept and simply never draw.
//
// ReadJSON returns an error if:
//   - The JSON is malformed
//   - A member is missing a first or last name
//   - A relationship is missing an endpoint or connects a member to itself
//   - Two members share an ID
//
// The returned snapshot is sorted by ID and independent of r. ReadJSON does
// not close r.
func ReadJSON(r io.Reader) (family.Snapshot, error) {
	var snap family.Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return family.Snapshot{}, kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "decode snapshot")
	}

	for i := range snap.Members {
		if snap.Members[i].ID == "" {
			snap.Members[i].ID = uuid.NewString()
		}
	}
	for i := range snap.Relationships {
		if snap.Relationships[i].ID == "" {
			snap.Relationships[i].ID = uuid.NewString()
		}
	}

	if err := snap.Validate(); err != nil {
		return family.Snapshot{}, err
	}

	snap.Sort()
	return snap, nil
}

// ImportJSON reads a snapshot from the JSON file at path.
//
// It opens the file, decodes it using [ReadJSON], and closes the file. A
// missing file maps to a FILE_NOT_FOUND error so callers can distinguish it
// from a malformed one.
func ImportJSON(path string) (family.Snapshot, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return family.Snapshot{}, kerrors.Wrap(kerrors.ErrCodeFileNotFound, err, "no tree file at %s", path)
	}
	if err != nil {
		return family.Snapshot{}, kerrors.Wrap(kerrors.ErrCodeInternal, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}
