package io

import (
	"encoding/json"
	"io"
	"os"
	"slices"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
)

// WriteJSON encodes a snapshot as indented JSON and writes it to w.
// Records are written sorted by ID so repeated exports of the same tree are
// byte-identical. The caller's snapshot is left untouched.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(snap family.Snapshot, w io.Writer) error {
	out := family.Snapshot{
		Members:       slices.Clone(snap.Members),
		Relationships: slices.Clone(snap.Relationships),
	}
	if out.Members == nil {
		out.Members = []family.Member{}
	}
	if out.Relationships == nil {
		out.Relationships = []family.Relationship{}
	}
	out.Sort()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "encode snapshot")
	}
	return nil
}

// ExportJSON writes a snapshot to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(snap family.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(snap, f)
}
