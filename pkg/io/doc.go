// Package io provides JSON import and export for family snapshots.
//
// # Overview
//
// This package serializes a tree's record set to and from a simple JSON
// format. The format is designed for:
//
//   - Hand-editing: a tree can be maintained as a plain text file
//   - Moving data between store backends (export from one, import to another)
//   - Seeding test fixtures and examples
//   - Round-trip preservation: import, edit, export, and re-import identically
//
// # JSON Format
//
// The format has two top-level arrays:
//
//	{
//	  "members": [
//	    {"id": "ada", "first_name": "Ada", "last_name": "Byron"},
//	    {"id": "will", "first_name": "William", "last_name": "King"}
//	  ],
//	  "relationships": [
//	    {"from": "ada", "to": "will", "type": "mother"}
//	  ]
//	}
//
// # Member Fields
//
// Required:
//   - first_name, last_name: names (the node label joins the non-empty ones)
//
// Optional:
//   - id: unique string identifier (minted if omitted)
//   - middle_name, maiden_name, birth_date, death_date, burial_place,
//     links, notes: free-form biography fields carried through untouched
//
// # Relationship Fields
//
// Required:
//   - from, to: member IDs (From is the parent for parental types)
//   - type: free-form label; "parent", "father", and "mother" (any case)
//     place To one generation below From, everything else is annotation
//
// Optional:
//   - id: unique string identifier (minted if omitted)
//
// # Import
//
// Use [ImportJSON] to read a snapshot from a file path, or [ReadJSON] to
// read from any io.Reader:
//
//	snap, err := io.ImportJSON("tree.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both validate the records (names present, no self-edges, no duplicate
// member IDs) and return the snapshot sorted by ID. Edges whose endpoints
// are not in the file are legal; they are kept and never draw.
//
// # Export
//
// Use [ExportJSON] to write a snapshot to a file, or [WriteJSON] to write to
// any io.Writer:
//
//	err := io.ExportJSON(snap, "tree.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Output is sorted by ID and indented, so exporting the same tree twice
// produces byte-identical files. This keeps exports diffable under version
// control.
//
// # Layout Export
//
// This package exports the logical record set only. For external tools that
// need computed screen positions, use the JSON sink in [render/sink], which
// exports the draw list (positioned nodes and edges) for a given view.
//
// [render/sink]: github.com/matzehuels/kintree/pkg/render/sink
package io
