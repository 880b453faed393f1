// Package sqlite provides a durable single-file [store.Store] backed by
// SQLite. It is the default backend for the CLI and single-node serve: no
// external processes, one file to back up.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	_ "modernc.org/sqlite"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/store"
)

// Store is a SQLite-backed implementation of [store.Store].
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "open database")
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "migrate database")
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		data JSON NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		type TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_relationships_from ON relationships(from_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_to ON relationships(to_id);
	`
	// No foreign keys on relationship endpoints: records may reference
	// members that were since deleted, and that is legal in a snapshot.

	_, err := s.db.Exec(schema)
	return err
}

// UpsertMember validates and stores a member, minting an ID when blank.
func (s *Store) UpsertMember(ctx context.Context, m family.Member) (family.Member, error) {
	m, err := store.PrepareMember(m)
	if err != nil {
		return family.Member{}, err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return family.Member{}, kerrors.Wrap(kerrors.ErrCodeStore, err, "marshal member")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO members (id, first_name, last_name, data, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, m.ID, m.FirstName, m.LastName, data)
	if err != nil {
		return family.Member{}, kerrors.Wrap(kerrors.ErrCodeStore, err, "upsert member")
	}
	return m, nil
}

// GetMember retrieves a member by ID.
func (s *Store) GetMember(ctx context.Context, id string) (family.Member, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM members WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return family.Member{}, store.ErrMemberNotFound(id)
	}
	if err != nil {
		return family.Member{}, kerrors.Wrap(kerrors.ErrCodeStore, err, "query member")
	}

	var m family.Member
	if err := json.Unmarshal(data, &m); err != nil {
		return family.Member{}, kerrors.Wrap(kerrors.ErrCodeStore, err, "unmarshal member")
	}
	// The id column is the source of truth.
	m.ID = id
	return m, nil
}

// ListMembers returns all members sorted by ID.
func (s *Store) ListMembers(ctx context.Context) ([]family.Member, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM members ORDER BY id`)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "query members")
	}
	defer rows.Close()

	out := make([]family.Member, 0)
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "scan member")
		}

		var m family.Member
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "unmarshal member")
		}
		m.ID = id
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "iterate members")
	}
	return out, nil
}

// DeleteMember removes a member and every relationship referencing it.
func (s *Store) DeleteMember(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "begin transaction")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "delete member")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrMemberNotFound(id)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM relationships WHERE from_id = ? OR to_id = ?`, id, id); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "delete relationships")
	}

	if err := tx.Commit(); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "commit transaction")
	}
	return nil
}

// UpsertRelationship validates and stores a relationship, minting an ID when blank.
func (s *Store) UpsertRelationship(ctx context.Context, r family.Relationship) (family.Relationship, error) {
	r, err := store.PrepareRelationship(r)
	if err != nil {
		return family.Relationship{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO relationships (id, from_id, to_id, type, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			from_id = excluded.from_id,
			to_id = excluded.to_id,
			type = excluded.type,
			updated_at = CURRENT_TIMESTAMP
	`, r.ID, r.From, r.To, r.Type)
	if err != nil {
		return family.Relationship{}, kerrors.Wrap(kerrors.ErrCodeStore, err, "upsert relationship")
	}
	return r, nil
}

// GetRelationship retrieves a relationship by ID.
func (s *Store) GetRelationship(ctx context.Context, id string) (family.Relationship, error) {
	r := family.Relationship{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT from_id, to_id, type FROM relationships WHERE id = ?
	`, id).Scan(&r.From, &r.To, &r.Type)
	if err == sql.ErrNoRows {
		return family.Relationship{}, store.ErrRelationshipNotFound(id)
	}
	if err != nil {
		return family.Relationship{}, kerrors.Wrap(kerrors.ErrCodeStore, err, "query relationship")
	}
	return r, nil
}

// ListRelationships returns all relationships sorted by ID.
func (s *Store) ListRelationships(ctx context.Context) ([]family.Relationship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_id, to_id, type FROM relationships ORDER BY id
	`)
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "query relationships")
	}
	defer rows.Close()

	out := make([]family.Relationship, 0)
	for rows.Next() {
		var r family.Relationship
		if err := rows.Scan(&r.ID, &r.From, &r.To, &r.Type); err != nil {
			return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "scan relationship")
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "iterate relationships")
	}
	return out, nil
}

// DeleteRelationship removes a relationship.
func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, id)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "delete relationship")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrRelationshipNotFound(id)
	}
	return nil
}

// Snapshot returns all records as a sorted snapshot.
func (s *Store) Snapshot(ctx context.Context) (family.Snapshot, error) {
	members, err := s.ListMembers(ctx)
	if err != nil {
		return family.Snapshot{}, err
	}
	rels, err := s.ListRelationships(ctx)
	if err != nil {
		return family.Snapshot{}, err
	}
	return family.Snapshot{Members: members, Relationships: rels}, nil
}

// Import replaces all stored records with the snapshot's, atomically.
func (s *Store) Import(ctx context.Context, snap family.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM relationships`); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "clear relationships")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM members`); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "clear members")
	}

	memberStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO members (id, first_name, last_name, data) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "prepare member insert")
	}
	defer memberStmt.Close()

	for _, m := range snap.Members {
		data, err := json.Marshal(m)
		if err != nil {
			return kerrors.Wrap(kerrors.ErrCodeStore, err, "marshal member %s", m.ID)
		}
		if _, err := memberStmt.ExecContext(ctx, m.ID, m.FirstName, m.LastName, data); err != nil {
			return kerrors.Wrap(kerrors.ErrCodeStore, err, "insert member %s", m.ID)
		}
	}

	relStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO relationships (id, from_id, to_id, type) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "prepare relationship insert")
	}
	defer relStmt.Close()

	for _, r := range snap.Relationships {
		if _, err := relStmt.ExecContext(ctx, r.ID, r.From, r.To, r.Type); err != nil {
			return kerrors.Wrap(kerrors.ErrCodeStore, err, "insert relationship %s", r.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "commit transaction")
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ensure Store implements store.Store.
var _ store.Store = (*Store)(nil)
