// Package mongo provides a [store.Store] backed by MongoDB, for deployments
// where several kintree instances share one tree. Members and relationships
// live in separate collections keyed by record ID.
package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/store"
)

const (
	membersCollection       = "members"
	relationshipsCollection = "relationships"
)

// Store is a MongoDB-backed implementation of [store.Store].
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to the MongoDB instance at uri and prepares the named
// database. It pings the server so a bad address fails here, not on first use.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "ping mongodb")
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "create indexes")
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := s.db.Collection(membersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection(relationshipsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "from", Value: 1}}},
		{Keys: bson.D{{Key: "to", Value: 1}}},
	})
	return err
}

// UpsertMember validates and stores a member, minting an ID when blank.
func (s *Store) UpsertMember(ctx context.Context, m family.Member) (family.Member, error) {
	m, err := store.PrepareMember(m)
	if err != nil {
		return family.Member{}, err
	}

	_, err = s.db.Collection(membersCollection).ReplaceOne(ctx,
		bson.M{"id": m.ID}, m, options.Replace().SetUpsert(true))
	if err != nil {
		return family.Member{}, kerrors.Wrap(kerrors.ErrCodeStore, err, "upsert member")
	}
	return m, nil
}

// GetMember retrieves a member by ID.
func (s *Store) GetMember(ctx context.Context, id string) (family.Member, error) {
	var m family.Member
	err := s.db.Collection(membersCollection).FindOne(ctx, bson.M{"id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return family.Member{}, store.ErrMemberNotFound(id)
	}
	if err != nil {
		return family.Member{}, kerrors.Wrap(kerrors.ErrCodeStore, err, "query member")
	}
	return m, nil
}

// ListMembers returns all members sorted by ID.
func (s *Store) ListMembers(ctx context.Context) ([]family.Member, error) {
	cur, err := s.db.Collection(membersCollection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "query members")
	}

	out := make([]family.Member, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "decode members")
	}
	return out, nil
}

// DeleteMember removes a member and every relationship referencing it.
func (s *Store) DeleteMember(ctx context.Context, id string) error {
	res, err := s.db.Collection(membersCollection).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "delete member")
	}
	if res.DeletedCount == 0 {
		return store.ErrMemberNotFound(id)
	}

	_, err = s.db.Collection(relationshipsCollection).DeleteMany(ctx,
		bson.M{"$or": []bson.M{{"from": id}, {"to": id}}})
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "delete relationships")
	}
	return nil
}

// UpsertRelationship validates and stores a relationship, minting an ID when blank.
func (s *Store) UpsertRelationship(ctx context.Context, r family.Relationship) (family.Relationship, error) {
	r, err := store.PrepareRelationship(r)
	if err != nil {
		return family.Relationship{}, err
	}

	_, err = s.db.Collection(relationshipsCollection).ReplaceOne(ctx,
		bson.M{"id": r.ID}, r, options.Replace().SetUpsert(true))
	if err != nil {
		return family.Relationship{}, kerrors.Wrap(kerrors.ErrCodeStore, err, "upsert relationship")
	}
	return r, nil
}

// GetRelationship retrieves a relationship by ID.
func (s *Store) GetRelationship(ctx context.Context, id string) (family.Relationship, error) {
	var r family.Relationship
	err := s.db.Collection(relationshipsCollection).FindOne(ctx, bson.M{"id": id}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return family.Relationship{}, store.ErrRelationshipNotFound(id)
	}
	if err != nil {
		return family.Relationship{}, kerrors.Wrap(kerrors.ErrCodeStore, err, "query relationship")
	}
	return r, nil
}

// ListRelationships returns all relationships sorted by ID.
func (s *Store) ListRelationships(ctx context.Context) ([]family.Relationship, error) {
	cur, err := s.db.Collection(relationshipsCollection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "query relationships")
	}

	out := make([]family.Relationship, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, kerrors.Wrap(kerrors.ErrCodeStore, err, "decode relationships")
	}
	return out, nil
}

// DeleteRelationship removes a relationship.
func (s *Store) DeleteRelationship(ctx context.Context, id string) error {
	res, err := s.db.Collection(relationshipsCollection).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "delete relationship")
	}
	if res.DeletedCount == 0 {
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

// Import replaces all stored records with the snapshot's. MongoDB standalone
// servers have no multi-document transactions, so the clear and the inserts
// run as separate operations.
func (s *Store) Import(ctx context.Context, snap family.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	if _, err := s.db.Collection(relationshipsCollection).DeleteMany(ctx, bson.M{}); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "clear relationships")
	}
	if _, err := s.db.Collection(membersCollection).DeleteMany(ctx, bson.M{}); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeStore, err, "clear members")
	}

	if len(snap.Members) > 0 {
		docs := make([]any, len(snap.Members))
		for i, m := range snap.Members {
			docs[i] = m
		}
		if _, err := s.db.Collection(membersCollection).InsertMany(ctx, docs); err != nil {
			return kerrors.Wrap(kerrors.ErrCodeStore, err, "insert members")
		}
	}

	if len(snap.Relationships) > 0 {
		docs := make([]any, len(snap.Relationships))
		for i, r := range snap.Relationships {
			docs[i] = r
		}
		if _, err := s.db.Collection(relationshipsCollection).InsertMany(ctx, docs); err != nil {
			return kerrors.Wrap(kerrors.ErrCodeStore, err, "insert relationships")
		}
	}
	return nil
}

// Close disconnects from the server.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// Ensure Store implements store.Store.
var _ store.Store = (*Store)(nil)
