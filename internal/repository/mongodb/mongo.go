// Package mongodb implements the project and issue stores on MongoDB.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	ProjectsCollection = "projects"
	IssuesCollection   = "issues"
)

// Store owns the client connection and the database holding both collections.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client for uri and verifies it with a ping.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Projects returns the project repository backed by s.
func (s *Store) Projects() *ProjectRepository {
	return &ProjectRepository{coll: s.db.Collection(ProjectsCollection)}
}

// Issues returns the issue repository backed by s.
func (s *Store) Issues() *IssueRepository {
	return &IssueRepository{coll: s.db.Collection(IssuesCollection)}
}

// EnsureSchema creates the unique index on project names that makes project
// resolution atomic.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Collection(ProjectsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("name_unique"),
	})
	if err != nil {
		return fmt.Errorf("create projects name index: %w", err)
	}
	return nil
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
