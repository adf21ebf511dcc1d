package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sumire/issuetracker/internal/domain"
)

type projectDocument struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

func (d projectDocument) toDomain() *domain.Project {
	return &domain.Project{ID: d.ID.Hex(), Name: d.Name}
}

// ProjectRepository handles project data access.
type ProjectRepository struct {
	coll *mongo.Collection
}

// FindByName retrieves a project by its exact name.
func (r *ProjectRepository) FindByName(ctx context.Context, name string) (*domain.Project, error) {
	var doc projectDocument
	err := r.coll.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find project by name %q: %w", name, err)
	}
	return doc.toDomain(), nil
}

// Resolve returns the project called name, inserting it if absent.
// A concurrent upsert that loses the race on the unique name index surfaces
// as a duplicate key error; the winner's document is read back instead.
func (r *ProjectRepository) Resolve(ctx context.Context, name string) (*domain.Project, error) {
	var doc projectDocument
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": bson.M{"name": name}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.FindByName(ctx, name)
		}
		return nil, fmt.Errorf("upsert project %q: %w", name, err)
	}
	return doc.toDomain(), nil
}
